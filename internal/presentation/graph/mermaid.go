package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/asyncresource/pkg/domain"
)

// Edge is one lifecycle transition and the event that triggers it.
type Edge struct {
	From  domain.Status
	To    domain.Status
	Event string
}

// Lifecycle lists every transition a resource can take.
var Lifecycle = []Edge{
	{domain.StatusNotAsked, domain.StatusRunning, "dispatch"},
	{domain.StatusRejected, domain.StatusRunning, "dispatch"},
	{domain.StatusRunning, domain.StatusRunning, "dispatch"},
	{domain.StatusResolved, domain.StatusReRunning, "dispatch"},
	{domain.StatusReRunning, domain.StatusReRunning, "dispatch / set_state"},
	{domain.StatusResolved, domain.StatusResolved, "set_state"},
	{domain.StatusRunning, domain.StatusResolved, "resolve"},
	{domain.StatusReRunning, domain.StatusResolved, "resolve"},
	{domain.StatusRunning, domain.StatusRejected, "reject"},
	{domain.StatusReRunning, domain.StatusRejected, "reject"},
}

// Overlay contains dynamic state data to visualize on the diagram.
type Overlay struct {
	Visited []domain.Status
	Current domain.Status
}

// OverlayFromChanges collects the statuses reached by a sequence of changes.
func OverlayFromChanges[T any](changes []domain.Change[T]) *Overlay {
	overlay := &Overlay{}
	for i, c := range changes {
		if i == 0 {
			overlay.Visited = append(overlay.Visited, c.From.Status)
		}
		overlay.Visited = append(overlay.Visited, c.To.Status)
		overlay.Current = c.To.Status
	}
	return overlay
}

// GenerateMermaid produces a Mermaid state diagram of the resource lifecycle.
// Settled states are drawn as terminal-ish rounded nodes; the overlay, if
// provided, marks visited statuses and the current one.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", sanitizeMermaidID(domain.StatusNotAsked)))
	sb.WriteString(fmt.Sprintf("    [*] --> %s : seeded\n", sanitizeMermaidID(domain.StatusResolved)))

	for _, e := range Lifecycle {
		sb.WriteString(fmt.Sprintf("    %s --> %s : %s\n", sanitizeMermaidID(e.From), sanitizeMermaidID(e.To), e.Event))
	}

	if overlay == nil {
		return sb.String()
	}

	sb.WriteString("    classDef visited fill:#e0e7ff,stroke:#818cf8\n")
	sb.WriteString("    classDef current fill:#fbcfe8,stroke:#f472b6,stroke-width:3px\n")

	seen := make(map[domain.Status]bool)
	for _, s := range overlay.Visited {
		if seen[s] || s == overlay.Current {
			continue
		}
		seen[s] = true
		sb.WriteString(fmt.Sprintf("    class %s visited\n", sanitizeMermaidID(s)))
	}
	if overlay.Current != "" {
		sb.WriteString(fmt.Sprintf("    class %s current\n", sanitizeMermaidID(overlay.Current)))
	}
	return sb.String()
}

// sanitizeMermaidID turns a status into a valid Mermaid identifier.
func sanitizeMermaidID(s domain.Status) string {
	parts := strings.Split(string(s), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}
