package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// SnapshotMarkdown describes a snapshot as markdown: a heading with the
// status, the outstanding action or error, and the data as a JSON block.
func SnapshotMarkdown(resource string, snap domain.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s · v%d · `%s`\n\n", resource, snap.Version, snap.Status)

	if snap.Action != "" {
		fmt.Fprintf(&sb, "Pending action: **%s**\n\n", snap.Action)
	}
	if snap.Error != "" {
		fmt.Fprintf(&sb, "> Error: %s\n\n", snap.Error)
	}
	if len(snap.Data) > 0 {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, snap.Data, "", "  "); err != nil {
			pretty.Reset()
			pretty.Write(snap.Data)
		}
		sb.WriteString("```json\n")
		sb.Write(pretty.Bytes())
		sb.WriteString("\n```\n")
	}
	return sb.String()
}
