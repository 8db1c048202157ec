package ports

import (
	"context"

	"github.com/aretw0/asyncresource/pkg/domain"
)

// ResourceHost is the driving port used by transports (HTTP, MCP) to reach
// session-scoped resources without knowing their data type.
type ResourceHost interface {
	// Actions lists the action names of the session's resource.
	Actions(ctx context.Context, sessionID string) ([]string, error)

	// State returns the latest snapshot of the session's resource.
	State(ctx context.Context, sessionID string) (domain.Snapshot, error)

	// Dispatch starts an action with loosely typed arguments (e.g. decoded JSON).
	// The returned channel is closed once the action has settled.
	Dispatch(ctx context.Context, sessionID, action string, args any) (<-chan struct{}, error)

	// Subscribe streams a snapshot per transition until ctx is done.
	Subscribe(ctx context.Context, sessionID string) (<-chan domain.Snapshot, error)

	// Delete drops the session and its stored snapshot.
	Delete(ctx context.Context, sessionID string) error
}
