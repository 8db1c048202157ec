package ports

import (
	"context"

	"github.com/aretw0/asyncresource/pkg/domain"
)

// SnapshotStore defines the interface for persisting resource snapshots.
// It lets a resource be seeded from its last settled value after a restart.
type SnapshotStore interface {
	// Save persists the snapshot under key, replacing any previous one.
	Save(ctx context.Context, key string, snap domain.Snapshot) error

	// Load retrieves the snapshot for key.
	// Returns domain.ErrSnapshotNotFound if the key does not exist.
	Load(ctx context.Context, key string) (domain.Snapshot, error)

	// Delete removes the snapshot for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored snapshots.
	List(ctx context.Context) ([]string, error)
}
