package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.Snapshot{
			Status:  domain.StatusResolved,
			Data:    json.RawMessage(`[{"id":1,"name":"Ada"}]`),
			Version: 4,
		}

		err := store.Save(ctx, key, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StatusResolved, loaded.Status)
		assert.JSONEq(t, string(snap.Data), string(loaded.Data))
		assert.Equal(t, uint64(4), loaded.Version)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		err := store.Save(ctx, key, domain.Snapshot{Status: domain.StatusRejected, Error: "boom", Version: 5})
		require.NoError(t, err)

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, loaded.Status)
		assert.Equal(t, "boom", loaded.Error)
		assert.Empty(t, loaded.Data)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("List", func(t *testing.T) {
		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, key)

		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})
}
