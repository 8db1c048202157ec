package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/asyncresource/pkg/adapters/memory"
	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHost_DispatchAndSubscribe(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), counterBuilder(nil))
	defer mgr.Close()
	host := session.NewHost(mgr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	actions, err := host.Actions(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fail", "set"}, actions)

	updates, err := host.Subscribe(ctx, "s1")
	require.NoError(t, err)

	// JSON numbers arrive as float64.
	done, err := host.Dispatch(ctx, "s1", "set", float64(3))
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("action did not settle")
	}

	first := <-updates
	second := <-updates
	assert.Equal(t, domain.StatusRunning, first.Status)
	assert.Equal(t, domain.StatusResolved, second.Status)
	assert.JSONEq(t, `3`, string(second.Data))

	snap, err := host.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, second.Version, snap.Version)
}

func TestHost_UnknownAction(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), counterBuilder(nil))
	defer mgr.Close()
	host := session.NewHost(mgr)

	_, err := host.Dispatch(context.Background(), "s1", "nope", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestHost_DispatchOutlivesRequestContext(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), counterBuilder(nil))
	defer mgr.Close()
	host := session.NewHost(mgr)

	ctx, cancel := context.WithCancel(context.Background())
	done, err := host.Dispatch(ctx, "s1", "set", 5)
	require.NoError(t, err)
	cancel()

	<-done
	snap, err := host.State(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, snap.Status)
}
