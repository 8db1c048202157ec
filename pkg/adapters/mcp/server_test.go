package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/asyncresource/pkg/adapters/memory"
	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/resource"
	"github.com/aretw0/asyncresource/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func newTestServer(t *testing.T, gate <-chan struct{}, opts ...Option) *Server {
	t.Helper()
	build := func(sessionID string, seed *point) *resource.Resource[point] {
		res, _ := resource.New(resource.Config[point, point]{
			Actions: map[string]resource.Factory[point, point]{
				"move": func(resource.Bag[point]) resource.ActionFunc[point, point] {
					return func(_ context.Context, p point) (point, error) { return p, nil }
				},
				"stuck": func(resource.Bag[point]) resource.ActionFunc[point, point] {
					return func(_ context.Context, p point) (point, error) {
						<-gate
						return p, nil
					}
				},
				"fail": func(resource.Bag[point]) resource.ActionFunc[point, point] {
					return func(context.Context, point) (point, error) { return point{}, errors.New("off grid") }
				},
			},
			InitialState: seed,
		}, resource.WithName(sessionID))
		return res
	}
	mgr := session.NewManager(memory.NewStore(), build)
	t.Cleanup(mgr.Close)
	return NewServer(session.NewHost(mgr), opts...)
}

func TestServer_DispatchWaitsForSettlement(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	resp, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session": "s1",
		"action":  "move",
		"args":    `{"x": 2, "y": 3}`,
	})
	require.NoError(t, err)
	assert.True(t, resp.Settled)
	assert.Equal(t, domain.StatusResolved, resp.Snapshot.Status)
	assert.JSONEq(t, `{"x":2,"y":3}`, string(resp.Snapshot.Data))

	state, err := s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session": "s1"})
	require.NoError(t, err)
	assert.True(t, state.Settled)
	assert.Equal(t, resp.Snapshot.Version, state.Snapshot.Version)
}

func TestServer_DispatchWithoutWait(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	s := newTestServer(t, gate)

	resp, err := s.handleDispatch(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session": "s1",
		"action":  "stuck",
		"wait":    false,
	})
	require.NoError(t, err)
	assert.False(t, resp.Settled)
	assert.Equal(t, domain.StatusRunning, resp.Snapshot.Status)
}

func TestServer_DispatchWaitTimeout(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	s := newTestServer(t, gate, WithWaitTimeout(20*time.Millisecond))

	resp, err := s.handleDispatch(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session": "s1",
		"action":  "stuck",
	})
	require.NoError(t, err)
	assert.False(t, resp.Settled)
	assert.Equal(t, domain.StatusRunning, resp.Snapshot.Status)
}

func TestServer_DispatchFailureReportsRejected(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.handleDispatch(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session": "s1",
		"action":  "fail",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, resp.Snapshot.Status)
	assert.Equal(t, "off grid", resp.Snapshot.Error)
}

func TestServer_DispatchErrors(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	_, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session": "s1"})
	assert.Error(t, err)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session": "s1", "action": "nope",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session": "s1", "action": "move", "args": `{"x":`,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session": "s1", "action": "move", "args": `{"z": 1}`,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)
}

func TestServer_ListAndDelete(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"session": "s1"}

	result, err := s.handleListActions(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `["fail","move","stuck"]`, text.Text)

	result, err = s.handleDeleteSession(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = s.handleListActions(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
