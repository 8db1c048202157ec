package demo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(users Users) []int {
	out := make([]int, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func newUsers(t *testing.T, handler http.Handler, pageSize int) *resource.Resource[Users] {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client := NewClient(ts.URL, nil).WithPageSize(pageSize)
	return NewResource("users", client, nil, nil, domain.LifecycleHooks{})
}

func dispatch(t *testing.T, res *resource.Resource[Users], action string, args any) (Users, error) {
	t.Helper()
	p, err := res.Dispatch(context.Background(), action, args)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.Await(ctx)
}

func TestUsers_ActionNames(t *testing.T) {
	res := newUsers(t, NewDirectory(1).Handler(), 2)
	assert.Equal(t, []string{ActionAdd, ActionGet}, res.ActionNames())
}

func TestUsers_GetAppendsPages(t *testing.T) {
	res := newUsers(t, NewDirectory(10).Handler(), 3)

	users, err := dispatch(t, res, ActionGet, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, ids(users))

	// Loosely typed page numbers, as decoded from JSON.
	users, err = dispatch(t, res, ActionGet, float64(2))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, ids(users))

	state := res.State()
	assert.Equal(t, domain.StatusResolved, state.Status)
	assert.Equal(t, users, state.Data)
}

func TestUsers_AddIsOptimistic(t *testing.T) {
	dir := NewDirectory(10)
	gate := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			<-gate
		}
		dir.Handler().ServeHTTP(w, r)
	})
	res := newUsers(t, handler, 2)

	_, err := dispatch(t, res, ActionGet, 1)
	require.NoError(t, err)

	p, err := res.Dispatch(context.Background(), ActionAdd, map[string]any{"name": "John", "location": "Sydney"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(res.State().Data) == 3
	}, time.Second, 5*time.Millisecond)

	pending := res.State()
	assert.Equal(t, domain.StatusReRunning, pending.Status)
	assert.Equal(t, ActionAdd, pending.Action)
	placeholder := pending.Data[2]
	assert.Less(t, placeholder.ID, 0)
	assert.Equal(t, "John", placeholder.Name)

	close(gate)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	users, err := p.Await(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 10}, ids(users))
	assert.Equal(t, User{ID: 10, Name: "John", Location: "Sydney"}, users[2])
	assert.Equal(t, domain.StatusResolved, res.State().Status)
}

func TestUsers_AddWithoutDataResolvesToSavedUser(t *testing.T) {
	res := newUsers(t, NewDirectory(4).Handler(), 2)

	users, err := dispatch(t, res, ActionAdd, User{Name: "Jane", Location: "Porto"})
	require.NoError(t, err)
	assert.Equal(t, []User{{ID: 4, Name: "Jane", Location: "Porto"}}, users)
}

func TestUsers_BackendFailureRejects(t *testing.T) {
	res := newUsers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}), 2)

	_, err := dispatch(t, res, ActionGet, 1)
	require.Error(t, err)

	state := res.State()
	assert.Equal(t, domain.StatusRejected, state.Status)
	assert.ErrorContains(t, state.Err, "unexpected status 503")
}

func TestUsers_SeededResourceStartsResolved(t *testing.T) {
	ts := httptest.NewServer(NewDirectory(6).Handler())
	defer ts.Close()

	seed := Users{{ID: 0, Name: "Seed", Location: "Oslo"}}
	build := Builder(NewClient(ts.URL, nil).WithPageSize(2), nil, domain.LifecycleHooks{})
	res := build("s1", &seed)

	assert.Equal(t, "s1", res.Name())
	assert.Equal(t, domain.StatusResolved, res.State().Status)

	users, err := dispatch(t, res, ActionGet, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, ids(users))
}

func TestPlaceholderIDIsNeverSaved(t *testing.T) {
	for _, id := range []uint32{0, 1, math.MaxInt32, math.MaxInt32 + 1, math.MaxUint32} {
		got := placeholderFrom(id)
		assert.Negative(t, got, "id %d", id)
		assert.GreaterOrEqual(t, got, math.MinInt32, "id %d", id)
		assert.False(t, User{ID: got}.Saved())
	}
	assert.False(t, User{ID: placeholderID()}.Saved())
}
