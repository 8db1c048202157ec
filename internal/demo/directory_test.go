package demo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_Page(t *testing.T) {
	dir := NewDirectory(25)

	tests := []struct {
		name    string
		page    int
		limit   int
		wantIDs []int
	}{
		{"first page", 1, 10, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"partial last page", 3, 10, []int{20, 21, 22, 23, 24}},
		{"past the end", 4, 10, []int{}},
		{"zero page is first", 0, 3, []int{0, 1, 2}},
		{"default limit", 2, 0, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := dir.Page(tt.page, tt.limit)
			ids := make([]int, 0, len(users))
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDirectory_GeneratedUsersAreDeterministic(t *testing.T) {
	a := NewDirectory(5).Page(1, 5)
	b := NewDirectory(5).Page(1, 5)
	assert.Equal(t, a, b)
	for _, u := range a {
		assert.NotEmpty(t, u.Name)
		assert.NotEmpty(t, u.Location)
	}
}

func TestDirectory_AddAssignsNextID(t *testing.T) {
	dir := NewDirectory(3)

	first := dir.Add(User{ID: -42, Name: "John", Location: "Sydney"})
	second := dir.Add(User{Name: "Jane", Location: "Porto"})

	assert.Equal(t, 3, first.ID)
	assert.Equal(t, 4, second.ID)
	assert.Equal(t, 5, dir.Len())
	assert.Equal(t, []User{first, second}, dir.Page(2, 3)[:2])
}

func TestDirectory_Routes(t *testing.T) {
	handler := NewDirectory(12).Handler()

	req := httptest.NewRequest("GET", "/users?_page=2&_limit=5", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":5`)
	assert.NotContains(t, w.Body.String(), `"id":10`)

	req = httptest.NewRequest("POST", "/users", strings.NewReader(`{"name":"John","location":"Sydney"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":12,"name":"John","location":"Sydney"}`, w.Body.String())

	req = httptest.NewRequest("POST", "/users", strings.NewReader(`{`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirectory_LatencyHonorsCancellation(t *testing.T) {
	handler := NewDirectory(1, WithLatency(time.Hour)).Handler()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("GET", "/users", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(w, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler ignored a cancelled request")
	}
	assert.Empty(t, w.Body.String())
}

func TestClient_ListAndCreate(t *testing.T) {
	ts := httptest.NewServer(NewDirectory(30).Handler())
	defer ts.Close()

	client := NewClient(ts.URL+"/", nil)
	ctx := context.Background()

	users, err := client.ListUsers(ctx, 3)
	require.NoError(t, err)
	require.Len(t, users, DefaultPageSize)
	assert.Equal(t, 20, users[0].ID)

	small, err := client.WithPageSize(4).ListUsers(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, small, 4)

	saved, err := client.CreateUser(ctx, User{Name: "John", Location: "Sydney"})
	require.NoError(t, err)
	assert.Equal(t, User{ID: 30, Name: "John", Location: "Sydney"}, saved)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, nil).ListUsers(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
