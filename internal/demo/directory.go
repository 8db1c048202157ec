package demo

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// DefaultPageSize matches json-server's page size when _limit is absent.
const DefaultPageSize = 10

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Ken", "Barbara", "Dennis", "Margaret", "Alan", "Frances", "Edsger", "Radia", "Niklaus"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Thompson", "Liskov", "Ritchie", "Hamilton", "Turing", "Allen", "Dijkstra", "Perlman", "Wirth"}
	cities     = []string{"Sydney", "Lisbon", "Recife", "Oslo", "Kyoto", "Nairobi", "Toronto", "Berlin", "Lima", "Austin", "Porto", "Dublin"}
)

// Directory is an in-memory user collection with json-server style routes.
type Directory struct {
	mu      sync.RWMutex
	users   []User
	nextID  int
	latency time.Duration
	logger  *slog.Logger
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithLatency delays every response, simulating a remote backend.
func WithLatency(d time.Duration) DirectoryOption {
	return func(dir *Directory) {
		dir.latency = d
	}
}

// WithDirectoryLogger sets the request logger (default slog.Default()).
func WithDirectoryLogger(logger *slog.Logger) DirectoryOption {
	return func(dir *Directory) {
		dir.logger = logger
	}
}

// NewDirectory creates a directory holding n generated users with IDs 0..n-1.
func NewDirectory(n int, opts ...DirectoryOption) *Directory {
	d := &Directory{
		users:  make([]User, 0, n),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	for i := 0; i < n; i++ {
		d.users = append(d.users, generateUser(i))
	}
	d.nextID = n
	return d
}

// generateUser derives a deterministic user from its ID.
func generateUser(id int) User {
	return User{
		ID:       id,
		Name:     fmt.Sprintf("%s %s", firstNames[id%len(firstNames)], lastNames[(id/len(firstNames))%len(lastNames)]),
		Location: cities[(id*7)%len(cities)],
	}
}

// Len returns the number of stored users.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// Page returns the 1-based page of users. Out of range pages are empty.
func (d *Directory) Page(page, limit int) []User {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	start := (page - 1) * limit
	if start >= len(d.users) {
		return []User{}
	}
	end := min(start+limit, len(d.users))
	out := make([]User, end-start)
	copy(out, d.users[start:end])
	return out
}

// Add stores the user under the next free ID and returns it.
func (d *Directory) Add(u User) User {
	d.mu.Lock()
	defer d.mu.Unlock()

	u.ID = d.nextID
	d.nextID++
	d.users = append(d.users, u)
	return u
}

// Routes mounts GET /users and POST /users on r.
func (d *Directory) Routes(r chi.Router) {
	r.Get("/users", d.handleList)
	r.Post("/users", d.handleCreate)
}

// Handler returns a standalone router serving the directory.
func (d *Directory) Handler() http.Handler {
	r := chi.NewRouter()
	d.Routes(r)
	return r
}

func (d *Directory) delay(r *http.Request) bool {
	if d.latency <= 0 {
		return true
	}
	timer := time.NewTimer(d.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func (d *Directory) handleList(w http.ResponseWriter, r *http.Request) {
	if !d.delay(r) {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("_page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("_limit"))

	users := d.Page(page, limit)
	d.logger.Debug("directory: list users", "page", page, "count", len(users))
	writeJSON(w, http.StatusOK, users)
}

func (d *Directory) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !d.delay(r) {
		return
	}
	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	saved := d.Add(u)
	d.logger.Debug("directory: user created", "id", saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
