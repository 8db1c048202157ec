package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/asyncresource/internal/logging"
	"github.com/aretw0/asyncresource/internal/sanitize"
	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/ports"
	"github.com/aretw0/asyncresource/pkg/resource"
)

// Builder creates the resource of a session. seed is the last resolved value
// found in the store, or nil when the session starts from NotAsked.
type Builder[T any] func(sessionID string, seed *T) *resource.Resource[T]

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// hosted is a live resource plus the goroutine persisting its settled states.
type hosted[T any] struct {
	res    *resource.Resource[T]
	cancel context.CancelFunc
	done   chan struct{}
}

type config struct {
	locker  ports.DistributedLocker
	logger  *slog.Logger
	lockTTL time.Duration
}

// Option configures the Manager.
type Option func(*config)

// WithLocker enables distributed locking around session creation and deletion.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *config) {
		c.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLockTTL sets the expiry of distributed locks (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.lockTTL = ttl
	}
}

// Manager hosts one resource per session and mirrors its settled states into a store.
// It uses Reference Counting to garbage collect unused locks.
type Manager[T any] struct {
	store ports.SnapshotStore
	build Builder[T]
	cfg   config

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	resMu     sync.RWMutex
	resources map[string]*hosted[T]
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager[T any](store ports.SnapshotStore, build Builder[T], opts ...Option) *Manager[T] {
	cfg := config{
		logger:  logging.NewNop(), // Default to no-op
		lockTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager[T]{
		store:     store,
		build:     build,
		cfg:       cfg,
		locks:     make(map[string]*lockEntry),
		resources: make(map[string]*hosted[T]),
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager[T]) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager[T]) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Get returns the live resource of a session, if it is hosted.
func (m *Manager[T]) Get(sessionID string) (*resource.Resource[T], bool) {
	m.resMu.RLock()
	defer m.resMu.RUnlock()

	h, ok := m.resources[sessionID]
	if !ok {
		return nil, false
	}
	return h.res, true
}

// GetOrCreate returns the hosted resource of a session, building it on first use.
// Session ids must pass sanitize.SessionID.
// A resolved snapshot in the store becomes the seed; anything else starts NotAsked.
func (m *Manager[T]) GetOrCreate(ctx context.Context, sessionID string) (*resource.Resource[T], error) {
	if res, ok := m.Get(sessionID); ok {
		return res, nil
	}
	if err := sanitize.SessionID(sessionID); err != nil {
		return nil, err
	}

	var res *resource.Resource[T]
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if existing, ok := m.Get(sessionID); ok {
			res = existing
			return nil
		}

		seed, err := m.loadSeed(ctx, sessionID)
		if err != nil {
			return err
		}

		res = m.build(sessionID, seed)
		m.host(sessionID, res)
		m.cfg.logger.Debug("session created", "session_id", sessionID, "seeded", seed != nil)
		return nil
	})
	return res, err
}

func (m *Manager[T]) loadSeed(ctx context.Context, sessionID string) (*T, error) {
	snap, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return nil, nil
	}
	if errors.Is(err, domain.ErrInvalidSnapshot) {
		m.cfg.logger.Warn("ignoring unreadable snapshot", "session_id", sessionID, "err", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	state, err := domain.DecodeSnapshot[T](snap)
	if err != nil {
		m.cfg.logger.Warn("ignoring unreadable snapshot", "session_id", sessionID, "err", err)
		return nil, nil
	}
	if state.Status != domain.StatusResolved {
		return nil, nil
	}
	return &state.Data, nil
}

// host registers res and starts mirroring its settled states into the store.
// The persister wakes on every change but always saves the latest state, so a
// slow store skips intermediate states rather than the final one.
func (m *Manager[T]) host(sessionID string, res *resource.Resource[T]) {
	ctx, cancel := context.WithCancel(context.Background())
	h := &hosted[T]{res: res, cancel: cancel, done: make(chan struct{})}
	wake := res.Watch(ctx)
	saved := res.Version()

	go func() {
		defer close(h.done)
		for range wake {
			saved = m.persist(sessionID, res, saved)
		}
		// Flush whatever settled after the last wake-up was handled.
		m.persist(sessionID, res, saved)
	}()

	m.resMu.Lock()
	m.resources[sessionID] = h
	m.resMu.Unlock()
}

// persist saves the latest state of res when it is settled and newer than
// saved. It returns the version now known to be in the store.
func (m *Manager[T]) persist(sessionID string, res *resource.Resource[T], saved uint64) uint64 {
	snap, err := res.Snapshot()
	if err != nil {
		m.cfg.logger.Error("failed to encode snapshot", "session_id", sessionID, "err", err)
		return saved
	}
	// In-flight states cannot be resumed after a restart.
	if snap.Version <= saved || snap.Status.InFlight() {
		return saved
	}
	if err := m.store.Save(context.Background(), sessionID, snap); err != nil {
		m.cfg.logger.Error("failed to persist snapshot", "session_id", sessionID, "err", err)
		return saved
	}
	return snap.Version
}

// Delete stops hosting the session and removes its snapshot.
// Actions still in flight settle on the detached resource and are not persisted.
func (m *Manager[T]) Delete(ctx context.Context, sessionID string) error {
	if err := sanitize.SessionID(sessionID); err != nil {
		return err
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.resMu.Lock()
		h, ok := m.resources[sessionID]
		delete(m.resources, sessionID)
		m.resMu.Unlock()

		if ok {
			h.cancel()
			<-h.done
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// Sessions returns the ids of the sessions currently hosted by this manager.
func (m *Manager[T]) Sessions() []string {
	m.resMu.RLock()
	defer m.resMu.RUnlock()

	ids := make([]string, 0, len(m.resources))
	for id := range m.resources {
		ids = append(ids, id)
	}
	return ids
}

// List delegates to the store.
func (m *Manager[T]) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager[T]) Store() ports.SnapshotStore {
	return m.store
}

// Close waits for in-flight actions, saves the latest settled state of every
// session and stops the persistence goroutines. Hosted resources stay readable.
func (m *Manager[T]) Close() {
	m.resMu.RLock()
	live := make([]*hosted[T], 0, len(m.resources))
	for _, h := range m.resources {
		live = append(live, h)
	}
	m.resMu.RUnlock()

	for _, h := range live {
		h.res.Wait()
		h.cancel()
		<-h.done
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager[T]) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.cfg.locker != nil {
		unlock, err := m.cfg.locker.Lock(ctx, sessionID, m.cfg.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.cfg.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
