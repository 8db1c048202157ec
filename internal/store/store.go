package store

import (
	"sync"

	"github.com/aretw0/asyncresource/pkg/domain"
)

// TransitionFunc computes the next state from the latest one.
// It returns false when the transition is a no-op and must not be published.
type TransitionFunc[T any] func(current domain.State[T]) (domain.State[T], bool)

// Store owns a single resource state and is the only place it is mutated.
// Transitions are applied under a lock against the latest snapshot, so a
// TransitionFunc must be pure and must never call back into the Store.
type Store[T any] struct {
	mu          sync.RWMutex
	state       domain.State[T]
	version     uint64
	subscribers map[chan domain.Change[T]]struct{}
	watchers    map[chan struct{}]struct{}
	onDrop      func()
}

// New creates a store holding the initial state at version 0.
func New[T any](initial domain.State[T]) *Store[T] {
	return &Store[T]{
		state:       initial,
		subscribers: make(map[chan domain.Change[T]]struct{}),
		watchers:    make(map[chan struct{}]struct{}),
	}
}

// OnDrop registers a callback invoked whenever a subscriber misses a change
// because its buffer is full. It must be set before the store is shared.
func (s *Store[T]) OnDrop(fn func()) {
	s.onDrop = fn
}

// Get returns the latest state and its version.
func (s *Store[T]) Get() (domain.State[T], uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.version
}

// Transition applies fn to the latest state. The returned bool reports
// whether a change was applied.
func (s *Store[T]) Transition(fn TransitionFunc[T]) (domain.Change[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(s.state)
	if !changed {
		return domain.Change[T]{From: s.state, To: s.state, Version: s.version}, false
	}

	change := domain.Change[T]{From: s.state, To: next, Version: s.version + 1}
	s.state = next
	s.version = change.Version

	// Publishing under the lock keeps every subscriber in version order.
	for ch := range s.subscribers {
		select {
		case ch <- change:
		default:
			if s.onDrop != nil {
				s.onDrop()
			}
		}
	}
	// A pending wake-up already covers this change.
	for w := range s.watchers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
	return change, true
}

// Subscribe registers a buffered channel receiving every subsequent change.
// The returned cancel func unregisters and closes the channel; it is safe to call more than once.
func (s *Store[T]) Subscribe(buffer int) (<-chan domain.Change[T], func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.Change[T], buffer)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, ch)
			close(ch)
		})
	}
}

// Watch registers a wake-up channel signalled after every change. Signals
// coalesce: a reader that falls behind gets one pending wake-up and should read
// the latest state with Get. The returned cancel func unregisters and closes
// the channel; it is safe to call more than once.
func (s *Store[T]) Watch() (<-chan struct{}, func()) {
	w := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return w, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers, w)
			close(w)
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (s *Store[T]) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
