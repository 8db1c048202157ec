package resource

import (
	"context"
	"sync"
)

// Pending is returned by every dispatch. Callers may ignore it: the outcome
// is always applied to the resource state whether or not anyone awaits it.
type Pending[T any] struct {
	action string
	result T
	err    error
	once   sync.Once
	done   chan struct{}
}

func newPending[T any](action string) *Pending[T] {
	return &Pending[T]{action: action, done: make(chan struct{})}
}

func (p *Pending[T]) complete(result T, err error) {
	p.once.Do(func() {
		p.result = result
		p.err = err
		close(p.done)
	})
}

// Action returns the name of the dispatched action.
func (p *Pending[T]) Action() string {
	return p.action
}

// Done is closed once the action has settled and its transition is visible.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// IsComplete reports whether the action has settled without blocking.
func (p *Pending[T]) IsComplete() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Await blocks until the action settles or ctx is done.
// Giving up on ctx does not cancel the action.
func (p *Pending[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
