package resource

import (
	"context"

	"github.com/aretw0/asyncresource/pkg/domain"
)

// Bag is the view of the shared state handed to an action factory.
type Bag[T any] interface {
	// CurrentState returns the live data if the resource is Resolved or
	// ReRunning. It reflects the state at call time.
	CurrentState() (T, bool)

	// SetState applies an optimistic update to the live data, keeping the
	// current lifecycle tag. It is a silent no-op when there is no data or
	// transform is nil.
	// The transform must be pure and must not call back into the resource.
	SetState(transform func(T) T)
}

// bag binds a Bag to one resource on behalf of one action.
type bag[T any] struct {
	resource *Resource[T]
	action   string
}

func (b *bag[T]) CurrentState() (T, bool) {
	return b.resource.State().Value()
}

func (b *bag[T]) SetState(transform func(T) T) {
	b.resource.transition(context.Background(), b.action, func(cur domain.State[T]) (domain.State[T], bool) {
		if transform == nil || !cur.HasData() {
			return cur, false
		}
		return domain.ApplyOptimisticUpdate(cur, transform), true
	})
}
