package resource

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ActionFunc is the body of an action. A nil error resolves the resource
// with the returned value; a non-nil error rejects it.
type ActionFunc[T, A any] func(ctx context.Context, args A) (T, error)

// Factory builds an action body from the Bag it is bound to.
// It is called once, when the action is registered.
type Factory[T, A any] func(bag Bag[T]) ActionFunc[T, A]

// Dispatcher is the dispatchable handle of one registered action.
type Dispatcher[T, A any] struct {
	name     string
	resource *Resource[T]
	fn       ActionFunc[T, A]
}

// Actions maps action names to their dispatchers.
type Actions[T, A any] map[string]*Dispatcher[T, A]

// Name returns the registered action name.
func (d *Dispatcher[T, A]) Name() string {
	return d.name
}

// Dispatch starts the action. Before it returns the resource is Running, or
// ReRunning if it was Resolved. The body runs on its own goroutine with ctx;
// its outcome is applied to the resource even if ctx is canceled meanwhile.
func (d *Dispatcher[T, A]) Dispatch(ctx context.Context, args A) *Pending[T] {
	r := d.resource
	pending := newPending[T](d.name)

	r.inflight.Add(1)
	r.emitAction(ctx, domain.EventDispatch, d.name, 0, nil)
	r.transition(ctx, d.name, func(cur domain.State[T]) (domain.State[T], bool) {
		return domain.BeginAction(cur, d.name), true
	})
	r.logger.Debug("action dispatched", "action", d.name)

	start := time.Now()
	go func() {
		defer r.inflight.Done()

		result, err := d.invoke(ctx, args)
		elapsed := time.Since(start)

		if err != nil {
			r.transition(ctx, d.name, func(domain.State[T]) (domain.State[T], bool) {
				return domain.Reject[T](err), true
			})
			r.logger.Warn("action rejected", "action", d.name, "duration", elapsed, "err", err)
			r.emitAction(ctx, domain.EventReject, d.name, elapsed, err)
		} else {
			r.transition(ctx, d.name, func(domain.State[T]) (domain.State[T], bool) {
				return domain.Resolve(result), true
			})
			r.logger.Debug("action resolved", "action", d.name, "duration", elapsed)
			r.emitAction(ctx, domain.EventResolve, d.name, elapsed, nil)
		}

		pending.complete(result, err)
	}()

	return pending
}

// invoke runs the body, turning a panic into a rejection.
func (d *Dispatcher[T, A]) invoke(ctx context.Context, args A) (result T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var zero T
			result = zero
			err = fmt.Errorf("%w: %s: %v", domain.ErrActionPanicked, d.name, rec)
		}
	}()
	return d.fn(ctx, args)
}

// dispatchAny converts loosely typed arguments (e.g. decoded JSON) into A.
func (d *Dispatcher[T, A]) dispatchAny(ctx context.Context, raw any) (*Pending[T], error) {
	args, err := decodeArgs[A](raw)
	if err != nil {
		return nil, fmt.Errorf("%w for %q: %v", domain.ErrInvalidArguments, d.name, err)
	}
	return d.Dispatch(ctx, args), nil
}

// decodeArgs accepts an A as-is, nil as the zero A, and otherwise decodes
// maps and scalars using json field names.
func decodeArgs[A any](raw any) (A, error) {
	var args A
	if raw == nil {
		return args, nil
	}
	if typed, ok := raw.(A); ok {
		return typed, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &args,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return args, err
	}
	if err := decoder.Decode(raw); err != nil {
		return args, err
	}
	return args, nil
}
