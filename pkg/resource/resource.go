package resource

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/asyncresource/internal/store"
	"github.com/aretw0/asyncresource/pkg/domain"
)

// Config describes a resource: its actions and an optional seed.
type Config[T, A any] struct {
	// Actions maps names to factories. Zero entries is legal.
	Actions map[string]Factory[T, A]

	// InitialState seeds the resource as Resolved. Nil starts it NotAsked.
	InitialState *T
}

// dispatchable is the type-erased view of a Dispatcher used for lookups by name.
type dispatchable[T any] interface {
	Name() string
	dispatchAny(ctx context.Context, raw any) (*Pending[T], error)
}

// Resource tracks the lifecycle of the actions acting on one shared value.
// It is safe for concurrent use.
type Resource[T any] struct {
	name   string
	store  *store.Store[T]
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	buffer int

	mu      sync.RWMutex
	actions map[string]dispatchable[T]

	inflight sync.WaitGroup
}

// New creates a resource and binds every configured action to it.
// It returns the resource alongside dispatchers keyed like cfg.Actions.
// A nil factory panics.
func New[T, A any](cfg Config[T, A], opts ...Option) (*Resource[T], Actions[T, A]) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	initial := domain.NotAsked[T]()
	if cfg.InitialState != nil {
		initial = domain.Resolved(*cfg.InitialState)
	}

	r := &Resource[T]{
		name:    o.name,
		store:   store.New(initial),
		logger:  o.logger.With("resource", o.name),
		hooks:   o.hooks,
		buffer:  o.buffer,
		actions: make(map[string]dispatchable[T]),
	}
	r.store.OnDrop(func() {
		r.logger.Warn("subscriber buffer full, dropping change")
	})

	actions := make(Actions[T, A], len(cfg.Actions))
	for name, factory := range cfg.Actions {
		d, err := Register(r, name, factory)
		if err != nil {
			panic(err)
		}
		actions[name] = d
	}

	return r, actions
}

// Register binds an additional action, with its own argument type, to r.
func Register[T, A any](r *Resource[T], name string, factory Factory[T, A]) (*Dispatcher[T, A], error) {
	if factory == nil {
		return nil, fmt.Errorf("resource %s: nil factory for action %q", r.name, name)
	}

	if r.hasAction(name) {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateAction, name)
	}

	// The factory runs unlocked: it may inspect or extend the resource.
	d := &Dispatcher[T, A]{name: name, resource: r}
	d.fn = factory(&bag[T]{resource: r, action: name})
	if d.fn == nil {
		return nil, fmt.Errorf("resource %s: factory for action %q returned nil", r.name, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[name]; exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateAction, name)
	}
	r.actions[name] = d
	return d, nil
}

func (r *Resource[T]) hasAction(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// Name returns the resource label.
func (r *Resource[T]) Name() string {
	return r.name
}

// State returns the latest state.
func (r *Resource[T]) State() domain.State[T] {
	state, _ := r.store.Get()
	return state
}

// Version returns the number of transitions applied so far.
func (r *Resource[T]) Version() uint64 {
	_, version := r.store.Get()
	return version
}

// Snapshot returns the serializable form of the latest state.
func (r *Resource[T]) Snapshot() (domain.Snapshot, error) {
	state, version := r.store.Get()
	return domain.EncodeSnapshot(state, version)
}

// ActionNames returns the registered action names in lexical order.
func (r *Resource[T]) ActionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch starts an action by name. Arguments of the action's own type are
// passed through; maps and scalars (e.g. decoded JSON) are converted.
func (r *Resource[T]) Dispatch(ctx context.Context, name string, args any) (*Pending[T], error) {
	r.mu.RLock()
	d, ok := r.actions[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, name)
	}
	return d.dispatchAny(ctx, args)
}

// Subscribe streams every transition applied after the call until ctx is done,
// at which point the channel is closed.
func (r *Resource[T]) Subscribe(ctx context.Context) <-chan domain.Change[T] {
	ch, cancel := r.store.Subscribe(r.buffer)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch
}

// Watch returns a channel signalled after transitions until ctx is done, at
// which point it is closed. Signals coalesce, so a slow reader never misses
// the latest state: it should read Snapshot or State on every wake-up.
func (r *Resource[T]) Watch(ctx context.Context) <-chan struct{} {
	wake, cancel := r.store.Watch()
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return wake
}

// Wait blocks until every action dispatched so far has settled.
func (r *Resource[T]) Wait() {
	r.inflight.Wait()
}

func (r *Resource[T]) transition(ctx context.Context, action string, fn store.TransitionFunc[T]) {
	change, changed := r.store.Transition(fn)
	if !changed || r.hooks.OnTransition == nil {
		return
	}
	r.hooks.OnTransition(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventTransition,
			Resource:  r.name,
		},
		Action:  action,
		From:    change.From.Status,
		To:      change.To.Status,
		Version: change.Version,
	})
}

func (r *Resource[T]) emitAction(ctx context.Context, typ domain.EventType, action string, elapsed time.Duration, err error) {
	var hook func(context.Context, *domain.ActionEvent)
	switch typ {
	case domain.EventDispatch:
		hook = r.hooks.OnDispatch
	case domain.EventResolve:
		hook = r.hooks.OnResolve
	case domain.EventReject:
		hook = r.hooks.OnReject
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.ActionEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      typ,
			Resource:  r.name,
		},
		Action:   action,
		Duration: elapsed,
		Err:      err,
	})
}
