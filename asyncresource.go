package asyncresource

import (
	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/resource"
)

// State is the lifecycle snapshot of a resource.
type State[T any] = domain.State[T]

// Bag is the view of the shared state handed to action factories.
type Bag[T any] = resource.Bag[T]

// ActionFunc is an action body.
type ActionFunc[T, A any] = resource.ActionFunc[T, A]

// Factory builds an action body from its Bag.
type Factory[T, A any] = resource.Factory[T, A]

// Config lists the actions of a resource and its optional seed.
type Config[T, A any] = resource.Config[T, A]

// Resource is the orchestrator owning the state.
type Resource[T any] = resource.Resource[T]

// Actions maps action names to dispatchers.
type Actions[T, A any] = resource.Actions[T, A]

// Option configures a Resource.
type Option = resource.Option

// Re-exported options.
var (
	WithName             = resource.WithName
	WithLogger           = resource.WithLogger
	WithLifecycleHooks   = resource.WithLifecycleHooks
	WithSubscriberBuffer = resource.WithSubscriberBuffer
)

// New creates a resource from cfg and returns it with its dispatchable actions.
// It is the library entry point; see package resource for details.
func New[T, A any](cfg Config[T, A], opts ...Option) (*Resource[T], Actions[T, A]) {
	return resource.New(cfg, opts...)
}

// Pending is the future returned by a dispatch.
type Pending[T any] = resource.Pending[T]

// Status selects the variant of a State.
type Status = domain.Status

// Lifecycle statuses.
const (
	StatusNotAsked  = domain.StatusNotAsked
	StatusRunning   = domain.StatusRunning
	StatusReRunning = domain.StatusReRunning
	StatusResolved  = domain.StatusResolved
	StatusRejected  = domain.StatusRejected
)

// Register binds an action with its own argument type to an existing resource.
func Register[T, A any](r *Resource[T], name string, factory Factory[T, A]) (*resource.Dispatcher[T, A], error) {
	return resource.Register(r, name, factory)
}
