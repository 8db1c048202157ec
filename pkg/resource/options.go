package resource

import (
	"log/slog"

	"github.com/aretw0/asyncresource/internal/logging"
	"github.com/aretw0/asyncresource/pkg/domain"
)

const defaultSubscriberBuffer = 16

type options struct {
	name   string
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	buffer int
}

func defaultOptions() options {
	return options{
		name:   "resource",
		logger: logging.NewNop(),
		buffer: defaultSubscriberBuffer,
	}
}

// Option configures a Resource.
type Option func(*options)

// WithName labels the resource in logs, events and metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets a structured logger for dispatch and settlement events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithSubscriberBuffer sets the channel size of each subscription.
// Subscribers that fall further behind miss changes instead of blocking transitions.
func WithSubscriberBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}
