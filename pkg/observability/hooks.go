package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/asyncresource/pkg/domain"
)

// LogHooks logs every transition at debug level. Rejections are already
// logged by the resource itself.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition",
				"resource", e.Resource,
				"action", e.Action,
				"from", e.From,
				"to", e.To,
				"version", e.Version,
			)
		},
	}
}

// Combine fans each event out to every hook set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks

	for _, s := range sets {
		combined.OnDispatch = chainAction(combined.OnDispatch, s.OnDispatch)
		combined.OnResolve = chainAction(combined.OnResolve, s.OnResolve)
		combined.OnReject = chainAction(combined.OnReject, s.OnReject)
		combined.OnTransition = chainTransition(combined.OnTransition, s.OnTransition)
	}
	return combined
}

func chainAction(a, b func(context.Context, *domain.ActionEvent)) func(context.Context, *domain.ActionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.ActionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainTransition(a, b func(context.Context, *domain.TransitionEvent)) func(context.Context, *domain.TransitionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.TransitionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
