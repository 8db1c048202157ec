package session

import (
	"context"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/ports"
)

// Host exposes a Manager through ports.ResourceHost.
type Host[T any] struct {
	manager *Manager[T]
}

var _ ports.ResourceHost = (*Host[int])(nil)

// NewHost wraps a manager.
func NewHost[T any](manager *Manager[T]) *Host[T] {
	return &Host[T]{manager: manager}
}

// Actions lists the action names of the session's resource.
func (h *Host[T]) Actions(ctx context.Context, sessionID string) ([]string, error) {
	res, err := h.manager.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return res.ActionNames(), nil
}

// State returns the latest snapshot, creating the session if needed.
func (h *Host[T]) State(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	res, err := h.manager.GetOrCreate(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return res.Snapshot()
}

// Dispatch starts an action. The action outlives ctx: only ctx values are passed on.
func (h *Host[T]) Dispatch(ctx context.Context, sessionID, action string, args any) (<-chan struct{}, error) {
	res, err := h.manager.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pending, err := res.Dispatch(context.WithoutCancel(ctx), action, args)
	if err != nil {
		return nil, err
	}
	return pending.Done(), nil
}

// Subscribe streams a snapshot per transition of the session's resource.
func (h *Host[T]) Subscribe(ctx context.Context, sessionID string) (<-chan domain.Snapshot, error) {
	res, err := h.manager.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	changes := res.Subscribe(ctx)
	out := make(chan domain.Snapshot, cap(changes))
	go func() {
		defer close(out)
		for change := range changes {
			snap, err := domain.EncodeSnapshot(change.To, change.Version)
			if err != nil {
				h.manager.cfg.logger.Error("failed to encode snapshot", "session_id", sessionID, "err", err)
				continue
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Delete drops the session and its stored snapshot.
func (h *Host[T]) Delete(ctx context.Context, sessionID string) error {
	return h.manager.Delete(ctx, sessionID)
}
