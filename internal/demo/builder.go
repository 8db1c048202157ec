package demo

import (
	"log/slog"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/resource"
	"github.com/aretw0/asyncresource/pkg/session"
)

// Action names exposed by a users resource.
const (
	ActionGet = "get"
	ActionAdd = "add"
)

// NewResource creates a users resource named name, seeded when seed is non-nil.
func NewResource(name string, client *Client, seed *Users, logger *slog.Logger, hooks domain.LifecycleHooks) *resource.Resource[Users] {
	res, _ := resource.New(resource.Config[Users, struct{}]{InitialState: seed},
		resource.WithName(name),
		resource.WithLogger(logger),
		resource.WithLifecycleHooks(hooks),
	)
	// Both names are fresh on a new resource.
	_, _ = resource.Register(res, ActionGet, GetUsers(client))
	_, _ = resource.Register(res, ActionAdd, AddUser(client))
	return res
}

// Builder returns a session.Builder creating one users resource per session.
func Builder(client *Client, logger *slog.Logger, hooks domain.LifecycleHooks) session.Builder[Users] {
	return func(sessionID string, seed *Users) *resource.Resource[Users] {
		return NewResource(sessionID, client, seed, logger, hooks)
	}
}
