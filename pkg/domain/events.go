package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDispatch   EventType = "dispatch"
	EventTransition EventType = "transition"
	EventResolve    EventType = "resolve"
	EventReject     EventType = "reject"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Resource  string    `json:"resource"`
}

// ActionEvent represents a dispatch or the settlement of a dispatched action.
type ActionEvent struct {
	EventBase
	Action   string        `json:"action"`
	Duration time.Duration `json:"duration,omitempty"` // Zero on dispatch
	Err      error         `json:"-"`
}

// TransitionEvent represents one applied state transition.
type TransitionEvent struct {
	EventBase
	Action  string `json:"action,omitempty"`
	From    Status `json:"from"`
	To      Status `json:"to"`
	Version uint64 `json:"version"`
}

// LifecycleHooks defines callbacks for resource observability.
// Hooks run synchronously on the goroutine that caused the event and must not
// call back into the resource that emitted them.
type LifecycleHooks struct {
	OnDispatch   func(context.Context, *ActionEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnResolve    func(context.Context, *ActionEvent)
	OnReject     func(context.Context, *ActionEvent)
}
