package domain

import "errors"

// ErrActionPanicked is the rejection cause when an action body panics.
var ErrActionPanicked = errors.New("action panicked")

// ErrUnknownAction is returned when dispatching a name that was never registered.
var ErrUnknownAction = errors.New("unknown action")

// ErrDuplicateAction is returned when registering a name twice on the same resource.
var ErrDuplicateAction = errors.New("action already registered")

// ErrSnapshotNotFound is returned when a snapshot key cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrInvalidSnapshot is returned when a stored snapshot cannot be decoded.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ErrInvalidArguments is returned when dispatch arguments cannot be converted to the action's argument type.
var ErrInvalidArguments = errors.New("invalid action arguments")

// ErrInvalidSessionID is returned for session ids that are empty, too long or not filename-safe.
var ErrInvalidSessionID = errors.New("invalid session id")
