package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Snapshot is the serializable form of a State, used by stores and transports.
type Snapshot struct {
	Status    Status          `json:"status"`
	Action    string          `json:"action,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Version   uint64          `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// EncodeSnapshot converts a state into its wire form.
// Data is only encoded for states that carry it.
func EncodeSnapshot[T any](state State[T], version uint64) (Snapshot, error) {
	snap := Snapshot{
		Status:    state.Status,
		Action:    state.Action,
		Version:   version,
		UpdatedAt: time.Now().UTC(),
	}
	if state.HasData() {
		raw, err := json.Marshal(state.Data)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to marshal data: %w", err)
		}
		snap.Data = raw
	}
	if state.Status == StatusRejected && state.Err != nil {
		snap.Error = state.Err.Error()
	}
	return snap, nil
}

// DecodeSnapshot rebuilds a state from its wire form.
// The original error value of a rejected state is not recoverable; only its message is.
func DecodeSnapshot[T any](snap Snapshot) (State[T], error) {
	switch snap.Status {
	case StatusNotAsked:
		return NotAsked[T](), nil
	case StatusRunning:
		return Running[T](), nil
	case StatusRejected:
		msg := snap.Error
		if msg == "" {
			msg = "unknown error"
		}
		return Rejected[T](errors.New(msg)), nil
	case StatusResolved, StatusReRunning:
		var data T
		if len(snap.Data) > 0 {
			if err := json.Unmarshal(snap.Data, &data); err != nil {
				return State[T]{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
			}
		}
		if snap.Status == StatusResolved {
			return Resolved(data), nil
		}
		return ReRunning(snap.Action, data), nil
	default:
		return State[T]{}, fmt.Errorf("%w: unknown status %q", ErrInvalidSnapshot, snap.Status)
	}
}
