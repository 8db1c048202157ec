package domain

// Status is the lifecycle tag of an asynchronous resource.
type Status string

const (
	StatusNotAsked  Status = "not_asked" // No action has ever run
	StatusRunning   Status = "running"   // In flight, nothing resolved yet
	StatusReRunning Status = "rerunning" // In flight over a previously resolved value
	StatusResolved  Status = "resolved"  // Last action succeeded
	StatusRejected  Status = "rejected"  // Last action failed
)

// InFlight reports whether the status has an action outstanding.
func (s Status) InFlight() bool {
	return s == StatusRunning || s == StatusReRunning
}

// State is the snapshot of a resource. Exactly one variant is active, selected by Status.
type State[T any] struct {
	// Status selects the active variant.
	Status Status

	// Action names the outstanding action while Status == StatusReRunning.
	// Informational only: it never blocks other dispatches.
	Action string

	// Data is meaningful only for StatusResolved and StatusReRunning.
	Data T

	// Err is set only for StatusRejected.
	Err error
}

// NotAsked returns the initial state of an unseeded resource.
func NotAsked[T any]() State[T] {
	return State[T]{Status: StatusNotAsked}
}

// Running returns the in-flight state without data.
func Running[T any]() State[T] {
	return State[T]{Status: StatusRunning}
}

// ReRunning returns the in-flight state carrying the last resolved value.
func ReRunning[T any](action string, data T) State[T] {
	return State[T]{Status: StatusReRunning, Action: action, Data: data}
}

// Resolved returns an authoritative state holding data.
func Resolved[T any](data T) State[T] {
	return State[T]{Status: StatusResolved, Data: data}
}

// Rejected returns a failed state.
func Rejected[T any](err error) State[T] {
	return State[T]{Status: StatusRejected, Err: err}
}

// Value returns the carried data and true for Resolved and ReRunning states.
func (s State[T]) Value() (T, bool) {
	if s.HasData() {
		return s.Data, true
	}
	var zero T
	return zero, false
}

// HasData reports whether the state carries a resolved value.
func (s State[T]) HasData() bool {
	return s.Status == StatusResolved || s.Status == StatusReRunning
}

// InFlight reports whether an action is outstanding.
func (s State[T]) InFlight() bool {
	return s.Status.InFlight()
}

// Change describes one applied transition. Version increases by one per change.
type Change[T any] struct {
	From    State[T]
	To      State[T]
	Version uint64
}
