package domain

// The functions below are the only transitions of the resource lifecycle.
// They are pure: callers apply them against the latest snapshot held by a store.

// BeginAction marks an action as in flight.
// A Resolved state keeps its data as ReRunning; every other state collapses
// to Running and drops whatever it carried.
func BeginAction[T any](current State[T], action string) State[T] {
	if current.Status == StatusResolved {
		return ReRunning(action, current.Data)
	}
	return Running[T]()
}

// ApplyOptimisticUpdate transforms the carried data of a Resolved or
// ReRunning state, preserving its tag and action name. Other states are
// returned unchanged since there is no confirmed value to transform.
func ApplyOptimisticUpdate[T any](current State[T], transform func(T) T) State[T] {
	if !current.HasData() || transform == nil {
		return current
	}
	next := current
	next.Data = transform(current.Data)
	return next
}

// Resolve returns Resolved{data} regardless of the previous state.
func Resolve[T any](data T) State[T] {
	return Resolved(data)
}

// Reject returns Rejected{err} regardless of the previous state.
func Reject[T any](err error) State[T] {
	return Rejected[T](err)
}
