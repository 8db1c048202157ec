/*
Package domain contains the lifecycle model of an asynchronous resource.

It defines the tagged State, the pure transitions between its variants, the
serializable Snapshot and the lifecycle events emitted around dispatched
actions. This package is kept free of I/O and concurrency concerns; stores and
orchestrators apply these transitions, they never assign states directly.

# Lifecycle

  - NotAsked is the initial state of an unseeded resource; Resolved{seed} otherwise.
  - BeginAction: Resolved becomes ReRunning (data kept), anything else becomes Running.
  - ApplyOptimisticUpdate: transforms data of Resolved/ReRunning, no-op otherwise.
  - Resolve / Reject: unconditional, from any state.

There is no terminal state. A resource cycles between in-flight and settled
states for as long as its owner keeps it.
*/
package domain
