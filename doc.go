/*
Package asyncresource tracks the lifecycle of asynchronous actions that read and
optimistically mutate a single piece of shared state.

A resource is always in exactly one of five states: NotAsked, Running,
ReRunning (in flight over a previously resolved value), Resolved or Rejected.
Consumers read the state and dispatch named actions; actions receive a Bag
to read the live value and apply optimistic updates before their own work
completes.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/asyncresource"
	)

	func main() {
		counter := func(bag asyncresource.Bag[int]) asyncresource.ActionFunc[int, int] {
			return func(ctx context.Context, delta int) (int, error) {
				bag.SetState(func(n int) int { return n + delta }) // visible immediately
				n, _ := bag.CurrentState()
				return n, nil
			}
		}

		seed := 0
		res, actions := asyncresource.New(asyncresource.Config[int, int]{
			Actions:      map[string]asyncresource.Factory[int, int]{"inc": counter},
			InitialState: &seed,
		})

		n, err := actions["inc"].Dispatch(context.Background(), 2).Await(context.Background())
		fmt.Println(n, err, res.State().Status) // 2 <nil> resolved
	}

Failed actions move the resource to Rejected. Nothing is cached, retried,
deduplicated or canceled by the library.
*/
package asyncresource
