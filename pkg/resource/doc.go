/*
Package resource orchestrates asynchronous actions over a single shared state.

A Resource owns one domain.State and a set of named actions. Each action is
built by a Factory that receives a Bag, the only view an action has of the
shared state:

  - CurrentState reads the live data (Resolved or ReRunning only).
  - SetState applies an optimistic, tag-preserving transform immediately.

Dispatching an action moves the state to Running or ReRunning before the call
returns, runs the action body on its own goroutine and then resolves or
rejects the state with the outcome. The last action to settle wins.

# Usage

	type User struct{ ID int; Name string }

	list := func(bag resource.Bag[[]User]) resource.ActionFunc[[]User, int] {
		return func(ctx context.Context, page int) ([]User, error) {
			users, err := fetchPage(ctx, page)
			if err != nil {
				return nil, err
			}
			if stored, ok := bag.CurrentState(); ok {
				return append(stored, users...), nil
			}
			return users, nil
		}
	}

	res, actions := resource.New(resource.Config[[]User, int]{
		Actions: map[string]resource.Factory[[]User, int]{"get": list},
	})

	actions["get"].Dispatch(ctx, 1)
	fmt.Println(res.State().Status) // running

Actions never cancel each other and failed actions are not retried.
*/
package resource
