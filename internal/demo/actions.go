package demo

import (
	"context"
	"slices"

	"github.com/aretw0/asyncresource/pkg/resource"
	"github.com/google/uuid"
)

// Users is the resource data: every user loaded so far, in page order.
type Users = []User

// GetUsers fetches a page and appends it to the users already loaded.
func GetUsers(client *Client) resource.Factory[Users, int] {
	return func(bag resource.Bag[Users]) resource.ActionFunc[Users, int] {
		return func(ctx context.Context, page int) (Users, error) {
			users, err := client.ListUsers(ctx, page)
			if err != nil {
				return nil, err
			}
			stored, ok := bag.CurrentState()
			if !ok {
				return users, nil
			}
			return append(slices.Clone(stored), users...), nil
		}
	}
}

// AddUser shows the user immediately under a placeholder ID, saves it, and
// settles on the loaded users plus the saved one with placeholders removed.
func AddUser(client *Client) resource.Factory[Users, User] {
	return func(bag resource.Bag[Users]) resource.ActionFunc[Users, User] {
		return func(ctx context.Context, u User) (Users, error) {
			placeholder := u
			placeholder.ID = placeholderID()
			bag.SetState(func(users Users) Users {
				return append(slices.Clone(users), placeholder)
			})

			saved, err := client.CreateUser(ctx, u)
			if err != nil {
				return nil, err
			}

			stored, ok := bag.CurrentState()
			if !ok {
				return Users{saved}, nil
			}
			out := make(Users, 0, len(stored)+1)
			for _, existing := range append(slices.Clone(stored), saved) {
				if existing.Saved() {
					out = append(out, existing)
				}
			}
			return out, nil
		}
	}
}

// placeholderID returns a random negative ID.
func placeholderID() int {
	return placeholderFrom(uuid.New().ID())
}

// placeholderFrom maps id into [-2^31, -1], which fits int on every platform.
func placeholderFrom(id uint32) int {
	return -int(id>>1) - 1
}
