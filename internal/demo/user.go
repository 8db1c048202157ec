package demo

// User is a directory entry. Negative IDs mark optimistic placeholders that
// the backend has not assigned yet.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Saved reports whether the backend has assigned the user's ID.
func (u User) Saved() bool {
	return u.ID >= 0
}
