// Package demo is a paginated user list backed by a fake user directory.
// The directory serves the same routes as a json-server "users" collection, so
// the actions can talk to it over HTTP exactly as a browser client would.
package demo
