// Package middleware wraps a ports.SnapshotStore with encryption at rest and
// redaction of sensitive fields.
package middleware
