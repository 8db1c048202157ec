// Package file provides a ports.SnapshotStore backed by one JSON file per key.
package file
