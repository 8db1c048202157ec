/*
Package session hosts one resource per session id.

It provides creation on first use, seeding from the last resolved snapshot
of a SnapshotStore, and mirroring of settled states back into that store.
Creation and deletion are serialized per session with local ref-counted
locks and, when configured, a DistributedLocker shared across replicas.
*/
package session
