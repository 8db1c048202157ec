/*
Package ports defines the driven ports (interfaces) around a resource.

These interfaces decouple resource orchestration from persistence and
coordination backends.

# Key Interfaces

  - SnapshotStore: persists the last settled snapshot of a resource (e.g., Memory or Redis).
  - DistributedLocker: provides distributed locking when several replicas share a store.
  - ResourceHost: the type-erased view of session resources used by transports.
*/
package ports
