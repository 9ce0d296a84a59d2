// Package journal provides SQLite-backed durable storage for the mutation
// audit log.
//
// Every attempted mutation is recorded as one row: what was asked for
// (path, kind, position), what was observed (old/new byte, sizes, chunk
// count, verification checksums) and how it ended (applied or failed, with
// the error text). Together with the on-disk .backup/.draft artifacts this
// is the audit trail for surgical binary edits.
//
// Ordering uses a monotonic seq column assigned by the database, never
// wall-clock time; row ids are UUIDv7 so they sort roughly by creation
// even outside the database.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// The journal is an optional collaborator: the mutation pipeline never
// depends on it, and callers record best-effort.
package journal
