// Package store provides SQLite-backed durable storage for the inkwell
// document engine.
//
// It owns three tables plus migration tracking:
//
//   - operations: the append-only, per-document operation log. This is
//     the source of truth; live state is always derivable by replay.
//   - snapshots: compacted binary document state at a known historical
//     operation count, used to bound cold-load replay cost.
//   - documents: descriptive metadata (title, block count, timestamps).
//     Never authoritative.
//
// Ordering: the operation log is total-ordered per document by rowid.
// Rowids assign insertion order, so same-millisecond writes keep their
// submission order; timestamps are informational wall clock only. All
// log reads use ORDER BY id ASC so replay is deterministic.
//
// Schema changes are expressed as an ordered list of versioned
// migrations (migrate.go). Each migration runs inside one transaction
// together with its tracking-row insert, so a migration's effects and
// its record commit or roll back as a unit. Migrations are forward-only.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//   - single open connection: one local writer by design
package store
