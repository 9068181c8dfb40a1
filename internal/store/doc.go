// Package store persists reload history and emitter-state snapshots in SQLite.
//
// Two tables:
//   - generations: one row per installed generation, ordered by seq
//   - emitter_states: the most recent side-table snapshot
//
// Snapshots are keyed by generation hash, not generation ID. A process that
// restarts with byte-identical configuration gets a fresh ID but the same
// hash, so its snapshot is still valid; loaded states are restamped with the
// caller's generation ID. A snapshot taken under a different hash is refused
// with ErrHashMismatch, since its indices may name different definitions.
//
// All queries order by seq or instance_id so results are deterministic.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000ms
//   - foreign_keys=ON
//   - single connection (SQLite has one writer)
package store
