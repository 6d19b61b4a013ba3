// Package store provides a SQLite-backed journal of compilations.
//
// The journal is an append-only log with:
//   - Runs: one row per batch, identified by a UUIDv7 run ID
//   - Compilations: one row per request compiled in a run, keyed by the
//     request's content-addressed ID
//
// # Critical Patterns
//
// Idempotency
//   - PRIMARY KEY(run_id, request_id) with ON CONFLICT DO NOTHING
//   - Writing the same request twice in a run keeps the first row
//
// Logical Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - LatestSeq lets a new process resume the clock after the last entry
//
// Deterministic Query Results
//   - All list queries include: ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Requests are stored as RFC 8785 canonical JSON (see ir.CanonicalJSON);
// query hashes are computed over the normalized SPARQL text with
// ir.QueryHash.
package store
