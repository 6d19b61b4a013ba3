// Package engine compiles batches of requests on a bounded worker pool.
//
// ARCHITECTURE:
//
// A batch is a list of jobs, each one request. Jobs are independent: every
// compilation owns its pattern sink, and the only shared state is the
// variable allocator, which is atomic. The engine therefore fans jobs out to
// an ants pool and collects results by index, so results come back in input
// order whatever the scheduling.
//
// Journal Flow:
// 1. Run() generates a run ID (UUIDv7) and stamps the run with the next seq
// 2. Jobs compile concurrently on the pool
// 3. After the pool drains, results are stamped with seq in input order and
//    written to the journal, if one is configured
//
// Stamping after the pool drains keeps the journal order independent of
// worker scheduling.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// All ordering uses seq from Clock, never wall time. A clock resumed at the
// journal's LatestSeq continues its order across processes.
//
// Structural Comparison:
// Variable names depend on how many names the allocator handed out before,
// so two compilations of one request rarely render identically. The query
// hash is therefore computed over queryir.Normalize'd output, which is the
// same for every compilation of a request. Replay relies on this.
//
// Cancellation:
// Cancelling the context stops jobs that have not started; running
// compilations finish. Unstarted jobs report a CANCELLED error.
package engine
