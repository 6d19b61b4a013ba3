package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/roach88/pathq/internal/compiler"
	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/metrics"
	"github.com/roach88/pathq/internal/queryir"
	"github.com/roach88/pathq/internal/querysparql"
	"github.com/roach88/pathq/internal/store"
)

// Journal records runs and compilations. *store.Store implements it.
type Journal interface {
	WriteRun(ctx context.Context, run store.Run) error
	WriteCompilation(ctx context.Context, c store.Compilation) (bool, error)
}

// Job is one request in a batch. Name identifies it in results and logs,
// typically the file it was loaded from.
type Job struct {
	Name    string
	Request ir.Request
}

// Result is the outcome of one job.
type Result struct {
	Name      string
	RequestID string
	Seq       int64

	// Query and SPARQL are set on success.
	Query  *queryir.Select
	SPARQL string

	// QueryHash identifies the normalized query; it is the same for every
	// compilation of the request.
	QueryHash string

	Err error
}

// Batch is the outcome of Run.
type Batch struct {
	RunID   string
	Seq     int64
	Results []Result
}

// Failed returns the number of results with an error.
func (b *Batch) Failed() int {
	n := 0
	for _, r := range b.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Engine compiles batches of requests.
type Engine struct {
	compiler    *compiler.Compiler
	renderer    *querysparql.SPARQLCompiler
	clock       *Clock
	ids         RunIDGenerator
	journal     Journal
	metrics     *metrics.Metrics
	logger      *slog.Logger
	workers     int
	maxCriteria int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithWorkers sets the pool size. Values below 1 select GOMAXPROCS.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithJournal records every run in j.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithClock sets the clock used to stamp runs and results.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithRunIDGenerator sets the run ID generator. Defaults to UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithMetrics records batch metrics on m.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMaxCriteria sets the per-request criteria limit (default
// DefaultMaxCriteria). Zero disables the limit.
func WithMaxCriteria(n int) EngineOption {
	return func(e *Engine) {
		e.maxCriteria = n
	}
}

// New creates an engine compiling with c.
func New(c *compiler.Compiler, opts ...EngineOption) *Engine {
	e := &Engine{
		compiler:    c,
		renderer:    querysparql.NewSPARQLCompiler(),
		clock:       NewClock(),
		ids:         UUIDv7Generator{},
		logger:      slog.Default(),
		maxCriteria: DefaultMaxCriteria,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Run compiles jobs concurrently and returns their results in input order.
//
// Per-job failures are reported in Result.Err and do not fail the batch.
// Run itself fails when the pool cannot be created, when a journal write
// fails, or when ctx is cancelled (results for unstarted jobs then carry a
// CANCELLED error and the partial batch is still returned).
func (e *Engine) Run(ctx context.Context, jobs []Job) (*Batch, error) {
	batch := &Batch{
		RunID:   e.ids.Generate(),
		Seq:     e.clock.Next(),
		Results: make([]Result, len(jobs)),
	}
	e.metrics.ObserveBatch(len(jobs))

	e.logger.Info("batch starting", "run", batch.RunID, "jobs", len(jobs), "workers", e.workers)

	// Journal writes outlive ctx so that jobs finished before a
	// cancellation are still recorded.
	jctx := context.WithoutCancel(ctx)

	if e.journal != nil {
		err := e.journal.WriteRun(jctx, store.Run{
			ID:              batch.RunID,
			Seq:             batch.Seq,
			CompilerVersion: ir.CompilerVersion,
			IRVersion:       ir.IRVersion,
		})
		if err != nil {
			return nil, &BatchError{Code: ErrCodeJournal, Message: "record run", RunID: batch.RunID, Err: err}
		}
	}

	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, job := range jobs {
		if ctx.Err() != nil {
			batch.Results[i] = Result{Name: job.Name, Err: NewCancelledError(batch.RunID, job.Name, ctx.Err())}
			continue
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			batch.Results[i] = e.runJob(ctx, batch.RunID, job)
		})
		if err != nil {
			wg.Done()
			batch.Results[i] = Result{Name: job.Name, Err: fmt.Errorf("submit job %s: %w", job.Name, err)}
		}
	}
	wg.Wait()

	// Stamp in input order so the journal does not depend on scheduling.
	for i := range batch.Results {
		batch.Results[i].Seq = e.clock.Next()
		if e.journal != nil && !IsCancelled(batch.Results[i].Err) {
			if err := e.record(jctx, batch.RunID, jobs[i], batch.Results[i]); err != nil {
				return batch, err
			}
		}
	}

	e.logger.Info("batch finished",
		"run", batch.RunID,
		"jobs", len(jobs),
		"failed", batch.Failed(),
	)

	if err := ctx.Err(); err != nil {
		return batch, err
	}
	return batch, nil
}

// CompileOne compiles a single request outside any batch.
func (e *Engine) CompileOne(ctx context.Context, job Job) Result {
	return e.runJob(ctx, "", job)
}

// runJob compiles and renders one job. Panics are converted to errors so
// that one bad job cannot take down the batch.
func (e *Engine) runJob(ctx context.Context, runID string, job Job) (result Result) {
	result.Name = job.Name
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("job panicked", "run", runID, "job", job.Name, "panic", r)
			result.Err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		result.Err = NewCancelledError(runID, job.Name, err)
		return result
	}

	id, err := ir.RequestID(job.Request)
	if err != nil {
		result.Err = fmt.Errorf("request ID: %w", err)
		return result
	}
	result.RequestID = id

	if err := checkQuota(job.Name, job.Request, e.maxCriteria); err != nil {
		result.Err = err
		return result
	}

	q, err := e.compiler.Compile(job.Request)
	if err != nil {
		e.logger.Debug("job failed", "run", runID, "job", job.Name, "error", err)
		result.Err = err
		return result
	}

	text, hash, err := e.render(q)
	if err != nil {
		result.Err = err
		return result
	}
	result.Query = q
	result.SPARQL = text
	result.QueryHash = hash
	return result
}

// render returns the query text and the hash of its normalized text.
func (e *Engine) render(q *queryir.Select) (text, hash string, err error) {
	text, err = e.renderer.Compile(q)
	if err != nil {
		return "", "", fmt.Errorf("render query: %w", err)
	}
	normalized, err := e.renderer.Compile(queryir.Normalize(q))
	if err != nil {
		return "", "", fmt.Errorf("render normalized query: %w", err)
	}
	return text, ir.QueryHash(normalized), nil
}

// record writes one result to the journal.
// Results without a request ID (unhashable requests) are skipped.
func (e *Engine) record(ctx context.Context, runID string, job Job, r Result) error {
	if r.RequestID == "" {
		return nil
	}
	c := store.Compilation{
		RunID:     runID,
		RequestID: r.RequestID,
		Seq:       r.Seq,
		Name:      job.Name,
		Request:   job.Request,
		SPARQL:    r.SPARQL,
		QueryHash: r.QueryHash,
	}
	if r.Err != nil {
		c.ErrorCode = errorCode(r.Err)
		c.Error = r.Err.Error()
	}
	inserted, err := e.journal.WriteCompilation(ctx, c)
	if err != nil {
		return &BatchError{Code: ErrCodeJournal, Message: "record compilation", RunID: runID, Job: job.Name, Err: err}
	}
	if !inserted {
		e.logger.Debug("compilation already journaled, skipping (idempotent)",
			"run", runID,
			"request", r.RequestID,
		)
	}
	return nil
}

// errorCode returns the code a failure is journaled under.
func errorCode(err error) string {
	if code := compiler.Code(err); code != "" {
		return string(code)
	}
	if IsQuotaError(err) {
		return string(ErrCodeQuotaExceeded)
	}
	return "UNKNOWN"
}
