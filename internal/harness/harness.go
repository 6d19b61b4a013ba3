package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pathq/internal/compiler"
	"github.com/roach88/pathq/internal/engine"
	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/queryir"
	"github.com/roach88/pathq/internal/querysparql"
	"github.com/roach88/pathq/internal/store"
)

// Harness is the test execution engine.
// It runs scenarios through the batch engine with a private allocator,
// a fixed run ID and an in-memory journal.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
	runID  string
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory journal
// 2. Compile the request as a one-job batch
// 3. Replay the journaled run and check it reproduces
// 4. Check the expect clause and evaluate assertions
//
// The returned error is for harness failures; scenario failures are
// reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	// Suppress logs in tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runID := "scenario-" + scenario.Name

	c := compiler.New(
		compiler.WithAllocator(compiler.NewAllocator()),
		compiler.WithLogger(logger),
	)
	h := &Harness{
		store: st,
		engine: engine.New(c,
			engine.WithJournal(st),
			engine.WithRunIDGenerator(engine.NewFixedGenerator(runID)),
			engine.WithWorkers(1),
			engine.WithLogger(logger),
		),
		logger: logger,
		runID:  runID,
	}

	return h.execute(ctx, scenario)
}

func (h *Harness) execute(ctx context.Context, scenario *Scenario) (*Result, error) {
	batch, err := h.engine.Run(ctx, []engine.Job{{Name: scenario.Name, Request: scenario.Request}})
	if err != nil {
		return nil, fmt.Errorf("failed to run scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	compiled := batch.Results[0]
	if compiled.Err != nil {
		result.ErrorCode = errorCode(compiled.Err)
		result.Error = compiled.Err.Error()
	} else if err := describe(result, compiled.Query); err != nil {
		return nil, err
	}

	if _, err := h.engine.Replay(ctx, h.store, h.runID); err != nil {
		if !engine.IsReplayMismatch(err) {
			return nil, fmt.Errorf("failed to replay scenario %s: %w", scenario.Name, err)
		}
		result.AddError("replay did not reproduce the compilation: " + err.Error())
	}

	switch {
	case scenario.ExpectsError() && result.ErrorCode == "":
		result.AddError(fmt.Sprintf("expected error %s, compilation succeeded", scenario.Expect.Error))
	case scenario.ExpectsError() && result.ErrorCode != scenario.Expect.Error:
		result.AddError(fmt.Sprintf("expected error %s, got %s: %s", scenario.Expect.Error, result.ErrorCode, result.Error))
	case !scenario.ExpectsError() && result.ErrorCode != "":
		result.AddError(fmt.Sprintf("unexpected error %s: %s", result.ErrorCode, result.Error))
	}

	if result.ErrorCode == "" {
		for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
			result.AddError(msg)
		}
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"error_code", result.ErrorCode,
	)
	return result, nil
}

// describe fills result from the normalized form of q.
func describe(result *Result, q *queryir.Select) error {
	normalized := queryir.Normalize(q)
	text, err := querysparql.Render(normalized)
	if err != nil {
		return fmt.Errorf("render normalized query: %w", err)
	}
	result.SPARQL = text
	result.QueryHash = ir.QueryHash(text)
	result.Patterns, result.Filters = countElements(normalized.Where)
	result.Variables = len(queryir.BoundVars(normalized))
	return nil
}

// countElements counts the triple patterns and filters in g, unions included.
func countElements(g *queryir.Group) (patterns, filters int) {
	if g == nil {
		return 0, 0
	}
	for _, elem := range g.Elements {
		switch e := elem.(type) {
		case *queryir.Triple:
			patterns++
		case *queryir.Filter:
			filters++
		case *queryir.Group:
			p, f := countElements(e)
			patterns, filters = patterns+p, filters+f
		case *queryir.Union:
			lp, lf := countElements(e.Left)
			rp, rf := countElements(e.Right)
			patterns, filters = patterns+lp+rp, filters+lf+rf
		}
	}
	return patterns, filters
}

// errorCode returns the compile error code of err, or the batch error code
// for failures raised by the engine itself.
func errorCode(err error) string {
	if code := compiler.Code(err); code != "" {
		return string(code)
	}
	if engine.IsQuotaError(err) {
		return string(engine.ErrCodeQuotaExceeded)
	}
	return "UNKNOWN"
}
