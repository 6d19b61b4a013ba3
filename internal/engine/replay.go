package engine

import (
	"context"
	"fmt"

	"github.com/roach88/pathq/internal/store"
)

// RunReader reads journaled runs. *store.Store implements it.
type RunReader interface {
	ReadRun(ctx context.Context, runID string) (store.Run, []store.Compilation, error)
}

// ReplayResult compares one journaled compilation with a fresh one.
type ReplayResult struct {
	Name      string `json:"name,omitempty"`
	RequestID string `json:"request_id"`
	Match     bool   `json:"match"`

	// Expected and Actual are query hashes for successful compilations and
	// error codes for failed ones.
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	RunID      string         `json:"run_id"`
	Results    []ReplayResult `json:"results"`
	Mismatches int            `json:"mismatches"`
}

// Replay recompiles every request journaled under runID and checks that the
// outcome is unchanged: the same normalized query hash for successes and the
// same error code for failures.
//
// Replay goes through the same code path as Run, so a mismatch means the
// compiler's behavior changed, not that replay differs from execution.
// It returns a REPLAY_MISMATCH error along with the full report if any
// compilation differs.
func (e *Engine) Replay(ctx context.Context, src RunReader, runID string) (*ReplayReport, error) {
	_, compilations, err := src.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}

	report := &ReplayReport{RunID: runID, Results: make([]ReplayResult, 0, len(compilations))}
	for _, c := range compilations {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		r := e.runJob(ctx, runID, Job{Name: c.Name, Request: c.Request})
		res := ReplayResult{Name: c.Name, RequestID: c.RequestID}
		if c.Failed() {
			res.Expected = c.ErrorCode
			if r.Err != nil {
				res.Actual = errorCode(r.Err)
			}
		} else {
			res.Expected = c.QueryHash
			res.Actual = r.QueryHash
		}
		res.Match = res.Expected == res.Actual
		if !res.Match {
			report.Mismatches++
			e.logger.Warn("replay mismatch",
				"run", runID,
				"request", c.RequestID,
				"expected", res.Expected,
				"actual", res.Actual,
			)
		}
		report.Results = append(report.Results, res)
	}

	if report.Mismatches > 0 {
		return report, &BatchError{
			Code:    ErrCodeReplayMismatch,
			Message: fmt.Sprintf("%d of %d compilations differ", report.Mismatches, len(compilations)),
			RunID:   runID,
		}
	}
	return report, nil
}
