package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pathq/internal/compiler"
	"github.com/roach88/pathq/internal/engine"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Recompile a journaled run and verify determinism",
		Long: `Recompile every request of a journaled run and check that each one
produces the same normalized query (or fails with the same error code) as
when it was recorded. Without a run ID the most recent run is replayed.

Exit codes:
  0 - The run reproduces
  1 - At least one compilation differs
  2 - Command error (journal not found, unknown run, etc.)

Examples:
  pathq replay --journal pathq.db
  pathq replay --journal pathq.db 0192f0c4-7d1e-7b3a-9c55-6f1e2d3c4b5a --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runReplay(cmd.Context(), opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal (default from config)")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openJournal(firstNonEmpty(opts.Journal, opts.cfg().Journal))
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	if runID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if len(runs) == 0 {
			_ = formatter.Error(ErrCodeJournal, "no runs found in journal", nil)
			return NewExitError(ExitCommandError, "no runs found in journal")
		}
		runID = runs[len(runs)-1].ID
	}
	formatter.VerboseLog("Replaying run %s", runID)

	maxCriteria := opts.cfg().MaxCriteria
	var engOpts []engine.EngineOption
	if maxCriteria > 0 {
		engOpts = append(engOpts, engine.WithMaxCriteria(maxCriteria))
	}
	eng := engine.New(compiler.New(), engOpts...)

	report, err := eng.Replay(ctx, st, runID)
	if err != nil && !engine.IsReplayMismatch(err) {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", runID), err)
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: report, RunID: runID}
		if report.Mismatches > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: string(engine.ErrCodeReplayMismatch), Message: err.Error()}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, r := range report.Results {
			mark := "✓"
			if !r.Match {
				mark = "✗"
			}
			fmt.Fprintf(w, "%s %s\n", mark, r.Name)
			if !r.Match {
				fmt.Fprintf(w, "  expected %s, got %s\n", r.Expected, r.Actual)
			}
		}
		fmt.Fprintln(w)
		if report.Mismatches == 0 {
			fmt.Fprintf(w, "✓ Run %s reproduces (%d compilation(s))\n", runID, len(report.Results))
		}
	}

	if report.Mismatches > 0 {
		// Non-deterministic replay = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d compilation(s) differ", report.Mismatches, len(report.Results)))
	}
	return nil
}
