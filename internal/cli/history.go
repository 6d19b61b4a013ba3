package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pathq/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal string
	Request string // request ID filter
	Show    bool   // print query text
}

// HistoryResult holds the output of the history command. Exactly one of
// Runs and Compilations is set.
type HistoryResult struct {
	Runs         []store.Run         `json:"runs,omitempty"`
	Compilations []store.Compilation `json:"compilations,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List journaled runs and compilations",
		Long: `List the runs recorded in a compilation journal, or the compilations of
one run. With --request, list every compilation of one request across runs.

Examples:
  pathq history --journal pathq.db
  pathq history --journal pathq.db 0192f0c4-7d1e-7b3a-9c55-6f1e2d3c4b5a --show
  pathq history --journal pathq.db --request 3f2a...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(cmd.Context(), opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal (default from config)")
	cmd.Flags().StringVar(&opts.Request, "request", "", "list compilations of this request ID")
	cmd.Flags().BoolVar(&opts.Show, "show", false, "print the compiled queries")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, runID string, cmd *cobra.Command) error {
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

	var result HistoryResult
	switch {
	case opts.Request != "":
		result.Compilations, err = st.FindByRequest(ctx, opts.Request)
	case runID != "":
		_, result.Compilations, err = st.ReadRun(ctx, runID)
	default:
		result.Runs, err = st.ListRuns(ctx)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if result.Runs != nil {
		if len(result.Runs) == 0 {
			fmt.Fprintln(w, "No runs found in journal.")
			return nil
		}
		for _, run := range result.Runs {
			fmt.Fprintf(w, "%s  seq=%d  compiler=%s  ir=%s\n", run.ID, run.Seq, run.CompilerVersion, run.IRVersion)
		}
		return nil
	}

	if len(result.Compilations) == 0 {
		fmt.Fprintln(w, "No compilations found.")
		return nil
	}
	for _, c := range result.Compilations {
		if c.Failed() {
			fmt.Fprintf(w, "✗ [%d] %s  %s  %s\n", c.Seq, c.Name, c.RunID, c.ErrorCode)
			if opts.Show {
				fmt.Fprintf(w, "  %s\n", c.Error)
			}
			continue
		}
		fmt.Fprintf(w, "✓ [%d] %s  %s  %s\n", c.Seq, c.Name, c.RunID, shortHash(c.QueryHash))
		if opts.Show {
			fmt.Fprintln(w)
			fmt.Fprint(w, c.SPARQL)
			fmt.Fprintln(w)
		}
	}
	return nil
}

// openJournal opens an existing journal. Unlike store.Open it does not
// create a missing database.
func openJournal(path string) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no journal: set --journal or journal in the config")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("journal not found: %s", path)
	}
	return store.Open(path)
}

// shortHash abbreviates a query hash for display.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
