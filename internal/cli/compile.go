package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/pathq/internal/compiler"
	"github.com/roach88/pathq/internal/engine"
	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/metrics"
	"github.com/roach88/pathq/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output      string // output file path
	Journal     string // SQLite journal path
	Workers     int
	MaxCriteria int
	MetricsFile string // Prometheus text file

	// Inline request, used when no files are given.
	Paths    []string
	Op       string
	Value    string
	Numeric  bool
	Prefixes []string // "short=namespace"
	RootType string
	Limit    int
	Offset   int
}

// CompileOutput is the outcome of one request.
type CompileOutput struct {
	Name      string    `json:"name"`
	RequestID string    `json:"request_id,omitempty"`
	SPARQL    string    `json:"sparql,omitempty"`
	QueryHash string    `json:"query_hash,omitempty"`
	Error     *CLIError `json:"error,omitempty"`
}

// CompilationResult holds the outcome of a compile run.
type CompilationResult struct {
	RunID   string          `json:"run_id,omitempty"`
	Results []CompileOutput `json:"results"`
	Failed  int             `json:"failed"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [request-files...]",
		Short: "Compile path-query requests to SPARQL",
		Long: `Compile path-query requests to SPARQL SELECT queries.

Requests are read from .cue, .json and .yaml files (directories are searched
recursively) and compiled concurrently. Without files, a single request is
built from --path, --op, --value and the other request flags.

Exit codes:
  0 - All requests compiled
  2 - A request failed to load or compile

Examples:
  pathq compile requests/
  pathq compile --prefix foaf=http://xmlns.com/foaf/0.1/ --path 'foaf:knows/foaf:name' --op EQ --value Bob
  pathq compile --path age --op GT --value 18 --numeric --prefix =http://example.org/
  pathq compile requests/ --journal pathq.db --format json`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write results as JSON to this file")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record compilations in this SQLite journal")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "compile with this many workers (0 = config or CPU count)")
	cmd.Flags().IntVar(&opts.MaxCriteria, "max-criteria", 0, "criteria allowed per request (0 = config or default)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	cmd.Flags().StringArrayVar(&opts.Paths, "path", nil, "path expression of an inline criterion (repeatable)")
	cmd.Flags().StringVar(&opts.Op, "op", "", "comparison operator of the last --path (EQ, GT, CONTAINS, ...)")
	cmd.Flags().StringVar(&opts.Value, "value", "", "constraint of the last --path")
	cmd.Flags().BoolVar(&opts.Numeric, "numeric", false, "compare the last --path numerically")
	cmd.Flags().StringArrayVar(&opts.Prefixes, "prefix", nil, "prefix declaration short=namespace (repeatable)")
	cmd.Flags().StringVar(&opts.RootType, "root-type", "", "type IRI or prefixed name of every result")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "LIMIT of the inline request")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "OFFSET of the inline request")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.cfg()

	jobs, errs := compileJobs(opts, args)
	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}
	for i := range jobs {
		jobs[i].Request = cfg.Apply(jobs[i].Request)
		formatter.VerboseLog("Loaded %s (%d criteria)", jobs[i].Name, len(jobs[i].Request.Criteria))
	}

	var reg *prometheus.Registry
	var m *metrics.Metrics
	if opts.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		m = metrics.New(reg)
	}

	engOpts := []engine.EngineOption{
		engine.WithWorkers(firstPositive(opts.Workers, cfg.Workers)),
		engine.WithMetrics(m),
	}
	if n := firstPositive(opts.MaxCriteria, cfg.MaxCriteria); n > 0 {
		engOpts = append(engOpts, engine.WithMaxCriteria(n))
	}

	journalPath := firstNonEmpty(opts.Journal, cfg.Journal)
	if journalPath != "" {
		st, err := store.Open(journalPath)
		if err != nil {
			return outputCompileError(formatter, ErrCodeJournal, fmt.Sprintf("opening journal: %v", err))
		}
		defer st.Close()

		latest, err := st.LatestSeq(ctx)
		if err != nil {
			return outputCompileError(formatter, ErrCodeJournal, fmt.Sprintf("reading journal: %v", err))
		}
		engOpts = append(engOpts, engine.WithJournal(st), engine.WithClock(engine.NewClockAt(latest)))
		formatter.VerboseLog("Journaling to %s (seq %d)", journalPath, latest)
	}

	eng := engine.New(compiler.New(compiler.WithMetrics(m)), engOpts...)
	batch, err := eng.Run(ctx, jobs)
	if err != nil {
		if engine.IsJournalError(err) {
			return outputCompileError(formatter, ErrCodeJournal, err.Error())
		}
		return outputCompileError(formatter, ErrCodeGeneric, err.Error())
	}

	result := buildCompilationResult(batch)
	if journalPath == "" {
		result.RunID = ""
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}
	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, reg); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing metrics file: %v", err))
		}
	}

	return outputCompileResult(formatter, result, opts.Output)
}

// compileJobs loads the request files in args, or builds the inline
// request from flags when there are none.
func compileJobs(opts *CompileOptions, args []string) ([]engine.Job, []error) {
	if len(args) > 0 {
		if len(opts.Paths) > 0 {
			return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: "--path cannot be combined with request files"}}
		}
		jobs, errs := LoadJobs(args, LoadModeCollectAll)
		if len(errs) > 0 {
			return nil, errs
		}
		return jobs, nil
	}

	if len(opts.Paths) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: "no request files given and no --path set"}}
	}
	req, err := inlineRequest(opts)
	if err != nil {
		return nil, []error{err}
	}
	return []engine.Job{{Name: "inline", Request: req}}, nil
}

// inlineRequest builds a request from flags. Every --path but the last is
// an existence criterion; the comparison flags apply to the last one.
func inlineRequest(opts *CompileOptions) (ir.Request, error) {
	op, err := ir.ParseOperator(opts.Op)
	if err != nil {
		return ir.Request{}, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}

	prefixes, err := parsePrefixFlags(opts.Prefixes)
	if err != nil {
		return ir.Request{}, err
	}

	req := ir.Request{
		Prefixes: prefixes,
		RootType: opts.RootType,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	}
	last := len(opts.Paths) - 1
	for _, path := range opts.Paths[:last] {
		req.Criteria = append(req.Criteria, ir.Exists(path))
	}
	req.Criteria = append(req.Criteria, ir.Criterion{
		Path:       opts.Paths[last],
		Comparison: op,
		Constraint: opts.Value,
		Numeric:    opts.Numeric,
	})
	return req, nil
}

// parsePrefixFlags parses "short=namespace" declarations. An empty short
// name declares the default prefix.
func parsePrefixFlags(flags []string) (*ir.PrefixTable, error) {
	table := ir.NewPrefixTable()
	for _, flag := range flags {
		short, ns, ok := strings.Cut(flag, "=")
		if !ok || ns == "" {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("invalid --prefix %q: want short=namespace", flag)}
		}
		if err := table.Add(short, ns); err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		}
	}
	return table, nil
}

// buildCompilationResult converts a batch to its CLI form.
func buildCompilationResult(batch *engine.Batch) *CompilationResult {
	result := &CompilationResult{
		RunID:   batch.RunID,
		Results: make([]CompileOutput, len(batch.Results)),
		Failed:  batch.Failed(),
	}
	for i, r := range batch.Results {
		out := CompileOutput{
			Name:      r.Name,
			RequestID: r.RequestID,
			SPARQL:    r.SPARQL,
			QueryHash: r.QueryHash,
		}
		if r.Err != nil {
			out.Error = &CLIError{Code: errorCode(r.Err), Message: r.Err.Error()}
		}
		result.Results[i] = out
	}
	return result
}

// errorCode returns the code a compile or batch failure is reported under.
func errorCode(err error) string {
	if code := compiler.Code(err); code != "" {
		return string(code)
	}
	var be *engine.BatchError
	if errors.As(err, &be) {
		return string(be.Code)
	}
	return ErrCodeGeneric
}

// outputCompileResult outputs the compiled queries and failures.
func outputCompileResult(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	var exitErr error
	if result.Failed > 0 {
		// Compilation errors are command-level errors (exit code 2)
		exitErr = NewExitError(ExitCommandError, fmt.Sprintf("%d of %d request(s) failed", result.Failed, len(result.Results)))
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeGeneric, Message: exitErr.Error()}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	single := len(result.Results) == 1
	for i, r := range result.Results {
		if r.Error != nil {
			fmt.Fprintf(w, "✗ %s\n", r.Name)
			fmt.Fprintf(w, "  %s\n", r.Error.Message)
			continue
		}
		if !single {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "# %s\n", r.Name)
		}
		fmt.Fprint(w, r.SPARQL)
	}

	if !single {
		fmt.Fprintln(w)
		if result.Failed > 0 {
			fmt.Fprintf(w, "✗ Compiled %d request(s), %d failed\n", len(result.Results)-result.Failed, result.Failed)
		} else {
			fmt.Fprintf(w, "✓ Compiled %d request(s)\n", len(result.Results))
		}
	}
	if result.RunID != "" {
		formatter.VerboseLog("Recorded run %s", result.RunID)
	}
	if outputFile != "" {
		formatter.VerboseLog("Wrote results to %s", outputFile)
	}

	return exitErr
}

// outputCompileError outputs a single command-level error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs request loading errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseLoadError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}
		if err := formatter.JSON(response); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Loading failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseLoadError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			switch {
			case loadErr.Pos.IsValid():
				fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
					loadErr.Pos.Filename(),
					loadErr.Pos.Line(),
					loadErr.Pos.Column())
			case loadErr.File != "":
				fmt.Fprintln(formatter.Writer, loadErr.File)
			}
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(errs)))
}

// parseLoadError extracts error code and message from an error.
func parseLoadError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeResultToFile writes the compilation result to a file as indented JSON.
func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
