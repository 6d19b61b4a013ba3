package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pathq/internal/compiler"
)

// FileValidationError is a validation error in one request file.
type FileValidationError struct {
	File string `json:"file"`
	compiler.ValidationError
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                  `json:"valid"`
	Files  int                   `json:"files"`
	Errors []FileValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <request-files...>",
		Short: "Validate requests without compiling",
		Long: `Validate path-query requests without compiling them.

Reports every problem in every file at once: path syntax, undeclared
prefixes, operators that do not fit the criterion kind, numeric constraints
that are not numbers, and invalid root types or modifiers.

Exit codes:
  0 - All requests valid
  1 - Validation failed
  2 - Command error (unreadable files, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	jobs, loadErrors := LoadJobs(paths, LoadModeCollectAll)

	// A path that is missing or has no request files is a command error.
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.File == "" {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
	}

	result := ValidationResult{Files: len(jobs) + len(loadErrors)}
	for _, err := range loadErrors {
		code, message := parseLoadError(err)
		file := ""
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			file = loadErr.File
		}
		result.Errors = append(result.Errors, FileValidationError{
			File: file,
			ValidationError: compiler.ValidationError{
				Field:   "load",
				Message: message,
				Code:    code,
			},
		})
	}

	c := compiler.New()
	cfg := opts.cfg()
	for _, job := range jobs {
		formatter.VerboseLog("Validating %s", job.Name)
		for _, verr := range c.Validate(cfg.Apply(job.Request)) {
			result.Errors = append(result.Errors, FileValidationError{File: job.Name, ValidationError: verr})
		}
	}

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}

	result.Valid = true
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All requests valid (%d file(s))\n", result.Files)
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.JSON(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	file := ""
	for _, err := range errs {
		if err.File != file {
			file = err.File
			fmt.Fprintln(formatter.Writer, file)
		}
		location := err.Field
		if err.Pos > 0 {
			location = fmt.Sprintf("%s (position %d)", err.Field, err.Pos)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, location, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
