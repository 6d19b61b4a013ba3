package engine

import (
	"errors"
	"fmt"
)

// BatchError represents an error detected while running a batch.
//
// Batch errors include:
//   - Quota exceeded: a request has more criteria than the engine allows
//   - Cancelled: the batch context ended before the job started
//   - Journal failure: a run or compilation could not be recorded
//   - Replay mismatch: a journaled compilation no longer reproduces
//
// Compilation failures are not BatchErrors; they are *compiler.CompileError
// values reported per job.
type BatchError struct {
	// Code identifies the error category.
	Code BatchErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run.
	RunID string

	// Job names the affected job, if any.
	Job string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause.
	Err error
}

// BatchErrorCode categorizes batch errors.
type BatchErrorCode string

const (
	// ErrCodeQuotaExceeded indicates a request exceeds the criteria limit.
	ErrCodeQuotaExceeded BatchErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeCancelled indicates the job never ran because the batch was cancelled.
	ErrCodeCancelled BatchErrorCode = "CANCELLED"

	// ErrCodeJournal indicates a journal write failed.
	ErrCodeJournal BatchErrorCode = "JOURNAL_FAILED"

	// ErrCodeReplayMismatch indicates a recompilation differs from the journal.
	ErrCodeReplayMismatch BatchErrorCode = "REPLAY_MISMATCH"
)

// Error implements the error interface.
func (e *BatchError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.RunID != "" && e.Job != "":
		msg = fmt.Sprintf("%s (run=%s, job=%s)", msg, e.RunID, e.Job)
	case e.RunID != "":
		msg = fmt.Sprintf("%s (run=%s)", msg, e.RunID)
	case e.Job != "":
		msg = fmt.Sprintf("%s (job=%s)", msg, e.Job)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *BatchError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code BatchErrorCode) bool {
	var be *BatchError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// IsQuotaError returns true if the error is a quota exceeded error.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	return hasCode(err, ErrCodeQuotaExceeded)
}

// IsCancelled returns true if the job was skipped because of cancellation.
func IsCancelled(err error) bool {
	return hasCode(err, ErrCodeCancelled)
}

// IsJournalError returns true if a journal write failed.
func IsJournalError(err error) bool {
	return hasCode(err, ErrCodeJournal)
}

// IsReplayMismatch returns true if a replay did not reproduce the journal.
func IsReplayMismatch(err error) bool {
	return hasCode(err, ErrCodeReplayMismatch)
}

// NewQuotaError creates a BatchError for a request over the criteria limit.
func NewQuotaError(job string, criteria, maxCriteria int) *BatchError {
	return &BatchError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("request has too many criteria (%d > %d)", criteria, maxCriteria),
		Job:     job,
		Details: map[string]string{
			"criteria":     fmt.Sprintf("%d", criteria),
			"max_criteria": fmt.Sprintf("%d", maxCriteria),
		},
	}
}

// NewCancelledError creates a BatchError for a job skipped by cancellation.
func NewCancelledError(runID, job string, cause error) *BatchError {
	return &BatchError{
		Code:    ErrCodeCancelled,
		Message: "batch cancelled before job started",
		RunID:   runID,
		Job:     job,
		Err:     cause,
	}
}
