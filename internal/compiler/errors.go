package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/pathq/internal/selector"
)

// ErrorCode categorizes compilation errors.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates a request-level problem (root type,
	// negative limit) rather than a criterion-level one.
	ErrCodeInvalidRequest ErrorCode = "E200"

	// ErrCodeParse indicates invalid path-query syntax.
	ErrCodeParse ErrorCode = "E201"

	// ErrCodeUnsupportedSelector indicates a selector or node test with no
	// lowering rule (wildcard, unresolvable prefix, unregistered function).
	ErrCodeUnsupportedSelector ErrorCode = "E202"

	// ErrCodeOperatorDomain indicates a numeric-only operator on a textual
	// criterion or a textual-only operator on a numeric one.
	ErrCodeOperatorDomain ErrorCode = "E203"

	// ErrCodeNumberFormat indicates a numeric constraint that is not a number.
	ErrCodeNumberFormat ErrorCode = "E204"

	// ErrCodeMalformedQuery indicates the compiler produced a query that
	// fails queryir.Validate. It always signals a compiler bug.
	ErrCodeMalformedQuery ErrorCode = "E299"
)

// noCriterion marks errors not tied to a single criterion.
const noCriterion = -1

// CompileError represents an error that aborted a compilation.
type CompileError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Criterion is the index of the failing criterion, or -1.
	Criterion int

	// Path is the failing criterion's path expression.
	Path string

	// Err is the underlying cause (a *selector.ParseError, a strconv error).
	Err error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Criterion >= 0 {
		msg = fmt.Sprintf("%s (criterion %d, path %q)", msg, e.Criterion, e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *CompileError) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, format string, args ...any) *CompileError {
	return &CompileError{Code: code, Message: fmt.Sprintf(format, args...), Criterion: noCriterion}
}

func unsupported(format string, args ...any) *CompileError {
	return newError(ErrCodeUnsupportedSelector, format, args...)
}

// atCriterion attaches criterion context to err. A *CompileError is copied,
// never modified, since a TestFunc may return a shared value.
func atCriterion(err error, index int, path string) error {
	var ce *CompileError
	if errors.As(err, &ce) {
		located := *ce
		located.Criterion = index
		located.Path = path
		return &located
	}
	if selector.IsParseError(err) {
		return &CompileError{Code: ErrCodeParse, Message: "invalid path expression", Criterion: index, Path: path, Err: err}
	}
	return fmt.Errorf("criterion %d (%q): %w", index, path, err)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsParseError returns true if err reports invalid path-query syntax.
// The original *selector.ParseError stays reachable via errors.As.
func IsParseError(err error) bool {
	return hasCode(err, ErrCodeParse) || selector.IsParseError(err)
}

// IsUnsupportedSelector returns true if err reports a selector or node test
// with no lowering rule.
func IsUnsupportedSelector(err error) bool {
	return hasCode(err, ErrCodeUnsupportedSelector)
}

// IsOperatorDomain returns true if err reports an operator applied to the
// wrong kind of criterion.
func IsOperatorDomain(err error) bool {
	return hasCode(err, ErrCodeOperatorDomain)
}

// IsNumberFormat returns true if err reports an unparsable numeric constraint.
func IsNumberFormat(err error) bool {
	return hasCode(err, ErrCodeNumberFormat)
}

// Code returns the error code carried by err, or "" if it has none.
func Code(err error) ErrorCode {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
