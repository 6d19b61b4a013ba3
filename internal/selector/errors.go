package selector

import (
	"errors"
	"fmt"
)

// ParseError reports invalid path-query syntax.
type ParseError struct {
	// Input is the expression being parsed.
	Input string

	// Pos is the byte offset of the offending token.
	Pos int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d in %q: %s", e.Pos, e.Input, e.Message)
}

// IsParseError returns true if err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
