package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/selector"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedType = "E100" // unsupported value type for validation

	// Criterion errors (E101-E109)
	ErrEmptyPath            = "E101" // path is required
	ErrInvalidPathSyntax    = "E102" // path does not parse
	ErrWildcardName         = "E103" // wildcard has no lowering
	ErrUndeclaredPrefix     = "E104" // prefix used but not declared
	ErrUnknownFunction      = "E105" // function test has no lowering or its arguments are rejected
	ErrInvalidOperator      = "E106" // operator outside the closed set
	ErrOperatorDomain       = "E107" // operator does not fit numeric/textual kind
	ErrInvalidNumber        = "E108" // numeric constraint does not parse
	ErrValueWithoutOperator = "E109" // constraint given without an operator

	// Request errors (E110-E119)
	ErrInvalidModifier   = "E110" // negative limit or offset
	ErrInvalidRootType   = "E111" // root type is not an IRI or declared prefixed name
	ErrInvalidPrefixName = "E112" // prefix short name cannot be written in SPARQL
)

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Pos     int    `json:"pos,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("[%s] %s (position %d): %s", e.Code, e.Field, e.Pos, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a request with the default compiler.
// Returns all errors found (does not fail-fast).
// Supports ir.Request and ir.Criterion.
func Validate(v any) []ValidationError {
	return New().Validate(v)
}

// Validate validates v against the rules Compile enforces, plus the
// functions registered on c.
func (c *Compiler) Validate(v any) []ValidationError {
	switch x := v.(type) {
	case *ir.Request:
		return c.validateRequest(x)
	case ir.Request:
		return c.validateRequest(&x)
	case ir.Criterion:
		return c.validateCriterion(x, "criteria[0]", nil)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type: %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

// validateRequest validates a whole request.
func (c *Compiler) validateRequest(req *ir.Request) []ValidationError {
	var errs []ValidationError

	// E110: modifiers
	if req.Limit < 0 {
		errs = append(errs, ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must not be negative, got %d", req.Limit),
			Code:    ErrInvalidModifier,
		})
	}
	if req.Offset < 0 {
		errs = append(errs, ValidationError{
			Field:   "offset",
			Message: fmt.Sprintf("offset must not be negative, got %d", req.Offset),
			Code:    ErrInvalidModifier,
		})
	}

	// E112: prefix names
	for _, short := range req.Prefixes.Invalid() {
		errs = append(errs, ValidationError{
			Field:   "prefixes",
			Message: fmt.Sprintf("prefix name %q is not valid in SPARQL", short),
			Code:    ErrInvalidPrefixName,
		})
	}

	// E111: root type
	if _, err := resolveRootType(req.EffectiveRootType(), req.Prefixes); err != nil {
		msg := err.Error()
		if ce, ok := err.(*CompileError); ok {
			msg = ce.Message
		}
		errs = append(errs, ValidationError{
			Field:   "root_type",
			Message: msg,
			Code:    ErrInvalidRootType,
		})
	}

	for i, crit := range req.Criteria {
		errs = append(errs, c.validateCriterion(crit, fmt.Sprintf("criteria[%d]", i), req.Prefixes)...)
	}

	return errs
}

// validateCriterion validates one criterion. field prefixes every error.
func (c *Compiler) validateCriterion(crit ir.Criterion, field string, prefixes *ir.PrefixTable) []ValidationError {
	var errs []ValidationError

	// E101: path is required
	if strings.TrimSpace(crit.Path) == "" {
		errs = append(errs, ValidationError{
			Field:   field + ".path",
			Message: "path is required and must be non-empty",
			Code:    ErrEmptyPath,
		})
	} else {
		errs = append(errs, c.validatePath(crit.Path, field+".path", prefixes)...)
	}

	// E106: operator outside the closed set
	if !crit.Comparison.Valid() {
		errs = append(errs, ValidationError{
			Field:   field + ".op",
			Message: fmt.Sprintf("unknown operator %d", int(crit.Comparison)),
			Code:    ErrInvalidOperator,
		})
		return errs
	}

	if !crit.HasComparison() {
		// E109: a value without an operator would be silently ignored
		if crit.Constraint != "" {
			errs = append(errs, ValidationError{
				Field:   field + ".value",
				Message: fmt.Sprintf("value %q has no operator to apply it", crit.Constraint),
				Code:    ErrValueWithoutOperator,
			})
		}
		return errs
	}

	// E107: operator domain
	switch {
	case crit.Numeric && crit.Comparison.IsTextualOnly():
		errs = append(errs, ValidationError{
			Field:   field + ".op",
			Message: fmt.Sprintf("%s requires a textual criterion", crit.Comparison),
			Code:    ErrOperatorDomain,
		})
	case !crit.Numeric && crit.Comparison.IsNumericOnly():
		errs = append(errs, ValidationError{
			Field:   field + ".op",
			Message: fmt.Sprintf("%s requires a numeric criterion", crit.Comparison),
			Code:    ErrOperatorDomain,
		})
	}

	// E108: numeric constraint
	if crit.Numeric {
		if _, err := parseNumber(crit.Constraint); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".value",
				Message: err.(*CompileError).Message,
				Code:    ErrInvalidNumber,
			})
		}
	}

	return errs
}

// validatePath parses path and checks every name it mentions.
func (c *Compiler) validatePath(path, field string, prefixes *ir.PrefixTable) []ValidationError {
	sel, err := selector.Parse(path)
	if err != nil {
		// E102: syntax
		ve := ValidationError{Field: field, Message: err.Error(), Code: ErrInvalidPathSyntax}
		if pe, ok := err.(*selector.ParseError); ok {
			ve.Message = pe.Message
			ve.Pos = pe.Pos
		}
		return []ValidationError{ve}
	}

	var errs []ValidationError
	checkName := func(n selector.Name) bool {
		switch {
		case n.Wildcard:
			// E103
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "wildcard has no lowering",
				Code:    ErrWildcardName,
			})
			return false
		case n.IsIRI():
			return true
		}
		// E104
		if _, ok := prefixes.Lookup(n.Prefix); !ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("prefix %q of %s is not declared", n.Prefix, n),
				Code:    ErrUndeclaredPrefix,
			})
			return false
		}
		return true
	}

	selector.Walk(sel, func(node selector.Selector) bool {
		switch n := node.(type) {
		case *selector.Property:
			checkName(n.Name)
		case *selector.Testing:
			switch test := n.Test.(type) {
			case *selector.IsA:
				checkName(test.Type)
			case *selector.GenericFunction:
				if !checkName(test.Name) {
					break
				}
				// E105
				iri := test.Name.IRI
				if !test.Name.IsIRI() {
					ns, _ := prefixes.Lookup(test.Name.Prefix)
					iri = ns + test.Name.Local
				}
				fn, ok := c.funcs.Lookup(iri)
				if !ok {
					errs = append(errs, ValidationError{
						Field:   field,
						Message: fmt.Sprintf("no function registered for %s", test.Name),
						Code:    ErrUnknownFunction,
					})
					break
				}
				// Lowerings are pure, so a trial call against a stand-in
				// variable tells whether the arguments are accepted.
				if _, err := fn(RootVar, test.Args); err != nil {
					errs = append(errs, ValidationError{
						Field:   field,
						Message: fmt.Sprintf("function %s rejected its arguments: %v", test.Name, err),
						Code:    ErrUnknownFunction,
					})
				}
			}
		}
		return true
	})

	return errs
}
