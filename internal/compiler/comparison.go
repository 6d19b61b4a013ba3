package compiler

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/queryir"
)

// lowerComparison returns the filter constraining v according to c, or nil
// when c has no comparison.
//
// Textual criteria become regex filters over the string form of v; the
// constraint is regex-quoted so it always matches literally. Numeric criteria
// become comparisons against the constraint parsed as a double.
func lowerComparison(c ir.Criterion, v queryir.Var) (*queryir.Filter, error) {
	if !c.HasComparison() {
		return nil, nil
	}
	if !c.Comparison.Valid() {
		return nil, newError(ErrCodeOperatorDomain, "unknown operator %d", int(c.Comparison))
	}
	if c.Numeric {
		return lowerNumeric(c, v)
	}
	return lowerTextual(c, v)
}

func lowerTextual(c ir.Criterion, v queryir.Var) (*queryir.Filter, error) {
	lit := regexp.QuoteMeta(c.Constraint)

	var pattern string
	switch c.Comparison {
	case ir.OpEQ:
		pattern = "^" + lit + "$"
	case ir.OpContains:
		pattern = lit
	case ir.OpStartsWith:
		pattern = "^" + lit
	case ir.OpEndsWith:
		pattern = lit + "$"
	default:
		return nil, newError(ErrCodeOperatorDomain, "%s requires a numeric criterion", c.Comparison)
	}
	return &queryir.Filter{Expr: &queryir.Regex{Var: v, Pattern: pattern}}, nil
}

var numericOps = map[ir.Operator]queryir.CompareOp{
	ir.OpEQ:  queryir.CmpEQ,
	ir.OpGT:  queryir.CmpGT,
	ir.OpGTE: queryir.CmpGTE,
	ir.OpLT:  queryir.CmpLT,
	ir.OpLTE: queryir.CmpLTE,
}

func lowerNumeric(c ir.Criterion, v queryir.Var) (*queryir.Filter, error) {
	op, ok := numericOps[c.Comparison]
	if !ok {
		return nil, newError(ErrCodeOperatorDomain, "%s requires a textual criterion", c.Comparison)
	}
	value, err := parseNumber(c.Constraint)
	if err != nil {
		return nil, err
	}
	return &queryir.Filter{Expr: &queryir.Compare{Op: op, Var: v, Value: value}}, nil
}

// parseNumber parses a numeric constraint. Surrounding whitespace is
// ignored; NaN and infinities are rejected because they have no literal form.
func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &CompileError{
			Code:      ErrCodeNumberFormat,
			Message:   "constraint " + strconv.Quote(s) + " is not a number",
			Criterion: noCriterion,
			Err:       err,
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, newError(ErrCodeNumberFormat, "constraint %q is not a finite number", s)
	}
	return f, nil
}
