package compiler

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/queryir"
)

func regexOf(t *testing.T, f *queryir.Filter) *queryir.Regex {
	t.Helper()
	require.NotNil(t, f)
	re, ok := f.Expr.(*queryir.Regex)
	require.True(t, ok, "expected regex filter, got %T", f.Expr)
	return re
}

func TestLowerComparison_NoComparison(t *testing.T) {
	f, err := lowerComparison(ir.Exists("name"), "var1")
	require.NoError(t, err)
	assert.Nil(t, f)

	// A stray constraint without an operator is ignored.
	f, err = lowerComparison(ir.Criterion{Path: "name", Constraint: "x"}, "var1")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestLowerComparison_TextualEQMatchesExactly(t *testing.T) {
	constraints := []string{"Alice", "a.b", "x+y", "(group)", "^anchored$", `back\slash`, "", "caf\u00e9"}

	for _, c := range constraints {
		t.Run(c, func(t *testing.T) {
			f, err := lowerComparison(ir.Text("name", ir.OpEQ, c), "var1")
			require.NoError(t, err)
			re := regexOf(t, f)
			assert.Equal(t, queryir.Var("var1"), re.Var)

			compiled := regexp.MustCompile(re.Pattern)
			assert.True(t, compiled.MatchString(c), "pattern %q must match %q", re.Pattern, c)
			assert.False(t, compiled.MatchString(c+"x"), "pattern %q must not match %q", re.Pattern, c+"x")
			assert.False(t, compiled.MatchString("x"+c), "pattern %q must not match %q", re.Pattern, "x"+c)
		})
	}
}

func TestLowerComparison_TextualPatterns(t *testing.T) {
	tests := []struct {
		op      ir.Operator
		want    string
		matches []string
		rejects []string
	}{
		{ir.OpEQ, "^Bob$", []string{"Bob"}, []string{"Bobby", "A Bob"}},
		{ir.OpContains, "Bob", []string{"Bob", "Bobby", "A Bob"}, []string{"bob", "Rob"}},
		{ir.OpStartsWith, "^Bob", []string{"Bob", "Bobby"}, []string{"A Bob"}},
		{ir.OpEndsWith, "Bob$", []string{"Bob", "A Bob"}, []string{"Bobby"}},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			f, err := lowerComparison(ir.Text("name", tt.op, "Bob"), "var1")
			require.NoError(t, err)
			re := regexOf(t, f)
			assert.Equal(t, tt.want, re.Pattern)
			assert.Empty(t, re.Flags)

			compiled := regexp.MustCompile(re.Pattern)
			for _, s := range tt.matches {
				assert.True(t, compiled.MatchString(s), "%q", s)
			}
			for _, s := range tt.rejects {
				assert.False(t, compiled.MatchString(s), "%q", s)
			}
		})
	}
}

func TestLowerComparison_Numeric(t *testing.T) {
	tests := []struct {
		op    ir.Operator
		value string
		want  *queryir.Compare
	}{
		{ir.OpEQ, "42", &queryir.Compare{Op: queryir.CmpEQ, Var: "var1", Value: 42}},
		{ir.OpGT, "18", &queryir.Compare{Op: queryir.CmpGT, Var: "var1", Value: 18}},
		{ir.OpGTE, "2.5", &queryir.Compare{Op: queryir.CmpGTE, Var: "var1", Value: 2.5}},
		{ir.OpLT, "-3", &queryir.Compare{Op: queryir.CmpLT, Var: "var1", Value: -3}},
		{ir.OpLTE, " 1e3 ", &queryir.Compare{Op: queryir.CmpLTE, Var: "var1", Value: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			f, err := lowerComparison(ir.Number("age", tt.op, tt.value), "var1")
			require.NoError(t, err)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.Expr)
		})
	}
}

func TestLowerComparison_OperatorDomain(t *testing.T) {
	tests := []struct {
		name string
		crit ir.Criterion
	}{
		{"GT textual", ir.Text("age", ir.OpGT, "18")},
		{"GTE textual", ir.Text("age", ir.OpGTE, "18")},
		{"LT textual", ir.Text("age", ir.OpLT, "18")},
		{"LTE textual", ir.Text("age", ir.OpLTE, "18")},
		{"CONTAINS numeric", ir.Number("name", ir.OpContains, "1")},
		{"STARTS_WITH numeric", ir.Number("name", ir.OpStartsWith, "1")},
		{"ENDS_WITH numeric", ir.Number("name", ir.OpEndsWith, "1")},
		{"unknown operator", ir.Criterion{Path: "name", Comparison: ir.Operator(99), Constraint: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := lowerComparison(tt.crit, "var1")
			require.Error(t, err)
			assert.Nil(t, f)
			assert.True(t, IsOperatorDomain(err), "got %v", err)
		})
	}
}

func TestLowerComparison_NumberFormat(t *testing.T) {
	for _, value := range []string{"", "abc", "18 years", "NaN", "Inf", "-Infinity", "1e400", "0x"} {
		t.Run(value, func(t *testing.T) {
			_, err := lowerComparison(ir.Number("age", ir.OpGT, value), "var1")
			require.Error(t, err)
			assert.True(t, IsNumberFormat(err), "got %v", err)
		})
	}
}

func TestLowerComparison_DomainCheckedBeforeNumber(t *testing.T) {
	_, err := lowerComparison(ir.Number("name", ir.OpContains, "not a number"), "var1")
	require.Error(t, err)
	assert.True(t, IsOperatorDomain(err))
}
