package compiler

import (
	"fmt"

	"github.com/roach88/pathq/internal/queryir"
)

// TestFunc lowers a custom node test such as fn:contains("x").
//
// It receives the variable the tested selector bound and the test's
// arguments as written, and returns the elements that constrain the variable.
// A TestFunc must not bind new variables visible outside its elements and
// must have no side effects; validation calls it to check the arguments.
type TestFunc func(v queryir.Var, args []string) ([]queryir.Element, error)

// Functions maps resolved function IRIs to their lowering.
type Functions map[string]TestFunc

// Lookup returns the lowering registered for iri.
func (f Functions) Lookup(iri string) (TestFunc, bool) {
	fn, ok := f[iri]
	return fn, ok
}

// FilterCall returns a TestFunc that filters on function(?v, "arg1", ...).
// Use it to expose SPARQL builtins such as contains or strstarts.
func FilterCall(function string) TestFunc {
	return func(v queryir.Var, args []string) ([]queryir.Element, error) {
		exprs := make([]queryir.Expr, 0, len(args)+1)
		exprs = append(exprs, v)
		for _, a := range args {
			exprs = append(exprs, queryir.Literal{Value: a})
		}
		return []queryir.Element{
			&queryir.Filter{Expr: &queryir.Call{Function: function, Args: exprs}},
		}, nil
	}
}

// FilterCallArity is FilterCall with a fixed argument count.
func FilterCallArity(function string, arity int) TestFunc {
	call := FilterCall(function)
	return func(v queryir.Var, args []string) ([]queryir.Element, error) {
		if len(args) != arity {
			return nil, fmt.Errorf("%s takes %d argument(s), got %d", function, arity, len(args))
		}
		return call(v, args)
	}
}
