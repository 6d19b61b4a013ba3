package queryir

import (
	"fmt"
	"sort"
)

// ValidationResult contains the well-formedness analysis of a query.
type ValidationResult struct {
	// IsWellFormed is true when no problems were found.
	IsWellFormed bool

	// Problems lists every violated rule, in traversal order.
	Problems []string
}

// Validate checks the structural rules every compiled query must satisfy:
//  1. Exactly one projected variable
//  2. The projected variable is bound by the WHERE clause
//  3. Within a group, a filter only mentions variables bound by earlier
//     elements of that group or of an enclosing group
//  4. A union binds only the variables bound by both alternatives
//  5. Every prefixed name uses a declared prefix
//
// Validate is a pure function with no side effects.
func Validate(q *Select) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateSelect(q)
	return ValidationResult{
		IsWellFormed: len(v.problems) == 0,
		Problems:     v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	query    *Select
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateSelect(q *Select) {
	if q == nil {
		v.addProblem("nil query")
		return
	}
	v.query = q

	if len(q.Projection) != 1 {
		v.addProblem("query must project exactly one variable, got %d", len(q.Projection))
	}
	if q.Limit < 0 || q.Offset < 0 {
		v.addProblem("limit and offset must not be negative")
	}
	if q.Where == nil {
		v.addProblem("query has no WHERE clause")
		return
	}

	bound := v.validateGroup(q.Where, varSet{})
	for _, p := range q.Projection {
		if !bound[p] {
			v.addProblem("projected variable ?%s is not bound by the WHERE clause", p)
		}
	}
}

// validateGroup checks g given the variables already bound around it and
// returns the variables bound once g has matched.
func (v *validator) validateGroup(g *Group, outer varSet) varSet {
	bound := outer.clone()
	for _, elem := range g.Elements {
		switch e := elem.(type) {
		case *Triple:
			v.validateTriple(e)
			for _, t := range []Term{e.Subject, e.Predicate, e.Object} {
				if tv, ok := TermVar(t); ok {
					bound[tv] = true
				}
			}
		case *Filter:
			for _, fv := range ExprVars(e.Expr) {
				if !bound[fv] {
					v.addProblem("filter mentions ?%s before it is bound", fv)
				}
			}
		case *Group:
			for gv := range v.validateGroup(e, bound) {
				bound[gv] = true
			}
		case *Union:
			if e.Left == nil || e.Right == nil {
				v.addProblem("union is missing an alternative")
				continue
			}
			left := v.validateGroup(e.Left, bound)
			right := v.validateGroup(e.Right, bound)
			for lv := range left {
				if right[lv] {
					bound[lv] = true
				}
			}
		default:
			v.addProblem("unknown element type: %T", elem)
		}
	}
	return bound
}

func (v *validator) validateTriple(t *Triple) {
	for _, term := range []Term{t.Subject, t.Predicate, t.Object} {
		switch x := term.(type) {
		case nil:
			v.addProblem("triple has an empty position")
		case PrefixedName:
			if _, ok := v.query.Prefixes.Lookup(x.Prefix); !ok {
				v.addProblem("prefix %q is not declared", x.Prefix)
			}
		}
	}
	if _, ok := t.Subject.(Literal); ok {
		v.addProblem("literal in subject position")
	}
}

// varSet is a set of variables.
type varSet map[Var]bool

func (s varSet) clone() varSet {
	c := make(varSet, len(s))
	for k := range s {
		c[k] = true
	}
	return c
}

// BoundVars returns the variables bound by q's WHERE clause, sorted.
func BoundVars(q *Select) []Var {
	v := &validator{query: q}
	if q == nil || q.Where == nil {
		return nil
	}
	set := v.validateGroup(q.Where, varSet{})
	vars := make([]Var, 0, len(set))
	for k := range set {
		vars = append(vars, k)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	return vars
}
