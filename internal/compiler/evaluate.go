package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/queryir"
	"github.com/roach88/pathq/internal/selector"
)

// evaluator walks a selector tree, appending patterns to a sink.
type evaluator struct {
	prefixes *ir.PrefixTable
	alloc    *Allocator
	funcs    Functions
	sink     *sink
}

// evaluate compiles sel starting from the node bound to in and returns the
// variable bound to the node sel reaches.
//
// If target is non-empty the reached node is bound to target instead of a
// fresh variable. Union uses this to make both alternatives end at the same
// variable.
func (e *evaluator) evaluate(sel selector.Selector, in, target queryir.Var) (queryir.Var, error) {
	switch s := sel.(type) {
	case *selector.Property:
		pred, err := e.resolve(s.Name)
		if err != nil {
			return "", err
		}
		out := target
		if out == "" {
			out = e.alloc.Next()
		}
		e.sink.introduce(out)
		e.sink.add(&queryir.Triple{Subject: in, Predicate: pred, Object: out})
		return out, nil

	case *selector.Path:
		mid, err := e.evaluate(s.Left, in, "")
		if err != nil {
			return "", err
		}
		return e.evaluate(s.Right, mid, target)

	case *selector.Grouped:
		e.sink.open(&queryir.Group{})
		defer e.sink.leave()
		return e.evaluate(s.Inner, in, target)

	case *selector.Union:
		return e.evaluateUnion(s, in, target)

	case *selector.Testing:
		v, err := e.evaluate(s.Inner, in, target)
		if err != nil {
			return "", err
		}
		if err := e.applyTest(s.Test, v); err != nil {
			return "", err
		}
		return v, nil

	default:
		return "", unsupported("no lowering for selector %T", sel)
	}
}

func (e *evaluator) evaluateUnion(u *selector.Union, in, target queryir.Var) (queryir.Var, error) {
	node := &queryir.Union{Left: &queryir.Group{}, Right: &queryir.Group{}}
	e.sink.add(node)

	e.sink.enter(node.Left)
	left, err := e.evaluate(u.Left, in, target)
	e.sink.leave()
	if err != nil {
		return "", err
	}

	e.sink.enter(node.Right)
	right, err := e.evaluate(u.Right, in, left)
	e.sink.leave()
	if err != nil {
		return "", err
	}

	if right != left {
		return "", newError(ErrCodeMalformedQuery, "union alternatives ended at ?%s and ?%s", left, right)
	}
	return left, nil
}

func (e *evaluator) applyTest(test selector.NodeTest, v queryir.Var) error {
	switch t := test.(type) {
	case *selector.IsA:
		typ, err := e.resolve(t.Type)
		if err != nil {
			return err
		}
		e.sink.add(&queryir.Triple{Subject: v, Predicate: queryir.IRI(queryir.RDFType), Object: typ})
		return nil

	case *selector.LanguageTag:
		e.sink.add(&queryir.Filter{Expr: &queryir.LangEquals{Var: v, Tag: strings.ToLower(t.Tag)}})
		return nil

	case *selector.GenericFunction:
		iri, err := e.expand(t.Name)
		if err != nil {
			return err
		}
		fn, ok := e.funcs.Lookup(iri)
		if !ok {
			return unsupported("no function registered for %s", t.Name)
		}
		elems, err := fn(v, t.Args)
		if err != nil {
			var ce *CompileError
			if errors.As(err, &ce) {
				return ce
			}
			return &CompileError{
				Code:      ErrCodeUnsupportedSelector,
				Message:   fmt.Sprintf("function %s rejected its arguments", t.Name),
				Criterion: noCriterion,
				Err:       err,
			}
		}
		e.sink.add(elems...)
		return nil

	default:
		return unsupported("no lowering for node test %T", test)
	}
}

// resolve turns a name into a query term. Prefixed names stay prefixed when
// their local part is a valid SPARQL local name.
func (e *evaluator) resolve(n selector.Name) (queryir.Term, error) {
	switch {
	case n.Wildcard:
		return nil, unsupported("wildcard %q has no lowering", n)
	case n.IsIRI():
		return queryir.IRI(n.IRI), nil
	}
	ns, ok := e.prefixes.Lookup(n.Prefix)
	if !ok {
		return nil, unsupported("prefix %q of %s is not declared", n.Prefix, n)
	}
	if !validLocalName(n.Local) {
		return queryir.IRI(ns + n.Local), nil
	}
	return queryir.PrefixedName{Prefix: n.Prefix, Local: n.Local}, nil
}

// expand returns the full IRI a name stands for.
func (e *evaluator) expand(n selector.Name) (string, error) {
	switch {
	case n.Wildcard:
		return "", unsupported("wildcard %q has no lowering", n)
	case n.IsIRI():
		return n.IRI, nil
	}
	ns, ok := e.prefixes.Lookup(n.Prefix)
	if !ok {
		return "", unsupported("prefix %q of %s is not declared", n.Prefix, n)
	}
	return ns + n.Local, nil
}

// validLocalName reports whether s can follow "prefix:" in SPARQL as is.
// The parser only lets letters, digits, '_', '-' and '.' through, so the
// remaining constraints are on the first and last characters.
func validLocalName(s string) bool {
	if s == "" {
		return true
	}
	if s[0] == '-' || s[0] == '.' {
		return false
	}
	return s[len(s)-1] != '.'
}
