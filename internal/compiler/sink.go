package compiler

import "github.com/roach88/pathq/internal/queryir"

// sink collects the patterns of one compilation.
//
// Elements are appended to the innermost open group. Grouped selectors and
// union alternatives open a nested group, the evaluator closes it when the
// sub-selector is done. A sink is owned by a single compilation and is not
// safe for concurrent use.
type sink struct {
	stack []*queryir.Group
	vars  map[queryir.Var]bool
	order []queryir.Var
}

func newSink(root *queryir.Group) *sink {
	return &sink{
		stack: []*queryir.Group{root},
		vars:  make(map[queryir.Var]bool),
	}
}

// add appends elements to the innermost open group.
func (s *sink) add(elems ...queryir.Element) {
	s.stack[len(s.stack)-1].Add(elems...)
}

// open appends g to the innermost group and makes it the insertion point.
func (s *sink) open(g *queryir.Group) {
	s.add(g)
	s.enter(g)
}

// enter makes g the insertion point without appending it anywhere.
// Union alternatives are entered this way; the union itself is the element.
func (s *sink) enter(g *queryir.Group) {
	s.stack = append(s.stack, g)
}

// leave closes the innermost group.
func (s *sink) leave() {
	if len(s.stack) == 1 {
		panic("compiler: sink leave without matching enter")
	}
	s.stack = s.stack[:len(s.stack)-1]
}

// introduce records a variable the compilation binds.
func (s *sink) introduce(v queryir.Var) {
	if s.vars[v] {
		return
	}
	s.vars[v] = true
	s.order = append(s.order, v)
}

// introduced returns the variables bound so far, in order of introduction.
func (s *sink) introduced() []queryir.Var {
	return s.order
}
