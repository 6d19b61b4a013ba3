// Package queryir provides the graph query intermediate representation (IR)
// that path criteria compile to.
//
// QueryIR is the abstraction boundary between the path compiler and query
// text. The compiler builds a *Select; backends render it:
//
//	[criteria] → [compiler] → [Query IR] → [SPARQL text]
//
// The IR covers exactly the fragment the compiler emits:
//   - Select: one projected variable, DISTINCT, LIMIT/OFFSET, prefixes
//   - Group: an ordered conjunction of elements ({ ... })
//   - Triple: subject, predicate, object terms
//   - Union: two alternative groups
//   - Filter: one expression (Regex, Compare, LangEquals, Call)
//
// SEALED INTERFACES:
//
// Element, Term and Expr are sealed interfaces using the marker method
// pattern. Only types in this package implement them, which enables
// exhaustive type switches in backends:
//
//	switch e := elem.(type) {
//	case *Triple:
//	case *Filter:
//	case *Group:
//	case *Union:
//	}
//
// ORDERING INVARIANT:
//
// Within a group, a variable is bound by a triple before any filter that
// mentions it. Validate checks this, along with the single-projection rule
// and prefix declarations.
package queryir
