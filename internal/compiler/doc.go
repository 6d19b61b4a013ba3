// Package compiler translates path criteria into graph queries.
//
// A request is a list of criteria plus a prefix table. Compile seeds a root
// variable typed with the request's root type, then for every criterion:
//
//  1. parses the criterion's path expression into a selector tree
//  2. walks the tree from the root variable, threading one current variable
//     and appending triple patterns into a shared sink
//  3. lowers the criterion's comparison, if any, to a filter on the variable
//     the walk ended at
//
// The result is a *queryir.Select projecting only the root variable.
//
// VARIABLES:
//
// Fresh variables come from an Allocator, a process-wide atomic counter
// rendered as "varN". Names are never reused, so compilations running in
// parallel cannot collide. The root variable is the fixed name "root", which
// the allocator never produces.
//
// UNION:
//
// Both alternatives of a union must expose the same output variable. The
// left alternative is compiled first; the right one is compiled with the
// left's output variable as its binding target, so no rename pass is needed.
// Intermediate variables inside an alternative stay local to it.
//
// ERRORS:
//
// Every failure aborts the whole compilation with a *CompileError; there is
// no partial query. See IsParseError, IsUnsupportedSelector,
// IsOperatorDomain and IsNumberFormat.
package compiler
