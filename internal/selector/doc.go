// Package selector provides the path-query notation: the node-selector tree
// and the parser that produces it.
//
// GRAMMAR:
//
//	union    := path ( "|" path )*
//	path     := tested ( "/" tested )*
//	tested   := primary ( "[" test "]" )*
//	primary  := name | "(" union ")"
//	test     := "is-a" name | "@" langtag | name "(" [ arg ( "," arg )* ] ")"
//	name     := "<" iri ">" | prefix ":" local | local | "*"
//	arg      := string | name
//
// Sequencing binds tighter than union, so "a/b | c" is (a/b) | c. Both
// operators associate to the left.
//
// SEALED INTERFACES:
//
// Selector and NodeTest are sealed with marker methods. Only types in this
// package implement them, so consumers can switch exhaustively:
//
//	switch s := sel.(type) {
//	case *Property:
//	case *Path:
//	case *Grouped:
//	case *Union:
//	case *Testing:
//	}
//
// Names are kept as written. Resolving a prefixed name against a prefix table
// is the consumer's job; the parser never needs the table.
package selector
