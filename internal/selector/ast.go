package selector

import "strings"

// Selector is a node of the parsed path-query tree.
//
// This is a sealed interface - only types in this package implement it.
type Selector interface {
	selectorNode()
	String() string
}

// NodeTest constrains the node a selector reaches without moving from it.
//
// This is a sealed interface - only types in this package implement it.
type NodeTest interface {
	nodeTest()
	String() string
}

// Name is an edge or type label as written in the expression.
//
// Exactly one form is set: IRI for "<...>", Wildcard for "*", otherwise
// Prefix and Local ("foaf:name"; a bare "name" has Prefix == "").
type Name struct {
	Prefix   string
	Local    string
	IRI      string
	Wildcard bool
}

// IsIRI reports whether the name was written as a full IRI.
func (n Name) IsIRI() bool { return n.IRI != "" }

// String renders the name as it would be written.
func (n Name) String() string {
	switch {
	case n.Wildcard:
		return "*"
	case n.IRI != "":
		return "<" + n.IRI + ">"
	case n.Prefix == "":
		return n.Local
	default:
		return n.Prefix + ":" + n.Local
	}
}

// Property traverses one edge labelled Name.
type Property struct {
	Name Name
}

// Path traverses Left, then Right from wherever Left ended.
type Path struct {
	Left  Selector
	Right Selector
}

// Grouped is a parenthesized selector. It adds structure, not meaning.
type Grouped struct {
	Inner Selector
}

// Union reaches whatever Left or Right reaches.
type Union struct {
	Left  Selector
	Right Selector
}

// Testing reaches what Inner reaches, keeping only nodes that pass Test.
type Testing struct {
	Inner Selector
	Test  NodeTest
}

func (*Property) selectorNode() {}
func (*Path) selectorNode()     {}
func (*Grouped) selectorNode()  {}
func (*Union) selectorNode()    {}
func (*Testing) selectorNode()  {}

// IsA keeps nodes that have rdf:type Type.
type IsA struct {
	Type Name
}

// LanguageTag keeps literals whose language tag matches Tag.
type LanguageTag struct {
	Tag string
}

// GenericFunction is a named custom test, e.g. fn:contains("x").
// Args are kept as written; quoted strings are unquoted.
type GenericFunction struct {
	Name Name
	Args []string
}

func (*IsA) nodeTest()             {}
func (*LanguageTag) nodeTest()     {}
func (*GenericFunction) nodeTest() {}

func (p *Property) String() string { return p.Name.String() }

func (p *Path) String() string {
	return wrapUnion(p.Left) + "/" + wrapUnion(p.Right)
}

func (g *Grouped) String() string { return "(" + g.Inner.String() + ")" }

func (u *Union) String() string { return u.Left.String() + " | " + u.Right.String() }

func (t *Testing) String() string {
	inner := t.Inner.String()
	switch t.Inner.(type) {
	case *Union, *Path:
		inner = "(" + inner + ")"
	}
	return inner + "[" + t.Test.String() + "]"
}

func (t *IsA) String() string { return "is-a " + t.Type.String() }

func (t *LanguageTag) String() string { return "@" + t.Tag }

func (t *GenericFunction) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = quote(a)
	}
	return t.Name.String() + "(" + strings.Join(args, ", ") + ")"
}

// wrapUnion parenthesizes an ungrouped union so the rendering re-parses to
// the same tree shape under "/" and "[]" precedence.
func wrapUnion(s Selector) string {
	if _, ok := s.(*Union); ok {
		return "(" + s.String() + ")"
	}
	return s.String()
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// Walk visits s and its descendants depth-first, left to right.
// Returning false from fn skips the children of that node.
func Walk(s Selector, fn func(Selector) bool) {
	if s == nil || !fn(s) {
		return
	}
	switch n := s.(type) {
	case *Path:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Grouped:
		Walk(n.Inner, fn)
	case *Union:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Testing:
		Walk(n.Inner, fn)
	}
}

// CountProperties returns the number of edge traversals in s.
func CountProperties(s Selector) int {
	n := 0
	Walk(s, func(node Selector) bool {
		if _, ok := node.(*Property); ok {
			n++
		}
		return true
	})
	return n
}
