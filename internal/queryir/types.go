package queryir

import "github.com/roach88/pathq/internal/ir"

// RDFType is the rdf:type predicate, rendered as "a".
const RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// Element is a member of a group graph pattern.
//
// This is a sealed interface - only types in this package implement it.
type Element interface {
	elementNode()
}

// Term is a triple position: a variable, an IRI, a prefixed name or a literal.
//
// This is a sealed interface - only types in this package implement it.
type Term interface {
	termNode()
}

// Expr is a filter expression.
//
// This is a sealed interface - only types in this package implement it.
// Var and Literal are both terms and expressions.
type Expr interface {
	exprNode()
}

// Select is a SELECT query.
//
// Semantics:
//
//	PREFIX ...
//	SELECT DISTINCT ?<projection> WHERE { <where> } LIMIT n OFFSET m
type Select struct {
	Prefixes   *ir.PrefixTable
	Distinct   bool
	Projection []Var
	Where      *Group
	Limit      int // 0 = unset
	Offset     int // 0 = unset
}

// Group is an ordered conjunction of elements.
type Group struct {
	Elements []Element
}

// Add appends elements to the group.
func (g *Group) Add(elems ...Element) {
	g.Elements = append(g.Elements, elems...)
}

// Triple is a single edge-traversal pattern.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Union matches either alternative.
type Union struct {
	Left  *Group
	Right *Group
}

// Filter keeps solutions for which Expr is true.
type Filter struct {
	Expr Expr
}

func (*Group) elementNode()  {}
func (*Triple) elementNode() {}
func (*Union) elementNode()  {}
func (*Filter) elementNode() {}

// Var is a query variable, named without the leading '?'.
type Var string

// IRI is a full IRI, rendered as <...>.
type IRI string

// PrefixedName is a prefix:local name whose prefix must be declared.
type PrefixedName struct {
	Prefix string
	Local  string
}

// Literal is a string literal with an optional language tag or datatype IRI.
type Literal struct {
	Value    string
	Lang     string
	Datatype string
}

func (Var) termNode()          {}
func (IRI) termNode()          {}
func (PrefixedName) termNode() {}
func (Literal) termNode()      {}

// CompareOp is a numeric comparison operator.
type CompareOp string

const (
	CmpEQ  CompareOp = "="
	CmpGT  CompareOp = ">"
	CmpGTE CompareOp = ">="
	CmpLT  CompareOp = "<"
	CmpLTE CompareOp = "<="
)

// Regex matches the string form of Var against Pattern.
//
//	regex(str(?v), "pattern"[, "flags"])
type Regex struct {
	Var     Var
	Pattern string
	Flags   string
}

// Compare compares Var numerically with Value.
//
//	?v > 18.0
type Compare struct {
	Op    CompareOp
	Var   Var
	Value float64
}

// LangEquals requires Var's language tag to equal Tag, ignoring case.
//
//	lcase(lang(?v)) = "en"
type LangEquals struct {
	Var Var
	Tag string
}

// Call is a function call expression, used by custom node tests.
// Function is rendered verbatim (a builtin name, prefixed name or <IRI>).
type Call struct {
	Function string
	Args     []Expr
}

func (Var) exprNode()         {}
func (Literal) exprNode()     {}
func (*Regex) exprNode()      {}
func (*Compare) exprNode()    {}
func (*LangEquals) exprNode() {}
func (*Call) exprNode()       {}

// ExprVars returns the variables an expression mentions, in order of
// appearance.
func ExprVars(e Expr) []Var {
	switch x := e.(type) {
	case Var:
		return []Var{x}
	case *Regex:
		return []Var{x.Var}
	case *Compare:
		return []Var{x.Var}
	case *LangEquals:
		return []Var{x.Var}
	case *Call:
		var vars []Var
		for _, arg := range x.Args {
			vars = append(vars, ExprVars(arg)...)
		}
		return vars
	default:
		return nil
	}
}

// TermVar returns the variable held by t, if any.
func TermVar(t Term) (Var, bool) {
	v, ok := t.(Var)
	return v, ok
}
