// Package querysparql renders QueryIR as SPARQL 1.1 query text.
package querysparql

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/pathq/internal/queryir"
)

// SPARQLCompiler compiles QueryIR to SPARQL text.
//
// Output is deterministic: prefixes are declared in short-name order and
// elements are rendered in IR order.
type SPARQLCompiler struct {
	// Indent is the per-level indentation of the WHERE clause.
	Indent string
}

// NewSPARQLCompiler creates a SPARQLCompiler with two-space indentation.
func NewSPARQLCompiler() *SPARQLCompiler {
	return &SPARQLCompiler{Indent: "  "}
}

// Render compiles q with the default compiler.
func Render(q *queryir.Select) (string, error) {
	return NewSPARQLCompiler().Compile(q)
}

// Compile converts a Select to SPARQL text.
func (c *SPARQLCompiler) Compile(q *queryir.Select) (string, error) {
	if q == nil {
		return "", fmt.Errorf("cannot compile nil query")
	}
	if len(q.Projection) == 0 {
		return "", fmt.Errorf("query projects no variables")
	}
	if q.Where == nil {
		return "", fmt.Errorf("query has no WHERE clause")
	}

	var sb strings.Builder

	q.Prefixes.Each(func(short, ns string) {
		fmt.Fprintf(&sb, "PREFIX %s: <%s>\n", short, ns)
	})

	sb.WriteString("SELECT ")
	if q.Distinct {
		sb.WriteString("DISTINCT ")
	}
	for i, v := range q.Projection {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(compileVar(v))
	}
	sb.WriteString("\nWHERE {\n")
	if err := c.compileElements(&sb, q.Where.Elements, 1); err != nil {
		return "", err
	}
	sb.WriteString("}\n")

	if q.Limit > 0 {
		fmt.Fprintf(&sb, "LIMIT %d\n", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, "OFFSET %d\n", q.Offset)
	}

	return sb.String(), nil
}

func (c *SPARQLCompiler) compileElements(sb *strings.Builder, elems []queryir.Element, depth int) error {
	for _, elem := range elems {
		if err := c.compileElement(sb, elem, depth); err != nil {
			return err
		}
	}
	return nil
}

// compileElement renders one element at the given nesting depth.
func (c *SPARQLCompiler) compileElement(sb *strings.Builder, elem queryir.Element, depth int) error {
	indent := strings.Repeat(c.Indent, depth)

	switch e := elem.(type) {
	case *queryir.Triple:
		s, err := compileTerm(e.Subject, false)
		if err != nil {
			return fmt.Errorf("compile subject: %w", err)
		}
		p, err := compileTerm(e.Predicate, true)
		if err != nil {
			return fmt.Errorf("compile predicate: %w", err)
		}
		o, err := compileTerm(e.Object, false)
		if err != nil {
			return fmt.Errorf("compile object: %w", err)
		}
		fmt.Fprintf(sb, "%s%s %s %s .\n", indent, s, p, o)

	case *queryir.Filter:
		expr, err := compileExpr(e.Expr)
		if err != nil {
			return fmt.Errorf("compile filter: %w", err)
		}
		fmt.Fprintf(sb, "%sFILTER(%s)\n", indent, expr)

	case *queryir.Group:
		return c.compileBlock(sb, e, depth)

	case *queryir.Union:
		if err := c.compileBlock(sb, e.Left, depth); err != nil {
			return err
		}
		fmt.Fprintf(sb, "%sUNION\n", indent)
		return c.compileBlock(sb, e.Right, depth)

	default:
		return fmt.Errorf("unsupported element type: %T", elem)
	}
	return nil
}

// compileBlock renders a braced group.
func (c *SPARQLCompiler) compileBlock(sb *strings.Builder, g *queryir.Group, depth int) error {
	if g == nil {
		return fmt.Errorf("nil group")
	}
	indent := strings.Repeat(c.Indent, depth)
	sb.WriteString(indent + "{\n")
	if err := c.compileElements(sb, g.Elements, depth+1); err != nil {
		return err
	}
	sb.WriteString(indent + "}\n")
	return nil
}

func compileVar(v queryir.Var) string {
	return "?" + string(v)
}

// compileTerm renders a term. rdf:type in predicate position becomes "a".
func compileTerm(t queryir.Term, predicate bool) (string, error) {
	switch term := t.(type) {
	case queryir.Var:
		return compileVar(term), nil
	case queryir.IRI:
		if predicate && term == queryir.RDFType {
			return "a", nil
		}
		return "<" + string(term) + ">", nil
	case queryir.PrefixedName:
		return term.Prefix + ":" + term.Local, nil
	case queryir.Literal:
		return compileLiteral(term), nil
	default:
		return "", fmt.Errorf("unsupported term type: %T", t)
	}
}

func compileLiteral(l queryir.Literal) string {
	s := quoteString(l.Value)
	switch {
	case l.Lang != "":
		return s + "@" + l.Lang
	case l.Datatype != "":
		return s + "^^<" + l.Datatype + ">"
	default:
		return s
	}
}

// compileExpr renders a filter expression.
func compileExpr(e queryir.Expr) (string, error) {
	switch x := e.(type) {
	case queryir.Var:
		return compileVar(x), nil
	case queryir.Literal:
		return compileLiteral(x), nil
	case *queryir.Regex:
		if x.Flags != "" {
			return fmt.Sprintf("regex(str(%s), %s, %s)", compileVar(x.Var), quoteString(x.Pattern), quoteString(x.Flags)), nil
		}
		return fmt.Sprintf("regex(str(%s), %s)", compileVar(x.Var), quoteString(x.Pattern)), nil
	case *queryir.Compare:
		num, err := FormatDouble(x.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", compileVar(x.Var), x.Op, num), nil
	case *queryir.LangEquals:
		return fmt.Sprintf("lcase(lang(%s)) = %s", compileVar(x.Var), quoteString(strings.ToLower(x.Tag))), nil
	case *queryir.Call:
		args := make([]string, len(x.Args))
		for i, arg := range x.Args {
			s, err := compileExpr(arg)
			if err != nil {
				return "", fmt.Errorf("argument %d of %s: %w", i, x.Function, err)
			}
			args[i] = s
		}
		return x.Function + "(" + strings.Join(args, ", ") + ")", nil
	default:
		return "", fmt.Errorf("unsupported expression type: %T", e)
	}
}

// FormatDouble renders f as a SPARQL numeric literal that always carries a
// decimal point or exponent (18 -> "18.0").
// NaN and infinities have no literal form and are rejected.
func FormatDouble(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%v has no SPARQL literal form", f)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'e', -1, 64), nil
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// quoteString renders s as a double-quoted SPARQL string literal.
func quoteString(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}
