package queryir

import "strconv"

// Normalize returns a deep copy of q with every variable except the
// projected ones renamed to v1, v2, ... in order of first appearance.
//
// Two compilations of the same request differ only in the names the
// allocator handed out, so their normalized forms are identical. Prefixes
// are shared with q, not copied.
func Normalize(q *Select) *Select {
	if q == nil {
		return nil
	}
	n := &normalizer{names: make(map[Var]Var)}
	for _, p := range q.Projection {
		n.names[p] = p
	}

	out := &Select{
		Prefixes:   q.Prefixes,
		Distinct:   q.Distinct,
		Projection: append([]Var(nil), q.Projection...),
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.Where != nil {
		out.Where = n.group(q.Where)
	}
	return out
}

type normalizer struct {
	names map[Var]Var
	next  int
}

func (n *normalizer) rename(v Var) Var {
	if name, ok := n.names[v]; ok {
		return name
	}
	n.next++
	name := Var("v" + strconv.Itoa(n.next))
	n.names[v] = name
	return name
}

func (n *normalizer) group(g *Group) *Group {
	if g == nil {
		return nil
	}
	out := &Group{Elements: make([]Element, 0, len(g.Elements))}
	for _, elem := range g.Elements {
		out.Elements = append(out.Elements, n.element(elem))
	}
	return out
}

func (n *normalizer) element(elem Element) Element {
	switch e := elem.(type) {
	case *Triple:
		return &Triple{Subject: n.term(e.Subject), Predicate: n.term(e.Predicate), Object: n.term(e.Object)}
	case *Filter:
		return &Filter{Expr: n.expr(e.Expr)}
	case *Group:
		return n.group(e)
	case *Union:
		return &Union{Left: n.group(e.Left), Right: n.group(e.Right)}
	default:
		return elem
	}
}

func (n *normalizer) term(t Term) Term {
	if v, ok := t.(Var); ok {
		return n.rename(v)
	}
	return t
}

func (n *normalizer) expr(e Expr) Expr {
	switch x := e.(type) {
	case Var:
		return n.rename(x)
	case *Regex:
		return &Regex{Var: n.rename(x.Var), Pattern: x.Pattern, Flags: x.Flags}
	case *Compare:
		return &Compare{Op: x.Op, Var: n.rename(x.Var), Value: x.Value}
	case *LangEquals:
		return &LangEquals{Var: n.rename(x.Var), Tag: x.Tag}
	case *Call:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = n.expr(a)
		}
		return &Call{Function: x.Function, Args: args}
	default:
		return e
	}
}
