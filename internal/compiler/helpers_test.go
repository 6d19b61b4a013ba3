package compiler

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/queryir"
	"github.com/roach88/pathq/internal/querysparql"
)

const exampleNS = "http://example.org/"

// examplePrefixes declares the default prefix used by bare names.
func examplePrefixes() *ir.PrefixTable {
	return ir.PrefixTableOf(map[string]string{"": exampleNS})
}

// newTestCompiler returns a compiler with a private allocator, so variable
// names start at var1, and a discarding logger.
func newTestCompiler(opts ...Option) *Compiler {
	base := []Option{
		WithAllocator(NewAllocator()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(append(base, opts...)...)
}

func mustCompile(t *testing.T, c *Compiler, req ir.Request) *queryir.Select {
	t.Helper()
	q, err := c.Compile(req)
	require.NoError(t, err)
	require.NotNil(t, q)
	return q
}

func mustRender(t *testing.T, q *queryir.Select) string {
	t.Helper()
	text, err := querysparql.Render(q)
	require.NoError(t, err)
	return text
}

// body returns the WHERE elements after the root type pattern.
func body(q *queryir.Select) []queryir.Element {
	return q.Where.Elements[1:]
}

// triples returns every triple in g, depth-first.
func triples(g *queryir.Group) []*queryir.Triple {
	var out []*queryir.Triple
	for _, elem := range g.Elements {
		switch e := elem.(type) {
		case *queryir.Triple:
			out = append(out, e)
		case *queryir.Group:
			out = append(out, triples(e)...)
		case *queryir.Union:
			out = append(out, triples(e.Left)...)
			out = append(out, triples(e.Right)...)
		}
	}
	return out
}

func triple(s, p, o queryir.Term) *queryir.Triple {
	return &queryir.Triple{Subject: s, Predicate: p, Object: o}
}

func local(name string) queryir.PrefixedName {
	return queryir.PrefixedName{Prefix: "", Local: name}
}
