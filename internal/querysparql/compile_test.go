package querysparql

import (
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/queryir"
)

func rootTyped(elems ...queryir.Element) *queryir.Group {
	g := &queryir.Group{}
	g.Add(&queryir.Triple{
		Subject:   queryir.Var("root"),
		Predicate: queryir.IRI(queryir.RDFType),
		Object:    queryir.IRI("http://www.w3.org/ns/oa#Annotation"),
	})
	g.Add(elems...)
	return g
}

func selectRoot(where *queryir.Group) *queryir.Select {
	return &queryir.Select{
		Prefixes: ir.PrefixTableOf(map[string]string{
			"oa":   "http://www.w3.org/ns/oa#",
			"foaf": "http://xmlns.com/foaf/0.1/",
		}),
		Distinct:   true,
		Projection: []queryir.Var{"root"},
		Where:      where,
	}
}

func TestCompile_Golden(t *testing.T) {
	tests := []struct {
		name  string
		query *queryir.Select
	}{
		{
			name:  "root_only",
			query: selectRoot(rootTyped()),
		},
		{
			name: "regex_and_lang",
			query: selectRoot(rootTyped(
				&queryir.Triple{Subject: queryir.Var("root"), Predicate: queryir.PrefixedName{Prefix: "oa", Local: "hasBody"}, Object: queryir.Var("var1")},
				&queryir.Filter{Expr: &queryir.LangEquals{Var: "var1", Tag: "EN"}},
				&queryir.Filter{Expr: &queryir.Regex{Var: "var1", Pattern: `^a\.b "quoted"$`, Flags: "i"}},
			)),
		},
		{
			name: "nested_union",
			query: func() *queryir.Select {
				q := selectRoot(rootTyped(
					&queryir.Union{
						Left: &queryir.Group{Elements: []queryir.Element{
							&queryir.Triple{Subject: queryir.Var("root"), Predicate: queryir.PrefixedName{Prefix: "foaf", Local: "name"}, Object: queryir.Var("var1")},
						}},
						Right: &queryir.Group{Elements: []queryir.Element{
							&queryir.Group{Elements: []queryir.Element{
								&queryir.Triple{Subject: queryir.Var("root"), Predicate: queryir.IRI("http://xmlns.com/foaf/0.1/nick"), Object: queryir.Var("var1")},
							}},
						}},
					},
					&queryir.Filter{Expr: &queryir.Compare{Op: queryir.CmpLTE, Var: "var1", Value: 3.25}},
				))
				q.Limit = 5
				q.Offset = 10
				return q
			}(),
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Render(tt.query)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(text))
		})
	}
}

func TestCompile_TypePredicateRendersAsA(t *testing.T) {
	text, err := Render(selectRoot(rootTyped()))
	require.NoError(t, err)
	assert.Contains(t, text, "?root a <http://www.w3.org/ns/oa#Annotation> .")

	// rdf:type in object position keeps its IRI form.
	text, err = Render(selectRoot(rootTyped(&queryir.Triple{
		Subject:   queryir.Var("root"),
		Predicate: queryir.PrefixedName{Prefix: "oa", Local: "motivatedBy"},
		Object:    queryir.IRI(queryir.RDFType),
	})))
	require.NoError(t, err)
	assert.Contains(t, text, "oa:motivatedBy <"+queryir.RDFType+"> .")
}

func TestCompile_Literals(t *testing.T) {
	tests := []struct {
		lit  queryir.Literal
		want string
	}{
		{queryir.Literal{Value: "plain"}, `"plain"`},
		{queryir.Literal{Value: "hello", Lang: "en"}, `"hello"@en`},
		{queryir.Literal{Value: "5", Datatype: "http://www.w3.org/2001/XMLSchema#integer"}, `"5"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{queryir.Literal{Value: "line\nbreak\t\"q\" \\"}, `"line\nbreak\t\"q\" \\"`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, compileLiteral(tt.lit))
		})
	}
}

func TestCompile_Call(t *testing.T) {
	text, err := compileExpr(&queryir.Call{
		Function: "contains",
		Args:     []queryir.Expr{queryir.Var("var1"), queryir.Literal{Value: "li"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `contains(?var1, "li")`, text)
}

func TestCompile_Indent(t *testing.T) {
	c := &SPARQLCompiler{Indent: "\t"}
	text, err := c.Compile(selectRoot(rootTyped()))
	require.NoError(t, err)
	assert.Contains(t, text, "\n\t?root a ")
}

func TestCompile_Deterministic(t *testing.T) {
	q := selectRoot(rootTyped(&queryir.Filter{Expr: &queryir.Compare{Op: queryir.CmpGT, Var: "root", Value: 1}}))
	first, err := Render(q)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Render(q)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query *queryir.Select
	}{
		{"nil query", nil},
		{"no projection", &queryir.Select{Where: &queryir.Group{}}},
		{"no where", &queryir.Select{Projection: []queryir.Var{"root"}}},
		{"nil term", selectRoot(rootTyped(&queryir.Triple{Subject: queryir.Var("root"), Predicate: queryir.IRI("p")}))},
		{"nil union branch", selectRoot(rootTyped(&queryir.Union{Left: &queryir.Group{}}))},
		{"NaN comparison", selectRoot(rootTyped(&queryir.Filter{Expr: &queryir.Compare{Op: queryir.CmpEQ, Var: "root", Value: math.NaN()}}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.query)
			assert.Error(t, err)
		})
	}
}

func TestFormatDouble(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{18, "18.0"},
		{0, "0.0"},
		{-3, "-3.0"},
		{2.5, "2.5"},
		{0.1, "0.1"},
		{1e20, "100000000000000000000.0"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-07"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := FormatDouble(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FormatDouble(bad)
		assert.Error(t, err)
	}
}
