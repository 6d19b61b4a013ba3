package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_RenamesByFirstAppearance(t *testing.T) {
	q := newSelect(
		edge("root", "knows", Var("var17")),
		&Union{
			Left:  &Group{Elements: []Element{edge("var17", "a", Var("var42"))}},
			Right: &Group{Elements: []Element{edge("var17", "b", Var("var42"))}},
		},
		&Filter{Expr: &Regex{Var: "var42", Pattern: "^x$"}},
		&Filter{Expr: &Call{Function: "f", Args: []Expr{Var("var17"), Literal{Value: "y"}}}},
	)

	got := Normalize(q)

	want := newSelect(
		edge("root", "knows", Var("v1")),
		&Union{
			Left:  &Group{Elements: []Element{edge("v1", "a", Var("v2"))}},
			Right: &Group{Elements: []Element{edge("v1", "b", Var("v2"))}},
		},
		&Filter{Expr: &Regex{Var: "v2", Pattern: "^x$"}},
		&Filter{Expr: &Call{Function: "f", Args: []Expr{Var("v1"), Literal{Value: "y"}}}},
	)
	want.Prefixes = q.Prefixes
	assert.Equal(t, want, got)
}

func TestNormalize_SameShapeSameResult(t *testing.T) {
	a := newSelect(edge("root", "p", Var("var1")), &Filter{Expr: &Compare{Op: CmpGT, Var: "var1", Value: 1}})
	b := newSelect(edge("root", "p", Var("var99")), &Filter{Expr: &Compare{Op: CmpGT, Var: "var99", Value: 1}})
	b.Prefixes = a.Prefixes

	assert.Equal(t, Normalize(a), Normalize(b))
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	q := newSelect(edge("root", "p", Var("var5")))
	Normalize(q)
	assert.Equal(t, Var("var5"), q.Where.Elements[0].(*Triple).Object)
}

func TestNormalize_Nil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize(&Select{}).Where)
}
