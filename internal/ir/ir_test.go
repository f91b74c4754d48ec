package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplifyConstantFolding(t *testing.T) {
	e := Add(NewInt(3), Mul(NewInt(2), NewInt(5)))
	got := Simplify(e)
	require.IsType(t, &IntImm{}, got)
	assert.Equal(t, int64(13), got.(*IntImm).Value)
}

func TestSimplifyIdentities(t *testing.T) {
	x := NewVar("x")
	cases := []struct {
		name string
		in   Expr
		want Expr
	}{
		{"add zero", Add(x, NewInt(0)), x},
		{"zero add", Add(NewInt(0), x), x},
		{"mul one", Mul(x, NewInt(1)), x},
		{"mul zero", Mul(x, NewInt(0)), NewInt(0)},
		{"sub self", Sub(x, x), NewInt(0)},
		{"min self", MinE(x, x), x},
		{"div one", Div(x, NewInt(1)), x},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Simplify(c.in)
			assert.True(t, Equal(c.want, got), "got %s want %s", PrintExpr(got), PrintExpr(c.want))
		})
	}
}

func TestSimplifyModDivides(t *testing.T) {
	// (outer * 7) % 7 == 0, regardless of outer.
	outer := NewVar("outer")
	e := Mod(Mul(outer, NewInt(7)), NewInt(7))
	got := Simplify(e)
	assert.True(t, Equal(NewInt(0), got))
}

func TestSimplifyLiteralModDivisor(t *testing.T) {
	got := Simplify(Mod(NewInt(14), NewInt(7)))
	assert.True(t, Equal(NewInt(0), got))
}

func TestSimplifyIdempotent(t *testing.T) {
	x := NewVar("x")
	e := Add(Mul(x, NewInt(1)), Sub(NewInt(4), NewInt(4)))
	once := Simplify(e)
	twice := Simplify(once)
	assert.True(t, Equal(once, twice))
}

func TestSubstituteReplacesFreeVar(t *testing.T) {
	e := Add(NewVar("x"), NewVar("y"))
	got := Substitute("x", NewInt(7), e)
	assert.Equal(t, "(7 + y)", PrintExpr(got))
	assert.True(t, ExprUsesVar(got, "y"))
	assert.False(t, ExprUsesVar(got, "x"))
}

func TestSubstituteStmtRespectsShadowing(t *testing.T) {
	inner := &For{Var: "x", Min: NewVar("x"), Extent: NewInt(10), Body: &Evaluate{Value: NewVar("x")}}
	got := SubstituteStmt("x", NewInt(3), inner)
	forStmt := got.(*For)
	// Min is evaluated in the outer scope, so it is substituted.
	assert.True(t, Equal(NewInt(3), forStmt.Min))
	// Body's use of x refers to the loop's own binding, so it must survive.
	ev := forStmt.Body.(*Evaluate)
	assert.True(t, ExprUsesVar(ev.Value, "x"))
}

func TestContainsImpureCall(t *testing.T) {
	pure := func(name string) bool { return name == "f" }
	callF := &Call{Kind: CallProducer, Name: "f", Args: []Expr{NewVar("x")}}
	callG := &Call{Kind: CallProducer, Name: "g", Args: nil}
	extern := &Call{Kind: CallExtern, Name: "ext"}

	assert.False(t, ContainsImpureCall(callF, pure))
	assert.True(t, ContainsImpureCall(callG, pure))
	assert.True(t, ContainsImpureCall(extern, pure))
	assert.True(t, ContainsImpureCall(Add(callF, callG), pure))
}

func TestEqualStmtStructural(t *testing.T) {
	a := &For{Var: "x", Min: NewInt(0), Extent: NewInt(10), Body: &Evaluate{Value: NewVar("x")}}
	b := &For{Var: "x", Min: NewInt(0), Extent: NewInt(10), Body: &Evaluate{Value: NewVar("x")}}
	assert.True(t, EqualStmt(a, b))

	c := &For{Var: "x", Min: NewInt(1), Extent: NewInt(10), Body: &Evaluate{Value: NewVar("x")}}
	assert.False(t, EqualStmt(a, c))
}

func TestPrintSmoke(t *testing.T) {
	s := &For{
		Var: "f.s0.x", Min: NewInt(0), Extent: NewInt(200), LoopType: LoopSerial,
		Body: &Provide{Name: "f", Values: []Expr{Add(NewVar("f.s0.x"), NewVar("f.s0.y"))}, Args: []Expr{NewVar("f.s0.x"), NewVar("f.s0.y")}},
	}
	out := Print(s)
	assert.Contains(t, out, "for f.s0.x in [0, 200)")
	assert.Contains(t, out, "f(f.s0.x, f.s0.y)")
}
