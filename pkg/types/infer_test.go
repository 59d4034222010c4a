package types

import "testing"

func TestInferIdentityWidensLiteral(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	inf := in.NewInferrer([]*TypeParam{tp})
	inf.Infer(tp, in.NumberLit(5))
	expectSame(t, inf.Solve()[tp], Number)
}

func TestInferKeepsLiteralsUnderPrimitiveConstraint(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("K")
	tp.Constraint = String
	inf := in.NewInferrer([]*TypeParam{tp})
	inf.Infer(tp, in.StringLit("id"))
	expectSame(t, inf.Solve()[tp], in.StringLit("id"))
}

func TestInferFallsBackToDefaultThenConstraint(t *testing.T) {
	in := NewInterner()
	withDefault := in.NewTypeParam("A")
	withDefault.Default = Boolean
	constrained := in.NewTypeParam("B")
	constrained.Constraint = Number
	bare := in.NewTypeParam("C")
	inf := in.NewInferrer([]*TypeParam{withDefault, constrained, bare})
	subst := inf.Solve()
	expectSame(t, subst[withDefault], Boolean)
	expectSame(t, subst[constrained], Number)
	expectSame(t, subst[bare], Unknown)
}

func TestInferReplacesViolatingSolutionWithConstraint(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	tp.Constraint = String
	inf := in.NewInferrer([]*TypeParam{tp})
	inf.Infer(tp, Number)
	expectSame(t, inf.Solve()[tp], String)
}

func TestInferThroughStructure(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")

	inf := in.NewInferrer([]*TypeParam{tp})
	inf.Infer(in.Union(tp, Undefined), in.Union(String, Undefined))
	expectSame(t, inf.Solve()[tp], String)

	inf = in.NewInferrer([]*TypeParam{tp})
	inf.Infer(in.Array(tp), in.Array(in.StringLit("x")))
	expectSame(t, inf.Solve()[tp], String)

	inf = in.NewInferrer([]*TypeParam{tp})
	target := in.Object(ObjectShape{Props: []Property{{Name: "value", Type: tp}}})
	source := in.Object(ObjectShape{Props: []Property{{Name: "value", Type: Boolean}, {Name: "extra", Type: Number}}})
	inf.Infer(target, source)
	expectSame(t, inf.Solve()[tp], Boolean)

	inf = in.NewInferrer([]*TypeParam{tp})
	callback := in.Function(&Signature{Params: []Param{{Name: "x", Type: tp}}, Return: Void})
	inf.Infer(callback, in.Function(&Signature{Params: []Param{{Name: "n", Type: Number}}, Return: Void}))
	expectSame(t, inf.Solve()[tp], Number)
}

func TestInferCollectsUnionOfCandidates(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	inf := in.NewInferrer([]*TypeParam{tp})
	inf.Infer(tp, in.NumberLit(1))
	inf.Infer(tp, in.StringLit("a"))
	expectSame(t, inf.Solve()[tp], in.Union(Number, String))
	if !inf.HasCandidates(tp) {
		t.Fatalf("expected candidates to be recorded")
	}
}

func TestFixedParameterIgnoresCandidates(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	inf := in.NewInferrer([]*TypeParam{tp})
	inf.Fix(tp, String)
	inf.Infer(tp, Number)
	expectSame(t, inf.Solve()[tp], String)
}

func TestInstantiateGenericSignature(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	sig := &Signature{TypeParams: []*TypeParam{tp}, Params: []Param{{Name: "x", Type: tp}}, Return: in.Array(tp)}
	got := in.InstantiateSignature(sig, Subst{tp: String})
	if len(got.TypeParams) != 0 {
		t.Fatalf("expected bound type parameters to be dropped, got %d", len(got.TypeParams))
	}
	expectSame(t, got.Params[0].Type, String)
	expectSame(t, got.Return, in.Array(String))
}
