package types

import "testing"

func TestNarrowTypeof(t *testing.T) {
	in := NewInterner()
	strOrNum := in.Union(String, Number)
	expectSame(t, in.NarrowTypeof(strOrNum, "string", true), String)
	expectSame(t, in.NarrowTypeof(strOrNum, "string", false), Number)
	expectSame(t, in.NarrowTypeof(Unknown, "number", true), Number)
	expectSame(t, in.NarrowTypeof(Unknown, "number", false), Unknown)
	withBool := in.Union(String, Boolean)
	expectSame(t, in.NarrowTypeof(withBool, "boolean", true), Boolean)
	f := in.Function(&Signature{Return: Void})
	expectSame(t, in.NarrowTypeof(in.Union(f, Undefined), "function", true), f)
}

func TestNarrowTruthiness(t *testing.T) {
	in := NewInterner()
	maybe := in.Union(String, Undefined)
	expectSame(t, in.NarrowTruthy(maybe, true), String)
	expectSame(t, in.NarrowTruthy(maybe, false), in.Union(in.StringLit(""), Undefined))
	expectSame(t, in.NarrowTruthy(Boolean, true), True)
	o := in.EmptyObject()
	expectSame(t, in.NarrowTruthy(in.Union(o, Null), false), Null)
}

func TestNarrowEquality(t *testing.T) {
	in := NewInterner()
	a, b := in.StringLit("a"), in.StringLit("b")
	ab := in.Union(a, b)
	expectSame(t, in.NarrowEquality(ab, a, true, false), a)
	expectSame(t, in.NarrowEquality(ab, a, false, false), b)
	expectSame(t, in.NarrowEquality(String, a, true, false), a)
	expectSame(t, in.NarrowEquality(String, a, false, false), String)
	nullable := in.Union(Number, Null, Undefined)
	expectSame(t, in.NarrowEquality(nullable, Null, false, true), Number)
	expectSame(t, in.NarrowEquality(nullable, Null, false, false), in.Union(Number, Undefined))
}

func TestNarrowDiscriminatedUnion(t *testing.T) {
	in := NewInterner()
	circle := in.Object(ObjectShape{Props: []Property{
		{Name: "kind", Type: in.StringLit("circle")},
		{Name: "radius", Type: Number},
	}})
	square := in.Object(ObjectShape{Props: []Property{
		{Name: "kind", Type: in.StringLit("square")},
		{Name: "side", Type: Number},
	}})
	shape := in.Union(circle, square)
	expectSame(t, in.NarrowDiscriminant(shape, "kind", in.StringLit("circle"), true), circle)
	expectSame(t, in.NarrowDiscriminant(shape, "kind", in.StringLit("circle"), false), square)
	expectSame(t, in.NarrowIn(shape, "radius", true), circle)
	expectSame(t, in.NarrowIn(shape, "radius", false), square)
}

func TestNarrowToPredicateTarget(t *testing.T) {
	in := NewInterner()
	expectSame(t, in.NarrowTo(in.Union(String, Number), String, true), String)
	expectSame(t, in.NarrowTo(in.Union(String, Number), String, false), Number)
	expectSame(t, in.NarrowTo(Unknown, String, true), String)
	expectSame(t, in.NarrowTo(String, in.StringLit("a"), true), in.StringLit("a"))
}
