package types

import (
	"sync"
	"testing"
)

func expectSame(t *testing.T, got, want Type) {
	t.Helper()
	if got != want {
		t.Fatalf("expected %s, got %s", TypeString(want), TypeString(got))
	}
}

func TestUnionIsCanonical(t *testing.T) {
	in := NewInterner()
	a := in.Union(String, Number)
	b := in.Union(Number, String, String)
	expectSame(t, a, b)
	expectSame(t, in.Union(in.StringLit("a"), String), String)
	expectSame(t, in.Union(True, False), Boolean)
	expectSame(t, in.Union(), Never)
	expectSame(t, in.Union(Never, String), String)
	expectSame(t, in.Union(String, Any), Any)
	expectSame(t, in.Union(String, Unknown), Unknown)
	expectSame(t, in.Union(in.Union(String, Null), Number), in.Union(Null, Number, String))
}

func TestIntersectionCollapsesDisjointPrimitives(t *testing.T) {
	in := NewInterner()
	expectSame(t, in.Intersection(String, Number), Never)
	expectSame(t, in.Intersection(String, in.StringLit("a")), in.StringLit("a"))
	expectSame(t, in.Intersection(in.StringLit("a"), in.StringLit("b")), Never)
	expectSame(t, in.Intersection(String, Unknown), String)
	got := in.Intersection(in.Union(in.StringLit("a"), Number), String)
	expectSame(t, got, in.StringLit("a"))
}

func TestObjectPropertyOrderDoesNotMatter(t *testing.T) {
	in := NewInterner()
	a := in.Object(ObjectShape{Props: []Property{{Name: "b", Type: String}, {Name: "a", Type: Number}}})
	b := in.Object(ObjectShape{Props: []Property{{Name: "a", Type: Number}, {Name: "b", Type: String}}})
	expectSame(t, a, b)
	c := in.Object(ObjectShape{Props: []Property{{Name: "a", Type: Number, Optional: true}, {Name: "b", Type: String}}})
	if Type(c) == Type(a) {
		t.Fatalf("expected optional property to produce a distinct type")
	}
}

func TestInternReturnsCanonicalHandle(t *testing.T) {
	in := NewInterner()
	arr := in.Array(in.Union(String, Number))
	expectSame(t, in.Intern(arr), arr)
	before := in.Size()
	in.Array(in.Union(Number, String))
	if after := in.Size(); after != before {
		t.Fatalf("expected no new entries, got %d -> %d", before, after)
	}
}

func TestInternCanonicalizesHandBuiltTypes(t *testing.T) {
	in := NewInterner()
	strs := in.Intern(&Array{Elem: String})
	nums := in.Intern(&Array{Elem: Number})
	if strs.ID() == 0 || nums.ID() == 0 {
		t.Fatalf("expected interned arrays to get identities, got %d and %d", strs.ID(), nums.ID())
	}
	expectSame(t, strs, in.Array(String))
	expectSame(t, nums, in.Array(Number))
	if in.Array(strs) == in.Array(nums) {
		t.Fatalf("expected string[][] and number[][] to stay distinct")
	}

	expectSame(t, in.Intern(&Union{Members: []Type{String, String}}), String)
	expectSame(t, in.Intern(&Union{Members: []Type{Number, String}}), in.Union(String, Number))
	nested := &Union{Members: []Type{
		&Union{Members: []Type{Null, &Literal{LitKind: LitString, Str: "a"}}},
		String,
	}}
	expectSame(t, in.Intern(nested), in.Union(Null, String))
	expectSame(t, in.Intern(&Intersection{Members: []Type{String, Number}}), Never)

	shape := &Object{Props: []Property{
		{Name: "b", Type: &Array{Elem: Number}},
		{Name: "a", Type: &Literal{LitKind: LitNumber, Num: 1}},
	}}
	want := in.Object(ObjectShape{Props: []Property{
		{Name: "a", Type: in.NumberLit(1)},
		{Name: "b", Type: in.Array(Number)},
	}})
	expectSame(t, in.Intern(shape), want)

	fnType := &Function{Signatures: []*Signature{{
		Params: []Param{{Name: "x", Type: &Tuple{Elems: []TupleElem{{Type: String}}}}},
		Return: &Union{Members: []Type{Undefined, Number}},
	}}}
	wantFn := in.Function(&Signature{
		Params: []Param{{Name: "x", Type: in.TupleOf(String)}},
		Return: in.Union(Number, Undefined),
	})
	expectSame(t, in.Intern(fnType), wantFn)
}

func TestConcurrentInterningAgrees(t *testing.T) {
	in := NewInterner()
	const workers = 16
	results := make([]Type, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			obj := in.Object(ObjectShape{Props: []Property{
				{Name: "kind", Type: in.StringLit("circle")},
				{Name: "radius", Type: Number},
			}})
			results[i] = in.Union(obj, Null, in.Array(in.TupleOf(String, Number)))
		}(i)
	}
	wg.Wait()
	for i := 1; i < workers; i++ {
		expectSame(t, results[i], results[0])
	}
}

func TestTypeParamsAreNeverMerged(t *testing.T) {
	in := NewInterner()
	a := in.NewTypeParam("T")
	b := in.NewTypeParam("T")
	if a == b {
		t.Fatalf("expected distinct type parameters")
	}
	if in.Union(a, b) == Type(a) {
		t.Fatalf("expected union of distinct parameters to keep both")
	}
}

func TestInternKindMismatchPanics(t *testing.T) {
	in := NewInterner()
	key, _ := in.keyOf(String)
	defer func() {
		r := recover()
		if _, ok := r.(*InvariantError); !ok {
			t.Fatalf("expected InvariantError panic, got %v", r)
		}
	}()
	in.intern(key, KindNumber, func(uint64) Type { return Number })
}
