package types

import "testing"

func TestConditionalEvaluatesWhenConcrete(t *testing.T) {
	in := NewInterner()
	one, two := in.NumberLit(1), in.NumberLit(2)
	expectSame(t, in.Conditional(String, String, one, two, nil, false), one)
	expectSame(t, in.Conditional(Number, String, one, two, nil, false), two)
}

func TestDistributiveConditionalMapsOverUnion(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	s, n := in.StringLit("s"), in.StringLit("n")
	cond := in.Conditional(tp, String, s, n, nil, true)
	if _, ok := cond.(*Conditional); !ok {
		t.Fatalf("expected generic conditional to stay deferred, got %s", TypeString(cond))
	}
	got := in.Instantiate(cond, Subst{tp: in.Union(String, Number)})
	expectSame(t, got, in.Union(s, n))
	expectSame(t, in.Instantiate(cond, Subst{tp: Never}), Never)
}

func TestConditionalInferExtractsElementType(t *testing.T) {
	in := NewInterner()
	u := in.NewTypeParam("U")
	u.Infer = true
	got := in.Conditional(in.Array(Number), in.Array(u), u, Never, []*TypeParam{u}, false)
	expectSame(t, got, Number)
	miss := in.Conditional(String, in.Array(u), u, Never, []*TypeParam{u}, false)
	expectSame(t, miss, Never)
}

func TestMappedTypeOverLiteralKeys(t *testing.T) {
	in := NewInterner()
	k := in.NewTypeParam("K")
	keys := in.Union(in.StringLit("a"), in.StringLit("b"))
	got := in.Mapped(k, keys, Number, ModAdd, ModNone)
	want := in.Object(ObjectShape{Props: []Property{
		{Name: "a", Type: Number, Optional: true},
		{Name: "b", Type: Number, Optional: true},
	}})
	expectSame(t, got, want)
}

func TestHomomorphicMappedTypeKeepsModifiers(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	k := in.NewTypeParam("K")
	readonly := in.Mapped(k, in.KeyOf(tp), in.Indexed(tp, k), ModNone, ModAdd)
	if _, ok := readonly.(*Mapped); !ok {
		t.Fatalf("expected generic mapped type to stay deferred, got %s", TypeString(readonly))
	}
	source := in.Object(ObjectShape{Props: []Property{
		{Name: "a", Type: Number},
		{Name: "b", Type: String, Optional: true},
	}})
	got := in.Instantiate(readonly, Subst{tp: source})
	want := in.Object(ObjectShape{Props: []Property{
		{Name: "a", Type: Number, Readonly: true},
		{Name: "b", Type: String, Optional: true, Readonly: true},
	}})
	expectSame(t, got, want)

	partial := in.Mapped(k, in.KeyOf(tp), in.Indexed(tp, k), ModAdd, ModNone)
	arr := in.Instantiate(partial, Subst{tp: in.TupleOf(String, Number)})
	tuple, ok := arr.(*Tuple)
	if !ok {
		t.Fatalf("expected mapped tuple, got %s", TypeString(arr))
	}
	if len(tuple.Elems) != 2 || !tuple.Elems[0].Optional || tuple.Elems[1].Type != Type(Number) {
		t.Fatalf("expected [string?, number?], got %s", TypeString(arr))
	}
}

func TestKeyOfAndIndexedAccess(t *testing.T) {
	in := NewInterner()
	o := in.Object(ObjectShape{Props: []Property{{Name: "a", Type: Number}, {Name: "b", Type: String}}})
	expectSame(t, in.KeyOf(o), in.Union(in.StringLit("a"), in.StringLit("b")))
	expectSame(t, in.Indexed(o, in.StringLit("a")), Number)
	expectSame(t, in.Indexed(o, in.KeyOf(o)), in.Union(Number, String))
	pair := in.TupleOf(String, Boolean)
	expectSame(t, in.Indexed(pair, in.NumberLit(1)), Boolean)
	expectSame(t, in.Indexed(in.Array(String), Number), String)
}

func TestExpandInstantiatesGenericAlias(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	decl := in.NewDecl("Box", "m.ts", DeclAlias, []*TypeParam{tp})
	decl.SetBody(in.Object(ObjectShape{Props: []Property{{Name: "value", Type: tp}}}))
	got := in.Expand(in.Ref(decl, String))
	want := in.Object(ObjectShape{Props: []Property{{Name: "value", Type: String}}})
	expectSame(t, got, want)
	if p, ok := in.PropertyOf(in.Ref(decl, Number), "value"); !ok || p.Type != Type(Number) {
		t.Fatalf("expected value: number, got %v", p)
	}
}

func TestSelfReferentialBodyIsCircular(t *testing.T) {
	in := NewInterner()
	decl := in.NewDecl("A", "m.ts", DeclAlias, nil)
	decl.SetResolver(func() Type { return decl.Body() })
	if got := decl.Body(); got != Type(Fallback) {
		t.Fatalf("expected fallback body, got %s", TypeString(got))
	}
	if !decl.Circular() {
		t.Fatalf("expected declaration to be marked circular")
	}
}

func TestWidening(t *testing.T) {
	in := NewInterner()
	expectSame(t, in.WidenLiteral(in.StringLit("a")), String)
	expectSame(t, in.WidenLiteral(in.Union(in.NumberLit(1), in.NumberLit(2))), Number)
	expectSame(t, in.WidenLiteral(True), Boolean)
	o := in.Object(ObjectShape{Props: []Property{{Name: "a", Type: in.NumberLit(1)}}})
	want := in.Object(ObjectShape{Props: []Property{{Name: "a", Type: Number}}})
	expectSame(t, in.Widen(o), want)
	loose := NewInterner(WithStrictNullChecks(false))
	expectSame(t, loose.Widen(Null), Any)
}
