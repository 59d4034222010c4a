package types

import "testing"

func obj(in *Interner, props ...Property) *Object {
	return in.Object(ObjectShape{Props: props})
}

func prop(name string, t Type) Property {
	return Property{Name: name, Type: t}
}

func fn(in *Interner, ret Type, params ...Type) *Function {
	ps := make([]Param, len(params))
	for i, p := range params {
		ps[i] = Param{Name: "p", Type: p}
	}
	return in.Function(&Signature{Params: ps, Return: ret})
}

func TestRelationIsReflexive(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	samples := []Type{
		String, Number, Never, Unknown, Any, Null,
		in.StringLit("x"),
		in.Union(String, Undefined),
		obj(in, prop("a", Number)),
		fn(in, Void, String),
		in.TupleOf(String, Number),
		in.Array(Boolean),
		tp,
	}
	for _, s := range samples {
		if !in.IsSubtype(s, s) {
			t.Fatalf("expected %s to be a subtype of itself", TypeString(s))
		}
	}
}

func TestUnionSourceRelatesMemberwise(t *testing.T) {
	in := NewInterner()
	members := []Type{String, Number, in.StringLit("a"), Null, obj(in, prop("a", Number)), in.Array(String)}
	targets := []Type{String, in.Union(String, Number), obj(in, prop("a", Number)), Unknown, in.Union(Null, in.Array(String))}
	for _, a := range members {
		for _, b := range members {
			for _, c := range targets {
				got := in.IsSubtype(in.Union(a, b), c)
				want := in.IsSubtype(a, c) && in.IsSubtype(b, c)
				if got != want {
					t.Fatalf("expected %s <: %s to be %v, got %v",
						TypeString(in.Union(a, b)), TypeString(c), want, got)
				}
			}
		}
	}
}

func TestPrimitiveAndLiteralAssignability(t *testing.T) {
	in := NewInterner()
	if !in.IsAssignable(in.StringLit("a"), String) {
		t.Fatalf("expected \"a\" assignable to string")
	}
	if in.IsAssignable(String, in.StringLit("a")) {
		t.Fatalf("expected string not assignable to \"a\"")
	}
	if in.IsAssignable(Number, String) {
		t.Fatalf("expected number not assignable to string")
	}
	if !in.IsAssignable(String, in.Union(String, Number)) {
		t.Fatalf("expected string assignable to string | number")
	}
	if in.IsAssignable(in.Union(String, Number), String) {
		t.Fatalf("expected string | number not assignable to string")
	}
	if !in.IsAssignable(True, Boolean) {
		t.Fatalf("expected true assignable to boolean")
	}
}

func TestNullabilityFollowsStrictNullChecks(t *testing.T) {
	strict := NewInterner()
	if strict.IsAssignable(Null, String) {
		t.Fatalf("expected null not assignable to string under strict null checks")
	}
	if !strict.IsAssignable(Undefined, Void) {
		t.Fatalf("expected undefined assignable to void")
	}
	loose := NewInterner(WithStrictNullChecks(false))
	if !loose.IsAssignable(Null, String) {
		t.Fatalf("expected null assignable to string without strict null checks")
	}
}

func TestObjectWidthAndOptionalProperties(t *testing.T) {
	in := NewInterner()
	wide := obj(in, prop("a", Number), prop("b", String))
	narrow := obj(in, prop("a", Number))
	if !in.IsAssignable(wide, narrow) {
		t.Fatalf("expected extra properties to be allowed")
	}
	if in.IsAssignable(narrow, wide) {
		t.Fatalf("expected missing property to be rejected")
	}
	withOptional := obj(in, prop("a", Number), Property{Name: "b", Type: String, Optional: true})
	if !in.IsAssignable(narrow, withOptional) {
		t.Fatalf("expected missing optional property to be allowed")
	}
	if in.IsAssignable(withOptional, wide) {
		t.Fatalf("expected optional property not assignable to required one")
	}
	explicit := obj(in, prop("a", Number), prop("b", in.Union(String, Undefined)))
	if !in.IsAssignable(explicit, withOptional) {
		t.Fatalf("expected string | undefined to satisfy an optional string property")
	}
}

func TestFunctionParameterVariance(t *testing.T) {
	in := NewInterner()
	takesEither := fn(in, Void, in.Union(String, Number))
	takesString := fn(in, Void, String)
	if !in.IsAssignable(takesEither, takesString) {
		t.Fatalf("expected wider parameter to be assignable")
	}
	if in.IsAssignable(takesString, takesEither) {
		t.Fatalf("expected narrower parameter to be rejected under strict function types")
	}
	loose := NewInterner(WithStrictFunctionTypes(false))
	if !loose.IsAssignable(fn(loose, Void, String), fn(loose, Void, loose.Union(String, Number))) {
		t.Fatalf("expected bivariant parameters without strict function types")
	}
	noParams := fn(in, Void)
	if !in.IsAssignable(noParams, takesString) {
		t.Fatalf("expected a function with fewer parameters to be assignable")
	}
	if in.IsAssignable(takesString, noParams) {
		t.Fatalf("expected a function requiring more arguments to be rejected")
	}
}

func TestMethodParametersAreBivariant(t *testing.T) {
	in := NewInterner()
	method := func(param Type) *Object {
		sig := &Signature{Params: []Param{{Name: "x", Type: param}}, Return: Void, Method: true}
		return obj(in, Property{Name: "handle", Type: in.Function(sig), Method: true})
	}
	narrow := method(String)
	wide := method(in.Union(String, Number))
	if !in.IsAssignable(narrow, wide) {
		t.Fatalf("expected method parameters to be compared bivariantly")
	}
}

func TestRecursiveInterfacesRelateCoinductively(t *testing.T) {
	in := NewInterner()
	list := func(name string, value Type) *Ref {
		decl := in.NewDecl(name, "m.ts", DeclInterface, nil)
		ref := in.Ref(decl)
		decl.SetBody(obj(in, prop("value", value), prop("next", in.Union(ref, Undefined))))
		return ref
	}
	a := list("A", Number)
	b := list("B", Number)
	c := list("C", String)
	if !in.IsAssignable(a, b) {
		t.Fatalf("expected structurally equal recursive types to relate")
	}
	if in.IsAssignable(a, c) {
		t.Fatalf("expected recursive types with different element types not to relate")
	}
}

func TestDeepStructuresAreComparedFully(t *testing.T) {
	in := NewInterner()
	nest := func(leaf Type) Type {
		out := leaf
		for i := 0; i < 80; i++ {
			out = obj(in, prop("a", out))
		}
		return out
	}
	if in.IsSubtype(nest(String), nest(Number)) {
		t.Fatalf("expected nested string leaf not to relate to nested number leaf")
	}
	if !in.IsSubtype(nest(String), nest(in.Union(String, Number))) {
		t.Fatalf("expected nested string leaf to relate to nested string | number leaf")
	}
}

func TestExpandingGenericInstantiationsTerminate(t *testing.T) {
	in := NewInterner()
	grow := func(name string) *Decl {
		tp := in.NewTypeParam("T")
		decl := in.NewDecl(name, "m.ts", DeclAlias, []*TypeParam{tp})
		decl.SetBody(obj(in, prop("value", tp), prop("next", in.Ref(decl, in.Array(tp)))))
		return decl
	}
	a, b := grow("A"), grow("B")
	if !in.IsAssignable(in.Ref(a, String), in.Ref(b, String)) {
		t.Fatalf("expected identically shaped expanding aliases to relate")
	}
	if in.IsAssignable(in.Ref(a, String), in.Ref(b, Number)) {
		t.Fatalf("expected expanding aliases over different arguments not to relate")
	}
}

func TestTuplesAndArrays(t *testing.T) {
	in := NewInterner()
	pair := in.TupleOf(String, Number)
	if !in.IsAssignable(pair, in.Array(in.Union(String, Number))) {
		t.Fatalf("expected tuple assignable to array of its element union")
	}
	if in.IsAssignable(pair, in.Array(String)) {
		t.Fatalf("expected tuple with a number element not assignable to string[]")
	}
	if in.IsAssignable(in.ReadonlyArray(String), in.Array(String)) {
		t.Fatalf("expected readonly array not assignable to mutable array")
	}
	if !in.IsAssignable(in.Array(String), in.ReadonlyArray(String)) {
		t.Fatalf("expected mutable array assignable to readonly array")
	}
	optional := in.Tuple([]TupleElem{{Type: String}, {Type: Number, Optional: true}}, false)
	if !in.IsAssignable(in.TupleOf(String), optional) {
		t.Fatalf("expected shorter tuple to satisfy an optional element")
	}
	if in.IsAssignable(optional, in.TupleOf(String, Number)) {
		t.Fatalf("expected optional element not to satisfy a required one")
	}
}

func TestObjectWithUnionPropertyDistributes(t *testing.T) {
	in := NewInterner()
	a, b := in.StringLit("a"), in.StringLit("b")
	source := obj(in, prop("kind", in.Union(a, b)))
	target := in.Union(obj(in, prop("kind", a)), obj(in, prop("kind", b)))
	if !in.IsAssignable(source, target) {
		t.Fatalf("expected object with union property to distribute over the target union")
	}
}

func TestNumericEnumAcceptsNumbersWhenAssigning(t *testing.T) {
	in := NewInterner()
	decl := in.NewDecl("Color", "m.ts", DeclEnum, nil)
	red := in.EnumMember(decl, "Red", in.NumberLit(0))
	if !in.IsAssignable(Number, red) {
		t.Fatalf("expected number assignable to numeric enum member")
	}
	if in.IsSubtype(Number, red) {
		t.Fatalf("expected number not a subtype of an enum member")
	}
	if !in.IsAssignable(red, Number) {
		t.Fatalf("expected enum member assignable to number")
	}
}

func TestPendingPlaceholderRelatesLikeAny(t *testing.T) {
	in := NewInterner()
	lz := in.Lazy("a.ts", "x")
	if !in.IsAssignable(lz, String) || !in.IsAssignable(Number, lz) {
		t.Fatalf("expected unresolved placeholder to relate both ways")
	}
	lz.Resolve(Number)
	if in.IsAssignable(lz, String) {
		t.Fatalf("expected resolved placeholder to relate as its target")
	}
}
