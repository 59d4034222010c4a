package types

import "testing"

func TestTypeStringIsStable(t *testing.T) {
	in := NewInterner()
	cases := []struct {
		typ  Type
		want string
	}{
		{in.Union(Undefined, String), "string | undefined"},
		{in.Union(Null, Number, String), "string | number | null"},
		{in.Union(String, True, False), "string | boolean"},
		{Fallback, "unknown"},
		{in.Union(in.StringLit("b"), in.StringLit("a")), `"a" | "b"`},
		{in.Array(in.Union(String, Number)), "(string | number)[]"},
		{in.TupleOf(String, Number), "[string, number]"},
		{in.Object(ObjectShape{Props: []Property{{Name: "b", Type: String, Optional: true}, {Name: "a", Type: Number}}}), "{ a: number; b?: string }"},
		{in.EmptyObject(), "{}"},
		{in.Function(&Signature{Params: []Param{{Name: "x", Type: Number}}, Return: String}), "(x: number) => string"},
		{in.BigIntLit("10"), "10n"},
		{in.NumberLit(1.5), "1.5"},
	}
	for _, tc := range cases {
		if got := TypeString(tc.typ); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestRefPrintsDeclarationName(t *testing.T) {
	in := NewInterner()
	tp := in.NewTypeParam("T")
	decl := in.NewDecl("Box", "m.ts", DeclInterface, []*TypeParam{tp})
	if got := in.Ref(decl, String).String(); got != "Box<string>" {
		t.Fatalf("expected Box<string>, got %q", got)
	}
}
