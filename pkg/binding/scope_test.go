package binding

import (
	"testing"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/types"
)

func TestScopeLookupWalksParents(t *testing.T) {
	mod := NewScope(ScopeModule, "m.ts", nil)
	if _, conflict := mod.Declare("x", Site{Kind: DeclLet}); conflict != nil {
		t.Fatalf("unexpected conflict")
	}
	block := mod.Extend(ScopeBlock)
	sym, ok := block.Lookup("x")
	if !ok || sym.Name != "x" {
		t.Fatalf("expected x to resolve through parent, got %v", sym)
	}
	if _, ok := block.LookupLocal("x"); ok {
		t.Fatalf("expected x to be absent from the block scope")
	}
	if block.FunctionScope() != mod {
		t.Fatalf("expected module scope to be the hoisting target")
	}
}

func TestDeclareMergesCompatibleKinds(t *testing.T) {
	cases := []struct {
		first, second DeclKind
		merges        bool
	}{
		{DeclInterface, DeclInterface, true},
		{DeclFunction, DeclFunction, true},
		{DeclVar, DeclVar, true},
		{DeclClass, DeclInterface, true},
		{DeclInterface, DeclClass, true},
		{DeclVar, DeclInterface, true},
		{DeclConst, DeclTypeAlias, true},
		{DeclInterface, DeclTypeAlias, false},
		{DeclFunction, DeclTypeAlias, true},
		{DeclLet, DeclLet, false},
		{DeclConst, DeclVar, false},
		{DeclTypeAlias, DeclTypeAlias, false},
		{DeclClass, DeclClass, false},
		{DeclImport, DeclVar, false},
		{DeclEnum, DeclEnum, true},
		{DeclFunction, DeclVar, false},
	}
	for _, tc := range cases {
		scope := NewScope(ScopeModule, "m.ts", nil)
		scope.Declare("a", Site{Kind: tc.first})
		sym, conflict := scope.Declare("a", Site{Kind: tc.second})
		if tc.merges {
			if conflict != nil || sym == nil || len(sym.Sites) != 2 {
				t.Fatalf("expected %s and %s to merge", tc.first, tc.second)
			}
			continue
		}
		if conflict == nil {
			t.Fatalf("expected %s and %s to conflict", tc.first, tc.second)
		}
		if got, _ := scope.LookupLocal("a"); len(got.Sites) != 1 {
			t.Fatalf("expected conflicting site to be dropped, got %d sites", len(got.Sites))
		}
	}
}

func TestLookupValueSkipsTypes(t *testing.T) {
	outer := NewScope(ScopeModule, "m.ts", nil)
	outer.Declare("T", Site{Kind: DeclVar})
	inner := outer.Extend(ScopeFunction)
	inner.Declare("T", Site{Kind: DeclTypeParam})

	v, _ := inner.LookupValue("T")
	if v.Scope != outer {
		t.Fatalf("expected value lookup to reach the module scope")
	}
	ty, _ := inner.LookupType("T")
	if ty.Scope != inner {
		t.Fatalf("expected type lookup to stop at the type parameter")
	}
}

func TestSymbolValueResolverDetectsCycles(t *testing.T) {
	sym := NewSymbol("a", "m.ts")
	calls := 0
	sym.SetValueResolver(func() types.Type {
		calls++
		return sym.ValueType()
	})
	if got := sym.ValueType(); got != types.Type(types.Fallback) {
		t.Fatalf("expected fallback for a self-referential value, got %v", got)
	}
	if !sym.Circular() {
		t.Fatalf("expected symbol to be marked circular")
	}
	sym.ValueType()
	if calls != 1 {
		t.Fatalf("expected resolver to run once, got %d", calls)
	}
}

func TestAliasForwardsBothSides(t *testing.T) {
	in := types.NewInterner()
	target := NewSymbol("Box", "a.ts")
	target.AddSite(Site{Kind: DeclClass, Name: ast.ID("Box")})
	decl := in.NewDecl("Box", "a.ts", types.DeclClass, nil)
	target.SetDecl(decl)
	target.SetType(in.Ref(decl))
	target.SetValueType(types.String)

	imp := NewSymbol("Box", "b.ts")
	imp.AddSite(Site{Kind: DeclImport})
	imp.Alias(target)
	if imp.ValueType() != types.Type(types.String) {
		t.Fatalf("expected value side to forward, got %v", imp.ValueType())
	}
	if imp.Type() != types.Type(in.Ref(decl)) || imp.Decl() != decl {
		t.Fatalf("expected type side to forward")
	}
	if !imp.Is(DeclClass) {
		t.Fatalf("expected class site to be visible through the import")
	}
}
