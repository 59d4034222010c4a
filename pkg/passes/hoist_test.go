package passes

import (
	"testing"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
)

func TestRunHoistsNestedVars(t *testing.T) {
	mod := ast.Mod(
		ast.If(ast.Bool(true), ast.Block(ast.Var("a", nil, ast.Num(1)), ast.Let("b", nil, ast.Num(2))), nil),
		ast.Fn("f", nil, nil, ast.Var("inner", nil, nil)),
	)
	res := Run(mod, "m.ts", nil)
	if _, ok := res.Scope.LookupLocal("a"); !ok {
		t.Fatalf("expected nested var to be hoisted")
	}
	if _, ok := res.Scope.LookupLocal("b"); ok {
		t.Fatalf("expected block-scoped let to stay in its block")
	}
	if _, ok := res.Scope.LookupLocal("inner"); ok {
		t.Fatalf("expected function-local var to stay in the function")
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", res.Diagnostics)
	}
}

func TestRunMergesDeclarations(t *testing.T) {
	mod := ast.Mod(
		ast.Exported(ast.Iface("Point", ast.PropSig("x", ast.Kw("number")))),
		ast.Exported(ast.Iface("Point", ast.PropSig("y", ast.Kw("number")))),
		ast.Overload("f", ast.Params(ast.Param("x", ast.Kw("string"))), ast.Kw("string")),
		ast.Fn("f", ast.Params(ast.Param("x", ast.Kw("any"))), ast.Kw("any"), ast.Ret(ast.ID("x"))),
	)
	res := Run(mod, "m.ts", nil)
	point, _ := res.Scope.LookupLocal("Point")
	if len(point.Sites) != 2 || !point.Has(binding.FlagExported) {
		t.Fatalf("expected merged exported interface, got %d sites", len(point.Sites))
	}
	f, _ := res.Scope.LookupLocal("f")
	if len(f.Sites) != 2 {
		t.Fatalf("expected overload sites to merge, got %d", len(f.Sites))
	}
	if len(res.Exports) != 1 || res.Exports[0].Name != "Point" {
		t.Fatalf("expected one export entry for the merged interface, got %v", res.Exports)
	}
}

func TestRunReportsDuplicateIdentifiers(t *testing.T) {
	mod := ast.Mod(
		ast.Let("x", nil, ast.Num(1)),
		ast.Const("x", nil, ast.Num(2)),
		ast.Class("C"),
		ast.Alias("C", nil, ast.Kw("string")),
	)
	res := Run(mod, "m.ts", nil)
	if n := diag.Count(res.Diagnostics, diag.DuplicateIdentifier); n != 2 {
		t.Fatalf("expected 2 duplicate identifier diagnostics, got %d", n)
	}
}

func TestRunCollectsExports(t *testing.T) {
	mod := ast.Mod(
		ast.Import("./dep", "a"),
		ast.Const("local", nil, ast.Num(1)),
		ast.Export("local"),
		ast.NewExportDeclaration([]*ast.ExportSpecifier{ast.NewExportSpecifier(ast.ID("b"), ast.ID("c"))}, "./other"),
		ast.ExportStar("./star"),
		ast.NewExportDefault(ast.Num(3)),
		ast.Export("missing"),
	)
	res := Run(mod, "m.ts", nil)
	kinds := map[string]ExportKind{}
	for _, e := range res.Exports {
		kinds[e.Name] = e.Kind
	}
	if kinds["local"] != ExportLocal || kinds["c"] != ExportReexport || kinds["default"] != ExportDefault {
		t.Fatalf("unexpected export kinds %v", kinds)
	}
	if len(res.Exports) != 4 {
		t.Fatalf("expected 4 export entries, got %d", len(res.Exports))
	}
	if diag.Count(res.Diagnostics, diag.UnresolvedSymbol) != 1 {
		t.Fatalf("expected missing export to be reported, got %v", res.Diagnostics)
	}
	if len(res.Specifiers) != 3 {
		t.Fatalf("expected 3 specifiers, got %v", res.Specifiers)
	}
	if sym, _ := res.Scope.LookupLocal("a"); sym == nil || !sym.Is(binding.DeclImport) {
		t.Fatalf("expected import binding")
	}
}

func TestDeclareBlockKeepsVarsInFunctionScope(t *testing.T) {
	fn := binding.NewScope(binding.ScopeFunction, "m.ts", nil)
	block := fn.Extend(binding.ScopeBlock)
	body := []ast.Statement{ast.Var("v", nil, nil), ast.Const("c", nil, ast.Num(1))}
	DeclareBlock(fn, []ast.Statement{ast.Block(body...)})
	DeclareBlock(block, body)
	if _, ok := fn.LookupLocal("v"); !ok {
		t.Fatalf("expected var to be hoisted into the function scope")
	}
	if sym, _ := fn.LookupLocal("v"); len(sym.Sites) != 1 {
		t.Fatalf("expected one site for the hoisted var, got %d", len(sym.Sites))
	}
	if _, ok := block.LookupLocal("c"); !ok {
		t.Fatalf("expected const in the block scope")
	}
}
