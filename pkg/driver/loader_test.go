package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/env"
	"github.com/nissy-dev/stc/pkg/types"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// project lays out one empty source file per module so that resolution
// finds them, and serves the trees from memory.
func project(t *testing.T, modules map[string]*ast.Module) *Loader {
	t.Helper()
	fsys := MemFS()
	files := make(map[string]string, len(modules))
	for path := range modules {
		files[path] = ""
	}
	if err := WriteFiles(fsys, files); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, err := env.New(env.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewLoader(e, fsys, MapParser(modules)).WithLogger(quiet)
}

func run(t *testing.T, l *Loader, workers int, entries ...string) *Result {
	t.Helper()
	res, err := NewScheduler(l, workers).WithLogger(quiet).Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func kindsOf(diags []diag.Diagnostic) []diag.Kind {
	out := make([]diag.Kind, len(diags))
	for i, d := range diags {
		out[i] = d.Kind
	}
	return out
}

func TestSingleFlightAcrossEntries(t *testing.T) {
	modules := map[string]*ast.Module{
		"shared.ts": ast.Mod(ast.Exported(ast.Const("shared", ast.Kw("number"), ast.Num(1)))),
	}
	var entries []string
	for i := 0; i < 16; i++ {
		path := fmt.Sprintf("entry%d.ts", i)
		modules[path] = ast.Mod(
			ast.Import("./shared", "shared"),
			ast.Exported(ast.Const("v", nil, ast.Bin("+", ast.ID("shared"), ast.Num(1)))),
		)
		entries = append(entries, path)
	}
	l := project(t, modules)
	res := run(t, l, 4, entries...)

	if n := l.Analyses("shared.ts"); n != 1 {
		t.Fatalf("expected shared.ts to be analyzed once, got %d", n)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", res.Diagnostics)
	}
	for _, e := range entries {
		if l.Status(e) != Done {
			t.Fatalf("expected %s to be done, got %s", e, l.Status(e))
		}
		if got := types.TypeString(res.Exports(e)["v"]); got != "number" {
			t.Fatalf("expected %s export v to be number, got %s", e, got)
		}
	}
}

func TestDiagnosticsAreSortedByPath(t *testing.T) {
	l := project(t, map[string]*ast.Module{
		"b.ts": ast.Mod(ast.Let("x", ast.Kw("string"), ast.Num(1))),
		"a.ts": ast.Mod(
			ast.Let("y", ast.Kw("number"), ast.At(ast.Str("s"), 2, 17)),
			ast.Expr(ast.At(ast.ID("nope"), 1, 1)),
		),
	})
	res := run(t, l, 2, "b.ts", "a.ts")
	if len(res.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %v", res.Diagnostics)
	}
	got := []string{res.Diagnostics[0].Path, res.Diagnostics[1].Path, res.Diagnostics[2].Path}
	if got[0] != "a.ts" || got[1] != "a.ts" || got[2] != "b.ts" {
		t.Fatalf("expected diagnostics ordered by path, got %v", got)
	}
	if res.Diagnostics[0].Kind != diag.UnresolvedSymbol {
		t.Fatalf("expected the earlier position first, got %v", res.Diagnostics)
	}
}

func TestTypeCycleBetweenModules(t *testing.T) {
	l := project(t, map[string]*ast.Module{
		"a.ts": ast.Mod(
			ast.Import("./b", "B"),
			ast.Exported(ast.Iface("A", ast.PropSig("b", ast.Ty("B")))),
			ast.Exported(ast.Const("name", ast.Kw("string"), ast.Str("a"))),
		),
		"b.ts": ast.Mod(
			ast.Import("./a", "A", "name"),
			ast.Exported(ast.Iface("B", ast.OptPropSig("a", ast.Ty("A")))),
			ast.Exported(ast.Const("label", nil, ast.ID("name"))),
		),
	})
	res := run(t, l, 2, "a.ts")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", res.Diagnostics)
	}
	for _, p := range []string{"a.ts", "b.ts"} {
		if l.Status(p) != Done {
			t.Fatalf("expected %s to be done, got %s", p, l.Status(p))
		}
	}
	label := res.Exports("b.ts")["label"]
	if types.IsUnresolvedLazy(label) {
		t.Fatalf("expected placeholder to be resolved, got %v", label)
	}
	if got := types.TypeString(label); got != "string" {
		t.Fatalf("expected label to be string, got %s", got)
	}
}

func TestSelfReferentialCycleIsReported(t *testing.T) {
	l := project(t, map[string]*ast.Module{
		"a.ts": ast.Mod(
			ast.Import("./b", "b"),
			ast.Exported(ast.Const("a", nil, ast.ID("b"))),
		),
		"b.ts": ast.Mod(
			ast.Import("./a", "a"),
			ast.Exported(ast.Const("b", nil, ast.ID("a"))),
		),
	})
	res := run(t, l, 2, "a.ts", "b.ts")
	circular := 0
	for _, d := range res.Diagnostics {
		if d.Kind == diag.CircularTypeError {
			circular++
		}
	}
	if circular != 1 {
		t.Fatalf("expected one circular type error, got %v", kindsOf(res.Diagnostics))
	}
	if l.Status("a.ts") != Done || l.Status("b.ts") != Done {
		t.Fatalf("expected both modules to finish")
	}
}

func TestUnresolvedImportDoesNotCascade(t *testing.T) {
	l := project(t, map[string]*ast.Module{
		"main.ts": ast.Mod(
			ast.Import("./missing", "x"),
			ast.Let("n", ast.Kw("number"), ast.ID("x")),
			ast.Expr(ast.MethodCall(ast.ID("x"), "anything")),
		),
	})
	res := run(t, l, 1, "main.ts")
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != diag.UnresolvedModule {
		t.Fatalf("expected one UnresolvedModule diagnostic, got %v", res.Diagnostics)
	}
}

func TestFailedModuleDegradesExports(t *testing.T) {
	l := project(t, map[string]*ast.Module{
		"main.ts": ast.Mod(
			ast.Import("./dep", "x"),
			ast.Let("n", ast.Kw("number"), ast.ID("x")),
		),
		"dep.ts": nil,
	})
	res := run(t, l, 2, "main.ts")
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", res.Diagnostics)
	}
	if d := res.Diagnostics[0]; d.Kind != diag.Internal || d.Path != "dep.ts" {
		t.Fatalf("expected internal diagnostic on dep.ts, got %v", d)
	}
	if l.Status("dep.ts") != Failed || l.Status("main.ts") != Done {
		t.Fatalf("expected dep.ts failed and main.ts done, got %s and %s", l.Status("dep.ts"), l.Status("main.ts"))
	}
}

func TestPanicBecomesInternalDiagnostic(t *testing.T) {
	fsys := MemFS()
	if err := WriteFiles(fsys, map[string]string{"main.ts": ""}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, _ := env.New(env.DefaultOptions())
	l := NewLoader(e, fsys, ParserFunc(func(FS, string) (*ast.Module, error) {
		panic("boom")
	})).WithLogger(quiet)
	res := run(t, l, 1, "main.ts")
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != diag.Internal {
		t.Fatalf("expected one internal diagnostic, got %v", res.Diagnostics)
	}
}

func TestInvariantViolationAbortsRun(t *testing.T) {
	fsys := MemFS()
	if err := WriteFiles(fsys, map[string]string{"main.ts": ""}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, _ := env.New(env.DefaultOptions())
	l := NewLoader(e, fsys, ParserFunc(func(FS, string) (*ast.Module, error) {
		panic(&types.InvariantError{Op: "intern", Detail: "corrupt"})
	})).WithLogger(quiet)
	_, err := NewScheduler(l, 1).WithLogger(quiet).Run(context.Background(), []string{"main.ts"})
	var inv *types.InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestCancelledRunLeavesModulesUnanalyzed(t *testing.T) {
	l := project(t, map[string]*ast.Module{
		"main.ts": ast.Mod(ast.Const("x", nil, ast.Num(1))),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScheduler(l, 1).WithLogger(quiet).Run(ctx, []string{"main.ts"})
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if s := l.Status("main.ts"); s != Unanalyzed {
		t.Fatalf("expected main.ts unanalyzed, got %s", s)
	}
}

func TestMissingEntry(t *testing.T) {
	l := project(t, map[string]*ast.Module{"main.ts": ast.Mod()})
	_, err := NewScheduler(l, 1).Run(context.Background(), []string{"other.ts"})
	if !errors.Is(err, ErrUnresolvedModule) {
		t.Fatalf("expected ErrUnresolvedModule, got %v", err)
	}
}

func TestLoadOnCallingGoroutine(t *testing.T) {
	l := project(t, map[string]*ast.Module{
		"main.ts": ast.Mod(ast.Import("./util", "twice"), ast.Expr(ast.CallName("twice", ast.Str("x")))),
		"util.ts": ast.Mod(ast.Exported(ast.Fn("twice", ast.Params(ast.Param("n", ast.Kw("number"))), ast.Kw("number"),
			ast.Ret(ast.Bin("*", ast.ID("n"), ast.Num(2)))))),
	})
	m, err := l.Load(context.Background(), "main.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Diagnostics) != 1 || m.Diagnostics[0].Kind != diag.TypeMismatch {
		t.Fatalf("expected one TypeMismatch, got %v", m.Diagnostics)
	}
	if l.Analyses("util.ts") != 1 {
		t.Fatalf("expected util.ts analyzed once, got %d", l.Analyses("util.ts"))
	}
}

const sidecarJSON = `{
  "type": "Module",
  "body": [
    {
      "type": "VariableStatement",
      "kind": "let",
      "declarations": [
        {
          "type": "VariableDeclarator",
          "name": {"type": "Identifier", "name": "x"},
          "typeAnnotation": {"type": "KeywordType", "keyword": "string"},
          "init": {"type": "NumericLiteral", "value": 1}
        }
      ]
    }
  ]
}`

func TestSidecarParser(t *testing.T) {
	fsys := MemFS()
	if err := WriteFiles(fsys, map[string]string{
		"src/main.ts":            "let x: string = 1;",
		"src/main.ts.ast.json":   sidecarJSON,
		"src/broken.ts":          "",
		"src/broken.ts.ast.json": `{"type": "Identifier"}`,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, _ := env.New(env.DefaultOptions())
	l := NewLoader(e, fsys, nil).WithLogger(quiet)
	res := run(t, l, 2, "src/main.ts", "src/broken.ts")
	got := kindsOf(res.Diagnostics)
	if len(got) != 2 || got[0] != diag.Internal || got[1] != diag.TypeMismatch {
		t.Fatalf("expected [Internal TypeMismatch], got %v", got)
	}
}
