package checker

import (
	"errors"
	"testing"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/env"
	"github.com/nissy-dev/stc/pkg/passes"
	"github.com/nissy-dev/stc/pkg/types"
)

func newEnv(t *testing.T) *env.Environment {
	t.Helper()
	e, err := env.New(env.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func checkWith(t *testing.T, e *env.Environment, imp Importer, path string, body ...ast.Statement) *Module {
	t.Helper()
	mod := ast.Mod(body...)
	pre := passes.Run(mod, path, e.GlobalScope())
	m, err := New(e, imp).CheckModule(mod, pre)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func check(t *testing.T, body ...ast.Statement) *Module {
	t.Helper()
	return checkWith(t, newEnv(t), nil, "main.ts", body...)
}

// expectKinds compares diagnostic kinds regardless of order; imports are
// bound before statements so report order does not follow the source.
func expectKinds(t *testing.T, m *Module, want ...diag.Kind) {
	t.Helper()
	if len(m.Diagnostics) != len(want) {
		t.Fatalf("expected %d diagnostics, got %v", len(want), m.Diagnostics)
	}
	counts := map[diag.Kind]int{}
	for _, k := range want {
		counts[k]++
	}
	for _, d := range m.Diagnostics {
		counts[d.Kind]--
	}
	for k, n := range counts {
		if n != 0 {
			t.Fatalf("expected kinds %v, got %v (mismatch on %s)", want, m.Diagnostics, k)
		}
	}
}

func expectType(t *testing.T, m *Module, expr ast.Expression, want string) {
	t.Helper()
	got := m.TypeOf(expr)
	if got == nil {
		t.Fatalf("expected %s, got no type", want)
	}
	if s := types.TypeString(got); s != want {
		t.Fatalf("expected %s, got %s", want, s)
	}
}

var (
	num = ast.Kw("number")
	str = ast.Kw("string")
)

func TestAssignmentMismatch(t *testing.T) {
	m := check(t, ast.Let("x", num, ast.Str("a")))
	expectKinds(t, m, diag.TypeMismatch)
	if msg := m.Diagnostics[0].Message; msg != "Type 'string' is not assignable to type 'number'." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestAssignmentMismatchIsReportedAtTheAssignment(t *testing.T) {
	m := check(t,
		ast.At(ast.Let("x", num, ast.Str("a")), 2, 1),
		ast.Expr(ast.At(ast.Assign(ast.ID("x"), ast.Str("b")), 3, 1)),
	)
	expectKinds(t, m, diag.TypeMismatch, diag.TypeMismatch)
	lines := map[int]bool{}
	for _, d := range m.Diagnostics {
		if d.Span.Start.Column != 1 {
			t.Fatalf("expected diagnostic at column 1, got %v", d.Span)
		}
		lines[d.Span.Start.Line] = true
	}
	if !lines[2] || !lines[3] {
		t.Fatalf("expected diagnostics on lines 2 and 3, got %v", m.Diagnostics)
	}
}

func TestLiteralTargetsKeepLiteralSource(t *testing.T) {
	m := check(t, ast.Let("x", ast.UnionT(ast.StrT("a"), ast.StrT("b")), ast.Str("c")))
	expectKinds(t, m, diag.TypeMismatch)
	if msg := m.Diagnostics[0].Message; msg != `Type '"c"' is not assignable to type '"a" | "b"'.` {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestGenericIdentityInfersWidenedArgument(t *testing.T) {
	call := ast.CallName("id", ast.Num(5))
	m := check(t,
		ast.GenericFn("id", []*ast.TypeParameter{ast.TP("T")}, ast.Params(ast.Param("x", ast.Ty("T"))), ast.Ty("T"), ast.Ret(ast.ID("x"))),
		ast.Const("n", nil, call),
	)
	expectKinds(t, m)
	expectType(t, m, call, "number")
}

func TestExplicitTypeArguments(t *testing.T) {
	call := ast.CallT(ast.ID("id"), []ast.TypeExpression{str}, ast.Num(5))
	m := check(t,
		ast.GenericFn("id", []*ast.TypeParameter{ast.TP("T")}, ast.Params(ast.Param("x", ast.Ty("T"))), ast.Ty("T"), ast.Ret(ast.ID("x"))),
		ast.Expr(call),
	)
	expectKinds(t, m, diag.TypeMismatch)
	expectType(t, m, call, "string")
}

func TestUnresolvedNameFallsBackQuietly(t *testing.T) {
	use := ast.Member(ast.ID("missing"), "anything")
	m := check(t, ast.Expr(use), ast.Let("x", num, ast.ID("missing")))
	expectKinds(t, m, diag.UnresolvedSymbol, diag.UnresolvedSymbol)
	if !types.IsFallback(m.TypeOf(use)) {
		t.Fatalf("expected fallback type, got %v", m.TypeOf(use))
	}
}

func TestTypeUsedAsValue(t *testing.T) {
	m := check(t, ast.Iface("P", ast.PropSig("x", num)), ast.Expr(ast.ID("P")))
	expectKinds(t, m, diag.UnresolvedSymbol)
	if msg := m.Diagnostics[0].Message; msg != "'P' only refers to a type, but is being used as a value here." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestMissingImportDoesNotCascade(t *testing.T) {
	imp := ImporterFunc(func(from, specifier string) (*Exports, error) {
		return nil, ErrUnresolvedModule
	})
	m := checkWith(t, newEnv(t), imp, "main.ts",
		ast.Import("./missing", "a"),
		ast.Let("b", num, ast.ID("a")),
		ast.Expr(ast.Call(ast.Member(ast.ID("a"), "run"), ast.Num(1))),
	)
	expectKinds(t, m, diag.UnresolvedModule)
}

func TestImporterErrorsAreReported(t *testing.T) {
	imp := ImporterFunc(func(from, specifier string) (*Exports, error) {
		return nil, errors.New("disk on fire")
	})
	m := checkWith(t, newEnv(t), imp, "main.ts", ast.Import("./a", "x"))
	expectKinds(t, m, diag.UnresolvedModule)
}

func TestImportsResolveAcrossModules(t *testing.T) {
	e := newEnv(t)
	lib := checkWith(t, e, nil, "lib.ts",
		ast.Exported(ast.Fn("double", ast.Params(ast.Param("x", num)), num, ast.Ret(ast.Bin("*", ast.ID("x"), ast.Num(2))))),
		ast.Exported(ast.Iface("Box", ast.PropSig("value", num))),
	)
	expectKinds(t, lib)
	imp := ImporterFunc(func(from, specifier string) (*Exports, error) {
		if specifier != "./lib" {
			return nil, ErrUnresolvedModule
		}
		return lib.Exports, nil
	})
	call := ast.CallName("double", ast.Num(3))
	m := checkWith(t, e, imp, "main.ts",
		ast.Import("./lib", "double", "Box"),
		ast.Const("b", ast.Ty("Box"), ast.Obj(ast.Prop("value", call))),
		ast.Expr(ast.CallName("double", ast.Str("x"))),
		ast.Import("./lib", "nothing"),
	)
	expectKinds(t, m, diag.TypeMismatch, diag.UnresolvedSymbol)
	expectType(t, m, call, "number")
}

func TestOverloadResolution(t *testing.T) {
	pick := ast.CallName("f", ast.Num(1))
	m := check(t,
		ast.Overload("f", ast.Params(ast.Param("x", str)), str),
		ast.Overload("f", ast.Params(ast.Param("x", num)), num),
		ast.Fn("f", ast.Params(ast.Param("x", ast.Kw("any"))), ast.Kw("any"), ast.Ret(ast.ID("x"))),
		ast.Expr(pick),
		ast.Expr(ast.CallName("f", ast.Bool(true))),
	)
	expectKinds(t, m, diag.OverloadResolutionFailure)
	expectType(t, m, pick, "number")
}

func TestArgumentCount(t *testing.T) {
	m := check(t,
		ast.Fn("g", ast.Params(ast.Param("a", num)), ast.Kw("void")),
		ast.Expr(ast.CallName("g")),
	)
	expectKinds(t, m, diag.ArgumentCount)
	if msg := m.Diagnostics[0].Message; msg != "Expected 1 arguments, but got 0." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestArgumentMismatch(t *testing.T) {
	m := check(t,
		ast.Fn("g", ast.Params(ast.Param("a", num)), ast.Kw("void")),
		ast.Expr(ast.CallName("g", ast.Str("x"))),
	)
	expectKinds(t, m, diag.TypeMismatch)
	if msg := m.Diagnostics[0].Message; msg != "Argument of type 'string' is not assignable to parameter of type 'number'." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestNotCallable(t *testing.T) {
	m := check(t, ast.Const("n", nil, ast.Num(1)), ast.Expr(ast.CallName("n")))
	expectKinds(t, m, diag.NotCallable)
}

func TestExcessProperty(t *testing.T) {
	m := check(t,
		ast.Iface("P", ast.PropSig("x", num)),
		ast.Const("p", ast.Ty("P"), ast.Obj(ast.Prop("x", ast.Num(1)), ast.Prop("y", ast.Num(2)))),
		ast.Const("q", nil, ast.Obj(ast.Prop("x", ast.Num(1)), ast.Prop("y", ast.Num(2)))),
		ast.Const("r", ast.Ty("P"), ast.ID("q")),
	)
	expectKinds(t, m, diag.ExcessProperty)
	if msg := m.Diagnostics[0].Message; msg != "Object literal may only specify known properties, and 'y' does not exist in type 'P'." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestObjectLiteralWidening(t *testing.T) {
	access := ast.Member(ast.ID("o"), "a")
	m := check(t,
		ast.Let("o", nil, ast.Obj(ast.Prop("a", ast.Num(1)), ast.Prop("b", ast.Str("x")))),
		ast.Expr(access),
	)
	expectKinds(t, m)
	expectType(t, m, access, "number")
}

func TestMissingProperty(t *testing.T) {
	m := check(t,
		ast.Const("o", nil, ast.Obj(ast.Prop("a", ast.Num(1)))),
		ast.Expr(ast.Member(ast.ID("o"), "b")),
	)
	expectKinds(t, m, diag.PropertyMissing)
}

func TestEnums(t *testing.T) {
	m := check(t,
		ast.Enum("Color", ast.NewEnumMember("Red", nil), ast.NewEnumMember("Green", nil)),
		ast.Let("c", ast.Ty("Color"), ast.Member(ast.ID("Color"), "Red")),
		ast.Let("n", num, ast.Member(ast.ID("Color"), "Green")),
		ast.Let("s", str, ast.Member(ast.ID("Color"), "Red")),
	)
	expectKinds(t, m, diag.TypeMismatch)
}

func TestClasses(t *testing.T) {
	created := ast.New(ast.ID("Point"), ast.Num(1))
	norm := ast.MethodCall(ast.ID("p"), "norm")
	m := check(t,
		ast.Class("Point",
			ast.Field("x", num, nil),
			ast.Ctor(ast.Params(ast.Param("x", num)), ast.Expr(ast.Assign(ast.Member(ast.This(), "x"), ast.ID("x")))),
			ast.Method("norm", nil, num, ast.Ret(ast.Member(ast.This(), "x"))),
		),
		ast.Const("p", nil, created),
		ast.Expr(norm),
		ast.Expr(ast.Member(ast.ID("p"), "y")),
		ast.Expr(ast.New(ast.ID("Point"), ast.Str("1"))),
	)
	expectKinds(t, m, diag.PropertyMissing, diag.TypeMismatch)
	expectType(t, m, created, "Point")
	expectType(t, m, norm, "number")
}

func TestImplicitAnyParameter(t *testing.T) {
	m := check(t, ast.Fn("f", ast.Params(ast.Param("x", nil)), ast.Kw("void")))
	expectKinds(t, m, diag.ImplicitAny)
	if msg := m.Diagnostics[0].Message; msg != "Parameter 'x' implicitly has an 'any' type." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestContextualLambdaParameters(t *testing.T) {
	mapped := ast.MethodCall(ast.Arr(ast.Num(1), ast.Num(2)), "map",
		ast.Arrow(ast.Params(ast.Param("v", nil)), ast.Bin("*", ast.ID("v"), ast.Num(2))))
	m := check(t, ast.Const("xs", nil, mapped))
	expectKinds(t, m)
	expectType(t, m, mapped, "number[]")
}

func TestReturnTypeInference(t *testing.T) {
	call := ast.CallName("f", ast.Bool(true))
	m := check(t,
		ast.Fn("f", ast.Params(ast.Param("b", ast.Kw("boolean"))), nil,
			ast.If(ast.ID("b"), ast.Ret(ast.Num(1)), nil),
			ast.Ret(ast.Str("x")),
		),
		ast.Expr(call),
	)
	expectKinds(t, m)
	expectType(t, m, call, "string | number")
}

func TestMissingReturn(t *testing.T) {
	m := check(t,
		ast.Fn("f", ast.Params(ast.Param("b", ast.Kw("boolean"))), num,
			ast.If(ast.ID("b"), ast.Ret(ast.Num(1)), nil),
		),
	)
	expectKinds(t, m, diag.TypeMismatch)
	if msg := m.Diagnostics[0].Message; msg != "Function lacks ending return statement and return type does not include 'undefined'." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCircularAlias(t *testing.T) {
	m := check(t, ast.Alias("A", nil, ast.Ty("A")))
	expectKinds(t, m, diag.CircularTypeError)
}

func TestRecursiveAliasThroughObject(t *testing.T) {
	m := check(t,
		ast.Alias("List", nil, ast.ObjT(ast.PropSig("value", num), ast.OptPropSig("next", ast.Ty("List")))),
		ast.Const("l", ast.Ty("List"), ast.Obj(ast.Prop("value", ast.Num(1)), ast.Prop("next", ast.Obj(ast.Prop("value", ast.Num(2)))))),
	)
	expectKinds(t, m)
}

func TestNonOverlappingCast(t *testing.T) {
	m := check(t,
		ast.Const("a", nil, ast.As(ast.Str("x"), num)),
		ast.Const("b", nil, ast.As(ast.ID("a"), ast.Kw("unknown"))),
	)
	expectKinds(t, m, diag.NonOverlappingTypeCast)
}

func TestAsConstKeepsLiterals(t *testing.T) {
	tuple := ast.AsConst(ast.Arr(ast.Num(1), ast.Str("a")))
	m := check(t, ast.Const("t", nil, tuple))
	expectKinds(t, m)
	expectType(t, m, tuple, `readonly [1, "a"]`)
}

func TestConstAssignment(t *testing.T) {
	m := check(t, ast.Const("c", nil, ast.Num(1)), ast.Expr(ast.Assign(ast.ID("c"), ast.Num(2))))
	expectKinds(t, m, diag.TypeMismatch)
	if msg := m.Diagnostics[0].Message; msg != "Cannot assign to 'c' because it is a constant." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestDuplicateDeclaration(t *testing.T) {
	m := check(t, ast.Let("x", nil, ast.Num(1)), ast.Let("x", nil, ast.Num(2)))
	expectKinds(t, m, diag.DuplicateIdentifier)
}

func TestArithmeticOperands(t *testing.T) {
	sum := ast.Bin("+", ast.Num(1), ast.Str("a"))
	m := check(t,
		ast.Const("s", nil, sum),
		ast.Const("d", nil, ast.Bin("-", ast.Str("a"), ast.Num(1))),
	)
	expectKinds(t, m, diag.TypeMismatch)
	expectType(t, m, sum, "string")
}
