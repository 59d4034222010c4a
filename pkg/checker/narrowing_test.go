package checker

import (
	"testing"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/diag"
)

func TestTypeofNarrowing(t *testing.T) {
	inThen := ast.ID("x")
	inElse := ast.ID("x")
	m := check(t,
		ast.Fn("f", ast.Params(ast.Param("x", ast.UnionT(str, num))), str,
			ast.If(ast.Bin("===", ast.Typeof(ast.ID("x")), ast.Str("string")), ast.Ret(inThen), nil),
			ast.Ret(ast.Call(ast.Member(inElse, "toFixed"))),
		),
	)
	expectKinds(t, m)
	expectType(t, m, inThen, "string")
	expectType(t, m, inElse, "number")
}

func TestTruthinessNarrowing(t *testing.T) {
	narrowed := ast.ID("s")
	m := check(t,
		ast.Fn("f", ast.Params(ast.Param("s", ast.UnionT(str, ast.Kw("undefined")))), num,
			ast.If(ast.ID("s"), ast.Ret(ast.Member(narrowed, "length")), nil),
			ast.Ret(ast.Num(0)),
		),
	)
	expectKinds(t, m)
	expectType(t, m, narrowed, "string")
}

func TestOptionalParameterAccess(t *testing.T) {
	chained := ast.OptMember(ast.ID("s"), "length")
	m := check(t,
		ast.Fn("f", ast.Params(ast.OptParam("s", str)), ast.Kw("void"),
			ast.Expr(ast.Member(ast.ID("s"), "length")),
			ast.Expr(chained),
		),
	)
	expectKinds(t, m, diag.TypeMismatch)
	if msg := m.Diagnostics[0].Message; msg != "Object is possibly 'undefined'." {
		t.Fatalf("unexpected message %q", msg)
	}
	expectType(t, m, chained, "number | undefined")
}

func TestDiscriminatedUnionSwitch(t *testing.T) {
	shape := ast.UnionT(
		ast.ObjT(ast.PropSig("kind", ast.StrT("circle")), ast.PropSig("radius", num)),
		ast.ObjT(ast.PropSig("kind", ast.StrT("square")), ast.PropSig("side", num)),
	)
	m := check(t,
		ast.Alias("Shape", nil, shape),
		ast.Fn("area", ast.Params(ast.Param("s", ast.Ty("Shape"))), num,
			ast.Switch(ast.Member(ast.ID("s"), "kind"),
				ast.Case(ast.Str("circle"), ast.Ret(ast.Member(ast.ID("s"), "radius"))),
				ast.Case(ast.Str("square"), ast.Ret(ast.Member(ast.ID("s"), "side"))),
			),
		),
	)
	expectKinds(t, m)
}

func TestDiscriminantExcludesOtherMembers(t *testing.T) {
	shape := ast.UnionT(
		ast.ObjT(ast.PropSig("kind", ast.StrT("circle")), ast.PropSig("radius", num)),
		ast.ObjT(ast.PropSig("kind", ast.StrT("square")), ast.PropSig("side", num)),
	)
	m := check(t,
		ast.Fn("f", ast.Params(ast.Param("s", shape)), num,
			ast.If(ast.Bin("===", ast.Member(ast.ID("s"), "kind"), ast.Str("circle")),
				ast.Ret(ast.Member(ast.ID("s"), "side")), nil),
			ast.Ret(ast.Num(0)),
		),
	)
	expectKinds(t, m, diag.PropertyMissing)
}

func TestForOfElementType(t *testing.T) {
	elem := ast.ID("v")
	m := check(t,
		ast.Const("xs", ast.ArrT(str), ast.Arr(ast.Str("a"))),
		ast.ForOf(ast.VarKindConst, "v", ast.ID("xs"), ast.Expr(ast.MethodCall(elem, "toUpperCase"))),
		ast.ForOf(ast.VarKindConst, "n", ast.Num(3)),
	)
	expectKinds(t, m, diag.TypeMismatch)
	expectType(t, m, elem, "string")
}

func TestAssignmentNarrowsDeclaredType(t *testing.T) {
	after := ast.ID("x")
	m := check(t,
		ast.Let("x", ast.UnionT(str, num), ast.Num(1)),
		ast.Expr(ast.Assign(ast.ID("x"), ast.Str("a"))),
		ast.Expr(ast.MethodCall(after, "toUpperCase")),
	)
	expectKinds(t, m)
	expectType(t, m, after, "string")
}

func TestUserDefinedTypeGuard(t *testing.T) {
	guarded := ast.ID("v")
	m := check(t,
		ast.Fn("isString", ast.Params(ast.Param("v", ast.Kw("unknown"))), ast.Is("v", str),
			ast.Ret(ast.Bin("===", ast.Typeof(ast.ID("v")), ast.Str("string"))),
		),
		ast.Fn("f", ast.Params(ast.Param("v", ast.Kw("unknown"))), ast.Kw("void"),
			ast.If(ast.CallName("isString", ast.ID("v")), ast.Expr(ast.MethodCall(guarded, "toUpperCase")), nil),
		),
	)
	expectKinds(t, m)
	expectType(t, m, guarded, "string")
}

func TestIfMergeRestoresDeclaredType(t *testing.T) {
	inThen := ast.ID("x")
	merged := ast.ID("x")
	afterReturn := ast.ID("y")
	m := check(t,
		ast.Fn("f", ast.Params(ast.Param("x", ast.UnionT(str, num)), ast.Param("y", ast.UnionT(str, num))), ast.Kw("void"),
			ast.If(ast.Bin("===", ast.Typeof(ast.ID("x")), ast.Str("string")), ast.Expr(ast.Member(inThen, "length")), nil),
			ast.Expr(merged),
			ast.If(ast.Bin("===", ast.Typeof(ast.ID("y")), ast.Str("string")), ast.Ret(nil), nil),
			ast.Expr(afterReturn),
		),
	)
	expectKinds(t, m)
	expectType(t, m, inThen, "string")
	expectType(t, m, merged, "string | number")
	expectType(t, m, afterReturn, "number")
}

func TestLoopBackEdgeWidensAssignedFacts(t *testing.T) {
	beforeLoop := ast.ID("x")
	inLoop := ast.ID("x")
	afterLoop := ast.ID("x")
	m := check(t,
		ast.Fn("f", ast.Params(ast.Param("b", ast.Kw("boolean"))), ast.Kw("void"),
			ast.Let("x", ast.UnionT(str, num), ast.Num(1)),
			ast.Expr(beforeLoop),
			ast.While(ast.ID("b"),
				ast.Expr(inLoop),
				ast.Expr(ast.Assign(ast.ID("x"), ast.Str("a"))),
			),
			ast.Expr(afterLoop),
		),
	)
	expectKinds(t, m)
	expectType(t, m, beforeLoop, "number")
	expectType(t, m, inLoop, "string | number")
	expectType(t, m, afterLoop, "string | number")
}
