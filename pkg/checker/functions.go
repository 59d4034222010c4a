package checker

import (
	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/passes"
	"github.com/nissy-dev/stc/pkg/types"
)

// fnNode is the part of a function-like node the checker needs.
type fnNode struct {
	node       ast.Node
	self       *ast.Identifier
	typeParams []*ast.TypeParameter
	params     []*ast.Parameter
	ret        ast.TypeExpression
	body       *ast.BlockStatement
	expr       ast.Expression
	async      bool
	expression bool
	method     bool
}

func declParts(fd *ast.FunctionDeclaration) fnNode {
	return fnNode{node: fd, typeParams: fd.TypeParams, params: fd.Params, ret: fd.ReturnType, body: fd.Body, async: fd.Async}
}

func exprParts(fe *ast.FunctionExpression) fnNode {
	return fnNode{
		node: fe, self: fe.Name, typeParams: fe.TypeParams, params: fe.Params, ret: fe.ReturnType,
		body: fe.Body, expr: fe.ExprBody, async: fe.Async, expression: true,
	}
}

func methodParts(m *ast.MethodDeclaration) fnNode {
	return fnNode{node: m, typeParams: m.TypeParams, params: m.Params, ret: m.ReturnType, body: m.Body, async: m.Async, method: true}
}

func ctorParts(m *ast.ConstructorDeclaration) fnNode {
	return fnNode{node: m, params: m.Params, ret: ast.NewKeywordType("void"), body: m.Body}
}

// splitThis removes a leading `this` parameter.
func splitThis(params []*ast.Parameter) ([]*ast.Parameter, *ast.Parameter) {
	if len(params) > 0 && params[0] != nil {
		if id, ok := params[0].Name.(*ast.Identifier); ok && id.Name == "this" {
			return params[1:], params[0]
		}
	}
	return params, nil
}

// checkFunction checks a function's parameters and body in a fresh
// function scope and returns its signature. Unannotated parameters take
// their types from contextual when it is set.
func (c *Checker) checkFunction(f fnNode, contextual *types.Signature) *types.Signature {
	savedFn, savedFlow, savedLoops, savedThis := c.fn, c.flow, c.loops, c.thisType
	c.flow = c.closureFlow()
	c.loops = nil
	defer func() { c.fn, c.flow, c.loops, c.thisType = savedFn, savedFlow, savedLoops, savedThis }()

	sig := &types.Signature{Method: f.method}
	c.withScope(binding.ScopeFunction, func(scope *binding.Scope) {
		if f.self != nil {
			if sym, conflict := scope.Declare(f.self.Name, binding.Site{Kind: binding.DeclFunction, Node: f.node, Name: f.self}); conflict == nil {
				sym.SetValueType(types.Any)
			}
		}
		sig.TypeParams = c.declareTypeParams(scope, f.typeParams)
		if len(f.typeParams) > 0 {
			contextual = nil
		}
		params, thisParam := splitThis(f.params)
		if thisParam != nil && thisParam.Type != nil {
			c.thisType = c.typeFromNode(thisParam.Type)
		}
		sig.Params = c.paramTypes(params, contextual)
		declared, pred := c.returnAnnotation(f.ret, params)
		sig.Predicate = pred
		c.declareParams(scope, params, sig.Params)

		_, isCtor := f.node.(*ast.ConstructorDeclaration)
		fc := &functionContext{declared: declared, async: f.async, ctor: isCtor}
		if declared == nil && contextual != nil {
			fc.contextual = contextual.Return
		}
		c.fn = fc
		endReachable := true
		switch {
		case f.expr != nil:
			target := c.returnTarget(fc)
			t := c.checkExpr(f.expr, target)
			if declared != nil {
				c.checkAssignable(c.awaitedIf(fc.async, t), target, f.expr)
			}
			fc.returns = append(fc.returns, c.awaitedIf(fc.async, t))
			endReachable = false
		case f.body != nil:
			for _, d := range passes.DeclareBlock(scope, f.body.Body) {
				c.addDiagnostic(d)
			}
			c.bindScope(scope, f.body.Body)
			c.checkStatements(f.body.Body)
			endReachable = !c.flow.unreachable
		}
		if declared != nil {
			if f.body != nil && endReachable && !c.allowsImplicitReturn(declared, f.async) {
				if len(fc.returns) == 0 && fc.voidReturns == 0 {
					c.report(f.ret, diag.TypeMismatch, "A function whose declared type is neither 'undefined', 'void', nor 'any' must return a value.")
				} else {
					c.report(f.ret, diag.TypeMismatch, "Function lacks ending return statement and return type does not include 'undefined'.")
				}
			}
			sig.Return = declared
			return
		}
		sig.Return = c.inferReturn(f, fc, endReachable)
	})
	return sig
}

func (c *Checker) awaitedIf(async bool, t types.Type) types.Type {
	if async {
		return c.env.Awaited(t)
	}
	return t
}

// returnTarget is the type return expressions are checked against: the
// declared return, unwrapped for async functions, or the contextual one.
func (c *Checker) returnTarget(fc *functionContext) types.Type {
	t := fc.declared
	if t == nil {
		t = fc.contextual
	}
	if t == nil {
		return nil
	}
	return c.awaitedIf(fc.async, t)
}

func (c *Checker) allowsImplicitReturn(declared types.Type, async bool) bool {
	t := c.awaitedIf(async, declared)
	if types.IsAnyLike(t) {
		return true
	}
	for _, m := range types.Members(t) {
		switch m {
		case types.Type(types.Void), types.Type(types.Undefined), types.Type(types.Unknown):
			return true
		}
	}
	return false
}

func (c *Checker) declareParams(scope *binding.Scope, params []*ast.Parameter, converted []types.Param) {
	i := 0
	for _, p := range params {
		if p == nil {
			continue
		}
		t := converted[i].Type
		i++
		if p.Optional && p.Default == nil && c.in.StrictNullChecks() {
			t = c.in.Optional(t)
		}
		if p.Default != nil {
			dt := c.checkExpr(p.Default, t)
			c.checkAssignable(dt, t, p.Default)
		}
		if id, ok := p.Name.(*ast.Identifier); ok {
			sym, conflict := scope.Declare(id.Name, binding.Site{Kind: binding.DeclParam, Node: p, Name: id})
			if conflict != nil {
				c.report(id, diag.DuplicateIdentifier, "Duplicate identifier '%s'.", id.Name)
				continue
			}
			sym.SetValueType(t)
			continue
		}
		syms, diags := passes.DeclareBinding(scope, p.Name, binding.DeclParam, p)
		for _, d := range diags {
			c.addDiagnostic(d)
		}
		bound := make(map[*ast.Identifier]types.Type)
		c.patternTypes(p.Name, t, bound)
		for _, sym := range syms {
			for _, site := range sym.Sites {
				if bt, ok := bound[site.Name]; ok {
					sym.SetValueType(bt)
				}
			}
		}
	}
}

// inferReturn computes the return type of a function without an
// annotation from its return statements.
func (c *Checker) inferReturn(f fnNode, fc *functionContext, endReachable bool) types.Type {
	var t types.Type
	switch {
	case len(fc.returns) == 0 && fc.voidReturns == 0 && !endReachable && f.expression && f.body != nil:
		t = types.Never
	case len(fc.returns) == 0:
		t = types.Void
	default:
		parts := append([]types.Type(nil), fc.returns...)
		if endReachable || fc.voidReturns > 0 {
			parts = append(parts, types.Undefined)
		}
		t = c.in.Union(parts...)
		if !hasLiteral(fc.contextual) {
			t = c.in.WidenLiteral(t)
		}
	}
	if f.async {
		if p := c.env.Promise(t); p != nil {
			return p
		}
	}
	return t
}

func hasLiteral(t types.Type) bool {
	if t == nil {
		return false
	}
	for _, m := range types.Members(t) {
		switch types.Deref(m).(type) {
		case *types.Literal, *types.EnumMember, *types.TypeParam:
			return true
		}
	}
	return false
}

// anySignature is the contextual signature supplied by an any context:
// every parameter is any and no implicit-any error is reported.
func (c *Checker) anySignature() *types.Signature {
	return &types.Signature{
		Params: []types.Param{{Name: "args", Type: c.in.Array(types.Any), Rest: true}},
		Return: types.Any,
	}
}

// contextualSignature picks the single call signature of a contextual
// type, ignoring nullish members.
func (c *Checker) contextualSignature(ctx types.Type) *types.Signature {
	if ctx == nil {
		return nil
	}
	if types.IsAnyLike(ctx) {
		return c.anySignature()
	}
	var found []*types.Signature
	for _, m := range types.Members(ctx) {
		switch m {
		case types.Type(types.Null), types.Type(types.Undefined), types.Type(types.Void):
			continue
		}
		found = append(found, c.in.Signatures(m, false)...)
	}
	if len(found) != 1 {
		return nil
	}
	return found[0]
}

// isContextSensitive reports whether checking expr depends on its
// contextual type: a function with an unannotated parameter, or a literal
// containing one.
func isContextSensitive(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.FunctionExpression:
		if e == nil || len(e.TypeParams) > 0 {
			return false
		}
		for _, p := range e.Params {
			if p != nil && p.Type == nil {
				return true
			}
		}
	case *ast.ObjectLiteral:
		for _, m := range e.Properties {
			switch p := m.(type) {
			case *ast.PropertyAssignment:
				if isContextSensitive(p.Value) {
					return true
				}
			case *ast.ObjectMethod:
				if isContextSensitive(p.Function) {
					return true
				}
			}
		}
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			if isContextSensitive(el) {
				return true
			}
		}
	case *ast.ConditionalExpression:
		return isContextSensitive(e.Consequent) || isContextSensitive(e.Alternate)
	}
	return false
}

func (c *Checker) checkFunctionExpression(e *ast.FunctionExpression, ctx types.Type) types.Type {
	contextual := c.contextualSignature(ctx)
	saved := c.thisType
	if !e.Arrow {
		c.thisType = nil
	}
	sig := c.checkFunction(exprParts(e), contextual)
	c.thisType = saved
	return c.in.Function(sig)
}

// checkFunctionDeclaration checks a function statement: its body, once,
// and the agreement between its overloads and the implementation.
func (c *Checker) checkFunctionDeclaration(fd *ast.FunctionDeclaration) {
	sym, ok := c.scope.LookupValue(fd.DeclaredName())
	if !ok {
		return
	}
	sym.ValueType()
	scope := c.scope
	if fd.Body != nil && c.checked.Insert(fd) {
		c.isolate(scope, func() { c.checkFunction(declParts(fd), nil) })
	}
	sites := functionSites(sym)
	if len(sites) < 2 || sites[len(sites)-1] != fd {
		return
	}
	var overloads, impls []*ast.FunctionDeclaration
	for _, s := range sites {
		if s.Body == nil {
			overloads = append(overloads, s)
		} else {
			impls = append(impls, s)
		}
	}
	for _, dup := range impls[min(1, len(impls)):] {
		c.report(dup.Name, diag.DuplicateIdentifier, "Duplicate function implementation.")
	}
	if len(impls) == 0 {
		if !fd.Declare {
			c.report(fd.Name, diag.TypeMismatch, "Function implementation is missing or not immediately following the declaration.")
		}
		return
	}
	impl := c.declSignature(scope, impls[0])
	for _, o := range overloads {
		if !c.overloadCompatible(c.declSignature(scope, o), impl) {
			c.report(o.Name, diag.TypeMismatch, "This overload signature is not compatible with its implementation signature.")
		}
	}
}

// overloadCompatible reports whether an overload may be implemented by
// impl: parameters relate in either direction and so does the return.
func (c *Checker) overloadCompatible(o, impl *types.Signature) bool {
	if o.MinArgs() < impl.MinArgs() {
		return false
	}
	if limit := impl.MaxArgs(); limit >= 0 && (o.MaxArgs() < 0 || o.MaxArgs() > limit) {
		return false
	}
	related := func(a, b types.Type) bool {
		return c.in.IsAssignable(a, b) || c.in.IsAssignable(b, a)
	}
	for i := range o.Params {
		ot, ok1 := c.in.ParamTypeAt(o, i)
		it, ok2 := c.in.ParamTypeAt(impl, i)
		if ok1 && ok2 && !related(ot, it) {
			return false
		}
	}
	if o.Return == types.Type(types.Void) {
		return true
	}
	return related(impl.Return, o.Return)
}
