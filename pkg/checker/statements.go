package checker

import (
	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/passes"
	"github.com/nissy-dev/stc/pkg/types"
)

func (c *Checker) checkStatements(body []ast.Statement) {
	for _, s := range body {
		c.checkStatement(s)
	}
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case nil:
	case *ast.VariableStatement:
		c.checkVariableStatement(s)
	case *ast.FunctionDeclaration:
		c.checkFunctionDeclaration(s)
	case *ast.ClassDeclaration:
		c.checkClass(s)
	case *ast.InterfaceDeclaration:
		c.resolveTypeDecl(s.Name)
	case *ast.TypeAliasDeclaration:
		c.resolveTypeDecl(s.Name)
	case *ast.EnumDeclaration:
		if s.Name != nil {
			if sym, ok := c.scope.LookupValue(s.Name.Name); ok {
				sym.ValueType()
			}
		}
	case *ast.NamespaceDeclaration:
		c.report(s, diag.UnsupportedConstruct, "Namespace declarations are not supported.")
	case *ast.ImportDeclaration, *ast.ExportDeclaration:
	case *ast.ExportDefault:
		c.checkExpr(s.Expression, nil)
	case *ast.ExpressionStatement:
		c.checkExpr(s.Expression, nil)
		if call, ok := s.Expression.(*ast.CallExpression); ok {
			c.applyAssertion(call)
		}
	case *ast.BlockStatement:
		c.checkBlock(s.Body)
	case *ast.IfStatement:
		c.checkIf(s)
	case *ast.ReturnStatement:
		c.checkReturn(s)
	case *ast.WhileStatement:
		c.checkWhile(s)
	case *ast.DoWhileStatement:
		c.checkDoWhile(s)
	case *ast.ForStatement:
		c.checkFor(s)
	case *ast.ForOfStatement:
		c.checkForOf(s)
	case *ast.ForInStatement:
		c.checkForIn(s)
	case *ast.BreakStatement:
		c.checkJump(s, s.Label, true)
	case *ast.ContinueStatement:
		c.checkJump(s, s.Label, false)
	case *ast.ThrowStatement:
		c.checkExpr(s.Argument, nil)
		c.flow = unreachableFlow()
	case *ast.TryStatement:
		c.checkTry(s)
	case *ast.SwitchStatement:
		c.checkSwitch(s)
	default:
		c.report(stmt, diag.UnsupportedConstruct, "Statements of kind '%s' are not supported.", string(stmt.NodeType()))
	}
}

// resolveTypeDecl forces a type declaration so that errors in its body
// are reported even when nothing refers to it.
func (c *Checker) resolveTypeDecl(name *ast.Identifier) {
	if name == nil {
		return
	}
	sym, ok := c.scope.LookupType(name.Name)
	if !ok {
		return
	}
	if d := sym.Decl(); d != nil {
		d.Body()
		return
	}
	sym.Type()
}

// checkBlock checks statements in a fresh block scope.
func (c *Checker) checkBlock(body []ast.Statement) {
	c.withScope(binding.ScopeBlock, func(scope *binding.Scope) {
		c.declareBlock(scope, body)
		c.checkStatements(body)
	})
}

func (c *Checker) declareBlock(scope *binding.Scope, body []ast.Statement) {
	for _, d := range passes.DeclareBlock(scope, body) {
		c.addDiagnostic(d)
	}
	c.bindScope(scope, body)
}

// Variables

func (c *Checker) checkVariableStatement(s *ast.VariableStatement) {
	for _, d := range s.Declarations {
		if d == nil {
			continue
		}
		if id, ok := d.Name.(*ast.Identifier); ok {
			c.checkDeclarator(s, d, id)
			continue
		}
		c.checkPatternDeclarator(s, d)
	}
}

func (c *Checker) checkDeclarator(s *ast.VariableStatement, d *ast.VariableDeclarator, id *ast.Identifier) {
	sym, ok := c.scope.Lookup(id.Name)
	if !ok || !declares(sym, id) {
		if d.Init != nil {
			c.checkExpr(d.Init, nil)
		}
		return
	}
	var declared types.Type
	if d.Type != nil {
		declared = c.declaredValueType(sym)
	}
	if d.Init == nil {
		if s.Kind == ast.VarKindConst && !s.Declare {
			c.report(id, diag.TypeMismatch, "'const' declarations must be initialized.")
		}
		if declared == nil && !sym.ValueResolved() {
			sym.SetValueType(types.Any)
		}
		return
	}
	t := c.checkExpr(d.Init, declared)
	if declared != nil {
		c.checkAssignableAt(t, declared, d.Init, spanned(id, d, s, d.Init))
	} else if !sym.ValueResolved() {
		sym.SetValueType(c.widenBinding(s.Kind, d.Init, t))
	}
	key := refKey{sym: sym}
	c.flow.invalidate(key)
	if fact, ok := c.assignmentFact(declared, t); ok {
		c.flow.set(key, fact)
	}
}

func (c *Checker) checkPatternDeclarator(s *ast.VariableStatement, d *ast.VariableDeclarator) {
	var declared types.Type
	if d.Type != nil {
		declared = c.typeFromNode(d.Type)
	}
	if d.Init != nil {
		t := c.checkExpr(d.Init, declared)
		if declared != nil {
			c.checkAssignable(t, declared, d.Init)
		} else if _, ok := c.sources[d]; !ok {
			c.sources[d] = t
		}
	} else if declared == nil {
		c.report(d.Name, diag.TypeMismatch, "A destructuring declaration must have an initializer.")
	}
	for _, id := range ast.BoundNames(d.Name) {
		if sym, ok := c.scope.Lookup(id.Name); ok && declares(sym, id) {
			sym.ValueType()
		}
	}
}

// Control flow

func (c *Checker) checkIf(s *ast.IfStatement) {
	c.checkExpr(s.Test, nil)
	entry := c.flow
	c.flow = c.narrowFrom(entry, s.Test, true)
	c.checkStatement(s.Consequent)
	thenFlow := c.flow
	c.flow = c.narrowFrom(entry, s.Test, false)
	if s.Alternate != nil {
		c.checkStatement(s.Alternate)
	}
	c.flow = c.join(thenFlow, c.flow)
}

func (c *Checker) checkReturn(s *ast.ReturnStatement) {
	fc := c.fn
	if fc == nil {
		c.report(s, diag.TypeMismatch, "A 'return' statement can only be used within a function body.")
		if s.Argument != nil {
			c.checkExpr(s.Argument, nil)
		}
		c.flow = unreachableFlow()
		return
	}
	target := c.returnTarget(fc)
	if s.Argument == nil {
		fc.voidReturns++
		if fc.declared != nil && !c.allowsImplicitReturn(fc.declared, fc.async) {
			c.report(s, diag.TypeMismatch, "Type 'undefined' is not assignable to type '%s'.", typeString(target))
		}
	} else {
		t := c.awaitedIf(fc.async, c.checkExpr(s.Argument, target))
		if fc.declared != nil {
			c.checkAssignable(t, target, s.Argument)
		}
		fc.returns = append(fc.returns, t)
	}
	c.flow = unreachableFlow()
}

func (c *Checker) pushLoop(isLoop bool) *loopContext {
	l := &loopContext{isLoop: isLoop}
	c.loops = append(c.loops, l)
	return l
}

func (c *Checker) popLoop() {
	c.loops = c.loops[:len(c.loops)-1]
}

// checkJump handles break and continue. A break carries the current state
// to the exit of the innermost loop or switch; a continue only ends the
// current path, since loop heads already forget what the body assigns.
func (c *Checker) checkJump(s ast.Statement, label *ast.Identifier, isBreak bool) {
	if label != nil {
		c.report(label, diag.UnsupportedConstruct, "Labeled jumps are not supported.")
		c.flow = unreachableFlow()
		return
	}
	var target *loopContext
	for i := len(c.loops) - 1; i >= 0; i-- {
		if isBreak || c.loops[i].isLoop {
			target = c.loops[i]
			break
		}
	}
	switch {
	case target == nil && isBreak:
		c.report(s, diag.TypeMismatch, "A 'break' statement can only be used within an enclosing iteration or switch statement.")
	case target == nil:
		c.report(s, diag.TypeMismatch, "A 'continue' statement can only be used within an enclosing iteration statement.")
	case isBreak:
		target.breaks = append(target.breaks, c.flow.clone())
	}
	c.flow = unreachableFlow()
}

func (c *Checker) checkWhile(s *ast.WhileStatement) {
	c.flow = c.forgetAssigned(c.flow, s)
	c.checkExpr(s.Test, nil)
	exit := c.narrowed(s.Test, false)
	c.flow = c.narrowed(s.Test, true)
	loop := c.pushLoop(true)
	c.checkStatement(s.Body)
	c.popLoop()
	c.flow = c.join(append([]*flowState{exit}, loop.breaks...)...)
}

func (c *Checker) checkDoWhile(s *ast.DoWhileStatement) {
	c.flow = c.forgetAssigned(c.flow, s)
	loop := c.pushLoop(true)
	c.checkStatement(s.Body)
	c.popLoop()
	if c.flow.unreachable && len(loop.breaks) == 0 {
		return
	}
	c.flow = c.forgetAssigned(c.flow, s)
	c.checkExpr(s.Test, nil)
	exit := c.narrowed(s.Test, false)
	c.flow = c.join(append([]*flowState{exit}, loop.breaks...)...)
}

func (c *Checker) checkFor(s *ast.ForStatement) {
	c.withScope(binding.ScopeBlock, func(scope *binding.Scope) {
		if s.Init != nil {
			c.declareBlock(scope, []ast.Statement{s.Init})
			c.checkStatement(s.Init)
		}
		c.flow = c.forgetAssigned(c.flow, s)
		exit := unreachableFlow()
		if s.Test != nil {
			c.checkExpr(s.Test, nil)
			exit = c.narrowed(s.Test, false)
			c.flow = c.narrowed(s.Test, true)
		}
		loop := c.pushLoop(true)
		c.checkStatement(s.Body)
		c.popLoop()
		if s.Update != nil {
			c.checkExpr(s.Update, nil)
		}
		c.flow = c.join(append([]*flowState{exit}, loop.breaks...)...)
	})
}

// iteratedType is the element type produced by iterating t: arrays,
// tuples, strings, sets and maps.
func (c *Checker) iteratedType(t types.Type) (types.Type, bool) {
	if types.IsAnyLike(t) {
		return t, true
	}
	var parts []types.Type
	for _, m := range types.Members(t) {
		m = types.Deref(m)
		switch x := m.(type) {
		case *types.Array, *types.Tuple:
			parts = append(parts, c.in.ElementType(x))
			continue
		case *types.Ref:
			if elem, ok := c.collectionElement(x); ok {
				parts = append(parts, elem)
				continue
			}
		case *types.TypeParam:
			if x.Constraint != nil {
				if elem, ok := c.iteratedType(x.Constraint); ok {
					parts = append(parts, elem)
					continue
				}
			}
		}
		if stringLike(m) {
			parts = append(parts, types.String)
			continue
		}
		if m == types.Type(types.Never) {
			continue
		}
		return nil, false
	}
	return c.in.Union(parts...), true
}

func (c *Checker) collectionElement(r *types.Ref) (types.Type, bool) {
	if d, ok := c.env.Decl("Set"); ok && r.Decl == d && len(r.Args) == 1 {
		return r.Args[0], true
	}
	if d, ok := c.env.Decl("Map"); ok && r.Decl == d && len(r.Args) == 2 {
		return c.in.TupleOf(r.Args[0], r.Args[1]), true
	}
	for _, name := range []string{"Array", "ReadonlyArray"} {
		if d, ok := c.env.Decl(name); ok && r.Decl == d && len(r.Args) == 1 {
			return r.Args[0], true
		}
	}
	return nil, false
}

func declKind(kind ast.VarKind) binding.DeclKind {
	switch kind {
	case ast.VarKindConst:
		return binding.DeclConst
	case ast.VarKindLet:
		return binding.DeclLet
	}
	return binding.DeclVar
}

// bindLoopVariable binds the iteration variable of a for-of or for-in loop
// to elem. Declared bindings live in scope; `var` bindings were hoisted to
// the function and bare targets are assigned.
func (c *Checker) bindLoopVariable(scope *binding.Scope, kind ast.VarKind, name ast.BindingName, node ast.Node, elem types.Type) {
	if kind == "" {
		if target, ok := name.(ast.Expression); ok {
			declared := c.writable(target)
			if declared != nil {
				c.checkAssignable(elem, declared, target)
			}
			c.narrowAssigned(target, declared, elem)
		}
		return
	}
	var syms []*binding.Symbol
	if kind == ast.VarKindVar {
		for _, id := range ast.BoundNames(name) {
			if sym, ok := scope.Lookup(id.Name); ok {
				syms = append(syms, sym)
			}
		}
	} else {
		declared, diags := passes.DeclareBinding(scope, name, declKind(kind), node)
		for _, d := range diags {
			c.addDiagnostic(d)
		}
		syms = declared
	}
	found := make(map[*ast.Identifier]types.Type)
	if id, ok := name.(*ast.Identifier); ok {
		found[id] = elem
	} else {
		c.patternTypes(name, elem, found)
	}
	for id, t := range found {
		for _, sym := range syms {
			if sym.Name == id.Name && !sym.ValueResolved() {
				sym.SetValueType(t)
			}
		}
	}
}

func (c *Checker) checkForOf(s *ast.ForOfStatement) {
	iter := c.checkExpr(s.Iterable, nil)
	elem, ok := c.iteratedType(iter)
	if !ok {
		c.report(s.Iterable, diag.TypeMismatch, "Type '%s' is not an array type or a string type.", typeString(iter))
		elem = types.Fallback
	}
	if s.Await {
		elem = c.env.Awaited(elem)
	}
	c.withScope(binding.ScopeBlock, func(scope *binding.Scope) {
		c.flow = c.forgetAssigned(c.flow, s)
		entry := c.flow.clone()
		c.bindLoopVariable(scope, s.Kind, s.Binding, s, elem)
		loop := c.pushLoop(true)
		c.checkStatement(s.Body)
		c.popLoop()
		c.flow = c.join(append([]*flowState{entry}, loop.breaks...)...)
	})
}

func (c *Checker) checkForIn(s *ast.ForInStatement) {
	obj := c.checkExpr(s.Object, nil)
	if !types.IsAnyLike(obj) && c.every(obj, types.IsPrimitive) {
		c.report(s.Object, diag.TypeMismatch, "The right-hand side of a 'for...in' statement must be of type 'any', an object type or a type parameter, but here has type '%s'.", typeString(obj))
	}
	c.withScope(binding.ScopeBlock, func(scope *binding.Scope) {
		c.flow = c.forgetAssigned(c.flow, s)
		entry := c.flow.clone()
		c.bindLoopVariable(scope, s.Kind, s.Binding, s, types.String)
		loop := c.pushLoop(true)
		c.checkStatement(s.Body)
		c.popLoop()
		c.flow = c.join(append([]*flowState{entry}, loop.breaks...)...)
	})
}

func (c *Checker) checkTry(s *ast.TryStatement) {
	entry := c.flow
	if s.Block != nil {
		c.checkBlock(s.Block.Body)
	}
	out := []*flowState{c.flow}
	// The handler and finalizer may run after any prefix of the block.
	reentry := c.forgetAssigned(entry, s.Block)
	if s.Handler != nil {
		c.flow = reentry.clone()
		c.withScope(binding.ScopeBlock, func(scope *binding.Scope) {
			if s.CatchParam != nil {
				var t types.Type = types.Unknown
				if s.CatchType != nil {
					t = c.typeFromNode(s.CatchType)
					if t != types.Type(types.Unknown) && !types.IsAnyLike(t) {
						c.report(s.CatchType, diag.TypeMismatch, "Catch clause variable type annotation must be 'any' or 'unknown' if specified.")
						t = types.Unknown
					}
				}
				c.bindLoopVariable(scope, ast.VarKindLet, s.CatchParam, s, t)
			}
			c.declareBlock(scope, s.Handler.Body)
			c.checkStatements(s.Handler.Body)
		})
		out[0] = c.join(out[0], c.flow)
	}
	if s.Finalizer != nil {
		c.flow = c.forgetAssigned(reentry, s.Handler)
		c.checkBlock(s.Finalizer.Body)
		if c.flow.unreachable {
			return
		}
	}
	c.flow = out[0]
}

func (c *Checker) checkSwitch(s *ast.SwitchStatement) {
	disc := c.checkExpr(s.Discriminant, nil)
	c.withScope(binding.ScopeBlock, func(scope *binding.Scope) {
		var body []ast.Statement
		for _, cs := range s.Cases {
			if cs != nil {
				body = append(body, cs.Body...)
			}
		}
		c.declareBlock(scope, body)

		remaining := c.flow
		fall := unreachableFlow()
		hasDefault := false
		loop := c.pushLoop(false)
		for _, cs := range s.Cases {
			if cs == nil {
				continue
			}
			var enter *flowState
			if cs.Test == nil {
				hasDefault = true
				enter = remaining.clone()
			} else {
				c.flow = remaining
				tt := c.checkExpr(cs.Test, nil)
				if !c.comparable(disc, tt) {
					c.report(cs.Test, diag.TypeMismatch, "Type '%s' is not comparable to type '%s'.", c.sourceString(tt, disc), typeString(disc))
				}
				cond := ast.NewBinaryExpression("===", s.Discriminant, cs.Test)
				enter = c.narrowFrom(remaining, cond, true)
				remaining = c.narrowFrom(remaining, cond, false)
			}
			c.flow = c.join(enter, fall)
			c.checkStatements(cs.Body)
			fall = c.flow
		}
		c.popLoop()
		exits := append([]*flowState{fall}, loop.breaks...)
		if !hasDefault && !c.exhausted(remaining, s.Discriminant) {
			exits = append(exits, remaining)
		}
		c.flow = c.join(exits...)
	})
}

// exhausted reports whether no value of the discriminant is left once
// every case has been ruled out.
func (c *Checker) exhausted(f *flowState, disc ast.Expression) bool {
	if f.unreachable {
		return true
	}
	target := disc
	if operand, ok := typeofOperand(disc); ok {
		target = operand
	}
	if _, ok := c.referenceKey(target); !ok {
		return false
	}
	return c.typeIn(f, target) == types.Type(types.Never)
}
