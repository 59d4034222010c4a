package checker

import (
	"strings"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/types"
)

// checkExpr computes the type of expr and records it. ctx is the
// contextual type the expression is checked against, or nil.
func (c *Checker) checkExpr(expr ast.Expression, ctx types.Type) types.Type {
	if expr == nil {
		return types.Fallback
	}
	return c.record(expr, c.expr(expr, ctx))
}

func (c *Checker) expr(expr ast.Expression, ctx types.Type) types.Type {
	switch e := expr.(type) {
	case *ast.Identifier:
		return c.checkIdentifier(e)
	case *ast.StringLiteral:
		return c.in.StringLit(e.Value)
	case *ast.NumericLiteral:
		return c.in.NumberLit(e.Value)
	case *ast.BigIntLiteral:
		return c.in.BigIntLit(e.Value)
	case *ast.BooleanLiteral:
		return c.in.BoolLit(e.Value)
	case *ast.NullLiteral:
		return types.Null
	case *ast.TemplateLiteral:
		for _, x := range e.Expressions {
			c.checkExpr(x, nil)
		}
		return types.String
	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(e, ctx)
	case *ast.ObjectLiteral:
		return c.checkObjectLiteral(e, ctx)
	case *ast.FunctionExpression:
		return c.checkFunctionExpression(e, ctx)
	case *ast.CallExpression:
		return c.checkCall(e)
	case *ast.NewExpression:
		return c.checkNew(e)
	case *ast.MemberExpression:
		return c.checkMember(e)
	case *ast.ElementAccessExpression:
		return c.checkElementAccess(e)
	case *ast.UnaryExpression:
		return c.checkUnary(e)
	case *ast.UpdateExpression:
		return c.checkUpdate(e)
	case *ast.BinaryExpression:
		return c.checkBinary(e, ctx)
	case *ast.AssignmentExpression:
		return c.checkAssignment(e)
	case *ast.ConditionalExpression:
		return c.checkConditional(e, ctx)
	case *ast.AsExpression:
		return c.checkAs(e)
	case *ast.NonNullExpression:
		return c.in.RemoveNullish(c.checkExpr(e.Expression, ctx))
	case *ast.AwaitExpression:
		return c.env.Awaited(c.checkExpr(e.Argument, nil))
	case *ast.ThisExpression:
		if c.thisType != nil {
			return c.thisType
		}
		return types.Fallback
	case *ast.SpreadElement:
		c.checkExpr(e.Argument, nil)
		c.report(e, diag.UnsupportedConstruct, "Spread elements are only allowed in array literals and argument lists.")
		return types.Fallback
	}
	c.report(expr, diag.UnsupportedConstruct, "Expressions of kind '%s' are not supported.", string(expr.NodeType()))
	return types.Fallback
}

func (c *Checker) checkIdentifier(e *ast.Identifier) types.Type {
	sym, ok := c.scope.LookupValue(e.Name)
	if !ok {
		switch {
		case e.Name == "super" && c.thisType != nil:
			return types.Any
		case c.hasType(e.Name):
			c.report(e, diag.UnresolvedSymbol, "'%s' only refers to a type, but is being used as a value here.", e.Name)
		default:
			c.report(e, diag.UnresolvedSymbol, "Cannot find name '%s'.", e.Name)
		}
		return types.Fallback
	}
	if sym.Is(binding.DeclImport) && sym.Has(binding.FlagTypeOnly) {
		c.report(e, diag.TypeMismatch, "'%s' cannot be used as a value because it was imported using 'import type'.", e.Name)
		return types.Fallback
	}
	return c.referenceType(sym)
}

func (c *Checker) hasType(name string) bool {
	_, ok := c.scope.LookupType(name)
	return ok
}

// Literals

func (c *Checker) checkArrayLiteral(e *ast.ArrayLiteral, ctx types.Type) types.Type {
	tuple := tupleContext(ctx)
	if c.constDepth > 0 || tuple != nil {
		elems := make([]types.TupleElem, 0, len(e.Elements))
		for i, el := range e.Elements {
			if sp, ok := el.(*ast.SpreadElement); ok {
				st := c.record(sp, c.checkExpr(sp.Argument, nil))
				if tup, ok := types.Deref(st).(*types.Tuple); ok {
					elems = append(elems, tup.Elems...)
					continue
				}
				elems = append(elems, types.TupleElem{Type: c.in.Array(c.spreadElement(sp, st)), Rest: true})
				continue
			}
			var ectx types.Type
			if tuple != nil {
				ectx = c.tupleElementAt(tuple, i)
			}
			elems = append(elems, types.TupleElem{Type: c.checkExpr(el, ectx)})
		}
		return c.in.Tuple(elems, c.constDepth > 0)
	}
	ectx := c.elementContext(ctx)
	parts := make([]types.Type, 0, len(e.Elements))
	for _, el := range e.Elements {
		if sp, ok := el.(*ast.SpreadElement); ok {
			st := c.record(sp, c.checkExpr(sp.Argument, nil))
			parts = append(parts, c.spreadElement(sp, st))
			continue
		}
		parts = append(parts, c.checkExpr(el, ectx))
	}
	if len(parts) == 0 {
		if ectx != nil {
			return c.in.Array(ectx)
		}
		return c.in.Array(types.Any)
	}
	return c.in.Array(c.in.Union(parts...))
}

func tupleContext(ctx types.Type) *types.Tuple {
	if ctx == nil {
		return nil
	}
	for _, m := range types.Members(ctx) {
		if tup, ok := types.Deref(m).(*types.Tuple); ok {
			return tup
		}
	}
	return nil
}

func (c *Checker) tupleElementAt(tup *types.Tuple, i int) types.Type {
	if i < len(tup.Elems) {
		e := tup.Elems[i]
		if e.Rest {
			return c.in.ElementType(e.Type)
		}
		return e.Type
	}
	if tup.HasRest() {
		return c.in.ElementType(tup.Elems[len(tup.Elems)-1].Type)
	}
	return nil
}

// elementContext is the contextual element type of an array literal.
func (c *Checker) elementContext(ctx types.Type) types.Type {
	if ctx == nil {
		return nil
	}
	if types.IsAnyLike(ctx) {
		return types.Any
	}
	var parts []types.Type
	for _, m := range types.Members(ctx) {
		switch x := types.Deref(m).(type) {
		case *types.Array:
			parts = append(parts, x.Elem)
		case *types.Tuple:
			parts = append(parts, c.in.ElementType(x))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return c.in.Union(parts...)
}

// spreadElement is the element type contributed by `...x`.
func (c *Checker) spreadElement(sp *ast.SpreadElement, st types.Type) types.Type {
	if types.IsAnyLike(st) {
		return st
	}
	elem, ok := c.iteratedType(st)
	if !ok {
		c.report(sp.Argument, diag.TypeMismatch, "Type '%s' is not an array type.", typeString(st))
		return types.Fallback
	}
	return elem
}

func (c *Checker) checkObjectLiteral(e *ast.ObjectLiteral, ctx types.Type) types.Type {
	var props []types.Property
	var computed []types.Type
	readonly := c.constDepth > 0
	spreadAny := false
	for _, m := range e.Properties {
		switch p := m.(type) {
		case *ast.PropertyAssignment:
			name := p.Name
			if p.Computed != nil {
				kt := c.checkExpr(p.Computed, nil)
				lit, ok := types.Deref(kt).(*types.Literal)
				if !ok || (lit.LitKind != types.LitString && lit.LitKind != types.LitNumber) {
					computed = append(computed, c.checkExpr(p.Value, nil))
					continue
				}
				name = literalText(lit)
			}
			value := p.Value
			if value == nil && p.Shorthand {
				value = ast.NewIdentifier(name)
			}
			vt := c.checkExpr(value, c.contextualProperty(ctx, name))
			props = append(props, types.Property{Name: name, Type: vt, Readonly: readonly})
		case *ast.ObjectMethod:
			sig := c.checkObjectMethod(p, ctx)
			props = append(props, types.Property{Name: p.Name, Type: c.in.Function(sig), Method: true, Readonly: readonly})
		case *ast.SpreadAssignment:
			st := c.checkExpr(p.Argument, nil)
			if types.IsAnyLike(st) {
				spreadAny = true
				continue
			}
			base := c.in.RemoveNullish(st)
			if base == types.Type(types.Never) {
				continue
			}
			if c.every(base, types.IsPrimitive) {
				c.report(p.Argument, diag.TypeMismatch, "Spread types may only be created from object types.")
				continue
			}
			for _, sp := range c.in.Properties(base) {
				props = append(props, types.Property{Name: sp.Name, Type: sp.Type, Optional: sp.Optional, Readonly: readonly})
			}
		}
	}
	if spreadAny {
		return types.Any
	}
	shape := types.ObjectShape{Props: props}
	if len(computed) > 0 {
		shape.Index = []types.IndexInfo{{Key: types.String, Type: c.in.Union(computed...)}}
	}
	return c.in.Object(shape)
}

func (c *Checker) checkObjectMethod(m *ast.ObjectMethod, ctx types.Type) *types.Signature {
	contextual := c.contextualSignature(c.contextualProperty(ctx, m.Name))
	saved := c.thisType
	c.thisType = types.Any
	f := exprParts(m.Function)
	f.method = true
	sig := c.checkFunction(f, contextual)
	c.thisType = saved
	c.record(m.Function, c.in.Function(sig))
	return sig
}

// contextualProperty is the contextual type of property name of an object
// literal checked against ctx.
func (c *Checker) contextualProperty(ctx types.Type, name string) types.Type {
	if ctx == nil {
		return nil
	}
	if types.IsAnyLike(ctx) {
		return types.Any
	}
	var parts []types.Type
	for _, m := range types.Members(ctx) {
		if isNullish(m) {
			continue
		}
		if p, ok := c.in.AccessProperty(m, name); ok {
			parts = append(parts, p.Type)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return c.in.Union(parts...)
}

func isNullish(t types.Type) bool {
	switch types.Deref(t) {
	case types.Type(types.Null), types.Type(types.Undefined), types.Type(types.Void):
		return true
	}
	return false
}

// Member access

// inOptionalChain reports whether expr continues a chain started by `?.`.
func inOptionalChain(expr ast.Expression) bool {
	for expr != nil {
		switch e := expr.(type) {
		case *ast.MemberExpression:
			if e.Optional {
				return true
			}
			expr = e.Object
		case *ast.ElementAccessExpression:
			if e.Optional {
				return true
			}
			expr = e.Object
		case *ast.CallExpression:
			if e.Optional {
				return true
			}
			expr = e.Callee
		case *ast.NonNullExpression:
			expr = e.Expression
		default:
			return false
		}
	}
	return false
}

func (c *Checker) checkMember(e *ast.MemberExpression) types.Type {
	obj := c.checkExpr(e.Object, nil)
	if e.Property == nil {
		return types.Fallback
	}
	if key, ok := c.referenceKey(e); ok {
		if t, ok := c.flow.lookup(key); ok {
			return t
		}
	}
	return c.propertyAccess(e, obj, e.Property.Name, e.Optional || inOptionalChain(e.Object))
}

// receiver strips null and undefined from the object of an access,
// reporting them unless the access is part of an optional chain. ok is
// false when the access can not proceed.
func (c *Checker) receiver(object ast.Node, obj types.Type, optional bool) (base types.Type, nullable, ok bool) {
	if types.Deref(obj) == types.Type(types.Unknown) {
		c.report(object, diag.TypeMismatch, "Object is of type 'unknown'.")
		return nil, false, false
	}
	if !c.in.StrictNullChecks() {
		return obj, false, true
	}
	var hasNull, hasUndefined bool
	for _, m := range types.Members(obj) {
		switch types.Deref(m) {
		case types.Type(types.Null):
			hasNull = true
		case types.Type(types.Undefined), types.Type(types.Void):
			hasUndefined = true
		}
	}
	if !hasNull && !hasUndefined {
		return obj, false, true
	}
	base = c.in.RemoveNullish(obj)
	if !optional {
		switch {
		case hasNull && hasUndefined:
			c.report(object, diag.TypeMismatch, "Object is possibly 'null' or 'undefined'.")
		case hasNull:
			c.report(object, diag.TypeMismatch, "Object is possibly 'null'.")
		default:
			c.report(object, diag.TypeMismatch, "Object is possibly 'undefined'.")
		}
	}
	if base == types.Type(types.Never) {
		return nil, true, false
	}
	return base, true, true
}

func (c *Checker) propertyAccess(e *ast.MemberExpression, obj types.Type, name string, optional bool) types.Type {
	if types.IsAnyLike(obj) {
		return anyOf(obj)
	}
	if types.IsUnresolvedLazy(obj) {
		return types.Any
	}
	if r, ok := types.Deref(obj).(*types.Ref); ok && r.Decl.Resolving() && !r.Decl.Resolved() {
		return types.Fallback
	}
	base, nullable, ok := c.receiver(e.Object, obj, optional)
	if !ok {
		return types.Fallback
	}
	p, ok := c.in.AccessProperty(base, name)
	if !ok {
		c.report(e.Property, diag.PropertyMissing, "Property '%s' does not exist on type '%s'.", name, typeString(base))
		return types.Fallback
	}
	t := c.propertyType(p)
	if nullable {
		t = c.in.Optional(t)
	}
	return t
}

// anyOf keeps the fallback type sticky so that accesses on it stay quiet.
func anyOf(t types.Type) types.Type {
	if types.IsFallback(t) {
		return types.Fallback
	}
	return types.Any
}

func (c *Checker) checkElementAccess(e *ast.ElementAccessExpression) types.Type {
	obj := c.checkExpr(e.Object, nil)
	idx := c.checkExpr(e.Index, nil)
	if types.IsAnyLike(obj) {
		return anyOf(obj)
	}
	if types.IsUnresolvedLazy(obj) {
		return types.Any
	}
	base, nullable, ok := c.receiver(e.Object, obj, e.Optional || inOptionalChain(e.Object))
	if !ok {
		return types.Fallback
	}
	t := c.indexAccess(e, base, idx)
	if nullable {
		t = c.in.Optional(t)
	}
	return t
}

func (c *Checker) indexAccess(e *ast.ElementAccessExpression, base, idx types.Type) types.Type {
	if types.IsAnyLike(idx) {
		if info, ok := c.in.IndexInfoOf(base, types.String); ok {
			return info.Type
		}
		return anyOf(idx)
	}
	if c.in.IsGeneric(idx) || c.in.IsGeneric(base) {
		return c.in.Indexed(base, idx)
	}
	var parts []types.Type
	for _, k := range types.Members(idx) {
		t, ok := c.indexOne(e, base, k)
		if !ok {
			return types.Fallback
		}
		parts = append(parts, t)
	}
	return c.in.Union(parts...)
}

func (c *Checker) indexOne(e *ast.ElementAccessExpression, base, key types.Type) (types.Type, bool) {
	var lit *types.Literal
	switch k := types.Deref(key).(type) {
	case *types.Literal:
		lit = k
	case *types.EnumMember:
		lit = k.Value
	}
	if lit != nil && (lit.LitKind == types.LitString || lit.LitKind == types.LitNumber) {
		name := literalText(lit)
		if p, ok := c.in.AccessProperty(base, name); ok {
			return c.propertyType(p), true
		}
		if tup, ok := types.Deref(base).(*types.Tuple); ok && lit.LitKind == types.LitNumber && !tup.HasRest() {
			c.report(e.Index, diag.TypeMismatch, "Tuple type '%s' of length '%s' has no element at index '%s'.",
				typeString(tup), literalText(c.in.NumberLit(float64(len(tup.Elems)))), name)
			return nil, false
		}
		return c.implicitIndex(e, base, key)
	}
	kind := c.indexKeyKind(key)
	if kind == nil {
		c.report(e.Index, diag.TypeMismatch, "Type '%s' cannot be used as an index type.", typeString(key))
		return nil, false
	}
	if info, ok := c.in.IndexInfoOf(base, kind); ok {
		return info.Type, true
	}
	return c.implicitIndex(e, base, key)
}

func (c *Checker) implicitIndex(e *ast.ElementAccessExpression, base, key types.Type) (types.Type, bool) {
	if !c.noImplicitAny {
		return types.Any, true
	}
	c.report(e, diag.ImplicitAny, "Element implicitly has an 'any' type because expression of type '%s' can't be used to index type '%s'.", typeString(key), typeString(base))
	return nil, false
}

// indexKeyKind maps an index expression type to the index signature key it
// selects, or nil when the type can not index anything.
func (c *Checker) indexKeyKind(key types.Type) types.Type {
	switch {
	case c.every(key, numberLike):
		return types.Number
	case c.every(key, stringLike), c.every(key, func(t types.Type) bool { return t == types.Type(types.Symbol) }):
		return types.String
	}
	return nil
}

// Operators

func numberLike(t types.Type) bool {
	switch x := types.Deref(t).(type) {
	case *types.Literal:
		return x.LitKind == types.LitNumber
	case *types.EnumMember:
		return x.Value != nil && x.Value.LitKind == types.LitNumber
	}
	return types.Deref(t) == types.Type(types.Number)
}

func stringLike(t types.Type) bool {
	switch x := types.Deref(t).(type) {
	case *types.Literal:
		return x.LitKind == types.LitString
	case *types.EnumMember:
		return x.Value != nil && x.Value.LitKind == types.LitString
	}
	return types.Deref(t) == types.Type(types.String)
}

func bigintLike(t types.Type) bool {
	if x, ok := types.Deref(t).(*types.Literal); ok {
		return x.LitKind == types.LitBigInt
	}
	return types.Deref(t) == types.Type(types.BigInt)
}

// every reports whether pred holds for every member of t. Type parameters
// are judged by their constraint.
func (c *Checker) every(t types.Type, pred func(types.Type) bool) bool {
	for _, m := range types.Members(t) {
		m = types.Deref(m)
		if tp, ok := m.(*types.TypeParam); ok {
			if tp.Constraint == nil || !c.every(tp.Constraint, pred) {
				return false
			}
			continue
		}
		if m == types.Type(types.Never) {
			continue
		}
		if !pred(m) {
			return false
		}
	}
	return true
}

func (c *Checker) arithmeticOperand(t types.Type) bool {
	return types.IsAnyLike(t) || c.every(t, func(m types.Type) bool { return numberLike(m) || bigintLike(m) })
}

func (c *Checker) typeofResult() types.Type {
	tags := []string{"string", "number", "bigint", "boolean", "symbol", "undefined", "object", "function"}
	lits := make([]types.Type, len(tags))
	for i, tag := range tags {
		lits[i] = c.in.StringLit(tag)
	}
	return c.in.Union(lits...)
}

func (c *Checker) checkUnary(e *ast.UnaryExpression) types.Type {
	switch e.Operator {
	case "typeof":
		c.checkExpr(e.Operand, nil)
		return c.typeofResult()
	case "!":
		c.checkExpr(e.Operand, nil)
		return types.Boolean
	case "void":
		c.checkExpr(e.Operand, nil)
		return types.Undefined
	case "delete":
		c.checkExpr(e.Operand, nil)
		switch e.Operand.(type) {
		case *ast.MemberExpression, *ast.ElementAccessExpression:
		default:
			c.report(e.Operand, diag.TypeMismatch, "The operand of a 'delete' operator must be a property reference.")
		}
		return types.Boolean
	case "+":
		c.checkExpr(e.Operand, nil)
		return types.Number
	case "-", "~":
		t := c.checkExpr(e.Operand, nil)
		if lit, ok := types.Deref(t).(*types.Literal); ok && e.Operator == "-" {
			switch lit.LitKind {
			case types.LitNumber:
				return c.in.NumberLit(-lit.Num)
			case types.LitBigInt:
				return c.in.BigIntLit("-" + lit.Str)
			}
		}
		if !c.arithmeticOperand(t) {
			c.report(e.Operand, diag.TypeMismatch, "An arithmetic operand must be of type 'any', 'number', 'bigint' or an enum type.")
			return types.Number
		}
		if !types.IsAnyLike(t) && c.every(t, bigintLike) {
			return types.BigInt
		}
		return types.Number
	}
	c.checkExpr(e.Operand, nil)
	c.report(e, diag.UnsupportedConstruct, "Unary operator '%s' is not supported.", e.Operator)
	return types.Fallback
}

func (c *Checker) checkUpdate(e *ast.UpdateExpression) types.Type {
	declared := c.writable(e.Operand)
	if declared == nil {
		return types.Number
	}
	if !c.arithmeticOperand(declared) {
		c.report(e.Operand, diag.TypeMismatch, "An arithmetic operand must be of type 'any', 'number', 'bigint' or an enum type.")
	}
	if key, ok := c.referenceKey(e.Operand); ok {
		c.flow.invalidate(key)
	}
	if !types.IsAnyLike(declared) && c.every(declared, bigintLike) {
		return types.BigInt
	}
	return types.Number
}

func (c *Checker) checkBinary(e *ast.BinaryExpression, ctx types.Type) types.Type {
	switch e.Operator {
	case "&&", "||", "??":
		return c.checkLogical(e.Operator, e.Left, e.Right, ctx)
	case ",":
		c.checkExpr(e.Left, nil)
		return c.checkExpr(e.Right, ctx)
	}
	lt := c.checkExpr(e.Left, nil)
	rt := c.checkExpr(e.Right, nil)
	switch e.Operator {
	case "===", "!==", "==", "!=":
		if !c.comparable(lt, rt) {
			c.report(e, diag.TypeMismatch, "This comparison appears to be unintentional because the types '%s' and '%s' have no overlap.",
				c.sourceString(lt, rt), c.sourceString(rt, lt))
		}
		return types.Boolean
	case "<", ">", "<=", ">=":
		if !c.orderable(lt, rt) {
			c.report(e, diag.TypeMismatch, "Operator '%s' cannot be applied to types '%s' and '%s'.", e.Operator, typeString(lt), typeString(rt))
		}
		return types.Boolean
	case "in":
		keyLike := func(t types.Type) bool {
			return stringLike(t) || numberLike(t) || t == types.Type(types.Symbol)
		}
		if !types.IsAnyLike(lt) && !c.every(lt, keyLike) {
			c.report(e.Left, diag.TypeMismatch, "The left-hand side of an 'in' expression must be a private identifier or of type 'any', 'string', 'number', or 'symbol'.")
		}
		if !types.IsAnyLike(rt) && c.every(rt, types.IsPrimitive) {
			c.report(e.Right, diag.TypeMismatch, "The right-hand side of an 'in' expression must not be a primitive.")
		}
		return types.Boolean
	case "instanceof":
		if !types.IsAnyLike(lt) && c.every(lt, types.IsPrimitive) {
			c.report(e.Left, diag.TypeMismatch, "The left-hand side of an 'instanceof' expression must be of type 'any', an object type or a type parameter.")
		}
		if !types.IsAnyLike(rt) && len(c.in.Signatures(rt, true)) == 0 && len(c.in.Signatures(rt, false)) == 0 {
			c.report(e.Right, diag.TypeMismatch, "The right-hand side of an 'instanceof' expression must be either of type 'any', a class, function, or other type assignable to the 'Function' interface type.")
		}
		return types.Boolean
	}
	return c.arithmetic(e.Operator, lt, rt, e, e.Left, e.Right)
}

// comparable reports whether an equality test between the two types can
// ever succeed.
func (c *Checker) comparable(a, b types.Type) bool {
	if types.IsAnyLike(a) || types.IsAnyLike(b) {
		return true
	}
	if c.every(a, isNullish) || c.every(b, isNullish) {
		return true
	}
	return c.in.IsComparable(a, b) || c.in.IsComparable(b, a)
}

func (c *Checker) orderable(a, b types.Type) bool {
	if types.IsAnyLike(a) || types.IsAnyLike(b) {
		return true
	}
	numeric := func(t types.Type) bool { return numberLike(t) || bigintLike(t) }
	if c.every(a, numeric) && c.every(b, numeric) {
		return true
	}
	if c.every(a, stringLike) && c.every(b, stringLike) {
		return true
	}
	return c.comparable(a, b)
}

// arithmetic types a binary arithmetic or bitwise operation. It also
// serves compound assignments, where node is the whole assignment.
func (c *Checker) arithmetic(op string, lt, rt types.Type, node, left, right ast.Node) types.Type {
	if op == "+" {
		switch {
		case c.every(lt, stringLike) && !types.IsAnyLike(lt), c.every(rt, stringLike) && !types.IsAnyLike(rt):
			return types.String
		case types.IsAnyLike(lt) || types.IsAnyLike(rt):
			return types.Any
		case c.every(lt, numberLike) && c.every(rt, numberLike):
			return types.Number
		case c.every(lt, bigintLike) && c.every(rt, bigintLike):
			return types.BigInt
		}
		c.report(node, diag.TypeMismatch, "Operator '+' cannot be applied to types '%s' and '%s'.", typeString(lt), typeString(rt))
		return types.Fallback
	}
	ok := true
	if !c.arithmeticOperand(lt) {
		c.report(left, diag.TypeMismatch, "The left-hand side of an arithmetic operation must be of type 'any', 'number', 'bigint' or an enum type.")
		ok = false
	}
	if !c.arithmeticOperand(rt) {
		c.report(right, diag.TypeMismatch, "The right-hand side of an arithmetic operation must be of type 'any', 'number', 'bigint' or an enum type.")
		ok = false
	}
	if ok && !types.IsAnyLike(lt) && !types.IsAnyLike(rt) && c.every(lt, bigintLike) && c.every(rt, bigintLike) {
		return types.BigInt
	}
	return types.Number
}

func (c *Checker) checkLogical(op string, left, right ast.Expression, ctx types.Type) types.Type {
	lt := c.checkExpr(left, ctx)
	entry := c.flow
	var short *flowState
	switch op {
	case "&&":
		c.flow = c.narrowFrom(entry, left, true)
		short = c.narrowFrom(entry, left, false)
	case "||":
		c.flow = c.narrowFrom(entry, left, false)
		short = c.narrowFrom(entry, left, true)
	default:
		c.flow = entry.clone()
		short = entry
	}
	rctx := ctx
	if rctx == nil && op != "&&" {
		rctx = lt
	}
	rt := c.checkExpr(right, rctx)
	c.flow = c.join(short, c.flow)
	if types.IsAnyLike(lt) {
		return anyOf(lt)
	}
	switch op {
	case "&&":
		return c.in.Union(c.in.NarrowTruthy(lt, false), rt)
	case "||":
		return c.in.Union(c.in.NarrowTruthy(lt, true), rt)
	}
	return c.in.Union(c.in.RemoveNullish(lt), rt)
}

func (c *Checker) checkConditional(e *ast.ConditionalExpression, ctx types.Type) types.Type {
	c.checkExpr(e.Test, nil)
	entry := c.flow
	c.flow = c.narrowFrom(entry, e.Test, true)
	ct := c.checkExpr(e.Consequent, ctx)
	thenFlow := c.flow
	c.flow = c.narrowFrom(entry, e.Test, false)
	at := c.checkExpr(e.Alternate, ctx)
	c.flow = c.join(thenFlow, c.flow)
	return c.in.Union(ct, at)
}

func (c *Checker) checkAs(e *ast.AsExpression) types.Type {
	if ref, ok := e.Type.(*ast.TypeReference); e.Const || (ok && ref.Name == "const") {
		c.constDepth++
		t := c.checkExpr(e.Expression, nil)
		c.constDepth--
		return t
	}
	target := c.typeFromNode(e.Type)
	source := c.checkExpr(e.Expression, target)
	if target == nil || types.IsAnyLike(source) || types.IsAnyLike(target) {
		return target
	}
	wide := c.in.WidenLiteral(source)
	if !c.in.IsComparable(wide, target) && !c.in.IsComparable(target, wide) {
		c.report(e, diag.NonOverlappingTypeCast,
			"Conversion of type '%s' to type '%s' may be a mistake because neither type sufficiently overlaps with the other. If this was intentional, convert the expression to 'unknown' first.",
			typeString(wide), typeString(target))
	}
	return target
}

// Assignment

func (c *Checker) checkAssignment(e *ast.AssignmentExpression) types.Type {
	switch target := e.Target.(type) {
	case *ast.ArrayLiteral, *ast.ObjectLiteral:
		vt := c.checkExpr(e.Value, nil)
		c.assignPattern(target, vt)
		return vt
	}
	switch e.Operator {
	case "=":
		declared := c.writable(e.Target)
		vt := c.checkExpr(e.Value, declared)
		if declared != nil {
			c.checkAssignableAt(vt, declared, e.Value, spanned(e, e.Target, e.Value))
		}
		c.narrowAssigned(e.Target, declared, vt)
		return vt
	case "&&=", "||=", "??=":
		declared := c.writable(e.Target)
		cur := c.currentType(e.Target, declared)
		vt := c.checkExpr(e.Value, declared)
		if declared != nil {
			c.checkAssignable(vt, declared, e.Value)
		}
		var result types.Type
		switch e.Operator {
		case "&&=":
			result = c.in.Union(c.in.NarrowTruthy(cur, false), vt)
		case "||=":
			result = c.in.Union(c.in.NarrowTruthy(cur, true), vt)
		default:
			result = c.in.Union(c.in.RemoveNullish(cur), vt)
		}
		c.narrowAssigned(e.Target, declared, result)
		return result
	}
	op := strings.TrimSuffix(e.Operator, "=")
	declared := c.writable(e.Target)
	cur := c.currentType(e.Target, declared)
	vt := c.checkExpr(e.Value, nil)
	result := c.arithmetic(op, cur, vt, e, e.Target, e.Value)
	if declared != nil && !types.IsFallback(result) {
		c.checkAssignable(result, declared, e)
	}
	c.narrowAssigned(e.Target, declared, result)
	return result
}

// currentType is the narrowed type of an assignment target before the
// assignment.
func (c *Checker) currentType(target ast.Expression, declared types.Type) types.Type {
	if key, ok := c.referenceKey(target); ok {
		if t, ok := c.flow.lookup(key); ok {
			return t
		}
	}
	if declared == nil {
		return types.Fallback
	}
	return declared
}

func (c *Checker) narrowAssigned(target ast.Expression, declared, assigned types.Type) {
	key, ok := c.referenceKey(target)
	if !ok {
		return
	}
	c.flow.invalidate(key)
	if fact, ok := c.assignmentFact(declared, assigned); ok {
		c.flow.set(key, fact)
	}
}

// writable checks that target can be assigned to and returns its declared
// type, or nil after reporting why it can not.
func (c *Checker) writable(target ast.Expression) types.Type {
	switch t := target.(type) {
	case *ast.Identifier:
		sym, ok := c.scope.LookupValue(t.Name)
		if !ok {
			c.checkExpr(t, nil)
			return nil
		}
		var what string
		switch {
		case sym.Is(binding.DeclImport):
			what = "an import"
		case sym.Has(binding.FlagConst):
			what = "a constant"
		case sym.Is(binding.DeclClass):
			what = "a class"
		case sym.Is(binding.DeclEnum):
			what = "an enum"
		case sym.Is(binding.DeclFunction):
			what = "a function"
		}
		if what != "" {
			c.report(t, diag.TypeMismatch, "Cannot assign to '%s' because it is %s.", t.Name, what)
			c.record(t, c.declaredValueType(sym))
			return nil
		}
		return c.record(t, c.declaredValueType(sym))
	case *ast.MemberExpression:
		obj := c.checkExpr(t.Object, nil)
		if t.Property == nil {
			return nil
		}
		if types.IsAnyLike(obj) || types.IsUnresolvedLazy(obj) {
			return c.record(t, anyOf(obj))
		}
		base, _, ok := c.receiver(t.Object, obj, false)
		if !ok {
			return nil
		}
		p, ok := c.in.AccessProperty(base, t.Property.Name)
		if !ok {
			c.report(t.Property, diag.PropertyMissing, "Property '%s' does not exist on type '%s'.", t.Property.Name, typeString(base))
			return nil
		}
		if p.Readonly && !c.initializesField(t) {
			c.report(t.Property, diag.TypeMismatch, "Cannot assign to '%s' because it is a read-only property.", t.Property.Name)
			return nil
		}
		pt := p.Type
		if p.Optional {
			pt = c.in.Optional(pt)
		}
		return c.record(t, pt)
	case *ast.ElementAccessExpression:
		obj := c.checkExpr(t.Object, nil)
		idx := c.checkExpr(t.Index, nil)
		if types.IsAnyLike(obj) || types.IsUnresolvedLazy(obj) {
			return c.record(t, anyOf(obj))
		}
		base, _, ok := c.receiver(t.Object, obj, false)
		if !ok {
			return nil
		}
		if lit, ok := types.Deref(idx).(*types.Literal); ok {
			if p, ok := c.in.PropertyOf(base, literalText(lit)); ok && p.Readonly {
				c.report(t.Index, diag.TypeMismatch, "Cannot assign to '%s' because it is a read-only property.", literalText(lit))
				return nil
			}
		} else if kind := c.indexKeyKind(idx); kind != nil {
			if info, ok := c.in.IndexInfoOf(base, kind); ok && info.Readonly {
				c.report(t, diag.TypeMismatch, "Index signature in type '%s' only permits reading.", typeString(base))
				return nil
			}
		}
		return c.record(t, c.indexAccess(t, base, idx))
	}
	c.report(target, diag.TypeMismatch, "The left-hand side of an assignment expression must be a variable or a property access.")
	return nil
}

// initializesField reports whether target is `this.x` inside a
// constructor, where read-only fields may still be assigned.
func (c *Checker) initializesField(target *ast.MemberExpression) bool {
	_, isThis := target.Object.(*ast.ThisExpression)
	return isThis && c.fn != nil && c.fn.ctor
}

// assignPattern checks a destructuring assignment `[a, b] = value`.
func (c *Checker) assignPattern(pattern ast.Expression, source types.Type) {
	assign := func(target ast.Expression, t types.Type) {
		if lit, ok := target.(*ast.ArrayLiteral); ok {
			c.assignPattern(lit, t)
			return
		}
		if lit, ok := target.(*ast.ObjectLiteral); ok {
			c.assignPattern(lit, t)
			return
		}
		declared := c.writable(target)
		if declared != nil {
			c.checkAssignable(t, declared, target)
		}
		c.narrowAssigned(target, declared, t)
	}
	switch p := pattern.(type) {
	case *ast.ArrayLiteral:
		for i, el := range p.Elements {
			if sp, ok := el.(*ast.SpreadElement); ok {
				assign(sp.Argument, c.restElements(source, i))
				continue
			}
			var t types.Type = types.Any
			if !types.IsAnyLike(source) {
				if tup, ok := types.Deref(source).(*types.Tuple); ok {
					if et := c.tupleElementAt(tup, i); et != nil {
						t = et
					}
				} else {
					t = c.in.ElementType(source)
				}
			}
			assign(el, t)
		}
	case *ast.ObjectLiteral:
		for _, m := range p.Properties {
			prop, ok := m.(*ast.PropertyAssignment)
			if !ok || prop.Computed != nil {
				continue
			}
			target := prop.Value
			if target == nil {
				target = ast.NewIdentifier(prop.Name)
			}
			var t types.Type = types.Any
			if !types.IsAnyLike(source) {
				pt, ok := c.in.AccessProperty(source, prop.Name)
				if !ok {
					c.report(prop, diag.PropertyMissing, "Property '%s' does not exist on type '%s'.", prop.Name, typeString(source))
					t = types.Fallback
				} else {
					t = c.propertyType(pt)
				}
			}
			assign(target, t)
		}
	}
}
