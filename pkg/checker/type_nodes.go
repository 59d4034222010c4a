package checker

import (
	"strconv"
	"strings"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/env"
	"github.com/nissy-dev/stc/pkg/types"
)

var keywordTypes = map[string]types.Type{
	"any":       types.Any,
	"unknown":   types.Unknown,
	"never":     types.Never,
	"void":      types.Void,
	"undefined": types.Undefined,
	"null":      types.Null,
	"string":    types.String,
	"number":    types.Number,
	"boolean":   types.Boolean,
	"bigint":    types.BigInt,
	"symbol":    types.Symbol,
	"object":    types.NonPrimitive,
}

// deferred runs fn in a position where a reference to an alias still being
// resolved is allowed: object members, function types, element types and
// type arguments.
func (c *Checker) deferred(fn func() types.Type) types.Type {
	c.deferDepth++
	defer func() { c.deferDepth-- }()
	return fn()
}

// typeFromNode converts a type expression to a type. A nil expression
// yields nil.
func (c *Checker) typeFromNode(node ast.TypeExpression) types.Type {
	switch n := node.(type) {
	case nil:
		return nil
	case *ast.KeywordType:
		if t, ok := keywordTypes[n.Keyword]; ok {
			return t
		}
		c.report(n, diag.UnresolvedSymbol, "Cannot find name '%s'.", n.Keyword)
		return types.Fallback
	case *ast.LiteralType:
		return c.literalType(n)
	case *ast.UnionType:
		parts := make([]types.Type, 0, len(n.Types))
		for _, m := range n.Types {
			parts = append(parts, c.typeFromNode(m))
		}
		return c.in.Union(parts...)
	case *ast.IntersectionType:
		parts := make([]types.Type, 0, len(n.Types))
		for _, m := range n.Types {
			parts = append(parts, c.typeFromNode(m))
		}
		return c.in.Intersection(parts...)
	case *ast.ArrayType:
		return c.deferred(func() types.Type {
			return c.in.Array(c.typeFromNode(n.Element))
		})
	case *ast.TupleType:
		return c.deferred(func() types.Type {
			elems := make([]types.TupleElem, 0, len(n.Elements))
			for _, e := range n.Elements {
				if e == nil {
					continue
				}
				elems = append(elems, types.TupleElem{Type: c.typeFromNode(e.Type), Optional: e.Optional, Rest: e.Rest})
			}
			return c.in.Tuple(elems, false)
		})
	case *ast.FunctionType:
		return c.deferred(func() types.Type {
			sig := c.signatureFromNodes(n.TypeParams, n.Params, n.ReturnType, false)
			if n.Constructor {
				return c.in.Object(types.ObjectShape{Constructs: []*types.Signature{sig}})
			}
			return c.in.Function(sig)
		})
	case *ast.TypeLiteral:
		return c.deferred(func() types.Type {
			return c.in.Object(c.membersShape(n.Members, types.ObjectShape{}))
		})
	case *ast.TypeReference:
		return c.typeReference(n)
	case *ast.ConditionalType:
		return c.conditionalType(n)
	case *ast.InferType:
		if sym, ok := c.scope.LookupType(n.Name); ok && sym.Is(binding.DeclTypeParam) {
			return sym.Type()
		}
		c.report(n, diag.UnsupportedConstruct, "'infer' declarations are only permitted in the 'extends' clause of a conditional type.")
		return types.Fallback
	case *ast.MappedType:
		return c.mappedType(n)
	case *ast.IndexedAccessType:
		obj := c.typeFromNode(n.Object)
		idx := c.typeFromNode(n.Index)
		return c.in.Indexed(obj, idx)
	case *ast.TypeOperator:
		return c.typeOperator(n)
	case *ast.TypeQuery:
		return c.typeQuery(n)
	case *ast.TypePredicate:
		if n.Asserts {
			return types.Void
		}
		return types.Boolean
	case *ast.ThisType:
		if c.thisType == nil {
			c.report(n, diag.UnsupportedConstruct, "A 'this' type is available only in a non-static member of a class or interface.")
			return types.Fallback
		}
		return c.thisType
	}
	c.report(node, diag.UnsupportedConstruct, "Unsupported type syntax '%s'.", string(node.NodeType()))
	return types.Fallback
}

func (c *Checker) literalType(n *ast.LiteralType) types.Type {
	switch lit := n.Literal.(type) {
	case *ast.StringLiteral:
		return c.in.StringLit(lit.Value)
	case *ast.NumericLiteral:
		return c.in.NumberLit(lit.Value)
	case *ast.BigIntLiteral:
		return c.in.BigIntLit(lit.Value)
	case *ast.BooleanLiteral:
		return c.in.BoolLit(lit.Value)
	case *ast.NullLiteral:
		return types.Null
	case *ast.UnaryExpression:
		if num, ok := lit.Operand.(*ast.NumericLiteral); ok && lit.Operator == "-" {
			return c.in.NumberLit(-num.Value)
		}
		if big, ok := lit.Operand.(*ast.BigIntLiteral); ok && lit.Operator == "-" {
			return c.in.BigIntLit("-" + big.Value)
		}
	case *ast.TemplateLiteral:
		if len(lit.Expressions) == 0 {
			return c.in.StringLit(strings.Join(lit.Quasis, ""))
		}
		return types.String
	}
	c.report(n, diag.UnsupportedConstruct, "Unsupported literal type.")
	return types.Fallback
}

// typeReference resolves a named type, possibly qualified and possibly
// instantiated with arguments.
func (c *Checker) typeReference(n *ast.TypeReference) types.Type {
	if strings.Contains(n.Name, ".") {
		return c.qualifiedTypeReference(n)
	}
	sym, ok := c.scope.LookupType(n.Name)
	if !ok {
		if _, isValue := c.scope.LookupValue(n.Name); isValue {
			c.report(n, diag.UnresolvedSymbol, "'%s' refers to a value, but is being used as a type here. Did you mean 'typeof %s'?", n.Name, n.Name)
		} else {
			c.report(n, diag.UnresolvedSymbol, "Cannot find name '%s'.", n.Name)
		}
		return types.Fallback
	}
	return c.symbolTypeReference(sym, n)
}

func (c *Checker) qualifiedTypeReference(n *ast.TypeReference) types.Type {
	parts := strings.Split(n.Name, ".")
	sym, ok := c.scope.Lookup(parts[0])
	if !ok {
		c.report(n, diag.UnresolvedSymbol, "Cannot find namespace '%s'.", parts[0])
		return types.Fallback
	}
	for i, part := range parts[1:] {
		if d := sym.Decl(); d != nil && d.Kind == types.DeclEnum && i == len(parts)-2 {
			if m, ok := c.enumMember(d, part); ok {
				return m
			}
			c.report(n, diag.PropertyMissing, "Namespace '%s' has no exported member '%s'.", strings.Join(parts[:i+1], "."), part)
			return types.Fallback
		}
		if types.IsFallback(sym.ValueType()) && sym.Members == nil {
			return types.Fallback
		}
		next, ok := sym.Member(part)
		if !ok {
			c.report(n, diag.PropertyMissing, "Namespace '%s' has no exported member '%s'.", strings.Join(parts[:i+1], "."), part)
			return types.Fallback
		}
		sym = next
	}
	if !sym.HasType() {
		c.report(n, diag.UnresolvedSymbol, "'%s' refers to a value, but is being used as a type here. Did you mean 'typeof %s'?", n.Name, n.Name)
		return types.Fallback
	}
	return c.symbolTypeReference(sym, n)
}

func (c *Checker) enumMember(d *types.Decl, name string) (types.Type, bool) {
	for _, m := range types.Members(d.Body()) {
		if em, ok := m.(*types.EnumMember); ok && em.Name == name {
			return em, true
		}
	}
	return nil, false
}

func requiredTypeArgs(params []*types.TypeParam) int {
	n := 0
	for _, p := range params {
		if p.Default == nil {
			n++
		}
	}
	return n
}

func (c *Checker) typeArgs(nodes []ast.TypeExpression) []types.Type {
	if len(nodes) == 0 {
		return nil
	}
	args := make([]types.Type, len(nodes))
	c.deferred(func() types.Type {
		for i, a := range nodes {
			args[i] = c.typeFromNode(a)
		}
		return nil
	})
	return args
}

// symbolTypeReference instantiates the type side of sym with the
// reference's arguments.
func (c *Checker) symbolTypeReference(sym *binding.Symbol, n *ast.TypeReference) types.Type {
	args := c.typeArgs(n.Args)
	if sym.Module == env.LibModule && len(args) == 1 {
		switch sym.Name {
		case "Array":
			return c.in.Array(args[0])
		case "ReadonlyArray":
			return c.in.ReadonlyArray(args[0])
		}
	}
	d := sym.Decl()
	if d == nil {
		t := sym.Type()
		if len(args) > 0 && !types.IsUnresolvedLazy(t) && !types.IsFallback(t) {
			c.report(n, diag.TypeMismatch, "Type '%s' is not generic.", n.Name)
			return types.Fallback
		}
		if t == nil {
			return types.Fallback
		}
		return t
	}
	if len(args) > len(d.Params) || len(args) < requiredTypeArgs(d.Params) {
		if len(d.Params) == 0 {
			c.report(n, diag.TypeMismatch, "Type '%s' is not generic.", n.Name)
		} else {
			c.report(n, diag.TypeMismatch, "Generic type '%s' requires %s type argument(s).", n.Name, strconv.Itoa(requiredTypeArgs(d.Params)))
		}
		return types.Fallback
	}
	if len(args) < len(d.Params) {
		subst := c.in.FillTypeArgs(d.Params, args)
		full := make([]types.Type, len(d.Params))
		for i, p := range d.Params {
			full[i] = subst[p]
		}
		args = full
	}
	switch d.Kind {
	case types.DeclAlias:
		if d.Resolving() && !d.Resolved() {
			if c.deferDepth > 0 {
				return c.in.Ref(d, args...)
			}
			c.report(n, diag.CircularTypeError, "Type alias '%s' circularly references itself.", d.Name)
			return types.Fallback
		}
		if len(d.Params) == 0 {
			return d.Body()
		}
		return c.in.Expand(c.in.Ref(d, args...))
	case types.DeclEnum:
		return d.Body()
	}
	return c.in.Ref(d, args...)
}

// declareTypeParams declares type parameters in scope and converts their
// constraints and defaults once all of them are visible.
func (c *Checker) declareTypeParams(scope *binding.Scope, nodes []*ast.TypeParameter) []*types.TypeParam {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*types.TypeParam, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, c.declareTypeParam(scope, n, c.in.NewTypeParam(n.Name)))
	}
	c.fillTypeParams(nodes, out)
	return out
}

func (c *Checker) declareTypeParam(scope *binding.Scope, n *ast.TypeParameter, tp *types.TypeParam) *types.TypeParam {
	sym, conflict := scope.Declare(n.Name, binding.Site{Kind: binding.DeclTypeParam, Node: n})
	if conflict != nil {
		c.report(n, diag.DuplicateIdentifier, "Duplicate identifier '%s'.", n.Name)
		return tp
	}
	sym.SetType(tp)
	return tp
}

func (c *Checker) fillTypeParams(nodes []*ast.TypeParameter, params []*types.TypeParam) {
	i := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		tp := params[i]
		i++
		if n.Constraint != nil && tp.Constraint == nil {
			tp.Constraint = c.deferred(func() types.Type { return c.typeFromNode(n.Constraint) })
		}
		if n.Default != nil && tp.Default == nil {
			tp.Default = c.deferred(func() types.Type { return c.typeFromNode(n.Default) })
		}
	}
}

func collectInferNames(node ast.Node) []*ast.InferType {
	var out []*ast.InferType
	ast.Inspect(node, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.ConditionalType:
			// nested conditionals bind their own infer declarations
			if x != node {
				return false
			}
		case *ast.InferType:
			out = append(out, x)
		}
		return true
	})
	return out
}

func (c *Checker) conditionalType(n *ast.ConditionalType) types.Type {
	check := c.typeFromNode(n.Check)
	distributive := false
	if ref, ok := n.Check.(*ast.TypeReference); ok && len(ref.Args) == 0 {
		_, distributive = check.(*types.TypeParam)
	}
	var inferParams []*types.TypeParam
	var ext, whenTrue types.Type
	c.withScope(binding.ScopeBlock, func(scope *binding.Scope) {
		seen := map[string]*types.TypeParam{}
		for _, inf := range collectInferNames(n.Extends) {
			if _, ok := seen[inf.Name]; ok {
				continue
			}
			tp := c.in.NewTypeParam(inf.Name)
			tp.Infer = true
			seen[inf.Name] = tp
			inferParams = append(inferParams, tp)
			if sym, conflict := scope.Declare(inf.Name, binding.Site{Kind: binding.DeclTypeParam, Node: inf}); conflict == nil {
				sym.SetType(tp)
			}
		}
		ext = c.deferred(func() types.Type { return c.typeFromNode(n.Extends) })
		whenTrue = c.deferred(func() types.Type { return c.typeFromNode(n.True) })
	})
	whenFalse := c.deferred(func() types.Type { return c.typeFromNode(n.False) })
	return c.in.Conditional(check, ext, whenTrue, whenFalse, inferParams, distributive)
}

func modifier(s string) types.Modifier {
	switch s {
	case "":
		return types.ModNone
	case "-":
		return types.ModRemove
	}
	return types.ModAdd
}

func (c *Checker) mappedType(n *ast.MappedType) types.Type {
	if n.TypeParam == nil {
		c.report(n, diag.UnsupportedConstruct, "Mapped type requires a type parameter.")
		return types.Fallback
	}
	tp := c.in.NewTypeParam(n.TypeParam.Name)
	constraint := c.typeFromNode(n.TypeParam.Constraint)
	if constraint == nil {
		constraint = types.Never
	}
	tp.Constraint = constraint
	var template types.Type
	c.withScope(binding.ScopeBlock, func(scope *binding.Scope) {
		if sym, conflict := scope.Declare(tp.Name, binding.Site{Kind: binding.DeclTypeParam, Node: n.TypeParam}); conflict == nil {
			sym.SetType(tp)
		}
		template = c.deferred(func() types.Type { return c.typeFromNode(n.Type) })
	})
	if template == nil {
		template = types.Any
	}
	return c.in.Mapped(tp, constraint, template, modifier(n.Optional), modifier(n.Readonly))
}

func (c *Checker) typeOperator(n *ast.TypeOperator) types.Type {
	switch n.Operator {
	case "keyof":
		return c.in.KeyOf(c.typeFromNode(n.Type))
	case "readonly":
		switch t := c.typeFromNode(n.Type).(type) {
		case *types.Array:
			return c.in.ReadonlyArray(t.Elem)
		case *types.Tuple:
			return c.in.Tuple(t.Elems, true)
		default:
			c.report(n, diag.TypeMismatch, "'readonly' type modifier is only permitted on array and tuple literal types.")
			return t
		}
	case "unique":
		return c.typeFromNode(n.Type)
	}
	c.report(n, diag.UnsupportedConstruct, "Unsupported type operator '%s'.", n.Operator)
	return types.Fallback
}

// typeQuery resolves `typeof a.b` to the declared type of the value.
func (c *Checker) typeQuery(n *ast.TypeQuery) types.Type {
	parts := strings.Split(n.Name, ".")
	sym, ok := c.scope.LookupValue(parts[0])
	if !ok {
		c.report(n, diag.UnresolvedSymbol, "Cannot find name '%s'.", parts[0])
		return types.Fallback
	}
	t := c.referenceType(sym)
	for _, part := range parts[1:] {
		if types.IsAnyLike(t) {
			return t
		}
		p, ok := c.in.AccessProperty(t, part)
		if !ok {
			c.report(n, diag.PropertyMissing, "Property '%s' does not exist on type '%s'.", part, typeString(t))
			return types.Fallback
		}
		t = p.Type
	}
	return t
}

// referenceType is the type of an identifier use at the current point.
func (c *Checker) referenceType(sym *binding.Symbol) types.Type {
	if t, ok := c.flow.lookup(refKey{sym: sym}); ok {
		return t
	}
	return c.declaredValueType(sym)
}

func (c *Checker) declaredValueType(sym *binding.Symbol) types.Type {
	t := sym.ValueType()
	if t == nil {
		return types.Fallback
	}
	return t
}

// signatureFromNodes builds a signature from declared parameters. Type
// parameters live in a fresh scope that also holds the parameter names so
// that predicates can find their parameter. Unannotated parameters are any.
func (c *Checker) signatureFromNodes(tps []*ast.TypeParameter, params []*ast.Parameter, ret ast.TypeExpression, method bool) *types.Signature {
	var sig *types.Signature
	c.withScope(binding.ScopeFunction, func(scope *binding.Scope) {
		sig = &types.Signature{TypeParams: c.declareTypeParams(scope, tps), Method: method}
		sig.Params = c.paramTypes(params, nil)
		sig.Return, sig.Predicate = c.returnAnnotation(ret, params)
		if sig.Return == nil {
			sig.Return = types.Any
		}
	})
	return sig
}

// paramTypes converts parameters, taking unannotated ones from the
// contextual signature when there is one.
func (c *Checker) paramTypes(params []*ast.Parameter, contextual *types.Signature) []types.Param {
	out := make([]types.Param, 0, len(params))
	for i, p := range params {
		if p == nil {
			continue
		}
		out = append(out, types.Param{
			Name:     paramName(p),
			Type:     c.paramType(p, i, contextual),
			Optional: p.Optional || p.Default != nil,
			Rest:     p.Rest,
		})
	}
	return out
}

func paramName(p *ast.Parameter) string {
	if id, ok := p.Name.(*ast.Identifier); ok && id != nil {
		return id.Name
	}
	return "arg"
}

func (c *Checker) paramType(p *ast.Parameter, i int, contextual *types.Signature) types.Type {
	if p.Type != nil {
		return c.typeFromNode(p.Type)
	}
	if contextual != nil {
		if p.Rest {
			if i < len(contextual.Params) && contextual.Params[i].Rest {
				return contextual.Params[i].Type
			}
			var rest []types.Type
			for j := i; j < len(contextual.Params); j++ {
				rest = append(rest, contextual.Params[j].Type)
			}
			return c.in.TupleOf(rest...)
		}
		if t, ok := c.in.ParamTypeAt(contextual, i); ok {
			return t
		}
	}
	if p.Default != nil {
		var t types.Type
		c.speculate(func() { t = c.checkExpr(p.Default, nil) })
		return c.in.Widen(t)
	}
	if contextual == nil && c.noImplicitAny {
		if p.Rest {
			c.report(p, diag.ImplicitAny, "Rest parameter '%s' implicitly has an 'any[]' type.", paramName(p))
		} else {
			c.report(p, diag.ImplicitAny, "Parameter '%s' implicitly has an 'any' type.", paramName(p))
		}
	}
	if p.Rest {
		return c.in.Array(types.Any)
	}
	return types.Any
}

// returnAnnotation converts a return type annotation, recognising type
// predicates.
func (c *Checker) returnAnnotation(ret ast.TypeExpression, params []*ast.Parameter) (types.Type, *types.Predicate) {
	pred, ok := ret.(*ast.TypePredicate)
	if !ok {
		return c.typeFromNode(ret), nil
	}
	index := -1
	for i, p := range params {
		if p != nil && paramName(p) == pred.ParamName {
			index = i
			break
		}
	}
	if index < 0 {
		c.report(pred, diag.UnresolvedSymbol, "Cannot find parameter '%s'.", pred.ParamName)
		return types.Boolean, nil
	}
	out := &types.Predicate{ParamIndex: index, ParamName: pred.ParamName, Asserts: pred.Asserts}
	if pred.Type != nil {
		out.Type = c.typeFromNode(pred.Type)
	}
	if pred.Asserts {
		return types.Void, out
	}
	return types.Boolean, out
}

// membersShape collects interface or type literal members into shape.
func (c *Checker) membersShape(members []ast.TypeMember, shape types.ObjectShape) types.ObjectShape {
	methods := map[string]int{}
	for _, m := range members {
		switch n := m.(type) {
		case *ast.PropertySignature:
			t := c.typeFromNode(n.Type)
			if t == nil {
				t = types.Any
			}
			shape.Props = append(shape.Props, types.Property{Name: n.Name, Type: t, Optional: n.Optional, Readonly: n.Readonly})
		case *ast.MethodSignature:
			sig := c.signatureFromNodes(n.TypeParams, n.Params, n.ReturnType, true)
			if i, ok := methods[n.Name]; ok {
				prev := shape.Props[i]
				if f, ok := prev.Type.(*types.Function); ok {
					prev.Type = c.in.Function(append(append([]*types.Signature(nil), f.Signatures...), sig)...)
					shape.Props[i] = prev
					continue
				}
			}
			methods[n.Name] = len(shape.Props)
			shape.Props = append(shape.Props, types.Property{Name: n.Name, Type: c.in.Function(sig), Optional: n.Optional, Method: true})
		case *ast.CallSignature:
			shape.Calls = append(shape.Calls, c.signatureFromNodes(n.TypeParams, n.Params, n.ReturnType, false))
		case *ast.ConstructSignature:
			shape.Constructs = append(shape.Constructs, c.signatureFromNodes(n.TypeParams, n.Params, n.ReturnType, false))
		case *ast.IndexSignature:
			key := c.typeFromNode(n.KeyType)
			if key != types.Type(types.String) && key != types.Type(types.Number) {
				c.report(n, diag.TypeMismatch, "An index signature parameter type must be 'string' or 'number'.")
				continue
			}
			shape.Index = append(shape.Index, types.IndexInfo{Key: key, Type: c.typeFromNode(n.Type), Readonly: n.Readonly})
		}
	}
	return shape
}
