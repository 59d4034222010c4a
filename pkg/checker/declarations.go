package checker

import (
	"math"
	"strconv"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/types"
)

// bindScope installs resolvers on the symbols declared by body. Uses that
// textually precede a declaration resolve it on demand, so hoisted
// functions, classes and types see their declared type everywhere in
// scope. Type parameter bounds are filled once every declaration of the
// block has a handle, since they may mention each other.
func (c *Checker) bindScope(scope *binding.Scope, body []ast.Statement) {
	var fills []func()
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.VariableStatement:
			for _, d := range s.Declarations {
				if d != nil {
					c.bindDeclarator(scope, s.Kind, d)
				}
			}
		case *ast.FunctionDeclaration:
			if sym := c.bindable(scope, s.Name); sym != nil {
				c.bindFunction(scope, sym)
			}
		case *ast.ClassDeclaration:
			if sym := c.bindable(scope, s.Name); sym != nil {
				fills = append(fills, c.bindClass(scope, sym, s))
			}
		case *ast.InterfaceDeclaration:
			if sym := c.bindable(scope, s.Name); sym != nil {
				fills = append(fills, c.bindInterface(scope, sym))
			}
		case *ast.TypeAliasDeclaration:
			if sym := c.bindable(scope, s.Name); sym != nil {
				fills = append(fills, c.bindAlias(scope, sym, s))
			}
		case *ast.EnumDeclaration:
			if sym := c.bindable(scope, s.Name); sym != nil {
				c.bindEnum(scope, sym)
			}
		case *ast.NamespaceDeclaration:
			if sym := c.bindable(scope, s.Name); sym != nil {
				setFallback(sym)
			}
		}
	}
	for _, fill := range fills {
		if fill != nil {
			fill()
		}
	}
}

// bindable returns the symbol id declares, unless it was bound already.
func (c *Checker) bindable(scope *binding.Scope, id *ast.Identifier) *binding.Symbol {
	if id == nil {
		return nil
	}
	sym, ok := scope.Lookup(id.Name)
	if !ok || !declares(sym, id) || !c.bound.Insert(sym) {
		return nil
	}
	return sym
}

func declares(sym *binding.Symbol, id *ast.Identifier) bool {
	for _, site := range sym.Sites {
		if site.Name == id {
			return true
		}
	}
	return false
}

func typeParamArgs(params []*types.TypeParam) []types.Type {
	out := make([]types.Type, len(params))
	for i, p := range params {
		out[i] = p
	}
	return out
}

func (c *Checker) newTypeParams(nodes []*ast.TypeParameter) []*types.TypeParam {
	var out []*types.TypeParam
	for _, n := range nodes {
		if n != nil {
			out = append(out, c.in.NewTypeParam(n.Name))
		}
	}
	return out
}

// paramScope opens a scope declaring params under the names of nodes.
func (c *Checker) paramScope(scope *binding.Scope, nodes []*ast.TypeParameter, params []*types.TypeParam) *binding.Scope {
	s := scope.Extend(binding.ScopeBlock)
	i := 0
	for _, n := range nodes {
		if n == nil || i >= len(params) {
			continue
		}
		c.declareTypeParam(s, n, params[i])
		i++
	}
	return s
}

// Variables

func (c *Checker) bindDeclarator(scope *binding.Scope, kind ast.VarKind, d *ast.VariableDeclarator) {
	if id, ok := d.Name.(*ast.Identifier); ok {
		sym := c.bindable(scope, id)
		if sym == nil {
			return
		}
		sym.SetValueResolver(func() types.Type { return c.declaratorType(scope, kind, d, sym) })
		return
	}
	for _, id := range ast.BoundNames(d.Name) {
		sym := c.bindable(scope, id)
		if sym == nil {
			continue
		}
		id := id
		sym.SetValueResolver(func() types.Type {
			return c.declaratorBindings(scope, kind, d)[id]
		})
	}
}

func (c *Checker) declaratorType(scope *binding.Scope, kind ast.VarKind, d *ast.VariableDeclarator, sym *binding.Symbol) types.Type {
	var t types.Type
	c.isolate(scope, func() {
		switch {
		case d.Type != nil:
			t = c.typeFromNode(d.Type)
		case d.Init != nil:
			t = c.widenBinding(kind, d.Init, c.checkExpr(d.Init, nil))
		default:
			t = types.Any
		}
	})
	if sym.Circular() && d.Type == nil {
		if c.noImplicitAny {
			c.report(d.Name, diag.ImplicitAny, "'%s' implicitly has type 'any' because it does not have a type annotation and is referenced directly or indirectly in its own initializer.", sym.Name)
		}
		return types.Any
	}
	return t
}

// widenBinding computes the declared type of an unannotated binding from
// its initializer. Constants keep unit types; asserted initializers are
// never widened.
func (c *Checker) widenBinding(kind ast.VarKind, init ast.Expression, t types.Type) types.Type {
	if _, ok := init.(*ast.AsExpression); ok {
		return t
	}
	if kind == ast.VarKindConst {
		units := true
		for _, m := range types.Members(t) {
			if !types.IsUnit(m) {
				units = false
				break
			}
		}
		if units {
			return t
		}
	}
	return c.in.Widen(t)
}

// declaratorSource is the type a destructuring declarator binds from.
func (c *Checker) declaratorSource(scope *binding.Scope, d *ast.VariableDeclarator) types.Type {
	if t, ok := c.sources[d]; ok {
		return t
	}
	var t types.Type
	c.isolate(scope, func() {
		switch {
		case d.Type != nil:
			t = c.typeFromNode(d.Type)
		case d.Init != nil:
			t = c.checkExpr(d.Init, nil)
		default:
			t = types.Any
		}
	})
	c.sources[d] = t
	return t
}

func (c *Checker) declaratorBindings(scope *binding.Scope, kind ast.VarKind, d *ast.VariableDeclarator) map[*ast.Identifier]types.Type {
	if m, ok := c.patterns[d]; ok {
		return m
	}
	source := c.declaratorSource(scope, d)
	m := make(map[*ast.Identifier]types.Type)
	c.isolate(scope, func() { c.patternTypes(d.Name, source, m) })
	if d.Type == nil {
		for id, t := range m {
			m[id] = c.widenBinding(kind, nil, t)
		}
	}
	c.patterns[d] = m
	return m
}

// patternTypes computes the type of every identifier bound by name when
// the whole pattern receives a value of type source.
func (c *Checker) patternTypes(name ast.BindingName, source types.Type, out map[*ast.Identifier]types.Type) {
	switch n := name.(type) {
	case *ast.Identifier:
		if n != nil {
			out[n] = source
		}
	case *ast.ObjectPattern:
		if n == nil {
			return
		}
		var used []string
		for _, el := range n.Elements {
			if el == nil {
				continue
			}
			if el.Rest {
				c.patternTypes(el.Name, c.restObject(source, used), out)
				continue
			}
			key := el.PropertyName
			if id, ok := el.Name.(*ast.Identifier); ok && key == "" {
				key = id.Name
			}
			used = append(used, key)
			t := c.destructuredProperty(el, source, key)
			c.patternTypes(el.Name, c.withDefault(el, t), out)
		}
	case *ast.ArrayPattern:
		if n == nil {
			return
		}
		for i, el := range n.Elements {
			if el == nil {
				continue
			}
			var t types.Type
			if el.Rest {
				t = c.restElements(source, i)
			} else {
				t = c.destructuredElement(el, source, i)
			}
			c.patternTypes(el.Name, c.withDefault(el, t), out)
		}
	}
}

func (c *Checker) destructuredProperty(el *ast.BindingElement, source types.Type, key string) types.Type {
	if types.IsAnyLike(source) {
		return source
	}
	p, ok := c.in.AccessProperty(source, key)
	if !ok {
		c.report(el, diag.PropertyMissing, "Property '%s' does not exist on type '%s'.", key, typeString(source))
		return types.Fallback
	}
	return c.propertyType(p)
}

func (c *Checker) destructuredElement(el *ast.BindingElement, source types.Type, i int) types.Type {
	if tup, ok := types.Deref(source).(*types.Tuple); ok {
		if i < len(tup.Elems) && !tup.Elems[i].Rest {
			e := tup.Elems[i]
			if e.Optional {
				return c.in.Optional(e.Type)
			}
			return e.Type
		}
		if tup.HasRest() {
			return c.in.ElementType(tup.Elems[len(tup.Elems)-1].Type)
		}
		c.report(el, diag.TypeMismatch, "Tuple type '%s' of length '%s' has no element at index '%s'.",
			typeString(source), strconv.Itoa(len(tup.Elems)), strconv.Itoa(i))
		return types.Fallback
	}
	elem := c.in.ElementType(source)
	if types.IsFallback(elem) && !types.IsFallback(source) {
		c.report(el, diag.TypeMismatch, "Type '%s' is not an array type.", typeString(source))
	}
	return elem
}

func (c *Checker) restElements(source types.Type, i int) types.Type {
	switch t := types.Deref(source).(type) {
	case *types.Tuple:
		if i >= len(t.Elems) {
			return c.in.Tuple(nil, t.Readonly)
		}
		return c.in.Tuple(t.Elems[i:], t.Readonly)
	case *types.Array:
		return t
	}
	if types.IsAnyLike(source) {
		return c.in.Array(source)
	}
	return c.in.Array(c.in.ElementType(source))
}

func (c *Checker) restObject(source types.Type, used []string) types.Type {
	if types.IsAnyLike(source) {
		return source
	}
	skip := make(map[string]bool, len(used))
	for _, name := range used {
		skip[name] = true
	}
	var props []types.Property
	for _, p := range c.in.Properties(source) {
		if !skip[p.Name] && !p.Method {
			props = append(props, p)
		}
	}
	return c.in.Object(types.ObjectShape{Props: props})
}

func (c *Checker) withDefault(el *ast.BindingElement, t types.Type) types.Type {
	if el.Default == nil {
		return t
	}
	dt := c.checkExpr(el.Default, t)
	return c.in.Union(c.in.RemoveUndefined(t), dt)
}

// propertyType is the type read through p, including undefined when the
// property is optional.
func (c *Checker) propertyType(p types.Property) types.Type {
	if p.Optional && c.in.StrictNullChecks() {
		return c.in.Optional(p.Type)
	}
	return p.Type
}

// Functions

func (c *Checker) bindFunction(scope *binding.Scope, sym *binding.Symbol) {
	sym.SetValueResolver(func() types.Type { return c.functionType(scope, sym) })
}

func functionSites(sym *binding.Symbol) []*ast.FunctionDeclaration {
	var out []*ast.FunctionDeclaration
	for _, site := range sym.Sites {
		if fd, ok := site.Node.(*ast.FunctionDeclaration); ok && fd != nil {
			out = append(out, fd)
		}
	}
	return out
}

// functionType is the type of a function symbol: its overload signatures
// when there are any, otherwise the implementation's signature.
func (c *Checker) functionType(scope *binding.Scope, sym *binding.Symbol) types.Type {
	var overloads []*types.Signature
	var impl *types.Signature
	for _, fd := range functionSites(sym) {
		if fd.Body == nil {
			overloads = append(overloads, c.declSignature(scope, fd))
			continue
		}
		if impl == nil {
			impl = c.declSignature(scope, fd)
			if sym.Circular() && fd.ReturnType == nil && types.IsAnyLike(impl.Return) && c.noImplicitAny {
				c.report(fd.Name, diag.ImplicitAny, "'%s' implicitly has return type 'any' because it does not have a return type annotation and is referenced directly or indirectly in one of its return expressions.", sym.Name)
			}
		}
	}
	if len(overloads) > 0 {
		return c.in.Function(overloads...)
	}
	if impl == nil {
		return types.Fallback
	}
	return c.in.Function(impl)
}

// declSignature computes the signature of a function declaration. An
// unannotated return is inferred from the body, which is then checked
// once and for all.
func (c *Checker) declSignature(scope *binding.Scope, fd *ast.FunctionDeclaration) *types.Signature {
	if sig, ok := c.declSigs[fd]; ok {
		return sig
	}
	var sig *types.Signature
	c.isolate(scope, func() {
		if fd.ReturnType != nil || fd.Body == nil {
			sig = c.signatureFromNodes(fd.TypeParams, fd.Params, fd.ReturnType, false)
			if fd.ReturnType == nil && c.noImplicitAny {
				c.report(fd.Name, diag.ImplicitAny, "'%s', which lacks return-type annotation, implicitly has an 'any' return type.", fd.DeclaredName())
			}
			return
		}
		sig = c.checkFunction(declParts(fd), nil)
		c.checked.Insert(fd)
	})
	c.declSigs[fd] = sig
	return sig
}

// Interfaces

func (c *Checker) bindInterface(scope *binding.Scope, sym *binding.Symbol) func() {
	var nodes []*ast.InterfaceDeclaration
	for _, site := range sym.Sites {
		if n, ok := site.Node.(*ast.InterfaceDeclaration); ok && n != nil {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	params := c.newTypeParams(nodes[0].TypeParams)
	decl := c.in.NewDecl(sym.Name, c.path, types.DeclInterface, params)
	sym.SetDecl(decl)
	sym.SetType(c.in.Ref(decl, typeParamArgs(params)...))
	scopes := make([]*binding.Scope, len(nodes))
	for i, n := range nodes {
		scopes[i] = c.paramScope(scope, n.TypeParams, params)
	}
	decl.SetResolver(func() types.Type { return c.interfaceBody(decl, nodes, scopes) })
	return func() {
		c.isolate(scopes[0], func() { c.fillTypeParams(nodes[0].TypeParams, params) })
	}
}

func (c *Checker) interfaceBody(decl *types.Decl, nodes []*ast.InterfaceDeclaration, scopes []*binding.Scope) types.Type {
	self := c.in.Ref(decl, typeParamArgs(decl.Params)...)
	var shape types.ObjectShape
	var bases []types.Type
	var baseNodes []ast.TypeExpression
	for i, n := range nodes {
		c.isolate(scopes[i], func() {
			c.thisType = self
			c.deferDepth++
			for _, ext := range n.Extends {
				bases = append(bases, c.typeFromNode(ext))
				baseNodes = append(baseNodes, ext)
			}
			shape = c.membersShape(n.Members, shape)
		})
	}
	own := c.in.Object(shape)
	if len(bases) == 0 {
		return own
	}
	var merged types.ObjectShape
	for i, base := range bases {
		if types.IsAnyLike(base) {
			continue
		}
		for _, p := range c.in.Properties(base) {
			if op, ok := own.Prop(p.Name); ok {
				if !c.in.IsAssignable(op.Type, p.Type) {
					c.report(baseNodes[i], diag.TypeMismatch, "Interface '%s' incorrectly extends interface '%s'.", decl.Name, typeString(base))
				}
				continue
			}
			merged.Props = append(merged.Props, p)
		}
		merged.Calls = append(merged.Calls, c.in.Signatures(base, false)...)
		merged.Constructs = append(merged.Constructs, c.in.Signatures(base, true)...)
		for _, key := range []types.Type{types.String, types.Number} {
			if _, mine := own.IndexFor(key); mine {
				continue
			}
			if info, ok := c.in.IndexInfoOf(base, key); ok && info.Key == key {
				merged.Index = append(merged.Index, info)
			}
		}
	}
	merged.Props = append(merged.Props, own.Props...)
	merged.Calls = append(append([]*types.Signature(nil), own.Calls...), merged.Calls...)
	merged.Constructs = append(append([]*types.Signature(nil), own.Constructs...), merged.Constructs...)
	merged.Index = append(merged.Index, own.Index...)
	return c.in.Object(merged)
}

// Type aliases

func (c *Checker) bindAlias(scope *binding.Scope, sym *binding.Symbol, n *ast.TypeAliasDeclaration) func() {
	params := c.newTypeParams(n.TypeParams)
	decl := c.in.NewDecl(sym.Name, c.path, types.DeclAlias, params)
	sym.SetDecl(decl)
	pscope := c.paramScope(scope, n.TypeParams, params)
	decl.SetResolver(func() types.Type {
		var t types.Type
		c.isolate(pscope, func() { t = c.typeFromNode(n.Type) })
		return t
	})
	if len(params) == 0 {
		sym.SetTypeResolver(decl.Body)
	} else {
		sym.SetType(c.in.Ref(decl, typeParamArgs(params)...))
	}
	return func() {
		c.isolate(pscope, func() { c.fillTypeParams(n.TypeParams, params) })
	}
}

// Enums

func (c *Checker) bindEnum(scope *binding.Scope, sym *binding.Symbol) {
	var nodes []*ast.EnumDeclaration
	for _, site := range sym.Sites {
		if n, ok := site.Node.(*ast.EnumDeclaration); ok && n != nil {
			nodes = append(nodes, n)
		}
	}
	decl := c.in.NewDecl(sym.Name, c.path, types.DeclEnum, nil)
	sym.SetDecl(decl)
	decl.SetResolver(func() types.Type { return c.enumBody(scope, decl, nodes) })
	sym.SetTypeResolver(decl.Body)
	sym.SetValueResolver(func() types.Type {
		decl.Body()
		if s := decl.Static(); s != nil {
			return s
		}
		return types.Fallback
	})
}

// enumBody computes the member types of an enum and publishes its member
// object as the static side. Members without an initializer continue
// numbering from the previous numeric member.
func (c *Checker) enumBody(scope *binding.Scope, decl *types.Decl, nodes []*ast.EnumDeclaration) types.Type {
	var members []types.Type
	var props []types.Property
	values := make(map[string]*types.Literal)
	c.isolate(scope, func() {
		for _, n := range nodes {
			next, numeric := 0.0, true
			for _, m := range n.Members {
				if m == nil {
					continue
				}
				var lit *types.Literal
				switch {
				case m.Init == nil && !numeric:
					c.report(m, diag.TypeMismatch, "Enum member must have initializer.")
					lit = c.in.NumberLit(next)
				case m.Init == nil:
					lit = c.in.NumberLit(next)
				default:
					v, ok := c.enumValue(m.Init, decl, values)
					if !ok {
						c.checkExpr(m.Init, nil)
						c.report(m.Init, diag.UnsupportedConstruct, "Enum member initializers must be constant expressions.")
						v = c.in.NumberLit(next)
					}
					lit = v
				}
				numeric = lit.LitKind == types.LitNumber
				if numeric {
					next = lit.Num + 1
				}
				values[m.Name] = lit
				em := c.in.EnumMember(decl, m.Name, lit)
				members = append(members, em)
				props = append(props, types.Property{Name: m.Name, Type: em, Readonly: true})
			}
		}
	})
	decl.SetStatic(c.in.Object(types.ObjectShape{Props: props}))
	return c.in.Union(members...)
}

// enumValue folds a constant enum initializer.
func (c *Checker) enumValue(expr ast.Expression, decl *types.Decl, values map[string]*types.Literal) (*types.Literal, bool) {
	switch e := expr.(type) {
	case *ast.NumericLiteral:
		return c.in.NumberLit(e.Value), true
	case *ast.StringLiteral:
		return c.in.StringLit(e.Value), true
	case *ast.TemplateLiteral:
		if len(e.Expressions) == 0 && len(e.Quasis) == 1 {
			return c.in.StringLit(e.Quasis[0]), true
		}
	case *ast.Identifier:
		v, ok := values[e.Name]
		return v, ok
	case *ast.MemberExpression:
		if id, ok := e.Object.(*ast.Identifier); ok && id.Name == decl.Name && e.Property != nil {
			v, ok := values[e.Property.Name]
			return v, ok
		}
	case *ast.UnaryExpression:
		v, ok := c.enumValue(e.Operand, decl, values)
		if !ok || v.LitKind != types.LitNumber {
			return nil, false
		}
		switch e.Operator {
		case "-":
			return c.in.NumberLit(-v.Num), true
		case "+":
			return v, true
		case "~":
			return c.in.NumberLit(float64(^int32(v.Num))), true
		}
	case *ast.BinaryExpression:
		l, ok := c.enumValue(e.Left, decl, values)
		if !ok {
			return nil, false
		}
		r, ok := c.enumValue(e.Right, decl, values)
		if !ok {
			return nil, false
		}
		if e.Operator == "+" && (l.LitKind == types.LitString || r.LitKind == types.LitString) {
			return c.in.StringLit(literalText(l) + literalText(r)), true
		}
		if l.LitKind != types.LitNumber || r.LitKind != types.LitNumber {
			return nil, false
		}
		a, b := l.Num, r.Num
		switch e.Operator {
		case "+":
			return c.in.NumberLit(a + b), true
		case "-":
			return c.in.NumberLit(a - b), true
		case "*":
			return c.in.NumberLit(a * b), true
		case "/":
			return c.in.NumberLit(a / b), true
		case "%":
			return c.in.NumberLit(math.Mod(a, b)), true
		case "|":
			return c.in.NumberLit(float64(int32(a) | int32(b))), true
		case "&":
			return c.in.NumberLit(float64(int32(a) & int32(b))), true
		case "^":
			return c.in.NumberLit(float64(int32(a) ^ int32(b))), true
		case "<<":
			return c.in.NumberLit(float64(int32(a) << (uint32(b) & 31))), true
		case ">>":
			return c.in.NumberLit(float64(int32(a) >> (uint32(b) & 31))), true
		}
	}
	return nil, false
}

func literalText(l *types.Literal) string {
	if l.LitKind == types.LitString {
		return l.Str
	}
	return strconv.FormatFloat(l.Num, 'f', -1, 64)
}
