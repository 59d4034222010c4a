package checker

import (
	"fmt"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/types"
)

// A class declares two types: the instance type, the body of a DeclClass
// declaration, and the static side, the value type of the class symbol,
// whose construct signatures are generic over the class type parameters.

func (c *Checker) bindClass(scope *binding.Scope, sym *binding.Symbol, n *ast.ClassDeclaration) func() {
	params := c.newTypeParams(n.TypeParams)
	decl := c.in.NewDecl(sym.Name, c.path, types.DeclClass, params)
	c.classDecls[n] = decl
	if n.Abstract {
		c.abstract.Insert(decl)
	}
	sym.SetDecl(decl)
	sym.SetType(c.in.Ref(decl, typeParamArgs(params)...))
	pscope := c.paramScope(scope, n.TypeParams, params)
	c.classScopes[n] = pscope
	decl.SetResolver(func() types.Type { return c.classInstance(pscope, decl, n) })
	sym.SetValueResolver(func() types.Type { return c.classStatic(pscope, decl, n) })
	return func() {
		c.isolate(pscope, func() { c.fillTypeParams(n.TypeParams, params) })
	}
}

func selfType(in *types.Interner, decl *types.Decl) types.Type {
	return in.Ref(decl, typeParamArgs(decl.Params)...)
}

// classBase is the instance type named in the extends clause, or nil.
func (c *Checker) classBase(n *ast.ClassDeclaration) types.Type {
	if n.Extends == nil {
		return nil
	}
	return c.typeFromNode(n.Extends)
}

// classBaseStatic is the static side of the extended class, or nil.
func (c *Checker) classBaseStatic(n *ast.ClassDeclaration) types.Type {
	ref, ok := n.Extends.(*ast.TypeReference)
	if !ok {
		return nil
	}
	sym, ok := c.scope.LookupValue(ref.Name)
	if !ok {
		return nil
	}
	return sym.ValueType()
}

func (c *Checker) fieldType(x *ast.PropertyDeclaration) types.Type {
	switch {
	case x.Type != nil:
		return c.typeFromNode(x.Type)
	case x.Init != nil:
		return c.in.Widen(c.checkExpr(x.Init, nil))
	}
	if c.noImplicitAny {
		c.report(x, diag.ImplicitAny, "Member '%s' implicitly has an 'any' type.", x.Name)
	}
	return types.Any
}

// memberSignature converts a method. An unannotated return of a method
// with a body is a placeholder resolved once the body has been checked.
func (c *Checker) memberSignature(decl *types.Decl, x *ast.MethodDeclaration) *types.Signature {
	sig := c.signatureFromNodes(x.TypeParams, x.Params, x.ReturnType, true)
	if x.ReturnType == nil && x.Body != nil {
		lz, ok := c.methodReturns[x]
		if !ok {
			lz = c.in.Lazy(fmt.Sprintf("%s#%p", c.path, x), decl.Name+"."+x.Name)
			c.methodReturns[x] = lz
		}
		sig.Return = lz
	}
	return sig
}

// methodGroup collects same-named methods: bodiless declarations are
// overloads and hide the implementation signature.
type methodGroup struct {
	order     []string
	overloads map[string][]*types.Signature
	impl      map[string]*types.Signature
	optional  map[string]bool
}

func newMethodGroup() *methodGroup {
	return &methodGroup{
		overloads: make(map[string][]*types.Signature),
		impl:      make(map[string]*types.Signature),
		optional:  make(map[string]bool),
	}
}

func (g *methodGroup) add(x *ast.MethodDeclaration, sig *types.Signature) {
	if _, ok := g.impl[x.Name]; !ok {
		if _, ok := g.overloads[x.Name]; !ok {
			g.order = append(g.order, x.Name)
		}
	}
	g.optional[x.Name] = g.optional[x.Name] || x.Optional
	if x.Body == nil {
		g.overloads[x.Name] = append(g.overloads[x.Name], sig)
		return
	}
	if _, ok := g.impl[x.Name]; !ok {
		g.impl[x.Name] = sig
	}
}

func (g *methodGroup) properties(in *types.Interner) []types.Property {
	out := make([]types.Property, 0, len(g.order))
	for _, name := range g.order {
		sigs := g.overloads[name]
		if len(sigs) == 0 {
			sigs = []*types.Signature{g.impl[name]}
		}
		out = append(out, types.Property{Name: name, Type: in.Function(sigs...), Optional: g.optional[name], Method: true})
	}
	return out
}

func (c *Checker) classInstance(pscope *binding.Scope, decl *types.Decl, n *ast.ClassDeclaration) types.Type {
	self := selfType(c.in, decl)
	var shape types.ObjectShape
	var pending []*ast.MethodDeclaration
	c.isolate(pscope, func() {
		c.thisType = self
		if base := c.classBase(n); base != nil && !types.IsAnyLike(base) {
			shape.Props = append(shape.Props, c.in.Properties(base)...)
			for _, key := range []types.Type{types.String, types.Number} {
				if info, ok := c.in.IndexInfoOf(base, key); ok && info.Key == key {
					shape.Index = append(shape.Index, info)
				}
			}
		}
		methods := newMethodGroup()
		for _, m := range n.Members {
			switch x := m.(type) {
			case *ast.PropertyDeclaration:
				if x.Static {
					continue
				}
				shape.Props = append(shape.Props, types.Property{Name: x.Name, Type: c.fieldType(x), Optional: x.Optional, Readonly: x.Readonly})
			case *ast.ConstructorDeclaration:
				shape.Props = append(shape.Props, c.parameterProperties(x)...)
			case *ast.MethodDeclaration:
				if x.Static {
					continue
				}
				methods.add(x, c.memberSignature(decl, x))
				if x.ReturnType == nil && x.Body != nil {
					pending = append(pending, x)
				}
			}
		}
		shape.Props = append(shape.Props, methods.properties(c.in)...)
	})
	body := c.in.Object(shape)
	// Publish early so that method bodies can read members through this.
	decl.SetBody(body)
	for _, x := range pending {
		c.methodBody(pscope, decl, x)
	}
	return body
}

// parameterProperties are the fields declared by constructor parameters
// with an accessibility or readonly modifier.
func (c *Checker) parameterProperties(x *ast.ConstructorDeclaration) []types.Property {
	var out []types.Property
	for _, p := range x.Params {
		if p == nil || (p.Accessibility == "" && !p.Readonly) {
			continue
		}
		id, ok := p.Name.(*ast.Identifier)
		if !ok {
			continue
		}
		t := types.Type(types.Any)
		if p.Type != nil {
			t = c.typeFromNode(p.Type)
		}
		out = append(out, types.Property{Name: id.Name, Type: t, Optional: p.Optional, Readonly: p.Readonly})
	}
	return out
}

func (c *Checker) classStatic(pscope *binding.Scope, decl *types.Decl, n *ast.ClassDeclaration) types.Type {
	self := selfType(c.in, decl)
	var shape types.ObjectShape
	c.isolate(pscope, func() {
		var overloads []*types.Signature
		var impl *types.Signature
		methods := newMethodGroup()
		var fields []types.Property
		for _, m := range n.Members {
			switch x := m.(type) {
			case *ast.ConstructorDeclaration:
				sig := c.signatureFromNodes(nil, x.Params, nil, false)
				sig.TypeParams = decl.Params
				sig.Return = self
				if x.Body == nil {
					overloads = append(overloads, sig)
				} else if impl == nil {
					impl = sig
				}
			case *ast.PropertyDeclaration:
				if x.Static {
					fields = append(fields, types.Property{Name: x.Name, Type: c.fieldType(x), Optional: x.Optional, Readonly: x.Readonly})
				}
			case *ast.MethodDeclaration:
				if x.Static {
					methods.add(x, c.memberSignature(decl, x))
				}
			}
		}
		baseStatic := c.classBaseStatic(n)
		switch {
		case len(overloads) > 0:
			shape.Constructs = overloads
		case impl != nil:
			shape.Constructs = []*types.Signature{impl}
		case baseStatic != nil:
			shape.Constructs = c.inheritedConstructs(n, decl, baseStatic)
		}
		if len(shape.Constructs) == 0 {
			shape.Constructs = []*types.Signature{{TypeParams: decl.Params, Return: self}}
		}
		if baseStatic != nil && !types.IsAnyLike(baseStatic) {
			shape.Props = append(shape.Props, c.in.Properties(baseStatic)...)
		}
		shape.Props = append(shape.Props, fields...)
		shape.Props = append(shape.Props, methods.properties(c.in)...)
	})
	static := c.in.Object(shape)
	decl.SetStatic(static)
	return static
}

// inheritedConstructs reuses the base class constructors, instantiated
// with the type arguments of the extends clause, to build this class.
func (c *Checker) inheritedConstructs(n *ast.ClassDeclaration, decl *types.Decl, baseStatic types.Type) []*types.Signature {
	if types.IsAnyLike(baseStatic) {
		return nil
	}
	subst := types.Subst{}
	if ref, ok := types.Deref(c.classBase(n)).(*types.Ref); ok {
		for i, p := range ref.Decl.Params {
			if i < len(ref.Args) {
				subst[p] = ref.Args[i]
			}
		}
	}
	self := selfType(c.in, decl)
	var out []*types.Signature
	for _, s := range c.in.Signatures(baseStatic, true) {
		inst := c.in.InstantiateSignature(&types.Signature{Params: s.Params, Return: s.Return}, subst)
		out = append(out, &types.Signature{TypeParams: decl.Params, Params: inst.Params, Return: self})
	}
	return out
}

// methodBody checks a method body once and resolves its return
// placeholder with the inferred type.
func (c *Checker) methodBody(pscope *binding.Scope, decl *types.Decl, x *ast.MethodDeclaration) {
	if x.Body == nil || !c.checked.Insert(x) {
		return
	}
	var sig *types.Signature
	c.isolate(pscope, func() {
		if x.Static {
			c.thisType = decl.Static()
		} else {
			c.thisType = selfType(c.in, decl)
		}
		sig = c.checkFunction(methodParts(x), nil)
	})
	lz, ok := c.methodReturns[x]
	if !ok {
		return
	}
	var ret []types.Type
	for _, m := range types.Members(sig.Return) {
		if m != types.Type(lz) {
			ret = append(ret, m)
		}
	}
	if len(ret) == 0 {
		lz.Resolve(types.Any)
		return
	}
	lz.Resolve(c.in.Union(ret...))
}

// checkClass checks the member bodies of a class and its heritage
// clauses.
func (c *Checker) checkClass(n *ast.ClassDeclaration) {
	decl := c.classDecls[n]
	pscope := c.classScopes[n]
	if decl == nil || pscope == nil {
		return
	}
	sym, ok := c.scope.LookupValue(n.DeclaredName())
	var static types.Type
	if ok {
		static = sym.ValueType()
	}
	instance := decl.Body()
	self := selfType(c.in, decl)
	c.isolate(pscope, func() {
		for _, m := range n.Members {
			switch x := m.(type) {
			case *ast.PropertyDeclaration:
				if x.Init == nil || x.Type == nil {
					continue
				}
				c.thisType = self
				if x.Static {
					c.thisType = static
				}
				declared := c.typeFromNode(x.Type)
				c.checkAssignable(c.checkExpr(x.Init, declared), declared, x.Init)
			case *ast.ConstructorDeclaration:
				if x.Body == nil || !c.checked.Insert(x) {
					continue
				}
				c.thisType = self
				c.checkFunction(ctorParts(x), nil)
			case *ast.MethodDeclaration:
				c.methodBody(pscope, decl, x)
			}
		}
		c.thisType = nil
		if n.Extends != nil {
			base := c.classBase(n)
			if base != nil && !types.IsAnyLike(base) && !types.IsAnyLike(instance) && !c.in.IsAssignable(self, base) {
				c.report(n.Extends, diag.TypeMismatch, "Class '%s' incorrectly extends base class '%s'.", decl.Name, typeString(base))
			}
		}
		for _, impl := range n.Implements {
			t := c.typeFromNode(impl)
			if t == nil || types.IsAnyLike(t) {
				continue
			}
			if !c.in.IsAssignable(self, t) {
				c.report(impl, diag.TypeMismatch, "Class '%s' incorrectly implements interface '%s'.", decl.Name, typeString(t))
			}
		}
	})
}

// isAbstractConstruct reports whether sig constructs an abstract class of
// this module.
func (c *Checker) isAbstractConstruct(sig *types.Signature) bool {
	ref, ok := types.Deref(sig.Return).(*types.Ref)
	return ok && c.abstract.Contains(ref.Decl)
}
