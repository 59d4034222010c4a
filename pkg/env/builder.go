package env

import (
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/types"
)

// LibModule is the module name recorded on library symbols and
// declarations.
const LibModule = "lib"

// libBuilder writes library declarations straight into the global scope.
type libBuilder struct {
	in    *types.Interner
	scope *binding.Scope
	decls map[string]*types.Decl
}

func (b *libBuilder) symbol(name string) *binding.Symbol {
	if sym, ok := b.scope.LookupLocal(name); ok {
		return sym
	}
	sym, _ := b.scope.Declare(name, binding.Site{Kind: binding.DeclLib})
	sym.Flags |= binding.FlagAmbient
	return sym
}

// iface declares a generic interface and returns it with its parameters.
// The body is published by the caller with SetBody.
func (b *libBuilder) iface(name string, params ...string) (*types.Decl, []*types.TypeParam) {
	tps := make([]*types.TypeParam, len(params))
	for i, p := range params {
		tps[i] = b.in.NewTypeParam(p)
	}
	decl := b.in.NewDecl(name, LibModule, types.DeclInterface, tps)
	b.decls[name] = decl
	sym := b.symbol(name)
	sym.SetDecl(decl)
	args := make([]types.Type, len(tps))
	for i, tp := range tps {
		args[i] = tp
	}
	sym.SetType(b.in.Ref(decl, args...))
	return decl, tps
}

// alias declares a generic type alias whose body is built from its
// parameters.
func (b *libBuilder) alias(name string, params []string, body func(tps []*types.TypeParam) types.Type) {
	tps := make([]*types.TypeParam, len(params))
	for i, p := range params {
		tps[i] = b.in.NewTypeParam(p)
	}
	decl := b.in.NewDecl(name, LibModule, types.DeclAlias, tps)
	b.decls[name] = decl
	decl.SetBody(body(tps))
	sym := b.symbol(name)
	sym.SetDecl(decl)
	sym.SetTypeResolver(decl.Body)
}

// value declares a global value.
func (b *libBuilder) value(name string, t types.Type) {
	b.symbol(name).SetValueType(t)
}

func (b *libBuilder) object(props ...types.Property) *types.Object {
	return b.in.Object(types.ObjectShape{Props: props})
}

func (b *libBuilder) fn(sigs ...*types.Signature) types.Type {
	return b.in.Function(sigs...)
}

// extend adds members to an interface declared by an earlier library set.
func (b *libBuilder) extend(name string, props ...types.Property) {
	decl, ok := b.decls[name]
	if !ok {
		return
	}
	base, ok := decl.Body().(*types.Object)
	if !ok {
		return
	}
	merged := append(append([]types.Property(nil), base.Props...), props...)
	decl.SetBody(b.in.Object(types.ObjectShape{Props: merged, Calls: base.Calls, Constructs: base.Constructs, Index: base.Index}))
}

func prop(name string, t types.Type) types.Property {
	return types.Property{Name: name, Type: t}
}

func roProp(name string, t types.Type) types.Property {
	return types.Property{Name: name, Type: t, Readonly: true}
}

func (b *libBuilder) method(name string, sigs ...*types.Signature) types.Property {
	for _, s := range sigs {
		s.Method = true
	}
	return types.Property{Name: name, Type: b.in.Function(sigs...), Method: true}
}

func sig(ret types.Type, params ...types.Param) *types.Signature {
	return &types.Signature{Params: params, Return: ret}
}

func gsig(tps []*types.TypeParam, ret types.Type, params ...types.Param) *types.Signature {
	return &types.Signature{TypeParams: tps, Params: params, Return: ret}
}

func param(name string, t types.Type) types.Param {
	return types.Param{Name: name, Type: t}
}

func optParam(name string, t types.Type) types.Param {
	return types.Param{Name: name, Type: t, Optional: true}
}

func restParam(name string, t types.Type) types.Param {
	return types.Param{Name: name, Type: t, Rest: true}
}

// body publishes an interface body made of props.
func (b *libBuilder) body(decl *types.Decl, props ...types.Property) {
	decl.SetBody(b.in.Object(types.ObjectShape{Props: props}))
}
