// Package env builds the per-run environment: checker options, the type
// interner configured from them, and the global scope holding the selected
// standard library declarations. An Environment is immutable after New and
// is shared by every module task.
package env

import (
	set "github.com/hashicorp/go-set/v3"

	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/types"
)

type Environment struct {
	opts   Options
	in     *types.Interner
	global *binding.Scope
	decls  map[string]*types.Decl
}

// New validates opts and builds the environment.
func New(opts Options) (*Environment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	in := types.NewInterner(
		types.WithStrictNullChecks(opts.StrictNullChecksEnabled()),
		types.WithStrictFunctionTypes(opts.StrictFunctionTypesEnabled()),
	)
	e := &Environment{
		opts:   opts,
		in:     in,
		global: binding.NewScope(binding.ScopeGlobal, LibModule, nil),
		decls:  make(map[string]*types.Decl),
	}
	in.SetHost(e)
	b := &libBuilder{in: in, scope: e.global, decls: e.decls}
	buildLib(b, set.From(opts.Libs()))
	return e, nil
}

func (e *Environment) Options() Options           { return e.opts }
func (e *Environment) Interner() *types.Interner  { return e.in }
func (e *Environment) GlobalScope() *binding.Scope { return e.global }

// LookupGlobal finds a library symbol by name.
func (e *Environment) LookupGlobal(name string) (*binding.Symbol, bool) {
	return e.global.LookupLocal(name)
}

// Decl returns a library type declaration by name.
func (e *Environment) Decl(name string) (*types.Decl, bool) {
	d, ok := e.decls[name]
	return d, ok
}

// Ref instantiates a library declaration, or returns nil when the
// selected libraries do not declare it.
func (e *Environment) Ref(name string, args ...types.Type) types.Type {
	d, ok := e.decls[name]
	if !ok {
		return nil
	}
	return e.in.Ref(d, args...)
}

// Promise returns Promise<t>, or t itself when es2015 is not selected.
func (e *Environment) Promise(t types.Type) types.Type {
	if p := e.Ref("Promise", t); p != nil {
		return p
	}
	return t
}

// Awaited unwraps one level of Promise.
func (e *Environment) Awaited(t types.Type) types.Type {
	d, ok := e.decls["Promise"]
	if !ok {
		return t
	}
	var out []types.Type
	for _, m := range types.Members(t) {
		if r, ok := types.Deref(m).(*types.Ref); ok && r.Decl == d && len(r.Args) == 1 {
			out = append(out, r.Args[0])
			continue
		}
		out = append(out, m)
	}
	return e.in.Union(out...)
}

// Apparent implements types.Host: primitives, arrays, tuples and
// functions are looked up through their library interfaces.
func (e *Environment) Apparent(t types.Type) types.Type {
	switch x := types.Deref(t).(type) {
	case *types.Intrinsic:
		switch x.Kind() {
		case types.KindString:
			return e.Ref("String")
		case types.KindNumber:
			return e.Ref("Number")
		case types.KindBigInt:
			return e.Ref("BigInt")
		case types.KindSymbol:
			return e.Ref("Symbol")
		case types.KindNonPrimitive:
			return e.Ref("Object")
		}
	case *types.Literal:
		switch x.LitKind {
		case types.LitString:
			return e.Ref("String")
		case types.LitNumber:
			return e.Ref("Number")
		case types.LitBigInt:
			return e.Ref("BigInt")
		default:
			return e.Ref("Boolean")
		}
	case *types.EnumMember:
		return e.Apparent(x.Value)
	case *types.Array:
		if x.Readonly {
			return e.Ref("ReadonlyArray", x.Elem)
		}
		return e.Ref("Array", x.Elem)
	case *types.Tuple:
		elem := e.in.ElementType(x)
		if x.Readonly {
			return e.Ref("ReadonlyArray", elem)
		}
		return e.Ref("Array", elem)
	case *types.Function:
		return e.Ref("Function")
	case *types.Object:
		if len(x.Calls) > 0 || len(x.Constructs) > 0 {
			return e.Ref("Function")
		}
		return e.Ref("Object")
	}
	return nil
}
