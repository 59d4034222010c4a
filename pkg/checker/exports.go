package checker

import (
	"errors"
	"sort"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/passes"
	"github.com/nissy-dev/stc/pkg/types"
)

// Exports is a module's export table. The table of a module that is still
// being analyzed further up an import cycle is a placeholder: Lookup then
// answers unknown names through the placeholder function, whose symbols
// carry lazy types resolved once the cycle completes.
type Exports struct {
	Path      string
	Symbols   map[string]*binding.Symbol
	Namespace *types.Namespace

	placeholder func(name string) *binding.Symbol
}

func NewExports(path string, ns *types.Namespace) *Exports {
	return &Exports{Path: path, Symbols: make(map[string]*binding.Symbol), Namespace: ns}
}

// NewPlaceholderExports builds the table handed to a module that imports
// path while path is still in progress. names are the exports the passes
// already know about; other names are created on demand by lookup.
func NewPlaceholderExports(path string, ns *types.Namespace, names []string, lookup func(name string) *binding.Symbol) *Exports {
	e := NewExports(path, ns)
	e.placeholder = lookup
	for _, name := range names {
		e.Symbols[name] = lookup(name)
	}
	return e
}

// IsPlaceholder reports whether the table stands in for an unfinished
// module.
func (e *Exports) IsPlaceholder() bool {
	return e != nil && e.placeholder != nil
}

// Lookup finds an exported symbol by name.
func (e *Exports) Lookup(name string) (*binding.Symbol, bool) {
	if e == nil {
		return nil, false
	}
	if sym, ok := e.Symbols[name]; ok {
		return sym, true
	}
	if e.placeholder != nil {
		return e.placeholder(name), true
	}
	return nil, false
}

// Names returns the exported names in sorted order.
func (e *Exports) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Symbols))
	for name := range e.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Types maps each export to its type: the value side when the export has
// one, otherwise its type side.
func (e *Exports) Types() map[string]types.Type {
	if e == nil {
		return nil
	}
	out := make(map[string]types.Type, len(e.Symbols))
	for name, sym := range e.Symbols {
		if t := exportType(sym); t != nil {
			out[name] = t
		}
	}
	return out
}

func exportType(sym *binding.Symbol) types.Type {
	if sym == nil {
		return nil
	}
	if sym.HasValue() {
		if t := sym.ValueType(); t != nil {
			return t
		}
	}
	if sym.HasType() {
		return sym.Type()
	}
	return nil
}

// publish fills the namespace object with the value exports.
func (e *Exports) publish() {
	if e == nil || e.Namespace == nil {
		return
	}
	values := make(map[string]types.Type, len(e.Symbols))
	for name, sym := range e.Symbols {
		if sym != nil && sym.HasValue() {
			if t := sym.ValueType(); t != nil {
				values[name] = t
			}
		}
	}
	e.Namespace.SetExports(values)
}

// importExports asks the importer for the module behind specifier,
// reporting an unresolved module once per referencing node.
func (c *Checker) importExports(specifier string, node ast.Node) *Exports {
	if c.importer == nil {
		c.report(node, diag.UnresolvedModule, "Cannot find module '%s' or its corresponding type declarations.", specifier)
		return nil
	}
	exports, err := c.importer.Import(c.path, specifier)
	if err != nil {
		if errors.Is(err, ErrUnresolvedModule) {
			c.report(node, diag.UnresolvedModule, "Cannot find module '%s' or its corresponding type declarations.", specifier)
		} else {
			c.report(node, diag.UnresolvedModule, "Cannot load module '%s': %s", specifier, err.Error())
		}
		return nil
	}
	return exports
}

func (c *Checker) fallbackSymbol(name string) *binding.Symbol {
	sym := binding.NewSymbol(name, c.path)
	sym.SetValueType(types.Fallback)
	sym.SetType(types.Fallback)
	return sym
}

func setFallback(sym *binding.Symbol) {
	sym.SetValueType(types.Fallback)
	sym.SetType(types.Fallback)
}

// bindImports links every import binding of the module to the exporting
// module's symbol. Failed imports bind to the fallback type so that uses
// do not cascade into further diagnostics.
func (c *Checker) bindImports(imports []*ast.ImportDeclaration) {
	for _, imp := range imports {
		exports := c.importExports(imp.Specifier, imp)
		local := func(id *ast.Identifier) *binding.Symbol {
			if id == nil {
				return nil
			}
			sym, ok := c.scope.LookupLocal(id.Name)
			if !ok || !sym.Is(binding.DeclImport) || c.bound.Contains(sym) {
				return nil
			}
			c.bound.Insert(sym)
			return sym
		}
		bind := func(id *ast.Identifier, name string, node ast.Node) {
			sym := local(id)
			if sym == nil {
				return
			}
			if exports == nil {
				setFallback(sym)
				return
			}
			target, ok := exports.Lookup(name)
			if !ok {
				if name == "default" {
					c.report(node, diag.UnresolvedSymbol, "Module '%s' has no default export.", imp.Specifier)
				} else {
					c.report(node, diag.UnresolvedSymbol, "Module '%s' has no exported member '%s'.", imp.Specifier, name)
				}
				setFallback(sym)
				return
			}
			sym.Alias(target)
		}
		bind(imp.Default, "default", imp)
		if sym := local(imp.Namespace); sym != nil {
			if exports == nil {
				setFallback(sym)
			} else {
				sym.SetValueType(exports.Namespace)
				sym.Members = exports.Symbols
			}
		}
		for _, spec := range imp.Named {
			if spec == nil || spec.Name == nil {
				continue
			}
			bind(spec.Local(), spec.Name.Name, spec)
		}
	}
}

// buildExports assembles the module's export table from the export list
// collected by the passes.
func (c *Checker) buildExports(pre *passes.Result) *Exports {
	exp := NewExports(c.path, c.in.Namespace(c.path))
	var stars []passes.Export
	for _, e := range pre.Exports {
		switch e.Kind {
		case passes.ExportLocal:
			if sym, ok := c.scope.LookupLocal(e.Local); ok {
				exp.Symbols[e.Name] = sym
			}
		case passes.ExportDefault:
			if e.Local != "" {
				if sym, ok := c.scope.LookupLocal(e.Local); ok {
					exp.Symbols[e.Name] = sym
				}
				continue
			}
			sym := binding.NewSymbol("default", c.path)
			sym.AddSite(binding.Site{Kind: binding.DeclConst, Node: e.Node})
			t := types.Type(types.Fallback)
			if def, ok := e.Node.(*ast.ExportDefault); ok {
				if got, ok := c.infer.get(def.Expression); ok {
					t = c.in.Widen(got)
				}
			}
			sym.SetValueType(t)
			exp.Symbols[e.Name] = sym
		case passes.ExportReexport:
			target := c.importExports(e.From, e.Node)
			if target == nil {
				exp.Symbols[e.Name] = c.fallbackSymbol(e.Name)
				continue
			}
			sym, ok := target.Lookup(e.Local)
			if !ok {
				c.report(e.Node, diag.UnresolvedSymbol, "Module '%s' has no exported member '%s'.", e.From, e.Local)
				sym = c.fallbackSymbol(e.Name)
			}
			exp.Symbols[e.Name] = sym
		case passes.ExportStar:
			stars = append(stars, e)
		}
	}
	for _, e := range stars {
		target := c.importExports(e.From, e.Node)
		if target == nil {
			continue
		}
		for _, name := range target.Names() {
			if name == "default" {
				continue
			}
			if _, taken := exp.Symbols[name]; taken {
				continue
			}
			sym, _ := target.Lookup(name)
			exp.Symbols[name] = sym
		}
	}
	return exp
}
