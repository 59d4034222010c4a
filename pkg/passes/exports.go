package passes

import (
	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
)

type ExportKind int

const (
	// ExportLocal exposes a binding of this module.
	ExportLocal ExportKind = iota
	// ExportReexport is `export { a as b } from "x"`.
	ExportReexport
	// ExportStar is `export * from "x"`.
	ExportStar
	// ExportDefault is `export default <expr>` or a default declaration.
	ExportDefault
)

// Export is one entry of a module's export list, in source order.
type Export struct {
	Kind     ExportKind
	Name     string
	Local    string
	From     string
	TypeOnly bool
	Node     ast.Node
}

func collectExports(mod *ast.Module, scope *binding.Scope, diags []diag.Diagnostic) ([]Export, []diag.Diagnostic) {
	var out []Export
	seen := make(map[string]Export)
	add := func(e Export, span ast.Span) {
		if e.Kind != ExportStar {
			if prev, ok := seen[e.Name]; ok {
				if prev.Kind == e.Kind && prev.Local == e.Local && prev.From == e.From {
					return
				}
				diags = append(diags, diag.New(diag.DuplicateIdentifier, span, "Module has already exported a member named '%s'.", e.Name))
				return
			}
			seen[e.Name] = e
		}
		out = append(out, e)
	}
	local := func(id *ast.Identifier, node ast.Node, def bool) {
		if id == nil {
			return
		}
		if def {
			add(Export{Kind: ExportDefault, Name: "default", Local: id.Name, Node: node}, id.Span())
			return
		}
		add(Export{Kind: ExportLocal, Name: id.Name, Local: id.Name, Node: node}, id.Span())
	}
	for _, stmt := range mod.Body {
		switch s := stmt.(type) {
		case *ast.VariableStatement:
			if s == nil || !s.Export {
				continue
			}
			for _, d := range s.Declarations {
				if d == nil {
					continue
				}
				for _, id := range ast.BoundNames(d.Name) {
					local(id, d, false)
				}
			}
		case *ast.FunctionDeclaration:
			if s != nil && s.Export {
				local(s.Name, s, s.Default)
			}
		case *ast.ClassDeclaration:
			if s != nil && s.Export {
				local(s.Name, s, s.Default)
			}
		case *ast.InterfaceDeclaration:
			if s != nil && s.Export {
				local(s.Name, s, false)
			}
		case *ast.TypeAliasDeclaration:
			if s != nil && s.Export {
				local(s.Name, s, false)
			}
		case *ast.EnumDeclaration:
			if s != nil && s.Export {
				local(s.Name, s, false)
			}
		case *ast.NamespaceDeclaration:
			if s != nil && s.Export {
				local(s.Name, s, false)
			}
		case *ast.ExportDefault:
			if s != nil {
				add(Export{Kind: ExportDefault, Name: "default", Node: s}, s.Span())
			}
		case *ast.ExportDeclaration:
			if s == nil {
				continue
			}
			if s.Star {
				add(Export{Kind: ExportStar, From: s.From, TypeOnly: s.TypeOnly, Node: s}, s.Span())
				continue
			}
			for _, spec := range s.Specifiers {
				if spec == nil || spec.Local == nil {
					continue
				}
				e := Export{Name: spec.ExportedName(), Local: spec.Local.Name, TypeOnly: s.TypeOnly, Node: spec}
				if s.From != "" {
					e.Kind = ExportReexport
					e.From = s.From
					add(e, spec.Span())
					continue
				}
				sym, ok := scope.LookupLocal(spec.Local.Name)
				if !ok {
					diags = append(diags, diag.New(diag.UnresolvedSymbol, spec.Local.Span(), "Cannot find name '%s'.", spec.Local.Name))
					continue
				}
				sym.Flags |= binding.FlagExported
				if e.Name == "default" {
					e.Kind = ExportDefault
				}
				add(e, spec.Span())
			}
		}
	}
	return out, diags
}

// Names returns the explicitly exported names (star re-exports excluded).
func (r *Result) Names() []string {
	var out []string
	for _, e := range r.Exports {
		if e.Kind != ExportStar {
			out = append(out, e.Name)
		}
	}
	return out
}
