// Package passes runs the cheap structural passes that precede checking:
// declaration hoisting, declaration merging and export collection. Nothing
// here computes types.
package passes

import (
	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
)

// Result is the output of Run for one module.
type Result struct {
	Path        string
	Scope       *binding.Scope
	Exports     []Export
	Specifiers  []string
	Diagnostics []diag.Diagnostic
}

// Run declares every module-level binding of mod in a fresh module scope
// whose parent is global, hoisting `var` declarations out of nested
// blocks, and collects the export list.
func Run(mod *ast.Module, path string, global *binding.Scope) *Result {
	res := &Result{Path: path, Scope: binding.NewScope(binding.ScopeModule, path, global)}
	if mod == nil {
		return res
	}
	res.Specifiers = mod.Specifiers()
	h := &hoister{path: path}
	h.declareStatements(res.Scope, mod.Body)
	res.Exports, h.diags = collectExports(mod, res.Scope, h.diags)
	res.Diagnostics = h.diags
	return res
}

// DeclareBlock declares the lexical bindings of a block or function body
// in scope. For a function scope, `var` declarations nested anywhere in
// the body are hoisted into it as well.
func DeclareBlock(scope *binding.Scope, body []ast.Statement) []diag.Diagnostic {
	h := &hoister{path: scope.Module}
	h.declareStatements(scope, body)
	return h.diags
}

// DeclareBinding declares every name bound by a pattern.
func DeclareBinding(scope *binding.Scope, name ast.BindingName, kind binding.DeclKind, node ast.Node) ([]*binding.Symbol, []diag.Diagnostic) {
	h := &hoister{path: scope.Module}
	syms := h.declarePattern(scope, name, kind, node, 0)
	return syms, h.diags
}

type hoister struct {
	path  string
	diags []diag.Diagnostic
}

func (h *hoister) declare(scope *binding.Scope, id *ast.Identifier, kind binding.DeclKind, node ast.Node, flags binding.Flags) *binding.Symbol {
	if id == nil || id.Name == "" {
		return nil
	}
	sym, conflict := scope.Declare(id.Name, binding.Site{Kind: kind, Node: node, Name: id})
	if conflict != nil {
		h.diags = append(h.diags, diag.New(diag.DuplicateIdentifier, id.Span(), "Duplicate identifier '%s'.", id.Name))
		return conflict
	}
	sym.Flags |= flags
	return sym
}

func (h *hoister) declarePattern(scope *binding.Scope, name ast.BindingName, kind binding.DeclKind, node ast.Node, flags binding.Flags) []*binding.Symbol {
	var out []*binding.Symbol
	for _, id := range ast.BoundNames(name) {
		if sym := h.declare(scope, id, kind, node, flags); sym != nil {
			out = append(out, sym)
		}
	}
	return out
}

func exportFlags(export, declare bool) binding.Flags {
	var f binding.Flags
	if export {
		f |= binding.FlagExported
	}
	if declare {
		f |= binding.FlagAmbient
	}
	return f
}

func varDeclKind(kind ast.VarKind) binding.DeclKind {
	switch kind {
	case ast.VarKindLet:
		return binding.DeclLet
	case ast.VarKindConst:
		return binding.DeclConst
	}
	return binding.DeclVar
}

func (h *hoister) declareStatements(scope *binding.Scope, body []ast.Statement) {
	for _, stmt := range body {
		h.declareStatement(scope, stmt)
	}
	if scope.FunctionScope() != scope {
		// nested blocks were hoisted by the enclosing function
		return
	}
	for _, stmt := range body {
		if _, ok := stmt.(*ast.VariableStatement); ok {
			continue
		}
		h.hoistVars(scope, stmt)
	}
}

func (h *hoister) declareStatement(scope *binding.Scope, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		if s == nil {
			return
		}
		kind := varDeclKind(s.Kind)
		if kind == binding.DeclVar && scope.FunctionScope() != scope {
			return
		}
		for _, d := range s.Declarations {
			if d == nil {
				continue
			}
			h.declarePattern(scope, d.Name, kind, d, exportFlags(s.Export, s.Declare))
		}
	case *ast.FunctionDeclaration:
		if s == nil {
			return
		}
		flags := exportFlags(s.Export, s.Declare)
		if s.Default {
			flags |= binding.FlagDefault
		}
		h.declare(scope, s.Name, binding.DeclFunction, s, flags)
	case *ast.ClassDeclaration:
		if s == nil {
			return
		}
		flags := exportFlags(s.Export, s.Declare)
		if s.Default {
			flags |= binding.FlagDefault
		}
		h.declare(scope, s.Name, binding.DeclClass, s, flags)
	case *ast.InterfaceDeclaration:
		if s == nil {
			return
		}
		h.declare(scope, s.Name, binding.DeclInterface, s, exportFlags(s.Export, s.Declare)|binding.FlagTypeOnly)
	case *ast.TypeAliasDeclaration:
		if s == nil {
			return
		}
		h.declare(scope, s.Name, binding.DeclTypeAlias, s, exportFlags(s.Export, s.Declare)|binding.FlagTypeOnly)
	case *ast.EnumDeclaration:
		if s == nil {
			return
		}
		h.declare(scope, s.Name, binding.DeclEnum, s, exportFlags(s.Export, s.Declare))
	case *ast.NamespaceDeclaration:
		if s == nil {
			return
		}
		h.declare(scope, s.Name, binding.DeclNamespace, s, exportFlags(s.Export, false))
	case *ast.ImportDeclaration:
		if s == nil {
			return
		}
		var flags binding.Flags
		if s.TypeOnly {
			flags |= binding.FlagTypeOnly
		}
		h.declare(scope, s.Default, binding.DeclImport, s, flags)
		h.declare(scope, s.Namespace, binding.DeclImport, s, flags)
		for _, spec := range s.Named {
			if spec == nil {
				continue
			}
			f := flags
			if spec.TypeOnly {
				f |= binding.FlagTypeOnly
			}
			h.declare(scope, spec.Local(), binding.DeclImport, spec, f)
		}
	}
}

// hoistVars finds `var` declarations nested in statements (but not in
// nested functions or classes) and declares them in target.
func (h *hoister) hoistVars(target *binding.Scope, stmt ast.Statement) {
	ast.Inspect(stmt, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.FunctionExpression, *ast.FunctionDeclaration, *ast.ClassDeclaration,
			*ast.ObjectMethod, *ast.MethodDeclaration, *ast.ConstructorDeclaration:
			return false
		case *ast.VariableStatement:
			if s != nil && s.Kind == ast.VarKindVar {
				for _, d := range s.Declarations {
					if d != nil {
						h.declarePattern(target, d.Name, binding.DeclVar, d, 0)
					}
				}
			}
			return false
		case *ast.ForOfStatement:
			if s != nil && s.Kind == ast.VarKindVar {
				h.declarePattern(target, s.Binding, binding.DeclVar, s, 0)
			}
		case *ast.ForInStatement:
			if s != nil && s.Kind == ast.VarKindVar {
				h.declarePattern(target, s.Binding, binding.DeclVar, s, 0)
			}
		}
		return true
	})
}
