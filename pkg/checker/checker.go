package checker

import (
	"errors"
	"fmt"

	set "github.com/hashicorp/go-set/v3"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/env"
	"github.com/nissy-dev/stc/pkg/passes"
	"github.com/nissy-dev/stc/pkg/types"
)

// ErrUnresolvedModule is returned by an Importer when a specifier does not
// resolve to a module.
var ErrUnresolvedModule = errors.New("unresolved module")

// Importer hands out the export table of the module a specifier refers to.
type Importer interface {
	Import(from, specifier string) (*Exports, error)
}

// ImporterFunc adapts a function to Importer.
type ImporterFunc func(from, specifier string) (*Exports, error)

func (f ImporterFunc) Import(from, specifier string) (*Exports, error) { return f(from, specifier) }

// InferenceMap records the type computed for each expression node.
type InferenceMap map[ast.Node]types.Type

func (m InferenceMap) set(node ast.Node, t types.Type) {
	if node == nil || t == nil {
		return
	}
	m[node] = t
}

func (m InferenceMap) get(node ast.Node) (types.Type, bool) {
	t, ok := m[node]
	return t, ok
}

// Module is the outcome of checking one module.
type Module struct {
	Path        string
	Scope       *binding.Scope
	Exports     *Exports
	Diagnostics []diag.Diagnostic

	types InferenceMap
}

// TypeOf returns the type computed for an expression of the module, or nil
// when the expression was never checked.
func (m *Module) TypeOf(expr ast.Expression) types.Type {
	if m == nil {
		return nil
	}
	t, _ := m.types.get(expr)
	return t
}

type reportKey struct {
	node    ast.Node
	kind    diag.Kind
	message string
}

// sink collects diagnostics. Speculative checks write to a scratch sink
// that is thrown away.
type sink struct {
	diags []diag.Diagnostic
	seen  *set.Set[reportKey]
}

func newSink() *sink {
	return &sink{seen: set.New[reportKey](16)}
}

type functionContext struct {
	declared    types.Type
	contextual  types.Type
	returns     []types.Type
	voidReturns int
	async       bool
	ctor        bool
}

type loopContext struct {
	breaks []*flowState
	isLoop bool
}

// Checker analyzes one module. It is not safe for concurrent use; the
// scheduler creates one per module task.
type Checker struct {
	env      *env.Environment
	in       *types.Interner
	importer Importer

	path          string
	noImplicitAny bool

	infer      InferenceMap
	scope      *binding.Scope
	flow       *flowState
	fn         *functionContext
	thisType   types.Type
	loops      []*loopContext
	sink       *sink
	main       *sink
	bound      *set.Set[*binding.Symbol]
	resolved   map[ast.Node]*types.Signature
	declSigs   map[ast.Node]*types.Signature
	classDecls map[*ast.ClassDeclaration]*types.Decl
	constDepth int
	deferDepth int

	classScopes   map[*ast.ClassDeclaration]*binding.Scope
	methodReturns map[*ast.MethodDeclaration]*types.Lazy
	abstract      *set.Set[*types.Decl]
	checked       *set.Set[ast.Node]
	sources       map[ast.Node]types.Type
	patterns      map[ast.Node]map[*ast.Identifier]types.Type
}

// New returns a checker for modules of e. imp may be nil, in which case
// every import is unresolved.
func New(e *env.Environment, imp Importer) *Checker {
	return &Checker{
		env:           e,
		in:            e.Interner(),
		importer:      imp,
		noImplicitAny: e.Options().NoImplicitAnyEnabled(),
	}
}

func (c *Checker) reset(path string) {
	c.path = path
	c.infer = make(InferenceMap)
	c.flow = newFlow()
	c.fn = nil
	c.thisType = nil
	c.loops = nil
	c.main = newSink()
	c.sink = c.main
	c.bound = set.New[*binding.Symbol](64)
	c.resolved = make(map[ast.Node]*types.Signature)
	c.declSigs = make(map[ast.Node]*types.Signature)
	c.classDecls = make(map[*ast.ClassDeclaration]*types.Decl)
	c.constDepth = 0
	c.deferDepth = 0
	c.classScopes = make(map[*ast.ClassDeclaration]*binding.Scope)
	c.methodReturns = make(map[*ast.MethodDeclaration]*types.Lazy)
	c.abstract = set.New[*types.Decl](4)
	c.checked = set.New[ast.Node](32)
	c.sources = make(map[ast.Node]types.Type)
	c.patterns = make(map[ast.Node]map[*ast.Identifier]types.Type)
}

// CheckModule checks mod, whose bindings were declared by the passes into
// pre. The returned module's symbols and export table are fully resolved
// and safe to share once the call returns.
func (c *Checker) CheckModule(mod *ast.Module, pre *passes.Result) (*Module, error) {
	if mod == nil {
		return nil, fmt.Errorf("checker: module is nil")
	}
	if pre == nil {
		pre = passes.Run(mod, "", c.env.GlobalScope())
	}
	c.reset(pre.Path)
	c.scope = pre.Scope
	for _, d := range pre.Diagnostics {
		c.addDiagnostic(d)
	}

	c.bindScope(c.scope, mod.Body)
	c.bindImports(mod.Imports())
	c.checkStatements(mod.Body)
	exports := c.buildExports(pre)
	c.publish(c.scope)
	exports.publish()

	return &Module{
		Path:        c.path,
		Scope:       pre.Scope,
		Exports:     exports,
		Diagnostics: c.main.diags,
		types:       c.infer,
	}, nil
}

func (c *Checker) addDiagnostic(d diag.Diagnostic) {
	if d.Message == "" {
		return
	}
	if d.Path == "" {
		d.Path = c.path
	}
	key := reportKey{kind: d.Kind, message: fmt.Sprintf("%d:%d:%s", d.Span.Start.Offset, d.Span.End.Offset, d.Message)}
	if !c.sink.seen.Insert(key) {
		return
	}
	c.sink.diags = append(c.sink.diags, d)
}

// report records a diagnostic at node. Reports of the same problem at the
// same node are collapsed, since declarations may be resolved on demand
// before their statement is reached.
func (c *Checker) report(node ast.Node, kind diag.Kind, format string, params ...string) {
	var span ast.Span
	if node != nil {
		span = node.Span()
	}
	d := diag.New(kind, span, format, params...)
	d.Path = c.path
	if !c.sink.seen.Insert(reportKey{node: node, kind: kind, message: d.Message}) {
		return
	}
	c.sink.diags = append(c.sink.diags, d)
}

// speculate runs fn against a scratch diagnostic sink and reports whether
// it produced no diagnostics.
func (c *Checker) speculate(fn func()) bool {
	prev := c.sink
	c.sink = newSink()
	defer func() { c.sink = prev }()
	fn()
	return len(c.sink.diags) == 0
}

// isolate runs fn in the lexical scope of a declaration, detached from the
// current flow, function and speculation state. Lazy resolvers run here so
// that their diagnostics land in the module's sink exactly once.
func (c *Checker) isolate(scope *binding.Scope, fn func()) {
	saved := struct {
		scope      *binding.Scope
		flow       *flowState
		fn         *functionContext
		this       types.Type
		loops      []*loopContext
		sink       *sink
		constDepth int
		deferDepth int
	}{c.scope, c.flow, c.fn, c.thisType, c.loops, c.sink, c.constDepth, c.deferDepth}
	c.scope = scope
	c.flow = newFlow()
	c.fn = nil
	c.thisType = nil
	c.loops = nil
	c.sink = c.main
	c.constDepth = 0
	c.deferDepth = 0
	defer func() {
		c.scope, c.flow, c.fn, c.thisType, c.loops, c.sink = saved.scope, saved.flow, saved.fn, saved.this, saved.loops, saved.sink
		c.constDepth, c.deferDepth = saved.constDepth, saved.deferDepth
	}()
	fn()
}

// withScope runs fn in a child scope of kind.
func (c *Checker) withScope(kind binding.ScopeKind, fn func(scope *binding.Scope)) {
	prev := c.scope
	c.scope = prev.Extend(kind)
	defer func() { c.scope = prev }()
	fn(c.scope)
}

// publish forces every lazily computed side of the symbols in scope so
// that dependents never run this module's resolvers.
func (c *Checker) publish(scope *binding.Scope) {
	for _, sym := range scope.Symbols() {
		if sym.HasValue() {
			sym.ValueType()
		}
		if sym.HasType() {
			sym.Type()
		}
		if d := sym.Decl(); d != nil {
			d.Body()
		}
	}
}

func (c *Checker) record(node ast.Node, t types.Type) types.Type {
	if t == nil {
		t = types.Fallback
	}
	c.infer.set(node, t)
	return t
}

func typeString(t types.Type) string {
	return types.TypeString(t)
}
