package binding

import (
	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/types"
)

// DeclKind classifies one declaration site of a symbol.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
	DeclParam
	DeclFunction
	DeclClass
	DeclInterface
	DeclTypeAlias
	DeclEnum
	DeclNamespace
	DeclImport
	DeclTypeParam
	DeclLib
)

var declKindNames = [...]string{
	DeclVar:       "var",
	DeclLet:       "let",
	DeclConst:     "const",
	DeclParam:     "parameter",
	DeclFunction:  "function",
	DeclClass:     "class",
	DeclInterface: "interface",
	DeclTypeAlias: "type alias",
	DeclEnum:      "enum",
	DeclNamespace: "namespace",
	DeclImport:    "import",
	DeclTypeParam: "type parameter",
	DeclLib:       "library declaration",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return "declaration"
}

// HasValue reports whether declarations of this kind introduce a value.
func (k DeclKind) HasValue() bool {
	switch k {
	case DeclInterface, DeclTypeAlias, DeclTypeParam:
		return false
	}
	return true
}

// HasType reports whether declarations of this kind introduce a type.
func (k DeclKind) HasType() bool {
	switch k {
	case DeclClass, DeclInterface, DeclTypeAlias, DeclEnum, DeclTypeParam, DeclImport, DeclNamespace, DeclLib:
		return true
	}
	return false
}

// Flags carry per-symbol modifiers.
type Flags uint16

const (
	FlagConst Flags = 1 << iota
	FlagReadonly
	FlagTypeOnly
	FlagExported
	FlagAmbient
	FlagDefault
)

// Site is one declaration of a symbol.
type Site struct {
	Kind DeclKind
	Node ast.Node
	Name *ast.Identifier
}

// Span returns the span of the declared name, or of the node when the
// site has no name.
func (s Site) Span() ast.Span {
	if s.Name != nil {
		return s.Name.Span()
	}
	if s.Node != nil {
		return s.Node.Span()
	}
	return ast.Span{}
}

const (
	resolveIdle = iota
	resolveBusy
	resolveDone
)

// Symbol is a named entity. Declarations that legally merge (interfaces,
// overloads, namespaces) share one symbol with several sites. The value
// and type sides are filled in by the checker, usually lazily through a
// resolver so that hoisted uses see the declared type.
type Symbol struct {
	Name   string
	Module string
	Sites  []Site
	Flags  Flags
	Scope  *Scope

	// Members holds the exported members of a namespace or a namespace
	// import.
	Members map[string]*Symbol

	valueType     types.Type
	valueResolver func() types.Type
	valueState    int
	circular      bool

	typeSide     types.Type
	typeResolver func() types.Type
	typeState    int
	decl         *types.Decl
}

func NewSymbol(name, module string) *Symbol {
	return &Symbol{Name: name, Module: module}
}

// AddSite records another declaration of the symbol.
func (s *Symbol) AddSite(site Site) {
	s.Sites = append(s.Sites, site)
	switch site.Kind {
	case DeclConst:
		s.Flags |= FlagConst
	case DeclImport:
		// imports are read-only bindings
		s.Flags |= FlagReadonly
	}
}

func (s *Symbol) Has(flag Flags) bool { return s.Flags&flag != 0 }

// Kinds lists the distinct kinds among the sites, in declaration order.
func (s *Symbol) Kinds() []DeclKind {
	var out []DeclKind
	seen := map[DeclKind]bool{}
	for _, site := range s.Sites {
		if !seen[site.Kind] {
			seen[site.Kind] = true
			out = append(out, site.Kind)
		}
	}
	return out
}

// Is reports whether any site has kind k.
func (s *Symbol) Is(k DeclKind) bool {
	for _, site := range s.Sites {
		if site.Kind == k {
			return true
		}
	}
	return false
}

// First returns the first declaration site.
func (s *Symbol) First() Site {
	if len(s.Sites) == 0 {
		return Site{}
	}
	return s.Sites[0]
}

// HasValue reports whether the symbol can be used as an expression.
func (s *Symbol) HasValue() bool {
	if s.valueType != nil || s.valueResolver != nil {
		return true
	}
	for _, site := range s.Sites {
		if site.Kind.HasValue() && site.Kind != DeclImport {
			return true
		}
	}
	return false
}

// HasType reports whether the symbol can be used in a type position.
func (s *Symbol) HasType() bool {
	if s.typeSide != nil || s.typeResolver != nil || s.decl != nil {
		return true
	}
	for _, site := range s.Sites {
		if site.Kind.HasType() && site.Kind != DeclImport {
			return true
		}
	}
	return false
}

// SetValueType publishes the value type directly.
func (s *Symbol) SetValueType(t types.Type) {
	s.valueType = t
	s.valueState = resolveDone
}

// SetValueResolver installs the function computing the value type on
// first use.
func (s *Symbol) SetValueResolver(fn func() types.Type) {
	s.valueResolver = fn
}

// ValueType returns the declared or inferred type of the value side. A
// resolver that re-enters itself yields Fallback and marks the symbol
// circular.
func (s *Symbol) ValueType() types.Type {
	switch s.valueState {
	case resolveDone:
		return s.valueType
	case resolveBusy:
		s.circular = true
		return types.Fallback
	}
	if s.valueResolver == nil {
		return nil
	}
	s.valueState = resolveBusy
	t := s.valueResolver()
	if s.valueState == resolveBusy {
		if t == nil {
			t = types.Fallback
		}
		s.valueType = t
		s.valueState = resolveDone
	}
	return s.valueType
}

// ValueResolved reports whether the value type has been computed.
func (s *Symbol) ValueResolved() bool { return s.valueState == resolveDone }

// Circular reports whether value resolution re-entered itself.
func (s *Symbol) Circular() bool { return s.circular }

// SetType publishes the type side (a type parameter, an alias body or a
// reference to a declaration).
func (s *Symbol) SetType(t types.Type) {
	s.typeSide = t
	s.typeState = resolveDone
}

func (s *Symbol) SetTypeResolver(fn func() types.Type) {
	s.typeResolver = fn
}

// Type returns the type side, resolving it if needed.
func (s *Symbol) Type() types.Type {
	switch s.typeState {
	case resolveDone:
		return s.typeSide
	case resolveBusy:
		return types.Fallback
	}
	if s.typeResolver == nil {
		return nil
	}
	s.typeState = resolveBusy
	t := s.typeResolver()
	if s.typeState == resolveBusy {
		s.typeSide = t
		s.typeState = resolveDone
	}
	return s.typeSide
}

// SetDecl attaches the named type declaration (interface, class, enum or
// alias) backing the type side.
func (s *Symbol) SetDecl(d *types.Decl) { s.decl = d }

func (s *Symbol) Decl() *types.Decl { return s.decl }

// Member looks up an exported member of a namespace-like symbol.
func (s *Symbol) Member(name string) (*Symbol, bool) {
	if s.Members == nil {
		return nil, false
	}
	m, ok := s.Members[name]
	return m, ok
}

// Alias copies the resolved sides of target into s. Used to bind an
// import to the exporting module's symbol.
func (s *Symbol) Alias(target *Symbol) {
	if target == nil {
		return
	}
	if target.HasValue() {
		s.SetValueResolver(target.ValueType)
	}
	if target.HasType() {
		s.SetTypeResolver(target.Type)
		s.decl = target.decl
	}
	if target.Members != nil {
		s.Members = target.Members
	}
	if target.Has(FlagTypeOnly) {
		s.Flags |= FlagTypeOnly
	}
	for _, site := range target.Sites {
		if site.Kind == DeclClass || site.Kind == DeclEnum || site.Kind == DeclNamespace {
			s.Sites = append(s.Sites, Site{Kind: site.Kind, Node: site.Node})
		}
	}
}
