package binding

// ScopeKind tags the construct that opened a scope.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeBlock
	ScopeClass
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeClass:
		return "class"
	}
	return "scope"
}

// Scope maps names to symbols and links to its lexical parent. Scopes are
// owned by one module; the global scope is shared read-only.
type Scope struct {
	Kind    ScopeKind
	Module  string
	parent  *Scope
	symbols map[string]*Symbol
	order   []string
}

func NewScope(kind ScopeKind, module string, parent *Scope) *Scope {
	return &Scope{Kind: kind, Module: module, parent: parent, symbols: make(map[string]*Symbol)}
}

// Extend opens a child scope of the given kind.
func (s *Scope) Extend(kind ScopeKind) *Scope {
	return NewScope(kind, s.Module, s)
}

func (s *Scope) Parent() *Scope { return s.parent }

// Declare adds a declaration site for name. When the name already exists
// in this scope and the new site merges with it, the existing symbol gains
// the site. Otherwise the existing symbol is returned as the conflict and
// the scope is left unchanged.
func (s *Scope) Declare(name string, site Site) (sym *Symbol, conflict *Symbol) {
	if existing, ok := s.symbols[name]; ok {
		if !CanMerge(existing.Kinds(), site.Kind) {
			return nil, existing
		}
		existing.AddSite(site)
		return existing, nil
	}
	sym = NewSymbol(name, s.Module)
	sym.Scope = s
	sym.AddSite(site)
	s.Insert(sym)
	return sym, nil
}

// Insert binds an already constructed symbol, replacing any previous one.
func (s *Scope) Insert(sym *Symbol) {
	if _, ok := s.symbols[sym.Name]; !ok {
		s.order = append(s.order, sym.Name)
	}
	s.symbols[sym.Name] = sym
}

// LookupLocal finds name in this scope only.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Lookup walks the parent chain.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupValue walks the parent chain skipping symbols that only name a
// type.
func (s *Scope) LookupValue(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok && sym.HasValue() {
			return sym, true
		}
	}
	return nil, false
}

// LookupType walks the parent chain skipping value-only symbols.
func (s *Scope) LookupType(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok && sym.HasType() {
			return sym, true
		}
	}
	return nil, false
}

// Names returns the declared names in first-declaration order.
func (s *Scope) Names() []string {
	return append([]string(nil), s.order...)
}

// Symbols returns the symbols in first-declaration order.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.symbols[name])
	}
	return out
}

func (s *Scope) Len() int { return len(s.symbols) }

// FunctionScope returns the nearest enclosing function, module or global
// scope; `var` declarations hoist there.
func (s *Scope) FunctionScope() *Scope {
	cur := s
	for cur.parent != nil && cur.Kind != ScopeFunction && cur.Kind != ScopeModule {
		cur = cur.parent
	}
	return cur
}

// CanMerge reports whether a declaration of kind next may share a name
// with existing declarations of the given kinds in one scope.
func CanMerge(existing []DeclKind, next DeclKind) bool {
	for _, k := range existing {
		if !pairMerges(k, next) {
			return false
		}
	}
	return true
}

func pairMerges(a, b DeclKind) bool {
	if a > b {
		a, b = b, a
	}
	switch {
	case a == DeclTypeParam || b == DeclTypeParam:
		return false
	case a == DeclImport || b == DeclImport:
		return false
	case a == b:
		switch a {
		case DeclVar, DeclFunction, DeclInterface, DeclEnum, DeclNamespace, DeclLib:
			return true
		}
		return false
	case b == DeclInterface || b == DeclTypeAlias:
		if a == DeclClass && b == DeclInterface {
			return true
		}
		// a pure type may share its name with a value that declares no type
		return !a.HasType()
	case a == DeclVar && b == DeclParam:
		return true
	case b == DeclNamespace:
		return a == DeclFunction || a == DeclClass || a == DeclEnum || a == DeclInterface
	}
	return false
}
