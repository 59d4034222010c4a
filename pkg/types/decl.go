package types

import (
	"sync/atomic"
)

type DeclKind int

const (
	DeclAlias DeclKind = iota
	DeclInterface
	DeclClass
	DeclEnum
)

func (k DeclKind) String() string {
	switch k {
	case DeclAlias:
		return "type alias"
	case DeclInterface:
		return "interface"
	case DeclClass:
		return "class"
	case DeclEnum:
		return "enum"
	}
	return "declaration"
}

const (
	declIdle int32 = iota
	declResolving
	declDone
)

// Decl is a named type declaration: an alias, interface, class or enum.
// The body is resolved on first use through the resolver installed by the
// declaring checker, which also detects self-referential aliases.
type Decl struct {
	id     uint64
	Name   string
	Module string
	Kind   DeclKind
	Params []*TypeParam

	body     atomic.Pointer[lazyTarget]
	static   atomic.Pointer[lazyTarget]
	resolver func() Type
	state    atomic.Int32
	circular atomic.Bool
}

func (d *Decl) ID() uint64 { return d.id }

// SetResolver installs the function computing the body on demand.
func (d *Decl) SetResolver(fn func() Type) {
	d.resolver = fn
}

// SetBody publishes the body directly.
func (d *Decl) SetBody(t Type) {
	d.body.Store(&lazyTarget{t: t})
	d.state.Store(declDone)
}

// Body returns the declaration body, resolving it if necessary. A
// re-entrant request while the body is being computed marks the
// declaration circular and yields Fallback.
func (d *Decl) Body() Type {
	if p := d.body.Load(); p != nil {
		return p.t
	}
	if d.resolver == nil {
		return Fallback
	}
	if !d.state.CompareAndSwap(declIdle, declResolving) {
		if d.state.Load() == declResolving {
			d.circular.Store(true)
		}
		if p := d.body.Load(); p != nil {
			return p.t
		}
		return Fallback
	}
	t := d.resolver()
	if t == nil {
		t = Fallback
	}
	d.body.Store(&lazyTarget{t: t})
	d.state.Store(declDone)
	return t
}

// Resolving reports whether the body is currently being computed.
func (d *Decl) Resolving() bool {
	return d.state.Load() == declResolving
}

// Resolved reports whether the body has been published.
func (d *Decl) Resolved() bool {
	return d.body.Load() != nil
}

// Circular reports whether body resolution re-entered itself.
func (d *Decl) Circular() bool {
	return d.circular.Load()
}

// SetStatic publishes the value-side type of a class (its constructor) or
// enum (its member object).
func (d *Decl) SetStatic(t Type) {
	d.static.Store(&lazyTarget{t: t})
}

func (d *Decl) Static() Type {
	if p := d.static.Load(); p != nil {
		return p.t
	}
	return nil
}
