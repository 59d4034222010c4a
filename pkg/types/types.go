package types

import (
	"sort"
	"sync/atomic"
)

// Kind tags every member of the closed Type variant set.
type Kind int

const (
	KindAny Kind = iota
	KindUnknown
	KindNever
	KindVoid
	KindUndefined
	KindNull
	KindString
	KindNumber
	KindBigInt
	KindSymbol
	KindNonPrimitive
	KindLiteral
	KindUnion
	KindIntersection
	KindObject
	KindFunction
	KindTuple
	KindArray
	KindTypeParam
	KindRef
	KindConditional
	KindMapped
	KindIndexed
	KindKeyOf
	KindEnumMember
	KindNamespace
	KindLazy
)

var kindNames = [...]string{
	KindAny:          "any",
	KindUnknown:      "unknown",
	KindNever:        "never",
	KindVoid:         "void",
	KindUndefined:    "undefined",
	KindNull:         "null",
	KindString:       "string",
	KindNumber:       "number",
	KindBigInt:       "bigint",
	KindSymbol:       "symbol",
	KindNonPrimitive: "object",
	KindLiteral:      "literal",
	KindUnion:        "union",
	KindIntersection: "intersection",
	KindObject:       "object-type",
	KindFunction:     "function",
	KindTuple:        "tuple",
	KindArray:        "array",
	KindTypeParam:    "type-parameter",
	KindRef:          "reference",
	KindConditional:  "conditional",
	KindMapped:       "mapped",
	KindIndexed:      "indexed-access",
	KindKeyOf:        "keyof",
	KindEnumMember:   "enum-member",
	KindNamespace:    "namespace",
	KindLazy:         "lazy",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Type is a canonical, interned type handle. Two handles are equal iff the
// types they denote are structurally equal after normalization. Handles are
// only produced by an Interner (or are one of the package intrinsics).
type Type interface {
	Kind() Kind
	ID() uint64
	String() string
	isType()
}

type base struct {
	id uint64
}

func (b *base) ID() uint64 { return b.id }
func (*base) isType()      {}

// Intrinsic covers the keyword types.
type Intrinsic struct {
	base
	kind Kind
	name string
}

func (t *Intrinsic) Kind() Kind   { return t.kind }
func (t *Intrinsic) Name() string { return t.name }

var (
	Any          = &Intrinsic{base{1}, KindAny, "any"}
	Unknown      = &Intrinsic{base{2}, KindUnknown, "unknown"}
	Never        = &Intrinsic{base{3}, KindNever, "never"}
	Void         = &Intrinsic{base{4}, KindVoid, "void"}
	Undefined    = &Intrinsic{base{5}, KindUndefined, "undefined"}
	Null         = &Intrinsic{base{6}, KindNull, "null"}
	String       = &Intrinsic{base{7}, KindString, "string"}
	Number       = &Intrinsic{base{8}, KindNumber, "number"}
	BigInt       = &Intrinsic{base{9}, KindBigInt, "bigint"}
	Symbol       = &Intrinsic{base{10}, KindSymbol, "symbol"}
	NonPrimitive = &Intrinsic{base{11}, KindNonPrimitive, "object"}

	// Fallback is substituted wherever checking failed. It prints as
	// unknown but relates like any so one error does not cascade.
	Fallback = &Intrinsic{base{12}, KindAny, "unknown"}

	True    = &Literal{base: base{13}, LitKind: LitBoolean, Bool: true}
	False   = &Literal{base: base{14}, LitKind: LitBoolean, Bool: false}
	Boolean = &Union{base: base{15}, Members: []Type{True, False}}
)

const firstDynamicID = 100

// IsFallback reports whether t is the error-recovery type.
func IsFallback(t Type) bool { return t == Type(Fallback) }

// IsAnyLike reports whether t relates like any.
func IsAnyLike(t Type) bool {
	t = Deref(t)
	return t != nil && t.Kind() == KindAny
}

type LiteralKind int

const (
	LitString LiteralKind = iota
	LitNumber
	LitBigInt
	LitBoolean
)

// Literal is a value-carrying singleton type. BigInt digits live in Str.
type Literal struct {
	base
	LitKind LiteralKind
	Str     string
	Num     float64
	Bool    bool
}

func (*Literal) Kind() Kind { return KindLiteral }

// Base returns the primitive the literal widens to.
func (t *Literal) Base() Type {
	switch t.LitKind {
	case LitString:
		return String
	case LitNumber:
		return Number
	case LitBigInt:
		return BigInt
	default:
		return Boolean
	}
}

// Value returns the literal's Go value.
func (t *Literal) Value() any {
	switch t.LitKind {
	case LitString, LitBigInt:
		return t.Str
	case LitNumber:
		return t.Num
	default:
		return t.Bool
	}
}

// Union members are flattened, deduplicated and ordered by ID.
type Union struct {
	base
	Members []Type
}

func (*Union) Kind() Kind { return KindUnion }

type Intersection struct {
	base
	Members []Type
}

func (*Intersection) Kind() Kind { return KindIntersection }

type Property struct {
	Name     string
	Type     Type
	Optional bool
	Readonly bool
	// Method marks members declared with method syntax; their parameters
	// are compared bivariantly.
	Method bool
}

type IndexInfo struct {
	Key      Type // String or Number
	Type     Type
	Readonly bool
}

// Object is a structural object type. Props are sorted by name.
type Object struct {
	base
	Props      []Property
	Calls      []*Signature
	Constructs []*Signature
	Index      []IndexInfo
}

func (*Object) Kind() Kind { return KindObject }

// Prop looks up a declared property by name.
func (t *Object) Prop(name string) (Property, bool) {
	i := sort.Search(len(t.Props), func(i int) bool { return t.Props[i].Name >= name })
	if i < len(t.Props) && t.Props[i].Name == name {
		return t.Props[i], true
	}
	return Property{}, false
}

// IndexFor returns the index signature for key kind String or Number.
func (t *Object) IndexFor(key Type) (IndexInfo, bool) {
	for _, info := range t.Index {
		if info.Key == key {
			return info, true
		}
	}
	return IndexInfo{}, false
}

type Param struct {
	Name     string
	Type     Type
	Optional bool
	// Rest parameters carry an array or tuple type.
	Rest bool
}

// Predicate is a `param is T` return annotation.
type Predicate struct {
	ParamIndex int
	ParamName  string
	Type       Type
	Asserts    bool
}

type Signature struct {
	TypeParams []*TypeParam
	Params     []Param
	Return     Type
	Predicate  *Predicate
	Method     bool
}

// MinArgs is the number of required leading parameters.
func (s *Signature) MinArgs() int {
	n := 0
	for _, p := range s.Params {
		if p.Optional || p.Rest {
			break
		}
		n++
	}
	return n
}

// MaxArgs is the parameter count, or -1 when a rest parameter is present.
func (s *Signature) MaxArgs() int {
	if n := len(s.Params); n > 0 && s.Params[n-1].Rest {
		return -1
	}
	return len(s.Params)
}

// Function is a callable type with one or more overload signatures.
type Function struct {
	base
	Signatures []*Signature
}

func (*Function) Kind() Kind { return KindFunction }

type TupleElem struct {
	Type     Type
	Optional bool
	Rest     bool
}

type Tuple struct {
	base
	Elems    []TupleElem
	Readonly bool
}

func (*Tuple) Kind() Kind { return KindTuple }

// MinLength is the number of required elements.
func (t *Tuple) MinLength() int {
	n := 0
	for _, e := range t.Elems {
		if e.Optional || e.Rest {
			break
		}
		n++
	}
	return n
}

// HasRest reports whether the tuple ends in a rest element.
func (t *Tuple) HasRest() bool {
	return len(t.Elems) > 0 && t.Elems[len(t.Elems)-1].Rest
}

type Array struct {
	base
	Elem     Type
	Readonly bool
}

func (*Array) Kind() Kind { return KindArray }

// TypeParam identity is its handle; type parameters are never merged.
// Constraint and Default are filled in by the declaring checker before the
// owning module is published.
type TypeParam struct {
	base
	Name       string
	Constraint Type
	Default    Type
	// Infer marks parameters introduced by `infer X`.
	Infer bool
}

func (*TypeParam) Kind() Kind { return KindTypeParam }

// Ref is a named reference to a declaration, optionally instantiated.
type Ref struct {
	base
	Decl *Decl
	Args []Type
}

func (*Ref) Kind() Kind { return KindRef }

type Conditional struct {
	base
	Check        Type
	Extends      Type
	True         Type
	False        Type
	InferParams  []*TypeParam
	Distributive bool
}

func (*Conditional) Kind() Kind { return KindConditional }

type Modifier int

const (
	ModNone Modifier = iota
	ModAdd
	ModRemove
)

type Mapped struct {
	base
	Param      *TypeParam
	Constraint Type
	Template   Type
	Optional   Modifier
	Readonly   Modifier
}

func (*Mapped) Kind() Kind { return KindMapped }

type Indexed struct {
	base
	Object Type
	Index  Type
}

func (*Indexed) Kind() Kind { return KindIndexed }

type KeyOf struct {
	base
	Target Type
}

func (*KeyOf) Kind() Kind { return KindKeyOf }

type EnumMember struct {
	base
	Enum  *Decl
	Name  string
	Value *Literal
}

func (*EnumMember) Kind() Kind { return KindEnumMember }

// Namespace is the type of `import * as ns`. Its export table is
// published once the module finishes.
type Namespace struct {
	base
	Path    string
	exports atomic.Pointer[map[string]Type]
}

func (*Namespace) Kind() Kind { return KindNamespace }

func (t *Namespace) SetExports(exports map[string]Type) {
	t.exports.Store(&exports)
}

// Exports returns the published export table, or nil while the module is
// still being analyzed.
func (t *Namespace) Exports() map[string]Type {
	if p := t.exports.Load(); p != nil {
		return *p
	}
	return nil
}

// Lazy is a placeholder for an export of a module that is still being
// analyzed further up an import cycle. Until resolved it relates like any.
type Lazy struct {
	base
	Module string
	Name   string
	target atomic.Pointer[lazyTarget]
}

type lazyTarget struct {
	t Type
}

func (*Lazy) Kind() Kind { return KindLazy }

// Resolve binds the placeholder. Later calls are ignored.
func (t *Lazy) Resolve(target Type) bool {
	return t.target.CompareAndSwap(nil, &lazyTarget{t: target})
}

func (t *Lazy) Resolved() (Type, bool) {
	if p := t.target.Load(); p != nil {
		return p.t, true
	}
	return nil, false
}

const maxDerefChain = 64

// Deref follows resolved placeholders to the type they stand for.
func Deref(t Type) Type {
	for i := 0; i < maxDerefChain; i++ {
		lz, ok := t.(*Lazy)
		if !ok {
			return t
		}
		next, ok := lz.Resolved()
		if !ok || next == t {
			return t
		}
		t = next
	}
	return t
}

// IsUnresolvedLazy reports whether t is still a pending placeholder.
func IsUnresolvedLazy(t Type) bool {
	_, ok := Deref(t).(*Lazy)
	return ok
}

// IsPrimitive reports whether t is a primitive keyword or literal.
func IsPrimitive(t Type) bool {
	switch Deref(t).Kind() {
	case KindString, KindNumber, KindBigInt, KindSymbol, KindLiteral, KindEnumMember,
		KindNull, KindUndefined, KindVoid:
		return true
	}
	return t == Type(Boolean)
}

// IsUnit reports whether t has exactly one value.
func IsUnit(t Type) bool {
	switch Deref(t).Kind() {
	case KindLiteral, KindEnumMember, KindNull, KindUndefined, KindVoid:
		return true
	}
	return false
}

// Members returns the union members of t, or t itself.
func Members(t Type) []Type {
	t = Deref(t)
	if u, ok := t.(*Union); ok {
		return u.Members
	}
	return []Type{t}
}
