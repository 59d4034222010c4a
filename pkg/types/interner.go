package types

import (
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

const shardCount = 64

type shard struct {
	mu    sync.Mutex
	types map[string]Type
}

// Interner is the per-run type table. It is safe for concurrent use;
// entries are never removed.
type Interner struct {
	shards [shardCount]shard
	seq    atomic.Uint64

	strictNullChecks    bool
	strictFunctionTypes bool
	host                Host

	expansions  sync.Map // *Ref -> Type
	namespaces  sync.Map // path -> *Namespace
	lazies      sync.Map // module\x00name -> *Lazy
	genericMemo sync.Map // id -> bool
}

// Host supplies the apparent (library) type of primitives, arrays and
// functions for member lookup.
type Host interface {
	Apparent(t Type) Type
}

type Option func(*Interner)

func WithStrictNullChecks(enabled bool) Option {
	return func(in *Interner) { in.strictNullChecks = enabled }
}

func WithStrictFunctionTypes(enabled bool) Option {
	return func(in *Interner) { in.strictFunctionTypes = enabled }
}

// NewInterner returns an empty table. Both strictness flags default to on.
func NewInterner(opts ...Option) *Interner {
	in := &Interner{strictNullChecks: true, strictFunctionTypes: true}
	for i := range in.shards {
		in.shards[i].types = make(map[string]Type)
	}
	in.seq.Store(firstDynamicID)
	for _, t := range []Type{Any, Unknown, Never, Void, Undefined, Null, String, Number, BigInt, Symbol, NonPrimitive, True, False, Boolean} {
		key, _ := in.keyOf(t)
		s := in.shardFor(key)
		s.types[key] = t
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// SetHost installs the apparent-type provider. It must be called before
// the interner is shared.
func (in *Interner) SetHost(h Host) { in.host = h }

func (in *Interner) StrictNullChecks() bool    { return in.strictNullChecks }
func (in *Interner) StrictFunctionTypes() bool { return in.strictFunctionTypes }

func (in *Interner) nextID() uint64 { return in.seq.Add(1) }

func (in *Interner) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &in.shards[h.Sum32()%shardCount]
}

// intern returns the canonical type for key, building it on a miss. The
// kind of an existing entry must agree with the key; anything else means
// the table is corrupt.
func (in *Interner) intern(key string, kind Kind, build func(id uint64) Type) Type {
	s := in.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.types[key]; ok {
		if existing.Kind() != kind && !(kind == KindAny && existing == Type(Fallback)) {
			panic(&InvariantError{Op: "intern", Detail: "key " + strconv.Quote(key) + " maps to " + existing.Kind().String() + ", want " + kind.String()})
		}
		return existing
	}
	t := build(in.nextID())
	s.types[key] = t
	return t
}

// Intern returns the canonical handle for t. Handles produced by the
// interner come back unchanged. Types assembled by hand are rebuilt bottom
// up through the constructors, so their unions are flattened and sorted,
// their object members ordered and every node gets an identity. A hand
// built type parameter is given its identity in place.
func (in *Interner) Intern(t Type) Type {
	if t == nil || t.ID() != 0 {
		return t
	}
	switch x := t.(type) {
	case *Literal:
		return in.literal(&Literal{LitKind: x.LitKind, Str: x.Str, Num: x.Num, Bool: x.Bool})
	case *Union:
		return in.Union(in.internAll(x.Members)...)
	case *Intersection:
		return in.Intersection(in.internAll(x.Members)...)
	case *Object:
		props := make([]Property, len(x.Props))
		for i, p := range x.Props {
			p.Type = in.Intern(p.Type)
			props[i] = p
		}
		index := make([]IndexInfo, len(x.Index))
		for i, info := range x.Index {
			info.Key = in.Intern(info.Key)
			info.Type = in.Intern(info.Type)
			index[i] = info
		}
		return in.Object(ObjectShape{
			Props:      props,
			Calls:      in.internSignatures(x.Calls),
			Constructs: in.internSignatures(x.Constructs),
			Index:      index,
		})
	case *Function:
		return in.Function(in.internSignatures(x.Signatures)...)
	case *Tuple:
		elems := make([]TupleElem, len(x.Elems))
		for i, e := range x.Elems {
			e.Type = in.Intern(e.Type)
			elems[i] = e
		}
		return in.Tuple(elems, x.Readonly)
	case *Array:
		return in.array(in.Intern(x.Elem), x.Readonly)
	case *TypeParam:
		x.id = in.nextID()
		x.Constraint = in.Intern(x.Constraint)
		x.Default = in.Intern(x.Default)
		return x
	case *Ref:
		return in.Ref(x.Decl, in.internAll(x.Args)...)
	case *Conditional:
		return in.Conditional(in.Intern(x.Check), in.Intern(x.Extends), in.Intern(x.True), in.Intern(x.False),
			in.internParams(x.InferParams), x.Distributive)
	case *Mapped:
		return in.Mapped(in.internParam(x.Param), in.Intern(x.Constraint), in.Intern(x.Template), x.Optional, x.Readonly)
	case *Indexed:
		return in.Indexed(in.Intern(x.Object), in.Intern(x.Index))
	case *KeyOf:
		return in.KeyOf(in.Intern(x.Target))
	case *EnumMember:
		var value *Literal
		if x.Value != nil {
			value = in.Intern(x.Value).(*Literal)
		}
		return in.EnumMember(x.Enum, x.Name, value)
	case *Namespace:
		return in.Namespace(x.Path)
	case *Lazy:
		return in.Lazy(x.Module, x.Name)
	}
	panic(&InvariantError{Op: "intern", Detail: "unknown type " + t.Kind().String()})
}

func (in *Interner) internAll(ts []Type) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = in.Intern(t)
	}
	return out
}

func (in *Interner) internParam(tp *TypeParam) *TypeParam {
	if tp == nil {
		return nil
	}
	return in.Intern(tp).(*TypeParam)
}

func (in *Interner) internParams(tps []*TypeParam) []*TypeParam {
	if tps == nil {
		return nil
	}
	out := make([]*TypeParam, len(tps))
	for i, tp := range tps {
		out[i] = in.internParam(tp)
	}
	return out
}

func (in *Interner) internSignatures(sigs []*Signature) []*Signature {
	if sigs == nil {
		return nil
	}
	out := make([]*Signature, len(sigs))
	for i, s := range sigs {
		cp := &Signature{
			TypeParams: in.internParams(s.TypeParams),
			Params:     make([]Param, len(s.Params)),
			Return:     in.Intern(s.Return),
			Method:     s.Method,
		}
		for j, p := range s.Params {
			p.Type = in.Intern(p.Type)
			cp.Params[j] = p
		}
		if s.Predicate != nil {
			pred := *s.Predicate
			pred.Type = in.Intern(pred.Type)
			cp.Predicate = &pred
		}
		out[i] = cp
	}
	return out
}

// Size reports the number of interned entries.
func (in *Interner) Size() int {
	n := 0
	for i := range in.shards {
		s := &in.shards[i]
		s.mu.Lock()
		n += len(s.types)
		s.mu.Unlock()
	}
	return n
}

func idList(b *strings.Builder, ts []Type) {
	for i, t := range ts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(t.ID(), 10))
	}
}

func writeID(b *strings.Builder, t Type) {
	if t == nil {
		b.WriteByte('_')
		return
	}
	b.WriteString(strconv.FormatUint(t.ID(), 10))
}

func boolByte(v bool) byte {
	if v {
		return '1'
	}
	return '0'
}

func signatureKey(b *strings.Builder, s *Signature) {
	b.WriteString("S(")
	for i, tp := range s.TypeParams {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(tp.ID(), 10))
	}
	b.WriteByte(';')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		writeID(b, p.Type)
		b.WriteByte(boolByte(p.Optional))
		b.WriteByte(boolByte(p.Rest))
	}
	b.WriteByte(';')
	writeID(b, s.Return)
	b.WriteByte(';')
	if s.Predicate != nil {
		b.WriteString(strconv.Itoa(s.Predicate.ParamIndex))
		b.WriteByte(':')
		writeID(b, s.Predicate.Type)
		b.WriteByte(boolByte(s.Predicate.Asserts))
	}
	b.WriteByte(boolByte(s.Method))
	b.WriteByte(')')
}

// keyOf computes the structural key of a type. Type parameters have no
// structural key; their handle is their identity.
func (in *Interner) keyOf(t Type) (string, bool) {
	var b strings.Builder
	switch x := t.(type) {
	case *Intrinsic:
		if x == Fallback {
			return "", false
		}
		b.WriteString("I|")
		b.WriteString(x.name)
	case *Literal:
		b.WriteString("L|")
		b.WriteString(strconv.Itoa(int(x.LitKind)))
		b.WriteByte('|')
		switch x.LitKind {
		case LitString, LitBigInt:
			b.WriteString(x.Str)
		case LitNumber:
			b.WriteString(strconv.FormatUint(math.Float64bits(x.Num), 16))
		case LitBoolean:
			b.WriteByte(boolByte(x.Bool))
		}
	case *Union:
		b.WriteString("U|")
		idList(&b, x.Members)
	case *Intersection:
		b.WriteString("N|")
		idList(&b, x.Members)
	case *Object:
		b.WriteString("O|")
		for _, p := range x.Props {
			b.WriteString(strconv.Quote(p.Name))
			b.WriteByte(':')
			writeID(&b, p.Type)
			b.WriteByte(boolByte(p.Optional))
			b.WriteByte(boolByte(p.Readonly))
			b.WriteByte(boolByte(p.Method))
			b.WriteByte(';')
		}
		b.WriteString("|c")
		for _, s := range x.Calls {
			signatureKey(&b, s)
		}
		b.WriteString("|n")
		for _, s := range x.Constructs {
			signatureKey(&b, s)
		}
		b.WriteString("|i")
		for _, info := range x.Index {
			writeID(&b, info.Key)
			b.WriteByte(':')
			writeID(&b, info.Type)
			b.WriteByte(boolByte(info.Readonly))
			b.WriteByte(';')
		}
	case *Function:
		b.WriteString("F|")
		for _, s := range x.Signatures {
			signatureKey(&b, s)
		}
	case *Tuple:
		b.WriteString("T|")
		b.WriteByte(boolByte(x.Readonly))
		for _, e := range x.Elems {
			b.WriteByte(',')
			writeID(&b, e.Type)
			b.WriteByte(boolByte(e.Optional))
			b.WriteByte(boolByte(e.Rest))
		}
	case *Array:
		b.WriteString("A|")
		b.WriteByte(boolByte(x.Readonly))
		writeID(&b, x.Elem)
	case *Ref:
		b.WriteString("R|")
		b.WriteString(strconv.FormatUint(x.Decl.ID(), 10))
		b.WriteByte('|')
		idList(&b, x.Args)
	case *Conditional:
		b.WriteString("C|")
		idList(&b, []Type{x.Check, x.Extends, x.True, x.False})
		b.WriteByte('|')
		for _, p := range x.InferParams {
			b.WriteString(strconv.FormatUint(p.ID(), 10))
			b.WriteByte(',')
		}
		b.WriteByte(boolByte(x.Distributive))
	case *Mapped:
		b.WriteString("M|")
		b.WriteString(strconv.FormatUint(x.Param.ID(), 10))
		b.WriteByte('|')
		idList(&b, []Type{x.Constraint, x.Template})
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(int(x.Optional)))
		b.WriteString(strconv.Itoa(int(x.Readonly)))
	case *Indexed:
		b.WriteString("X|")
		idList(&b, []Type{x.Object, x.Index})
	case *KeyOf:
		b.WriteString("K|")
		writeID(&b, x.Target)
	case *EnumMember:
		b.WriteString("E|")
		b.WriteString(strconv.FormatUint(x.Enum.ID(), 10))
		b.WriteByte('|')
		b.WriteString(x.Name)
	default:
		return "", false
	}
	return b.String(), true
}

// Literals

func (in *Interner) StringLit(value string) *Literal {
	return in.literal(&Literal{LitKind: LitString, Str: value})
}

func (in *Interner) NumberLit(value float64) *Literal {
	return in.literal(&Literal{LitKind: LitNumber, Num: value})
}

func (in *Interner) BigIntLit(digits string) *Literal {
	return in.literal(&Literal{LitKind: LitBigInt, Str: digits})
}

func (in *Interner) BoolLit(value bool) *Literal {
	if value {
		return True
	}
	return False
}

func (in *Interner) literal(proto *Literal) *Literal {
	if proto.LitKind == LitBoolean {
		return in.BoolLit(proto.Bool)
	}
	key, _ := in.keyOf(proto)
	return in.intern(key, KindLiteral, func(id uint64) Type {
		proto.id = id
		return proto
	}).(*Literal)
}

// Unions and intersections

// Union builds the canonical union: nested unions are flattened, duplicates
// and never are dropped, any and unknown absorb everything, and literals
// are absorbed by their base primitive.
func (in *Interner) Union(members ...Type) Type {
	flat := make([]Type, 0, len(members))
	seen := make(map[Type]struct{}, len(members))
	hasAny, hasFallback, hasUnknown := false, false, false
	var add func(Type)
	add = func(t Type) {
		if t == nil {
			return
		}
		if u, ok := t.(*Union); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		switch {
		case t == Type(Fallback):
			hasFallback = true
			return
		case t.Kind() == KindAny:
			hasAny = true
			return
		case t.Kind() == KindUnknown:
			hasUnknown = true
			return
		case t.Kind() == KindNever:
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		flat = append(flat, t)
	}
	for _, m := range members {
		add(m)
	}
	switch {
	case hasAny:
		return Any
	case hasFallback:
		return Fallback
	case hasUnknown:
		return Unknown
	}
	// literal absorption
	bases := make(map[Type]struct{})
	for _, t := range flat {
		switch t {
		case Type(String), Type(Number), Type(BigInt):
			bases[t] = struct{}{}
		}
	}
	if len(bases) > 0 {
		kept := flat[:0]
		for _, t := range flat {
			if lit, ok := t.(*Literal); ok && lit.LitKind != LitBoolean {
				if _, absorbed := bases[lit.Base()]; absorbed {
					continue
				}
			}
			kept = append(kept, t)
		}
		flat = kept
	}
	switch len(flat) {
	case 0:
		return Never
	case 1:
		return flat[0]
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].ID() < flat[j].ID() })
	u := &Union{Members: flat}
	key, _ := in.keyOf(u)
	return in.intern(key, KindUnion, func(id uint64) Type {
		u.id = id
		return u
	})
}

func primitiveOf(t Type) Type {
	switch x := t.(type) {
	case *Literal:
		if x.LitKind == LitBoolean {
			return Boolean
		}
		return x.Base()
	case *Intrinsic:
		switch x.kind {
		case KindString, KindNumber, KindBigInt, KindSymbol, KindNull, KindUndefined, KindVoid:
			return x
		}
	case *EnumMember:
		return x.Value.Base()
	}
	return nil
}

// Intersection builds the canonical intersection: flattened and deduped,
// never and disjoint primitives collapse to never, unknown is dropped and
// any absorbs. A primitive intersected with one of its literals is the
// literal. Intersections of unions are distributed.
func (in *Interner) Intersection(members ...Type) Type {
	flat := make([]Type, 0, len(members))
	seen := make(map[Type]struct{}, len(members))
	hasAny := false
	var add func(Type)
	add = func(t Type) {
		if t == nil {
			return
		}
		if n, ok := t.(*Intersection); ok {
			for _, m := range n.Members {
				add(m)
			}
			return
		}
		if t.Kind() == KindAny {
			hasAny = true
			return
		}
		if t.Kind() == KindUnknown {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		flat = append(flat, t)
	}
	for _, m := range members {
		add(m)
	}
	for _, t := range flat {
		if t.Kind() == KindNever {
			return Never
		}
	}
	if hasAny {
		return Any
	}
	// distribute over unions: (A | B) & C = (A & C) | (B & C)
	for i, t := range flat {
		u, ok := t.(*Union)
		if !ok {
			continue
		}
		rest := make([]Type, 0, len(flat)-1)
		rest = append(rest, flat[:i]...)
		rest = append(rest, flat[i+1:]...)
		parts := make([]Type, 0, len(u.Members))
		for _, m := range u.Members {
			parts = append(parts, in.Intersection(append([]Type{m}, rest...)...))
		}
		return in.Union(parts...)
	}
	// primitive disjointness
	var prim Type
	var unit Type
	for _, t := range flat {
		p := primitiveOf(t)
		if p == nil {
			continue
		}
		if prim != nil && prim != p {
			return Never
		}
		prim = p
		if IsUnit(t) {
			if unit != nil && unit != t {
				return Never
			}
			unit = t
		}
	}
	if unit != nil {
		kept := flat[:0]
		for _, t := range flat {
			if primitiveOf(t) != nil && t != unit {
				continue
			}
			kept = append(kept, t)
		}
		flat = kept
	}
	switch len(flat) {
	case 0:
		return Unknown
	case 1:
		return flat[0]
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].ID() < flat[j].ID() })
	n := &Intersection{Members: flat}
	key, _ := in.keyOf(n)
	return in.intern(key, KindIntersection, func(id uint64) Type {
		n.id = id
		return n
	})
}

// Structured types

// ObjectShape describes an object type before interning.
type ObjectShape struct {
	Props      []Property
	Calls      []*Signature
	Constructs []*Signature
	Index      []IndexInfo
}

// Object interns an object type. Properties are sorted by name; a later
// property with the same name replaces an earlier one.
func (in *Interner) Object(shape ObjectShape) *Object {
	byName := make(map[string]int, len(shape.Props))
	props := make([]Property, 0, len(shape.Props))
	for _, p := range shape.Props {
		if p.Type == nil {
			p.Type = Fallback
		}
		if i, ok := byName[p.Name]; ok {
			props[i] = p
			continue
		}
		byName[p.Name] = len(props)
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
	index := append([]IndexInfo(nil), shape.Index...)
	sort.SliceStable(index, func(i, j int) bool { return index[i].Key.ID() < index[j].Key.ID() })
	o := &Object{Props: props, Calls: shape.Calls, Constructs: shape.Constructs, Index: index}
	key, _ := in.keyOf(o)
	return in.intern(key, KindObject, func(id uint64) Type {
		o.id = id
		return o
	}).(*Object)
}

// EmptyObject is `{}`.
func (in *Interner) EmptyObject() *Object {
	return in.Object(ObjectShape{})
}

func (in *Interner) Function(sigs ...*Signature) *Function {
	for _, s := range sigs {
		if s.Return == nil {
			s.Return = Fallback
		}
	}
	f := &Function{Signatures: sigs}
	key, _ := in.keyOf(f)
	return in.intern(key, KindFunction, func(id uint64) Type {
		f.id = id
		return f
	}).(*Function)
}

func (in *Interner) Tuple(elems []TupleElem, readonly bool) *Tuple {
	t := &Tuple{Elems: elems, Readonly: readonly}
	key, _ := in.keyOf(t)
	return in.intern(key, KindTuple, func(id uint64) Type {
		t.id = id
		return t
	}).(*Tuple)
}

// TupleOf builds a mutable tuple of required elements.
func (in *Interner) TupleOf(elems ...Type) *Tuple {
	out := make([]TupleElem, len(elems))
	for i, e := range elems {
		out[i] = TupleElem{Type: e}
	}
	return in.Tuple(out, false)
}

func (in *Interner) Array(elem Type) *Array {
	return in.array(elem, false)
}

func (in *Interner) ReadonlyArray(elem Type) *Array {
	return in.array(elem, true)
}

func (in *Interner) array(elem Type, readonly bool) *Array {
	a := &Array{Elem: elem, Readonly: readonly}
	key, _ := in.keyOf(a)
	return in.intern(key, KindArray, func(id uint64) Type {
		a.id = id
		return a
	}).(*Array)
}

// NewTypeParam creates a fresh type parameter.
func (in *Interner) NewTypeParam(name string) *TypeParam {
	return &TypeParam{base: base{in.nextID()}, Name: name}
}

// NewDecl creates a named declaration with a fresh identity.
func (in *Interner) NewDecl(name, module string, kind DeclKind, params []*TypeParam) *Decl {
	return &Decl{id: in.nextID(), Name: name, Module: module, Kind: kind, Params: params}
}

func (in *Interner) Ref(decl *Decl, args ...Type) *Ref {
	r := &Ref{Decl: decl, Args: args}
	key, _ := in.keyOf(r)
	return in.intern(key, KindRef, func(id uint64) Type {
		r.id = id
		return r
	}).(*Ref)
}

// Conditional builds `check extends ext ? t : f`, evaluating it at once
// when nothing in it is generic.
func (in *Interner) Conditional(check, ext, t, f Type, inferParams []*TypeParam, distributive bool) Type {
	c := &Conditional{Check: check, Extends: ext, True: t, False: f, InferParams: inferParams, Distributive: distributive}
	key, _ := in.keyOf(c)
	ct := in.intern(key, KindConditional, func(id uint64) Type {
		c.id = id
		return c
	})
	return in.Evaluate(ct)
}

func (in *Interner) Mapped(param *TypeParam, constraint, template Type, optional, readonly Modifier) Type {
	m := &Mapped{Param: param, Constraint: constraint, Template: template, Optional: optional, Readonly: readonly}
	key, _ := in.keyOf(m)
	mt := in.intern(key, KindMapped, func(id uint64) Type {
		m.id = id
		return m
	})
	return in.Evaluate(mt)
}

func (in *Interner) Indexed(object, index Type) Type {
	x := &Indexed{Object: object, Index: index}
	key, _ := in.keyOf(x)
	it := in.intern(key, KindIndexed, func(id uint64) Type {
		x.id = id
		return x
	})
	return in.Evaluate(it)
}

func (in *Interner) KeyOf(target Type) Type {
	k := &KeyOf{Target: target}
	key, _ := in.keyOf(k)
	kt := in.intern(key, KindKeyOf, func(id uint64) Type {
		k.id = id
		return k
	})
	return in.Evaluate(kt)
}

func (in *Interner) EnumMember(decl *Decl, name string, value *Literal) *EnumMember {
	e := &EnumMember{Enum: decl, Name: name, Value: value}
	key, _ := in.keyOf(e)
	return in.intern(key, KindEnumMember, func(id uint64) Type {
		e.id = id
		return e
	}).(*EnumMember)
}

// Namespace returns the single namespace handle for a module path.
func (in *Interner) Namespace(path string) *Namespace {
	if ns, ok := in.namespaces.Load(path); ok {
		return ns.(*Namespace)
	}
	ns, _ := in.namespaces.LoadOrStore(path, &Namespace{base: base{in.nextID()}, Path: path})
	return ns.(*Namespace)
}

// Lazy returns the single placeholder for an export of a module.
func (in *Interner) Lazy(module, name string) *Lazy {
	key := module + "\x00" + name
	if lz, ok := in.lazies.Load(key); ok {
		return lz.(*Lazy)
	}
	lz, _ := in.lazies.LoadOrStore(key, &Lazy{base: base{in.nextID()}, Module: module, Name: name})
	return lz.(*Lazy)
}

// Optional adds undefined to t.
func (in *Interner) Optional(t Type) Type {
	return in.Union(t, Undefined)
}
