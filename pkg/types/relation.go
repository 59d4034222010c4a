package types

import (
	set "github.com/hashicorp/go-set/v3"
)

// Mode selects the relation being checked.
type Mode int

const (
	// Subtype is the structural subtype relation.
	Subtype Mode = iota
	// Assignable additionally lets number flow into numeric enums.
	Assignable
)

// maxExpansionDepth bounds how many expansions of one generic declaration
// may be nested in a single query. Instantiations that grow on every
// expansion (`type T<X> = { next: T<X[]> }`) never revisit a pair, so the
// assumption set alone does not stop them.
const maxExpansionDepth = 5

// maxRelationDepth is a stack guard. Queries nested deeper than this are
// answered false.
const maxRelationDepth = 1000

type typePair struct {
	source uint64
	target uint64
}

// relation carries the co-inductive assumption set for one top-level query.
type relation struct {
	in      *Interner
	mode    Mode
	assumed *set.Set[typePair]
	depth   int

	// expanding counts nested expansions per generic declaration.
	expanding map[*Decl]int
	override  func(s, t Type) (bool, bool)
}

func (in *Interner) newRelation(mode Mode) *relation {
	return &relation{in: in, mode: mode, assumed: set.New[typePair](8)}
}

// IsSubtype reports whether s is a structural subtype of t.
func (in *Interner) IsSubtype(s, t Type) bool {
	return in.newRelation(Subtype).related(s, t)
}

// IsAssignable reports whether a value of type s may be stored in t.
func (in *Interner) IsAssignable(s, t Type) bool {
	return in.newRelation(Assignable).related(s, t)
}

// IsIdentical reports mutual assignability.
func (in *Interner) IsIdentical(s, t Type) bool {
	return s == t || (in.IsSubtype(s, t) && in.IsSubtype(t, s))
}

// IsComparable reports whether a cast between s and t is permitted: either
// direction is assignable once s is widened, or the two overlap.
func (in *Interner) IsComparable(s, t Type) bool {
	if in.IsAssignable(s, t) || in.IsAssignable(t, s) {
		return true
	}
	ws := in.Widen(s)
	if in.IsAssignable(ws, t) || in.IsAssignable(t, ws) {
		return true
	}
	for _, m := range Members(ws) {
		for _, n := range Members(t) {
			if in.IsAssignable(m, n) || in.IsAssignable(n, m) {
				return true
			}
		}
	}
	return false
}

func isNullish(t Type) bool {
	switch t {
	case Type(Null), Type(Undefined):
		return true
	}
	return false
}

func (r *relation) related(s, t Type) bool {
	if s == nil || t == nil {
		return true
	}
	s, t = Deref(s), Deref(t)
	if s == t {
		return true
	}
	if r.override != nil {
		if res, ok := r.override(s, t); ok {
			return res
		}
	}
	if _, ok := s.(*Lazy); ok {
		return true
	}
	if _, ok := t.(*Lazy); ok {
		return true
	}
	switch t.Kind() {
	case KindAny, KindUnknown:
		return true
	}
	switch s.Kind() {
	case KindAny:
		return t != Type(Never)
	case KindNever:
		return true
	case KindUnknown:
		return false
	}
	if t == Type(Never) {
		return false
	}
	if isNullish(s) {
		if !r.in.strictNullChecks {
			return true
		}
		if s == Type(Undefined) && t == Type(Void) {
			return true
		}
	}

	key := typePair{s.ID(), t.ID()}
	if r.assumed.Contains(key) {
		return true
	}
	if r.depth >= maxRelationDepth {
		return false
	}
	r.assumed.Insert(key)
	r.depth++
	res := r.structured(s, t)
	r.depth--
	r.assumed.Remove(key)
	return res
}

// expand runs fn with ref's expansion on the stack. Once a generic
// declaration has been expanded maxExpansionDepth times in one query the
// comparison is assumed to hold, the same co-inductive answer the
// assumption set gives for repeated pairs.
func (r *relation) expand(ref *Ref, fn func() bool) bool {
	if len(ref.Args) == 0 {
		return fn()
	}
	if r.expanding == nil {
		r.expanding = make(map[*Decl]int)
	}
	if r.expanding[ref.Decl] >= maxExpansionDepth {
		return true
	}
	r.expanding[ref.Decl]++
	defer func() { r.expanding[ref.Decl]-- }()
	return fn()
}

func (r *relation) structured(s, t Type) bool {
	if su, ok := s.(*Union); ok {
		for _, m := range su.Members {
			if !r.related(m, t) {
				return false
			}
		}
		return true
	}
	if tu, ok := t.(*Union); ok {
		for _, m := range tu.Members {
			if r.related(s, m) {
				return true
			}
		}
		if d, ok := r.in.distribute(s); ok {
			return r.related(d, t)
		}
		return false
	}
	if ti, ok := t.(*Intersection); ok {
		for _, m := range ti.Members {
			if !r.related(s, m) {
				return false
			}
		}
		return true
	}
	if si, ok := s.(*Intersection); ok {
		for _, m := range si.Members {
			if r.related(m, t) {
				return true
			}
		}
		if merged := r.in.mergeIntersection(si); merged != nil {
			return r.related(merged, t)
		}
		return false
	}

	// generic and deferred forms
	if sp, ok := s.(*TypeParam); ok {
		c := sp.Constraint
		if c == nil {
			c = Unknown
		}
		return r.related(c, t)
	}
	if _, ok := t.(*TypeParam); ok {
		return false
	}
	if sr, ok := s.(*Ref); ok {
		if tr, ok := t.(*Ref); ok && sr.Decl == tr.Decl && len(sr.Args) == len(tr.Args) && len(sr.Args) > 0 {
			all := true
			for i := range sr.Args {
				if !r.related(sr.Args[i], tr.Args[i]) {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
		if exp := r.in.Expand(sr); exp != Type(sr) {
			return r.expand(sr, func() bool { return r.related(exp, t) })
		}
		return false
	}
	if tr, ok := t.(*Ref); ok {
		if exp := r.in.Expand(tr); exp != Type(tr) {
			return r.expand(tr, func() bool { return r.related(s, exp) })
		}
		return false
	}
	switch s.(type) {
	case *Conditional, *Mapped, *Indexed, *KeyOf:
		if ev := r.in.Evaluate(s); ev != s {
			return r.related(ev, t)
		}
		return r.relatedDeferredSource(s, t)
	}
	switch t.(type) {
	case *Conditional, *Mapped, *Indexed, *KeyOf:
		if ev := r.in.Evaluate(t); ev != t {
			return r.related(s, ev)
		}
		return false
	}

	// enums
	if se, ok := s.(*EnumMember); ok {
		if te, ok := t.(*EnumMember); ok {
			return se.Enum == te.Enum && se.Name == te.Name
		}
		return r.related(se.Value.Base(), t)
	}
	if te, ok := t.(*EnumMember); ok {
		if r.mode == Assignable && te.Value.LitKind == LitNumber {
			if s == Type(Number) {
				return true
			}
			if lit, ok := s.(*Literal); ok && lit.LitKind == LitNumber {
				return true
			}
		}
		return false
	}

	// primitives
	if lit, ok := s.(*Literal); ok {
		if _, ok := t.(*Literal); ok {
			return false
		}
		b := lit.Base()
		if b == t {
			return true
		}
		if lit.LitKind == LitBoolean {
			return r.viaApparent(Boolean, t)
		}
		return r.related(b, t)
	}
	if in, ok := s.(*Intrinsic); ok {
		switch in.kind {
		case KindString, KindNumber, KindBigInt, KindSymbol:
			return r.viaApparent(s, t)
		case KindNonPrimitive:
			if to, ok := t.(*Object); ok {
				return len(to.Calls) == 0 && len(to.Constructs) == 0 && allOptional(to)
			}
			return false
		}
		return false
	}
	if t == Type(NonPrimitive) {
		switch s.(type) {
		case *Object, *Function, *Array, *Tuple, *Namespace:
			return true
		}
		return false
	}
	if _, ok := t.(*Intrinsic); ok {
		return false
	}
	if _, ok := t.(*Literal); ok {
		return false
	}

	// arrays and tuples
	switch sx := s.(type) {
	case *Array:
		switch tx := t.(type) {
		case *Array:
			return (tx.Readonly || !sx.Readonly) && r.related(sx.Elem, tx.Elem)
		case *Tuple:
			return false
		}
		return r.viaApparent(s, t)
	case *Tuple:
		switch tx := t.(type) {
		case *Array:
			if sx.Readonly && !tx.Readonly {
				return false
			}
			for _, e := range sx.Elems {
				et := e.Type
				if e.Rest {
					et = r.in.elementType(et)
				}
				if !r.related(et, tx.Elem) {
					return false
				}
			}
			return true
		case *Tuple:
			return r.tupleRelated(sx, tx)
		}
		return r.viaApparent(s, t)
	}
	switch t.(type) {
	case *Array, *Tuple:
		return false
	}

	// namespaces relate as objects of their exports
	if sn, ok := s.(*Namespace); ok {
		return r.related(r.in.namespaceObject(sn), t)
	}
	if _, ok := t.(*Namespace); ok {
		return false
	}

	switch tx := t.(type) {
	case *Object:
		return r.objectRelated(s, tx)
	case *Function:
		calls := r.in.Signatures(s, false)
		return r.signaturesRelated(calls, tx.Signatures)
	}
	return false
}

func allOptional(o *Object) bool {
	for _, p := range o.Props {
		if !p.Optional {
			return false
		}
	}
	return true
}

// viaApparent relates a primitive or array through its library interface.
func (r *relation) viaApparent(s, t Type) bool {
	app := r.in.Apparent(s)
	if app == s {
		if to, ok := t.(*Object); ok {
			return len(to.Props) == 0 && len(to.Calls) == 0 && len(to.Constructs) == 0 && len(to.Index) == 0
		}
		return false
	}
	return r.related(app, t)
}

func (r *relation) relatedDeferredSource(s, t Type) bool {
	switch x := s.(type) {
	case *KeyOf:
		return r.related(r.in.Union(String, Number, Symbol), t)
	case *Conditional:
		return r.related(x.True, t) && r.related(x.False, t)
	case *Indexed:
		if p, ok := Deref(x.Object).(*TypeParam); ok && p.Constraint != nil {
			return r.related(r.in.Indexed(p.Constraint, x.Index), t)
		}
	}
	return false
}

func (r *relation) tupleRelated(s, t *Tuple) bool {
	if s.Readonly && !t.Readonly {
		return false
	}
	if s.MinLength() < t.MinLength() {
		return false
	}
	if !t.HasRest() && len(s.Elems) > len(t.Elems) {
		return false
	}
	if s.HasRest() && !t.HasRest() {
		return false
	}
	for i, se := range s.Elems {
		var tt Type
		switch {
		case i < len(t.Elems) && !t.Elems[i].Rest:
			if se.Optional && !t.Elems[i].Optional {
				return false
			}
			tt = t.Elems[i].Type
		case t.HasRest():
			tt = r.in.elementType(t.Elems[len(t.Elems)-1].Type)
		default:
			return false
		}
		st := se.Type
		if se.Rest {
			st = r.in.elementType(st)
		}
		if !r.related(st, tt) {
			return false
		}
	}
	return true
}

func (r *relation) objectRelated(s Type, t *Object) bool {
	for _, tp := range t.Props {
		sp, ok := r.in.PropertyOf(s, tp.Name)
		if !ok {
			if tp.Optional {
				continue
			}
			return false
		}
		if sp.Optional && !tp.Optional && r.in.strictNullChecks {
			return false
		}
		tt := tp.Type
		if tp.Optional && r.in.strictNullChecks {
			tt = r.in.Optional(tt)
		}
		if !r.related(sp.Type, tt) {
			if tp.Method || sp.Method {
				if r.methodRelated(sp.Type, tp.Type) {
					continue
				}
			}
			return false
		}
	}
	if len(t.Calls) > 0 && !r.signaturesRelated(r.in.Signatures(s, false), t.Calls) {
		return false
	}
	if len(t.Constructs) > 0 && !r.signaturesRelated(r.in.Signatures(s, true), t.Constructs) {
		return false
	}
	for _, info := range t.Index {
		if !r.indexRelated(s, info) {
			return false
		}
	}
	return true
}

// methodRelated compares two method-typed members with bivariant
// parameters.
func (r *relation) methodRelated(s, t Type) bool {
	ss := r.in.Signatures(s, false)
	ts := r.in.Signatures(t, false)
	if len(ss) == 0 || len(ts) == 0 {
		return false
	}
	for _, tsig := range ts {
		matched := false
		for _, ssig := range ss {
			if r.signatureRelated(ssig, tsig, true) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func (r *relation) indexRelated(s Type, info IndexInfo) bool {
	if src, ok := r.in.IndexInfoOf(s, info.Key); ok {
		if !r.related(src.Type, info.Type) {
			return false
		}
	}
	for _, p := range r.in.Properties(s) {
		if info.Key == Type(Number) && !isNumericName(p.Name) {
			continue
		}
		pt := p.Type
		if p.Optional {
			pt = r.in.RemoveUndefined(pt)
		}
		if !r.related(pt, info.Type) {
			return false
		}
	}
	if _, ok := s.(*Object); !ok {
		// arrays, tuples and primitives satisfy number indexes through
		// their element type only
		if _, hasIndex := r.in.IndexInfoOf(s, info.Key); !hasIndex && !isObjectLike(s) {
			return false
		}
	}
	return true
}

func isObjectLike(t Type) bool {
	switch t.(type) {
	case *Object, *Intersection, *Ref, *Namespace:
		return true
	}
	return false
}

func (r *relation) signaturesRelated(ss, ts []*Signature) bool {
	if len(ts) == 0 {
		return true
	}
	if len(ss) == 0 {
		return false
	}
	for _, tsig := range ts {
		matched := false
		for _, ssig := range ss {
			if r.signatureRelated(ssig, tsig, false) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// signatureRelated checks that a function with signature s can stand in
// for t: parameters contravariant (bivariant for methods or when strict
// function types are off), return covariant, source may accept fewer
// parameters.
func (r *relation) signatureRelated(s, t *Signature, bivariant bool) bool {
	if len(s.TypeParams) > 0 {
		inf := r.in.NewInferrer(s.TypeParams)
		for i := range t.Params {
			sp, sok := paramTypeAt(r.in, s, i)
			tp, tok := paramTypeAt(r.in, t, i)
			if sok && tok {
				inf.Infer(sp, tp)
			}
		}
		s = r.in.InstantiateSignature(s, inf.Solve())
	}
	if tmax := t.MaxArgs(); tmax >= 0 && s.MinArgs() > tmax {
		return false
	}
	if !bivariant {
		bivariant = s.Method || t.Method || !r.in.strictFunctionTypes
	}
	n := len(s.Params)
	if len(t.Params) > n {
		n = len(t.Params)
	}
	for i := 0; i < n; i++ {
		sp, sok := paramTypeAt(r.in, s, i)
		tp, tok := paramTypeAt(r.in, t, i)
		if !sok || !tok {
			continue
		}
		if r.related(tp, sp) {
			continue
		}
		if bivariant && r.related(sp, tp) {
			continue
		}
		return false
	}
	if t.Return == Type(Void) {
		return true
	}
	if t.Predicate != nil && s.Predicate == nil {
		return false
	}
	return r.related(s.Return, t.Return)
}

// paramTypeAt returns the type accepted at argument position i, expanding
// rest parameters.
func paramTypeAt(in *Interner, s *Signature, i int) (Type, bool) {
	if i < len(s.Params) {
		p := s.Params[i]
		if p.Rest {
			return restElementAt(in, p.Type, 0)
		}
		return p.Type, true
	}
	if n := len(s.Params); n > 0 && s.Params[n-1].Rest {
		return restElementAt(in, s.Params[n-1].Type, i-(n-1))
	}
	return nil, false
}

func restElementAt(in *Interner, rest Type, offset int) (Type, bool) {
	switch x := Deref(rest).(type) {
	case *Tuple:
		if offset < len(x.Elems) {
			e := x.Elems[offset]
			if e.Rest {
				return in.elementType(e.Type), true
			}
			return e.Type, true
		}
		if x.HasRest() {
			return in.elementType(x.Elems[len(x.Elems)-1].Type), true
		}
		return nil, false
	}
	return in.elementType(rest), true
}

// ParamTypeAt is the exported form of paramTypeAt for call checking.
func (in *Interner) ParamTypeAt(s *Signature, i int) (Type, bool) {
	return paramTypeAt(in, s, i)
}

// elementType returns the element type of an array-like type.
func (in *Interner) elementType(t Type) Type {
	switch x := Deref(t).(type) {
	case *Array:
		return x.Elem
	case *Tuple:
		elems := make([]Type, 0, len(x.Elems))
		for _, e := range x.Elems {
			if e.Rest {
				elems = append(elems, in.elementType(e.Type))
				continue
			}
			elems = append(elems, e.Type)
		}
		return in.Union(elems...)
	case *Union:
		parts := make([]Type, 0, len(x.Members))
		for _, m := range x.Members {
			parts = append(parts, in.elementType(m))
		}
		return in.Union(parts...)
	case *Ref:
		if exp := in.Expand(x); exp != Type(x) {
			if info, ok := in.IndexInfoOf(exp, Number); ok {
				return info.Type
			}
		}
	case *TypeParam:
		if x.Constraint != nil {
			return in.elementType(x.Constraint)
		}
	case *Intrinsic:
		if x.kind == KindAny {
			return x
		}
		if x.kind == KindString {
			return String
		}
	}
	return Fallback
}

// ElementType is the exported form of elementType.
func (in *Interner) ElementType(t Type) Type {
	return in.elementType(t)
}

func isNumericName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
