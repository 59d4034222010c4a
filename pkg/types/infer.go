package types

import (
	set "github.com/hashicorp/go-set/v3"
)

// Inferrer solves a set of type parameters from (parameter type, argument
// type) pairs. Each parameter accumulates candidates; the solution is the
// widest union of them.
type Inferrer struct {
	in         *Interner
	params     []*TypeParam
	index      map[*TypeParam]int
	candidates [][]Type
	fixed      map[*TypeParam]Type
	visiting   *set.Set[typePair]
}

func (in *Interner) NewInferrer(params []*TypeParam) *Inferrer {
	inf := &Inferrer{
		in:         in,
		params:     params,
		index:      make(map[*TypeParam]int, len(params)),
		candidates: make([][]Type, len(params)),
		fixed:      make(map[*TypeParam]Type),
		visiting:   set.New[typePair](8),
	}
	for i, p := range params {
		inf.index[p] = i
	}
	return inf
}

// Params returns the parameters being solved.
func (inf *Inferrer) Params() []*TypeParam { return inf.params }

// Fix pins a parameter to an explicit argument.
func (inf *Inferrer) Fix(p *TypeParam, t Type) {
	inf.fixed[p] = t
}

// HasCandidates reports whether any inference site mentioned p.
func (inf *Inferrer) HasCandidates(p *TypeParam) bool {
	if _, ok := inf.fixed[p]; ok {
		return true
	}
	i, ok := inf.index[p]
	return ok && len(inf.candidates[i]) > 0
}

// Infer records candidates by matching target (written in terms of the
// parameters) against source.
func (inf *Inferrer) Infer(target, source Type) {
	inf.infer(target, source, 0)
}

func (inf *Inferrer) infer(target, source Type, depth int) {
	if target == nil || source == nil || depth > maxRelationDepth {
		return
	}
	target, source = Deref(target), Deref(source)
	if _, ok := source.(*Lazy); ok {
		return
	}
	if p, ok := target.(*TypeParam); ok {
		if i, ok := inf.index[p]; ok {
			if _, pinned := inf.fixed[p]; !pinned {
				inf.candidates[i] = append(inf.candidates[i], source)
			}
		}
		return
	}
	if !inf.in.IsGeneric(target) {
		return
	}
	key := typePair{source.ID(), target.ID()}
	if inf.visiting.Contains(key) {
		return
	}
	inf.visiting.Insert(key)
	defer inf.visiting.Remove(key)

	switch t := target.(type) {
	case *Union:
		inf.inferToUnion(t, source, depth)
		return
	case *Intersection:
		for _, m := range t.Members {
			inf.infer(m, source, depth+1)
		}
		return
	}
	if su, ok := source.(*Union); ok {
		for _, m := range su.Members {
			inf.infer(target, m, depth+1)
		}
		return
	}
	switch t := target.(type) {
	case *Array:
		switch s := source.(type) {
		case *Array:
			inf.infer(t.Elem, s.Elem, depth+1)
		case *Tuple:
			inf.infer(t.Elem, inf.in.elementType(s), depth+1)
		default:
			if info, ok := inf.in.IndexInfoOf(source, Number); ok {
				inf.infer(t.Elem, info.Type, depth+1)
			}
		}
	case *Tuple:
		switch s := source.(type) {
		case *Tuple:
			for i, e := range t.Elems {
				if e.Rest {
					rest := s.Elems[min(i, len(s.Elems)):]
					elems := make([]Type, 0, len(rest))
					for _, r := range rest {
						elems = append(elems, r.Type)
					}
					inf.infer(e.Type, inf.in.TupleOf(elems...), depth+1)
					break
				}
				if i < len(s.Elems) {
					inf.infer(e.Type, s.Elems[i].Type, depth+1)
				}
			}
		case *Array:
			for _, e := range t.Elems {
				if e.Rest {
					inf.infer(e.Type, s, depth+1)
					continue
				}
				inf.infer(e.Type, s.Elem, depth+1)
			}
		}
	case *Ref:
		if s, ok := source.(*Ref); ok && s.Decl == t.Decl {
			for i := range t.Args {
				if i < len(s.Args) {
					inf.infer(t.Args[i], s.Args[i], depth+1)
				}
			}
			return
		}
		if exp := inf.in.Expand(t); exp != Type(t) {
			inf.infer(exp, source, depth+1)
		}
	case *Object:
		inf.inferObject(t, source, depth)
	case *Function:
		inf.inferSignatures(t.Signatures, inf.in.Signatures(source, false), depth)
	case *Indexed, *KeyOf, *Conditional, *Mapped:
		// no inference through deferred forms
	}
}

// inferToUnion matches source members against the concrete members of a
// target union and infers the remainder to the single naked parameter,
// so T | undefined against string | undefined yields T = string.
func (inf *Inferrer) inferToUnion(t *Union, source Type, depth int) {
	var naked []*TypeParam
	var concrete, generic []Type
	for _, m := range t.Members {
		if p, ok := m.(*TypeParam); ok {
			if _, mine := inf.index[p]; mine {
				naked = append(naked, p)
				continue
			}
		}
		if inf.in.IsGeneric(m) {
			generic = append(generic, m)
			continue
		}
		concrete = append(concrete, m)
	}
	var remaining []Type
	for _, sm := range Members(source) {
		matched := false
		for _, c := range concrete {
			if inf.in.IsIdentical(sm, c) {
				matched = true
				break
			}
		}
		if !matched {
			remaining = append(remaining, sm)
		}
	}
	rest := inf.in.Union(remaining...)
	for _, g := range generic {
		inf.infer(g, rest, depth+1)
	}
	if len(naked) == 1 && len(remaining) > 0 {
		inf.infer(naked[0], rest, depth+1)
	}
}

func (inf *Inferrer) inferObject(t *Object, source Type, depth int) {
	for _, tp := range t.Props {
		if sp, ok := inf.in.PropertyOf(source, tp.Name); ok {
			inf.infer(tp.Type, sp.Type, depth+1)
		}
	}
	inf.inferSignatures(t.Calls, inf.in.Signatures(source, false), depth)
	inf.inferSignatures(t.Constructs, inf.in.Signatures(source, true), depth)
	for _, info := range t.Index {
		if si, ok := inf.in.IndexInfoOf(source, info.Key); ok {
			inf.infer(info.Type, si.Type, depth+1)
			continue
		}
		for _, p := range inf.in.Properties(source) {
			inf.infer(info.Type, p.Type, depth+1)
		}
	}
}

// inferSignatures pairs the last target signature with the last source
// signature.
func (inf *Inferrer) inferSignatures(targets, sources []*Signature, depth int) {
	if len(targets) == 0 || len(sources) == 0 {
		return
	}
	inf.InferSignature(targets[len(targets)-1], sources[len(sources)-1])
}

// InferSignature infers from the parameters and return of source into
// target.
func (inf *Inferrer) InferSignature(target, source *Signature) {
	n := len(target.Params)
	for i := 0; i < n; i++ {
		tp, tok := paramTypeAt(inf.in, target, i)
		sp, sok := paramTypeAt(inf.in, source, i)
		if tok && sok {
			inf.infer(tp, sp, 1)
		}
	}
	if target.Return != nil && source.Return != nil {
		inf.infer(target.Return, source.Return, 1)
	}
}

// Current returns the solution so far without falling back for
// parameters that have no candidates; those map to unknown.
func (inf *Inferrer) Current() Subst {
	subst := make(Subst, len(inf.params))
	for i, p := range inf.params {
		if t, ok := inf.fixed[p]; ok {
			subst[p] = t
			continue
		}
		if len(inf.candidates[i]) == 0 {
			subst[p] = Unknown
			continue
		}
		subst[p] = inf.union(p, inf.candidates[i], true)
	}
	return subst
}

// Solve returns the substitution: the widened union of candidates per
// parameter, or default, constraint, unknown when nothing was inferred.
// A solution violating the constraint is replaced by the constraint.
func (inf *Inferrer) Solve() Subst {
	return inf.solve(true)
}

func (inf *Inferrer) solve(widen bool) Subst {
	subst := make(Subst, len(inf.params))
	for i, p := range inf.params {
		if t, ok := inf.fixed[p]; ok {
			subst[p] = t
			continue
		}
		cands := inf.candidates[i]
		if len(cands) == 0 {
			switch {
			case p.Default != nil:
				subst[p] = inf.in.Instantiate(p.Default, subst)
			case p.Constraint != nil:
				subst[p] = inf.in.Instantiate(p.Constraint, subst)
			default:
				subst[p] = Unknown
			}
			continue
		}
		t := inf.union(p, cands, widen)
		if p.Constraint != nil {
			c := inf.in.Instantiate(p.Constraint, subst)
			if !inf.in.IsAssignable(t, c) {
				t = c
			}
		}
		subst[p] = t
	}
	return subst
}

func (inf *Inferrer) union(p *TypeParam, cands []Type, widen bool) Type {
	keep := !widen || keepsLiterals(p)
	out := make([]Type, 0, len(cands))
	for _, c := range cands {
		if !keep {
			c = inf.in.WidenLiteral(c)
		}
		out = append(out, c)
	}
	return inf.in.Union(out...)
}

// keepsLiterals reports whether p's constraint asks for literal precision
// (a primitive or literal bound such as `T extends string`).
func keepsLiterals(p *TypeParam) bool {
	if p.Constraint == nil {
		return false
	}
	for _, m := range Members(p.Constraint) {
		switch Deref(m).Kind() {
		case KindString, KindNumber, KindBigInt, KindLiteral, KindEnumMember:
			return true
		}
	}
	return false
}
