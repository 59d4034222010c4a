package types

// Subst maps type parameters to their arguments.
type Subst map[*TypeParam]Type

// Instantiate replaces type parameters in t according to subst.
// Conditional, mapped, indexed and keyof types are re-evaluated once their
// inputs become concrete.
func (in *Interner) Instantiate(t Type, subst Subst) Type {
	if len(subst) == 0 || t == nil {
		return t
	}
	return in.instantiate(t, subst, 0)
}

func (in *Interner) instantiate(t Type, subst Subst, depth int) Type {
	if t == nil {
		return nil
	}
	if depth > maxRelationDepth {
		return t
	}
	inst := func(x Type) Type { return in.instantiate(x, subst, depth+1) }
	switch x := t.(type) {
	case *TypeParam:
		if v, ok := subst[x]; ok && v != nil {
			return v
		}
		return x
	case *Intrinsic, *Literal, *EnumMember, *Namespace:
		return x
	case *Lazy:
		if target, ok := x.Resolved(); ok {
			return inst(target)
		}
		return x
	case *Union:
		out := make([]Type, len(x.Members))
		changed := false
		for i, m := range x.Members {
			out[i] = inst(m)
			changed = changed || out[i] != m
		}
		if !changed {
			return x
		}
		return in.Union(out...)
	case *Intersection:
		out := make([]Type, len(x.Members))
		changed := false
		for i, m := range x.Members {
			out[i] = inst(m)
			changed = changed || out[i] != m
		}
		if !changed {
			return x
		}
		return in.Intersection(out...)
	case *Object:
		if !in.IsGeneric(x) {
			return x
		}
		props := make([]Property, len(x.Props))
		for i, p := range x.Props {
			p.Type = inst(p.Type)
			props[i] = p
		}
		index := make([]IndexInfo, len(x.Index))
		for i, info := range x.Index {
			info.Type = inst(info.Type)
			index[i] = info
		}
		return in.Object(ObjectShape{
			Props:      props,
			Calls:      in.instantiateSignatures(x.Calls, subst, depth),
			Constructs: in.instantiateSignatures(x.Constructs, subst, depth),
			Index:      index,
		})
	case *Function:
		if !in.IsGeneric(x) {
			return x
		}
		return in.Function(in.instantiateSignatures(x.Signatures, subst, depth)...)
	case *Array:
		elem := inst(x.Elem)
		if elem == x.Elem {
			return x
		}
		return in.array(elem, x.Readonly)
	case *Tuple:
		elems := make([]TupleElem, len(x.Elems))
		changed := false
		for i, e := range x.Elems {
			nt := inst(e.Type)
			changed = changed || nt != e.Type
			e.Type = nt
			elems[i] = e
		}
		if !changed {
			return x
		}
		return in.normalizeTuple(elems, x.Readonly)
	case *Ref:
		if len(x.Args) == 0 {
			return x
		}
		args := make([]Type, len(x.Args))
		changed := false
		for i, a := range x.Args {
			args[i] = inst(a)
			changed = changed || args[i] != a
		}
		if !changed {
			return x
		}
		return in.Ref(x.Decl, args...)
	case *Conditional:
		if p, ok := x.Check.(*TypeParam); ok && x.Distributive {
			if v, ok := subst[p]; ok {
				if u, ok := Deref(v).(*Union); ok {
					parts := make([]Type, 0, len(u.Members))
					for _, m := range u.Members {
						member := make(Subst, len(subst))
						for k, val := range subst {
							member[k] = val
						}
						member[p] = m
						parts = append(parts, in.instantiate(x, member, depth+1))
					}
					return in.Union(parts...)
				}
				if Deref(v) == Type(Never) {
					return Never
				}
			}
		}
		return in.Conditional(inst(x.Check), inst(x.Extends), inst(x.True), inst(x.False), x.InferParams, x.Distributive)
	case *Mapped:
		if k, ok := x.Constraint.(*KeyOf); ok {
			if p, ok := k.Target.(*TypeParam); ok {
				if v, ok := subst[p]; ok {
					if mapped, ok := in.mapArrayLike(x, p, Deref(v), subst, depth); ok {
						return mapped
					}
				}
			}
			// keep the source so optional and readonly flags carry over
			if source := Deref(inst(k.Target)); !in.IsGeneric(source) {
				return in.buildMapped(x, in.KeyOf(source), inst(x.Template), source)
			}
		}
		return in.Mapped(x.Param, inst(x.Constraint), inst(x.Template), x.Optional, x.Readonly)
	case *Indexed:
		return in.Indexed(inst(x.Object), inst(x.Index))
	case *KeyOf:
		return in.KeyOf(inst(x.Target))
	}
	return t
}

// mapArrayLike applies a homomorphic mapped type over an array or tuple
// argument element-wise, keeping the array shape.
func (in *Interner) mapArrayLike(m *Mapped, source *TypeParam, arg Type, subst Subst, depth int) (Type, bool) {
	elemSubst := func(key Type) Subst {
		s := make(Subst, len(subst)+1)
		for k, v := range subst {
			s[k] = v
		}
		s[source] = arg
		s[m.Param] = key
		return s
	}
	switch x := arg.(type) {
	case *Array:
		elem := in.instantiate(m.Template, elemSubst(Number), depth+1)
		return in.array(elem, x.Readonly || m.Readonly == ModAdd), true
	case *Tuple:
		elems := make([]TupleElem, len(x.Elems))
		for i, e := range x.Elems {
			e.Type = in.instantiate(m.Template, elemSubst(in.NumberLit(float64(i))), depth+1)
			if m.Optional == ModAdd {
				e.Optional = true
			} else if m.Optional == ModRemove {
				e.Optional = false
			}
			elems[i] = e
		}
		return in.Tuple(elems, x.Readonly || m.Readonly == ModAdd), true
	}
	return nil, false
}

// normalizeTuple splices rest elements that became tuples.
func (in *Interner) normalizeTuple(elems []TupleElem, readonly bool) Type {
	out := make([]TupleElem, 0, len(elems))
	for _, e := range elems {
		if e.Rest {
			if inner, ok := Deref(e.Type).(*Tuple); ok {
				out = append(out, inner.Elems...)
				continue
			}
		}
		out = append(out, e)
	}
	return in.Tuple(out, readonly)
}

func (in *Interner) instantiateSignatures(sigs []*Signature, subst Subst, depth int) []*Signature {
	if len(sigs) == 0 {
		return nil
	}
	out := make([]*Signature, len(sigs))
	for i, s := range sigs {
		out[i] = in.instantiateSignature(s, subst, depth)
	}
	return out
}

// InstantiateSignature substitutes into a signature. Type parameters the
// signature declares itself are kept unless subst binds them; those whose
// bounds mention substituted parameters are re-created.
func (in *Interner) InstantiateSignature(s *Signature, subst Subst) *Signature {
	if len(subst) == 0 {
		return s
	}
	return in.instantiateSignature(s, subst, 0)
}

func (in *Interner) instantiateSignature(s *Signature, subst Subst, depth int) *Signature {
	local := subst
	copied := false
	var typeParams []*TypeParam
	for _, tp := range s.TypeParams {
		if _, bound := subst[tp]; bound {
			continue
		}
		if in.boundsChange(tp, subst) {
			if !copied {
				local = copySubst(subst)
				copied = true
			}
			fresh := in.NewTypeParam(tp.Name)
			local[tp] = fresh
			typeParams = append(typeParams, fresh)
			continue
		}
		typeParams = append(typeParams, tp)
	}
	for _, tp := range s.TypeParams {
		if fresh, ok := local[tp].(*TypeParam); ok && fresh != tp {
			if _, outer := subst[tp]; !outer {
				fresh.Constraint = in.instantiate(tp.Constraint, local, depth+1)
				fresh.Default = in.instantiate(tp.Default, local, depth+1)
			}
		}
	}
	params := make([]Param, len(s.Params))
	for i, p := range s.Params {
		p.Type = in.instantiate(p.Type, local, depth+1)
		params[i] = p
	}
	out := &Signature{
		TypeParams: typeParams,
		Params:     params,
		Return:     in.instantiate(s.Return, local, depth+1),
		Method:     s.Method,
	}
	if s.Predicate != nil {
		pred := *s.Predicate
		pred.Type = in.instantiate(pred.Type, local, depth+1)
		out.Predicate = &pred
	}
	return out
}

func (in *Interner) boundsChange(tp *TypeParam, subst Subst) bool {
	if tp.Constraint != nil && in.instantiate(tp.Constraint, subst, 0) != tp.Constraint {
		return true
	}
	return tp.Default != nil && in.instantiate(tp.Default, subst, 0) != tp.Default
}

func copySubst(s Subst) Subst {
	out := make(Subst, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}
