package types

// WidenLiteral replaces literal types (and unions of them) with their
// base primitives. Enum members are kept.
func (in *Interner) WidenLiteral(t Type) Type {
	switch x := Deref(t).(type) {
	case *Literal:
		return x.Base()
	case *Union:
		if x == Boolean {
			return x
		}
		out := make([]Type, len(x.Members))
		changed := false
		for i, m := range x.Members {
			out[i] = in.WidenLiteral(m)
			changed = changed || out[i] != m
		}
		if !changed {
			return x
		}
		return in.Union(out...)
	}
	return t
}

// Widen is used for mutable locations initialized from an expression:
// literals widen to their base, and so do the property types of object
// literals and the element types of arrays. Without strict null checks,
// null and undefined widen to any.
func (in *Interner) Widen(t Type) Type {
	return in.widen(t, 0)
}

func (in *Interner) widen(t Type, depth int) Type {
	if depth > maxRelationDepth {
		return t
	}
	t = Deref(t)
	if !in.strictNullChecks && isNullish(t) {
		return Any
	}
	switch x := t.(type) {
	case *Literal:
		return x.Base()
	case *Union:
		if x == Boolean {
			return x
		}
		out := make([]Type, len(x.Members))
		for i, m := range x.Members {
			out[i] = in.widen(m, depth+1)
		}
		return in.Union(out...)
	case *Object:
		if len(x.Props) == 0 {
			return x
		}
		props := make([]Property, len(x.Props))
		changed := false
		for i, p := range x.Props {
			if !p.Readonly && !p.Method {
				nt := in.widen(p.Type, depth+1)
				changed = changed || nt != p.Type
				p.Type = nt
			}
			props[i] = p
		}
		if !changed {
			return x
		}
		return in.Object(ObjectShape{Props: props, Calls: x.Calls, Constructs: x.Constructs, Index: x.Index})
	case *Array:
		if x.Readonly {
			return x
		}
		elem := in.widen(x.Elem, depth+1)
		if elem == x.Elem {
			return x
		}
		return in.Array(elem)
	}
	return t
}
