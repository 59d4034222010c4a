package types

// Narrowing filters. Each takes the declared (or currently narrowed) type
// of a reference and returns the subset consistent with a guard.

// TypeofTag returns the `typeof` result for values of t, or "" when t can
// produce several tags.
func TypeofTag(t Type) string {
	switch x := Deref(t).(type) {
	case *Intrinsic:
		switch x.kind {
		case KindString:
			return "string"
		case KindNumber:
			return "number"
		case KindBigInt:
			return "bigint"
		case KindSymbol:
			return "symbol"
		case KindUndefined, KindVoid:
			return "undefined"
		case KindNull, KindNonPrimitive:
			return "object"
		}
	case *Literal:
		switch x.LitKind {
		case LitString:
			return "string"
		case LitNumber:
			return "number"
		case LitBigInt:
			return "bigint"
		default:
			return "boolean"
		}
	case *EnumMember:
		return TypeofTag(x.Value)
	case *Function:
		return "function"
	case *Array, *Tuple, *Namespace:
		return "object"
	case *Object:
		if len(x.Calls) > 0 || len(x.Constructs) > 0 {
			return "function"
		}
		return "object"
	}
	return ""
}

var typeofPrimitives = map[string]Type{
	"string":    String,
	"number":    Number,
	"bigint":    BigInt,
	"symbol":    Symbol,
	"boolean":   Boolean,
	"undefined": Undefined,
}

// NarrowTypeof narrows t under `typeof x === tag` (positive) or `!==`.
func (in *Interner) NarrowTypeof(t Type, tag string, positive bool) Type {
	t = Deref(t)
	if t.Kind() == KindUnknown && positive {
		switch tag {
		case "object":
			return in.Union(NonPrimitive, Null)
		case "function":
			return in.Function(&Signature{Params: []Param{{Name: "args", Type: in.Array(Any), Rest: true}}, Return: Unknown})
		}
		if prim, ok := typeofPrimitives[tag]; ok {
			return prim
		}
		return t
	}
	if t.Kind() == KindAny {
		if positive {
			if prim, ok := typeofPrimitives[tag]; ok {
				return prim
			}
		}
		return t
	}
	return in.mapMembers(t, func(m Type) Type {
		got := in.typeofOf(m)
		if got == "" {
			if positive {
				if prim, ok := typeofPrimitives[tag]; ok {
					if in.IsAssignable(prim, m) {
						return prim
					}
					return in.Intersection(m, prim)
				}
			}
			return m
		}
		if (got == tag) == positive {
			return m
		}
		return Never
	})
}

func (in *Interner) typeofOf(t Type) string {
	switch x := Deref(t).(type) {
	case *Ref:
		if exp := in.Expand(x); exp != Type(x) {
			return in.typeofOf(exp)
		}
	case *TypeParam:
		if x.Constraint != nil {
			return in.typeofOf(x.Constraint)
		}
	case *Intersection:
		for _, m := range x.Members {
			if tag := in.typeofOf(m); tag != "" {
				return tag
			}
		}
	}
	return TypeofTag(t)
}

// mapMembers applies fn to each union member (type parameters with union
// constraints are mapped through their constraint).
func (in *Interner) mapMembers(t Type, fn func(Type) Type) Type {
	members := Members(t)
	out := make([]Type, 0, len(members))
	changed := false
	for _, m := range members {
		if m == Type(Boolean) {
			for _, b := range []Type{True, False} {
				nb := fn(b)
				changed = changed || nb != b
				out = append(out, nb)
			}
			continue
		}
		nm := fn(m)
		changed = changed || nm != m
		out = append(out, nm)
	}
	if !changed {
		return t
	}
	return in.Union(out...)
}

// NarrowTruthy narrows t to the values that are truthy (positive) or
// falsy.
func (in *Interner) NarrowTruthy(t Type, positive bool) Type {
	t = Deref(t)
	if t.Kind() == KindAny || t.Kind() == KindUnknown {
		return t
	}
	return in.mapMembers(t, func(m Type) Type {
		switch x := Deref(m).(type) {
		case *Intrinsic:
			switch x.kind {
			case KindNull, KindUndefined, KindVoid:
				if positive {
					return Never
				}
				return m
			case KindString:
				if !positive {
					return in.StringLit("")
				}
			case KindNumber:
				if !positive {
					return in.NumberLit(0)
				}
			case KindBigInt:
				if !positive {
					return in.BigIntLit("0")
				}
			case KindSymbol, KindNonPrimitive:
				if !positive {
					return Never
				}
			}
			return m
		case *Literal:
			falsy := isFalsyLiteral(x)
			if falsy == positive {
				return Never
			}
			return m
		case *EnumMember:
			if isFalsyLiteral(x.Value) == positive {
				return Never
			}
			return m
		case *TypeParam:
			if positive && x.Constraint != nil {
				narrowed := in.NarrowTruthy(x.Constraint, true)
				if narrowed != Deref(x.Constraint) {
					return in.Intersection(x, narrowed)
				}
			}
			return m
		case *Object, *Function, *Array, *Tuple, *Namespace:
			if positive {
				return m
			}
			return Never
		}
		return m
	})
}

func isFalsyLiteral(l *Literal) bool {
	switch l.LitKind {
	case LitString:
		return l.Str == ""
	case LitNumber:
		return l.Num == 0
	case LitBigInt:
		return l.Str == "0"
	default:
		return !l.Bool
	}
}

// NarrowEquality narrows t under `x === value` (positive) or `!==`. With
// loose equality (`==`), null and undefined match each other.
func (in *Interner) NarrowEquality(t, value Type, positive, loose bool) Type {
	t, value = Deref(t), Deref(value)
	if positive {
		if t.Kind() == KindAny || t.Kind() == KindUnknown {
			if IsUnit(value) {
				return value
			}
			return t
		}
		if loose && isNullish(value) {
			return in.filter(t, func(m Type) bool { return isNullish(m) || m == Type(Void) })
		}
		if !IsUnit(value) {
			narrowed := in.filter(t, func(m Type) bool { return in.IsComparable(m, value) })
			if narrowed == Type(Never) {
				return t
			}
			return narrowed
		}
		return in.mapMembers(t, func(m Type) Type {
			if m == value {
				return m
			}
			if in.IsAssignable(value, m) {
				return value
			}
			return Never
		})
	}
	if !IsUnit(value) {
		return t
	}
	if loose && isNullish(value) {
		return in.RemoveNullish(t)
	}
	return in.filter(t, func(m Type) bool { return m != value })
}

// NarrowDiscriminant narrows a union by the type of one of its members'
// properties: `x.kind === "a"`.
func (in *Interner) NarrowDiscriminant(t Type, prop string, value Type, positive bool) Type {
	t = Deref(t)
	members := Members(t)
	if len(members) < 2 {
		return t
	}
	return in.filter(t, func(m Type) bool {
		p, ok := in.PropertyOf(m, prop)
		if !ok {
			return !positive
		}
		pt := p.Type
		if p.Optional {
			pt = in.Optional(pt)
		}
		if positive {
			return in.IsAssignable(value, pt) || in.IsAssignable(pt, value)
		}
		// the member is excluded only when its property is exactly value
		return !(IsUnit(value) && pt == value)
	})
}

// NarrowTruthyProperty narrows a union by truthiness of a member property:
// `if (x.error)`.
func (in *Interner) NarrowTruthyProperty(t Type, prop string, positive bool) Type {
	t = Deref(t)
	if len(Members(t)) < 2 {
		return t
	}
	return in.filter(t, func(m Type) bool {
		p, ok := in.PropertyOf(m, prop)
		if !ok {
			return !positive
		}
		pt := p.Type
		if p.Optional {
			pt = in.Optional(pt)
		}
		return in.NarrowTruthy(pt, positive) != Type(Never)
	})
}

// NarrowIn narrows t under `"name" in x`.
func (in *Interner) NarrowIn(t Type, name string, positive bool) Type {
	t = Deref(t)
	return in.filter(t, func(m Type) bool {
		switch Deref(m).Kind() {
		case KindAny, KindUnknown, KindTypeParam, KindNonPrimitive:
			return true
		}
		p, ok := in.PropertyOf(m, name)
		if positive {
			return ok
		}
		return !ok || p.Optional
	})
}

// NarrowTo narrows t to target under a type predicate or instanceof
// (positive), or removes target's members (negative).
func (in *Interner) NarrowTo(t, target Type, positive bool) Type {
	t, target = Deref(t), Deref(target)
	if positive {
		if t.Kind() == KindAny || t.Kind() == KindUnknown {
			return target
		}
		narrowed := in.filter(t, func(m Type) bool { return in.IsAssignable(m, target) })
		if narrowed != Type(Never) {
			return narrowed
		}
		sub := in.filter(target, func(m Type) bool { return in.IsAssignable(m, t) })
		if sub != Type(Never) {
			return sub
		}
		return in.Intersection(t, target)
	}
	if t.Kind() == KindAny || t.Kind() == KindUnknown {
		return t
	}
	return in.filter(t, func(m Type) bool { return !in.IsAssignable(m, target) })
}
