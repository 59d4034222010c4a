package types

import (
	"sort"
	"strconv"
)

// Apparent returns the library type used for member lookup on t.
func (in *Interner) Apparent(t Type) Type {
	if in.host == nil {
		return t
	}
	if app := in.host.Apparent(t); app != nil {
		return app
	}
	return t
}

// Expand returns the structural body of a reference, instantiated with its
// arguments. Results are cached once the declaration is resolved.
func (in *Interner) Expand(r *Ref) Type {
	if cached, ok := in.expansions.Load(r); ok {
		return cached.(Type)
	}
	decl := r.Decl
	if decl.Resolving() && !decl.Resolved() {
		return r
	}
	body := decl.Body()
	if body == Type(r) {
		return Fallback
	}
	out := body
	if len(decl.Params) > 0 {
		out = in.Instantiate(body, in.FillTypeArgs(decl.Params, r.Args))
	}
	if decl.Resolved() {
		in.expansions.Store(r, out)
	}
	return out
}

// FillTypeArgs pairs params with args; missing arguments use the declared
// default, then the constraint, then unknown.
func (in *Interner) FillTypeArgs(params []*TypeParam, args []Type) Subst {
	subst := make(Subst, len(params))
	for i, p := range params {
		if i < len(args) && args[i] != nil {
			subst[p] = args[i]
			continue
		}
		switch {
		case p.Default != nil:
			subst[p] = in.Instantiate(p.Default, subst)
		case p.Constraint != nil:
			subst[p] = in.Instantiate(p.Constraint, subst)
		default:
			subst[p] = Unknown
		}
	}
	return subst
}

// Evaluate reduces conditional, mapped, indexed-access and keyof types
// whose inputs are concrete. Generic forms are returned unchanged.
func (in *Interner) Evaluate(t Type) Type {
	switch x := t.(type) {
	case *Conditional:
		return in.evaluateConditional(x)
	case *Mapped:
		return in.evaluateMapped(x)
	case *Indexed:
		return in.evaluateIndexed(x)
	case *KeyOf:
		return in.evaluateKeyOf(x)
	}
	return t
}

func (in *Interner) evaluateConditional(c *Conditional) Type {
	if in.IsGeneric(c.Check) || in.isGenericExcept(c.Extends, c.InferParams) {
		return c
	}
	check := Deref(c.Check)
	if c.Distributive {
		if u, ok := check.(*Union); ok {
			parts := make([]Type, 0, len(u.Members))
			for _, m := range u.Members {
				parts = append(parts, in.conditionalBranch(c, m))
			}
			return in.Union(parts...)
		}
		if check == Type(Never) {
			return Never
		}
	}
	return in.conditionalBranch(c, check)
}

func (in *Interner) conditionalBranch(c *Conditional, check Type) Type {
	if check.Kind() == KindAny {
		return in.Union(in.Evaluate(c.True), in.Evaluate(c.False))
	}
	ext := c.Extends
	subst := Subst{}
	if len(c.InferParams) > 0 {
		inf := in.NewInferrer(c.InferParams)
		inf.Infer(ext, check)
		subst = inf.solve(false)
		ext = in.Instantiate(ext, subst)
	}
	if in.IsAssignable(check, ext) {
		return in.Evaluate(in.Instantiate(c.True, subst))
	}
	return in.Evaluate(in.Instantiate(c.False, subst))
}

func (in *Interner) evaluateMapped(m *Mapped) Type {
	constraint := in.Evaluate(Deref(m.Constraint))
	if in.IsGeneric(constraint) {
		return m
	}
	var source Type
	if k, ok := Deref(m.Constraint).(*KeyOf); ok {
		source = Deref(k.Target)
	}
	return in.buildMapped(m, constraint, m.Template, source)
}

// buildMapped produces the object for a mapped type whose key set is
// known. With a source (homomorphic mapping) each property keeps the
// source's optional and readonly flags unless a modifier overrides them.
func (in *Interner) buildMapped(m *Mapped, constraint, template, source Type) Type {
	var props []Property
	var index []IndexInfo
	for _, key := range Members(constraint) {
		switch kx := key.(type) {
		case *Literal:
			var name string
			switch kx.LitKind {
			case LitString:
				name = kx.Str
			case LitNumber:
				name = formatNumber(kx.Num)
			default:
				continue
			}
			valueType := in.Instantiate(template, Subst{m.Param: kx})
			prop := Property{Name: name, Type: valueType}
			if source != nil {
				if sp, ok := in.PropertyOf(source, name); ok {
					prop.Optional = sp.Optional
					prop.Readonly = sp.Readonly
					if sp.Optional {
						prop.Type = in.RemoveUndefined(prop.Type)
					}
				}
			}
			switch m.Optional {
			case ModAdd:
				prop.Optional = true
			case ModRemove:
				if prop.Optional {
					prop.Type = in.RemoveUndefined(prop.Type)
				}
				prop.Optional = false
			}
			switch m.Readonly {
			case ModAdd:
				prop.Readonly = true
			case ModRemove:
				prop.Readonly = false
			}
			props = append(props, prop)
		case *Intrinsic:
			if kx.kind == KindString || kx.kind == KindNumber {
				index = append(index, IndexInfo{Key: kx, Type: in.Instantiate(template, Subst{m.Param: kx}), Readonly: m.Readonly == ModAdd})
			}
		}
	}
	return in.Object(ObjectShape{Props: props, Index: index})
}

func (in *Interner) evaluateIndexed(x *Indexed) Type {
	obj := in.Evaluate(Deref(x.Object))
	idx := in.Evaluate(Deref(x.Index))
	if in.IsGeneric(obj) || in.IsGeneric(idx) {
		return x
	}
	if u, ok := idx.(*Union); ok {
		parts := make([]Type, 0, len(u.Members))
		for _, m := range u.Members {
			parts = append(parts, in.indexedAccess(obj, m))
		}
		return in.Union(parts...)
	}
	return in.indexedAccess(obj, idx)
}

// indexedAccess returns the type of obj[idx] at the type level, or
// Fallback when there is no such member.
func (in *Interner) indexedAccess(obj, idx Type) Type {
	if IsAnyLike(obj) {
		return obj
	}
	switch kx := idx.(type) {
	case *Literal:
		name := ""
		switch kx.LitKind {
		case LitString:
			name = kx.Str
		case LitNumber:
			if tup, ok := Deref(obj).(*Tuple); ok {
				i := int(kx.Num)
				if i >= 0 && i < len(tup.Elems) && !tup.Elems[i].Rest {
					return tup.Elems[i].Type
				}
			}
			name = formatNumber(kx.Num)
		default:
			return Fallback
		}
		if p, ok := in.PropertyOf(obj, name); ok {
			if p.Optional && in.strictNullChecks {
				return in.Optional(p.Type)
			}
			return p.Type
		}
		key := Type(String)
		if kx.LitKind == LitNumber {
			key = Number
		}
		if info, ok := in.IndexInfoOf(obj, key); ok {
			return info.Type
		}
	case *Intrinsic:
		if info, ok := in.IndexInfoOf(obj, kx); ok {
			return info.Type
		}
	}
	return Fallback
}

func (in *Interner) evaluateKeyOf(k *KeyOf) Type {
	target := in.Evaluate(Deref(k.Target))
	if in.IsGeneric(target) {
		return k
	}
	return in.keysOf(target)
}

func (in *Interner) keysOf(t Type) Type {
	switch x := Deref(t).(type) {
	case *Intrinsic:
		if x.kind == KindAny {
			return in.Union(String, Number, Symbol)
		}
		return Never
	case *Union:
		// only keys present in every member
		parts := make([]Type, 0, len(x.Members))
		for _, m := range x.Members {
			parts = append(parts, in.keysOf(m))
		}
		return in.Intersection(parts...)
	case *Intersection:
		parts := make([]Type, 0, len(x.Members))
		for _, m := range x.Members {
			parts = append(parts, in.keysOf(m))
		}
		return in.Union(parts...)
	case *Array, *Tuple:
		keys := []Type{Number, in.StringLit("length")}
		if tup, ok := x.(*Tuple); ok {
			for i := range tup.Elems {
				keys = append(keys, in.StringLit(strconv.Itoa(i)))
			}
		}
		return in.Union(keys...)
	}
	var keys []Type
	for _, p := range in.Properties(t) {
		keys = append(keys, in.StringLit(p.Name))
	}
	if _, ok := in.IndexInfoOf(t, String); ok {
		keys = append(keys, String, Number)
	} else if _, ok := in.IndexInfoOf(t, Number); ok {
		keys = append(keys, Number)
	}
	return in.Union(keys...)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Member lookup

// PropertyOf looks up a declared member of t. Index signatures are not
// consulted; see AccessProperty.
func (in *Interner) PropertyOf(t Type, name string) (Property, bool) {
	return in.propertyOf(t, name, 0)
}

func (in *Interner) propertyOf(t Type, name string, depth int) (Property, bool) {
	if depth > maxRelationDepth {
		return Property{}, false
	}
	t = Deref(t)
	switch x := t.(type) {
	case *Object:
		return x.Prop(name)
	case *Ref:
		exp := in.Expand(x)
		if exp == Type(x) {
			return Property{}, false
		}
		return in.propertyOf(exp, name, depth+1)
	case *Union:
		var types []Type
		out := Property{Name: name}
		for _, m := range x.Members {
			p, ok := in.propertyOf(m, name, depth+1)
			if !ok {
				return Property{}, false
			}
			types = append(types, p.Type)
			out.Optional = out.Optional || p.Optional
			out.Readonly = out.Readonly || p.Readonly
			out.Method = out.Method || p.Method
		}
		out.Type = in.Union(types...)
		return out, true
	case *Intersection:
		var types []Type
		out := Property{Name: name, Optional: true}
		for _, m := range x.Members {
			p, ok := in.propertyOf(m, name, depth+1)
			if !ok {
				continue
			}
			types = append(types, p.Type)
			out.Optional = out.Optional && p.Optional
			out.Readonly = out.Readonly || p.Readonly
			out.Method = out.Method || p.Method
		}
		if len(types) == 0 {
			return Property{}, false
		}
		out.Type = in.Intersection(types...)
		return out, true
	case *TypeParam:
		if x.Constraint == nil {
			return Property{}, false
		}
		return in.propertyOf(x.Constraint, name, depth+1)
	case *Namespace:
		exports := x.Exports()
		if exports == nil {
			return Property{Name: name, Type: Any}, true
		}
		et, ok := exports[name]
		if !ok {
			return Property{}, false
		}
		return Property{Name: name, Type: et, Readonly: true}, true
	case *Tuple:
		if isNumericName(name) {
			i, _ := strconv.Atoi(name)
			if i < len(x.Elems) && !x.Elems[i].Rest {
				e := x.Elems[i]
				return Property{Name: name, Type: e.Type, Optional: e.Optional, Readonly: x.Readonly}, true
			}
		}
		if name == "length" && !x.HasRest() && x.MinLength() == len(x.Elems) {
			return Property{Name: name, Type: in.NumberLit(float64(len(x.Elems))), Readonly: true}, true
		}
	case *Conditional, *Mapped, *Indexed, *KeyOf:
		if ev := in.Evaluate(x); ev != t {
			return in.propertyOf(ev, name, depth+1)
		}
		if c, ok := x.(*Conditional); ok {
			return in.propertyOf(in.Union(c.True, c.False), name, depth+1)
		}
		return Property{}, false
	case *EnumMember:
		return in.propertyOf(x.Value.Base(), name, depth+1)
	case *Lazy:
		return Property{Name: name, Type: Any}, true
	}
	app := in.Apparent(t)
	if app != t {
		return in.propertyOf(app, name, depth+1)
	}
	return Property{}, false
}

// AccessProperty resolves `t.name` for expressions: declared members
// first, then string or number index signatures.
func (in *Interner) AccessProperty(t Type, name string) (Property, bool) {
	if p, ok := in.PropertyOf(t, name); ok {
		return p, true
	}
	if isNumericName(name) {
		if info, ok := in.IndexInfoOf(t, Number); ok {
			return Property{Name: name, Type: info.Type, Readonly: info.Readonly}, true
		}
	}
	if info, ok := in.IndexInfoOf(t, String); ok {
		return Property{Name: name, Type: info.Type, Readonly: info.Readonly}, true
	}
	return Property{}, false
}

// Properties lists the members of an object-like type, sorted by name.
func (in *Interner) Properties(t Type) []Property {
	return in.properties(t, 0)
}

func (in *Interner) properties(t Type, depth int) []Property {
	if depth > maxRelationDepth {
		return nil
	}
	t = Deref(t)
	switch x := t.(type) {
	case *Object:
		return x.Props
	case *Ref:
		exp := in.Expand(x)
		if exp == Type(x) {
			return nil
		}
		return in.properties(exp, depth+1)
	case *Intersection:
		names := map[string]struct{}{}
		var order []string
		for _, m := range x.Members {
			for _, p := range in.properties(m, depth+1) {
				if _, ok := names[p.Name]; !ok {
					names[p.Name] = struct{}{}
					order = append(order, p.Name)
				}
			}
		}
		sort.Strings(order)
		out := make([]Property, 0, len(order))
		for _, name := range order {
			if p, ok := in.PropertyOf(x, name); ok {
				out = append(out, p)
			}
		}
		return out
	case *Union:
		if len(x.Members) == 0 {
			return nil
		}
		var out []Property
		for _, p := range in.properties(x.Members[0], depth+1) {
			if up, ok := in.PropertyOf(x, p.Name); ok {
				out = append(out, up)
			}
		}
		return out
	case *TypeParam:
		if x.Constraint != nil {
			return in.properties(x.Constraint, depth+1)
		}
	case *Namespace:
		exports := x.Exports()
		names := make([]string, 0, len(exports))
		for name := range exports {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]Property, 0, len(names))
		for _, name := range names {
			out = append(out, Property{Name: name, Type: exports[name], Readonly: true})
		}
		return out
	case *Conditional, *Mapped, *Indexed, *KeyOf:
		if ev := in.Evaluate(x); ev != t {
			return in.properties(ev, depth+1)
		}
	}
	return nil
}

// Signatures returns the call (or construct) signatures of t.
func (in *Interner) Signatures(t Type, construct bool) []*Signature {
	return in.signatures(t, construct, 0)
}

func (in *Interner) signatures(t Type, construct bool, depth int) []*Signature {
	if depth > maxRelationDepth {
		return nil
	}
	t = Deref(t)
	switch x := t.(type) {
	case *Function:
		if construct {
			return nil
		}
		return x.Signatures
	case *Object:
		if construct {
			return x.Constructs
		}
		return x.Calls
	case *Ref:
		exp := in.Expand(x)
		if exp == Type(x) {
			return nil
		}
		return in.signatures(exp, construct, depth+1)
	case *TypeParam:
		if x.Constraint != nil {
			return in.signatures(x.Constraint, construct, depth+1)
		}
	case *Intersection:
		var out []*Signature
		for _, m := range x.Members {
			out = append(out, in.signatures(m, construct, depth+1)...)
		}
		return out
	case *Union:
		return in.unionSignatures(x, construct, depth)
	case *Conditional, *Mapped, *Indexed, *KeyOf:
		if ev := in.Evaluate(x); ev != t {
			return in.signatures(ev, construct, depth+1)
		}
	}
	return nil
}

// unionSignatures combines single, non-generic signatures of equal arity
// across union members: parameters intersect and returns unite.
func (in *Interner) unionSignatures(u *Union, construct bool, depth int) []*Signature {
	var first []*Signature
	same := true
	var sigs []*Signature
	for i, m := range u.Members {
		ms := in.signatures(m, construct, depth+1)
		if len(ms) == 0 {
			return nil
		}
		if i == 0 {
			first = ms
		} else if !sameSignatures(first, ms) {
			same = false
		}
		if len(ms) == 1 && len(ms[0].TypeParams) == 0 {
			sigs = append(sigs, ms[0])
		}
	}
	if same {
		return first
	}
	if len(sigs) != len(u.Members) {
		return nil
	}
	arity := len(sigs[0].Params)
	for _, s := range sigs[1:] {
		if len(s.Params) != arity {
			return nil
		}
	}
	params := make([]Param, arity)
	returns := make([]Type, 0, len(sigs))
	for i := range params {
		var types []Type
		for _, s := range sigs {
			types = append(types, s.Params[i].Type)
		}
		params[i] = sigs[0].Params[i]
		params[i].Type = in.Intersection(types...)
	}
	for _, s := range sigs {
		returns = append(returns, s.Return)
	}
	return []*Signature{{Params: params, Return: in.Union(returns...)}}
}

func sameSignatures(a, b []*Signature) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IndexInfoOf returns the index signature of t for key String or Number.
// A number index falls back to the string index.
func (in *Interner) IndexInfoOf(t Type, key Type) (IndexInfo, bool) {
	return in.indexInfoOf(t, key, 0)
}

func (in *Interner) indexInfoOf(t Type, key Type, depth int) (IndexInfo, bool) {
	if depth > maxRelationDepth {
		return IndexInfo{}, false
	}
	t = Deref(t)
	switch x := t.(type) {
	case *Object:
		if info, ok := x.IndexFor(key); ok {
			return info, true
		}
		if key == Type(Number) {
			return x.IndexFor(String)
		}
		return IndexInfo{}, false
	case *Array:
		if key == Type(Number) {
			return IndexInfo{Key: Number, Type: x.Elem, Readonly: x.Readonly}, true
		}
		return IndexInfo{}, false
	case *Tuple:
		if key == Type(Number) {
			return IndexInfo{Key: Number, Type: in.elementType(x), Readonly: x.Readonly}, true
		}
		return IndexInfo{}, false
	case *Ref:
		exp := in.Expand(x)
		if exp == Type(x) {
			return IndexInfo{}, false
		}
		return in.indexInfoOf(exp, key, depth+1)
	case *Intersection:
		for _, m := range x.Members {
			if info, ok := in.indexInfoOf(m, key, depth+1); ok {
				return info, true
			}
		}
	case *Union:
		var types []Type
		for _, m := range x.Members {
			info, ok := in.indexInfoOf(m, key, depth+1)
			if !ok {
				return IndexInfo{}, false
			}
			types = append(types, info.Type)
		}
		return IndexInfo{Key: key, Type: in.Union(types...)}, true
	case *TypeParam:
		if x.Constraint != nil {
			return in.indexInfoOf(x.Constraint, key, depth+1)
		}
	case *Intrinsic:
		if x.kind == KindAny {
			return IndexInfo{Key: key, Type: x}, true
		}
		if x.kind == KindString && key == Type(Number) {
			return IndexInfo{Key: Number, Type: String, Readonly: true}, true
		}
	case *Literal:
		if x.LitKind == LitString && key == Type(Number) {
			return IndexInfo{Key: Number, Type: String, Readonly: true}, true
		}
	case *Conditional, *Mapped, *Indexed, *KeyOf:
		if ev := in.Evaluate(x); ev != t {
			return in.indexInfoOf(ev, key, depth+1)
		}
	}
	return IndexInfo{}, false
}

// mergeIntersection flattens an intersection of object-like members into
// one object so it can be compared structurally.
func (in *Interner) mergeIntersection(x *Intersection) Type {
	props := in.Properties(x)
	var calls, constructs []*Signature
	var index []IndexInfo
	for _, m := range x.Members {
		calls = append(calls, in.Signatures(m, false)...)
		constructs = append(constructs, in.Signatures(m, true)...)
		for _, key := range []Type{String, Number} {
			if o, ok := Deref(m).(*Object); ok {
				if info, ok := o.IndexFor(key); ok {
					index = append(index, info)
				}
			}
		}
	}
	if len(props) == 0 && len(calls) == 0 && len(constructs) == 0 && len(index) == 0 {
		return nil
	}
	return in.Object(ObjectShape{Props: props, Calls: calls, Constructs: constructs, Index: index})
}

func (in *Interner) namespaceObject(ns *Namespace) Type {
	exports := ns.Exports()
	if exports == nil {
		return Any
	}
	return in.Object(ObjectShape{Props: in.Properties(ns)})
}

// RemoveUndefined drops undefined (and void) members.
func (in *Interner) RemoveUndefined(t Type) Type {
	return in.filter(t, func(m Type) bool { return m != Type(Undefined) && m != Type(Void) })
}

// RemoveNullish drops null, undefined and void members.
func (in *Interner) RemoveNullish(t Type) Type {
	t = Deref(t)
	if p, ok := t.(*TypeParam); ok && p.Constraint != nil {
		if in.RemoveNullish(p.Constraint) != p.Constraint {
			return in.Intersection(p, in.EmptyObject())
		}
		return p
	}
	if t == Type(Unknown) {
		return t
	}
	return in.filter(t, func(m Type) bool { return !isNullish(m) && m != Type(Void) })
}

func (in *Interner) filter(t Type, keep func(Type) bool) Type {
	t = Deref(t)
	u, ok := t.(*Union)
	if !ok {
		if keep(t) {
			return t
		}
		return Never
	}
	kept := make([]Type, 0, len(u.Members))
	for _, m := range u.Members {
		if keep(m) {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(u.Members) {
		return t
	}
	return in.Union(kept...)
}

// MaxDistribution bounds the number of objects produced when a union-typed
// member is distributed over its containing object or tuple.
const MaxDistribution = 32

// distribute rewrites an object or tuple with union-typed members into a
// union of objects or tuples, one per combination. boolean members count as
// true | false.
func (in *Interner) distribute(t Type) (Type, bool) {
	switch x := Deref(t).(type) {
	case *Object:
		if len(x.Calls) > 0 || len(x.Constructs) > 0 {
			return nil, false
		}
		choices := make([][]Type, len(x.Props))
		total := 1
		split := false
		for i, p := range x.Props {
			choices[i] = Members(p.Type)
			if len(choices[i]) > 1 {
				split = true
			}
			total *= len(choices[i])
			if total > MaxDistribution {
				return nil, false
			}
		}
		if !split {
			return nil, false
		}
		var out []Type
		combine(choices, func(pick []Type) {
			props := make([]Property, len(x.Props))
			copy(props, x.Props)
			for i := range props {
				props[i].Type = pick[i]
			}
			out = append(out, in.Object(ObjectShape{Props: props, Index: x.Index}))
		})
		return in.Union(out...), true
	case *Tuple:
		choices := make([][]Type, len(x.Elems))
		total := 1
		split := false
		for i, e := range x.Elems {
			if e.Rest {
				choices[i] = []Type{e.Type}
				continue
			}
			choices[i] = Members(e.Type)
			if len(choices[i]) > 1 {
				split = true
			}
			total *= len(choices[i])
			if total > MaxDistribution {
				return nil, false
			}
		}
		if !split {
			return nil, false
		}
		var out []Type
		combine(choices, func(pick []Type) {
			elems := make([]TupleElem, len(x.Elems))
			copy(elems, x.Elems)
			for i := range elems {
				elems[i].Type = pick[i]
			}
			out = append(out, in.Tuple(elems, x.Readonly))
		})
		return in.Union(out...), true
	}
	return nil, false
}

func combine(choices [][]Type, emit func([]Type)) {
	pick := make([]Type, len(choices))
	var rec func(int)
	rec = func(i int) {
		if i == len(choices) {
			emit(append([]Type(nil), pick...))
			return
		}
		for _, c := range choices[i] {
			pick[i] = c
			rec(i + 1)
		}
	}
	rec(0)
}

// IsGeneric reports whether t mentions a free type parameter.
func (in *Interner) IsGeneric(t Type) bool {
	if t == nil {
		return false
	}
	if v, ok := in.genericMemo.Load(t.ID()); ok {
		return v.(bool)
	}
	res := in.isGeneric(t, nil, 0)
	if _, lazy := t.(*Lazy); !lazy {
		in.genericMemo.Store(t.ID(), res)
	}
	return res
}

func (in *Interner) isGenericExcept(t Type, bound []*TypeParam) bool {
	if len(bound) == 0 {
		return in.IsGeneric(t)
	}
	b := make(map[*TypeParam]bool, len(bound))
	for _, p := range bound {
		b[p] = true
	}
	return in.isGeneric(t, b, 0)
}

func (in *Interner) isGeneric(t Type, bound map[*TypeParam]bool, depth int) bool {
	if t == nil || depth > maxRelationDepth {
		return false
	}
	with := func(params []*TypeParam) map[*TypeParam]bool {
		if len(params) == 0 {
			return bound
		}
		nb := make(map[*TypeParam]bool, len(bound)+len(params))
		for k := range bound {
			nb[k] = true
		}
		for _, p := range params {
			nb[p] = true
		}
		return nb
	}
	sigGeneric := func(s *Signature) bool {
		b := with(s.TypeParams)
		for _, p := range s.Params {
			if in.isGeneric(p.Type, b, depth+1) {
				return true
			}
		}
		return in.isGeneric(s.Return, b, depth+1)
	}
	switch x := Deref(t).(type) {
	case *TypeParam:
		return !bound[x]
	case *Union:
		for _, m := range x.Members {
			if in.isGeneric(m, bound, depth+1) {
				return true
			}
		}
	case *Intersection:
		for _, m := range x.Members {
			if in.isGeneric(m, bound, depth+1) {
				return true
			}
		}
	case *Object:
		for _, p := range x.Props {
			if in.isGeneric(p.Type, bound, depth+1) {
				return true
			}
		}
		for _, s := range x.Calls {
			if sigGeneric(s) {
				return true
			}
		}
		for _, s := range x.Constructs {
			if sigGeneric(s) {
				return true
			}
		}
		for _, info := range x.Index {
			if in.isGeneric(info.Type, bound, depth+1) {
				return true
			}
		}
	case *Function:
		for _, s := range x.Signatures {
			if sigGeneric(s) {
				return true
			}
		}
	case *Array:
		return in.isGeneric(x.Elem, bound, depth+1)
	case *Tuple:
		for _, e := range x.Elems {
			if in.isGeneric(e.Type, bound, depth+1) {
				return true
			}
		}
	case *Ref:
		for _, a := range x.Args {
			if in.isGeneric(a, bound, depth+1) {
				return true
			}
		}
	case *Conditional:
		b := with(x.InferParams)
		return in.isGeneric(x.Check, bound, depth+1) || in.isGeneric(x.Extends, b, depth+1) ||
			in.isGeneric(x.True, b, depth+1) || in.isGeneric(x.False, bound, depth+1)
	case *Mapped:
		b := with([]*TypeParam{x.Param})
		return in.isGeneric(x.Constraint, bound, depth+1) || in.isGeneric(x.Template, b, depth+1)
	case *Indexed:
		return in.isGeneric(x.Object, bound, depth+1) || in.isGeneric(x.Index, bound, depth+1)
	case *KeyOf:
		return in.isGeneric(x.Target, bound, depth+1)
	}
	return false
}
