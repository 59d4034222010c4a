package types

import (
	"sort"
	"strconv"
	"strings"
)

const maxPrintDepth = 32

// TypeString renders t the way diagnostics show it. Union members print in
// a fixed order so messages are stable across runs.
func TypeString(t Type) string {
	if t == nil {
		return "unknown"
	}
	var p printer
	p.write(t)
	return p.b.String()
}

type printer struct {
	b     strings.Builder
	depth int
}

func (p *printer) write(t Type) {
	if p.depth > maxPrintDepth {
		p.b.WriteString("...")
		return
	}
	p.depth++
	defer func() { p.depth-- }()
	switch x := t.(type) {
	case *Intrinsic:
		p.b.WriteString(x.name)
	case *Literal:
		p.b.WriteString(literalString(x))
	case *Union:
		p.union(x)
	case *Intersection:
		for i, m := range x.Members {
			if i > 0 {
				p.b.WriteString(" & ")
			}
			p.operand(m)
		}
	case *Object:
		p.object(x)
	case *Function:
		if len(x.Signatures) == 1 {
			p.signature(x.Signatures[0], " => ")
			return
		}
		p.b.WriteString("{ ")
		for i, s := range x.Signatures {
			if i > 0 {
				p.b.WriteString("; ")
			}
			p.signature(s, ": ")
		}
		p.b.WriteString(" }")
	case *Tuple:
		if x.Readonly {
			p.b.WriteString("readonly ")
		}
		p.b.WriteByte('[')
		for i, e := range x.Elems {
			if i > 0 {
				p.b.WriteString(", ")
			}
			if e.Rest {
				p.b.WriteString("...")
			}
			p.write(e.Type)
			if e.Optional {
				p.b.WriteByte('?')
			}
		}
		p.b.WriteByte(']')
	case *Array:
		if x.Readonly {
			p.b.WriteString("readonly ")
		}
		p.operand(x.Elem)
		p.b.WriteString("[]")
	case *TypeParam:
		p.b.WriteString(x.Name)
	case *Ref:
		p.b.WriteString(x.Decl.Name)
		if len(x.Args) > 0 {
			p.b.WriteByte('<')
			p.list(x.Args)
			p.b.WriteByte('>')
		}
	case *Conditional:
		p.operand(x.Check)
		p.b.WriteString(" extends ")
		p.operand(x.Extends)
		p.b.WriteString(" ? ")
		p.write(x.True)
		p.b.WriteString(" : ")
		p.write(x.False)
	case *Mapped:
		p.b.WriteString("{ ")
		p.b.WriteString(modifierPrefix(x.Readonly))
		if x.Readonly != ModNone {
			p.b.WriteString("readonly ")
		}
		p.b.WriteByte('[')
		p.b.WriteString(x.Param.Name)
		p.b.WriteString(" in ")
		p.write(x.Constraint)
		p.b.WriteByte(']')
		p.b.WriteString(modifierPrefix(x.Optional))
		if x.Optional != ModNone {
			p.b.WriteByte('?')
		}
		p.b.WriteString(": ")
		p.write(x.Template)
		p.b.WriteString(" }")
	case *Indexed:
		p.operand(x.Object)
		p.b.WriteByte('[')
		p.write(x.Index)
		p.b.WriteByte(']')
	case *KeyOf:
		p.b.WriteString("keyof ")
		p.operand(x.Target)
	case *EnumMember:
		p.b.WriteString(x.Enum.Name)
		p.b.WriteByte('.')
		p.b.WriteString(x.Name)
	case *Namespace:
		p.b.WriteString("typeof import(")
		p.b.WriteString(strconv.Quote(x.Path))
		p.b.WriteByte(')')
	case *Lazy:
		if target, ok := x.Resolved(); ok {
			p.write(target)
			return
		}
		p.b.WriteString(x.Name)
	default:
		p.b.WriteString("unknown")
	}
}

func modifierPrefix(m Modifier) string {
	switch m {
	case ModAdd:
		return "+"
	case ModRemove:
		return "-"
	}
	return ""
}

// operand parenthesizes types that would otherwise bind loosely.
func (p *printer) operand(t Type) {
	switch x := Deref(t).(type) {
	case *Union:
		if x == Boolean {
			p.write(t)
			return
		}
	case *Intersection, *Conditional:
	case *Function:
		if len(x.Signatures) != 1 {
			p.write(t)
			return
		}
	default:
		p.write(t)
		return
	}
	p.b.WriteByte('(')
	p.write(t)
	p.b.WriteByte(')')
}

func (p *printer) list(ts []Type) {
	for i, t := range ts {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.write(t)
	}
}

func (p *printer) union(u *Union) {
	members := append([]Type(nil), u.Members...)
	hasTrue, hasFalse := false, false
	for _, m := range members {
		hasTrue = hasTrue || m == Type(True)
		hasFalse = hasFalse || m == Type(False)
	}
	if hasTrue && hasFalse {
		kept := members[:0]
		for _, m := range members {
			if m != Type(True) && m != Type(False) {
				kept = append(kept, m)
			}
		}
		members = append(kept, Boolean)
	}
	parts := make([]string, len(members))
	ranks := make([]int, len(members))
	for i, m := range members {
		if m == Type(Boolean) {
			parts[i] = "boolean"
		} else {
			var sub printer
			sub.depth = p.depth
			sub.operand(m)
			parts[i] = sub.b.String()
		}
		ranks[i] = printRank(m)
	}
	idx := make([]int, len(members))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if ranks[ia] != ranks[ib] {
			return ranks[ia] < ranks[ib]
		}
		return parts[ia] < parts[ib]
	})
	for n, i := range idx {
		if n > 0 {
			p.b.WriteString(" | ")
		}
		p.b.WriteString(parts[i])
	}
}

// printRank orders union members: keyword primitives first, then literals,
// then structured types, with null and undefined last.
func printRank(t Type) int {
	switch x := Deref(t).(type) {
	case *Intrinsic:
		switch x.kind {
		case KindString:
			return 0
		case KindNumber:
			return 1
		case KindBigInt:
			return 2
		case KindSymbol:
			return 4
		case KindNonPrimitive:
			return 5
		case KindVoid:
			return 20
		case KindNull:
			return 21
		case KindUndefined:
			return 22
		}
	case *Union:
		if x == Boolean {
			return 3
		}
	case *Literal:
		return 10 + int(x.LitKind)
	case *EnumMember:
		return 15
	}
	return 16
}

func literalString(l *Literal) string {
	switch l.LitKind {
	case LitString:
		return strconv.Quote(l.Str)
	case LitNumber:
		return formatNumber(l.Num)
	case LitBigInt:
		return l.Str + "n"
	}
	if l.Bool {
		return "true"
	}
	return "false"
}

func (p *printer) object(o *Object) {
	if len(o.Props) == 0 && len(o.Calls) == 0 && len(o.Constructs) == 0 && len(o.Index) == 0 {
		p.b.WriteString("{}")
		return
	}
	if len(o.Props) == 0 && len(o.Index) == 0 && len(o.Constructs) == 0 && len(o.Calls) == 1 {
		p.signature(o.Calls[0], " => ")
		return
	}
	var members []string
	for _, info := range o.Index {
		var sub printer
		sub.depth = p.depth
		if info.Readonly {
			sub.b.WriteString("readonly ")
		}
		sub.b.WriteString("[key: ")
		sub.write(info.Key)
		sub.b.WriteString("]: ")
		sub.write(info.Type)
		members = append(members, sub.b.String())
	}
	for _, s := range o.Calls {
		var sub printer
		sub.depth = p.depth
		sub.signature(s, ": ")
		members = append(members, sub.b.String())
	}
	for _, s := range o.Constructs {
		var sub printer
		sub.depth = p.depth
		sub.b.WriteString("new ")
		sub.signature(s, ": ")
		members = append(members, sub.b.String())
	}
	for _, prop := range o.Props {
		var sub printer
		sub.depth = p.depth
		if prop.Readonly {
			sub.b.WriteString("readonly ")
		}
		sub.b.WriteString(propertyName(prop.Name))
		if prop.Optional {
			sub.b.WriteByte('?')
		}
		sub.b.WriteString(": ")
		sub.write(prop.Type)
		members = append(members, sub.b.String())
	}
	p.b.WriteString("{ ")
	p.b.WriteString(strings.Join(members, "; "))
	p.b.WriteString(" }")
}

func propertyName(name string) string {
	if name == "" {
		return `""`
	}
	for i, r := range name {
		ok := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')
		if !ok {
			if isNumericName(name) {
				return name
			}
			return strconv.Quote(name)
		}
	}
	return name
}

func (p *printer) signature(s *Signature, arrow string) {
	if len(s.TypeParams) > 0 {
		p.b.WriteByte('<')
		for i, tp := range s.TypeParams {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.b.WriteString(tp.Name)
			if tp.Constraint != nil {
				p.b.WriteString(" extends ")
				p.write(tp.Constraint)
			}
		}
		p.b.WriteByte('>')
	}
	p.b.WriteByte('(')
	for i, param := range s.Params {
		if i > 0 {
			p.b.WriteString(", ")
		}
		if param.Rest {
			p.b.WriteString("...")
		}
		name := param.Name
		if name == "" {
			name = "arg" + strconv.Itoa(i)
		}
		p.b.WriteString(name)
		if param.Optional {
			p.b.WriteByte('?')
		}
		p.b.WriteString(": ")
		p.write(param.Type)
	}
	p.b.WriteByte(')')
	p.b.WriteString(arrow)
	if s.Predicate != nil {
		if s.Predicate.Asserts {
			p.b.WriteString("asserts ")
		}
		p.b.WriteString(s.Predicate.ParamName)
		p.b.WriteString(" is ")
		p.write(s.Predicate.Type)
		return
	}
	p.write(s.Return)
}

func (t *Intrinsic) String() string    { return TypeString(t) }
func (t *Literal) String() string      { return TypeString(t) }
func (t *Union) String() string        { return TypeString(t) }
func (t *Intersection) String() string { return TypeString(t) }
func (t *Object) String() string       { return TypeString(t) }
func (t *Function) String() string     { return TypeString(t) }
func (t *Tuple) String() string        { return TypeString(t) }
func (t *Array) String() string        { return TypeString(t) }
func (t *TypeParam) String() string    { return TypeString(t) }
func (t *Ref) String() string          { return TypeString(t) }
func (t *Conditional) String() string  { return TypeString(t) }
func (t *Mapped) String() string       { return TypeString(t) }
func (t *Indexed) String() string      { return TypeString(t) }
func (t *KeyOf) String() string        { return TypeString(t) }
func (t *EnumMember) String() string   { return TypeString(t) }
func (t *Namespace) String() string    { return TypeString(t) }
func (t *Lazy) String() string         { return TypeString(t) }
