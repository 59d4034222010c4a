package checker

import (
	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/types"
)

// checkAssignable reports when source, computed for node, cannot be
// assigned to target. Fresh object literals are checked for excess
// properties first and only one of the two errors is reported.
func (c *Checker) checkAssignable(source, target types.Type, node ast.Node) bool {
	return c.checkAssignableAt(source, target, node, node)
}

// checkAssignableAt is checkAssignable for a value written by an enclosing
// construct (an assignment or a declaration): excess properties are still
// reported inside the value, a mismatch is reported at the construct.
func (c *Checker) checkAssignableAt(source, target types.Type, value, at ast.Node) bool {
	if source == nil || target == nil || types.IsAnyLike(source) || types.IsAnyLike(target) {
		return true
	}
	if c.excess(value, target) {
		return false
	}
	if c.in.IsAssignable(source, target) {
		return true
	}
	c.report(at, diag.TypeMismatch, "Type '%s' is not assignable to type '%s'.", c.sourceString(source, target), typeString(target))
	return false
}

// spanned returns the first of nodes that carries a source position,
// or the last one when none does.
func spanned(nodes ...ast.Node) ast.Node {
	for _, n := range nodes {
		if n != nil && n.Span() != (ast.Span{}) {
			return n
		}
	}
	return nodes[len(nodes)-1]
}

// sourceString prints a source type the way it appears in mismatch
// messages: literals are widened unless the target itself lists units.
func (c *Checker) sourceString(source, target types.Type) string {
	for _, m := range types.Members(target) {
		if types.IsUnit(m) && m != types.Type(types.Null) && m != types.Type(types.Undefined) {
			return typeString(source)
		}
	}
	return typeString(c.in.WidenLiteral(source))
}

// excess reports the first property of an object literal that no member
// of target declares, descending into nested literals.
func (c *Checker) excess(node ast.Node, target types.Type) bool {
	lit, ok := node.(*ast.ObjectLiteral)
	if !ok || lit == nil {
		return false
	}
	return c.excessIn(lit, target)
}

func (c *Checker) excessIn(lit *ast.ObjectLiteral, target types.Type) bool {
	var members []types.Type
	for _, m := range types.Members(c.in.RemoveNullish(target)) {
		if !c.closedObject(m) {
			return false
		}
		members = append(members, m)
	}
	if len(members) == 0 {
		return false
	}
	for _, m := range lit.Properties {
		var name string
		var value ast.Expression
		switch p := m.(type) {
		case *ast.PropertyAssignment:
			if p.Computed != nil {
				continue
			}
			name, value = p.Name, p.Value
		case *ast.ObjectMethod:
			name = p.Name
		default:
			continue
		}
		var found []types.Type
		for _, mem := range members {
			if p, ok := c.in.PropertyOf(mem, name); ok {
				found = append(found, p.Type)
			}
		}
		if len(found) == 0 {
			c.report(m, diag.ExcessProperty, "Object literal may only specify known properties, and '%s' does not exist in type '%s'.", name, typeString(target))
			return true
		}
		if nested, ok := value.(*ast.ObjectLiteral); ok && c.excessIn(nested, c.in.Union(found...)) {
			return true
		}
	}
	return false
}

// closedObject reports whether excess properties are detectable on t: an
// object type with declared members and no string index signature.
func (c *Checker) closedObject(t types.Type) bool {
	t = types.Deref(t)
	switch x := t.(type) {
	case *types.Object:
		if len(x.Props) == 0 {
			return false
		}
	case *types.Ref, *types.Intersection:
	case *types.Mapped, *types.Conditional, *types.Indexed:
		ev := c.in.Evaluate(x)
		if ev == t {
			return false
		}
		return c.closedObject(ev)
	default:
		return false
	}
	if _, ok := c.in.IndexInfoOf(t, types.String); ok {
		return false
	}
	return len(c.in.Properties(t)) > 0
}
