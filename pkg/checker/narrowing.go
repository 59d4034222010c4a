package checker

import (
	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/types"
)

// narrowed returns the state that holds after cond evaluated to a value
// whose truthiness is assume, starting from the current state.
func (c *Checker) narrowed(cond ast.Expression, assume bool) *flowState {
	return c.narrowFrom(c.flow, cond, assume)
}

func (c *Checker) narrowFrom(f *flowState, cond ast.Expression, assume bool) *flowState {
	if f.unreachable || cond == nil {
		return f.clone()
	}
	switch e := cond.(type) {
	case *ast.BooleanLiteral:
		if e.Value != assume {
			return unreachableFlow()
		}
		return f.clone()
	case *ast.UnaryExpression:
		if e.Operator == "!" {
			return c.narrowFrom(f, e.Operand, !assume)
		}
	case *ast.BinaryExpression:
		switch e.Operator {
		case "&&":
			if assume {
				return c.narrowFrom(c.narrowFrom(f, e.Left, true), e.Right, true)
			}
			return c.join(
				c.narrowFrom(f, e.Left, false),
				c.narrowFrom(c.narrowFrom(f, e.Left, true), e.Right, false),
			)
		case "||":
			if assume {
				return c.join(
					c.narrowFrom(f, e.Left, true),
					c.narrowFrom(c.narrowFrom(f, e.Left, false), e.Right, true),
				)
			}
			return c.narrowFrom(c.narrowFrom(f, e.Left, false), e.Right, false)
		case "===", "!==", "==", "!=":
			positive := (e.Operator == "===" || e.Operator == "==") == assume
			loose := e.Operator == "==" || e.Operator == "!="
			return c.narrowEquality(f, e, positive, loose)
		case "instanceof":
			return c.narrowInstanceof(f, e, assume)
		case "in":
			lit, ok := e.Left.(*ast.StringLiteral)
			if !ok {
				break
			}
			key, ok := c.referenceKey(e.Right)
			if !ok {
				break
			}
			out := f.clone()
			out.set(key, c.in.NarrowIn(c.typeIn(f, e.Right), lit.Value, assume))
			return out
		}
	case *ast.CallExpression:
		if out, ok := c.narrowPredicate(f, e, assume); ok {
			return out
		}
	case *ast.AssignmentExpression:
		if e.Operator == "=" {
			return c.narrowFrom(f, e.Target, assume)
		}
	}
	return c.narrowTruthy(f, cond, assume)
}

// typeIn is the type of a reference expression in state f: its fact if one
// exists, otherwise its declared type.
func (c *Checker) typeIn(f *flowState, expr ast.Expression) types.Type {
	if key, ok := c.referenceKey(expr); ok {
		if t, ok := f.lookup(key); ok {
			return t
		}
		switch e := expr.(type) {
		case *ast.Identifier:
			return c.declaredValueType(key.sym)
		case *ast.MemberExpression:
			base := c.typeIn(f, e.Object)
			if p, ok := c.in.AccessProperty(base, e.Property.Name); ok {
				return p.Type
			}
		}
	}
	if t, ok := c.infer.get(expr); ok {
		return t
	}
	return types.Unknown
}

func (c *Checker) narrowTruthy(f *flowState, expr ast.Expression, assume bool) *flowState {
	key, ok := c.referenceKey(expr)
	if !ok {
		return f.clone()
	}
	out := f.clone()
	out.set(key, c.in.NarrowTruthy(c.typeIn(f, expr), assume))
	if m, ok := expr.(*ast.MemberExpression); ok {
		if base, ok := c.referenceKey(m.Object); ok {
			out.set(base, c.in.NarrowTruthyProperty(c.typeIn(f, m.Object), m.Property.Name, assume))
		}
	}
	return out
}

func typeofOperand(expr ast.Expression) (ast.Expression, bool) {
	u, ok := expr.(*ast.UnaryExpression)
	if !ok || u.Operator != "typeof" {
		return nil, false
	}
	return u.Operand, true
}

func (c *Checker) narrowEquality(f *flowState, e *ast.BinaryExpression, positive, loose bool) *flowState {
	out := f.clone()
	for _, pair := range [][2]ast.Expression{{e.Left, e.Right}, {e.Right, e.Left}} {
		subject, other := pair[0], pair[1]
		if operand, ok := typeofOperand(subject); ok {
			lit, ok := other.(*ast.StringLiteral)
			if !ok {
				continue
			}
			if key, ok := c.referenceKey(operand); ok {
				out.set(key, c.in.NarrowTypeof(c.typeIn(f, operand), lit.Value, positive))
			}
			return out
		}
		key, ok := c.referenceKey(subject)
		if !ok {
			continue
		}
		value, ok := c.infer.get(other)
		if !ok {
			continue
		}
		out.set(key, c.in.NarrowEquality(c.typeIn(f, subject), value, positive, loose))
		if m, ok := subject.(*ast.MemberExpression); ok && types.IsUnit(value) {
			if base, ok := c.referenceKey(m.Object); ok {
				out.set(base, c.in.NarrowDiscriminant(c.typeIn(f, m.Object), m.Property.Name, value, positive))
			}
		}
	}
	return out
}

// instanceType is the union of the construct signature returns of a
// constructor type.
func (c *Checker) instanceType(ctor types.Type) (types.Type, bool) {
	sigs := c.in.Signatures(ctor, true)
	if len(sigs) == 0 {
		return nil, false
	}
	rets := make([]types.Type, 0, len(sigs))
	for _, s := range sigs {
		ret := s.Return
		if len(s.TypeParams) > 0 {
			subst := make(types.Subst, len(s.TypeParams))
			for _, tp := range s.TypeParams {
				subst[tp] = types.Any
			}
			ret = c.in.Instantiate(ret, subst)
		}
		rets = append(rets, ret)
	}
	return c.in.Union(rets...), true
}

func (c *Checker) narrowInstanceof(f *flowState, e *ast.BinaryExpression, assume bool) *flowState {
	key, ok := c.referenceKey(e.Left)
	if !ok {
		return f.clone()
	}
	ctor, ok := c.infer.get(e.Right)
	if !ok {
		return f.clone()
	}
	inst, ok := c.instanceType(ctor)
	if !ok {
		return f.clone()
	}
	out := f.clone()
	out.set(key, c.in.NarrowTo(c.typeIn(f, e.Left), inst, assume))
	return out
}

// narrowPredicate applies the type guard of the signature a call resolved
// to: `isString(x)` narrows x when the callee returns `x is string`.
func (c *Checker) narrowPredicate(f *flowState, call *ast.CallExpression, assume bool) (*flowState, bool) {
	sig := c.resolved[call]
	if sig == nil || sig.Predicate == nil || sig.Predicate.Asserts {
		return nil, false
	}
	pred := sig.Predicate
	if pred.ParamIndex < 0 || pred.ParamIndex >= len(call.Args) {
		return nil, false
	}
	arg := call.Args[pred.ParamIndex]
	key, ok := c.referenceKey(arg)
	if !ok {
		return f.clone(), true
	}
	out := f.clone()
	out.set(key, c.in.NarrowTo(c.typeIn(f, arg), pred.Type, assume))
	return out, true
}

// applyAssertion narrows after a call to an `asserts x is T` function used
// as a statement.
func (c *Checker) applyAssertion(call *ast.CallExpression) {
	sig := c.resolved[call]
	if sig == nil || sig.Predicate == nil || !sig.Predicate.Asserts {
		return
	}
	pred := sig.Predicate
	if pred.ParamIndex < 0 || pred.ParamIndex >= len(call.Args) {
		return
	}
	arg := call.Args[pred.ParamIndex]
	key, ok := c.referenceKey(arg)
	if !ok {
		return
	}
	if pred.Type == nil {
		c.flow = c.narrowFrom(c.flow, arg, true)
		return
	}
	c.flow.set(key, c.in.NarrowTo(c.typeIn(c.flow, arg), pred.Type, true))
}
