package checker

import (
	"strings"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/env"
	"github.com/nissy-dev/stc/pkg/types"
)

// refKey names a narrowable reference: a symbol, optionally followed by a
// property path such as ".kind" or ".a.b".
type refKey struct {
	sym  *binding.Symbol
	path string
}

// flowState holds the narrowed types of references at one program point.
// References without a fact have their declared type.
type flowState struct {
	facts       map[refKey]types.Type
	unreachable bool
}

func newFlow() *flowState {
	return &flowState{facts: make(map[refKey]types.Type)}
}

func unreachableFlow() *flowState {
	return &flowState{unreachable: true}
}

func (f *flowState) clone() *flowState {
	if f.unreachable {
		return unreachableFlow()
	}
	out := &flowState{facts: make(map[refKey]types.Type, len(f.facts))}
	for k, v := range f.facts {
		out.facts[k] = v
	}
	return out
}

func (f *flowState) lookup(k refKey) (types.Type, bool) {
	if f.unreachable {
		return nil, false
	}
	t, ok := f.facts[k]
	return t, ok
}

func (f *flowState) set(k refKey, t types.Type) {
	if f.unreachable {
		return
	}
	f.facts[k] = t
}

// invalidate drops the facts about k and every property path below it.
func (f *flowState) invalidate(k refKey) {
	if f.unreachable {
		return
	}
	for key := range f.facts {
		if key.sym == k.sym && (key.path == k.path || strings.HasPrefix(key.path, k.path+".")) {
			delete(f.facts, key)
		}
	}
}

// filter keeps the facts accepted by keep.
func (f *flowState) filter(keep func(refKey) bool) *flowState {
	if f.unreachable {
		return newFlow()
	}
	out := newFlow()
	for k, v := range f.facts {
		if keep(k) {
			out.facts[k] = v
		}
	}
	return out
}

// join merges the states flowing into one program point. A fact survives
// only when every reachable predecessor has one; the merged fact is the
// union of the predecessors' facts.
func (c *Checker) join(states ...*flowState) *flowState {
	var live []*flowState
	for _, s := range states {
		if s != nil && !s.unreachable {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return unreachableFlow()
	case 1:
		return live[0].clone()
	}
	out := newFlow()
	for k, t := range live[0].facts {
		parts := []types.Type{t}
		present := true
		for _, s := range live[1:] {
			other, ok := s.facts[k]
			if !ok {
				present = false
				break
			}
			parts = append(parts, other)
		}
		if present {
			out.facts[k] = c.in.Union(parts...)
		}
	}
	return out
}

// referenceKey returns the key of a narrowable reference expression:
// an identifier bound to a value, or a property chain rooted at one.
func (c *Checker) referenceKey(expr ast.Expression) (refKey, bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		if e == nil {
			return refKey{}, false
		}
		sym, ok := c.scope.LookupValue(e.Name)
		if !ok || sym.Module == env.LibModule {
			return refKey{}, false
		}
		return refKey{sym: sym}, true
	case *ast.MemberExpression:
		if e == nil || e.Property == nil {
			return refKey{}, false
		}
		base, ok := c.referenceKey(e.Object)
		if !ok {
			return refKey{}, false
		}
		return refKey{sym: base.sym, path: base.path + "." + e.Property.Name}, true
	}
	return refKey{}, false
}

// assignedSymbols finds the symbols assigned anywhere inside node, without
// descending into nested functions.
func (c *Checker) assignedSymbols(node ast.Node) []*binding.Symbol {
	var out []*binding.Symbol
	seen := map[*binding.Symbol]bool{}
	add := func(target ast.Expression) {
		for {
			m, ok := target.(*ast.MemberExpression)
			if !ok {
				break
			}
			target = m.Object
		}
		id, ok := target.(*ast.Identifier)
		if !ok || id == nil {
			return
		}
		if sym, ok := c.scope.LookupValue(id.Name); ok && !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	ast.Inspect(node, func(n ast.Node) bool {
		switch e := n.(type) {
		case *ast.FunctionExpression, *ast.FunctionDeclaration, *ast.ClassDeclaration:
			return false
		case *ast.AssignmentExpression:
			add(e.Target)
		case *ast.UpdateExpression:
			add(e.Operand)
		case *ast.ForOfStatement:
			if id, ok := e.Binding.(*ast.Identifier); ok && e.Kind == "" {
				add(id)
			}
		}
		return true
	})
	return out
}

// forgetAssigned drops facts about symbols assigned inside node. Loops use
// it so that the state at the loop head covers every iteration.
func (c *Checker) forgetAssigned(f *flowState, node ast.Node) *flowState {
	syms := c.assignedSymbols(node)
	if len(syms) == 0 || f.unreachable {
		return f
	}
	out := f.clone()
	for _, sym := range syms {
		out.invalidate(refKey{sym: sym})
	}
	return out
}

// closureFlow is the state seen inside a function created at the current
// point: only facts about constants remain valid when it is called later.
func (c *Checker) closureFlow() *flowState {
	return c.flow.filter(func(k refKey) bool {
		return k.sym.Has(binding.FlagConst)
	})
}

// assignmentFact computes the narrowed type of a reference whose declared
// type is declared after it was assigned a value of type assigned.
func (c *Checker) assignmentFact(declared, assigned types.Type) (types.Type, bool) {
	if declared == nil || assigned == nil {
		return nil, false
	}
	if _, ok := types.Deref(declared).(*types.Union); !ok {
		return nil, false
	}
	if types.IsAnyLike(assigned) {
		return nil, false
	}
	var keep []types.Type
	for _, m := range types.Members(declared) {
		for _, a := range types.Members(assigned) {
			if c.in.IsAssignable(a, m) {
				keep = append(keep, m)
				break
			}
		}
	}
	if len(keep) == 0 {
		return nil, false
	}
	return c.in.Union(keep...), true
}
