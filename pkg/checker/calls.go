package checker

import (
	"strconv"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/types"
)

// callSite is what call resolution needs from a call or new expression.
type callSite struct {
	node      ast.Node
	callee    ast.Expression
	typeArgs  []ast.TypeExpression
	args      []ast.Expression
	construct bool
}

func (c *Checker) checkCall(e *ast.CallExpression) types.Type {
	callee := c.checkExpr(e.Callee, nil)
	optional := e.Optional || inOptionalChain(e.Callee)
	nullable := false
	if !types.IsAnyLike(callee) && c.in.StrictNullChecks() {
		stripped := c.in.RemoveNullish(callee)
		if stripped != callee {
			nullable = true
			if !optional {
				c.report(e.Callee, diag.TypeMismatch, "Cannot invoke an object which is possibly 'undefined'.")
			}
			callee = stripped
		}
	}
	ret := c.resolveCall(callSite{node: e, callee: e.Callee, typeArgs: e.TypeArgs, args: e.Args}, callee)
	if nullable && optional {
		return c.in.Optional(ret)
	}
	return ret
}

func (c *Checker) checkNew(e *ast.NewExpression) types.Type {
	callee := c.checkExpr(e.Callee, nil)
	return c.resolveCall(callSite{node: e, callee: e.Callee, typeArgs: e.TypeArgs, args: e.Args, construct: true}, callee)
}

// resolveCall picks the first signature of callee that accepts the
// arguments and returns the type of the call. When no signature does, the
// arguments are reported against the only candidate, or the call is
// reported as a whole when there were several.
func (c *Checker) resolveCall(site callSite, callee types.Type) types.Type {
	if types.IsAnyLike(callee) || types.IsUnresolvedLazy(callee) {
		c.checkArgsLoosely(site.args)
		return anyOf(callee)
	}
	sigs := c.in.Signatures(callee, site.construct)
	if len(sigs) == 0 {
		switch {
		case site.construct:
			c.report(site.callee, diag.NotCallable, "This expression is not constructable. Type '%s' has no construct signatures.", typeString(callee))
		case len(c.in.Signatures(callee, true)) > 0:
			c.report(site.callee, diag.NotCallable, "Value of type '%s' is not callable. Did you mean to include 'new'?", typeString(callee))
		default:
			c.report(site.callee, diag.NotCallable, "This expression is not callable. Type '%s' has no call signatures.", typeString(callee))
		}
		c.checkArgsLoosely(site.args)
		return types.Fallback
	}

	typeArgs := c.typeArgs(site.typeArgs)
	if len(typeArgs) > 0 {
		var fit []*types.Signature
		for _, s := range sigs {
			if len(typeArgs) >= requiredTypeArgs(s.TypeParams) && len(typeArgs) <= len(s.TypeParams) {
				fit = append(fit, s)
			}
		}
		if len(fit) == 0 {
			if len(sigs) == 1 {
				c.report(site.node, diag.ArgumentCount, "Expected %s type arguments, but got %s.",
					strconv.Itoa(len(sigs[0].TypeParams)), strconv.Itoa(len(typeArgs)))
				typeArgs = nil
			} else {
				c.report(site.node, diag.OverloadResolutionFailure, "No overload expects %s type arguments.", strconv.Itoa(len(typeArgs)))
				c.checkArgsLoosely(site.args)
				return types.Fallback
			}
		} else {
			sigs = fit
		}
	}

	spread := hasSpread(site.args)
	var candidates []*types.Signature
	for _, s := range sigs {
		if spread || arityAccepts(s, len(site.args)) {
			candidates = append(candidates, s)
		}
	}
	switch {
	case len(candidates) == 0 && len(sigs) == 1:
		return c.finishCall(site, sigs[0], typeArgs)
	case len(candidates) == 0:
		closest := closestArity(sigs, len(site.args))
		c.report(site.node, diag.OverloadResolutionFailure, "No overload expects %s arguments. The closest overload expects %s.",
			strconv.Itoa(len(site.args)), expectedArgs(closest))
		c.checkArgsLoosely(site.args)
		return types.Fallback
	case len(candidates) == 1:
		return c.finishCall(site, candidates[0], typeArgs)
	}
	for _, cand := range candidates {
		failures := 0
		c.speculate(func() { _, failures = c.applySignature(site, cand, typeArgs) })
		if failures == 0 {
			return c.finishCall(site, cand, typeArgs)
		}
	}
	c.report(site.node, diag.OverloadResolutionFailure, "No overload matches this call.")
	c.checkArgsLoosely(site.args)
	return types.Fallback
}

// finishCall checks the arguments against sig for real, records the
// resolved signature and returns the call's type.
func (c *Checker) finishCall(site callSite, sig *types.Signature, typeArgs []types.Type) types.Type {
	inst, _ := c.applySignature(site, sig, typeArgs)
	c.resolved[site.node] = inst
	if site.construct && c.isAbstractConstruct(inst) {
		c.report(site.node, diag.TypeMismatch, "Cannot create an instance of an abstract class.")
	}
	if inst.Return == nil {
		return types.Any
	}
	return inst.Return
}

func arityAccepts(s *types.Signature, n int) bool {
	if n < s.MinArgs() {
		return false
	}
	limit := s.MaxArgs()
	return limit < 0 || n <= limit
}

// closestArity picks the signature whose accepted argument count is
// nearest to n, preferring earlier declarations on ties.
func closestArity(sigs []*types.Signature, n int) *types.Signature {
	best, bestDist := sigs[0], -1
	for _, s := range sigs {
		dist := 0
		if lo := s.MinArgs(); n < lo {
			dist = lo - n
		} else if hi := s.MaxArgs(); hi >= 0 && n > hi {
			dist = n - hi
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = s, dist
		}
	}
	return best
}

func hasSpread(args []ast.Expression) bool {
	for _, a := range args {
		if _, ok := a.(*ast.SpreadElement); ok {
			return true
		}
	}
	return false
}

// checkArgsLoosely checks arguments that can not be matched to any
// signature so that their own errors and types are still recorded.
func (c *Checker) checkArgsLoosely(args []ast.Expression) {
	for _, a := range args {
		if sp, ok := a.(*ast.SpreadElement); ok {
			c.record(sp, c.checkExpr(sp.Argument, nil))
			continue
		}
		if isContextSensitive(a) {
			c.checkExpr(a, types.Any)
			continue
		}
		c.checkExpr(a, nil)
	}
}

// applySignature instantiates sig for the call and checks the arguments
// against it. It returns the instantiated signature and the number of
// arguments that failed to match.
func (c *Checker) applySignature(site callSite, sig *types.Signature, typeArgs []types.Type) (*types.Signature, int) {
	inst := sig
	if len(sig.TypeParams) > 0 {
		inst = c.instantiateCall(site, sig, typeArgs)
	}
	return inst, c.checkArguments(site, inst)
}

// instantiateCall infers the type arguments of a generic call. Arguments
// that do not depend on their contextual type are inferred from first; a
// second pass checks context-sensitive arguments, such as unannotated
// lambdas, against the partially inferred parameter types.
func (c *Checker) instantiateCall(site callSite, sig *types.Signature, typeArgs []types.Type) *types.Signature {
	inf := c.in.NewInferrer(sig.TypeParams)
	for i, ta := range typeArgs {
		if i < len(sig.TypeParams) {
			inf.Fix(sig.TypeParams[i], ta)
		}
	}
	if len(typeArgs) < len(sig.TypeParams) {
		for _, sensitive := range []bool{false, true} {
			for i, a := range site.args {
				if _, ok := a.(*ast.SpreadElement); ok || isContextSensitive(a) != sensitive {
					continue
				}
				pt, ok := c.in.ParamTypeAt(sig, i)
				if !ok {
					continue
				}
				ctx := c.in.Instantiate(pt, inf.Current())
				var at types.Type
				c.speculate(func() { at = c.checkExpr(a, ctx) })
				inf.Infer(pt, at)
			}
		}
	}
	shape := &types.Signature{Params: sig.Params, Return: sig.Return, Predicate: sig.Predicate, Method: sig.Method}
	return c.in.InstantiateSignature(shape, inf.Solve())
}

// checkArguments checks each argument against its parameter and returns
// the number of failures, counting an arity mismatch as one.
func (c *Checker) checkArguments(site callSite, sig *types.Signature) int {
	failures := 0
	if !hasSpread(site.args) && !arityAccepts(sig, len(site.args)) {
		c.report(site.node, diag.ArgumentCount, "Expected %s arguments, but got %s.", expectedArgs(sig), strconv.Itoa(len(site.args)))
		c.checkArgsLoosely(site.args)
		return 1
	}
	for i, a := range site.args {
		if sp, ok := a.(*ast.SpreadElement); ok {
			st := c.record(sp, c.checkExpr(sp.Argument, nil))
			if types.IsAnyLike(st) {
				continue
			}
			pt, ok := c.in.ParamTypeAt(sig, i)
			if !ok {
				continue
			}
			elem, ok := c.iteratedType(st)
			if !ok {
				c.report(sp.Argument, diag.TypeMismatch, "Type '%s' is not an array type.", typeString(st))
				failures++
				continue
			}
			if !c.argumentAssignable(sp, elem, pt) {
				failures++
			}
			continue
		}
		pt, ok := c.in.ParamTypeAt(sig, i)
		if !ok {
			c.checkExpr(a, nil)
			continue
		}
		if i < len(sig.Params) && sig.Params[i].Optional {
			pt = c.in.Optional(pt)
		}
		at := c.checkExpr(a, pt)
		if !c.argumentAssignable(a, at, pt) {
			failures++
		}
	}
	return failures
}

func (c *Checker) argumentAssignable(node ast.Node, at, pt types.Type) bool {
	if types.IsAnyLike(at) || types.IsAnyLike(pt) {
		return true
	}
	if c.excess(node, pt) {
		return false
	}
	if c.in.IsAssignable(at, pt) {
		return true
	}
	c.report(node, diag.TypeMismatch, "Argument of type '%s' is not assignable to parameter of type '%s'.", c.sourceString(at, pt), typeString(pt))
	return false
}

// expectedArgs renders the accepted argument count of sig: "2", "1-3" or
// "at least 1".
func expectedArgs(sig *types.Signature) string {
	lo, hi := sig.MinArgs(), sig.MaxArgs()
	switch {
	case hi < 0:
		return "at least " + strconv.Itoa(lo)
	case lo == hi:
		return strconv.Itoa(lo)
	}
	return strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
}
