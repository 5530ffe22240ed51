package checker

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/types"
)

// getReturnType resolves the winning candidate's return type. Arity and
// type-argument counts are revalidated with reporting (selection only
// classified them), argument types are checked, generics are expanded, and a
// predicate return records a narrowing fact. rawArgs preserves the source
// argument list (for callback patching and predicate facts); args is the
// spread-expanded list selection ran on.
func (c *Checker) getReturnType(cand *CallCandidate, ctx *callCtx, rawArgs []TypeOrSpread, args []TypeOrSpread) types.TypeID {
	typeArgsOK := c.validateTypeArgCount(cand.TypeParams, ctx.typeArgs, ctx.span)
	c.validateArgCount(cand.Params, args, ctx.iife, ctx.span)

	thisSubst := c.thisSubst()

	if len(cand.TypeParams) == 0 {
		params := cand.Params
		if thisSubst != nil {
			params = c.substituteParams(params, thisSubst)
		}
		c.validateArgTypes(params, args, false)
		ret := c.substitute(cand.Ret, thisSubst)
		return c.finishReturn(cand, ret, rawArgs)
	}

	infCtx := ctx
	if !typeArgsOK {
		// A bad explicit list already got its diagnostic; inference proceeds
		// from the arguments alone instead of cascading mismatches.
		clone := *ctx
		clone.typeArgs = nil
		infCtx = &clone
	}
	subst, unresolved := c.inferTypeArgs(cand, infCtx, args)

	// Inline callbacks with implicit-any parameters get their parameter types
	// patched from the inference result, then the whole call re-resolves once
	// so the callback body is typed with concrete parameters.
	if !ctx.reeval && ctx.callID != ast.NoExprID && !c.reevaluating[ctx.callID] {
		if c.patchCallbackParams(cand, subst, rawArgs) {
			c.reevaluating[ctx.callID] = true
			result := c.typeExpr(ctx.callID)
			delete(c.reevaluating, ctx.callID)
			return result
		}
	}

	for _, tp := range unresolved {
		name := ""
		if info, ok := c.types.TypeParamInfo(tp); ok {
			name = c.lookupName(info.Name)
		}
		c.report(diag.SemaUnresolvedTypeParam, ctx.span, "type parameter '%s' could not be inferred from the arguments", name)
	}

	for this, recv := range thisSubst {
		subst[this] = recv
	}
	c.validateArgTypes(c.substituteParams(cand.Params, subst), args, true)
	ret := c.substitute(cand.Ret, subst)
	return c.finishReturn(cand, ret, rawArgs)
}

func (c *Checker) thisSubst() map[types.TypeID]types.TypeID {
	recv := c.thisType()
	if recv == types.NoTypeID {
		return nil
	}
	return map[types.TypeID]types.TypeID{c.types.Builtins().This: recv}
}

func (c *Checker) substituteParams(params []types.FnParam, subst map[types.TypeID]types.TypeID) []types.FnParam {
	if len(subst) == 0 {
		return params
	}
	out := make([]types.FnParam, len(params))
	for i, p := range params {
		out[i] = p
		out[i].Ty = c.substitute(p.Ty, subst)
	}
	return out
}

// finishReturn normalizes the resolved return type and records the narrowing
// fact when the call is a type-predicate guard over an identifier argument.
func (c *Checker) finishReturn(cand *CallCandidate, ret types.TypeID, rawArgs []TypeOrSpread) types.TypeID {
	ret = c.normalize(ret)
	if c.types.Kind(ret) == types.KindPredicate {
		c.storeCallFact(cand, ret, rawArgs)
		return c.types.Builtins().Boolean
	}
	return ret
}

// patchCallbackParams installs inferred parameter types for inline callbacks
// whose parameters carry no annotation. Reports whether anything new was
// patched, which is the trigger for the guarded second pass.
func (c *Checker) patchCallbackParams(cand *CallCandidate, subst map[types.TypeID]types.TypeID, rawArgs []TypeOrSpread) bool {
	params := valueParams(cand.Params)
	patched := false
	for i, arg := range rawArgs {
		if arg.Expr == ast.NoExprID || i >= len(params) || !c.exprs.IsFnExpr(arg.Expr) {
			continue
		}
		declTy := c.normalize(c.substitute(params[i].Ty, subst))
		fnInfo, ok := c.types.FnInfo(declTy)
		if !ok {
			continue
		}
		declParams := valueParams(fnInfo.Params)
		fnID := c.exprs.Unparen(arg.Expr)
		fnExpr := c.exprs.Get(fnID)
		for j, p := range fnExpr.Params {
			if p.Ann != types.NoTypeID || j >= len(declParams) {
				continue
			}
			want := c.normalize(declParams[j].Ty)
			switch c.types.Kind(want) {
			case types.KindAny, types.KindUnknown, types.KindInvalid:
				continue
			}
			key := paramPatchKey{fn: fnID, param: j}
			if c.paramPatch[key] == want {
				continue
			}
			c.paramPatch[key] = want
			patched = true
		}
	}
	return patched
}

// validateArgTypes reports per-argument assignability failures. stopAtFirst
// makes the first failure terminal, the behavior generic candidates use: one
// bad inference source tends to cascade, so only the first mismatch is worth
// surfacing.
func (c *Checker) validateArgTypes(params []types.FnParam, args []TypeOrSpread, stopAtFirst bool) {
	vp := valueParams(params)
	ai := 0
	for pi := 0; pi < len(vp); pi++ {
		p := vp[pi]
		if p.Pat == types.PatRest {
			if !c.validateRestArgs(p.Ty, args[ai:], stopAtFirst) && stopAtFirst {
				return
			}
			return
		}
		if ai >= len(args) {
			return
		}
		if !c.validateOneArg(p.Ty, args[ai], false) && stopAtFirst {
			return
		}
		ai++
	}
}

// validateRestArgs checks the arguments consumed by a rest parameter. A
// tuple-typed rest destructures elementwise; an array-typed rest checks every
// remaining argument against the element type.
func (c *Checker) validateRestArgs(restTy types.TypeID, args []TypeOrSpread, stopAtFirst bool) bool {
	ty := c.normalize(restTy)
	if info, ok := c.types.TupleInfo(ty); ok {
		ei := 0
		for _, arg := range args {
			if ei >= len(info.Elems) {
				return true
			}
			e := info.Elems[ei]
			target := e.Ty
			if e.Rest {
				target = c.types.ElemOf(c.normalize(e.Ty))
			} else {
				ei++
			}
			if !c.validateOneArg(target, arg, true) {
				if stopAtFirst {
					return false
				}
			}
		}
		return true
	}
	elem := ty
	if c.types.Kind(ty) == types.KindArray {
		elem = c.types.ElemOf(ty)
	}
	for _, arg := range args {
		if !c.validateOneArg(elem, arg, true) {
			if stopAtFirst {
				return false
			}
		}
	}
	return true
}

// validateOneArg reports when the argument cannot flow into the parameter.
// A spread passes as a whole array or via its element type. rest marks a slot
// consumed by a rest parameter, which changes the failure code: a non-iterable
// spread there lacks an iterator, while on a plain parameter the spread itself
// is the mistake.
func (c *Checker) validateOneArg(paramTy types.TypeID, arg TypeOrSpread, rest bool) bool {
	if c.mentionsScopedTypeParam(paramTy, 0) {
		return true
	}
	if arg.Spread {
		if c.assignableOK(paramTy, arg.Ty) {
			return true
		}
		elem, ok := c.iteratedElement(arg.Ty)
		if !ok {
			if rest {
				c.report(diag.SemaMustHaveSymbolIterator, arg.Span,
					"spread argument of type '%s' must have a '[Symbol.iterator]()' method", c.typeLabel(arg.Ty))
			} else {
				c.report(diag.SemaSpreadMustBeTupleOrRest, arg.Span,
					"spread argument of type '%s' must either have a tuple type or be passed to a rest parameter", c.typeLabel(arg.Ty))
			}
			return false
		}
		if c.assignableOK(paramTy, elem) {
			return true
		}
		c.report(diag.SemaWrongArgType, arg.Span,
			"argument of type '%s' is not assignable to parameter of type '%s'",
			c.typeLabel(elem), c.typeLabel(paramTy))
		return false
	}
	if ok, _ := c.assignable(paramTy, arg.Ty); ok {
		return true
	}
	c.report(diag.SemaWrongArgType, arg.Span,
		"argument of type '%s' is not assignable to parameter of type '%s'",
		c.typeLabel(arg.Ty), c.typeLabel(paramTy))
	return false
}
