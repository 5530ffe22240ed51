package checker

import (
	"sort"

	"quill/internal/diag"
	"quill/internal/types"
)

// ArgCheckResult is the totally ordered outcome of classifying one candidate
// against the actual arguments, best to worst. It is only a sort key and is
// never displayed.
type ArgCheckResult uint8

const (
	ArgExact ArgCheckResult = iota
	ArgMayBe
	ArgTypeMismatch
	ArgWrongCount
)

func (r ArgCheckResult) String() string {
	switch r {
	case ArgExact:
		return "exact"
	case ArgMayBe:
		return "maybe"
	case ArgTypeMismatch:
		return "arg type mismatch"
	case ArgWrongCount:
		return "wrong arg count"
	}
	return "unknown"
}

// checkCallArgs classifies a candidate without reporting. Type-argument and
// arity mismatches dominate; otherwise each argument is assigned to its
// parameter with the candidate's type parameters registered as opaque
// bindings, skipping parameters whose types are inferred rather than checked.
func (c *Checker) checkCallArgs(cand *CallCandidate, args []TypeOrSpread, typeArgs []types.TypeID, iife bool) ArgCheckResult {
	if len(typeArgs) > 0 && len(typeArgs) > len(cand.TypeParams) {
		return ArgWrongCount
	}
	if !c.argCountOK(cand.Params, args, iife) {
		return ArgWrongCount
	}

	c.pushScope()
	defer c.popScope()
	for _, tp := range cand.TypeParams {
		c.registerTypeParam(tp)
	}

	exact := true
	params := valueParams(cand.Params)
	ai := 0
	for pi := 0; pi < len(params); pi++ {
		p := params[pi]
		if p.Pat == types.PatRest {
			restElem := c.restElemType(p.Ty)
			for ; ai < len(args); ai++ {
				res, ok := c.classifyOneArg(restElem, args[ai])
				if !ok {
					return ArgTypeMismatch
				}
				exact = exact && res
			}
			break
		}
		if ai >= len(args) {
			break
		}
		res, ok := c.classifyOneArg(p.Ty, args[ai])
		if !ok {
			return ArgTypeMismatch
		}
		exact = exact && res
		ai++
	}

	if !exact || c.arityUnknown {
		return ArgMayBe
	}
	return ArgExact
}

// classifyOneArg checks one argument slot; ok=false is a mismatch, strict
// reports a subtype-level match. Parameters whose type is an unresolved type
// parameter (or an instantiation mentioning one) are inferred later rather
// than checked structurally here.
func (c *Checker) classifyOneArg(paramTy types.TypeID, arg TypeOrSpread) (strict, ok bool) {
	if c.mentionsScopedTypeParam(paramTy, 0) {
		return true, true
	}
	argTy := arg.Ty
	if arg.Spread {
		// A spread is acceptable as a whole or through its element type.
		if ok, s := c.assignable(paramTy, argTy); ok {
			return s, true
		}
		if elem, found := c.iteratedElement(argTy); found {
			if ok, s := c.assignable(paramTy, elem); ok {
				return s, true
			}
		}
		return false, false
	}
	okA, s := c.assignable(paramTy, argTy)
	if !okA {
		return false, false
	}
	return s, true
}

func (c *Checker) restElemType(restTy types.TypeID) types.TypeID {
	ty := c.normalize(restTy)
	switch c.types.Kind(ty) {
	case types.KindArray:
		return c.types.ElemOf(ty)
	case types.KindTuple:
		if elem, ok := c.iteratedElement(ty); ok {
			return elem
		}
	}
	return ty
}

// mentionsScopedTypeParam reports whether the type is, or instantiates, a
// type parameter registered in the current candidate scope.
func (c *Checker) mentionsScopedTypeParam(ty types.TypeID, depth int) bool {
	if depth > maxNormalizeDepth {
		return false
	}
	tt, ok := c.types.Lookup(ty)
	if !ok {
		return false
	}
	switch tt.Kind {
	case types.KindTypeParam:
		return c.typeParamInScope(ty)
	case types.KindArray:
		return c.mentionsScopedTypeParam(tt.Elem, depth+1)
	case types.KindUnion, types.KindIntersection:
		for _, m := range c.types.ListMembers(ty) {
			if c.mentionsScopedTypeParam(m, depth+1) {
				return true
			}
		}
	case types.KindTuple:
		info, _ := c.types.TupleInfo(ty)
		for _, e := range info.Elems {
			if c.mentionsScopedTypeParam(e.Ty, depth+1) {
				return true
			}
		}
	case types.KindFn, types.KindCtor:
		info, _ := c.types.FnInfo(ty)
		for _, p := range info.Params {
			if c.mentionsScopedTypeParam(p.Ty, depth+1) {
				return true
			}
		}
		return c.mentionsScopedTypeParam(info.Ret, depth+1)
	case types.KindPredicate:
		info, _ := c.types.PredInfo(ty)
		return c.mentionsScopedTypeParam(info.Asserted, depth+1)
	case types.KindRef:
		info, _ := c.types.RefInfo(ty)
		for _, a := range info.Args {
			if c.mentionsScopedTypeParam(a, depth+1) {
				return true
			}
		}
	case types.KindInstance:
		for _, a := range c.types.InstanceArgs(ty) {
			if c.mentionsScopedTypeParam(a, depth+1) {
				return true
			}
		}
	case types.KindIndexedAccess:
		obj, index, _ := c.types.IndexedInfo(ty)
		return c.mentionsScopedTypeParam(obj, depth+1) || c.mentionsScopedTypeParam(index, depth+1)
	}
	return false
}

// selectAndInvoke ranks the candidates, rejects ambiguous failures, and
// forwards the winner to return-type resolution.
func (c *Checker) selectAndInvoke(candidates []CallCandidate, ctx *callCtx, args []TypeOrSpread) types.TypeID {
	expanded := c.spreadArgs(args)

	type ranked struct {
		cand   *CallCandidate
		result ArgCheckResult
	}
	rankedList := make([]ranked, 0, len(candidates))
	for i := range candidates {
		rankedList = append(rankedList, ranked{
			cand:   &candidates[i],
			result: c.checkCallArgs(&candidates[i], expanded, ctx.typeArgs, ctx.iife),
		})
	}
	sort.SliceStable(rankedList, func(i, j int) bool {
		return rankedList[i].result < rankedList[j].result
	})

	if len(rankedList) > 1 && rankedList[0].result >= ArgTypeMismatch {
		if ctx.classNew != types.NoTypeID {
			c.report(diag.SemaNoSuchConstructor, ctx.span, "no constructor of '%s' matches this call", c.typeLabel(ctx.classNew))
		} else {
			c.report(diag.SemaNoMatchingOverload, ctx.span, "no overload matches this %s", ctx.kind)
		}
		return c.types.Builtins().Any
	}

	best := rankedList[0]
	return c.getReturnType(best.cand, ctx, args, expanded)
}
