package checker

import (
	"quill/internal/types"
)

// inference accumulates candidate bindings per type parameter while the
// declared parameter types are matched against the actual argument types.
type inference struct {
	params   map[types.TypeID]struct{}
	bindings map[types.TypeID][]types.TypeID

	// touched marks parameters that appeared in a slot which had a concrete
	// argument; an untouched parameter falling back to unknown is not an
	// inference failure, a touched one is.
	touched map[types.TypeID]struct{}
}

// inferTypeArgs produces the substitution for a generic candidate. Explicit
// type arguments win outright; remaining parameters are inferred structurally
// from the arguments, then from the contextual type annotation against the
// declared return type, then from declared defaults, and finally fall back to
// unknown. The returned unresolved list holds parameters whose inference had
// material to work with and still failed.
func (c *Checker) inferTypeArgs(cand *CallCandidate, ctx *callCtx, args []TypeOrSpread) (map[types.TypeID]types.TypeID, []types.TypeID) {
	inf := &inference{
		params:   make(map[types.TypeID]struct{}, len(cand.TypeParams)),
		bindings: make(map[types.TypeID][]types.TypeID, len(cand.TypeParams)),
		touched:  make(map[types.TypeID]struct{}, len(cand.TypeParams)),
	}
	for _, tp := range cand.TypeParams {
		inf.params[tp] = struct{}{}
	}

	subst := make(map[types.TypeID]types.TypeID, len(cand.TypeParams))
	for i, tp := range cand.TypeParams {
		if i < len(ctx.typeArgs) && ctx.typeArgs[i] != types.NoTypeID {
			subst[tp] = ctx.typeArgs[i]
		}
	}

	params := valueParams(cand.Params)
	ai := 0
	for pi := 0; pi < len(params) && ai < len(args); pi++ {
		p := params[pi]
		if p.Pat == types.PatRest {
			restElem := c.restElemType(p.Ty)
			for ; ai < len(args); ai++ {
				c.collectConstraints(restElem, c.argInferType(args[ai]), inf, 0)
			}
			break
		}
		c.collectConstraints(p.Ty, c.argInferType(args[ai]), inf, 0)
		ai++
	}

	for _, tp := range cand.TypeParams {
		if _, explicit := subst[tp]; explicit {
			continue
		}
		if tys := inf.bindings[tp]; len(tys) > 0 {
			subst[tp] = c.types.NewUnion(tys)
		}
	}

	// The contextual annotation only fills parameters the arguments left open.
	if ctx.typeAnn != types.NoTypeID {
		retInf := &inference{
			params:   inf.params,
			bindings: make(map[types.TypeID][]types.TypeID, 2),
			touched:  make(map[types.TypeID]struct{}, 2),
		}
		c.collectConstraints(cand.Ret, ctx.typeAnn, retInf, 0)
		for tp, tys := range retInf.bindings {
			if _, bound := subst[tp]; !bound && len(tys) > 0 {
				subst[tp] = c.types.NewUnion(tys)
			}
		}
	}

	var unresolved []types.TypeID
	for _, tp := range cand.TypeParams {
		if _, bound := subst[tp]; bound {
			continue
		}
		if info, ok := c.types.TypeParamInfo(tp); ok && info.Default != types.NoTypeID {
			subst[tp] = info.Default
			continue
		}
		if _, touched := inf.touched[tp]; touched {
			unresolved = append(unresolved, tp)
		}
		subst[tp] = c.types.Builtins().Unknown
	}
	return subst, unresolved
}

// argInferType widens unpinned literal arguments before they become
// inference material so id(1) infers number, not 1.
func (c *Checker) argInferType(arg TypeOrSpread) types.TypeID {
	if arg.Spread {
		if elem, ok := c.iteratedElement(arg.Ty); ok {
			return elem
		}
	}
	return c.types.WidenLit(arg.Ty)
}

// collectConstraints structurally matches a declared type against a concrete
// one and records a binding wherever a candidate type parameter sits in the
// declared position. An any source contributes nothing: implicit-any callback
// parameters must not poison inference before patching.
func (c *Checker) collectConstraints(decl, actual types.TypeID, inf *inference, depth int) {
	if depth > maxSubstituteDepth {
		return
	}
	decl = c.normalize(decl)
	actual = c.normalize(actual)
	dt, okD := c.types.Lookup(decl)
	at, okA := c.types.Lookup(actual)
	if !okD || !okA {
		return
	}

	if dt.Kind == types.KindTypeParam {
		if _, mine := inf.params[decl]; !mine {
			return
		}
		inf.touched[decl] = struct{}{}
		if at.Kind == types.KindAny {
			return
		}
		inf.bindings[decl] = append(inf.bindings[decl], c.types.WidenLit(actual))
		return
	}

	switch dt.Kind {
	case types.KindArray:
		switch at.Kind {
		case types.KindArray:
			c.collectConstraints(dt.Elem, at.Elem, inf, depth+1)
		case types.KindTuple, types.KindInterface:
			if elem, ok := c.iteratedElement(actual); ok {
				c.collectConstraints(dt.Elem, elem, inf, depth+1)
			}
		}
	case types.KindTuple:
		if at.Kind != types.KindTuple {
			return
		}
		dInfo, _ := c.types.TupleInfo(decl)
		aInfo, _ := c.types.TupleInfo(actual)
		n := len(dInfo.Elems)
		if len(aInfo.Elems) < n {
			n = len(aInfo.Elems)
		}
		for i := 0; i < n; i++ {
			c.collectConstraints(dInfo.Elems[i].Ty, aInfo.Elems[i].Ty, inf, depth+1)
		}
	case types.KindUnion:
		// Only the type-parameter arms of a declared union can absorb the
		// actual type; concrete arms that already accept it leave nothing to
		// infer.
		members := c.types.ListMembers(decl)
		for _, m := range members {
			if c.types.Kind(c.normalize(m)) != types.KindTypeParam && c.assignableOK(m, actual) {
				return
			}
		}
		for _, m := range members {
			if c.types.Kind(c.normalize(m)) == types.KindTypeParam {
				c.collectConstraints(m, actual, inf, depth+1)
			}
		}
	case types.KindFn, types.KindCtor:
		if at.Kind != dt.Kind {
			return
		}
		dInfo, _ := c.types.FnInfo(decl)
		aInfo, _ := c.types.FnInfo(actual)
		dParams := valueParams(dInfo.Params)
		aParams := valueParams(aInfo.Params)
		n := len(dParams)
		if len(aParams) < n {
			n = len(aParams)
		}
		for i := 0; i < n; i++ {
			c.collectConstraints(dParams[i].Ty, aParams[i].Ty, inf, depth+1)
		}
		c.collectConstraints(dInfo.Ret, aInfo.Ret, inf, depth+1)
	case types.KindRef:
		dRef, _ := c.types.RefInfo(decl)
		if at.Kind == types.KindRef {
			aRef, _ := c.types.RefInfo(actual)
			if dRef.Name == aRef.Name && len(dRef.Args) == len(aRef.Args) {
				for i := range dRef.Args {
					c.collectConstraints(dRef.Args[i], aRef.Args[i], inf, depth+1)
				}
			}
		}
	case types.KindInstance:
		if at.Kind != types.KindInstance {
			return
		}
		if c.types.InstanceClass(decl) != c.types.InstanceClass(actual) {
			return
		}
		dArgs := c.types.InstanceArgs(decl)
		aArgs := c.types.InstanceArgs(actual)
		n := len(dArgs)
		if len(aArgs) < n {
			n = len(aArgs)
		}
		for i := 0; i < n; i++ {
			c.collectConstraints(dArgs[i], aArgs[i], inf, depth+1)
		}
	case types.KindPredicate:
		dPred, _ := c.types.PredInfo(decl)
		if at.Kind == types.KindPredicate {
			aPred, _ := c.types.PredInfo(actual)
			c.collectConstraints(dPred.Asserted, aPred.Asserted, inf, depth+1)
		}
	case types.KindTypeLit, types.KindInterface:
		dMembers, okM := c.structuralMembers(decl)
		if !okM {
			return
		}
		aMembers, okM := c.structuralMembers(actual)
		if !okM {
			return
		}
		for _, dm := range dMembers {
			if dm.Kind == types.MemberCall || dm.Kind == types.MemberCtor {
				continue
			}
			if am, found := findMember(aMembers, dm.Name); found {
				c.collectConstraints(dm.Ty, am.Ty, inf, depth+1)
			}
		}
	}
}
