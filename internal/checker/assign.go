package checker

import (
	"quill/internal/source"
	"quill/internal/types"
)

const maxAssignDepth = 16

// assignable reports whether src is assignable to dst. strict additionally
// reports that the match used no any-compat hole: a strict match is a
// subtype relationship, a non-strict one only holds because any absorbed a
// mismatch. The Exact/MayBe candidate split rides on that difference.
func (c *Checker) assignable(dst, src types.TypeID) (ok, strict bool) {
	return c.assignableDepth(dst, src, 0)
}

func (c *Checker) assignableOK(dst, src types.TypeID) bool {
	ok, _ := c.assignable(dst, src)
	return ok
}

func (c *Checker) assignableDepth(dst, src types.TypeID, depth int) (bool, bool) {
	if depth > maxAssignDepth {
		return true, false
	}
	dst = c.normalize(dst)
	src = c.normalize(src)
	if dst == src && dst != types.NoTypeID {
		return true, true
	}
	dt, okD := c.types.Lookup(dst)
	st, okS := c.types.Lookup(src)
	if !okD || !okS {
		return false, false
	}

	switch dt.Kind {
	case types.KindAny, types.KindUnknown:
		return true, true
	}
	switch st.Kind {
	case types.KindAny:
		return true, false
	case types.KindNever:
		return true, true
	case types.KindPredicate:
		// A predicate result is a boolean at the value level.
		return c.assignableDepth(dst, c.types.Builtins().Boolean, depth+1)
	}
	if dt.Kind == types.KindPredicate {
		return c.assignableDepth(c.types.Builtins().Boolean, src, depth+1)
	}

	// Unions and intersections on the source side decompose first.
	if st.Kind == types.KindUnion {
		strict := true
		for _, m := range c.types.ListMembers(src) {
			ok, s := c.assignableDepth(dst, m, depth+1)
			if !ok {
				return false, false
			}
			strict = strict && s
		}
		return true, strict
	}
	if dt.Kind == types.KindUnion {
		for _, m := range c.types.ListMembers(dst) {
			if ok, s := c.assignableDepth(m, src, depth+1); ok {
				return true, s
			}
		}
		return false, false
	}
	if st.Kind == types.KindIntersection {
		for _, m := range c.types.ListMembers(src) {
			if ok, s := c.assignableDepth(dst, m, depth+1); ok {
				return true, s
			}
		}
		return false, false
	}
	if dt.Kind == types.KindIntersection {
		strict := true
		for _, m := range c.types.ListMembers(dst) {
			ok, s := c.assignableDepth(m, src, depth+1)
			if !ok {
				return false, false
			}
			strict = strict && s
		}
		return true, strict
	}

	if st.Kind == types.KindTypeParam {
		info, _ := c.types.TypeParamInfo(src)
		if info != nil && info.Constraint != types.NoTypeID {
			return c.assignableDepth(dst, info.Constraint, depth+1)
		}
		return false, false
	}
	if dt.Kind == types.KindTypeParam {
		// Opaque parameter: only an identical parameter (handled above) or a
		// source within its constraint may flow in.
		info, _ := c.types.TypeParamInfo(dst)
		if info != nil && info.Constraint != types.NoTypeID {
			return c.assignableDepth(info.Constraint, src, depth+1)
		}
		return false, false
	}

	if st.Kind == types.KindLit {
		if dt.Kind == types.KindLit {
			return litsEqual(c.types, dst, src), true
		}
		return c.types.BaseOfLit(src) == dst, true
	}
	if dt.Kind == types.KindLit {
		return false, false
	}

	switch dt.Kind {
	case types.KindVoid:
		return st.Kind == types.KindVoid || st.Kind == types.KindUndefined, true
	case types.KindBoolean, types.KindNumber, types.KindString, types.KindSymbol,
		types.KindNull, types.KindUndefined, types.KindNever:
		return dt.Kind == st.Kind, true
	case types.KindArray:
		switch st.Kind {
		case types.KindArray:
			return c.assignableDepth(dt.Elem, st.Elem, depth+1)
		case types.KindTuple:
			info, _ := c.types.TupleInfo(src)
			strict := true
			for _, e := range info.Elems {
				elemTy := e.Ty
				if e.Rest {
					elemTy = c.types.ElemOf(c.normalize(e.Ty))
				}
				ok, s := c.assignableDepth(dt.Elem, elemTy, depth+1)
				if !ok {
					return false, false
				}
				strict = strict && s
			}
			return true, strict
		}
		return false, false
	case types.KindTuple:
		if st.Kind != types.KindTuple {
			return false, false
		}
		return c.tupleAssignable(dst, src, depth)
	case types.KindFn, types.KindCtor:
		if st.Kind != dt.Kind {
			return false, false
		}
		return c.fnAssignable(dst, src, depth)
	case types.KindInstance:
		if st.Kind == types.KindInstance {
			if ok, strict := c.instanceAssignable(dst, src, depth); ok {
				return true, strict
			}
		}
		return c.structuralAssignable(dst, src, depth)
	case types.KindClassDef:
		return st.Kind == types.KindClassDef && c.inheritsFrom(src, dst), true
	case types.KindInterface, types.KindTypeLit:
		return c.structuralAssignable(dst, src, depth)
	case types.KindThis:
		recv := c.thisType()
		if recv == types.NoTypeID {
			return true, false
		}
		return c.assignableDepth(recv, src, depth+1)
	}
	return false, false
}

func litsEqual(ti *types.Interner, a, b types.TypeID) bool {
	ai, okA := ti.LitInfo(a)
	bi, okB := ti.LitInfo(b)
	if !okA || !okB || ai.Kind != bi.Kind {
		return false
	}
	// Pinnedness is a widening property, not part of the value identity.
	switch ai.Kind {
	case types.LitNumber:
		return ai.Num == bi.Num
	case types.LitString:
		return ai.Str == bi.Str
	case types.LitBoolean:
		return ai.Bool == bi.Bool
	}
	return false
}

func (c *Checker) tupleAssignable(dst, src types.TypeID, depth int) (bool, bool) {
	dInfo, _ := c.types.TupleInfo(dst)
	sInfo, _ := c.types.TupleInfo(src)
	strict := true
	si := 0
	for _, de := range dInfo.Elems {
		if de.Rest {
			restElem := c.types.ElemOf(c.normalize(de.Ty))
			for ; si < len(sInfo.Elems); si++ {
				ok, s := c.assignableDepth(restElem, sInfo.Elems[si].Ty, depth+1)
				if !ok {
					return false, false
				}
				strict = strict && s
			}
			return true, strict
		}
		if si >= len(sInfo.Elems) {
			if de.Optional {
				continue
			}
			return false, false
		}
		ok, s := c.assignableDepth(de.Ty, sInfo.Elems[si].Ty, depth+1)
		if !ok {
			return false, false
		}
		strict = strict && s
		si++
	}
	if si < len(sInfo.Elems) {
		return false, false
	}
	return true, strict
}

// fnAssignable checks signature compatibility: the source may declare fewer
// parameters, parameters compare bivariantly (matching the language's method
// compatibility rules), and returns compare covariantly with a void target
// accepting anything.
func (c *Checker) fnAssignable(dst, src types.TypeID, depth int) (bool, bool) {
	dInfo, _ := c.types.FnInfo(dst)
	sInfo, _ := c.types.FnInfo(src)
	dParams := valueParams(dInfo.Params)
	sParams := valueParams(sInfo.Params)
	if minRequired(sParams) > len(dParams) && !hasRest(dParams) {
		return false, false
	}
	strict := true
	n := len(sParams)
	if len(dParams) < n {
		n = len(dParams)
	}
	for i := 0; i < n; i++ {
		dTy, sTy := dParams[i].Ty, sParams[i].Ty
		if dParams[i].Pat == types.PatRest {
			dTy = c.types.ElemOf(c.normalize(dTy))
		}
		if sParams[i].Pat == types.PatRest {
			sTy = c.types.ElemOf(c.normalize(sTy))
		}
		ok, s := c.assignableDepth(sTy, dTy, depth+1)
		if !ok {
			ok, s = c.assignableDepth(dTy, sTy, depth+1)
		}
		if !ok {
			return false, false
		}
		strict = strict && s
	}
	if c.types.Kind(c.normalize(dInfo.Ret)) == types.KindVoid {
		return true, strict
	}
	ok, s := c.assignableDepth(dInfo.Ret, sInfo.Ret, depth+1)
	if !ok {
		return false, false
	}
	return true, strict && s
}

func valueParams(params []types.FnParam) []types.FnParam {
	out := make([]types.FnParam, 0, len(params))
	for _, p := range params {
		if p.Pat == types.PatThis {
			continue
		}
		out = append(out, p)
	}
	return out
}

func minRequired(params []types.FnParam) int {
	n := 0
	for _, p := range params {
		if p.Required && p.Pat != types.PatRest {
			n++
		}
	}
	return n
}

func hasRest(params []types.FnParam) bool {
	for _, p := range params {
		if p.Pat == types.PatRest {
			return true
		}
	}
	return false
}

func (c *Checker) instanceAssignable(dst, src types.TypeID, depth int) (bool, bool) {
	dstClass := c.types.InstanceClass(dst)
	srcClass := c.types.InstanceClass(src)
	if !c.inheritsFrom(srcClass, dstClass) {
		return false, false
	}
	dArgs := c.types.InstanceArgs(dst)
	sArgs := c.types.InstanceArgs(src)
	strict := true
	for i := range dArgs {
		if i >= len(sArgs) {
			break
		}
		ok, s := c.assignableDepth(dArgs[i], sArgs[i], depth+1)
		if !ok {
			return false, false
		}
		strict = strict && s
	}
	return true, strict
}

// inheritsFrom walks the superclass chain from sub up to super.
func (c *Checker) inheritsFrom(sub, super types.TypeID) bool {
	for sub != types.NoTypeID {
		if sub == super {
			return true
		}
		info, ok := c.types.ClassInfo(sub)
		if !ok {
			return false
		}
		next := c.normalize(info.Super)
		if c.types.Kind(next) == types.KindInstance {
			next = c.types.InstanceClass(next)
		}
		sub = next
	}
	return false
}

// structuralAssignable checks that every member the target requires exists
// on the source with an assignable type.
func (c *Checker) structuralAssignable(dst, src types.TypeID, depth int) (bool, bool) {
	dMembers, ok := c.structuralMembers(dst)
	if !ok {
		return false, false
	}
	sMembers, ok := c.structuralMembers(src)
	if !ok {
		return false, false
	}
	strict := true
	for _, dm := range dMembers {
		switch dm.Kind {
		case types.MemberCall, types.MemberCtor:
			found := false
			for _, sm := range sMembers {
				if sm.Kind != dm.Kind {
					continue
				}
				if okM, s := c.assignableDepth(dm.Ty, sm.Ty, depth+1); okM {
					strict = strict && s
					found = true
					break
				}
			}
			if !found {
				return false, false
			}
		default:
			sm, found := findMember(sMembers, dm.Name)
			if !found {
				if dm.Optional {
					continue
				}
				return false, false
			}
			okM, s := c.assignableDepth(dm.Ty, sm.Ty, depth+1)
			if !okM {
				return false, false
			}
			strict = strict && s
		}
	}
	return true, strict
}

func findMember(members []types.Member, name source.StringID) (types.Member, bool) {
	for _, m := range members {
		if m.Kind == types.MemberCall || m.Kind == types.MemberCtor {
			continue
		}
		if m.Name == name {
			return m, true
		}
	}
	return types.Member{}, false
}
