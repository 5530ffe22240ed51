package checker

import (
	"quill/internal/types"
)

// CallCandidate is one concrete call or construct signature under
// consideration for an invocation. Candidates are ephemeral: built per
// call-site from the callee's structure and discarded after selection.
type CallCandidate struct {
	TypeParams []types.TypeID
	Params     []types.FnParam
	Ret        types.TypeID
}

// extractCandidates walks a normalized callee type and yields zero or more
// candidates. An empty result is not an error by itself; callers raise
// NoCallSignature/NoNewSignature only once every fallback path is exhausted.
func (c *Checker) extractCandidates(ty types.TypeID, kind ExtractKind) []CallCandidate {
	return c.extractDepth(ty, kind, 0)
}

func (c *Checker) extractDepth(ty types.TypeID, kind ExtractKind, depth int) []CallCandidate {
	if depth > maxNormalizeDepth {
		return nil
	}
	ty = c.normalize(ty)
	tt, ok := c.types.Lookup(ty)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case types.KindFn:
		if kind != ExtractCall {
			return nil
		}
		info, _ := c.types.FnInfo(ty)
		return []CallCandidate{{TypeParams: info.TypeParams, Params: info.Params, Ret: info.Ret}}
	case types.KindCtor:
		if kind != ExtractNew {
			return nil
		}
		info, _ := c.types.FnInfo(ty)
		return []CallCandidate{{TypeParams: info.TypeParams, Params: info.Params, Ret: info.Ret}}
	case types.KindUnion, types.KindIntersection:
		// A call matching any constituent's signature is acceptable; no
		// member is required to contribute.
		var out []CallCandidate
		for _, m := range c.types.ListMembers(ty) {
			out = append(out, c.extractDepth(m, kind, depth+1)...)
		}
		return out
	case types.KindInterface, types.KindTypeLit:
		return c.extractFromMembers(ty, kind, depth)
	case types.KindClassDef:
		if kind != ExtractNew {
			// Class values are not callable; the caller reports once all
			// other resolution paths fail.
			return nil
		}
		return c.classConstructors(ty, ty)
	case types.KindTypeParam:
		info, _ := c.types.TypeParamInfo(ty)
		if info.Constraint != types.NoTypeID {
			return c.extractDepth(info.Constraint, kind, depth+1)
		}
		return nil
	default:
		return nil
	}
}

func (c *Checker) extractFromMembers(ty types.TypeID, kind ExtractKind, depth int) []CallCandidate {
	members, ok := c.structuralMembers(ty)
	if !ok {
		return nil
	}
	want := types.MemberCall
	if kind == ExtractNew {
		want = types.MemberCtor
	}
	var out []CallCandidate
	for _, m := range members {
		if m.Kind != want {
			continue
		}
		out = append(out, c.extractDepth(m.Ty, kind, depth+1)...)
	}
	return out
}

// classConstructors yields the construct candidates of a class: its declared
// constructors, or the superclass's constructors when none are declared, or
// the implicit zero-parameter default constructor. The produced instance is
// always of origin, the class being instantiated, regardless of which
// ancestor supplied the parameter list.
func (c *Checker) classConstructors(class, origin types.TypeID) []CallCandidate {
	info, ok := c.types.ClassInfo(class)
	if !ok {
		return nil
	}
	instance := c.defaultInstance(origin)
	if len(info.Ctors) > 0 {
		out := make([]CallCandidate, 0, len(info.Ctors))
		for _, ctor := range info.Ctors {
			fnInfo, ok := c.types.FnInfo(ctor)
			if !ok {
				continue
			}
			ret := fnInfo.Ret
			if ret == types.NoTypeID || class != origin {
				ret = instance
			}
			out = append(out, CallCandidate{
				TypeParams: mergedClassTypeParams(c.types, origin, fnInfo.TypeParams),
				Params:     fnInfo.Params,
				Ret:        ret,
			})
		}
		return out
	}
	super := c.normalize(info.Super)
	if c.types.Kind(super) == types.KindInstance {
		super = c.types.InstanceClass(super)
	}
	if super != types.NoTypeID && c.types.Kind(super) == types.KindClassDef {
		return c.classConstructors(super, origin)
	}
	return []CallCandidate{{
		TypeParams: mergedClassTypeParams(c.types, origin, nil),
		Ret:        instance,
	}}
}

// defaultInstance is the instance type a constructor of the class produces,
// with the class's own type parameters as arguments so inference or explicit
// type arguments can still bind them.
func (c *Checker) defaultInstance(class types.TypeID) types.TypeID {
	info, ok := c.types.ClassInfo(class)
	if !ok {
		return types.NoTypeID
	}
	return c.types.InstanceOf(class, info.TypeParams)
}

func mergedClassTypeParams(ti *types.Interner, class types.TypeID, ctorParams []types.TypeID) []types.TypeID {
	info, ok := ti.ClassInfo(class)
	if !ok || len(info.TypeParams) == 0 {
		return ctorParams
	}
	out := make([]types.TypeID, 0, len(info.TypeParams)+len(ctorParams))
	out = append(out, info.TypeParams...)
	out = append(out, ctorParams...)
	return out
}
