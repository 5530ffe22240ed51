package checker

import (
	"fmt"

	"quill/internal/types"
)

const maxSubstituteDepth = 32

// substitute rewrites every occurrence of a mapped type inside ty, rebuilding
// the surrounding structure through the interner. Used for generic expansion
// (type parameter -> inferred type) and this-type substitution.
func (c *Checker) substitute(ty types.TypeID, subst map[types.TypeID]types.TypeID) types.TypeID {
	if len(subst) == 0 {
		return ty
	}
	return c.substituteDepth(ty, subst, 0)
}

func (c *Checker) substituteDepth(ty types.TypeID, subst map[types.TypeID]types.TypeID, depth int) types.TypeID {
	if depth > maxSubstituteDepth {
		return ty
	}
	if mapped, ok := subst[ty]; ok {
		return mapped
	}
	tt, ok := c.types.Lookup(ty)
	if !ok {
		return ty
	}
	sub := func(id types.TypeID) types.TypeID {
		return c.substituteDepth(id, subst, depth+1)
	}
	switch tt.Kind {
	case types.KindArray:
		elem := sub(tt.Elem)
		if elem == tt.Elem {
			return ty
		}
		return c.types.ArrayOf(elem)
	case types.KindTuple:
		info, _ := c.types.TupleInfo(ty)
		elems := make([]types.TupleElem, len(info.Elems))
		changed := false
		for i, e := range info.Elems {
			elems[i] = e
			elems[i].Ty = sub(e.Ty)
			if elems[i].Ty != e.Ty {
				changed = true
			}
		}
		if !changed {
			return ty
		}
		return c.types.RegisterTuple(elems)
	case types.KindUnion, types.KindIntersection:
		members := c.types.ListMembers(ty)
		out := make([]types.TypeID, len(members))
		changed := false
		for i, m := range members {
			out[i] = sub(m)
			if out[i] != m {
				changed = true
			}
		}
		if !changed {
			return ty
		}
		if tt.Kind == types.KindUnion {
			return c.types.NewUnion(out)
		}
		return c.types.NewIntersection(out)
	case types.KindFn, types.KindCtor:
		info, _ := c.types.FnInfo(ty)
		params := make([]types.FnParam, len(info.Params))
		changed := false
		for i, p := range info.Params {
			params[i] = p
			params[i].Ty = sub(p.Ty)
			if params[i].Ty != p.Ty {
				changed = true
			}
		}
		ret := sub(info.Ret)
		if ret != info.Ret {
			changed = true
		}
		// Type parameters bound by this substitution are consumed; the rest
		// stay on the signature.
		kept := make([]types.TypeID, 0, len(info.TypeParams))
		for _, tp := range info.TypeParams {
			if _, bound := subst[tp]; !bound {
				kept = append(kept, tp)
			} else {
				changed = true
			}
		}
		if !changed {
			return ty
		}
		if tt.Kind == types.KindCtor {
			return c.types.RegisterCtor(kept, params, ret, info.Abstract)
		}
		return c.types.RegisterFn(kept, params, ret)
	case types.KindTypeLit:
		info, _ := c.types.TypeLitInfo(ty)
		members := make([]types.Member, len(info.Members))
		changed := false
		for i, m := range info.Members {
			members[i] = m
			members[i].Ty = sub(m.Ty)
			if members[i].Ty != m.Ty {
				changed = true
			}
		}
		if !changed {
			return ty
		}
		return c.types.RegisterTypeLit(members)
	case types.KindRef:
		info, _ := c.types.RefInfo(ty)
		args := make([]types.TypeID, len(info.Args))
		changed := false
		for i, a := range info.Args {
			args[i] = sub(a)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return ty
		}
		return c.types.RegisterRef(info.Name, args)
	case types.KindInstance:
		args := c.types.InstanceArgs(ty)
		out := make([]types.TypeID, len(args))
		changed := false
		for i, a := range args {
			out[i] = sub(a)
			if out[i] != a {
				changed = true
			}
		}
		if !changed {
			return ty
		}
		return c.types.InstanceOf(c.types.InstanceClass(ty), out)
	case types.KindPredicate:
		info, _ := c.types.PredInfo(ty)
		asserted := sub(info.Asserted)
		if asserted == info.Asserted {
			return ty
		}
		return c.types.RegisterPredicate(info.Param, asserted)
	case types.KindIndexedAccess:
		obj, index, _ := c.types.IndexedInfo(ty)
		newObj, newIndex := sub(obj), sub(index)
		if newObj == obj && newIndex == index {
			return ty
		}
		return c.types.RegisterIndexedAccess(newObj, newIndex)
	default:
		return ty
	}
}

// instantiateIface materializes an interface instantiation by substituting
// its type parameters into members and extends clauses. Instantiations are
// cached so repeated references share one TypeID.
func (c *Checker) instantiateIface(iface types.TypeID, args []types.TypeID) types.TypeID {
	info, ok := c.types.IfaceInfo(iface)
	if !ok || len(info.TypeParams) == 0 {
		return iface
	}
	key := instKey{decl: iface, args: typeArgsKey(args)}
	if cached, ok := c.instCache[key]; ok {
		return cached
	}

	subst := make(map[types.TypeID]types.TypeID, len(info.TypeParams))
	for i, tp := range info.TypeParams {
		if i < len(args) && args[i] != types.NoTypeID {
			subst[tp] = args[i]
			continue
		}
		if pi, ok := c.types.TypeParamInfo(tp); ok && pi.Default != types.NoTypeID {
			subst[tp] = pi.Default
			continue
		}
		subst[tp] = c.types.Builtins().Any
	}

	inst := c.types.RegisterInterface(info.Name, nil)
	c.instCache[key] = inst

	extends := make([]types.TypeID, len(info.Extends))
	for i, e := range info.Extends {
		extends[i] = c.substitute(e, subst)
	}
	members := make([]types.Member, len(info.Members))
	for i, m := range info.Members {
		members[i] = m
		members[i].Ty = c.substitute(m.Ty, subst)
	}
	c.types.SetInterfaceBody(inst, extends, members)

	if iface == c.env.ArrayIface() && len(info.TypeParams) == 1 {
		c.arrayElem[inst] = subst[info.TypeParams[0]]
	}
	return inst
}

// classSubst builds the substitution for a class instance's type arguments.
func (c *Checker) classSubst(class types.TypeID, args []types.TypeID) map[types.TypeID]types.TypeID {
	info, ok := c.types.ClassInfo(class)
	if !ok || len(info.TypeParams) == 0 {
		return nil
	}
	subst := make(map[types.TypeID]types.TypeID, len(info.TypeParams))
	for i, tp := range info.TypeParams {
		if i < len(args) && args[i] != types.NoTypeID {
			subst[tp] = args[i]
		} else {
			subst[tp] = c.types.Builtins().Any
		}
	}
	return subst
}

func typeArgsKey(args []types.TypeID) string {
	key := ""
	for _, a := range args {
		key += fmt.Sprintf("%d,", a)
	}
	return key
}
