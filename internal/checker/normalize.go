package checker

import (
	"quill/internal/types"
)

const maxNormalizeDepth = 32

// normalize resolves by-name references and indexed accesses to structural
// form. Nominal types (interfaces, classes, type parameters) normalize to
// themselves. Unknown names stay as references; the caller decides whether
// that is an error.
func (c *Checker) normalize(id types.TypeID) types.TypeID {
	return c.normalizeDepth(id, 0)
}

func (c *Checker) normalizeDepth(id types.TypeID, depth int) types.TypeID {
	if depth > maxNormalizeDepth {
		return id
	}
	tt, ok := c.types.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case types.KindRef:
		info, _ := c.types.RefInfo(id)
		target, found := c.env.TypeDecl(info.Name)
		if !found {
			return id
		}
		resolved := c.applyTypeArgs(target, info.Args)
		if resolved == id {
			return id
		}
		return c.normalizeDepth(resolved, depth+1)
	case types.KindIndexedAccess:
		obj, index, _ := c.types.IndexedInfo(id)
		if resolved, ok := c.resolveIndexedAccess(obj, index); ok {
			return c.normalizeDepth(resolved, depth+1)
		}
		return id
	default:
		return id
	}
}

// applyTypeArgs adapts a named declaration to the reference's type
// arguments. A class name in type position denotes its instance type.
func (c *Checker) applyTypeArgs(target types.TypeID, args []types.TypeID) types.TypeID {
	tt, ok := c.types.Lookup(target)
	if !ok {
		return target
	}
	switch tt.Kind {
	case types.KindInterface:
		info, _ := c.types.IfaceInfo(target)
		if len(info.TypeParams) == 0 {
			return target
		}
		return c.instantiateIface(target, args)
	case types.KindClassDef:
		return c.types.InstanceOf(target, args)
	default:
		// Alias: generic aliases are not modeled, args are ignored.
		return target
	}
}

// resolveIndexedAccess resolves T[K] for tuple/array objects indexed by a
// numeric literal or number, and member lookup by string literal key.
func (c *Checker) resolveIndexedAccess(obj, index types.TypeID) (types.TypeID, bool) {
	objTy := c.normalize(obj)
	idxTy := c.normalize(index)

	if info, ok := c.types.TupleInfo(objTy); ok {
		if lit, ok := c.types.LitInfo(idxTy); ok && lit.Kind == types.LitNumber {
			i := int(lit.Num)
			if i >= 0 && i < len(info.Elems) && !info.Elems[i].Rest {
				return info.Elems[i].Ty, true
			}
			return types.NoTypeID, false
		}
		if c.types.Kind(idxTy) == types.KindNumber {
			members := make([]types.TypeID, 0, len(info.Elems))
			for _, e := range info.Elems {
				members = append(members, e.Ty)
			}
			return c.types.NewUnion(members), true
		}
	}
	if c.types.Kind(objTy) == types.KindArray {
		switch c.types.Kind(idxTy) {
		case types.KindNumber:
			return c.types.ElemOf(objTy), true
		case types.KindLit:
			if lit, _ := c.types.LitInfo(idxTy); lit != nil && lit.Kind == types.LitNumber {
				return c.types.ElemOf(objTy), true
			}
		}
	}
	if lit, ok := c.types.LitInfo(idxTy); ok && lit.Kind == types.LitString {
		if ty, ok := c.propertyType(objTy, lit.Str); ok {
			return ty, true
		}
	}
	return types.NoTypeID, false
}
