package checker

import (
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

// structuralMembers flattens the member list of a member-bearing type:
// type literals as-is, interfaces through their extends chains (own members
// first so overrides shadow inherited entries), class instances through the
// superclass chain with type arguments substituted, and class values through
// the static side.
func (c *Checker) structuralMembers(ty types.TypeID) ([]types.Member, bool) {
	visited := make(map[types.TypeID]bool, 4)
	return c.collectMembers(c.normalize(ty), visited)
}

func (c *Checker) collectMembers(ty types.TypeID, visited map[types.TypeID]bool) ([]types.Member, bool) {
	if visited[ty] {
		return nil, true
	}
	visited[ty] = true
	tt, ok := c.types.Lookup(ty)
	if !ok {
		return nil, false
	}
	switch tt.Kind {
	case types.KindTypeLit:
		info, _ := c.types.TypeLitInfo(ty)
		return info.Members, true
	case types.KindInterface:
		info, _ := c.types.IfaceInfo(ty)
		out := append([]types.Member(nil), info.Members...)
		for _, parent := range info.Extends {
			inherited, ok := c.collectMembers(c.normalize(parent), visited)
			if ok {
				out = appendUnshadowed(out, inherited)
			}
		}
		return out, true
	case types.KindInstance:
		return c.instanceMembers(ty, visited)
	case types.KindClassDef:
		return c.classStaticMembers(ty, visited)
	case types.KindIntersection:
		var out []types.Member
		for _, m := range c.types.ListMembers(ty) {
			part, ok := c.collectMembers(c.normalize(m), visited)
			if ok {
				out = appendUnshadowed(out, part)
			}
		}
		return out, len(out) > 0
	}
	return nil, false
}

func (c *Checker) instanceMembers(inst types.TypeID, visited map[types.TypeID]bool) ([]types.Member, bool) {
	class := c.types.InstanceClass(inst)
	subst := c.classSubst(class, c.types.InstanceArgs(inst))
	var out []types.Member
	for class != types.NoTypeID {
		info, ok := c.types.ClassInfo(class)
		if !ok {
			break
		}
		for _, m := range info.Members {
			if m.Static {
				continue
			}
			m.Ty = c.substitute(m.Ty, subst)
			out = appendUnshadowed(out, []types.Member{m})
		}
		super := c.normalize(info.Super)
		if c.types.Kind(super) == types.KindInstance {
			subst = c.classSubst(c.types.InstanceClass(super), c.types.InstanceArgs(super))
			class = c.types.InstanceClass(super)
		} else {
			subst = nil
			class = super
		}
	}
	return out, true
}

func (c *Checker) classStaticMembers(class types.TypeID, visited map[types.TypeID]bool) ([]types.Member, bool) {
	var out []types.Member
	for class != types.NoTypeID {
		info, ok := c.types.ClassInfo(class)
		if !ok {
			break
		}
		for _, m := range info.Members {
			if !m.Static {
				continue
			}
			out = appendUnshadowed(out, []types.Member{m})
		}
		super := c.normalize(info.Super)
		if c.types.Kind(super) == types.KindInstance {
			super = c.types.InstanceClass(super)
		}
		class = super
	}
	return out, true
}

// appendUnshadowed appends members whose names are not already present, so a
// local declaration overrides an inherited one.
func appendUnshadowed(out []types.Member, more []types.Member) []types.Member {
	for _, m := range more {
		if m.Kind == types.MemberCall || m.Kind == types.MemberCtor {
			out = append(out, m)
			continue
		}
		if _, exists := findMember(out, m.Name); exists {
			continue
		}
		out = append(out, m)
	}
	return out
}

// propertyType performs plain member access without invocation. toString is
// universally available and short-circuits to string.
func (c *Checker) propertyType(obj types.TypeID, prop source.StringID) (types.TypeID, bool) {
	if c.lookupName(prop) == "toString" {
		return c.types.Builtins().String, true
	}
	objTy := c.boxReceiver(c.normalize(obj))
	tt, ok := c.types.Lookup(objTy)
	if !ok {
		return types.NoTypeID, false
	}
	if tt.Kind == types.KindAny {
		return c.types.Builtins().Any, true
	}
	if tt.Kind == types.KindArray {
		objTy = c.instantiateIface(c.env.ArrayIface(), []types.TypeID{tt.Elem})
	}
	if tt.Kind == types.KindUnion {
		members := c.types.ListMembers(objTy)
		out := make([]types.TypeID, 0, len(members))
		for _, m := range members {
			ty, ok := c.propertyType(m, prop)
			if !ok {
				return types.NoTypeID, false
			}
			out = append(out, ty)
		}
		return c.types.NewUnion(out), true
	}
	if members, ok := c.structuralMembers(objTy); ok {
		if m, found := findMember(members, prop); found {
			return m.Ty, true
		}
	}
	// Everything ultimately inherits the Object members.
	if objTy != c.env.ObjectIface() {
		if members, ok := c.structuralMembers(c.env.ObjectIface()); ok {
			if m, found := findMember(members, prop); found {
				return m.Ty, true
			}
		}
	}
	return types.NoTypeID, false
}

// boxReceiver rewrites primitive receivers to their wrapper global types for
// member lookup.
func (c *Checker) boxReceiver(ty types.TypeID) types.TypeID {
	tt, ok := c.types.Lookup(ty)
	if !ok {
		return ty
	}
	switch tt.Kind {
	case types.KindNumber:
		return c.env.NumberIface()
	case types.KindString:
		return c.env.StringIface()
	case types.KindSymbol:
		return c.env.SymbolIface()
	case types.KindLit:
		info, _ := c.types.LitInfo(ty)
		switch info.Kind {
		case types.LitNumber:
			return c.env.NumberIface()
		case types.LitString:
			return c.env.StringIface()
		}
	}
	return ty
}

// callProperty resolves obj.method(...) and new obj.Ctor(...) forms: it
// walks the receiver's shape through the documented fallback chain and
// invokes whatever member matches.
func (c *Checker) callProperty(obj types.TypeID, prop source.StringID, ctx *callCtx, args []TypeOrSpread) types.TypeID {
	objTy := c.normalize(obj)
	tt, ok := c.types.Lookup(objTy)
	if !ok {
		c.reportNoProperty(ctx, prop)
		return c.types.Builtins().Any
	}

	// Calls on any propagate any with no further checking.
	if tt.Kind == types.KindAny {
		if len(ctx.typeArgs) > 0 {
			c.report(diag.SemaAnyCalleeWithTypeArgs, ctx.span, "untyped function calls may not accept type arguments")
		}
		return c.types.Builtins().Any
	}

	if c.lookupName(prop) == "toString" && ctx.kind == ExtractCall {
		return c.types.Builtins().String
	}

	// Member signatures may mention the this type; they resolve against the
	// receiver they are invoked through.
	c.pushScope()
	defer c.popScope()
	c.bindThis(objTy)

	boxed := c.boxReceiver(objTy)
	if boxed != objTy {
		return c.callProperty(boxed, prop, ctx, args)
	}

	switch tt.Kind {
	case types.KindArray:
		inst := c.instantiateIface(c.env.ArrayIface(), []types.TypeID{tt.Elem})
		return c.callProperty(inst, prop, ctx, args)
	case types.KindIntersection:
		var successes []types.TypeID
		for _, m := range c.types.ListMembers(objTy) {
			if result, ok := c.probeCallProperty(m, prop, ctx, args); ok {
				successes = append(successes, result)
			}
		}
		if len(successes) > 0 {
			return c.types.NewUnion(successes)
		}
		c.reportNoProperty(ctx, prop)
		return c.types.Builtins().Any
	case types.KindUnion:
		var results []types.TypeID
		for _, m := range c.types.ListMembers(objTy) {
			result, ok := c.probeCallProperty(m, prop, ctx, args)
			if !ok {
				c.reportNoProperty(ctx, prop)
				return c.types.Builtins().Any
			}
			results = append(results, result)
		}
		return c.types.NewUnion(results)
	}

	if members, ok := c.structuralMembers(objTy); ok {
		if result, found := c.invokeNamedMember(members, prop, ctx, args); found {
			return result
		}
	}

	// The Object interface members are reachable from every receiver.
	if objTy != c.env.ObjectIface() {
		if result, ok := c.probeCallProperty(c.env.ObjectIface(), prop, ctx, args); ok {
			return result
		}
	}

	// Final fallback: plain property access followed by invocation; this
	// covers members typed as function-valued properties.
	if propTy, ok := c.propertyType(objTy, prop); ok {
		return c.resolveCallee(propTy, ctx, args)
	}

	c.reportNoProperty(ctx, prop)
	return c.types.Builtins().Any
}

// invokeNamedMember collects every same-named callable member (an overload
// set) and runs candidate selection over the union of their signatures.
func (c *Checker) invokeNamedMember(members []types.Member, prop source.StringID, ctx *callCtx, args []TypeOrSpread) (types.TypeID, bool) {
	var sigTys []types.TypeID
	for _, m := range members {
		if m.Kind == types.MemberCall || m.Kind == types.MemberCtor {
			continue
		}
		if m.Name == prop {
			sigTys = append(sigTys, m.Ty)
		}
	}
	if len(sigTys) == 0 {
		return types.NoTypeID, false
	}
	var candidates []CallCandidate
	for _, sig := range sigTys {
		candidates = append(candidates, c.extractCandidates(c.normalize(sig), ctx.kind)...)
	}
	if len(candidates) == 0 {
		// The property exists but nothing about it is invokable in this
		// form; the caller falls through to access+invoke which reports.
		return types.NoTypeID, false
	}
	return c.selectAndInvoke(candidates, ctx, args), true
}

// probeCallProperty runs callProperty with diagnostics captured instead of
// emitted; the result only counts when the probe produced no errors.
func (c *Checker) probeCallProperty(obj types.TypeID, prop source.StringID, ctx *callCtx, args []TypeOrSpread) (types.TypeID, bool) {
	saved := c.reporter
	bag := diag.NewBag(16)
	c.reporter = diag.BagReporter{Bag: bag}
	result := c.callProperty(obj, prop, ctx, args)
	c.reporter = saved
	if bag.HasErrors() {
		return types.NoTypeID, false
	}
	return result, true
}

func (c *Checker) reportNoProperty(ctx *callCtx, prop source.StringID) {
	name := c.lookupName(prop)
	if ctx.kind == ExtractNew {
		c.report(diag.SemaNoConstructableProperty, ctx.span, "no constructable property '%s'", name)
		return
	}
	c.report(diag.SemaNoCallableProperty, ctx.span, "no callable property '%s'", name)
}
