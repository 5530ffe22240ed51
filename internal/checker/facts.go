package checker

import (
	"quill/internal/ast"
	"quill/internal/types"
)

// storeCallFact records the narrowed type for an identifier argument when the
// resolved return type is a type predicate. Only plain identifier arguments
// can carry a fact; anything else has no binding to narrow.
func (c *Checker) storeCallFact(cand *CallCandidate, predTy types.TypeID, rawArgs []TypeOrSpread) {
	pred, ok := c.types.PredInfo(predTy)
	if !ok {
		return
	}
	params := valueParams(cand.Params)
	idx := -1
	for i, p := range params {
		if p.Name == pred.Param {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(rawArgs) {
		return
	}
	arg := rawArgs[idx]
	if arg.Expr == ast.NoExprID {
		return
	}
	target := c.exprs.Get(c.exprs.Unparen(arg.Expr))
	if target == nil || target.Kind != ast.ExprIdent {
		return
	}
	narrowed := c.narrowWithPredicate(arg.Ty, pred.Asserted)
	c.recordFact(target.Name, narrowed)
}

// narrowWithPredicate computes the type an identifier takes on once a
// predicate over it holds. Narrowing is idempotent: applying the same
// predicate to an already narrowed type leaves it unchanged.
func (c *Checker) narrowWithPredicate(orig, asserted types.TypeID) types.TypeID {
	asserted = c.normalize(asserted)
	// A class used as the asserted type means its instances.
	if c.types.Kind(asserted) == types.KindClassDef {
		asserted = c.defaultInstance(asserted)
	}
	orig = c.normalize(orig)
	tt, ok := c.types.Lookup(orig)
	if !ok {
		return asserted
	}

	switch tt.Kind {
	case types.KindAny, types.KindUnknown:
		return asserted
	case types.KindInterface:
		// Two interface shapes intersect rather than replace: the guard adds
		// information without discarding what was already known.
		if c.types.Kind(asserted) == types.KindInterface && orig != asserted {
			if c.assignableOK(orig, asserted) {
				return asserted
			}
			return c.types.NewIntersection([]types.TypeID{orig, asserted})
		}
	case types.KindUnion:
		members := c.types.ListMembers(orig)
		out := make([]types.TypeID, 0, len(members))
		for _, m := range members {
			if c.assignableOK(asserted, m) {
				// Downcast arm: the member is already within the asserted type.
				out = append(out, m)
				continue
			}
			if c.assignableOK(m, asserted) {
				// Upcast arm: the asserted type refines this member.
				out = append(out, asserted)
			}
		}
		if len(out) == 0 {
			return c.types.Builtins().Never
		}
		return c.types.NewUnion(out)
	}

	if c.assignableOK(asserted, orig) {
		// Already at least as narrow as the guard proves.
		return orig
	}
	return asserted
}
