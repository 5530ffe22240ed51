package checker

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

// TypeOrSpread is one call argument after expression validation: its resolved
// type, an optional spread marker, and the source span for error reporting.
type TypeOrSpread struct {
	Ty     types.TypeID
	Spread bool
	Span   source.Span
	Expr   ast.ExprID // NoExprID for synthetic arguments
}

// spreadArgs expands spread arguments ahead of candidate classification.
// Tuples expand into one entry per element; a spread of any marks the call's
// arity as statically unknown; arrays stay as a single spread entry to be
// matched against rest parameters; any other iterable is reduced to its
// element type with unknown arity.
func (c *Checker) spreadArgs(args []TypeOrSpread) []TypeOrSpread {
	out := make([]TypeOrSpread, 0, len(args))
	for _, arg := range args {
		if !arg.Spread {
			out = append(out, arg)
			continue
		}
		ty := c.normalize(arg.Ty)
		tt, ok := c.types.Lookup(ty)
		if !ok {
			out = append(out, arg)
			continue
		}
		switch tt.Kind {
		case types.KindTuple:
			info, _ := c.types.TupleInfo(ty)
			for _, elem := range info.Elems {
				if elem.Rest {
					c.arityUnknown = true
					out = append(out, TypeOrSpread{
						Ty:     c.types.ElemOf(c.normalize(elem.Ty)),
						Spread: true,
						Span:   arg.Span,
						Expr:   arg.Expr,
					})
					continue
				}
				out = append(out, TypeOrSpread{Ty: elem.Ty, Span: arg.Span, Expr: arg.Expr})
			}
		case types.KindAny:
			c.arityUnknown = true
			out = append(out, TypeOrSpread{Ty: c.types.Builtins().Any, Span: arg.Span, Expr: arg.Expr})
		case types.KindArray:
			c.arityUnknown = true
			out = append(out, TypeOrSpread{Ty: ty, Spread: true, Span: arg.Span, Expr: arg.Expr})
		default:
			c.arityUnknown = true
			if elem, ok := c.iteratedElement(ty); ok {
				out = append(out, TypeOrSpread{
					Ty:     c.types.ArrayOf(elem),
					Spread: true,
					Span:   arg.Span,
					Expr:   arg.Expr,
				})
			} else {
				out = append(out, arg)
			}
		}
	}
	return out
}

// iteratedElement returns the element type produced by iterating a value of
// the given type.
func (c *Checker) iteratedElement(id types.TypeID) (types.TypeID, bool) {
	ty := c.normalize(id)
	tt, ok := c.types.Lookup(ty)
	if !ok {
		return types.NoTypeID, false
	}
	switch tt.Kind {
	case types.KindAny:
		return c.types.Builtins().Any, true
	case types.KindArray:
		return tt.Elem, true
	case types.KindTuple:
		info, _ := c.types.TupleInfo(ty)
		members := make([]types.TypeID, 0, len(info.Elems))
		for _, e := range info.Elems {
			elemTy := e.Ty
			if e.Rest {
				elemTy = c.types.ElemOf(c.normalize(e.Ty))
			}
			members = append(members, elemTy)
		}
		return c.types.NewUnion(members), true
	case types.KindString:
		return c.types.Builtins().String, true
	case types.KindLit:
		if info, ok := c.types.LitInfo(ty); ok && info.Kind == types.LitString {
			return c.types.Builtins().String, true
		}
	case types.KindInterface:
		if elem, ok := c.arrayElem[ty]; ok {
			return elem, true
		}
	}
	return types.NoTypeID, false
}

// arityBounds computes the [min, max] argument count accepted by the
// parameter list. max is -1 when unbounded.
func (c *Checker) arityBounds(params []types.FnParam) (minArgs, maxArgs int) {
	minArgs = 0
	maxArgs = 0
	unbounded := false
	lastRequired := -1
	for _, p := range params {
		if p.Pat == types.PatThis {
			continue
		}
		if p.Pat == types.PatRest {
			ty := c.normalize(p.Ty)
			if info, ok := c.types.TupleInfo(ty); ok && !info.HasOpenTail() {
				minArgs += info.RequiredLen()
				maxArgs += len(info.Elems)
				continue
			}
			unbounded = true
			continue
		}
		maxArgs++
		if p.Required {
			minArgs++
			lastRequired = maxArgs
		}
	}
	// A trailing required parameter whose type accepts void is effectively
	// optional.
	if lastRequired > 0 && lastRequired == maxArgs && minArgs > 0 {
		last := lastNonSyntheticParam(params)
		if last != nil && c.acceptsVoid(last.Ty) {
			minArgs--
		}
	}
	if unbounded {
		return minArgs, -1
	}
	return minArgs, maxArgs
}

func lastNonSyntheticParam(params []types.FnParam) *types.FnParam {
	for i := len(params) - 1; i >= 0; i-- {
		if params[i].Pat == types.PatThis || params[i].Pat == types.PatRest {
			continue
		}
		return &params[i]
	}
	return nil
}

func (c *Checker) acceptsVoid(id types.TypeID) bool {
	ty := c.normalize(id)
	tt, ok := c.types.Lookup(ty)
	if !ok {
		return false
	}
	switch tt.Kind {
	case types.KindVoid, types.KindAny, types.KindUnknown:
		return true
	case types.KindUnion:
		for _, m := range c.types.ListMembers(ty) {
			if c.acceptsVoid(m) {
				return true
			}
		}
	}
	return false
}

// argCountOK classifies the argument count without reporting. A surviving
// spread argument or a statically unknown arity skips the check entirely: the
// true count cannot be known beyond what preprocessing already resolved. IIFE
// callees tolerate missing trailing arguments but still reject extras.
func (c *Checker) argCountOK(params []types.FnParam, args []TypeOrSpread, iife bool) bool {
	if c.arityUnknown {
		return true
	}
	for _, a := range args {
		if a.Spread {
			return true
		}
	}
	minArgs, maxArgs := c.arityBounds(params)
	argc := len(args)
	if !iife && argc < minArgs {
		return false
	}
	if maxArgs >= 0 && argc > maxArgs {
		return false
	}
	return true
}

// validateArgCount reports arity violations non-fatally. The error span is
// narrowed to the excess arguments when the call has too many.
func (c *Checker) validateArgCount(params []types.FnParam, args []TypeOrSpread, iife bool, span source.Span) {
	if c.arityUnknown {
		return
	}
	for _, a := range args {
		if a.Spread {
			return
		}
	}
	minArgs, maxArgs := c.arityBounds(params)
	argc := len(args)

	if argc < minArgs {
		if iife {
			// Missing trailing arguments of an immediately invoked function
			// are bound to undefined, which is usually an oversight rather
			// than an error.
			c.reportWarning(diag.SemaExpectedArgs, span, "expected %s, but got %d", describeArity(minArgs, maxArgs), argc)
			return
		}
		if maxArgs < 0 {
			c.report(diag.SemaExpectedAtLeastArgs, span, "expected at least %d arguments, but got %d", minArgs, argc)
			return
		}
		c.report(diag.SemaExpectedArgs, span, "expected %s, but got %d", describeArity(minArgs, maxArgs), argc)
		return
	}
	if maxArgs >= 0 && argc > maxArgs {
		errSpan := span
		if maxArgs < len(args) {
			errSpan = args[maxArgs].Span
			for _, extra := range args[maxArgs+1:] {
				errSpan = errSpan.Cover(extra.Span)
			}
		}
		c.report(diag.SemaExpectedArgs, errSpan, "expected %s, but got %d", describeArity(minArgs, maxArgs), argc)
	}
}

// describeArity renders an argument-count expectation. A degenerate range
// collapses to the single count.
func describeArity(minArgs, maxArgs int) string {
	switch {
	case maxArgs < 0:
		return fmt.Sprintf("at least %d arguments", minArgs)
	case minArgs == maxArgs && minArgs == 1:
		return "1 argument"
	case minArgs == maxArgs:
		return fmt.Sprintf("%d arguments", minArgs)
	}
	return fmt.Sprintf("%d-%d arguments", minArgs, maxArgs)
}

// validateTypeArgCount checks an explicit type-argument list against the
// signature's declared type parameters.
func (c *Checker) validateTypeArgCount(typeParams []types.TypeID, typeArgs []types.TypeID, span source.Span) bool {
	if len(typeArgs) == 0 {
		return true
	}
	// Parameters with defaults are optional.
	required := 0
	for _, tp := range typeParams {
		info, ok := c.types.TypeParamInfo(tp)
		if !ok || info.Default == types.NoTypeID {
			required++
		}
	}
	if len(typeArgs) < required || len(typeArgs) > len(typeParams) {
		if required == len(typeParams) {
			c.report(diag.SemaTypeParamCountMismatch, span, "expected %d type arguments, but got %d", len(typeParams), len(typeArgs))
		} else {
			c.report(diag.SemaTypeParamCountMismatch, span, "expected %d-%d type arguments, but got %d", required, len(typeParams), len(typeArgs))
		}
		return false
	}
	return true
}
