package checker

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

// callCtx carries the per-invocation facts every stage of resolution needs:
// which expression is being resolved, call vs construct form, the span for
// diagnostics, explicit type arguments, the contextual type annotation, and
// whether the callee is an immediately invoked function literal.
type callCtx struct {
	callID   ast.ExprID
	kind     ExtractKind
	span     source.Span
	typeArgs []types.TypeID
	typeAnn  types.TypeID
	iife     bool

	// classNew is set when the callee of a new-expression is a class
	// definition; overload failure then names the missing constructor.
	classNew types.TypeID

	// reeval marks the guarded second pass after callback parameter patching.
	reeval bool
}

// ResolveCall resolves one call or construct expression given the callee's
// already computed type. It always produces a type; failures surface as
// diagnostics with any as the recovery value.
func (c *Checker) ResolveCall(callee types.TypeID, kind ExtractKind, span source.Span, typeArgs []types.TypeID, typeAnn types.TypeID, args []TypeOrSpread, callID ast.ExprID, iife bool) types.TypeID {
	ctx := &callCtx{
		callID:   callID,
		kind:     kind,
		span:     span,
		typeArgs: typeArgs,
		typeAnn:  typeAnn,
		iife:     iife,
	}
	c.pushScope()
	defer c.popScope()
	c.arityUnknown = false
	return c.resolveCallee(callee, ctx, args)
}

// resolveCallee dispatches on the callee's shape. The fast paths (any, plain
// function misused with new, abstract class) report and recover before general
// candidate extraction runs.
func (c *Checker) resolveCallee(callee types.TypeID, ctx *callCtx, args []TypeOrSpread) types.TypeID {
	ty := c.normalize(callee)
	tt, ok := c.types.Lookup(ty)
	if !ok {
		c.reportNoSignature(ctx)
		return c.types.Builtins().Any
	}

	switch tt.Kind {
	case types.KindAny:
		if len(ctx.typeArgs) > 0 {
			c.report(diag.SemaAnyCalleeWithTypeArgs, ctx.span, "untyped function calls may not accept type arguments")
		}
		return c.types.Builtins().Any
	case types.KindFn:
		if ctx.kind == ExtractNew {
			// new-ing a plain function value: recoverable, the call-form
			// return type stands in for the instance.
			c.report(diag.SemaTargetLacksConstruct, ctx.span, "target '%s' lacks a construct signature", c.typeLabel(ty))
			info, _ := c.types.FnInfo(ty)
			return c.selectAndInvoke([]CallCandidate{{TypeParams: info.TypeParams, Params: info.Params, Ret: info.Ret}}, ctx, args)
		}
	case types.KindClassDef:
		if ctx.kind == ExtractNew {
			ctx.classNew = ty
			if info, ok := c.types.ClassInfo(ty); ok && info.Abstract {
				// Report but keep going: the instance type is still the most
				// useful recovery value for downstream checking.
				c.report(diag.SemaAbstractClassInstance, ctx.span, "cannot create an instance of abstract class '%s'", c.lookupName(info.Name))
			}
		}
	}

	candidates := c.extractCandidates(ty, ctx.kind)
	if len(candidates) == 0 {
		c.reportNoSignature(ctx)
		return c.types.Builtins().Any
	}

	// With explicit type arguments a union callee narrows to the constituents
	// that can accept that many before ranking; a call is not ambiguous just
	// because one arm of the union is non-generic.
	if len(ctx.typeArgs) > 0 && len(candidates) > 1 {
		filtered := candidates[:0:0]
		for _, cand := range candidates {
			if len(cand.TypeParams) >= len(ctx.typeArgs) {
				filtered = append(filtered, cand)
			}
		}
		if len(filtered) == 0 {
			most := 0
			for _, cand := range candidates {
				if n := len(cand.TypeParams); n > most {
					most = n
				}
			}
			c.report(diag.SemaTypeParamCountMismatch, ctx.span, "expected %d type arguments, but got %d", most, len(ctx.typeArgs))
			return c.types.Builtins().Any
		}
		candidates = filtered
	}

	return c.selectAndInvoke(candidates, ctx, args)
}

func (c *Checker) reportNoSignature(ctx *callCtx) {
	if ctx.kind == ExtractNew {
		c.report(diag.SemaNoNewSignature, ctx.span, "callee has no construct signature")
		return
	}
	c.report(diag.SemaNoCallSignature, ctx.span, "callee has no call signature")
}
