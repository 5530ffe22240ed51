package checker

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

const maxExprDepth = 64

// CheckCall types a top-level call or construct expression from the fixture,
// with an optional contextual type annotation that feeds generic inference.
// A result the annotation cannot accept is reported after resolution, the way
// an initializer mismatch would be at a declaration site.
func (c *Checker) CheckCall(id ast.ExprID, typeAnn types.TypeID) types.TypeID {
	if typeAnn != types.NoTypeID {
		if c.callAnn == nil {
			c.callAnn = make(map[ast.ExprID]types.TypeID, 4)
		}
		c.callAnn[id] = typeAnn
	}
	got := c.typeExpr(id)
	if typeAnn != types.NoTypeID && !c.assignableOK(typeAnn, got) {
		span := source.Span{}
		if expr := c.exprs.Get(id); expr != nil {
			span = expr.Span
		}
		c.report(diag.SemaExpectedTypeButGot, span,
			"expected a value of type '%s', but the call produced '%s'", c.typeLabel(typeAnn), c.typeLabel(got))
	}
	return got
}

// typeExpr computes the type of an expression node. Errors are reported and
// recovered with any so one bad subexpression never aborts the fixture.
func (c *Checker) typeExpr(id ast.ExprID) types.TypeID {
	any := c.types.Builtins().Any
	if id == ast.NoExprID {
		return any
	}
	if c.exprDepth > maxExprDepth {
		return any
	}
	c.exprDepth++
	defer func() { c.exprDepth-- }()

	expr := c.exprs.Get(id)
	if expr == nil {
		return any
	}
	switch expr.Kind {
	case ast.ExprIdent:
		if ty, ok := c.lookupValue(expr.Name); ok {
			return ty
		}
		c.report(diag.SemaUnresolvedName, expr.Span, "cannot find name '%s'", c.lookupName(expr.Name))
		return any
	case ast.ExprNumberLit:
		return c.types.NumberLit(expr.Num, false)
	case ast.ExprStringLit:
		return c.types.StringLit(expr.Str, false)
	case ast.ExprBoolLit:
		return c.types.BoolLit(expr.Bool, false)
	case ast.ExprParen:
		return c.typeExpr(expr.Inner)
	case ast.ExprArrow, ast.ExprFnLit:
		return c.typeFnLit(id, expr)
	case ast.ExprMember:
		objTy := c.typeExpr(expr.Obj)
		if ty, ok := c.propertyType(objTy, expr.Prop); ok {
			return ty
		}
		c.report(diag.SemaNoSuchProperty, expr.Span,
			"property '%s' does not exist on type '%s'", c.lookupName(expr.Prop), c.typeLabel(objTy))
		return any
	case ast.ExprCall, ast.ExprNew:
		return c.resolveCallExpr(id)
	}
	return any
}

// typeFnLit types an inline arrow or function literal. Unannotated parameters
// are implicitly any unless the surrounding call's inference patched them;
// the body is typed with the parameters in scope.
func (c *Checker) typeFnLit(id ast.ExprID, expr *ast.Expr) types.TypeID {
	params := make([]types.FnParam, 0, len(expr.Params))
	c.pushScope()
	defer c.popScope()
	for j, p := range expr.Params {
		ty := p.Ann
		if ty == types.NoTypeID {
			if patched, ok := c.paramPatch[paramPatchKey{fn: id, param: j}]; ok {
				ty = patched
			} else {
				ty = c.types.Builtins().Any
			}
		}
		pat := types.PatIdent
		if p.Rest {
			pat = types.PatRest
		}
		params = append(params, types.FnParam{
			Pat:      pat,
			Name:     p.Name,
			Ty:       ty,
			Required: !p.Optional && !p.Rest,
		})
		c.bindValue(p.Name, ty)
	}
	ret := expr.RetAnn
	if ret == types.NoTypeID {
		ret = c.types.WidenLit(c.typeExpr(expr.Body))
	}
	return c.types.RegisterFn(nil, params, ret)
}

// resolveCallExpr types a call or construct expression: the arguments are
// typed, the callee is dispatched either through the property chain (for
// method calls) or through plain callee resolution, and the per-call scratch
// state is scoped so sibling calls stay independent.
func (c *Checker) resolveCallExpr(id ast.ExprID) types.TypeID {
	expr := c.exprs.Get(id)
	kind := ExtractCall
	if expr.Kind == ast.ExprNew {
		kind = ExtractNew
	}

	args := make([]TypeOrSpread, 0, len(expr.Args))
	for _, a := range expr.Args {
		args = append(args, TypeOrSpread{
			Ty:     c.typeExpr(a.Expr),
			Spread: a.Spread,
			Span:   a.Span,
			Expr:   a.Expr,
		})
	}

	ctx := &callCtx{
		callID:   id,
		kind:     kind,
		span:     expr.Span,
		typeArgs: expr.TypeArgs,
		typeAnn:  c.callAnn[id],
		iife:     kind == ExtractCall && c.exprs.IsFnExpr(expr.Callee),
		reeval:   c.reevaluating[id],
	}

	c.pushScope()
	defer c.popScope()
	c.arityUnknown = false

	callee := c.exprs.Unparen(expr.Callee)
	calleeExpr := c.exprs.Get(callee)
	if calleeExpr != nil && calleeExpr.Kind == ast.ExprMember {
		objTy := c.typeExpr(calleeExpr.Obj)
		return c.callProperty(objTy, calleeExpr.Prop, ctx, args)
	}
	return c.resolveCallee(c.typeExpr(callee), ctx, args)
}
