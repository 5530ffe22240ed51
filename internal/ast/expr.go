package ast

import (
	"quill/internal/source"
	"quill/internal/types"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprNumberLit
	ExprStringLit
	ExprBoolLit
	ExprArrow
	ExprFnLit
	ExprCall
	ExprNew
	ExprMember
	ExprParen
)

// Arg is one call argument, optionally spread.
type Arg struct {
	Expr   ExprID
	Spread bool
	Span   source.Span
}

// Param is one declared parameter of an inline arrow/function literal.
// Ann is NoTypeID when the author wrote no annotation; such parameters are
// implicitly any and may be patched by the checker's re-evaluation pass.
type Param struct {
	Name     source.StringID
	Ann      types.TypeID
	Optional bool
	Rest     bool
	Span     source.Span
}

// Expr is a single expression node. The payload fields used depend on Kind:
//
//	ExprIdent              Name
//	ExprNumberLit          Num
//	ExprStringLit          Str
//	ExprBoolLit            Bool
//	ExprArrow, ExprFnLit   Params, Body, RetAnn
//	ExprCall, ExprNew      Callee, Args, TypeArgs
//	ExprMember             Obj, Prop
//	ExprParen              Inner
type Expr struct {
	Kind ExprKind
	Span source.Span

	Name source.StringID
	Num  float64
	Str  source.StringID
	Bool bool

	Params []Param
	Body   ExprID
	RetAnn types.TypeID

	Callee   ExprID
	Args     []Arg
	TypeArgs []types.TypeID

	Obj  ExprID
	Prop source.StringID

	Inner ExprID
}

// Exprs owns the expression arena for one fixture file.
type Exprs struct {
	Arena *Arena[Expr]
}

func NewExprs(capHint uint) *Exprs {
	return &Exprs{
		Arena: NewArena[Expr](capHint),
	}
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) alloc(expr Expr) ExprID {
	return ExprID(e.Arena.Allocate(expr))
}

func (e *Exprs) NewIdent(name source.StringID, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprIdent, Span: span, Name: name})
}

func (e *Exprs) NewNumberLit(value float64, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprNumberLit, Span: span, Num: value})
}

func (e *Exprs) NewStringLit(value source.StringID, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprStringLit, Span: span, Str: value})
}

func (e *Exprs) NewBoolLit(value bool, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprBoolLit, Span: span, Bool: value})
}

func (e *Exprs) NewArrow(params []Param, body ExprID, retAnn types.TypeID, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprArrow, Span: span, Params: params, Body: body, RetAnn: retAnn})
}

func (e *Exprs) NewFnLit(params []Param, body ExprID, retAnn types.TypeID, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprFnLit, Span: span, Params: params, Body: body, RetAnn: retAnn})
}

func (e *Exprs) NewCall(callee ExprID, args []Arg, typeArgs []types.TypeID, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprCall, Span: span, Callee: callee, Args: args, TypeArgs: typeArgs})
}

func (e *Exprs) NewNew(callee ExprID, args []Arg, typeArgs []types.TypeID, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprNew, Span: span, Callee: callee, Args: args, TypeArgs: typeArgs})
}

func (e *Exprs) NewMember(obj ExprID, prop source.StringID, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprMember, Span: span, Obj: obj, Prop: prop})
}

func (e *Exprs) NewParen(inner ExprID, span source.Span) ExprID {
	return e.alloc(Expr{Kind: ExprParen, Span: span, Inner: inner})
}

// IsFnExpr reports whether the node is an inline arrow or function literal,
// unwrapping parentheses.
func (e *Exprs) IsFnExpr(id ExprID) bool {
	expr := e.Get(id)
	for expr != nil && expr.Kind == ExprParen {
		expr = e.Get(expr.Inner)
	}
	return expr != nil && (expr.Kind == ExprArrow || expr.Kind == ExprFnLit)
}

// Unparen resolves through ExprParen wrappers.
func (e *Exprs) Unparen(id ExprID) ExprID {
	expr := e.Get(id)
	for expr != nil && expr.Kind == ExprParen {
		id = expr.Inner
		expr = e.Get(id)
	}
	return id
}
