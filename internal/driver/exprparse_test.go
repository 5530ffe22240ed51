package driver

import (
	"testing"

	"quill/internal/ast"
	"quill/internal/types"
)

func (k *parseKit) parseExpr(exprs *ast.Exprs, src string) ast.ExprID {
	k.t.Helper()
	file := k.fs.AddVirtual("test", []byte(src))
	id, _, err := parseExprString(src, file, exprs, k.ti, k.strs)
	if err != nil {
		k.t.Fatalf("parse %q: %s", src, err.msg)
	}
	return id
}

func TestExprParseCallChain(t *testing.T) {
	k := newParseKit(t)
	exprs := ast.NewExprs(16)
	id := k.parseExpr(exprs, "obj.items.push(1, 'two', flag)")

	call := exprs.Get(id)
	if call.Kind != ast.ExprCall || len(call.Args) != 3 {
		t.Fatalf("expected a 3-argument call, got kind %d with %d args", call.Kind, len(call.Args))
	}
	callee := exprs.Get(call.Callee)
	if callee.Kind != ast.ExprMember || callee.Prop != k.strs.Intern("push") {
		t.Fatalf("callee should be the .push member access")
	}
	inner := exprs.Get(callee.Obj)
	if inner.Kind != ast.ExprMember || inner.Prop != k.strs.Intern("items") {
		t.Fatalf("receiver should be obj.items")
	}
	if exprs.Get(call.Args[1].Expr).Kind != ast.ExprStringLit {
		t.Fatalf("second argument should be a string literal")
	}
}

func TestExprParseTypeArguments(t *testing.T) {
	k := newParseKit(t)
	exprs := ast.NewExprs(8)
	id := k.parseExpr(exprs, "identity<number>(42)")

	call := exprs.Get(id)
	if len(call.TypeArgs) != 1 || call.TypeArgs[0] != k.ti.Builtins().Number {
		t.Fatalf("expected one explicit number type argument, got %v", call.TypeArgs)
	}
}

func TestExprParseNew(t *testing.T) {
	k := newParseKit(t)
	exprs := ast.NewExprs(8)
	id := k.parseExpr(exprs, "new Box<string>('x')")

	n := exprs.Get(id)
	if n.Kind != ast.ExprNew || len(n.Args) != 1 || len(n.TypeArgs) != 1 {
		t.Fatalf("expected new Box<string>('x'), got kind %d", n.Kind)
	}
	if exprs.Get(n.Callee).Kind != ast.ExprIdent {
		t.Fatalf("new callee should be the bare class name")
	}
}

func TestExprParseSpreadArgs(t *testing.T) {
	k := newParseKit(t)
	exprs := ast.NewExprs(8)
	id := k.parseExpr(exprs, "f(1, ...rest)")

	call := exprs.Get(id)
	if call.Args[0].Spread || !call.Args[1].Spread {
		t.Fatalf("only the second argument should be spread")
	}
}

func TestExprParseArrow(t *testing.T) {
	k := newParseKit(t)
	exprs := ast.NewExprs(8)
	id := k.parseExpr(exprs, "(x: number, y) => x")

	arrow := exprs.Get(id)
	if arrow.Kind != ast.ExprArrow || len(arrow.Params) != 2 {
		t.Fatalf("expected a two-parameter arrow")
	}
	if arrow.Params[0].Ann != k.ti.Builtins().Number {
		t.Fatalf("x should carry its number annotation")
	}
	if arrow.Params[1].Ann != types.NoTypeID {
		t.Fatalf("y should be implicitly typed")
	}
	if exprs.Get(arrow.Body).Kind != ast.ExprIdent {
		t.Fatalf("arrow body should be the x identifier")
	}
}

func TestExprParseBareParamArrow(t *testing.T) {
	k := newParseKit(t)
	exprs := ast.NewExprs(8)
	id := k.parseExpr(exprs, "map(xs, x => x)")

	call := exprs.Get(id)
	if len(call.Args) != 2 {
		t.Fatalf("expected two arguments")
	}
	arrow := exprs.Get(call.Args[1].Expr)
	if arrow.Kind != ast.ExprArrow || len(arrow.Params) != 1 {
		t.Fatalf("second argument should be a single-parameter arrow")
	}
}

func TestExprParseArrowReturnAnnotation(t *testing.T) {
	k := newParseKit(t)
	exprs := ast.NewExprs(8)
	id := k.parseExpr(exprs, "(x: number): string => 's'")

	arrow := exprs.Get(id)
	if arrow.RetAnn != k.ti.Builtins().String {
		t.Fatalf("arrow should carry its string return annotation")
	}
}

func TestExprParseIIFE(t *testing.T) {
	k := newParseKit(t)
	exprs := ast.NewExprs(8)
	id := k.parseExpr(exprs, "((x: number) => x)(1)")

	call := exprs.Get(id)
	if call.Kind != ast.ExprCall {
		t.Fatalf("expected a call")
	}
	if !exprs.IsFnExpr(call.Callee) {
		t.Fatalf("callee should be a parenthesized function literal")
	}
}

func TestExprParseErrors(t *testing.T) {
	k := newParseKit(t)
	for _, src := range []string{
		"f(1",
		"f(,)",
		"obj.",
		"new",
		"(x: number =>",
		"f(1) 2",
		"",
	} {
		exprs := ast.NewExprs(4)
		file := k.fs.AddVirtual("test", []byte(src))
		if _, _, err := parseExprString(src, file, exprs, k.ti, k.strs); err == nil {
			t.Fatalf("%q: expected a parse error", src)
		}
	}
}
