package checker

import (
	"testing"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

type kit struct {
	t     *testing.T
	strs  *source.Interner
	ti    *types.Interner
	exprs *ast.Exprs
	env   *Env
	bag   *diag.Bag
	chk   *Checker
}

func newKit(t *testing.T) *kit {
	t.Helper()
	strs := source.NewInterner()
	ti := types.NewInterner()
	env := NewEnv(ti, strs)
	exprs := ast.NewExprs(32)
	bag := diag.NewBag(64)
	return &kit{
		t:     t,
		strs:  strs,
		ti:    ti,
		exprs: exprs,
		env:   env,
		bag:   bag,
		chk:   New(exprs, ti, strs, env, diag.BagReporter{Bag: bag}),
	}
}

func (k *kit) b() types.Builtins { return k.ti.Builtins() }

func (k *kit) intern(s string) source.StringID { return k.strs.Intern(s) }

func (k *kit) param(name string, ty types.TypeID) types.FnParam {
	return types.FnParam{Pat: types.PatIdent, Name: k.intern(name), Ty: ty, Required: true}
}

func (k *kit) optParam(name string, ty types.TypeID) types.FnParam {
	return types.FnParam{Pat: types.PatIdent, Name: k.intern(name), Ty: ty}
}

func (k *kit) restParam(name string, ty types.TypeID) types.FnParam {
	return types.FnParam{Pat: types.PatRest, Name: k.intern(name), Ty: ty}
}

func (k *kit) fn(params []types.FnParam, ret types.TypeID) types.TypeID {
	return k.ti.RegisterFn(nil, params, ret)
}

func (k *kit) declare(name string, ty types.TypeID) {
	k.env.DeclareValue(k.intern(name), ty)
}

func (k *kit) ident(name string) ast.ExprID {
	return k.exprs.NewIdent(k.intern(name), source.Span{})
}

func (k *kit) num(v float64) ast.ExprID {
	return k.exprs.NewNumberLit(v, source.Span{})
}

func (k *kit) strLit(v string) ast.ExprID {
	return k.exprs.NewStringLit(k.intern(v), source.Span{})
}

func (k *kit) boolLit(v bool) ast.ExprID {
	return k.exprs.NewBoolLit(v, source.Span{})
}

func (k *kit) call(callee ast.ExprID, args ...ast.ExprID) ast.ExprID {
	wrapped := make([]ast.Arg, len(args))
	for i, a := range args {
		wrapped[i] = ast.Arg{Expr: a, Span: source.Span{}}
	}
	return k.exprs.NewCall(callee, wrapped, nil, source.Span{})
}

func (k *kit) check(id ast.ExprID) types.TypeID {
	return k.chk.CheckCall(id, types.NoTypeID)
}

func (k *kit) codes() []diag.Code {
	out := make([]diag.Code, 0, k.bag.Len())
	for _, d := range k.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func (k *kit) wantClean() {
	k.t.Helper()
	if k.bag.Len() != 0 {
		k.t.Fatalf("expected no diagnostics, got %v", k.codes())
	}
}

func (k *kit) wantCodes(want ...diag.Code) {
	k.t.Helper()
	got := k.codes()
	if len(got) != len(want) {
		k.t.Fatalf("expected codes %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			k.t.Fatalf("expected codes %v, got %v", want, got)
		}
	}
}

func (k *kit) wantType(got, want types.TypeID) {
	k.t.Helper()
	if got != want {
		k.t.Fatalf("expected type %s, got %s", k.ti.Format(want, k.strs), k.ti.Format(got, k.strs))
	}
}

func TestCallExactArity(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", k.fn([]types.FnParam{k.param("a", b.Number), k.param("b", b.String)}, b.Boolean))

	got := k.check(k.call(k.ident("f"), k.num(1), k.strLit("x")))
	k.wantClean()
	k.wantType(got, b.Boolean)
}

func TestCallTooFewArgs(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", k.fn([]types.FnParam{k.param("a", b.Number), k.param("b", b.String)}, b.Boolean))

	k.check(k.call(k.ident("f"), k.num(1)))
	k.wantCodes(diag.SemaExpectedArgs)
}

func TestCallTooManyArgs(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", k.fn([]types.FnParam{k.param("a", b.Number)}, b.Void))

	k.check(k.call(k.ident("f"), k.num(1), k.num(2), k.num(3)))
	k.wantCodes(diag.SemaExpectedArgs)
}

func TestOptionalParamArity(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", k.fn([]types.FnParam{k.param("a", b.Number), k.optParam("b", b.String)}, b.Void))

	k.check(k.call(k.ident("f"), k.num(1)))
	k.wantClean()
}

func TestUnboundedRestArity(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", k.fn([]types.FnParam{k.restParam("xs", k.ti.ArrayOf(b.Number))}, b.Void))

	k.check(k.call(k.ident("f")))
	k.wantClean()
	k.check(k.call(k.ident("f"), k.num(1), k.num(2), k.num(3)))
	k.wantClean()

	k.check(k.call(k.ident("f"), k.strLit("nope")))
	k.wantCodes(diag.SemaWrongArgType)
}

func TestTupleRestDestructuring(t *testing.T) {
	k := newKit(t)
	b := k.b()
	pair := k.ti.RegisterTuple([]types.TupleElem{{Ty: b.Number}, {Ty: b.String}})
	k.declare("f", k.fn([]types.FnParam{k.restParam("args", pair)}, b.Boolean))

	got := k.check(k.call(k.ident("f"), k.num(1), k.strLit("x")))
	k.wantClean()
	k.wantType(got, b.Boolean)

	k.check(k.call(k.ident("f"), k.num(1)))
	k.wantCodes(diag.SemaExpectedArgs)
}

func TestTrailingVoidParamIsOptional(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", k.fn([]types.FnParam{k.param("a", b.Number), k.param("cb", b.Void)}, b.Void))

	k.check(k.call(k.ident("f"), k.num(1)))
	k.wantClean()
}

func TestWrongArgType(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", k.fn([]types.FnParam{k.param("a", b.Number)}, b.Void))

	k.check(k.call(k.ident("f"), k.strLit("oops")))
	k.wantCodes(diag.SemaWrongArgType)
}

func TestOverloadSelectsMatchingSignature(t *testing.T) {
	k := newKit(t)
	b := k.b()
	numFn := k.fn([]types.FnParam{k.param("x", b.Number)}, b.Number)
	strFn := k.fn([]types.FnParam{k.param("x", b.String)}, b.String)
	k.declare("f", k.ti.NewIntersection([]types.TypeID{numFn, strFn}))

	got := k.check(k.call(k.ident("f"), k.strLit("s")))
	k.wantClean()
	k.wantType(got, b.String)

	got = k.check(k.call(k.ident("f"), k.num(3)))
	k.wantClean()
	k.wantType(got, b.Number)
}

func TestOverloadAllFailIsAmbiguous(t *testing.T) {
	k := newKit(t)
	b := k.b()
	numFn := k.fn([]types.FnParam{k.param("x", b.Number)}, b.Number)
	strFn := k.fn([]types.FnParam{k.param("x", b.String)}, b.String)
	k.declare("f", k.ti.NewIntersection([]types.TypeID{numFn, strFn}))

	got := k.check(k.call(k.ident("f"), k.boolLit(true)))
	k.wantCodes(diag.SemaNoMatchingOverload)
	k.wantType(got, b.Any)
}

func TestOverloadPrefersExactOverMayBe(t *testing.T) {
	k := newKit(t)
	b := k.b()
	numFn := k.fn([]types.FnParam{k.param("x", b.Number)}, b.Number)
	strFn := k.fn([]types.FnParam{k.param("x", b.String)}, b.String)
	k.declare("f", k.ti.NewIntersection([]types.TypeID{numFn, strFn}))
	k.declare("loose", b.Any)

	// An any argument matches every overload loosely; declaration order
	// breaks the tie without an ambiguity report.
	got := k.check(k.call(k.ident("f"), k.ident("loose")))
	k.wantClean()
	k.wantType(got, b.Number)
}

func TestNoCallSignature(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("n", b.Number)

	got := k.check(k.call(k.ident("n"), k.num(1)))
	k.wantCodes(diag.SemaNoCallSignature)
	k.wantType(got, b.Any)
}

func TestUnresolvedCalleeName(t *testing.T) {
	k := newKit(t)
	b := k.b()

	got := k.check(k.call(k.ident("missing")))
	k.wantType(got, b.Any)
	codes := k.codes()
	if len(codes) == 0 || codes[0] != diag.SemaUnresolvedName {
		t.Fatalf("expected unresolved name first, got %v", codes)
	}
}

func TestAnyCalleePropagates(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", b.Any)

	got := k.check(k.call(k.ident("f"), k.num(1), k.strLit("x")))
	k.wantClean()
	k.wantType(got, b.Any)
}

func TestAnyCalleeRejectsTypeArgs(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", b.Any)

	call := k.exprs.NewCall(k.ident("f"), nil, []types.TypeID{b.String}, source.Span{})
	got := k.check(call)
	k.wantCodes(diag.SemaAnyCalleeWithTypeArgs)
	k.wantType(got, b.Any)
}

func TestIIFEMissingArgsWarns(t *testing.T) {
	k := newKit(t)
	b := k.b()
	body := k.num(1)
	arrow := k.exprs.NewArrow([]ast.Param{
		{Name: k.intern("a"), Ann: b.Number},
		{Name: k.intern("b"), Ann: b.String},
	}, body, b.Number, source.Span{})

	// Missing trailing arguments don't fail resolution, but they do warn.
	got := k.check(k.call(arrow))
	k.wantCodes(diag.SemaExpectedArgs)
	if d := k.bag.Items()[0]; d.Severity != diag.SevWarning {
		t.Fatalf("expected a warning, got severity %v", d.Severity)
	}
	k.wantType(got, b.Number)
}

func TestIIFERejectsExtraArgs(t *testing.T) {
	k := newKit(t)
	b := k.b()
	body := k.num(1)
	arrow := k.exprs.NewArrow([]ast.Param{
		{Name: k.intern("a"), Ann: b.Number},
	}, body, b.Number, source.Span{})

	k.check(k.call(arrow, k.num(1), k.strLit("x"), k.num(2)))
	k.wantCodes(diag.SemaExpectedArgs)
	if d := k.bag.Items()[0]; d.Severity != diag.SevError {
		t.Fatalf("expected an error, got severity %v", d.Severity)
	}
}

func TestArityMessageExactCount(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("f", k.fn([]types.FnParam{k.param("a", b.Number), k.param("b", b.String)}, b.Void))

	k.check(k.call(k.ident("f"), k.num(1)))
	k.wantCodes(diag.SemaExpectedArgs)
	if msg := k.bag.Items()[0].Message; msg != "expected 2 arguments, but got 1" {
		t.Fatalf("message = %q", msg)
	}
}

func TestArityMessageSingularAndRange(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("g", k.fn([]types.FnParam{k.param("a", b.Number)}, b.Void))

	k.check(k.call(k.ident("g")))
	k.wantCodes(diag.SemaExpectedArgs)
	if msg := k.bag.Items()[0].Message; msg != "expected 1 argument, but got 0" {
		t.Fatalf("message = %q", msg)
	}

	k2 := newKit(t)
	b2 := k2.b()
	k2.declare("h", k2.fn([]types.FnParam{k2.param("a", b2.Number), k2.optParam("b", b2.String)}, b2.Void))
	k2.check(k2.call(k2.ident("h")))
	k2.wantCodes(diag.SemaExpectedArgs)
	if msg := k2.bag.Items()[0].Message; msg != "expected 1-2 arguments, but got 0" {
		t.Fatalf("message = %q", msg)
	}
}
