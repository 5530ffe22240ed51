package checker

import (
	"testing"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

func TestGenericIdentityRoundTrip(t *testing.T) {
	k := newKit(t)
	b := k.b()
	tp := k.ti.RegisterTypeParam(k.intern("T"), types.NoTypeID, types.NoTypeID)
	k.declare("id", k.ti.RegisterFn([]types.TypeID{tp}, []types.FnParam{k.param("x", tp)}, tp))

	got := k.check(k.call(k.ident("id"), k.num(1)))
	k.wantClean()
	k.wantType(got, b.Number)

	got = k.check(k.call(k.ident("id"), k.strLit("s")))
	k.wantClean()
	k.wantType(got, b.String)
}

func TestGenericExplicitTypeArgs(t *testing.T) {
	k := newKit(t)
	b := k.b()
	tp := k.ti.RegisterTypeParam(k.intern("T"), types.NoTypeID, types.NoTypeID)
	k.declare("id", k.ti.RegisterFn([]types.TypeID{tp}, []types.FnParam{k.param("x", tp)}, tp))

	call := k.exprs.NewCall(k.ident("id"), []ast.Arg{{Expr: k.strLit("s")}}, []types.TypeID{b.String}, source.Span{})
	got := k.check(call)
	k.wantClean()
	k.wantType(got, b.String)

	// The explicit argument wins and the mismatching value is reported.
	bad := k.exprs.NewCall(k.ident("id"), []ast.Arg{{Expr: k.num(1)}}, []types.TypeID{b.String}, source.Span{})
	got = k.check(bad)
	k.wantCodes(diag.SemaWrongArgType)
	k.wantType(got, b.String)
}

func TestGenericTypeArgCountMismatch(t *testing.T) {
	k := newKit(t)
	b := k.b()
	tp := k.ti.RegisterTypeParam(k.intern("T"), types.NoTypeID, types.NoTypeID)
	k.declare("id", k.ti.RegisterFn([]types.TypeID{tp}, []types.FnParam{k.param("x", tp)}, tp))

	call := k.exprs.NewCall(k.ident("id"), []ast.Arg{{Expr: k.num(1)}}, []types.TypeID{b.String, b.Number}, source.Span{})
	k.check(call)
	k.wantCodes(diag.SemaTypeParamCountMismatch)
}

func TestUnionCalleeTypeArgOverflow(t *testing.T) {
	k := newKit(t)
	b := k.b()
	tp := k.ti.RegisterTypeParam(k.intern("T"), types.NoTypeID, types.NoTypeID)
	generic := k.ti.RegisterFn([]types.TypeID{tp}, []types.FnParam{k.param("x", tp)}, tp)
	plain := k.fn([]types.FnParam{k.param("x", b.Number)}, b.Number)
	k.declare("f", k.ti.NewUnion([]types.TypeID{generic, plain}))

	// No arm accepts two type arguments; the report names the widest arm's
	// count rather than a fabricated one.
	call := k.exprs.NewCall(k.ident("f"), []ast.Arg{{Expr: k.num(1)}}, []types.TypeID{b.String, b.Number}, source.Span{})
	k.check(call)
	k.wantCodes(diag.SemaTypeParamCountMismatch)
	if msg := k.bag.Items()[0].Message; msg != "expected 1 type arguments, but got 2" {
		t.Fatalf("message = %q", msg)
	}
}

func TestGenericDefaultFillsUnbound(t *testing.T) {
	k := newKit(t)
	b := k.b()
	tp := k.ti.RegisterTypeParam(k.intern("T"), types.NoTypeID, b.String)
	k.declare("make", k.ti.RegisterFn([]types.TypeID{tp}, nil, k.ti.ArrayOf(tp)))

	got := k.check(k.call(k.ident("make")))
	k.wantClean()
	k.wantType(got, k.ti.ArrayOf(b.String))
}

func TestGenericUnresolvedFromAnyArgument(t *testing.T) {
	k := newKit(t)
	b := k.b()
	tp := k.ti.RegisterTypeParam(k.intern("T"), types.NoTypeID, types.NoTypeID)
	k.declare("id", k.ti.RegisterFn([]types.TypeID{tp}, []types.FnParam{k.param("x", tp)}, tp))
	k.declare("loose", b.Any)

	got := k.check(k.call(k.ident("id"), k.ident("loose")))
	k.wantCodes(diag.SemaUnresolvedTypeParam)
	k.wantType(got, b.Unknown)
}

func TestGenericInfersFromArrayElement(t *testing.T) {
	k := newKit(t)
	b := k.b()
	tp := k.ti.RegisterTypeParam(k.intern("T"), types.NoTypeID, types.NoTypeID)
	k.declare("first", k.ti.RegisterFn(
		[]types.TypeID{tp},
		[]types.FnParam{k.param("xs", k.ti.ArrayOf(tp))},
		tp,
	))
	k.declare("nums", k.ti.ArrayOf(b.Number))

	got := k.check(k.call(k.ident("first"), k.ident("nums")))
	k.wantClean()
	k.wantType(got, b.Number)
}

func TestGenericUnionBindsParamArm(t *testing.T) {
	k := newKit(t)
	b := k.b()
	tp := k.ti.RegisterTypeParam(k.intern("T"), types.NoTypeID, types.NoTypeID)
	declared := k.ti.NewUnion([]types.TypeID{b.String, tp})
	k.declare("f", k.ti.RegisterFn([]types.TypeID{tp}, []types.FnParam{k.param("x", declared)}, tp))

	// A string argument satisfies the concrete arm and leaves T unbound, so
	// a number argument must be the one that binds it.
	got := k.check(k.call(k.ident("f"), k.num(5)))
	k.wantClean()
	k.wantType(got, b.Number)
}

func TestCallbackReEvaluation(t *testing.T) {
	k := newKit(t)
	b := k.b()
	a := k.ti.RegisterTypeParam(k.intern("A"), types.NoTypeID, types.NoTypeID)
	r := k.ti.RegisterTypeParam(k.intern("B"), types.NoTypeID, types.NoTypeID)
	cb := k.ti.RegisterFn(nil, []types.FnParam{k.param("a", a)}, r)
	k.declare("wrap", k.ti.RegisterFn(
		[]types.TypeID{a, r},
		[]types.FnParam{k.param("fn", cb), k.param("a", a)},
		r,
	))

	// wrap(x => x, 5): x is implicitly any on the first pass, gets patched to
	// number from the second argument, and the re-evaluated callback return
	// drives B to number.
	body := k.ident("x")
	arrow := k.exprs.NewArrow([]ast.Param{{Name: k.intern("x"), Ann: types.NoTypeID}}, body, types.NoTypeID, source.Span{})
	got := k.check(k.call(k.ident("wrap"), arrow, k.num(5)))
	k.wantClean()
	k.wantType(got, b.Number)
}

func TestCallbackReEvaluationRunsOnce(t *testing.T) {
	k := newKit(t)
	b := k.b()
	a := k.ti.RegisterTypeParam(k.intern("A"), types.NoTypeID, types.NoTypeID)
	cb := k.ti.RegisterFn(nil, []types.FnParam{k.param("a", a)}, b.Void)
	k.declare("each", k.ti.RegisterFn(
		[]types.TypeID{a},
		[]types.FnParam{k.param("fn", cb), k.param("seed", a)},
		b.Void,
	))

	body := k.ident("x")
	arrow := k.exprs.NewArrow([]ast.Param{{Name: k.intern("x"), Ann: types.NoTypeID}}, body, types.NoTypeID, source.Span{})
	call := k.call(k.ident("each"), arrow, k.strLit("seed"))
	got := k.check(call)
	k.wantClean()
	k.wantType(got, b.Void)

	if k.chk.paramPatch[paramPatchKey{fn: arrow, param: 0}] != b.String {
		t.Fatalf("expected callback parameter patched to string")
	}
	if len(k.chk.reevaluating) != 0 {
		t.Fatalf("re-evaluation guard should be cleared after the second pass")
	}
}

func TestContextualAnnotationFillsReturnParam(t *testing.T) {
	k := newKit(t)
	b := k.b()
	tp := k.ti.RegisterTypeParam(k.intern("T"), types.NoTypeID, types.NoTypeID)
	k.declare("empty", k.ti.RegisterFn([]types.TypeID{tp}, nil, k.ti.ArrayOf(tp)))

	call := k.call(k.ident("empty"))
	got := k.chk.CheckCall(call, k.ti.ArrayOf(b.Boolean))
	k.wantClean()
	k.wantType(got, k.ti.ArrayOf(b.Boolean))
}

func TestContextualAnnotationMismatchReported(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("greet", k.fn(nil, b.String))

	got := k.chk.CheckCall(k.call(k.ident("greet")), b.Number)
	k.wantCodes(diag.SemaExpectedTypeButGot)
	k.wantType(got, b.String)
}
