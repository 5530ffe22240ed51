package checker

import (
	"testing"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

func (k *kit) methodCall(obj ast.ExprID, name string, args ...ast.ExprID) ast.ExprID {
	member := k.exprs.NewMember(obj, k.intern(name), source.Span{})
	return k.call(member, args...)
}

func TestToStringIsAlwaysString(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("n", b.Number)

	got := k.check(k.methodCall(k.ident("n"), "toString"))
	k.wantClean()
	k.wantType(got, b.String)
}

func TestBoxedNumberMethod(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("n", b.Number)

	got := k.check(k.methodCall(k.ident("n"), "toFixed", k.num(2)))
	k.wantClean()
	k.wantType(got, b.String)
}

func TestNumberLiteralReceiverBoxes(t *testing.T) {
	k := newKit(t)
	b := k.b()

	got := k.check(k.methodCall(k.num(3.5), "toFixed"))
	k.wantClean()
	k.wantType(got, b.String)
}

func TestArrayMethodInstantiatesElement(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("xs", k.ti.ArrayOf(b.Number))

	got := k.check(k.methodCall(k.ident("xs"), "includes", k.num(3)))
	k.wantClean()
	k.wantType(got, b.Boolean)

	k.check(k.methodCall(k.ident("xs"), "includes", k.strLit("s")))
	k.wantCodes(diag.SemaWrongArgType)
}

func TestArrayMapInfersCallback(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("xs", k.ti.ArrayOf(b.Number))

	body := k.ident("v")
	arrow := k.exprs.NewArrow([]ast.Param{{Name: k.intern("v"), Ann: types.NoTypeID}}, body, types.NoTypeID, source.Span{})
	got := k.check(k.methodCall(k.ident("xs"), "map", arrow))
	k.wantClean()
	k.wantType(got, k.ti.ArrayOf(b.Number))
}

func TestObjectFallbackMember(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("n", b.Number)

	got := k.check(k.methodCall(k.ident("n"), "hasOwnProperty", k.strLit("k")))
	k.wantClean()
	k.wantType(got, b.Boolean)
}

func TestNoCallableProperty(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("n", b.Number)

	got := k.check(k.methodCall(k.ident("n"), "frobnicate"))
	k.wantCodes(diag.SemaNoCallableProperty)
	k.wantType(got, b.Any)
}

func TestAnyReceiverPropagates(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("x", b.Any)

	got := k.check(k.methodCall(k.ident("x"), "whatever", k.num(1)))
	k.wantClean()
	k.wantType(got, b.Any)
}

func TestUnionReceiverRequiresAllArms(t *testing.T) {
	k := newKit(t)
	b := k.b()
	k.declare("v", k.ti.NewUnion([]types.TypeID{b.String, b.Number}))

	// charAt exists only on the string arm.
	got := k.check(k.methodCall(k.ident("v"), "charAt", k.num(0)))
	k.wantCodes(diag.SemaNoCallableProperty)
	k.wantType(got, b.Any)
}

func TestUnionReceiverCommonMethod(t *testing.T) {
	k := newKit(t)
	b := k.b()

	iface := func(name, method string, ret types.TypeID) types.TypeID {
		id := k.ti.RegisterInterface(k.intern(name), nil)
		k.ti.SetInterfaceBody(id, nil, []types.Member{
			{Kind: types.MemberMethod, Name: k.intern(method), Ty: k.fn(nil, ret)},
		})
		return id
	}
	a := iface("A", "go", b.Number)
	c := iface("B", "go", b.String)
	k.declare("v", k.ti.NewUnion([]types.TypeID{a, c}))

	got := k.check(k.methodCall(k.ident("v"), "go"))
	k.wantClean()
	k.wantType(got, k.ti.NewUnion([]types.TypeID{b.Number, b.String}))
}

func TestIntersectionReceiverUnionsSuccesses(t *testing.T) {
	k := newKit(t)
	b := k.b()

	left := k.ti.RegisterInterface(k.intern("Left"), nil)
	k.ti.SetInterfaceBody(left, nil, []types.Member{
		{Kind: types.MemberMethod, Name: k.intern("only"), Ty: k.fn(nil, b.Number)},
	})
	right := k.ti.RegisterInterface(k.intern("Right"), nil)
	k.ti.SetInterfaceBody(right, nil, []types.Member{
		{Kind: types.MemberMethod, Name: k.intern("other"), Ty: k.fn(nil, b.String)},
	})
	k.declare("v", k.ti.NewIntersection([]types.TypeID{left, right}))

	got := k.check(k.methodCall(k.ident("v"), "only"))
	k.wantClean()
	k.wantType(got, b.Number)
}

func TestThisReturnResolvesToReceiver(t *testing.T) {
	k := newKit(t)
	b := k.b()

	counter := k.ti.RegisterInterface(k.intern("Counter"), nil)
	k.ti.SetInterfaceBody(counter, nil, []types.Member{
		{Kind: types.MemberMethod, Name: k.intern("next"), Ty: k.fn(nil, b.This)},
	})
	k.declare("c", counter)

	got := k.check(k.methodCall(k.ident("c"), "next"))
	k.wantClean()
	k.wantType(got, counter)

	// Chaining works because each invocation rebinds the receiver.
	chained := k.check(k.methodCall(k.methodCall(k.ident("c"), "next"), "next"))
	k.wantClean()
	k.wantType(chained, counter)
}

func TestThisReturnThroughExtends(t *testing.T) {
	k := newKit(t)
	b := k.b()

	base := k.ti.RegisterInterface(k.intern("Chainable"), nil)
	k.ti.SetInterfaceBody(base, nil, []types.Member{
		{Kind: types.MemberMethod, Name: k.intern("tap"), Ty: k.fn(nil, b.This)},
	})
	derived := k.ti.RegisterInterface(k.intern("Stream"), nil)
	k.ti.SetInterfaceBody(derived, []types.TypeID{base}, []types.Member{
		{Kind: types.MemberMethod, Name: k.intern("size"), Ty: k.fn(nil, b.Number)},
	})
	k.declare("s", derived)

	// An inherited this-typed method resolves to the derived receiver.
	got := k.check(k.methodCall(k.ident("s"), "tap"))
	k.wantClean()
	k.wantType(got, derived)
}

func TestMethodOverloadSetOnInterface(t *testing.T) {
	k := newKit(t)
	b := k.b()

	iface := k.ti.RegisterInterface(k.intern("Conv"), nil)
	k.ti.SetInterfaceBody(iface, nil, []types.Member{
		{Kind: types.MemberMethod, Name: k.intern("parse"), Ty: k.fn([]types.FnParam{k.param("x", b.Number)}, b.Number)},
		{Kind: types.MemberMethod, Name: k.intern("parse"), Ty: k.fn([]types.FnParam{k.param("x", b.String)}, b.String)},
	})
	k.declare("c", iface)

	got := k.check(k.methodCall(k.ident("c"), "parse", k.strLit("1")))
	k.wantClean()
	k.wantType(got, b.String)
}

func TestFunctionValuedPropertyInvokes(t *testing.T) {
	k := newKit(t)
	b := k.b()

	iface := k.ti.RegisterInterface(k.intern("Holder"), nil)
	k.ti.SetInterfaceBody(iface, nil, []types.Member{
		{Kind: types.MemberProperty, Name: k.intern("cb"), Ty: k.fn([]types.FnParam{k.param("n", b.Number)}, b.Boolean)},
	})
	k.declare("h", iface)

	got := k.check(k.methodCall(k.ident("h"), "cb", k.num(1)))
	k.wantClean()
	k.wantType(got, b.Boolean)
}

func TestInterfaceExtendsShadowing(t *testing.T) {
	k := newKit(t)
	b := k.b()

	base := k.ti.RegisterInterface(k.intern("Base"), nil)
	k.ti.SetInterfaceBody(base, nil, []types.Member{
		{Kind: types.MemberMethod, Name: k.intern("get"), Ty: k.fn(nil, b.Number)},
	})
	derived := k.ti.RegisterInterface(k.intern("Derived"), nil)
	k.ti.SetInterfaceBody(derived, []types.TypeID{base}, []types.Member{
		{Kind: types.MemberMethod, Name: k.intern("get"), Ty: k.fn(nil, b.String)},
	})
	k.declare("d", derived)

	got := k.check(k.methodCall(k.ident("d"), "get"))
	k.wantClean()
	k.wantType(got, b.String)
}
