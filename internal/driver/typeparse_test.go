package driver

import (
	"testing"

	"quill/internal/source"
	"quill/internal/types"
)

type parseKit struct {
	t    *testing.T
	fs   *source.FileSet
	ti   *types.Interner
	strs *source.Interner
}

func newParseKit(t *testing.T) *parseKit {
	t.Helper()
	return &parseKit{
		t:    t,
		fs:   source.NewFileSet(),
		ti:   types.NewInterner(),
		strs: source.NewInterner(),
	}
}

func (k *parseKit) parse(src string) types.TypeID {
	k.t.Helper()
	file := k.fs.AddVirtual("test", []byte(src))
	ty, _, err := parseTypeString(src, file, k.ti, k.strs)
	if err != nil {
		k.t.Fatalf("parse %q: %s", src, err.msg)
	}
	return ty
}

func (k *parseKit) parseErr(src string) *parseError {
	k.t.Helper()
	file := k.fs.AddVirtual("test", []byte(src))
	_, _, err := parseTypeString(src, file, k.ti, k.strs)
	if err == nil {
		k.t.Fatalf("parse %q: expected an error", src)
	}
	return err
}

func TestParsePrimitives(t *testing.T) {
	k := newParseKit(t)
	b := k.ti.Builtins()
	cases := map[string]types.TypeID{
		"any":       b.Any,
		"unknown":   b.Unknown,
		"never":     b.Never,
		"void":      b.Void,
		"null":      b.Null,
		"undefined": b.Undefined,
		"boolean":   b.Boolean,
		"number":    b.Number,
		"string":    b.String,
		"symbol":    b.Symbol,
		"this":      b.This,
	}
	for src, want := range cases {
		if got := k.parse(src); got != want {
			t.Fatalf("%q = %s, want %s", src, k.ti.Format(got, k.strs), k.ti.Format(want, k.strs))
		}
	}
}

func TestParseLiteralsArePinned(t *testing.T) {
	k := newParseKit(t)
	for _, src := range []string{"42", "1.5", `"hi"`, "'hi'", "true", "false"} {
		ty := k.parse(src)
		if k.ti.Kind(ty) != types.KindLit {
			t.Fatalf("%q parsed to %s, want a literal", src, k.ti.Format(ty, k.strs))
		}
		info, _ := k.ti.LitInfo(ty)
		if !info.Pinned {
			t.Fatalf("%q literal should be pinned", src)
		}
	}
}

func TestParseArraySuffix(t *testing.T) {
	k := newParseKit(t)
	b := k.ti.Builtins()
	if got := k.parse("number[]"); got != k.ti.ArrayOf(b.Number) {
		t.Fatalf("number[] = %s", k.ti.Format(got, k.strs))
	}
	if got := k.parse("string[][]"); got != k.ti.ArrayOf(k.ti.ArrayOf(b.String)) {
		t.Fatalf("string[][] = %s", k.ti.Format(got, k.strs))
	}
}

func TestParseUnionAndIntersection(t *testing.T) {
	k := newParseKit(t)
	b := k.ti.Builtins()
	u := k.parse("number | string | null")
	if k.ti.Kind(u) != types.KindUnion || len(k.ti.ListMembers(u)) != 3 {
		t.Fatalf("union = %s", k.ti.Format(u, k.strs))
	}
	i := k.parse("A & B")
	if k.ti.Kind(i) != types.KindIntersection {
		t.Fatalf("intersection = %s", k.ti.Format(i, k.strs))
	}
	// Intersection binds tighter than union.
	mixed := k.parse("number | A & B")
	if k.ti.Kind(mixed) != types.KindUnion || len(k.ti.ListMembers(mixed)) != 2 {
		t.Fatalf("mixed = %s", k.ti.Format(mixed, k.strs))
	}
	_ = b
}

func TestParseTuple(t *testing.T) {
	k := newParseKit(t)
	b := k.ti.Builtins()
	ty := k.parse("[number, string?, ...boolean[]]")
	info, ok := k.ti.TupleInfo(ty)
	if !ok || len(info.Elems) != 3 {
		t.Fatalf("tuple = %s", k.ti.Format(ty, k.strs))
	}
	if info.Elems[0].Ty != b.Number || info.Elems[0].Optional {
		t.Fatalf("elem 0 wrong: %+v", info.Elems[0])
	}
	if !info.Elems[1].Optional {
		t.Fatalf("elem 1 should be optional")
	}
	if !info.Elems[2].Rest || info.Elems[2].Ty != k.ti.ArrayOf(b.Boolean) {
		t.Fatalf("elem 2 should be a boolean[] rest")
	}
}

func TestParseFnType(t *testing.T) {
	k := newParseKit(t)
	b := k.ti.Builtins()
	ty := k.parse("(a: number, b?: string, ...rest: boolean[]) => void")
	info, ok := k.ti.FnInfo(ty)
	if !ok || k.ti.Kind(ty) != types.KindFn {
		t.Fatalf("fn = %s", k.ti.Format(ty, k.strs))
	}
	if len(info.Params) != 3 {
		t.Fatalf("got %d params", len(info.Params))
	}
	if !info.Params[0].Required || info.Params[1].Required {
		t.Fatalf("optionality wrong: %+v", info.Params)
	}
	if info.Params[2].Pat != types.PatRest {
		t.Fatalf("third param should be a rest parameter")
	}
	if info.Ret != b.Void {
		t.Fatalf("ret = %s", k.ti.Format(info.Ret, k.strs))
	}
}

func TestParseGenericFnType(t *testing.T) {
	k := newParseKit(t)
	ty := k.parse("<T, U extends number>(x: T, y: U) => T")
	info, _ := k.ti.FnInfo(ty)
	if len(info.TypeParams) != 2 {
		t.Fatalf("got %d type params", len(info.TypeParams))
	}
	if info.Params[0].Ty != info.TypeParams[0] {
		t.Fatalf("x should be typed by the first type parameter")
	}
	uInfo, _ := k.ti.TypeParamInfo(info.TypeParams[1])
	if uInfo.Constraint != k.ti.Builtins().Number {
		t.Fatalf("U constraint = %s", k.ti.Format(uInfo.Constraint, k.strs))
	}
	if info.Ret != info.TypeParams[0] {
		t.Fatalf("ret should be T")
	}
}

func TestParsePredicateReturn(t *testing.T) {
	k := newParseKit(t)
	ty := k.parse("(x: unknown) => x is string")
	info, _ := k.ti.FnInfo(ty)
	if k.ti.Kind(info.Ret) != types.KindPredicate {
		t.Fatalf("ret = %s, want a predicate", k.ti.Format(info.Ret, k.strs))
	}
	pred, _ := k.ti.PredInfo(info.Ret)
	if pred.Param != k.strs.Intern("x") || pred.Asserted != k.ti.Builtins().String {
		t.Fatalf("predicate = %+v", pred)
	}
}

func TestParseCtorType(t *testing.T) {
	k := newParseKit(t)
	ty := k.parse("new (x: number) => Point")
	if k.ti.Kind(ty) != types.KindCtor {
		t.Fatalf("got %s, want a construct signature", k.ti.Format(ty, k.strs))
	}
	abstract := k.parse("abstract new () => Shape")
	info, _ := k.ti.FnInfo(abstract)
	if !info.Abstract {
		t.Fatalf("abstract ctor should carry the abstract flag")
	}
}

func TestParseRefWithArgs(t *testing.T) {
	k := newParseKit(t)
	ty := k.parse("Box<number, string>")
	if k.ti.Kind(ty) != types.KindRef {
		t.Fatalf("got %s, want a reference", k.ti.Format(ty, k.strs))
	}
	info, _ := k.ti.RefInfo(ty)
	if info.Name != k.strs.Intern("Box") || len(info.Args) != 2 {
		t.Fatalf("ref = %+v", info)
	}
}

func TestParseIndexedAccess(t *testing.T) {
	k := newParseKit(t)
	ty := k.parse(`Config["name"]`)
	if k.ti.Kind(ty) != types.KindIndexedAccess {
		t.Fatalf("got %s, want an indexed access", k.ti.Format(ty, k.strs))
	}
}

func TestParseTypeLitMembers(t *testing.T) {
	k := newParseKit(t)
	b := k.ti.Builtins()
	ty := k.parse("{ x: number; tag?: string; scale(by: number): number; (n: number): string }")
	info, ok := k.ti.TypeLitInfo(ty)
	if !ok || len(info.Members) != 4 {
		t.Fatalf("typelit = %s", k.ti.Format(ty, k.strs))
	}
	if info.Members[0].Kind != types.MemberProperty || info.Members[0].Ty != b.Number {
		t.Fatalf("member 0 = %+v", info.Members[0])
	}
	if !info.Members[1].Optional {
		t.Fatalf("tag should be optional")
	}
	if info.Members[2].Kind != types.MemberMethod {
		t.Fatalf("scale should be a method")
	}
	if info.Members[3].Kind != types.MemberCall {
		t.Fatalf("last member should be a call signature")
	}
}

func TestParseParenthesizedFnInUnion(t *testing.T) {
	k := newParseKit(t)
	ty := k.parse("((x: number) => string) | null")
	if k.ti.Kind(ty) != types.KindUnion {
		t.Fatalf("got %s, want a union", k.ti.Format(ty, k.strs))
	}
}

func TestParseErrors(t *testing.T) {
	k := newParseKit(t)
	for _, src := range []string{
		"number |",
		"[number",
		"(a: ) => void",
		"Box<number",
		"{ x: }",
		"number string",
		"",
	} {
		err := k.parseErr(src)
		if err.msg == "" {
			t.Fatalf("%q: empty error message", src)
		}
	}
}

func TestParseTupleRestMustBeArray(t *testing.T) {
	k := newParseKit(t)
	k.parseErr("[number, ...string]")
}
