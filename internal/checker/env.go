package checker

import (
	"quill/internal/source"
	"quill/internal/types"
)

// Env is the global type environment: named type declarations, value
// bindings, and the builtin globals every resolution path may fall back to
// (Object, Array, Number, String, Symbol). It is read-only during checking.
type Env struct {
	typeDecls map[source.StringID]types.TypeID
	values    map[source.StringID]types.TypeID

	object types.TypeID
	array  types.TypeID
	number types.TypeID
	str    types.TypeID
	symbol types.TypeID
}

// NewEnv builds an environment seeded with the builtin global interfaces.
func NewEnv(ti *types.Interner, strs *source.Interner) *Env {
	env := &Env{
		typeDecls: make(map[source.StringID]types.TypeID, 16),
		values:    make(map[source.StringID]types.TypeID, 16),
	}
	env.registerBuiltins(ti, strs)
	return env
}

// DeclareType registers a named type; later declarations win, matching
// script-order shadowing in fixtures.
func (e *Env) DeclareType(name source.StringID, ty types.TypeID) {
	e.typeDecls[name] = ty
}

// DeclareValue registers a named value binding.
func (e *Env) DeclareValue(name source.StringID, ty types.TypeID) {
	e.values[name] = ty
}

// TypeDecl resolves a named type.
func (e *Env) TypeDecl(name source.StringID) (types.TypeID, bool) {
	ty, ok := e.typeDecls[name]
	return ty, ok
}

// Value resolves a named value binding.
func (e *Env) Value(name source.StringID) (types.TypeID, bool) {
	ty, ok := e.values[name]
	return ty, ok
}

// ObjectIface returns the builtin Object interface.
func (e *Env) ObjectIface() types.TypeID { return e.object }

// ArrayIface returns the builtin generic Array interface.
func (e *Env) ArrayIface() types.TypeID { return e.array }

// NumberIface returns the builtin Number wrapper interface.
func (e *Env) NumberIface() types.TypeID { return e.number }

// StringIface returns the builtin String wrapper interface.
func (e *Env) StringIface() types.TypeID { return e.str }

// SymbolIface returns the builtin Symbol interface.
func (e *Env) SymbolIface() types.TypeID { return e.symbol }

func (e *Env) registerBuiltins(ti *types.Interner, strs *source.Interner) {
	b := ti.Builtins()

	method := func(name string, fn types.TypeID) types.Member {
		return types.Member{Kind: types.MemberMethod, Name: strs.Intern(name), Ty: fn}
	}
	prop := func(name string, ty types.TypeID) types.Member {
		return types.Member{Kind: types.MemberProperty, Name: strs.Intern(name), Ty: ty}
	}
	param := func(name string, ty types.TypeID) types.FnParam {
		return types.FnParam{Pat: types.PatIdent, Name: strs.Intern(name), Ty: ty, Required: true}
	}
	opt := func(name string, ty types.TypeID) types.FnParam {
		return types.FnParam{Pat: types.PatIdent, Name: strs.Intern(name), Ty: ty, Required: false}
	}
	rest := func(name string, ty types.TypeID) types.FnParam {
		return types.FnParam{Pat: types.PatRest, Name: strs.Intern(name), Ty: ty, Required: false}
	}
	fn := func(params []types.FnParam, ret types.TypeID) types.TypeID {
		return ti.RegisterFn(nil, params, ret)
	}

	// interface Object
	e.object = ti.RegisterInterface(strs.Intern("Object"), nil)
	ti.SetInterfaceBody(e.object, nil, []types.Member{
		method("toString", fn(nil, b.String)),
		method("hasOwnProperty", fn([]types.FnParam{param("key", b.String)}, b.Boolean)),
		method("valueOf", fn(nil, b.Unknown)),
	})
	e.typeDecls[strs.Intern("Object")] = e.object

	// interface Array<T>
	arrayT := ti.RegisterTypeParam(strs.Intern("T"), types.NoTypeID, types.NoTypeID)
	e.array = ti.RegisterInterface(strs.Intern("Array"), []types.TypeID{arrayT})
	mapU := ti.RegisterTypeParam(strs.Intern("U"), types.NoTypeID, types.NoTypeID)
	mapCb := fn([]types.FnParam{param("value", arrayT)}, mapU)
	ti.SetInterfaceBody(e.array, []types.TypeID{e.object}, []types.Member{
		prop("length", b.Number),
		method("push", fn([]types.FnParam{rest("items", ti.ArrayOf(arrayT))}, b.Number)),
		method("map", ti.RegisterFn(
			[]types.TypeID{mapU},
			[]types.FnParam{param("callbackfn", mapCb)},
			ti.ArrayOf(mapU),
		)),
		method("includes", fn([]types.FnParam{param("searchElement", arrayT)}, b.Boolean)),
		method("join", fn([]types.FnParam{opt("separator", b.String)}, b.String)),
	})
	e.typeDecls[strs.Intern("Array")] = e.array

	// interface Number
	e.number = ti.RegisterInterface(strs.Intern("Number"), nil)
	ti.SetInterfaceBody(e.number, []types.TypeID{e.object}, []types.Member{
		method("toFixed", fn([]types.FnParam{opt("fractionDigits", b.Number)}, b.String)),
		method("valueOf", fn(nil, b.Number)),
	})
	e.typeDecls[strs.Intern("Number")] = e.number

	// interface String
	e.str = ti.RegisterInterface(strs.Intern("String"), nil)
	ti.SetInterfaceBody(e.str, []types.TypeID{e.object}, []types.Member{
		prop("length", b.Number),
		method("charAt", fn([]types.FnParam{param("pos", b.Number)}, b.String)),
		method("includes", fn([]types.FnParam{param("searchString", b.String)}, b.Boolean)),
		method("toUpperCase", fn(nil, b.String)),
	})
	e.typeDecls[strs.Intern("String")] = e.str

	// interface Symbol
	e.symbol = ti.RegisterInterface(strs.Intern("Symbol"), nil)
	ti.SetInterfaceBody(e.symbol, []types.TypeID{e.object}, []types.Member{
		prop("description", ti.NewUnion([]types.TypeID{b.String, b.Undefined})),
		method("toString", fn(nil, b.String)),
	})
	e.typeDecls[strs.Intern("Symbol")] = e.symbol
}
