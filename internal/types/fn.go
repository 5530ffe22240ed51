package types

import (
	"slices"

	"quill/internal/source"
)

// PatKind describes the binding pattern of a formal parameter.
type PatKind uint8

const (
	// PatIdent is a plain identifier binding.
	PatIdent PatKind = iota
	// PatRest is a ...rest binding.
	PatRest
	// PatThis is the synthetic this parameter.
	PatThis
	// PatDestructure is an object/array destructuring binding.
	PatDestructure
)

// FnParam is a formal parameter: binding pattern, declared type and a
// required flag with the declaration's optionality already folded in.
type FnParam struct {
	Pat      PatKind
	Name     source.StringID
	Ty       TypeID
	Required bool
}

// FnInfo stores metadata for function and constructor types. TypeParams
// lists the signature's declared type parameters as registered KindTypeParam
// IDs; their names, constraints and defaults live in ParamInfo. For KindCtor,
// Ret is the declared instance type and Abstract marks abstract constructors.
type FnInfo struct {
	TypeParams []TypeID
	Params     []FnParam
	Ret        TypeID
	Abstract   bool
}

// RegisterFn creates or finds a function type.
func (in *Interner) RegisterFn(typeParams []TypeID, params []FnParam, ret TypeID) TypeID {
	return in.registerCallable(KindFn, FnInfo{
		TypeParams: typeParams,
		Params:     params,
		Ret:        ret,
	})
}

// RegisterCtor creates or finds a construct-signature type whose Ret is the
// declared instance type.
func (in *Interner) RegisterCtor(typeParams []TypeID, params []FnParam, instance TypeID, abstract bool) TypeID {
	return in.registerCallable(KindCtor, FnInfo{
		TypeParams: typeParams,
		Params:     params,
		Ret:        instance,
		Abstract:   abstract,
	})
}

func (in *Interner) registerCallable(kind Kind, info FnInfo) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != kind {
			continue
		}
		have := &in.fns[tt.Payload]
		if have.Ret == info.Ret &&
			have.Abstract == info.Abstract &&
			slices.Equal(have.Params, info.Params) &&
			slices.Equal(have.TypeParams, info.TypeParams) {
			return id
		}
	}
	slot := appendSlot(&in.fns, FnInfo{
		TypeParams: cloneTypeIDs(info.TypeParams),
		Params:     slices.Clone(info.Params),
		Ret:        info.Ret,
		Abstract:   info.Abstract,
	}, "fn")
	return in.internRaw(Type{Kind: kind, Payload: slot})
}

// FnInfo retrieves function/constructor metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindFn && tt.Kind != KindCtor) {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

// IsGeneric reports whether the callable declares type parameters.
func (f *FnInfo) IsGeneric() bool {
	return len(f.TypeParams) > 0
}
