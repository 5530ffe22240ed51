package types

import "quill/internal/source"

// ParamInfo stores metadata for a type-parameter type. Type parameters are
// nominal: each RegisterTypeParam call mints a fresh TypeID even for the same
// name, so shadowed parameters in nested generic signatures stay distinct.
type ParamInfo struct {
	Name       source.StringID
	Constraint TypeID
	Default    TypeID
}

// RegisterTypeParam allocates a fresh type-parameter type.
func (in *Interner) RegisterTypeParam(name source.StringID, constraint, def TypeID) TypeID {
	slot := appendSlot(&in.params, ParamInfo{
		Name:       name,
		Constraint: constraint,
		Default:    def,
	}, "typeparam")
	return in.internRaw(Type{Kind: KindTypeParam, Payload: slot})
}

// TypeParamInfo retrieves type-parameter metadata by TypeID.
func (in *Interner) TypeParamInfo(id TypeID) (*ParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypeParam {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return nil, false
	}
	return &in.params[tt.Payload], true
}
