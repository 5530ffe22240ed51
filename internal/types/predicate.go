package types

import "quill/internal/source"

// PredInfo stores metadata for a type-predicate return type (`x is T`).
// Param names the predicate's subject parameter; Asserted is the type the
// predicate narrows it to.
type PredInfo struct {
	Param    source.StringID
	Asserted TypeID
}

// RegisterPredicate creates or finds a type-predicate type.
func (in *Interner) RegisterPredicate(param source.StringID, asserted TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindPredicate {
			continue
		}
		have := &in.preds[tt.Payload]
		if have.Param == param && have.Asserted == asserted {
			return id
		}
	}
	slot := appendSlot(&in.preds, PredInfo{Param: param, Asserted: asserted}, "predicate")
	return in.internRaw(Type{Kind: KindPredicate, Payload: slot})
}

// PredInfo retrieves predicate metadata by TypeID.
func (in *Interner) PredInfo(id TypeID) (*PredInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindPredicate {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.preds) {
		return nil, false
	}
	return &in.preds[tt.Payload], true
}
