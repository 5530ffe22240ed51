package types

import (
	"slices"

	"quill/internal/source"
)

// RefInfo stores a by-name reference to a declared type, with optional type
// arguments. References are resolved to structural form by the checker's
// normalize step.
type RefInfo struct {
	Name source.StringID
	Args []TypeID
}

// RegisterRef creates or finds a type reference.
func (in *Interner) RegisterRef(name source.StringID, args []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindRef {
			continue
		}
		have := &in.refs[tt.Payload]
		if have.Name == name && slices.Equal(have.Args, args) {
			return id
		}
	}
	slot := appendSlot(&in.refs, RefInfo{Name: name, Args: cloneTypeIDs(args)}, "ref")
	return in.internRaw(Type{Kind: KindRef, Payload: slot})
}

// RefInfo retrieves reference metadata by TypeID.
func (in *Interner) RefInfo(id TypeID) (*RefInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindRef {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.refs) {
		return nil, false
	}
	return &in.refs[tt.Payload], true
}
