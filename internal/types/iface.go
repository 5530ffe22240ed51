package types

import (
	"slices"

	"quill/internal/source"
)

// IfaceInfo stores metadata for a nominal interface declaration. TypeParams
// holds registered KindTypeParam IDs; member types reference them directly.
type IfaceInfo struct {
	Name       source.StringID
	TypeParams []TypeID
	Extends    []TypeID
	Members    []Member
}

// RegisterInterface allocates a nominal interface slot and returns its
// TypeID. Members and extends are attached afterwards so self-referential
// bodies can mention the interface's own ID.
func (in *Interner) RegisterInterface(name source.StringID, typeParams []TypeID) TypeID {
	slot := appendSlot(&in.ifaces, IfaceInfo{
		Name:       name,
		TypeParams: cloneTypeIDs(typeParams),
	}, "iface")
	return in.internRaw(Type{Kind: KindInterface, Payload: slot})
}

// SetInterfaceBody stores the resolved members and extends list.
func (in *Interner) SetInterfaceBody(id TypeID, extends []TypeID, members []Member) {
	info := in.ifaceInfo(id)
	if info == nil {
		return
	}
	info.Extends = cloneTypeIDs(extends)
	info.Members = slices.Clone(members)
}

// IfaceInfo returns metadata for the provided interface TypeID.
func (in *Interner) IfaceInfo(id TypeID) (*IfaceInfo, bool) {
	info := in.ifaceInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

func (in *Interner) ifaceInfo(id TypeID) *IfaceInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindInterface {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.ifaces) {
		return nil
	}
	return &in.ifaces[tt.Payload]
}
