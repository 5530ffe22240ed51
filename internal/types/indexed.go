package types

// IndexedInfo stores the index type of an indexed-access type T[K]; the
// object type lives in the node's Elem.
type IndexedInfo struct {
	Index TypeID
}

// RegisterIndexedAccess creates or finds T[K].
func (in *Interner) RegisterIndexedAccess(obj, index TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindIndexedAccess || tt.Elem != obj {
			continue
		}
		if in.indexed[tt.Payload].Index == index {
			return id
		}
	}
	slot := appendSlot(&in.indexed, IndexedInfo{Index: index}, "indexed")
	return in.internRaw(Type{Kind: KindIndexedAccess, Elem: obj, Payload: slot})
}

// IndexedInfo retrieves the index type of an indexed-access type.
func (in *Interner) IndexedInfo(id TypeID) (obj, index TypeID, ok bool) {
	tt, found := in.Lookup(id)
	if !found || tt.Kind != KindIndexedAccess {
		return NoTypeID, NoTypeID, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.indexed) {
		return NoTypeID, NoTypeID, false
	}
	return tt.Elem, in.indexed[tt.Payload].Index, true
}
