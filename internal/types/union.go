package types

import "slices"

// ListInfo stores the member list shared by union and intersection types.
type ListInfo struct {
	Members []TypeID
}

// NewUnion builds a union from members: flattens nested unions, removes
// duplicates and never members, and collapses the result when a single member
// remains. An any member absorbs the whole union.
func (in *Interner) NewUnion(members []TypeID) TypeID {
	flat := make([]TypeID, 0, len(members))
	for _, m := range members {
		if m == NoTypeID || m == in.builtins.Never {
			continue
		}
		if tt, ok := in.Lookup(m); ok && tt.Kind == KindUnion {
			flat = append(flat, in.ListMembers(m)...)
			continue
		}
		flat = append(flat, m)
	}
	dedup := make([]TypeID, 0, len(flat))
	for _, m := range flat {
		if m == in.builtins.Any {
			return in.builtins.Any
		}
		if !slices.Contains(dedup, m) {
			dedup = append(dedup, m)
		}
	}
	switch len(dedup) {
	case 0:
		return in.builtins.Never
	case 1:
		return dedup[0]
	}
	return in.registerList(KindUnion, dedup)
}

// NewIntersection builds an intersection from members: flattens nested
// intersections, removes duplicates and unknown members, and collapses a
// single survivor. Member order is preserved.
func (in *Interner) NewIntersection(members []TypeID) TypeID {
	flat := make([]TypeID, 0, len(members))
	for _, m := range members {
		if m == NoTypeID || m == in.builtins.Unknown {
			continue
		}
		if tt, ok := in.Lookup(m); ok && tt.Kind == KindIntersection {
			flat = append(flat, in.ListMembers(m)...)
			continue
		}
		flat = append(flat, m)
	}
	dedup := make([]TypeID, 0, len(flat))
	for _, m := range flat {
		if m == in.builtins.Never {
			return in.builtins.Never
		}
		if !slices.Contains(dedup, m) {
			dedup = append(dedup, m)
		}
	}
	switch len(dedup) {
	case 0:
		return in.builtins.Unknown
	case 1:
		return dedup[0]
	}
	return in.registerList(KindIntersection, dedup)
}

func (in *Interner) registerList(kind Kind, members []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != kind {
			continue
		}
		if slices.Equal(in.lists[tt.Payload].Members, members) {
			return id
		}
	}
	slot := appendSlot(&in.lists, ListInfo{Members: cloneTypeIDs(members)}, "list")
	return in.internRaw(Type{Kind: kind, Payload: slot})
}

// ListMembers returns the members of a union or intersection type.
// The returned slice aliases the interner's storage; callers must not modify it.
func (in *Interner) ListMembers(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindUnion && tt.Kind != KindIntersection) {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.lists) {
		return nil
	}
	return in.lists[tt.Payload].Members
}
