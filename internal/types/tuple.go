package types

import "slices"

// TupleElem is one slot of a tuple type.
type TupleElem struct {
	Ty       TypeID
	Optional bool
	Rest     bool // trailing open-ended ...T[] element
}

// TupleInfo stores metadata for tuple types.
type TupleInfo struct {
	Elems []TupleElem
}

// RegisterTuple creates or finds a tuple type.
func (in *Interner) RegisterTuple(elems []TupleElem) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindTuple {
			continue
		}
		if slices.Equal(in.tuples[tt.Payload].Elems, elems) {
			return id
		}
	}
	slot := appendSlot(&in.tuples, TupleInfo{Elems: slices.Clone(elems)}, "tuple")
	return in.internRaw(Type{Kind: KindTuple, Payload: slot})
}

// TupleInfo retrieves tuple metadata by TypeID.
func (in *Interner) TupleInfo(id TypeID) (*TupleInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[tt.Payload], true
}

// HasOpenTail reports whether the tuple ends with a rest element.
func (t *TupleInfo) HasOpenTail() bool {
	return len(t.Elems) > 0 && t.Elems[len(t.Elems)-1].Rest
}

// RequiredLen counts leading non-optional, non-rest elements.
func (t *TupleInfo) RequiredLen() int {
	n := 0
	for _, e := range t.Elems {
		if e.Optional || e.Rest {
			break
		}
		n++
	}
	return n
}
