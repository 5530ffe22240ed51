package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the keyword types every checker phase needs.
type Builtins struct {
	Invalid   TypeID
	Any       TypeID
	Unknown   TypeID
	Never     TypeID
	Void      TypeID
	Null      TypeID
	Undefined TypeID
	Boolean   TypeID
	Number    TypeID
	String    TypeID
	Symbol    TypeID
	This      TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Structure-bearing kinds keep their payload in side tables; interning the
// same structure twice yields the same TypeID, so structural equality on
// interned types is an ID comparison.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	lits    []LitInfo
	tuples  []TupleInfo
	lists   []ListInfo // unions and intersections
	fns     []FnInfo
	members []MemberListInfo // type literals
	ifaces  []IfaceInfo
	classes []ClassInfo
	params  []ParamInfo
	refs    []RefInfo
	insts   []InstInfo
	preds   []PredInfo
	indexed []IndexedInfo
}

// NewInterner constructs an interner seeded with the keyword types.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Any = in.Intern(Type{Kind: KindAny})
	in.builtins.Unknown = in.Intern(Type{Kind: KindUnknown})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Null = in.Intern(Type{Kind: KindNull})
	in.builtins.Undefined = in.Intern(Type{Kind: KindUndefined})
	in.builtins.Boolean = in.Intern(Type{Kind: KindBoolean})
	in.builtins.Number = in.Intern(Type{Kind: KindNumber})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Symbol = in.Intern(Type{Kind: KindSymbol})
	in.builtins.This = in.Intern(Type{Kind: KindThis})
	return in
}

// Builtins returns TypeIDs for the keyword types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind returns the kind for a TypeID, KindInvalid when the ID is unknown.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// ArrayOf interns T[] for the given element type.
func (in *Interner) ArrayOf(elem TypeID) TypeID {
	return in.Intern(MakeArray(elem))
}

// ElemOf returns the Elem child for kinds that carry one.
func (in *Interner) ElemOf(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	return tt.Elem
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
}

func appendSlot[T any](slots *[]T, value T, what string) uint32 {
	if len(*slots) == 0 {
		var zero T
		*slots = append(*slots, zero) // reserve 0 as invalid sentinel
	}
	*slots = append(*slots, value)
	slot, err := safecast.Conv[uint32](len(*slots) - 1)
	if err != nil {
		panic(fmt.Errorf("%s info overflow: %w", what, err))
	}
	return slot
}

func cloneTypeIDs(ids []TypeID) []TypeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]TypeID, len(ids))
	copy(out, ids)
	return out
}
