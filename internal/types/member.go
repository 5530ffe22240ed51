package types

import (
	"slices"

	"quill/internal/source"
)

// MemberKind distinguishes the member forms a type literal, interface or
// class body may contain.
type MemberKind uint8

const (
	// MemberCall is an unnamed call signature.
	MemberCall MemberKind = iota
	// MemberCtor is an unnamed construct signature.
	MemberCtor
	// MemberMethod is a named callable member.
	MemberMethod
	// MemberProperty is a named value member.
	MemberProperty
)

// Member is one entry of a type literal, interface or class body. Ty holds
// the signature (a KindFn/KindCtor type) for callable members and the value
// type for properties.
type Member struct {
	Kind     MemberKind
	Name     source.StringID // NoStringID for call/ctor signatures
	Ty       TypeID
	Static   bool
	Optional bool
}

// MemberListInfo stores the body of a type literal.
type MemberListInfo struct {
	Members []Member
}

// RegisterTypeLit creates or finds a type-literal type.
func (in *Interner) RegisterTypeLit(members []Member) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindTypeLit {
			continue
		}
		if slices.Equal(in.members[tt.Payload].Members, members) {
			return id
		}
	}
	slot := appendSlot(&in.members, MemberListInfo{Members: slices.Clone(members)}, "typelit")
	return in.internRaw(Type{Kind: KindTypeLit, Payload: slot})
}

// TypeLitInfo retrieves type-literal metadata by TypeID.
func (in *Interner) TypeLitInfo(id TypeID) (*MemberListInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypeLit {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.members) {
		return nil, false
	}
	return &in.members[tt.Payload], true
}
