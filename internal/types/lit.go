package types

import (
	"quill/internal/source"
)

// LitKind distinguishes the base primitive of a literal type.
type LitKind uint8

const (
	LitNumber LitKind = iota
	LitString
	LitBoolean
)

// LitInfo stores metadata for literal types. Pinned literals come from an
// explicit annotation and never widen; expression-derived literals widen to
// their base primitive at generalization points.
type LitInfo struct {
	Kind   LitKind
	Num    float64
	Str    source.StringID
	Bool   bool
	Pinned bool
}

// NumberLit interns a numeric literal type.
func (in *Interner) NumberLit(value float64, pinned bool) TypeID {
	return in.registerLit(LitInfo{Kind: LitNumber, Num: value, Pinned: pinned})
}

// StringLit interns a string literal type.
func (in *Interner) StringLit(value source.StringID, pinned bool) TypeID {
	return in.registerLit(LitInfo{Kind: LitString, Str: value, Pinned: pinned})
}

// BoolLit interns a boolean literal type.
func (in *Interner) BoolLit(value bool, pinned bool) TypeID {
	return in.registerLit(LitInfo{Kind: LitBoolean, Bool: value, Pinned: pinned})
}

func (in *Interner) registerLit(info LitInfo) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindLit {
			continue
		}
		if in.lits[tt.Payload] == info {
			return id
		}
	}
	slot := appendSlot(&in.lits, info, "lit")
	return in.internRaw(Type{Kind: KindLit, Payload: slot})
}

// LitInfo retrieves literal metadata by TypeID.
func (in *Interner) LitInfo(id TypeID) (*LitInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindLit {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.lits) {
		return nil, false
	}
	return &in.lits[tt.Payload], true
}

// WidenLit returns the base primitive for a non-pinned literal type and the
// input unchanged otherwise.
func (in *Interner) WidenLit(id TypeID) TypeID {
	info, ok := in.LitInfo(id)
	if !ok || info.Pinned {
		return id
	}
	switch info.Kind {
	case LitNumber:
		return in.builtins.Number
	case LitString:
		return in.builtins.String
	case LitBoolean:
		return in.builtins.Boolean
	}
	return id
}

// BaseOfLit returns the primitive a literal belongs to, pinned or not.
func (in *Interner) BaseOfLit(id TypeID) TypeID {
	info, ok := in.LitInfo(id)
	if !ok {
		return NoTypeID
	}
	switch info.Kind {
	case LitNumber:
		return in.builtins.Number
	case LitString:
		return in.builtins.String
	case LitBoolean:
		return in.builtins.Boolean
	}
	return NoTypeID
}
