package types

import (
	"slices"

	"quill/internal/source"
)

// ClassInfo stores metadata for a class declaration. Ctors lists the
// declared construct signatures (KindCtor types); an empty list means the
// class relies on its superclass constructor or the implicit default one.
type ClassInfo struct {
	Name       source.StringID
	TypeParams []TypeID
	Super      TypeID // NoTypeID when the class has no superclass
	Ctors      []TypeID
	Members    []Member
	Abstract   bool
}

// RegisterClass allocates a nominal class slot and returns its TypeID.
// The body is attached afterwards so members can mention the class itself.
func (in *Interner) RegisterClass(name source.StringID, typeParams []TypeID, abstract bool) TypeID {
	slot := appendSlot(&in.classes, ClassInfo{
		Name:       name,
		TypeParams: cloneTypeIDs(typeParams),
		Abstract:   abstract,
	}, "class")
	return in.internRaw(Type{Kind: KindClassDef, Payload: slot})
}

// SetClassBody stores the superclass, constructors and members.
func (in *Interner) SetClassBody(id TypeID, super TypeID, ctors []TypeID, members []Member) {
	info := in.classInfo(id)
	if info == nil {
		return
	}
	info.Super = super
	info.Ctors = cloneTypeIDs(ctors)
	info.Members = slices.Clone(members)
}

// ClassInfo returns metadata for the provided class TypeID.
func (in *Interner) ClassInfo(id TypeID) (*ClassInfo, bool) {
	info := in.classInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

func (in *Interner) classInfo(id TypeID) *ClassInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClassDef {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.classes) {
		return nil
	}
	return &in.classes[tt.Payload]
}

// InstInfo stores the type arguments of a class instance type; the class
// itself lives in the node's Elem.
type InstInfo struct {
	Args []TypeID
}

// InstanceOf creates or finds the instance type of a class.
func (in *Interner) InstanceOf(class TypeID, args []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindInstance || tt.Elem != class {
			continue
		}
		if slices.Equal(in.insts[tt.Payload].Args, args) {
			return id
		}
	}
	slot := appendSlot(&in.insts, InstInfo{Args: cloneTypeIDs(args)}, "instance")
	return in.internRaw(Type{Kind: KindInstance, Elem: class, Payload: slot})
}

// InstanceArgs returns the type arguments of an instance type.
func (in *Interner) InstanceArgs(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindInstance {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.insts) {
		return nil
	}
	return in.insts[tt.Payload].Args
}

// InstanceClass returns the class a KindInstance type instantiates.
func (in *Interner) InstanceClass(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindInstance {
		return NoTypeID
	}
	return tt.Elem
}
