package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAny
	KindUnknown
	KindNever
	KindVoid
	KindNull
	KindUndefined
	KindBoolean
	KindNumber
	KindString
	KindSymbol
	KindLit
	KindArray
	KindTuple
	KindUnion
	KindIntersection
	KindFn
	KindCtor
	KindTypeLit
	KindInterface
	KindClassDef
	KindInstance
	KindTypeParam
	KindRef
	KindIndexedAccess
	KindPredicate
	KindThis
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindAny:
		return "any"
	case KindUnknown:
		return "unknown"
	case KindNever:
		return "never"
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindLit:
		return "literal"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindFn:
		return "function"
	case KindCtor:
		return "constructor"
	case KindTypeLit:
		return "type literal"
	case KindInterface:
		return "interface"
	case KindClassDef:
		return "class"
	case KindInstance:
		return "instance"
	case KindTypeParam:
		return "type parameter"
	case KindRef:
		return "reference"
	case KindIndexedAccess:
		return "indexed access"
	case KindPredicate:
		return "type predicate"
	case KindThis:
		return "this"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type. Elem holds the single
// child for kinds that have one (array element, instance class, indexed-access
// object); Payload addresses the kind's side table for everything else.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
}

// MakeArray describes T[].
func MakeArray(elem TypeID) Type {
	return Type{Kind: KindArray, Elem: elem}
}
