package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Fixture syntax (2xxx)
	SynInfo            Code = 2000
	SynBadFixture      Code = 2001
	SynBadTypeExpr     Code = 2002
	SynUnknownTypeName Code = 2003
	SynBadExpr         Code = 2004
	SynDuplicateDecl   Code = 2005
	SynBadTypeArity    Code = 2006

	// Call resolution (3xxx)
	SemaInfo                       Code = 3000
	SemaUnresolvedName             Code = 3001
	SemaNoCallSignature            Code = 3002
	SemaNoNewSignature             Code = 3003
	SemaNoCallableProperty         Code = 3004
	SemaNoConstructableProperty    Code = 3005
	SemaNoSuchConstructor          Code = 3006
	SemaNoMatchingOverload         Code = 3007
	SemaExpectedArgs               Code = 3008
	SemaExpectedAtLeastArgs        Code = 3009
	SemaTypeParamCountMismatch     Code = 3010
	SemaWrongArgType               Code = 3011
	SemaSpreadMustBeTupleOrRest    Code = 3012
	SemaMustHaveSymbolIterator     Code = 3013
	SemaAbstractClassInstance      Code = 3014
	SemaTargetLacksConstruct       Code = 3015
	SemaAnyCalleeWithTypeArgs      Code = 3016
	SemaUnresolvedTypeParam        Code = 3017
	SemaNoSuchProperty             Code = 3018
	SemaExpectedTypeButGot         Code = 3019
	SemaResultTypeMismatch         Code = 3020
	SemaUnexpectedDiagnostic       Code = 3021
	SemaMissingExpectedDiagnostic  Code = 3022

	// IO / driver (4xxx)
	IoInfo        Code = 4000
	IoReadFailed  Code = 4001
	IoCacheFailed Code = 4002

	// Project manifest (5xxx)
	ProjInfo        Code = 5000
	ProjBadManifest Code = 5001
	ProjNoFixtures  Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown diagnostic",

	SynInfo:            "fixture info",
	SynBadFixture:      "malformed fixture document",
	SynBadTypeExpr:     "malformed type expression",
	SynUnknownTypeName: "unknown type name",
	SynBadExpr:         "malformed call expression",
	SynDuplicateDecl:   "duplicate declaration",
	SynBadTypeArity:    "wrong number of type arguments in type expression",

	SemaInfo:                      "checker info",
	SemaUnresolvedName:            "unresolved name",
	SemaNoCallSignature:           "callee has no call signature",
	SemaNoNewSignature:            "callee has no construct signature",
	SemaNoCallableProperty:        "no callable property with the given name",
	SemaNoConstructableProperty:   "no constructable property with the given name",
	SemaNoSuchConstructor:         "no such constructor",
	SemaNoMatchingOverload:        "no overload matches this call",
	SemaExpectedArgs:              "wrong number of arguments",
	SemaExpectedAtLeastArgs:       "too few arguments",
	SemaTypeParamCountMismatch:    "wrong number of type arguments",
	SemaWrongArgType:              "argument type is not assignable to parameter type",
	SemaSpreadMustBeTupleOrRest:   "spread argument must be a tuple or be passed to a rest parameter",
	SemaMustHaveSymbolIterator:    "spread argument must have a [Symbol.iterator]() method",
	SemaAbstractClassInstance:     "cannot create an instance of an abstract class",
	SemaTargetLacksConstruct:      "target lacks a construct signature",
	SemaAnyCalleeWithTypeArgs:     "untyped function calls may not accept type arguments",
	SemaUnresolvedTypeParam:       "type parameter could not be inferred",
	SemaNoSuchProperty:            "property does not exist on type",
	SemaExpectedTypeButGot:        "call produced an unexpected result type",
	SemaUnexpectedDiagnostic:      "call produced a diagnostic the fixture does not expect",
	SemaMissingExpectedDiagnostic: "fixture expects a diagnostic the call did not produce",

	IoInfo:        "driver info",
	IoReadFailed:  "failed to read fixture file",
	IoCacheFailed: "failed to read or write the diagnostics cache",

	ProjInfo:        "project info",
	ProjBadManifest: "malformed quill.toml manifest",
	ProjNoFixtures:  "no fixture files matched the manifest globs",
}

// ID returns the stable short identifier, e.g. "SEM3007".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	default:
		return fmt.Sprintf("UNK%04d", ic)
	}
}

// Title returns the human readable one-line description.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
