package types

import (
	"fmt"
	"strconv"
	"strings"

	"quill/internal/source"
)

// Format renders a type for diagnostics. Nominal types print their names;
// structural types print their shape. Rendering is depth-limited so cyclic
// interface/class bodies cannot hang a diagnostic.
func (in *Interner) Format(id TypeID, strs *source.Interner) string {
	return in.format(id, strs, 0)
}

const maxFormatDepth = 6

func (in *Interner) format(id TypeID, strs *source.Interner, depth int) string {
	if depth > maxFormatDepth {
		return "..."
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindAny, KindUnknown, KindNever, KindVoid, KindNull, KindUndefined,
		KindBoolean, KindNumber, KindString, KindSymbol, KindThis:
		return tt.Kind.String()
	case KindLit:
		info, _ := in.LitInfo(id)
		switch info.Kind {
		case LitNumber:
			return strconv.FormatFloat(info.Num, 'g', -1, 64)
		case LitString:
			return fmt.Sprintf("%q", lookupName(strs, info.Str))
		case LitBoolean:
			return strconv.FormatBool(info.Bool)
		}
		return "literal"
	case KindArray:
		return in.format(tt.Elem, strs, depth+1) + "[]"
	case KindTuple:
		info, _ := in.TupleInfo(id)
		parts := make([]string, 0, len(info.Elems))
		for _, e := range info.Elems {
			s := in.format(e.Ty, strs, depth+1)
			if e.Rest {
				s = "..." + s
			} else if e.Optional {
				s += "?"
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindUnion:
		return in.formatList(id, strs, depth, " | ")
	case KindIntersection:
		return in.formatList(id, strs, depth, " & ")
	case KindFn, KindCtor:
		info, _ := in.FnInfo(id)
		var b strings.Builder
		if tt.Kind == KindCtor {
			b.WriteString("new ")
		}
		if len(info.TypeParams) > 0 {
			b.WriteByte('<')
			for i, tp := range info.TypeParams {
				if i > 0 {
					b.WriteString(", ")
				}
				if pi, ok := in.TypeParamInfo(tp); ok {
					b.WriteString(lookupName(strs, pi.Name))
				} else {
					b.WriteString("?")
				}
			}
			b.WriteByte('>')
		}
		b.WriteByte('(')
		for i, p := range info.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			if p.Pat == PatRest {
				b.WriteString("...")
			}
			b.WriteString(lookupName(strs, p.Name))
			if !p.Required && p.Pat != PatRest {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			b.WriteString(in.format(p.Ty, strs, depth+1))
		}
		b.WriteString(") => ")
		b.WriteString(in.format(info.Ret, strs, depth+1))
		return b.String()
	case KindTypeLit:
		info, _ := in.TypeLitInfo(id)
		if len(info.Members) == 0 {
			return "{}"
		}
		return fmt.Sprintf("{ %d members }", len(info.Members))
	case KindInterface:
		info, _ := in.IfaceInfo(id)
		return lookupName(strs, info.Name)
	case KindClassDef:
		info, _ := in.ClassInfo(id)
		return "typeof " + lookupName(strs, info.Name)
	case KindInstance:
		class := in.InstanceClass(id)
		info, _ := in.ClassInfo(class)
		name := lookupName(strs, info.Name)
		args := in.InstanceArgs(id)
		if len(args) == 0 {
			return name
		}
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, in.format(a, strs, depth+1))
		}
		return name + "<" + strings.Join(parts, ", ") + ">"
	case KindTypeParam:
		info, _ := in.TypeParamInfo(id)
		return lookupName(strs, info.Name)
	case KindRef:
		info, _ := in.RefInfo(id)
		name := lookupName(strs, info.Name)
		if len(info.Args) == 0 {
			return name
		}
		parts := make([]string, 0, len(info.Args))
		for _, a := range info.Args {
			parts = append(parts, in.format(a, strs, depth+1))
		}
		return name + "<" + strings.Join(parts, ", ") + ">"
	case KindIndexedAccess:
		obj, index, _ := in.IndexedInfo(id)
		return in.format(obj, strs, depth+1) + "[" + in.format(index, strs, depth+1) + "]"
	case KindPredicate:
		info, _ := in.PredInfo(id)
		return lookupName(strs, info.Param) + " is " + in.format(info.Asserted, strs, depth+1)
	default:
		return tt.Kind.String()
	}
}

func (in *Interner) formatList(id TypeID, strs *source.Interner, depth int, sep string) string {
	members := in.ListMembers(id)
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, in.format(m, strs, depth+1))
	}
	return strings.Join(parts, sep)
}

func lookupName(strs *source.Interner, id source.StringID) string {
	if strs == nil {
		return "?"
	}
	s, ok := strs.Lookup(id)
	if !ok || s == "" {
		return "?"
	}
	return s
}
