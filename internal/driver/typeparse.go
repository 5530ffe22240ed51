package driver

import (
	"fmt"
	"strconv"

	"quill/internal/source"
	"quill/internal/types"
)

// typeParser parses the compact type syntax fixture documents embed in JSON
// strings: primitives, literals, arrays, tuples, unions, intersections,
// function/constructor signatures, type literals, references with type
// arguments, indexed accesses and type predicates.
type typeParser struct {
	sc   *scanner
	ti   *types.Interner
	strs *source.Interner

	// tpScopes resolves type parameter names to their registered IDs while a
	// generic signature or declaration body is being parsed.
	tpScopes []map[string]types.TypeID

	// refs records by-name references for validation once every declaration
	// of the fixture is registered.
	refs []refUse

	err *parseError
}

// refUse is one by-name type reference: where it occurred, what it names,
// and how many type arguments it applied.
type refUse struct {
	name source.StringID
	args int
	span source.Span
}

type parseError struct {
	msg  string
	span source.Span
}

func (e *parseError) Error() string { return e.msg }

func newTypeParser(src string, file source.FileID, ti *types.Interner, strs *source.Interner) *typeParser {
	return &typeParser{sc: newScanner(src, file), ti: ti, strs: strs}
}

func (p *typeParser) fail(at token, format string, args ...interface{}) types.TypeID {
	if p.err == nil {
		p.err = &parseError{msg: fmt.Sprintf(format, args...), span: p.sc.spanFrom(at)}
	}
	return types.NoTypeID
}

func (p *typeParser) expectPunct(text string) token {
	t := p.sc.next()
	if !t.is(tokPunct, text) {
		p.fail(t, "expected '%s', found '%s'", text, t.text)
	}
	return t
}

func (p *typeParser) pushTypeParams(scope map[string]types.TypeID) {
	p.tpScopes = append(p.tpScopes, scope)
}

func (p *typeParser) popTypeParams() {
	p.tpScopes = p.tpScopes[:len(p.tpScopes)-1]
}

func (p *typeParser) lookupTypeParam(name string) (types.TypeID, bool) {
	for i := len(p.tpScopes) - 1; i >= 0; i-- {
		if id, ok := p.tpScopes[i][name]; ok {
			return id, true
		}
	}
	return types.NoTypeID, false
}

// parseTypeString parses a full type expression and requires it to consume
// the whole input. The returned refs are the by-name references the type
// mentions, for the caller to validate against its declarations.
func parseTypeString(src string, file source.FileID, ti *types.Interner, strs *source.Interner) (types.TypeID, []refUse, *parseError) {
	p := newTypeParser(src, file, ti, strs)
	ty := p.parseType()
	if p.err == nil {
		if t := p.sc.next(); t.kind != tokEOF {
			p.fail(t, "unexpected trailing '%s'", t.text)
		}
	}
	if p.err != nil {
		return types.NoTypeID, nil, p.err
	}
	return ty, p.refs, nil
}

func (p *typeParser) parseType() types.TypeID {
	first := p.parseIntersection()
	if p.err != nil {
		return types.NoTypeID
	}
	if !p.sc.peek().is(tokPunct, "|") {
		return first
	}
	members := []types.TypeID{first}
	for p.sc.peek().is(tokPunct, "|") {
		p.sc.next()
		members = append(members, p.parseIntersection())
		if p.err != nil {
			return types.NoTypeID
		}
	}
	return p.ti.NewUnion(members)
}

func (p *typeParser) parseIntersection() types.TypeID {
	first := p.parsePostfix()
	if p.err != nil {
		return types.NoTypeID
	}
	if !p.sc.peek().is(tokPunct, "&") {
		return first
	}
	members := []types.TypeID{first}
	for p.sc.peek().is(tokPunct, "&") {
		p.sc.next()
		members = append(members, p.parsePostfix())
		if p.err != nil {
			return types.NoTypeID
		}
	}
	return p.ti.NewIntersection(members)
}

// parsePostfix handles the [] array suffix and [K] indexed access.
func (p *typeParser) parsePostfix() types.TypeID {
	ty := p.parsePrimary()
	for p.err == nil && p.sc.peek().is(tokPunct, "[") {
		p.sc.next()
		if p.sc.peek().is(tokPunct, "]") {
			p.sc.next()
			ty = p.ti.ArrayOf(ty)
			continue
		}
		index := p.parseType()
		p.expectPunct("]")
		if p.err != nil {
			return types.NoTypeID
		}
		ty = p.ti.RegisterIndexedAccess(ty, index)
	}
	return ty
}

func (p *typeParser) parsePrimary() types.TypeID {
	t := p.sc.peek()
	switch t.kind {
	case tokNumber:
		p.sc.next()
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return p.fail(t, "bad number literal '%s'", t.text)
		}
		return p.ti.NumberLit(v, true)
	case tokString:
		p.sc.next()
		return p.ti.StringLit(p.strs.Intern(t.text), true)
	case tokPunct:
		switch t.text {
		case "(":
			if p.looksLikeFnParams() {
				return p.parseFnTail(nil, false)
			}
			p.sc.next()
			inner := p.parseType()
			p.expectPunct(")")
			return inner
		case "<":
			tps, scope := p.parseTypeParamList()
			p.pushTypeParams(scope)
			defer p.popTypeParams()
			return p.parseFnTail(tps, false)
		case "[":
			return p.parseTuple()
		case "{":
			return p.parseTypeLit()
		}
		return p.fail(t, "unexpected '%s' in type", t.text)
	case tokIdent:
		return p.parseNamedType()
	}
	return p.fail(t, "unexpected end of type expression")
}

// looksLikeFnParams decides between a parameter list and a parenthesized
// type by inspecting the tokens just after the open paren.
func (p *typeParser) looksLikeFnParams() bool {
	if p.sc.peekAt(1).is(tokPunct, ")") {
		return true
	}
	if p.sc.peekAt(1).is(tokPunct, "...") {
		return true
	}
	if p.sc.peekAt(1).kind == tokIdent {
		after := p.sc.peekAt(2)
		return after.is(tokPunct, ":") || after.is(tokPunct, "?")
	}
	return false
}

func (p *typeParser) parseNamedType() types.TypeID {
	t := p.sc.next()
	b := p.ti.Builtins()
	switch t.text {
	case "any":
		return b.Any
	case "unknown":
		return b.Unknown
	case "never":
		return b.Never
	case "void":
		return b.Void
	case "null":
		return b.Null
	case "undefined":
		return b.Undefined
	case "boolean":
		return b.Boolean
	case "number":
		return b.Number
	case "string":
		return b.String
	case "symbol":
		return b.Symbol
	case "this":
		return b.This
	case "true":
		return p.ti.BoolLit(true, true)
	case "false":
		return p.ti.BoolLit(false, true)
	case "new", "abstract":
		abstract := false
		if t.text == "abstract" {
			abstract = true
			t = p.sc.next()
			if !t.is(tokIdent, "new") {
				return p.fail(t, "expected 'new' after 'abstract'")
			}
		}
		var tps []types.TypeID
		if p.sc.peek().is(tokPunct, "<") {
			var scope map[string]types.TypeID
			tps, scope = p.parseTypeParamList()
			p.pushTypeParams(scope)
			defer p.popTypeParams()
		}
		return p.parseFnTail(tps, true, abstract)
	}
	if id, ok := p.lookupTypeParam(t.text); ok {
		return id
	}
	name := p.strs.Intern(t.text)
	var args []types.TypeID
	if p.sc.peek().is(tokPunct, "<") {
		p.sc.next()
		for {
			args = append(args, p.parseType())
			if p.err != nil {
				return types.NoTypeID
			}
			if p.sc.peek().is(tokPunct, ",") {
				p.sc.next()
				continue
			}
			break
		}
		p.expectPunct(">")
	}
	p.refs = append(p.refs, refUse{name: name, args: len(args), span: p.sc.spanFrom(t)})
	return p.ti.RegisterRef(name, args)
}

// parseFnTail parses "(params) => ret" with the type parameters already in
// scope. The variadic abstract flag only applies to constructor signatures.
func (p *typeParser) parseFnTail(tps []types.TypeID, ctor bool, abstract ...bool) types.TypeID {
	params := p.parseParams()
	p.expectPunct("=>")
	ret := p.parseReturnType()
	if p.err != nil {
		return types.NoTypeID
	}
	if ctor {
		isAbstract := len(abstract) > 0 && abstract[0]
		return p.ti.RegisterCtor(tps, params, ret, isAbstract)
	}
	return p.ti.RegisterFn(tps, params, ret)
}

func (p *typeParser) parseParams() []types.FnParam {
	p.expectPunct("(")
	var params []types.FnParam
	for p.err == nil && !p.sc.peek().is(tokPunct, ")") {
		params = append(params, p.parseParam())
		if p.sc.peek().is(tokPunct, ",") {
			p.sc.next()
		}
	}
	p.expectPunct(")")
	return params
}

func (p *typeParser) parseParam() types.FnParam {
	if p.sc.peek().is(tokPunct, "...") {
		p.sc.next()
		name := p.sc.next()
		if name.kind != tokIdent {
			p.fail(name, "expected rest parameter name")
			return types.FnParam{}
		}
		p.expectPunct(":")
		ty := p.parseType()
		return types.FnParam{Pat: types.PatRest, Name: p.strs.Intern(name.text), Ty: ty}
	}
	name := p.sc.next()
	if name.kind != tokIdent {
		p.fail(name, "expected parameter name, found '%s'", name.text)
		return types.FnParam{}
	}
	if name.text == "this" && p.sc.peek().is(tokPunct, ":") {
		p.sc.next()
		ty := p.parseType()
		return types.FnParam{Pat: types.PatThis, Name: p.strs.Intern("this"), Ty: ty}
	}
	optional := false
	if p.sc.peek().is(tokPunct, "?") {
		p.sc.next()
		optional = true
	}
	p.expectPunct(":")
	ty := p.parseType()
	return types.FnParam{
		Pat:      types.PatIdent,
		Name:     p.strs.Intern(name.text),
		Ty:       ty,
		Required: !optional,
	}
}

// parseReturnType handles the "param is Type" predicate form in return
// position, falling back to an ordinary type.
func (p *typeParser) parseReturnType() types.TypeID {
	if p.sc.peek().kind == tokIdent && p.sc.peekAt(1).is(tokIdent, "is") {
		subject := p.sc.next()
		p.sc.next()
		asserted := p.parseType()
		if p.err != nil {
			return types.NoTypeID
		}
		return p.ti.RegisterPredicate(p.strs.Intern(subject.text), asserted)
	}
	return p.parseType()
}

// parseTypeParamList parses "<T, U extends X, V = D>" and registers each
// parameter, returning both the IDs and the name scope for body parsing.
func (p *typeParser) parseTypeParamList() ([]types.TypeID, map[string]types.TypeID) {
	p.expectPunct("<")
	var ids []types.TypeID
	scope := make(map[string]types.TypeID, 2)
	for p.err == nil {
		name := p.sc.next()
		if name.kind != tokIdent {
			p.fail(name, "expected type parameter name")
			break
		}
		constraint := types.NoTypeID
		def := types.NoTypeID
		if p.sc.peek().is(tokIdent, "extends") {
			p.sc.next()
			constraint = p.parseType()
		}
		if p.sc.peek().is(tokPunct, "=") {
			p.sc.next()
			def = p.parseType()
		}
		id := p.ti.RegisterTypeParam(p.strs.Intern(name.text), constraint, def)
		ids = append(ids, id)
		scope[name.text] = id
		if p.sc.peek().is(tokPunct, ",") {
			p.sc.next()
			continue
		}
		break
	}
	p.expectPunct(">")
	return ids, scope
}

func (p *typeParser) parseTuple() types.TypeID {
	p.expectPunct("[")
	var elems []types.TupleElem
	for p.err == nil && !p.sc.peek().is(tokPunct, "]") {
		var elem types.TupleElem
		if p.sc.peek().is(tokPunct, "...") {
			p.sc.next()
			elem.Rest = true
			elem.Ty = p.parsePostfix()
			if p.err == nil && p.ti.Kind(elem.Ty) != types.KindArray {
				p.fail(p.sc.peek(), "tuple rest element must be an array type")
			}
		} else {
			elem.Ty = p.parseType()
			if p.sc.peek().is(tokPunct, "?") {
				p.sc.next()
				elem.Optional = true
			}
		}
		elems = append(elems, elem)
		if p.sc.peek().is(tokPunct, ",") {
			p.sc.next()
		}
	}
	p.expectPunct("]")
	if p.err != nil {
		return types.NoTypeID
	}
	return p.ti.RegisterTuple(elems)
}

func (p *typeParser) parseTypeLit() types.TypeID {
	p.expectPunct("{")
	var members []types.Member
	for p.err == nil && !p.sc.peek().is(tokPunct, "}") {
		members = append(members, p.parseMember(false))
		for p.sc.peek().is(tokPunct, ";") || p.sc.peek().is(tokPunct, ",") {
			p.sc.next()
		}
	}
	p.expectPunct("}")
	if p.err != nil {
		return types.NoTypeID
	}
	return p.ti.RegisterTypeLit(members)
}

// parseMember parses one interface/class/type-literal member declaration:
// call and construct signatures, methods (optionally generic), and
// properties. allowStatic admits the class-only "static" prefix.
func (p *typeParser) parseMember(allowStatic bool) types.Member {
	var m types.Member
	if allowStatic && p.sc.peek().is(tokIdent, "static") && !p.sc.peekAt(1).is(tokPunct, ":") {
		p.sc.next()
		m = p.parseMember(false)
		m.Static = true
		return m
	}

	t := p.sc.peek()
	switch {
	case t.is(tokIdent, "new") && (p.sc.peekAt(1).is(tokPunct, "(") || p.sc.peekAt(1).is(tokPunct, "<")):
		p.sc.next()
		m.Kind = types.MemberCtor
		m.Ty = p.parseSignature(true)
		return m
	case t.is(tokPunct, "(") || t.is(tokPunct, "<"):
		m.Kind = types.MemberCall
		m.Ty = p.parseSignature(false)
		return m
	case t.kind == tokIdent:
		p.sc.next()
		m.Name = p.strs.Intern(t.text)
		if p.sc.peek().is(tokPunct, "?") {
			p.sc.next()
			m.Optional = true
		}
		if p.sc.peek().is(tokPunct, "(") || p.sc.peek().is(tokPunct, "<") {
			m.Kind = types.MemberMethod
			m.Ty = p.parseSignature(false)
			return m
		}
		p.expectPunct(":")
		m.Kind = types.MemberProperty
		m.Ty = p.parseType()
		return m
	}
	p.fail(t, "expected a member declaration, found '%s'", t.text)
	return m
}

// parseSignature parses "(params): ret" or "<T>(params): ret" as used in
// member position, where the return type follows a colon.
func (p *typeParser) parseSignature(ctor bool) types.TypeID {
	var tps []types.TypeID
	if p.sc.peek().is(tokPunct, "<") {
		var scope map[string]types.TypeID
		tps, scope = p.parseTypeParamList()
		p.pushTypeParams(scope)
		defer p.popTypeParams()
	}
	params := p.parseParams()
	p.expectPunct(":")
	ret := p.parseReturnType()
	if p.err != nil {
		return types.NoTypeID
	}
	if ctor {
		return p.ti.RegisterCtor(tps, params, ret, false)
	}
	return p.ti.RegisterFn(tps, params, ret)
}
