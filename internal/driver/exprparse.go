package driver

import (
	"fmt"
	"strconv"

	"quill/internal/ast"
	"quill/internal/source"
	"quill/internal/types"
)

// exprParser parses the call-expression text of a fixture case: identifiers,
// literals, member access, call and new expressions with optional type
// arguments, spread arguments, parenthesized expressions and arrow literals.
// Type annotations inside arrows reuse the type parser on the same scanner.
type exprParser struct {
	sc    *scanner
	exprs *ast.Exprs
	tp    *typeParser
	strs  *source.Interner

	err *parseError
}

func newExprParser(src string, file source.FileID, exprs *ast.Exprs, ti *types.Interner, strs *source.Interner) *exprParser {
	sc := newScanner(src, file)
	return &exprParser{
		sc:    sc,
		exprs: exprs,
		tp:    &typeParser{sc: sc, ti: ti, strs: strs},
		strs:  strs,
	}
}

func (p *exprParser) fail(at token, format string, args ...interface{}) {
	if p.err == nil && p.tp.err == nil {
		p.err = &parseError{msg: fmt.Sprintf(format, args...), span: p.sc.spanFrom(at)}
	}
}

func (p *exprParser) failed() bool {
	if p.err == nil && p.tp.err != nil {
		p.err = p.tp.err
	}
	return p.err != nil
}

func (p *exprParser) expectPunct(text string) token {
	t := p.sc.next()
	if !t.is(tokPunct, text) {
		p.fail(t, "expected '%s', found '%s'", text, t.text)
	}
	return t
}

func (p *exprParser) span(from, to token) source.Span {
	return source.Span{File: p.sc.file, Start: from.pos, End: to.end}
}

// parseExprString parses a complete expression, requiring the whole input to
// be consumed. The returned refs are the by-name type references embedded in
// annotations and type-argument lists, for the caller to validate.
func parseExprString(src string, file source.FileID, exprs *ast.Exprs, ti *types.Interner, strs *source.Interner) (ast.ExprID, []refUse, *parseError) {
	p := newExprParser(src, file, exprs, ti, strs)
	id := p.parseExpr()
	if !p.failed() {
		if t := p.sc.next(); t.kind != tokEOF {
			p.fail(t, "unexpected trailing '%s'", t.text)
		}
	}
	if p.failed() {
		return ast.NoExprID, nil, p.err
	}
	return id, p.tp.refs, nil
}

func (p *exprParser) parseExpr() ast.ExprID {
	if p.arrowAhead() {
		return p.parseArrow()
	}
	return p.parsePostfix(p.parsePrimary())
}

// arrowAhead reports whether the upcoming tokens form an arrow literal:
// either a lone identifier followed by "=>", or a balanced parameter list
// followed by an optional return annotation and "=>".
func (p *exprParser) arrowAhead() bool {
	t := p.sc.peek()
	if t.kind == tokIdent && p.sc.peekAt(1).is(tokPunct, "=>") {
		return true
	}
	if !t.is(tokPunct, "(") {
		return false
	}
	depth := 0
	for i := 0; ; i++ {
		tok := p.sc.peekAt(i)
		switch {
		case tok.kind == tokEOF:
			return false
		case tok.is(tokPunct, "("):
			depth++
		case tok.is(tokPunct, ")"):
			depth--
			if depth == 0 {
				next := p.sc.peekAt(i + 1)
				if next.is(tokPunct, "=>") {
					return true
				}
				// "(...)" ":" ret "=>" — skip the annotation.
				return next.is(tokPunct, ":") && p.retAnnThenArrow(i+2)
			}
		}
	}
}

// retAnnThenArrow scans past a return annotation starting at token index i
// and reports whether "=>" follows at nesting depth zero.
func (p *exprParser) retAnnThenArrow(i int) bool {
	depth := 0
	for ; ; i++ {
		tok := p.sc.peekAt(i)
		switch {
		case tok.kind == tokEOF:
			return false
		case tok.is(tokPunct, "(") || tok.is(tokPunct, "[") || tok.is(tokPunct, "{") || tok.is(tokPunct, "<"):
			depth++
		case tok.is(tokPunct, ")") || tok.is(tokPunct, "]") || tok.is(tokPunct, "}") || tok.is(tokPunct, ">"):
			depth--
		case tok.is(tokPunct, "=>") && depth == 0:
			return true
		}
	}
}

func (p *exprParser) parseArrow() ast.ExprID {
	start := p.sc.peek()
	var params []ast.Param

	if start.kind == tokIdent {
		name := p.sc.next()
		params = append(params, ast.Param{
			Name: p.strs.Intern(name.text),
			Ann:  types.NoTypeID,
			Span: p.sc.spanFrom(name),
		})
	} else {
		p.expectPunct("(")
		for !p.failed() && !p.sc.peek().is(tokPunct, ")") {
			params = append(params, p.parseArrowParam())
			if p.sc.peek().is(tokPunct, ",") {
				p.sc.next()
			}
		}
		p.expectPunct(")")
	}

	retAnn := types.NoTypeID
	if p.sc.peek().is(tokPunct, ":") {
		p.sc.next()
		retAnn = p.tp.parseType()
	}
	arrow := p.expectPunct("=>")
	if p.failed() {
		return ast.NoExprID
	}
	body := p.parseExpr()
	if p.failed() {
		return ast.NoExprID
	}
	return p.exprs.NewArrow(params, body, retAnn, p.span(start, arrow))
}

func (p *exprParser) parseArrowParam() ast.Param {
	rest := false
	if p.sc.peek().is(tokPunct, "...") {
		p.sc.next()
		rest = true
	}
	name := p.sc.next()
	if name.kind != tokIdent {
		p.fail(name, "expected parameter name, found '%s'", name.text)
		return ast.Param{}
	}
	optional := false
	if p.sc.peek().is(tokPunct, "?") {
		p.sc.next()
		optional = true
	}
	ann := types.NoTypeID
	if p.sc.peek().is(tokPunct, ":") {
		p.sc.next()
		ann = p.tp.parseType()
	}
	return ast.Param{
		Name:     p.strs.Intern(name.text),
		Ann:      ann,
		Optional: optional,
		Rest:     rest,
		Span:     p.sc.spanFrom(name),
	}
}

func (p *exprParser) parsePrimary() ast.ExprID {
	t := p.sc.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			p.fail(t, "bad number literal '%s'", t.text)
			return ast.NoExprID
		}
		return p.exprs.NewNumberLit(v, p.sc.spanFrom(t))
	case tokString:
		return p.exprs.NewStringLit(p.strs.Intern(t.text), p.sc.spanFrom(t))
	case tokIdent:
		switch t.text {
		case "true", "false":
			return p.exprs.NewBoolLit(t.text == "true", p.sc.spanFrom(t))
		case "new":
			return p.parseNew(t)
		}
		return p.exprs.NewIdent(p.strs.Intern(t.text), p.sc.spanFrom(t))
	case tokPunct:
		if t.text == "(" {
			inner := p.parseExpr()
			close := p.expectPunct(")")
			if p.failed() {
				return ast.NoExprID
			}
			return p.exprs.NewParen(inner, p.span(t, close))
		}
	}
	p.fail(t, "unexpected '%s' in expression", t.text)
	return ast.NoExprID
}

// parseNew parses "new Callee<T>(args)". The callee is a primary with member
// access but without call suffixes, so "new a.B(x)" constructs a.B.
func (p *exprParser) parseNew(kw token) ast.ExprID {
	callee := p.parsePrimary()
	for !p.failed() && p.sc.peek().is(tokPunct, ".") {
		p.sc.next()
		name := p.sc.next()
		if name.kind != tokIdent {
			p.fail(name, "expected property name after '.'")
			return ast.NoExprID
		}
		callee = p.exprs.NewMember(callee, p.strs.Intern(name.text), p.sc.spanFrom(name))
	}
	typeArgs := p.parseTypeArgs()
	args, close := p.parseArgs()
	if p.failed() {
		return ast.NoExprID
	}
	return p.exprs.NewNew(callee, args, typeArgs, p.span(kw, close))
}

func (p *exprParser) parsePostfix(id ast.ExprID) ast.ExprID {
	for !p.failed() {
		t := p.sc.peek()
		switch {
		case t.is(tokPunct, "."):
			p.sc.next()
			name := p.sc.next()
			if name.kind != tokIdent {
				p.fail(name, "expected property name after '.'")
				return ast.NoExprID
			}
			id = p.exprs.NewMember(id, p.strs.Intern(name.text), p.sc.spanFrom(name))
		case t.is(tokPunct, "("):
			args, close := p.parseArgs()
			if p.failed() {
				return ast.NoExprID
			}
			id = p.exprs.NewCall(id, args, nil, p.span(t, close))
		case t.is(tokPunct, "<") && p.typeArgsAhead():
			typeArgs := p.parseTypeArgs()
			open := p.sc.peek()
			args, close := p.parseArgs()
			if p.failed() {
				return ast.NoExprID
			}
			id = p.exprs.NewCall(id, args, typeArgs, p.span(open, close))
		default:
			return id
		}
	}
	return ast.NoExprID
}

// typeArgsAhead distinguishes "f<T>(x)" from a stray '<' by scanning for a
// matching '>' immediately followed by '('.
func (p *exprParser) typeArgsAhead() bool {
	depth := 0
	for i := 0; ; i++ {
		tok := p.sc.peekAt(i)
		switch {
		case tok.kind == tokEOF:
			return false
		case tok.is(tokPunct, "<"):
			depth++
		case tok.is(tokPunct, ">"):
			depth--
			if depth == 0 {
				return p.sc.peekAt(i + 1).is(tokPunct, "(")
			}
		}
	}
}

func (p *exprParser) parseTypeArgs() []types.TypeID {
	if !p.sc.peek().is(tokPunct, "<") {
		return nil
	}
	p.sc.next()
	var args []types.TypeID
	for {
		args = append(args, p.tp.parseType())
		if p.failed() {
			return nil
		}
		if p.sc.peek().is(tokPunct, ",") {
			p.sc.next()
			continue
		}
		break
	}
	p.expectPunct(">")
	return args
}

func (p *exprParser) parseArgs() ([]ast.Arg, token) {
	p.expectPunct("(")
	var args []ast.Arg
	for !p.failed() && !p.sc.peek().is(tokPunct, ")") {
		start := p.sc.peek()
		spread := false
		if start.is(tokPunct, "...") {
			p.sc.next()
			spread = true
		}
		expr := p.parseExpr()
		if p.failed() {
			return nil, token{}
		}
		end := p.lastConsumedEnd(start)
		args = append(args, ast.Arg{
			Expr:   expr,
			Spread: spread,
			Span:   source.Span{File: p.sc.file, Start: start.pos, End: end},
		})
		if p.sc.peek().is(tokPunct, ",") {
			p.sc.next()
		}
	}
	close := p.expectPunct(")")
	return args, close
}

// lastConsumedEnd approximates the end offset of the argument that began at
// start: everything up to the next unconsumed token.
func (p *exprParser) lastConsumedEnd(start token) uint32 {
	next := p.sc.peek()
	if next.pos > start.pos {
		return next.pos
	}
	return start.end
}
