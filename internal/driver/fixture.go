package driver

import (
	"encoding/json"
	"fmt"

	"fortio.org/safecast"

	"quill/internal/ast"
	"quill/internal/checker"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

// fixtureDoc is the JSON shape of a fixture file: a set of ambient
// declarations followed by the call expressions to check against them.
type fixtureDoc struct {
	Decls []declDoc `json:"decls"`
	Calls []callDoc `json:"calls"`
}

// declDoc declares one ambient name. Kind selects which fields apply:
// "value" and "alias" use Type; "interface" uses Extends and Members;
// "class" uses Super, Abstract, Ctors and Members. TypeParams is the
// comma-separated parameter list without the angle brackets.
type declDoc struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	TypeParams string   `json:"typeParams,omitempty"`
	Type       string   `json:"type,omitempty"`
	Extends    []string `json:"extends,omitempty"`
	Super      string   `json:"super,omitempty"`
	Abstract   bool     `json:"abstract,omitempty"`
	Ctors      []string `json:"ctors,omitempty"`
	Members    []string `json:"members,omitempty"`
}

// callDoc is one checked call: the expression text, an optional contextual
// type annotation, the expected result type, and the diagnostic codes the
// call is expected to produce (by ID, e.g. "SEM3007").
type callDoc struct {
	Expr   string   `json:"expr"`
	Ann    string   `json:"ann,omitempty"`
	Expect string   `json:"expect,omitempty"`
	Diags  []string `json:"diags,omitempty"`
}

// fixture is one loaded fixture file with its own type world: interner,
// environment, expression arena and checker are all per-fixture so cases
// cannot observe each other's declarations.
type fixture struct {
	path     string
	file     source.FileID
	doc      fixtureDoc
	fs       *source.FileSet
	strs     *source.Interner
	ti       *types.Interner
	exprs    *ast.Exprs
	env      *checker.Env
	reporter diag.Reporter

	// tpScopes keeps each generic declaration's parameter scope alive
	// between the header and body registration phases.
	tpScopes map[string]map[string]types.TypeID

	// pendingRefs queues by-name references parsed out of declaration bodies;
	// they are validated once every declaration is registered.
	pendingRefs []refUse
}

// loadFixture decodes and registers a fixture document. A false return means
// the document was malformed beyond use; decl-level errors are reported but
// leave the fixture checkable.
func loadFixture(path string, file source.FileID, content []byte, fs *source.FileSet, reporter diag.Reporter) (*fixture, bool) {
	f := &fixture{
		path:     path,
		file:     file,
		fs:       fs,
		strs:     source.NewInterner(),
		reporter: reporter,
		tpScopes: make(map[string]map[string]types.TypeID),
	}
	if err := json.Unmarshal(content, &f.doc); err != nil {
		span := source.Span{File: file, End: safecast.MustConvert[uint32](len(content))}
		diag.ReportError(reporter, diag.SynBadFixture, span, fmt.Sprintf("malformed fixture document: %v", err)).Emit()
		return nil, false
	}
	f.ti = types.NewInterner()
	f.exprs = ast.NewExprs(64)
	f.env = checker.NewEnv(f.ti, f.strs)
	f.registerDecls()
	return f, true
}

// registerDecls runs in two phases so declarations may reference each other
// in any order: headers (names, type parameters) first, then bodies.
func (f *fixture) registerDecls() {
	ids := make(map[string]types.TypeID, len(f.doc.Decls))
	seen := make(map[string]bool, len(f.doc.Decls))
	dup := make(map[int]bool)

	for i, d := range f.doc.Decls {
		if d.Name == "" {
			f.reportDecl(i, "declaration %d has no name", i)
			continue
		}
		if seen[d.Name] {
			dup[i] = true
			diag.ReportError(f.reporter, diag.SynDuplicateDecl, f.fileSpan(),
				fmt.Sprintf("declaration '%s' is declared more than once", d.Name)).Emit()
			continue
		}
		seen[d.Name] = true
		switch d.Kind {
		case "interface":
			tps, scope := f.parseTypeParams(i, d.TypeParams)
			id := f.ti.RegisterInterface(f.strs.Intern(d.Name), tps)
			f.env.DeclareType(f.strs.Intern(d.Name), id)
			ids[d.Name] = id
			f.tpScopes[d.Name] = scope
		case "class":
			tps, scope := f.parseTypeParams(i, d.TypeParams)
			id := f.ti.RegisterClass(f.strs.Intern(d.Name), tps, d.Abstract)
			f.env.DeclareType(f.strs.Intern(d.Name), id)
			f.env.DeclareValue(f.strs.Intern(d.Name), id)
			ids[d.Name] = id
			f.tpScopes[d.Name] = scope
		case "value", "alias":
			// Body phase only.
		default:
			f.reportDecl(i, "declaration '%s' has unknown kind '%s'", d.Name, d.Kind)
		}
	}

	for i, d := range f.doc.Decls {
		if dup[i] {
			continue
		}
		scope := f.tpScopes[d.Name]
		switch d.Kind {
		case "value":
			if ty, ok := f.parseType(i, "type", d.Type, nil); ok {
				f.env.DeclareValue(f.strs.Intern(d.Name), ty)
			}
		case "alias":
			if ty, ok := f.parseType(i, "type", d.Type, scope); ok {
				f.env.DeclareType(f.strs.Intern(d.Name), ty)
			}
		case "interface":
			id, ok := ids[d.Name]
			if !ok {
				continue
			}
			var extends []types.TypeID
			for _, e := range d.Extends {
				if ty, ok := f.parseType(i, "extends", e, scope); ok {
					extends = append(extends, ty)
				}
			}
			members := f.parseMembers(i, d.Members, scope, false)
			f.ti.SetInterfaceBody(id, extends, members)
		case "class":
			id, ok := ids[d.Name]
			if !ok {
				continue
			}
			super := types.NoTypeID
			if d.Super != "" {
				if ty, ok := f.parseType(i, "super", d.Super, scope); ok {
					super = ty
				}
			}
			var ctors []types.TypeID
			for _, c := range d.Ctors {
				if ty, ok := f.parseCtor(i, c, scope, d.Abstract); ok {
					ctors = append(ctors, ty)
				}
			}
			members := f.parseMembers(i, d.Members, scope, true)
			f.ti.SetClassBody(id, super, ctors, members)
		}
	}

	f.validateRefs(f.pendingRefs)
	f.pendingRefs = nil
}

// validateRefs checks recorded by-name references now that every declaration
// is registered: the name must resolve, and a reference may not apply more
// type arguments than the target declares.
func (f *fixture) validateRefs(refs []refUse) {
	for _, r := range refs {
		target, ok := f.env.TypeDecl(r.name)
		if !ok {
			diag.ReportError(f.reporter, diag.SynUnknownTypeName, r.span,
				fmt.Sprintf("unknown type name '%s'", f.strs.MustLookup(r.name))).Emit()
			continue
		}
		if limit := f.typeParamCount(target); r.args > limit {
			diag.ReportError(f.reporter, diag.SynBadTypeArity, r.span,
				fmt.Sprintf("'%s' accepts %d type arguments, but %d were given", f.strs.MustLookup(r.name), limit, r.args)).Emit()
		}
	}
}

func (f *fixture) typeParamCount(ty types.TypeID) int {
	switch f.ti.Kind(ty) {
	case types.KindInterface:
		if info, ok := f.ti.IfaceInfo(ty); ok {
			return len(info.TypeParams)
		}
	case types.KindClassDef:
		if info, ok := f.ti.ClassInfo(ty); ok {
			return len(info.TypeParams)
		}
	}
	return 0
}

func (f *fixture) reportDecl(i int, format string, args ...interface{}) {
	diag.ReportError(f.reporter, diag.SynBadFixture, f.fileSpan(), fmt.Sprintf(format, args...)).
		WithNote(source.Span{File: f.file}, fmt.Sprintf("in %s, decls[%d]", f.path, i)).
		Emit()
}

func (f *fixture) fileSpan() source.Span {
	file := f.fs.Get(f.file)
	return source.Span{File: f.file, End: safecast.MustConvert[uint32](len(file.Content))}
}

// snippet adds a virtual file for one embedded source string so its parse
// errors carry real spans.
func (f *fixture) snippet(i int, field, src string) source.FileID {
	name := fmt.Sprintf("%s#decls[%d].%s", f.path, i, field)
	return f.fs.AddVirtual(name, []byte(src))
}

func (f *fixture) parseType(i int, field, src string, scope map[string]types.TypeID) (types.TypeID, bool) {
	if src == "" {
		f.reportDecl(i, "declaration '%s' is missing its %s", f.doc.Decls[i].Name, field)
		return types.NoTypeID, false
	}
	file := f.snippet(i, field, src)
	p := newTypeParser(src, file, f.ti, f.strs)
	if scope != nil {
		p.pushTypeParams(scope)
	}
	ty := p.parseType()
	if p.err == nil {
		if t := p.sc.next(); t.kind != tokEOF {
			p.fail(t, "unexpected trailing '%s'", t.text)
		}
	}
	if p.err != nil {
		diag.ReportError(f.reporter, diag.SynBadTypeExpr, p.err.span, p.err.msg).Emit()
		return types.NoTypeID, false
	}
	f.pendingRefs = append(f.pendingRefs, p.refs...)
	return ty, true
}

// parseTypeParams parses a declaration's comma-separated type parameter list
// and returns both the registered IDs and the name scope for body parsing.
func (f *fixture) parseTypeParams(i int, src string) ([]types.TypeID, map[string]types.TypeID) {
	if src == "" {
		return nil, nil
	}
	wrapped := "<" + src + ">"
	file := f.snippet(i, "typeParams", wrapped)
	p := newTypeParser(wrapped, file, f.ti, f.strs)
	tps, scope := p.parseTypeParamList()
	if p.err != nil {
		diag.ReportError(f.reporter, diag.SynBadTypeExpr, p.err.span, p.err.msg).Emit()
		return nil, nil
	}
	f.pendingRefs = append(f.pendingRefs, p.refs...)
	return tps, scope
}

// parseCtor parses a constructor signature: "(params)" with an optional
// leading type parameter list and optional ": Instance" return. A missing
// return means the class's own instance type.
func (f *fixture) parseCtor(i int, src string, scope map[string]types.TypeID, abstract bool) (types.TypeID, bool) {
	file := f.snippet(i, "ctor", src)
	p := newTypeParser(src, file, f.ti, f.strs)
	if scope != nil {
		p.pushTypeParams(scope)
	}
	var tps []types.TypeID
	if p.sc.peek().is(tokPunct, "<") {
		var inner map[string]types.TypeID
		tps, inner = p.parseTypeParamList()
		p.pushTypeParams(inner)
	}
	params := p.parseParams()
	ret := types.NoTypeID
	if p.sc.peek().is(tokPunct, ":") {
		p.sc.next()
		ret = p.parseType()
	}
	if p.err == nil {
		if t := p.sc.next(); t.kind != tokEOF {
			p.fail(t, "unexpected trailing '%s'", t.text)
		}
	}
	if p.err != nil {
		diag.ReportError(f.reporter, diag.SynBadTypeExpr, p.err.span, p.err.msg).Emit()
		return types.NoTypeID, false
	}
	f.pendingRefs = append(f.pendingRefs, p.refs...)
	return f.ti.RegisterCtor(tps, params, ret, abstract), true
}

func (f *fixture) parseMembers(i int, decls []string, scope map[string]types.TypeID, allowStatic bool) []types.Member {
	var members []types.Member
	for _, src := range decls {
		file := f.snippet(i, "member", src)
		p := newTypeParser(src, file, f.ti, f.strs)
		if scope != nil {
			p.pushTypeParams(scope)
		}
		m := p.parseMember(allowStatic)
		if p.err == nil {
			if t := p.sc.next(); t.kind != tokEOF {
				p.fail(t, "unexpected trailing '%s'", t.text)
			}
		}
		if p.err != nil {
			diag.ReportError(f.reporter, diag.SynBadTypeExpr, p.err.span, p.err.msg).Emit()
			continue
		}
		f.pendingRefs = append(f.pendingRefs, p.refs...)
		members = append(members, m)
	}
	return members
}
