// Package checker implements call and construct signature resolution for a
// structurally typed JavaScript superset: candidate extraction over the type
// algebra, overload ranking, generic inference with guarded re-evaluation of
// callback arguments, and type-predicate narrowing.
package checker

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

// ExtractKind selects between call and construct resolution.
type ExtractKind uint8

const (
	ExtractCall ExtractKind = iota
	ExtractNew
)

func (k ExtractKind) String() string {
	if k == ExtractNew {
		return "new"
	}
	return "call"
}

// Checker resolves call expressions against the fixture's declarations.
// It is single threaded; the driver creates one Checker per fixture file.
type Checker struct {
	exprs    *ast.Exprs
	types    *types.Interner
	strs     *source.Interner
	reporter diag.Reporter
	env      *Env

	scopes []scopeFrame

	// facts holds narrowed identifier types established by type-predicate
	// guards. They persist across call expressions within one fixture and are
	// shadowed by scope-local bindings such as callback parameters.
	facts map[source.StringID]types.TypeID

	// arityUnknown is per-call-site scratch state: set when a spread of
	// statically unknown length was expanded, consulted by candidate
	// classification to relax hard mismatches to MayBe. Saved and restored
	// around every nested call.
	arityUnknown bool

	// reevaluating guards the second pass per call expression so patched
	// callback parameters trigger at most one re-entry.
	reevaluating map[ast.ExprID]bool

	// paramPatch overrides the implicit-any parameter types of inline
	// function literals once generic inference makes them concrete. AST
	// nodes are shared and never mutated in place.
	paramPatch map[paramPatchKey]types.TypeID

	instCache map[instKey]types.TypeID

	// callAnn records the contextual type annotation per top-level call so
	// the guarded re-evaluation pass sees the same context as the first pass.
	callAnn map[ast.ExprID]types.TypeID

	// arrayElem remembers the element type of each Array<T> instantiation so
	// iterator extraction can see through the materialized interface.
	arrayElem map[types.TypeID]types.TypeID

	exprDepth int
}

type paramPatchKey struct {
	fn    ast.ExprID
	param int
}

type instKey struct {
	decl types.TypeID
	args string
}

// New constructs a Checker over the given arenas. The reporter receives all
// diagnostics; resolution never fails hard.
func New(exprs *ast.Exprs, ti *types.Interner, strs *source.Interner, env *Env, reporter diag.Reporter) *Checker {
	return &Checker{
		exprs:        exprs,
		types:        ti,
		strs:         strs,
		reporter:     reporter,
		env:          env,
		facts:        make(map[source.StringID]types.TypeID),
		reevaluating: make(map[ast.ExprID]bool),
		paramPatch:   make(map[paramPatchKey]types.TypeID),
		instCache:    make(map[instKey]types.TypeID),
		arrayElem:    make(map[types.TypeID]types.TypeID),
	}
}

// Types exposes the type interner, mainly for tests and the driver.
func (c *Checker) Types() *types.Interner { return c.types }

// Env exposes the environment.
func (c *Checker) Env() *Env { return c.env }

func (c *Checker) report(code diag.Code, span source.Span, format string, args ...interface{}) {
	if c.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportError(c.reporter, code, span, msg); b != nil {
		b.Emit()
	}
}

func (c *Checker) reportWarning(code diag.Code, span source.Span, format string, args ...interface{}) {
	if c.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportWarning(c.reporter, code, span, msg); b != nil {
		b.Emit()
	}
}

func (c *Checker) typeLabel(id types.TypeID) string {
	return c.types.Format(id, c.strs)
}

func (c *Checker) lookupName(id source.StringID) string {
	s, ok := c.strs.Lookup(id)
	if !ok {
		return ""
	}
	return s
}
