package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"quill/internal/checker"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

// FlatDiag is one diagnostic resolved to line/column positions. Unlike
// diag.Diagnostic it does not reference a FileSet, so results survive
// serialization into the disk cache.
type FlatDiag struct {
	Code     diag.Code     `msgpack:"c"`
	Severity diag.Severity `msgpack:"s"`
	Message  string        `msgpack:"m"`
	File     string        `msgpack:"f"`
	Line     uint32        `msgpack:"l"`
	Col      uint32        `msgpack:"o"`
	EndLine  uint32        `msgpack:"el"`
	EndCol   uint32        `msgpack:"eo"`
	Notes    []FlatNote    `msgpack:"n,omitempty"`
}

type FlatNote struct {
	Message string `msgpack:"m"`
	File    string `msgpack:"f"`
	Line    uint32 `msgpack:"l"`
	Col     uint32 `msgpack:"o"`
}

// FileResult is the outcome of checking one fixture file.
type FileResult struct {
	Path      string     `msgpack:"p"`
	Cases     int        `msgpack:"n"`
	Diags     []FlatDiag `msgpack:"d"`
	FromCache bool       `msgpack:"-"`
}

// HasErrors reports whether any diagnostic reaches error severity.
func (r *FileResult) HasErrors() bool {
	for i := range r.Diags {
		if r.Diags[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// ErrorCount counts error-severity diagnostics.
func (r *FileResult) ErrorCount() int {
	n := 0
	for i := range r.Diags {
		if r.Diags[i].Severity >= diag.SevError {
			n++
		}
	}
	return n
}

// CheckFile loads and checks a single fixture file.
func CheckFile(path string, maxDiagnostics int) *FileResult {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the manifest
	if err != nil {
		return readFailure(path, err)
	}
	return checkContent(path, content, maxDiagnostics)
}

func readFailure(path string, err error) *FileResult {
	return &FileResult{Path: path, Diags: []FlatDiag{{
		Code:     diag.IoReadFailed,
		Severity: diag.SevError,
		Message:  fmt.Sprintf("failed to read %s: %v", path, err),
		File:     path,
	}}}
}

// swapReporter lets one long-lived Checker redirect its diagnostics into a
// fresh per-call bag, so each case's output can be matched against that
// case's expectations in isolation.
type swapReporter struct {
	r diag.Reporter
}

func (s *swapReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if s.r != nil {
		s.r.Report(code, sev, primary, msg, notes)
	}
}

// checkContent runs every call case of one fixture document against its
// declarations and matches the outcome against the fixture's expectations.
// Only expectation failures and syntax errors land in the result; checker
// diagnostics matched by a case's "diags" list are consumed.
func checkContent(path string, content []byte, maxDiagnostics int) *FileResult {
	fs := source.NewFileSet()
	fileID := fs.Add(path, content, 0)

	bag := diag.NewBag(maxDiagnostics)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	fx, ok := loadFixture(path, fileID, content, fs, reporter)
	if !ok {
		return &FileResult{Path: path, Diags: flatten(fs, bag)}
	}

	swap := &swapReporter{}
	chk := checker.New(fx.exprs, fx.ti, fx.strs, fx.env, swap)
	for i := range fx.doc.Calls {
		runCase(fx, chk, swap, maxDiagnostics, i)
	}

	bag.Sort()
	return &FileResult{Path: path, Cases: len(fx.doc.Calls), Diags: flatten(fs, bag)}
}

func runCase(fx *fixture, chk *checker.Checker, swap *swapReporter, maxDiagnostics, i int) {
	call := fx.doc.Calls[i]
	exprFile := fx.fs.AddVirtual(fmt.Sprintf("%s#calls[%d]", fx.path, i), []byte(call.Expr))
	exprSpan := source.Span{File: exprFile, End: safecast.MustConvert[uint32](len(call.Expr))}

	exprID, exprRefs, perr := parseExprString(call.Expr, exprFile, fx.exprs, fx.ti, fx.strs)
	if perr != nil {
		diag.ReportError(fx.reporter, diag.SynBadExpr, perr.span, perr.msg).Emit()
		return
	}
	fx.validateRefs(exprRefs)

	ann := types.NoTypeID
	if call.Ann != "" {
		annFile := fx.fs.AddVirtual(fmt.Sprintf("%s#calls[%d].ann", fx.path, i), []byte(call.Ann))
		ty, annRefs, aerr := parseTypeString(call.Ann, annFile, fx.ti, fx.strs)
		if aerr != nil {
			diag.ReportError(fx.reporter, diag.SynBadTypeExpr, aerr.span, aerr.msg).Emit()
			return
		}
		fx.validateRefs(annRefs)
		ann = ty
	}

	callBag := diag.NewBag(maxDiagnostics)
	swap.r = diag.BagReporter{Bag: callBag}
	got := chk.CheckCall(exprID, ann)
	swap.r = nil

	matchDiagExpectations(fx, call, callBag.Items(), exprSpan)

	if call.Expect != "" {
		expectFile := fx.fs.AddVirtual(fmt.Sprintf("%s#calls[%d].expect", fx.path, i), []byte(call.Expect))
		want, expectRefs, eerr := parseTypeString(call.Expect, expectFile, fx.ti, fx.strs)
		if eerr != nil {
			diag.ReportError(fx.reporter, diag.SynBadTypeExpr, eerr.span, eerr.msg).Emit()
			return
		}
		fx.validateRefs(expectRefs)
		gotStr := fx.ti.Format(got, fx.strs)
		wantStr := fx.ti.Format(want, fx.strs)
		if gotStr != wantStr {
			diag.ReportError(fx.reporter, diag.SemaResultTypeMismatch, exprSpan,
				fmt.Sprintf("expected the call to produce '%s', but it produced '%s'", wantStr, gotStr)).Emit()
		}
	}
}

// matchDiagExpectations compares the diagnostics a call produced against the
// fixture's declared expectations as a multiset of code IDs.
func matchDiagExpectations(fx *fixture, call callDoc, produced []diag.Diagnostic, exprSpan source.Span) {
	remaining := make(map[string]int, len(call.Diags))
	for _, id := range call.Diags {
		remaining[id]++
	}
	for _, d := range produced {
		id := d.Code.ID()
		if remaining[id] > 0 {
			remaining[id]--
			continue
		}
		diag.ReportError(fx.reporter, diag.SemaUnexpectedDiagnostic, d.Primary,
			fmt.Sprintf("call '%s' produced unexpected %s: %s", call.Expr, id, d.Message)).Emit()
	}
	// Report missing expectations in declaration order.
	for _, id := range call.Diags {
		if remaining[id] > 0 {
			remaining[id]--
			diag.ReportError(fx.reporter, diag.SemaMissingExpectedDiagnostic, exprSpan,
				fmt.Sprintf("call '%s' did not produce expected %s", call.Expr, id)).Emit()
		}
	}
}

func flatten(fs *source.FileSet, bag *diag.Bag) []FlatDiag {
	items := bag.Items()
	out := make([]FlatDiag, 0, len(items))
	for _, d := range items {
		start, end := fs.Resolve(d.Primary)
		fd := FlatDiag{
			Code:     d.Code,
			Severity: d.Severity,
			Message:  d.Message,
			File:     fs.Get(d.Primary.File).Path,
			Line:     start.Line,
			Col:      start.Col,
			EndLine:  end.Line,
			EndCol:   end.Col,
		}
		for _, n := range d.Notes {
			nStart, _ := fs.Resolve(n.Span)
			fd.Notes = append(fd.Notes, FlatNote{
				Message: n.Msg,
				File:    fs.Get(n.Span.File).Path,
				Line:    nStart.Line,
				Col:     nStart.Col,
			})
		}
		out = append(out, fd)
	}
	return out
}

// CheckFiles checks fixture files concurrently, consulting the disk cache
// when one is provided. Results are returned in input order.
func CheckFiles(ctx context.Context, paths []string, jobs, maxDiagnostics int, cache *DiskCache) ([]*FileResult, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]*FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(paths), 1)))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = CheckOne(path, maxDiagnostics, cache)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CheckOne checks a single fixture file, consulting and updating the cache
// when one is provided.
func CheckOne(path string, maxDiagnostics int, cache *DiskCache) *FileResult {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the manifest
	if err != nil {
		return readFailure(path, err)
	}
	if cache != nil {
		if res, ok, cerr := cache.Get(content); cerr == nil && ok {
			res.Path = path
			res.FromCache = true
			return res
		}
	}
	res := checkContent(path, content, maxDiagnostics)
	if cache != nil {
		if cerr := cache.Put(content, res); cerr != nil {
			res.Diags = append(res.Diags, FlatDiag{
				Code:     diag.IoCacheFailed,
				Severity: diag.SevWarning,
				Message:  fmt.Sprintf("failed to update the diagnostics cache: %v", cerr),
				File:     path,
			})
		}
	}
	return res
}
