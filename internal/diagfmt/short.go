package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"quill/internal/driver"
)

type shortLine struct {
	severity string
	code     string
	path     string
	line     uint32
	col      uint32
	message  string
}

// Short renders every diagnostic across all results as one line:
//
//	<severity> <CODE> <path>:<line>:<col> <message>
//
// Lines are sorted by position so the output is stable regardless of check
// order, which makes it suitable for grepping, editor quickfix lists, and
// golden assertions. Clean files produce no output at all.
func Short(w io.Writer, results []*driver.FileResult, opts ShortOpts) {
	var lines []shortLine
	for _, res := range results {
		for _, d := range res.Diags {
			lines = append(lines, shortLine{
				severity: strings.ToLower(d.Severity.String()),
				code:     d.Code.ID(),
				path:     displayPath(d.File, opts.PathMode),
				line:     d.Line,
				col:      d.Col,
				message:  flattenMessage(d.Message),
			})
			if !opts.IncludeNotes {
				continue
			}
			for _, n := range d.Notes {
				lines = append(lines, shortLine{
					severity: "note",
					code:     d.Code.ID(),
					path:     displayPath(n.File, opts.PathMode),
					line:     n.Line,
					col:      n.Col,
					message:  flattenMessage(n.Message),
				})
			}
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		li, lj := lines[i], lines[j]
		if li.path != lj.path {
			return li.path < lj.path
		}
		if li.line != lj.line {
			return li.line < lj.line
		}
		if li.col != lj.col {
			return li.col < lj.col
		}
		if li.severity != lj.severity {
			return li.severity < lj.severity
		}
		if li.code != lj.code {
			return li.code < lj.code
		}
		return li.message < lj.message
	})

	for _, l := range lines {
		fmt.Fprintf(w, "%s %s %s:%d:%d %s\n", l.severity, l.code, l.path, l.line, l.col, l.message)
	}
}

// flattenMessage collapses multi-line messages onto one line so every entry
// stays one-line-per-diagnostic.
func flattenMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
