package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quill/internal/diag"
	"quill/internal/driver"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	pathColor = color.New(color.Bold)
	okColor   = color.New(color.FgGreen)
	dimColor  = color.New(color.Faint)
)

// Pretty renders check results in a human-readable form, one line per
// diagnostic:
//
//	<path>:<line>:<col>: <SEV> [<CODE>]: <message>
//
// followed by indented notes when ShowNotes is set. Passing files print a
// single "ok" line unless Quiet is set.
func Pretty(w io.Writer, results []*driver.FileResult, opts PrettyOpts) {
	for _, res := range results {
		prettyFile(w, res, opts)
	}
	prettySummary(w, results, opts)
}

func prettyFile(w io.Writer, res *driver.FileResult, opts PrettyOpts) {
	if len(res.Diags) == 0 {
		if !opts.Quiet {
			status := paint(opts, okColor, "ok")
			if res.FromCache {
				status += paint(opts, dimColor, " (cached)")
			}
			fmt.Fprintf(w, "%s  %s  %d cases\n", status, displayPath(res.Path, opts.PathMode), res.Cases)
		}
		return
	}
	for _, d := range res.Diags {
		prettyDiag(w, d, opts)
	}
}

func prettyDiag(w io.Writer, d driver.FlatDiag, opts PrettyOpts) {
	loc := displayPath(d.File, opts.PathMode)
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", loc, d.Line, d.Col)
	}
	line := fmt.Sprintf("%s: %s [%s]: %s",
		paint(opts, pathColor, loc),
		paint(opts, sevColor(d.Severity), d.Severity.String()),
		d.Code.ID(),
		d.Message,
	)
	fmt.Fprintln(w, clip(line, opts.Width))
	if opts.ShowNotes {
		for _, n := range d.Notes {
			note := fmt.Sprintf("  note: %s", n.Message)
			if n.File != "" && n.Line > 0 {
				note = fmt.Sprintf("%s (%s:%d:%d)", note, displayPath(n.File, opts.PathMode), n.Line, n.Col)
			}
			fmt.Fprintln(w, clip(note, opts.Width))
		}
	}
}

func prettySummary(w io.Writer, results []*driver.FileResult, opts PrettyOpts) {
	files := len(results)
	cases := 0
	failed := 0
	errors := 0
	for _, res := range results {
		cases += res.Cases
		errors += res.ErrorCount()
		if res.HasErrors() {
			failed++
		}
	}
	if failed == 0 {
		fmt.Fprintf(w, "%s: %d files, %d cases\n", paint(opts, okColor, "PASS"), files, cases)
		return
	}
	fmt.Fprintf(w, "%s: %d of %d files failed, %d errors\n",
		paint(opts, errColor, "FAIL"), failed, files, errors)
}

func sevColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

func paint(opts PrettyOpts, c *color.Color, s string) string {
	if !opts.Color {
		return s
	}
	return c.Sprint(s)
}

func displayPath(path string, mode PathMode) string {
	if mode == PathModeBasename {
		return filepath.Base(path)
	}
	return path
}

// clip truncates a rendered line to the configured terminal width, honoring
// wide runes.
func clip(line string, width int) string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return line
	}
	if width <= 3 {
		return runewidth.Truncate(line, width, "")
	}
	return runewidth.Truncate(line, width-3, "...")
}
