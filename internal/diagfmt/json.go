package diagfmt

import (
	"encoding/json"
	"io"

	"quill/internal/driver"
)

type jsonDiag struct {
	Code     string     `json:"code"`
	Severity string     `json:"severity"`
	Message  string     `json:"message"`
	File     string     `json:"file"`
	Line     uint32     `json:"line,omitempty"`
	Col      uint32     `json:"col,omitempty"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

type jsonNote struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    uint32 `json:"line,omitempty"`
	Col     uint32 `json:"col,omitempty"`
}

type jsonFile struct {
	Path   string     `json:"path"`
	Cases  int        `json:"cases"`
	Cached bool       `json:"cached,omitempty"`
	Diags  []jsonDiag `json:"diagnostics"`
}

type jsonReport struct {
	Files  []jsonFile `json:"files"`
	Errors int        `json:"errors"`
}

// JSON renders check results as a single machine-readable document.
func JSON(w io.Writer, results []*driver.FileResult, opts JSONOpts) error {
	report := jsonReport{Files: make([]jsonFile, 0, len(results))}
	for _, res := range results {
		jf := jsonFile{
			Path:   displayPath(res.Path, opts.PathMode),
			Cases:  res.Cases,
			Cached: res.FromCache,
			Diags:  make([]jsonDiag, 0, len(res.Diags)),
		}
		for _, d := range res.Diags {
			jd := jsonDiag{
				Code:     d.Code.ID(),
				Severity: d.Severity.String(),
				Message:  d.Message,
				File:     displayPath(d.File, opts.PathMode),
				Line:     d.Line,
				Col:      d.Col,
			}
			if opts.IncludeNotes {
				for _, n := range d.Notes {
					jd.Notes = append(jd.Notes, jsonNote{
						Message: n.Message,
						File:    displayPath(n.File, opts.PathMode),
						Line:    n.Line,
						Col:     n.Col,
					})
				}
			}
			jf.Diags = append(jf.Diags, jd)
		}
		report.Files = append(report.Files, jf)
		report.Errors += res.ErrorCount()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
