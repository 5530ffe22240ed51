package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/driver"
)

func sampleResults() []*driver.FileResult {
	return []*driver.FileResult{
		{Path: "fixtures/pass.json", Cases: 4},
		{Path: "fixtures/fail.json", Cases: 2, Diags: []driver.FlatDiag{{
			Code:     diag.SemaWrongArgType,
			Severity: diag.SevError,
			Message:  "argument of type 'number' is not assignable to parameter of type 'string'",
			File:     "fixtures/fail.json#calls[0]",
			Line:     1,
			Col:      7,
			Notes: []driver.FlatNote{{
				Message: "in fixtures/fail.json, calls[0]",
			}},
		}}},
	}
}

func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleResults(), PrettyOpts{ShowNotes: true})
	out := buf.String()

	for _, want := range []string{
		"ok  fixtures/pass.json  4 cases",
		"fixtures/fail.json#calls[0]:1:7: ERROR [SEM3011]:",
		"note: in fixtures/fail.json, calls[0]",
		"FAIL: 1 of 2 files failed, 1 errors",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrettyQuietHidesPassing(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleResults(), PrettyOpts{Quiet: true})
	if strings.Contains(buf.String(), "pass.json") {
		t.Fatalf("quiet output should omit passing files:\n%s", buf.String())
	}
}

func TestPrettyAllPassing(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, []*driver.FileResult{{Path: "a.json", Cases: 1, FromCache: true}}, PrettyOpts{})
	out := buf.String()
	if !strings.Contains(out, "(cached)") || !strings.Contains(out, "PASS: 1 files, 1 cases") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPrettyBasenamePaths(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleResults(), PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(buf.String(), "fixtures/pass.json") {
		t.Fatalf("basename mode should strip directories:\n%s", buf.String())
	}
}

func TestPrettyWidthClipping(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleResults(), PrettyOpts{Width: 40})
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if len(line) > 40 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleResults(), JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}

	var report struct {
		Files []struct {
			Path  string `json:"path"`
			Cases int    `json:"cases"`
			Diags []struct {
				Code     string `json:"code"`
				Severity string `json:"severity"`
				Notes    []struct {
					Message string `json:"message"`
				} `json:"notes"`
			} `json:"diagnostics"`
		} `json:"files"`
		Errors int `json:"errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Files) != 2 || report.Errors != 1 {
		t.Fatalf("report = %+v", report)
	}
	d := report.Files[1].Diags[0]
	if d.Code != "SEM3011" || d.Severity != "ERROR" || len(d.Notes) != 1 {
		t.Fatalf("diag = %+v", d)
	}
}
