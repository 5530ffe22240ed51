package source

import "testing"

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("calls.json", []byte("abc\ndef\nghi"))

	start, end := fs.Resolve(Span{File: id, Start: 4, End: 7})
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("start = %+v, want line 2 col 1", start)
	}
	if end.Line != 2 || end.Col != 4 {
		t.Fatalf("end = %+v, want line 2 col 4", end)
	}
}

func TestFileSetGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("f.json", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	cases := []struct {
		line uint32
		want string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
		{0, ""},
	}
	for _, tc := range cases {
		if got := f.GetLine(tc.line); got != tc.want {
			t.Errorf("GetLine(%d) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestFileSetLatestWins(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("dup.json", []byte("v1"))
	second := fs.AddVirtual("dup.json", []byte("v2"))
	if first == second {
		t.Fatalf("re-adding a path must mint a new FileID")
	}
	latest, ok := fs.GetLatest("dup.json")
	if !ok || latest != second {
		t.Fatalf("GetLatest = %d (%v), want %d", latest, ok, second)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed || string(out) != "a\nb\rc" {
		t.Fatalf("normalizeCRLF = %q (changed=%v)", out, changed)
	}

	out, changed = normalizeCRLF([]byte("plain"))
	if changed || string(out) != "plain" {
		t.Fatalf("no-CR input must pass through unchanged")
	}
}
