package driver

import (
	"path/filepath"
	"testing"

	"quill/internal/diag"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	content := []byte(`{"calls": []}`)
	res := &FileResult{
		Path:  "a.json",
		Cases: 3,
		Diags: []FlatDiag{{
			Code:     diag.SemaWrongArgType,
			Severity: diag.SevError,
			Message:  "argument of type 'number' is not assignable to parameter of type 'string'",
			File:     "a.json#calls[0]",
			Line:     1,
			Col:      7,
			EndLine:  1,
			EndCol:   8,
		}},
	}
	if err := cache.Put(content, res); err != nil {
		t.Fatal(err)
	}

	got, ok, err := cache.Get(content)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Cases != 3 || len(got.Diags) != 1 {
		t.Fatalf("cached result mangled: %+v", got)
	}
	d := got.Diags[0]
	if d.Code != diag.SemaWrongArgType || d.Line != 1 || d.Col != 7 {
		t.Fatalf("cached diagnostic mangled: %+v", d)
	}
}

func TestDiskCacheMissOnDifferentContent(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Put([]byte("one"), &FileResult{Cases: 1}); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := cache.Get([]byte("two")); err != nil || ok {
		t.Fatalf("different content must miss: ok=%v err=%v", ok, err)
	}
}

func TestDiskCacheNilIsInert(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put([]byte("x"), &FileResult{}); err != nil {
		t.Fatalf("nil cache Put: %v", err)
	}
	if _, ok, err := cache.Get([]byte("x")); ok || err != nil {
		t.Fatalf("nil cache Get must miss cleanly")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cache, err := OpenDiskCacheAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	content := []byte("fixture")
	if err := cache.Put(content, &FileResult{Cases: 2}); err != nil {
		t.Fatal(err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := cache.Get(content); ok {
		t.Fatalf("entries must be gone after DropAll")
	}
}
