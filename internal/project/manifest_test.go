package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.toml")
	writeFile(t, path, `
[project]
name = "demo"

[fixtures]
globs = ["fixtures/*.json", "extra/*.json"]
max_diagnostics = 32
jobs = 4
cache = false
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "demo" || len(m.Globs) != 2 || m.MaxDiagnostics != 32 || m.Jobs != 4 || m.Cache {
		t.Fatalf("manifest = %+v", m)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.toml")
	writeFile(t, path, `
[fixtures]
globs = ["*.json"]
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.MaxDiagnostics != defaultMaxDiagnostics || !m.Cache || m.Jobs != 0 {
		t.Fatalf("defaults not applied: %+v", m)
	}
}

func TestLoadManifestMissingFixtures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.toml")
	writeFile(t, path, `[project]
name = "x"
`)
	if _, err := LoadManifest(path); !errors.Is(err, ErrFixturesSectionMissing) {
		t.Fatalf("err = %v, want ErrFixturesSectionMissing", err)
	}
}

func TestLoadManifestEmptyGlobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.toml")
	writeFile(t, path, `
[fixtures]
globs = ["", "  "]
`)
	if _, err := LoadManifest(path); !errors.Is(err, ErrNoGlobs) {
		t.Fatalf("err = %v, want ErrNoGlobs", err)
	}
}

func TestLoadManifestBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.toml")
	writeFile(t, path, `globs = [`)
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestListFixtures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fixtures", "b.json"), "{}")
	writeFile(t, filepath.Join(dir, "fixtures", "a.json"), "{}")
	writeFile(t, filepath.Join(dir, "fixtures", "skip.txt"), "")

	m := Manifest{Globs: []string{"fixtures/*.json", "fixtures/a.json"}}
	paths, err := m.ListFixtures(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	if filepath.Base(paths[0]) != "a.json" || filepath.Base(paths[1]) != "b.json" {
		t.Fatalf("paths not sorted: %v", paths)
	}
}

func TestListFixturesNoneMatch(t *testing.T) {
	m := Manifest{Globs: []string{"missing/*.json"}}
	if _, err := m.ListFixtures(t.TempDir()); !errors.Is(err, ErrNoFixtures) {
		t.Fatalf("err = %v, want ErrNoFixtures", err)
	}
}

func TestFindQuillToml(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "quill.toml"), "[fixtures]\nglobs = [\"*.json\"]\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindQuillToml(nested)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("found %s, want it under %s", path, root)
	}

	projRoot, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || projRoot != root {
		t.Fatalf("root=%s ok=%v err=%v", projRoot, ok, err)
	}
}
