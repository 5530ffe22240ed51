package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the parsed quill.toml: the project name and the fixture runner
// configuration.
type Manifest struct {
	Name           string
	Globs          []string
	MaxDiagnostics int
	Jobs           int
	Cache          bool
}

const defaultMaxDiagnostics = 256

var (
	// ErrFixturesSectionMissing indicates that [fixtures] is missing in the manifest.
	ErrFixturesSectionMissing = errors.New("missing [fixtures]")
	// ErrNoGlobs indicates that [fixtures].globs is missing or empty.
	ErrNoGlobs = errors.New("missing [fixtures].globs")
	// ErrNoFixtures indicates that no fixture files matched the manifest globs.
	ErrNoFixtures = errors.New("no fixture files matched the manifest globs")
)

type manifestFile struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Fixtures struct {
		Globs          []string `toml:"globs"`
		MaxDiagnostics int      `toml:"max_diagnostics"`
		Jobs           int      `toml:"jobs"`
		Cache          *bool    `toml:"cache"`
	} `toml:"fixtures"`
}

// LoadManifest parses quill.toml at path.
func LoadManifest(path string) (Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("fixtures") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrFixturesSectionMissing)
	}
	globs := make([]string, 0, len(cfg.Fixtures.Globs))
	for _, g := range cfg.Fixtures.Globs {
		if g = strings.TrimSpace(g); g != "" {
			globs = append(globs, g)
		}
	}
	if len(globs) == 0 {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrNoGlobs)
	}

	m := Manifest{
		Name:           strings.TrimSpace(cfg.Project.Name),
		Globs:          globs,
		MaxDiagnostics: cfg.Fixtures.MaxDiagnostics,
		Jobs:           cfg.Fixtures.Jobs,
		Cache:          true,
	}
	if m.MaxDiagnostics <= 0 {
		m.MaxDiagnostics = defaultMaxDiagnostics
	}
	if cfg.Fixtures.Cache != nil {
		m.Cache = *cfg.Fixtures.Cache
	}
	return m, nil
}

// ListFixtures expands the manifest globs relative to the project root and
// returns a sorted, deduplicated list of fixture paths.
func (m Manifest) ListFixtures(root string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, g := range m.Globs {
		pattern := g
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, filepath.FromSlash(g))
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", g, err)
		}
		for _, p := range matches {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	if len(paths) == 0 {
		return nil, ErrNoFixtures
	}
	sort.Strings(paths)
	return paths, nil
}
