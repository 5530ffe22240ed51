package version

import (
	"strings"
	"testing"
)

func TestVersionHasDefault(t *testing.T) {
	if Version == "" {
		t.Fatal("Version should have a default value")
	}
	if !strings.Contains(Version, ".") {
		t.Fatalf("Version %q should look semantic", Version)
	}
}

func TestVersionOverridableViaLdflags(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	}()

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2026-08-29T10:30:00Z"

	if Version != "1.2.3" || GitCommit != "abc123def456" || BuildDate != "2026-08-29T10:30:00Z" {
		t.Fatalf("override failed: %q %q %q", Version, GitCommit, BuildDate)
	}
}
