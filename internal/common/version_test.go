package common

import (
	"strings"
	"testing"
)

func TestApplyVersionFile_FillsDefaultsOnly(t *testing.T) {
	oldV, oldB, oldC := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = oldV, oldB, oldC })

	Version, Build, GitCommit = "dev", "2026-01-01", "unknown"
	applyVersionFile(strings.NewReader("# sonagi\nversion: 1.4.0\n\nbuild: 2026-10-01\ncommit: abc1234\nnonsense\n"))

	if Version != "1.4.0" {
		t.Errorf("Version = %q, want 1.4.0", Version)
	}
	if Build != "2026-01-01" {
		t.Errorf("ldflags build must win, got %q", Build)
	}
	if GitCommit != "abc1234" {
		t.Errorf("GitCommit = %q", GitCommit)
	}
	if got := GetFullVersion(); got != "1.4.0 (build 2026-01-01, commit abc1234)" {
		t.Errorf("GetFullVersion = %q", got)
	}
}
