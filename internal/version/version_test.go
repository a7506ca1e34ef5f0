package version

import (
	"runtime/debug"
	"testing"
)

func TestFillFrom(t *testing.T) {
	oldCommit, oldTime := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = oldCommit, oldTime })

	Commit, BuildTime = "unknown", "unknown"
	fillFrom([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2024-01-15T12:00:00Z"},
	})

	if Commit != "0123456" {
		t.Errorf("Commit = %q, want %q", Commit, "0123456")
	}
	if BuildTime != "2024-01-15T12:00:00Z" {
		t.Errorf("BuildTime = %q, want %q", BuildTime, "2024-01-15T12:00:00Z")
	}
}

func TestFillFrom_LdflagsWin(t *testing.T) {
	oldCommit := Commit
	t.Cleanup(func() { Commit = oldCommit })

	Commit = "abc1234"
	fillFrom([]debug.BuildSetting{{Key: "vcs.revision", Value: "fedcba9876"}})

	if Commit != "abc1234" {
		t.Errorf("Commit = %q, want ldflags value %q", Commit, "abc1234")
	}
}

func TestLogAttrs(t *testing.T) {
	attrs := LogAttrs()
	if len(attrs) != 6 {
		t.Fatalf("len(LogAttrs()) = %d, want 6", len(attrs))
	}
	if attrs[0] != "version" || attrs[1] != Version {
		t.Errorf("LogAttrs()[0:2] = %v, want version %q", attrs[0:2], Version)
	}
}
