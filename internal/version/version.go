// Package version provides build information for the CLIs.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/xena-client/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/xena-client/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/xena-client/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Without ldflags, Commit and BuildTime fall back to the VCS stamp the Go
// toolchain embeds.
package version

import (
	"runtime/debug"
	"sync"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var fillOnce sync.Once

func fill() {
	fillOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fillFrom(info.Settings)
	})
}

func fillFrom(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "unknown" && s.Value != "" {
				Commit = s.Value[:min(len(s.Value), 7)]
			}
		case "vcs.time":
			if BuildTime == "unknown" && s.Value != "" {
				BuildTime = s.Value
			}
		}
	}
}

// String returns a formatted version string.
func String() string {
	fill()
	return Version + " (" + Commit + ") built " + BuildTime
}

// LogAttrs returns the build information as slog key/value pairs.
func LogAttrs() []any {
	fill()
	return []any{"version", Version, "commit", Commit, "build_time", BuildTime}
}
