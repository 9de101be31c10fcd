// Package version exposes the build's identity, set at build time via
// ldflags with a module build info fallback.
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Set at build time via -ldflags "-X tokensmith/internal/version.Version=..."
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the version to report to the user
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

// Full returns the version with commit information when available
func Full() string {
	v := String()
	if GitCommit != "unknown" && GitCommit != "" {
		commit := GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		return fmt.Sprintf("%s (commit %s)", v, commit)
	}
	return v
}
