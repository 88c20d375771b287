// Package version reports the build version of the daikin-humid binaries.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Name is the product name used in version strings and the User-Agent.
const Name = "daikin-humid"

// These variables can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/daikin-humid/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/daikin-humid/internal/version.Commit=abc123"
//
// If not set, they will be populated from git info at runtime (if available),
// or fall back to "dev" with a timestamp.
var (
	// Version is the semantic version of the application
	Version = ""
	// Commit is the git commit hash
	Commit = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			Version, Commit = fromSettings(Version, Commit, info.Settings)
		}
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromSettings fills an empty version or commit from the VCS build
// settings. Values that are already set are returned unchanged.
func fromSettings(version, commit string, settings []debug.BuildSetting) (string, string) {
	var revision, modified, vcsTime string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if commit == "" && revision != "" {
		commit = revision
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if modified == "true" {
			commit += "-dirty"
		}
	}

	// Build info carries no tags, so the best we can do is the commit date.
	if version == "" && vcsTime != "" {
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			version = "dev-" + t.Format("20060102")
		}
	}

	return version, commit
}

// Full returns the full version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Line is the one-line output of a binary's version command.
func Line(binary string) string {
	return fmt.Sprintf("%s %s", binary, Full())
}

// UserAgent is sent with every device request.
func UserAgent() string {
	return Name + "/" + Version
}
