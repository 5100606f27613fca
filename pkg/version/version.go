// Package version exposes build metadata injected at link time.
package version

import "strings"

// These are set via -ldflags "-X github.com/rshade/dfm-setup/pkg/version.version=...".
//
//nolint:gochecknoglobals // Populated by the linker
var (
	version   = "0.0.0-dev"
	gitCommit = ""
	buildDate = ""
)

// GetVersion returns the semantic version without a leading "v".
func GetVersion() string {
	return strings.TrimPrefix(version, "v")
}

// GetGitCommit returns the commit the binary was built from, if known.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp, if known.
func GetBuildDate() string {
	return buildDate
}
