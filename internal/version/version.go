// Package version carries build metadata injected via -ldflags.
package version

import "fmt"

var (
	// Version is the release tag, or "dev" for local builds
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata as a single line.
func String() string {
	return fmt.Sprintf("groundplan %s (%s, built %s)", Version, GitSHA, BuildTime)
}
