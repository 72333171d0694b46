// Package buildinfo exposes the version stamp baked into release binaries.
package buildinfo

// Set with -ldflags, e.g.
// -X 'github.com/m3rciful/storebot/core/buildinfo.Version=v1.2.3'.
// The defaults identify a local, unstamped build.
var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the short VCS revision.
	Commit = "local"
	// Date is the RFC3339 build timestamp.
	Date = ""
)
