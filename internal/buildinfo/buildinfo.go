// Package buildinfo carries the build identity stamped in via -ldflags.
package buildinfo

// Name is the product name shown in window titles and log banners.
const Name = "anddesk"

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = ""
)

// Short returns the most specific identifier available: the release tag
// for tagged builds, the commit for untagged ones, "dev" otherwise.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "":
		return Commit
	default:
		return "dev"
	}
}
