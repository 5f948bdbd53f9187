// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the release tag of this build.
// Inject via: -X github.com/xuanlung-gov/tthc-assistant/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA.
// Inject via: -X github.com/xuanlung-gov/tthc-assistant/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/xuanlung-gov/tthc-assistant/internal/buildinfo.BuildDate=...
var BuildDate = ""

// Info is the build metadata as reported by GET / and the CLI.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// Get returns the stamped metadata, with "dev" for an unstamped version.
func Get() Info {
	v := Version
	if v == "" {
		v = "dev"
	}
	return Info{Version: v, Commit: Commit, BuildDate: BuildDate}
}
