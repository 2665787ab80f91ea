// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/kailas-cloud/comparables/internal/version.Version=v1.2.0 \
//	  -X github.com/kailas-cloud/comparables/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders "version (commit, date)" for startup logs.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
