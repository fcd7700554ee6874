// Package version reports the build stamped into the vault binaries
package version

// BuildInfo holds version information about one binary
type BuildInfo struct {
	Service string `json:"service" example:"allocvault-api"`
	Version string `json:"version" example:"v0.1.0"`
	Commit  string `json:"commit" example:"3f2a9c1"`
	Date    string `json:"date" example:"2025-03-01"`
}

// Set at link time:
// -ldflags "-X allocvault/internal/core/version.version=v0.1.0 -X allocvault/internal/core/version.commit=3f2a9c1"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information for service
func Info(service string) BuildInfo {
	return BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
}
