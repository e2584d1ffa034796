package oasmerge

import (
	"fmt"
	"runtime"
)

// Build metadata, set via ldflags by GoReleaser. Source builds keep the
// defaults.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Version returns the compiled version or "dev" if run from source.
func Version() string {
	return version
}

// Commit returns the git commit the binary was built from.
func Commit() string {
	return commit
}

// BuildTime returns the RFC3339 build timestamp.
func BuildTime() string {
	return buildTime
}

// GoVersion returns the Go runtime version.
func GoVersion() string {
	return runtime.Version()
}

// UserAgent returns the User-Agent string used when fetching documents.
func UserAgent() string {
	return fmt.Sprintf("oasmerge/%s", version)
}

// BuildInfo returns every build detail on its own line.
func BuildInfo() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild Time: %s\nGo Version: %s\n",
		Version(), Commit(), BuildTime(), GoVersion())
}
