// Package version provides application version information.
// The version and commit can be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/NRDB-Companion/internal/version.Version=v1.2.3 -X github.com/ramonehamilton/NRDB-Companion/internal/version.Commit=abc123"
package version

import (
	"fmt"
	"runtime"
)

// Version is the application version. It defaults to "dev" and can be
// overridden at build time using ldflags.
var Version = "dev"

// Commit is the git commit the binary was built from.
var Commit = "unknown"

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// String returns the full version line printed by the version command.
func String() string {
	return fmt.Sprintf("nrdb-companion %s (commit %s, %s %s/%s)", Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
