// Package build holds version information, set at link time with
// -ldflags "-X github.com/armadaproject/abilaunch/internal/abilaunch/build.ReleaseVersion=..."
package build

import "runtime"

var (
	BuildTime      = "unknown"
	ReleaseVersion = "dev"
	GitCommit      = "unknown"
	GoVersion      = runtime.Version()
)
