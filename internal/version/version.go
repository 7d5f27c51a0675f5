// Package version holds build information injected through -ldflags.
package version

var (
	// Version is the semantic version of the build.
	//
	//nolint:gochecknoglobals // Overwritten at link time.
	Version = "0.1.0"
	// Commit is the VCS revision of the build.
	//
	//nolint:gochecknoglobals // Overwritten at link time.
	Commit = "none"
	// BuildTime is the moment the binary was built.
	//
	//nolint:gochecknoglobals // Overwritten at link time.
	BuildTime = "unknown"
)

// Short returns the bare version.
func Short() string {
	return Version
}

// Full returns version, commit and build time in one line.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
