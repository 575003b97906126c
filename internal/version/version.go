package version

// Version is the application version; overridable at build time via
// -ldflags "-X keyforge/internal/version.Version=v1.2.3".
var Version = "0.1.0-dev"

// String returns the version string.
func String() string { return Version }
