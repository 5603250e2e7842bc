package version

// Version is the toolkit version, overridable at build time via
// -ldflags "-X umidemux/internal/version.Version=...".
var Version = "0.3.0"
