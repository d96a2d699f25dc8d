package version

const APP = "gridsight"

// Overridden at build time via -ldflags.
var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
