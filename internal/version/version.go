package version

const APP = "flockscope"

// Set with -ldflags "-X flockscope/internal/version.VERSION=..."
var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
