package log

// Version information for the log module.
const (
	// Version is the current version of the log module.
	// 1.1.0 added Bytes and WithComponent.
	Version = "1.1.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)
