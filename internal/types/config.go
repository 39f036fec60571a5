package types

type RunMode string

const (
	// ModeLocal is the mode for running the service locally with relaxed defaults
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running the webhook API server
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)
