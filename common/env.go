// Package common provides shared types and constants used across the
// todostudio client-server communication layer.
package common

// Environment variable names for configuration.
const (
	// ConfigPathEnv overrides the configuration file location.
	ConfigPathEnv = "TODOSTUDIO_CONFIG"

	// ListenEnv overrides the daemon listen address.
	ListenEnv = "TODOSTUDIO_LISTEN"

	// SecretEnv supplies the RPC bearer token.
	SecretEnv = "TODOSTUDIO_RPC_SECRET"

	// NotifyBackendEnv selects the notification backend ("dbus" or "none").
	NotifyBackendEnv = "TODOSTUDIO_NOTIFY"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "TODOSTUDIO_DEBUG"
)
