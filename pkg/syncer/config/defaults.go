// Package config provides configuration management for syncer.
package config

import "os/exec"

// Default configuration values for syncer.
const (
	// DefaultToolName is looked up on PATH when tool_path is not configured.
	DefaultToolName = "rclone"

	// DefaultLocalFile is the local file synchronized when none is configured.
	DefaultLocalFile = "localFile"

	// DefaultRemoteDir is the remote directory used when none is configured.
	DefaultRemoteDir = "gdrive:someDir"

	// DefaultRetentionDays is the default number of days to keep run history.
	DefaultRetentionDays = 30

	// DefaultMaxLogSize is the default size at which the log file rotates.
	DefaultMaxLogSize = "10MiB"
)

// DefaultToolPath returns the transfer tool found on PATH, or the bare tool
// name if it is not installed.
func DefaultToolPath() string {
	if path, err := exec.LookPath(DefaultToolName); err == nil {
		return path
	}
	return DefaultToolName
}

// DefaultComponents are the per-component log levels written by WriteDefault.
var DefaultComponents = map[string]string{
	"controller": "info",
	"tool":       "info",
	"executor":   "info",
	"tui":        "warn",
}
