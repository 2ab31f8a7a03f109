package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

// appName names the syncer directories under the XDG base directories.
const appName = "syncer"

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// RunConfig configures the cross-process run lock.
type RunConfig struct {
	LockPath string `mapstructure:"lock_path"`
}

// Config represents the application configuration.
type Config struct {
	ToolPath  string `mapstructure:"tool_path"`
	LocalFile string `mapstructure:"local_file"`
	RemoteDir string `mapstructure:"remote_dir"`

	// ToolTimeout bounds each transfer tool invocation. Zero waits forever.
	ToolTimeout time.Duration `mapstructure:"tool_timeout"`

	// SyncOnStart is read by front ends that sync when they launch.
	SyncOnStart bool `mapstructure:"sync_on_start"`

	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
	Run     RunConfig     `mapstructure:"run"`
}

// Target returns the synchronization target described by the configuration.
func (c *Config) Target() types.Target {
	return types.Target{
		ToolPath:  c.ToolPath,
		LocalFile: c.LocalFile,
		RemoteDir: c.RemoteDir,
	}
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/syncer/config.yaml
//   - $HOME/.config/syncer/config.yaml
//
// Environment variables are prefixed with SYNCER_ (e.g., SYNCER_LOCAL_FILE).
func Load() (*Config, error) {
	v := viper.New()
	if err := AddConfigPaths(v); err != nil {
		return nil, err
	}
	BindEnv(v)
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return Decode(v)
}

// AddConfigPaths points v at config.yaml in the syncer config directories.
func AddConfigPaths(v *viper.Viper) error {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", appName))
	return nil
}

// BindEnv enables SYNCER_ prefixed environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("SYNCER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("tool_path", DefaultToolPath())
	v.SetDefault("local_file", DefaultLocalFile)
	v.SetDefault("remote_dir", DefaultRemoteDir)
	v.SetDefault("tool_timeout", "0s")
	v.SetDefault("sync_on_start", false)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", DefaultHistoryPath())
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", DefaultMaxLogSize)
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", DefaultComponents)

	v.SetDefault("run.lock_path", DefaultLockPath())
}

// Decode unmarshals v into a Config and expands ~ in every path.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.LocalFile, &cfg.History.Path, &cfg.Logging.Path, &cfg.Run.LockPath} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}
	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left untouched.
func WriteDefault() (string, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Syncer Configuration

# Transfer tool binary (rclone)
tool_path: %q

# Local file to keep in sync
local_file: %q

# Remote directory holding the copy, e.g. "gdrive:backups"
remote_dir: %q

# Maximum time a single tool invocation may take (0 waits forever)
tool_timeout: 0s

# Front ends may synchronize as soon as they start
sync_on_start: false

# Run history
history:
  enabled: true
  path: %q
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/syncer/syncer.log)
  path: ""
  rotation:
    max_size: %s
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    controller: info
    tool: info
    executor: info
    tui: warn

# Lock file that keeps two syncer processes from running at once
run:
  lock_path: %q
`, DefaultToolPath(), DefaultLocalFile, DefaultRemoteDir, DefaultHistoryPath(), DefaultRetentionDays, DefaultMaxLogSize, DefaultLockPath())

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return configPath, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/syncer/ for the history database and lock.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// StateDir returns $XDG_STATE_HOME/syncer/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultHistoryPath returns the default history database directory.
func DefaultHistoryPath() string {
	return filepath.Join(DataDir(), "history")
}

// DefaultLockPath returns the default run lock path.
func DefaultLockPath() string {
	return filepath.Join(DataDir(), "syncer.lock")
}

// EnsureDirs creates the config, data and state directories.
func EnsureDirs() error {
	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{configDir, DataDir(), StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
