package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/syncer/pkg/syncer/config"
	"github.com/jamesainslie/syncer/pkg/syncer/logging"
)

// initializeLogging prepares the syncer directories and the log file before
// any command runs.
func initializeLogging(cmd *cobra.Command, args []string) error {
	if err := config.EnsureDirs(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:       cfg.Logging.Level,
		Path:        cfg.Logging.Path,
		Rotation:    parseRotationConfig(cfg.Logging.Rotation),
		Components:  cfg.Logging.Components,
		Interactive: isSyncCommand(cmd) && useTUI(),
	}
	if getVerbose() {
		logCfg.ConsoleLevel = "debug"
	}
	return logging.Init(logCfg)
}

// parseRotationConfig converts the configured rotation settings, falling
// back to the default size when max_size is empty or unparsable.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
	if rc.MaxSize == "" {
		return out
	}
	size, err := humanize.ParseBytes(rc.MaxSize)
	if err != nil || size == 0 {
		printVerbose("invalid logging.rotation.max_size %q, using default", rc.MaxSize)
		return out
	}
	out.MaxSize = int64(size)
	return out
}
