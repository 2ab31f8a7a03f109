package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/syncer/pkg/syncer/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "syncer",
		Short: "Keep a local file and its cloud copy in sync",
		Long: `Syncer keeps one local file and its copy on a cloud remote identical,
using rclone for every remote operation.

Each run compares the MD5 checksums of both copies. When they differ, the
copy with the newer modification time wins; times closer than 30 seconds
are treated as a conflict and nothing is copied. Before a local file is
replaced, it is copied to <file>.bak.

Examples:
  syncer                                   # Synchronize using the config file
  syncer --local-file ~/vault.kdbx --remote-dir gdrive:vault
  syncer --dry-run                         # Only report what would happen
  syncer -n -o json                        # Non-interactive JSON output
  syncer history                           # View past runs
  syncer config init                       # Write a default config file`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Assigned here: both hooks reach rootCmd through isSyncCommand.
	rootCmd.PersistentPreRunE = initializeLogging
	rootCmd.RunE = runSync

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/syncer/config.yaml)")
	rootCmd.PersistentFlags().String("tool", "", "path to the rclone binary")
	rootCmd.PersistentFlags().String("local-file", "", "local file to synchronize")
	rootCmd.PersistentFlags().String("remote-dir", "", "remote directory holding the copy (e.g. gdrive:backups)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output on stderr")

	_ = viper.BindPFlag("tool_path", rootCmd.PersistentFlags().Lookup("tool"))
	_ = viper.BindPFlag("local_file", rootCmd.PersistentFlags().Lookup("local-file"))
	_ = viper.BindPFlag("remote_dir", rootCmd.PersistentFlags().Lookup("remote-dir"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	addSyncFlags(rootCmd)
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if err := config.AddConfigPaths(viper.GetViper()); err != nil {
		printVerbose("%v", err)
	}

	config.BindEnv(viper.GetViper())
	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// loadConfig decodes the merged flag, env, file and default settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Decode(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
