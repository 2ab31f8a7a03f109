package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/syncer/cmd/syncer/tui"
	"github.com/jamesainslie/syncer/pkg/syncer/config"
	"github.com/jamesainslie/syncer/pkg/syncer/controller"
	"github.com/jamesainslie/syncer/pkg/syncer/history"
	"github.com/jamesainslie/syncer/pkg/syncer/logging"
	"github.com/jamesainslie/syncer/pkg/syncer/output"
	"github.com/jamesainslie/syncer/pkg/syncer/runlock"
	"github.com/jamesainslie/syncer/pkg/syncer/tool"
	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

// Exit codes beyond the generic failure (1).
const (
	exitSyncFailed     = 2
	exitAlreadyRunning = 3
)

// exitError carries a process exit code. reported is set when the message
// has already been shown to the user.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the local file with its remote copy",
	Long: `Run one synchronization. This is also what syncer does when run without
a subcommand.

Exit status is 0 on success, 2 when the synchronization failed and 3 when
another syncer process is already running.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var (
	outputFormat  string
	noInteractive bool
	dryRun        bool
)

func init() {
	addSyncFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "pretty", "output format: "+fmt.Sprint(output.Available()))
	cmd.Flags().BoolVarP(&noInteractive, "no-interactive", "n", false, "disable the progress spinner")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "decide the direction without copying anything")
}

func isSyncCommand(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == syncCmd
}

// useTUI reports whether the spinner should be shown.
func useTUI() bool {
	if noInteractive || getQuiet() || outputFormat != "pretty" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runSync runs one synchronization and prints its result.
func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatter, err := output.Get(outputFormat)
	if err != nil {
		return err
	}

	opts := syncOptions{
		dryRun:      dryRun,
		interactive: useTUI(),
		formatter:   formatter,
		quiet:       getQuiet(),
	}
	return syncOnce(context.Background(), cfg, opts, os.Stdout)
}

type syncOptions struct {
	dryRun      bool
	interactive bool
	quiet       bool
	formatter   output.Formatter
}

// syncOnce takes the run lock, runs the controller, prints the result and
// records it in the history.
func syncOnce(ctx context.Context, cfg *config.Config, opts syncOptions, w io.Writer) error {
	log := logging.Get("sync")

	lock, err := runlock.TryAcquire(cfg.Run.LockPath)
	if err != nil {
		if errors.Is(err, runlock.ErrLocked) {
			return &exitError{code: exitAlreadyRunning, err: err}
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn("failed to release run lock", "path", lock.Path(), "error", err)
		}
	}()

	runner := tool.NewCommandRunner(cfg.ToolPath, cfg.ToolTimeout)
	target := cfg.Target()

	var (
		report *controller.Report
		runErr error
	)
	run := func(display controller.Observer) {
		observers := controller.MultiObserver{logObserver(log, target)}
		if display != nil {
			observers = append(observers, display)
		}
		ctrl := controller.New(target, runner, controller.Options{Observer: observers, DryRun: opts.dryRun})
		report, runErr = ctrl.Run(ctx)
	}

	shown := false
	if opts.interactive {
		var uiErr error
		shown, uiErr = tui.Run(tui.Options{
			LocalFile:  target.LocalFile,
			RemoteFile: target.RemoteFile(),
			DryRun:     opts.dryRun,
		}, run)
		if uiErr != nil {
			log.Warn("progress display failed", "error", uiErr)
		}
	} else {
		run(nil)
	}

	if report == nil {
		// only a concurrent run in this process yields no report
		return &exitError{code: exitAlreadyRunning, err: runErr}
	}

	recordHistory(cfg, report)

	// shown is false when the display closed before the run ended
	if err := printResult(w, report, opts, shown); err != nil {
		return err
	}

	if runErr != nil {
		// printResult always shows failures
		return &exitError{code: exitSyncFailed, err: runErr, reported: true}
	}
	return nil
}

// logObserver records the run's signals in the sync log.
func logObserver(log *logging.Logger, target types.Target) controller.Observer {
	return controller.ObserverFuncs{
		OnStarted: func() {
			log.Debug("sync started", "local", target.LocalFile, "remote", target.RemoteFile())
		},
		OnFinished: func(message string) {
			log.Info("sync finished", "message", message)
		},
		OnFailed: func(message string) {
			log.Warn("sync failed", "message", message)
		},
	}
}

// printResult writes the report with the formatter. When the spinner already
// displayed the final message only the backup note is added.
func printResult(w io.Writer, report *controller.Report, opts syncOptions, shown bool) error {
	if opts.quiet && report.Succeeded() {
		return nil
	}

	if shown {
		if report.BackupPath != "" {
			fmt.Fprintf(w, "Previous local copy saved to %s\n", report.BackupPath)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := opts.formatter.Format(&buf, output.FromReport(report)); err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// recordHistory stores the run and prunes old entries. Failures are logged,
// never returned.
func recordHistory(cfg *config.Config, report *controller.Report) {
	if !cfg.History.Enabled {
		return
	}
	log := logging.Get("history")

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Warn("history unavailable", "path", cfg.History.Path, "error", err)
		return
	}
	defer store.Close()

	entry := history.FromReport(report)
	if err := store.Log(entry); err != nil {
		log.Warn("failed to record run", "error", err)
		return
	}
	log.Debug("recorded run", "id", entry.ID)

	if removed, err := store.Cleanup(cfg.History.RetentionDays); err != nil {
		log.Warn("history cleanup failed", "error", err)
	} else if removed > 0 {
		log.Info("pruned history", "removed", removed)
	}
}
