package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/syncer/pkg/syncer/history"
	"github.com/jamesainslie/syncer/pkg/syncer/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View synchronization history",
	Long: `View the history of synchronization runs.

Every run, successful or not, is recorded with its decision, outcome and
message. Entries older than history.retention_days are pruned automatically.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove history entries older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
	cleanDays    int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historyCleanCmd.Flags().IntVar(&cleanDays, "days", 0, "retention in days (default: history.retention_days)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the configured history store.
func openHistory() (*history.Store, int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, 0, err
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, 0, err
	}
	return store, cfg.History.RetentionDays, nil
}

// runHistory lists recent runs.
func runHistory(cmd *cobra.Command, args []string) error {
	store, _, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	entries, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'syncer' to synchronize your file.")
		return nil
	}

	fmt.Print(renderHistoryTable(entries, time.Now()))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'syncer history show <id>' for details on a specific entry.")
	return nil
}

// renderHistoryTable lists entries one per line. The OUTCOME column grows to
// fit the longest outcome so failure kinds are never cut.
func renderHistoryTable(entries []history.Entry, now time.Time) string {
	outcomes := make([]string, len(entries))
	width := len("OUTCOME")
	for i, entry := range entries {
		outcomes[i] = outcomeLabel(entry)
		width = max(width, len(outcomes[i]))
	}

	var b strings.Builder
	header := fmt.Sprintf("%-40s  %-14s  %-*s  %s", "ID", "WHEN", width, "OUTCOME", "MESSAGE")
	b.WriteString("\n" + output.TableHeaderStyle.Render(header) + "\n")
	b.WriteString(strings.Repeat("-", 100) + "\n")

	for i, entry := range entries {
		b.WriteString(fmt.Sprintf("%-40s  %-14s  %-*s  %s\n",
			truncateString(entry.ID, 40),
			humanize.RelTime(entry.Timestamp, now, "ago", "from now"),
			width, outcomes[i],
			entry.Message,
		))
	}
	return b.String()
}

func outcomeLabel(entry history.Entry) string {
	switch {
	case entry.Failed():
		return "failed: " + entry.ErrorKind
	case entry.DryRun:
		return "dry-run"
	default:
		return entry.Outcome
	}
}

// runHistoryShow displays a single run.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, _, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	entry, err := store.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println("\nRun Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:         %s\n", entry.ID)
	fmt.Printf("Timestamp:  %s (%s)\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"), humanize.Time(entry.Timestamp))
	fmt.Printf("Local:      %s\n", entry.Target.LocalFile)
	fmt.Printf("Remote:     %s\n", entry.Target.RemoteFile())
	fmt.Printf("Decision:   %s\n", entry.Decision)
	fmt.Printf("Outcome:    %s\n", entry.Outcome)
	if entry.DryRun {
		fmt.Println("Dry run:    yes")
	}
	if entry.Failed() {
		fmt.Printf("Error:      %s\n", entry.ErrorKind)
	}
	fmt.Printf("Message:    %s\n", entry.Message)
	if entry.BackupPath != "" {
		fmt.Printf("Backup:     %s\n", entry.BackupPath)
	}
	fmt.Printf("Duration:   %s\n", entry.Duration.Round(time.Millisecond))
	return nil
}

// runHistoryClean prunes old entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	store, retention, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if cleanDays > 0 {
		retention = cleanDays
	}
	removed, err := store.Cleanup(retention)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d %s older than %d days.", removed, pluralize(removed, "entry", "entries"), retention)
	return nil
}

// truncateString shortens s to max runes, ending with "...".
func truncateString(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
