package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter renders a styled summary box for terminals.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	lines := []string{f.formatHeadline(r)}

	lines = append(lines, field("Local:", r.LocalFile))
	lines = append(lines, field("Remote:", r.RemoteFile))

	if r.TimesCompared {
		newer := "local"
		if r.RemoteModTime.After(r.LocalModTime) {
			newer = "remote"
		}
		lines = append(lines, field("Modified:", fmt.Sprintf("%s newer by %s", newer, formatDuration(r.Delta))))
	}
	if r.BackupPath != "" {
		backup := r.BackupPath
		if r.BackupSize > 0 {
			backup += " (" + humanize.IBytes(uint64(r.BackupSize)) + ")"
		}
		lines = append(lines, field("Backup:", backup))
	}
	if r.Duration > 0 {
		lines = append(lines, LabelStyle.Render("Took "+formatDuration(r.Duration)))
	}

	box := ResultBox
	if r.Failed() {
		box = ErrorBox
	}
	w.WriteString(box.Render(strings.Join(lines, "\n")))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatHeadline(r *Result) string {
	switch {
	case r.Failed():
		return ErrorStyle.Render("✗ " + r.Message)
	case r.DryRun && r.Decision != "none":
		return WarningStyle.Render("~ " + r.Message)
	case r.Outcome == "unchanged":
		return MutedStyle.Render("= " + r.Message)
	default:
		return SuccessStyle.Render("✓ " + r.Message)
	}
}

func field(label, value string) string {
	return fmt.Sprintf("%s %s", LabelStyle.Render(fmt.Sprintf("%-9s", label)), ValueStyle.Render(value))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d interface{ Seconds() float64 }) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
