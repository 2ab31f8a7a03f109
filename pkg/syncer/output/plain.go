package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter writes key/value lines without styling, for scripts.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	rows := [][2]string{
		{"status", r.Status},
		{"message", r.Message},
		{"decision", r.Decision},
		{"local", r.LocalFile},
		{"remote", r.RemoteFile},
	}
	if r.ErrorKind != "" {
		rows = append(rows, [2]string{"error", r.ErrorKind})
	}
	if r.TimesCompared {
		rows = append(rows, [2]string{"delta", r.Delta.String()})
	}
	if r.BackupPath != "" {
		rows = append(rows, [2]string{"backup", r.BackupPath})
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
