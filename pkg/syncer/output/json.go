package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// document is the structure written by the json and yaml formatters.
type document struct {
	ID      string `json:"id" yaml:"id"`
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
	Error   string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`

	Decision string `json:"decision" yaml:"decision"`
	Outcome  string `json:"outcome" yaml:"outcome"`

	Local  side `json:"local" yaml:"local"`
	Remote side `json:"remote" yaml:"remote"`

	Delta    string `json:"delta,omitempty" yaml:"delta,omitempty"`
	Backup   string `json:"backup,omitempty" yaml:"backup,omitempty"`
	Started  string `json:"started_at" yaml:"started_at"`
	Duration string `json:"duration" yaml:"duration"`
}

type side struct {
	Path        string `json:"path" yaml:"path"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	ModTime     string `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
}

func buildDocument(r *Result) document {
	doc := document{
		ID:       r.ID,
		Status:   r.Status,
		Message:  r.Message,
		Error:    r.ErrorKind,
		DryRun:   r.DryRun,
		Decision: r.Decision,
		Outcome:  r.Outcome,
		Local:    side{Path: r.LocalFile, Fingerprint: r.LocalFingerprint},
		Remote:   side{Path: r.RemoteFile, Fingerprint: r.RemoteFingerprint},
		Backup:   r.BackupPath,
		Started:  formatTime(r.StartedAt),
		Duration: formatDurationString(r.Duration),
	}
	if r.TimesCompared {
		doc.Local.ModTime = formatTime(r.LocalModTime)
		doc.Remote.ModTime = formatTime(r.RemoteModTime)
		doc.Delta = r.Delta.String()
	}
	return doc
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// formatDurationString formats a duration as a string, empty for zero.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildDocument(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)
