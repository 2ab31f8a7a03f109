package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/syncer/pkg/syncer/controller"
	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

var started = time.Date(2022, 4, 10, 8, 3, 0, 0, time.UTC)

func pulledResult() *Result {
	return &Result{
		ID:                "run-1",
		Status:            StatusFinished,
		Message:           "Synchronized remote to local",
		Decision:          "remote-to-local",
		Outcome:           "synced-remote-to-local",
		LocalFile:         "/home/user/notes.txt",
		RemoteFile:        "gdrive:docs/notes.txt",
		LocalFingerprint:  "5d41402abc4b2a76b9719d911017c592",
		RemoteFingerprint: "7d793037a0760186574b0282f2f435e7",
		TimesCompared:     true,
		LocalModTime:      started,
		RemoteModTime:     started.Add(90 * time.Second),
		Delta:             90 * time.Second,
		BackupPath:        "/home/user/notes.txt.bak",
		BackupSize:        2048,
		StartedAt:         started,
		Duration:          1500 * time.Millisecond,
	}
}

func failedResult() *Result {
	return &Result{
		ID:         "run-2",
		Status:     StatusFailed,
		Message:    "remote file gdrive:docs/notes.txt does not exist, please check your settings",
		ErrorKind:  "remote_file_not_found",
		Decision:   "none",
		Outcome:    "unchanged",
		LocalFile:  "/home/user/notes.txt",
		RemoteFile: "gdrive:docs/notes.txt",
		StartedAt:  started,
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"json", "plain", "pretty", "yaml"}, Available())

	for _, name := range Available() {
		f, err := Get(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := Get("xml")
	assert.EqualError(t, err, "unknown formatter: xml")
}

func TestRegistry_Replace(t *testing.T) {
	reg := NewRegistry()
	reg.Register("x", func() Formatter { return &PlainFormatter{} })
	reg.Register("x", func() Formatter { return &JSONFormatter{} })

	f, err := reg.Get("x")
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)
}

func TestFromReport(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(local+".bak", []byte("12345"), 0o644))

	report := &controller.Report{
		ID:               "abc",
		Target:           types.Target{ToolPath: "rclone", LocalFile: local, RemoteDir: "gdrive:"},
		Decision:         types.SyncRemoteToLocal,
		Outcome:          types.SucceededRemoteToLocal,
		Message:          "Synchronized remote to local",
		LocalFingerprint: types.NoFingerprint,
		BackupPath:       local + ".bak",
		StartedAt:        started,
		FinishedAt:       started.Add(time.Second),
	}

	res := FromReport(report)
	assert.Equal(t, StatusFinished, res.Status)
	assert.False(t, res.Failed())
	assert.Equal(t, "gdrive:notes.txt", res.RemoteFile)
	assert.Equal(t, "<absent>", res.LocalFingerprint)
	assert.Equal(t, int64(5), res.BackupSize)
	assert.Equal(t, time.Second, res.Duration)

	report.Err = &types.Error{Kind: types.KindSyncExecutionFailed}
	res = FromReport(report)
	assert.True(t, res.Failed())
	assert.Equal(t, "sync_execution_failed", res.ErrorKind)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, pulledResult()))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "finished", doc["status"])
	assert.Equal(t, "remote-to-local", doc["decision"])
	assert.Equal(t, "1m30s", doc["delta"])
	assert.Equal(t, "/home/user/notes.txt.bak", doc["backup"])
	assert.Equal(t, "2022-04-10T08:03:00Z", doc["started_at"])

	remote := doc["remote"].(map[string]interface{})
	assert.Equal(t, "gdrive:docs/notes.txt", remote["path"])
	assert.Equal(t, "2022-04-10T08:04:30Z", remote["mod_time"])
	assert.NotContains(t, doc, "error_kind")
}

func TestJSONFormatter_Failure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, failedResult()))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "failed", doc["status"])
	assert.Equal(t, "remote_file_not_found", doc["error_kind"])
	assert.NotContains(t, doc, "delta")

	local := doc["local"].(map[string]interface{})
	assert.NotContains(t, local, "mod_time")
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, pulledResult()))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Synchronized remote to local", doc["message"])
	assert.Equal(t, "1.5s", doc["duration"])
	assert.Contains(t, buf.String(), "local:\n  path: /home/user/notes.txt\n")
}

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, pulledResult()))

	out := buf.String()
	assert.Contains(t, out, "status   finished\n")
	assert.Contains(t, out, "decision remote-to-local\n")
	assert.Contains(t, out, "delta    1m30s\n")
	assert.Contains(t, out, "backup   /home/user/notes.txt.bak\n")
	assert.NotContains(t, out, "\x1b[", "plain output must not be styled")

	buf.Reset()
	require.NoError(t, (&PlainFormatter{}).Format(&buf, failedResult()))
	assert.Contains(t, buf.String(), "error    remote_file_not_found\n")
	assert.NotContains(t, buf.String(), "delta")
}

func TestPrettyFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, pulledResult()))

	out := buf.String()
	assert.Contains(t, out, "Synchronized remote to local")
	assert.Contains(t, out, "gdrive:docs/notes.txt")
	assert.Contains(t, out, "remote newer by 1m 30s")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "Took 1.5s")
}

func TestPrettyFormatter_Failure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, failedResult()))

	out := buf.String()
	assert.Contains(t, out, "does not exist")
	assert.NotContains(t, out, "Backup:")
	assert.NotContains(t, out, "Modified:")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), tt.in.String())
	}
}
