package history

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/syncer/pkg/syncer/controller"
	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyDir(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("Open(\"\") error = nil, want error")
	}
}

func TestStore_LogAssignsIDAndTimestamp(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	fixed := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	entry := &Entry{Outcome: "unchanged", Message: "Files are already synchronized"}
	if err := s.Log(entry); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	if !entry.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", entry.Timestamp, fixed)
	}
	if !strings.HasPrefix(entry.ID, "sync-2024-06-15T10-30-00.000000-") {
		t.Errorf("ID = %q, want sync-<timestamp>-<suffix>", entry.ID)
	}
	if got := len(entry.ID) - len("sync-2024-06-15T10-30-00.000000-"); got != 8 {
		t.Errorf("ID suffix length = %d, want 8", got)
	}
}

func TestStore_GetRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	entry := &Entry{
		Target:     types.Target{ToolPath: "rclone", LocalFile: "/tmp/notes.txt", RemoteDir: "gdrive:docs"},
		Decision:   "remote-to-local",
		Outcome:    "synced-remote-to-local",
		Message:    "Synchronized remote to local",
		BackupPath: "/tmp/notes.txt.bak",
		Duration:   1500 * time.Millisecond,
	}
	if err := s.Log(entry); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	got, err := s.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Target != entry.Target {
		t.Errorf("Target = %+v, want %+v", got.Target, entry.Target)
	}
	if got.BackupPath != entry.BackupPath || got.Duration != entry.Duration {
		t.Errorf("Get() = %+v, want %+v", got, entry)
	}
	if got.Failed() {
		t.Error("Failed() = true, want false")
	}
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	_, err := s.Get("sync-nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(""); err == nil {
		t.Fatal("Get(\"\") error = nil, want error")
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		e := &Entry{Timestamp: base.Add(time.Duration(i) * time.Hour), Message: string(rune('a' + i))}
		if err := s.Log(e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("List(0) returned %d entries, want 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i-1].Timestamp.After(all[i].Timestamp) {
			t.Errorf("entries not newest first at %d: %v then %v", i, all[i-1].Timestamp, all[i].Timestamp)
		}
	}
	if all[0].Message != "e" {
		t.Errorf("newest message = %q, want %q", all[0].Message, "e")
	}

	limited, err := s.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 || limited[1].Message != "d" {
		t.Errorf("List(2) = %+v, want the two newest", limited)
	}
}

func TestStore_ListEmpty(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	entries, err := s.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", entries)
	}
}

func TestStore_Cleanup(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for _, age := range []int{1, 10, 40, 90} {
		e := &Entry{Timestamp: now.AddDate(0, 0, -age)}
		if err := s.Log(e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	removed, err := s.Cleanup(30)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Cleanup() removed %d, want 2", removed)
	}

	left, err := s.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(left) != 2 {
		t.Errorf("%d entries left, want 2", len(left))
	}

	if removed, err := s.Cleanup(0); err != nil || removed != 0 {
		t.Errorf("Cleanup(0) = %d, %v; want 0, nil", removed, err)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "history")

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	entry := &Entry{Message: "Synchronized local to remote"}
	if err := s.Log(entry); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	got, err := s.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.Message != entry.Message {
		t.Errorf("Message = %q, want %q", got.Message, entry.Message)
	}
}

func TestFromReport(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	report := &controller.Report{
		ID:         "run-1",
		Target:     types.Target{ToolPath: "rclone", LocalFile: "/tmp/a", RemoteDir: "gdrive:"},
		Decision:   types.SyncRemoteToLocal,
		Message:    "time difference of 3.000 seconds is too small to ensure picking the right file",
		BackupPath: "",
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Err:        &types.Error{Kind: types.KindAmbiguousConflict, Delta: 3 * time.Second},
	}

	e := FromReport(report)
	if e.ID != "run-1" {
		t.Errorf("ID = %q, want the report's run-1", e.ID)
	}
	if e.Decision != "remote-to-local" || e.Outcome != "unchanged" {
		t.Errorf("Decision/Outcome = %q/%q", e.Decision, e.Outcome)
	}
	if e.ErrorKind != "ambiguous_conflict" || !e.Failed() {
		t.Errorf("ErrorKind = %q, want ambiguous_conflict", e.ErrorKind)
	}
	if e.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", e.Duration)
	}
	if !e.Timestamp.Equal(start) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, start)
	}
}
