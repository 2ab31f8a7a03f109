package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetBeforeInitDiscards(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	logger := Get("discard-test")
	logger.Info("nobody hears this")

	if Get("discard-test") != logger {
		t.Error("Get() returned a different logger for the same component")
	}
}

func TestInitWritesComponentLevels(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	path := filepath.Join(t.TempDir(), "syncer.log")
	err := Init(Config{
		Level:      "info",
		Path:       path,
		Components: map[string]string{"tool": "debug"},
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Get("controller").Debug("hidden controller detail")
	Get("controller").Info("run started", "target", "gdrive:a.txt")
	Get("tool").Debug("running transfer tool", "args", "md5sum")

	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	out := string(data)

	for _, want := range []string{"run started", "gdrive:a.txt", "running transfer tool"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden controller detail") {
		t.Errorf("debug entry written for info-level component:\n%s", out)
	}
}

func TestInitRejectsBadComponentLevel(t *testing.T) {
	err := Init(Config{
		Path:       filepath.Join(t.TempDir(), "x.log"),
		Components: map[string]string{"tool": "chatty"},
	})
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Init() error = %v, want ErrInvalidLevel", err)
	}
}
