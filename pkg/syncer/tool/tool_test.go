package tool

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script standing in for the tool.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-rclone")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestCommandRunner_CapturesStdout(t *testing.T) {
	path := writeScript(t, `echo "d41d8cd98f00b204e9800998ecf8427e  $2"`)

	result, err := NewCommandRunner(path, 0).Run(context.Background(), CmdChecksum, "gdrive:a.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e  gdrive:a.txt\n", result.Stdout)
}

func TestCommandRunner_NonzeroExit(t *testing.T) {
	path := writeScript(t, `echo "directory not found" >&2; exit 3`)

	result, err := NewCommandRunner(path, 0).Run(context.Background(), CmdChecksum, "gdrive:a.txt")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, 3, ExitCode(err))
	assert.Contains(t, err.Error(), "directory not found")
}

func TestCommandRunner_KilledBySignal(t *testing.T) {
	path := writeScript(t, `kill -KILL $$`)

	result, err := NewCommandRunner(path, 0).Run(context.Background(), CmdSync, "a", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTerminated)
	assert.NotContains(t, err.Error(), "starting")
	assert.Contains(t, err.Error(), "killed")
	assert.Equal(t, -1, result.ExitCode)
}

func TestCommandRunner_MissingBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := NewCommandRunner(path, 0).Run(context.Background(), CmdChecksum, "gdrive:a.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, -1, ExitCode(err))
}

func TestCommandRunner_MissingBinaryOnPath(t *testing.T) {
	_, err := NewCommandRunner("syncer-test-no-such-tool", 0).Run(context.Background(), CmdList)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommandRunner_Timeout(t *testing.T) {
	path := writeScript(t, `exec sleep 5`)

	start := time.Now()
	_, err := NewCommandRunner(path, 100*time.Millisecond).Run(context.Background(), CmdSync, "a", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExitError_Message(t *testing.T) {
	err := &ExitError{Code: 1, Stderr: "line one\nline two\n"}
	assert.Equal(t, "exit status 1: line two", err.Error())

	err = &ExitError{Code: 5}
	assert.True(t, strings.HasSuffix(err.Error(), "5"))
}
