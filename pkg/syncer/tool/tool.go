// Package tool runs the external file-transfer tool (an rclone-compatible
// command-line program) as a subprocess and reports its output and exit status.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/jamesainslie/syncer/pkg/syncer/logging"
)

// Subcommands of the transfer tool used by syncer.
const (
	CmdChecksum = "md5sum"
	CmdList     = "lsjson"
	CmdSync     = "sync"
)

// waitDelay bounds how long Run waits for output pipes after a timed-out
// tool has been killed.
const waitDelay = 2 * time.Second

// ErrNotFound is returned when the tool binary cannot be spawned because it
// does not exist at the configured path.
var ErrNotFound = errors.New("transfer tool not found")

// ErrTerminated is returned when the tool was killed by a signal before it
// could exit on its own.
var ErrTerminated = errors.New("transfer tool was terminated")

// Result holds the captured output of one tool invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ExitError is returned when the tool exits with a nonzero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return fmt.Sprintf("exit status %d: %s", e.Code, lastLine(msg))
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Runner invokes the transfer tool with the given arguments. A nonzero exit is
// reported as *ExitError alongside the Result; a spawn failure for a missing
// binary matches ErrNotFound.
type Runner interface {
	Run(ctx context.Context, args ...string) (*Result, error)
}

// CommandRunner runs the tool binary at Path via os/exec.
type CommandRunner struct {
	// Path is the tool binary.
	Path string

	// Timeout bounds a single invocation. Zero waits for the tool to exit.
	Timeout time.Duration
}

// NewCommandRunner returns a runner for the binary at path.
func NewCommandRunner(path string, timeout time.Duration) *CommandRunner {
	return &CommandRunner{Path: path, Timeout: timeout}
}

// Run implements Runner.
func (r *CommandRunner) Run(ctx context.Context, args ...string) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	log := logging.Get("tool")
	log.Debug("running transfer tool", "path", r.Path, "args", args)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Timeout > 0 {
		cmd.WaitDelay = waitDelay
	}

	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		log.Debug("transfer tool finished", "args", args, "duration", result.Duration)
		return result, nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		result.ExitCode = exitErr.ExitCode()
		log.Debug("transfer tool failed", "args", args, "exit_code", result.ExitCode)
		return result, &ExitError{Code: result.ExitCode, Stderr: result.Stderr}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		result.ExitCode = -1
		return result, fmt.Errorf("%w: %s", ErrNotFound, r.Path)
	case ctx.Err() != nil:
		result.ExitCode = -1
		return result, fmt.Errorf("transfer tool %s %s: %w", r.Path, strings.Join(args, " "), ctx.Err())
	case errors.As(err, &exitErr):
		// started, then killed by a signal
		result.ExitCode = -1
		log.Debug("transfer tool terminated", "args", args, "state", exitErr.String())
		return result, fmt.Errorf("%w: %s %s: %s", ErrTerminated, r.Path, strings.Join(args, " "), exitErr.String())
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("starting transfer tool %s: %w", r.Path, err)
	}
}

// ExitCode extracts the tool exit code from err, or -1 if err is not an
// *ExitError.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
