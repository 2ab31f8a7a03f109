// Package tooltest provides a scripted tool.Runner for tests.
package tooltest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jamesainslie/syncer/pkg/syncer/tool"
)

// Response is the canned reply for one subcommand.
type Response struct {
	Stdout string
	Stderr string

	// ExitCode is reported as *tool.ExitError when nonzero.
	ExitCode int

	// Err, when set, is returned as-is (e.g. a wrapped tool.ErrNotFound).
	Err error

	// Hook runs before the response is returned.
	Hook func(args []string)
}

// Runner replies to each subcommand (the first argument) with its Response.
// Unscripted subcommands fail with exit code 2.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     [][]string
}

// NewRunner returns an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{responses: make(map[string]Response)}
}

// On scripts the response for subcommand.
func (r *Runner) On(subcommand string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[subcommand] = resp
	return r
}

// Missing makes every invocation fail as if the binary did not exist.
func (r *Runner) Missing(path string) *Runner {
	for _, sub := range []string{tool.CmdChecksum, tool.CmdList, tool.CmdSync} {
		r.On(sub, Response{Err: fmt.Errorf("%w: %s", tool.ErrNotFound, path)})
	}
	return r
}

// Run implements tool.Runner.
func (r *Runner) Run(_ context.Context, args ...string) (*tool.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), args...))
	var resp Response
	ok := false
	if len(args) > 0 {
		resp, ok = r.responses[args[0]]
	}
	r.mu.Unlock()

	if !ok {
		return &tool.Result{ExitCode: 2}, &tool.ExitError{Code: 2, Stderr: "unscripted subcommand"}
	}
	if resp.Hook != nil {
		resp.Hook(args)
	}
	if resp.Err != nil {
		return &tool.Result{ExitCode: -1}, resp.Err
	}

	result := &tool.Result{Stdout: resp.Stdout, Stderr: resp.Stderr, ExitCode: resp.ExitCode}
	if resp.ExitCode != 0 {
		return result, &tool.ExitError{Code: resp.ExitCode, Stderr: resp.Stderr}
	}
	return result, nil
}

// Calls returns the argument lists of every invocation so far.
func (r *Runner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Called reports how many times subcommand was invoked.
func (r *Runner) Called(subcommand string) int {
	n := 0
	for _, c := range r.Calls() {
		if len(c) > 0 && c[0] == subcommand {
			n++
		}
	}
	return n
}
