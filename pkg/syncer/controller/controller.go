// Package controller runs one reconciliation at a time: probe both copies,
// decide a direction, copy, and report exactly one outcome.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"


	"github.com/jamesainslie/syncer/pkg/syncer/executor"
	"github.com/jamesainslie/syncer/pkg/syncer/logging"
	"github.com/jamesainslie/syncer/pkg/syncer/probe"
	"github.com/jamesainslie/syncer/pkg/syncer/reconcile"
	"github.com/jamesainslie/syncer/pkg/syncer/tool"
	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

// ErrRunInProgress is returned by Run when another run has not finished yet.
var ErrRunInProgress = errors.New("a synchronization is already in progress")

// Outcome messages.
const (
	MessageUnchanged     = "Files are already synchronized"
	MessageLocalToRemote = "Synchronized local to remote"
	MessageRemoteToLocal = "Synchronized remote to local"

	MessageDryRunLocalToRemote = "Would synchronize local to remote"
	MessageDryRunRemoteToLocal = "Would synchronize remote to local"
)

// State is the lifecycle state of a Controller.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Options configures a Controller.
type Options struct {
	// Observer receives the outcome signals. Nil means none.
	Observer Observer

	// Threshold overrides reconcile.DefaultThreshold when positive.
	Threshold time.Duration

	// DryRun stops after the decision; nothing is copied.
	DryRun bool
}

// Controller drives runs for a single target.
type Controller struct {
	target   types.Target
	remote   *probe.Remote
	executor *executor.Executor
	engine   *reconcile.Engine
	observer Observer
	dryRun   bool

	state atomic.Int32
	now   func() time.Time
}

// New returns a controller for target that invokes the transfer tool
// through runner.
func New(target types.Target, runner tool.Runner, opts Options) *Controller {
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Controller{
		target:   target,
		remote:   probe.NewRemote(runner, target.ToolPath),
		executor: executor.New(runner, target.ToolPath),
		engine:   reconcile.New(opts.Threshold),
		observer: observer,
		dryRun:   opts.DryRun,
		now:      time.Now,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Run performs one reconciliation. If a run is already in flight it returns
// ErrRunInProgress at once without signalling the observer. Otherwise the
// returned report is always non-nil, and the error, if any, is a *types.Error.
func (c *Controller) Run(ctx context.Context) (*Report, error) {
	if !c.begin() {
		logging.Get("controller").Warn("rejected run, another one is in progress")
		return nil, ErrRunInProgress
	}

	started := c.now()
	report := &Report{
		ID:        NewRunID(started),
		Target:    c.target,
		DryRun:    c.dryRun,
		StartedAt: started,
	}
	c.observer.Started()

	err := c.guarded(ctx, report)
	report.FinishedAt = c.now()

	if err != nil {
		report.Err = types.AsError(err)
		report.Message = report.Err.Error()
		c.state.Store(int32(StateFailed))
		logging.Get("controller").Error("run failed", "id", report.ID, "kind", types.KindOf(report.Err), "error", report.Message)
		c.observer.Failed(report.Message)
		return report, report.Err
	}

	c.state.Store(int32(StateFinished))
	logging.Get("controller").Info("run finished", "id", report.ID, "outcome", report.Outcome, "duration", report.Duration())
	c.observer.Finished(report.Message)
	return report, nil
}

func (c *Controller) begin() bool {
	for {
		cur := c.state.Load()
		if State(cur) == StateRunning {
			return false
		}
		if c.state.CompareAndSwap(cur, int32(StateRunning)) {
			return true
		}
	}
}

// guarded converts a panic anywhere in the run into an internal error so the
// run still ends with a terminal signal.
func (c *Controller) guarded(ctx context.Context, report *Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &types.Error{Kind: types.KindInternal, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return c.run(ctx, report)
}

func (c *Controller) run(ctx context.Context, report *Report) error {
	log := logging.Get("controller").With("id", report.ID)

	if err := c.target.Validate(); err != nil {
		return err
	}
	remotePath := c.target.RemoteFile()
	localPath := c.target.LocalFile
	log.Info("starting run", "local", localPath, "remote", remotePath)

	remoteFP, err := c.remote.Fingerprint(ctx, remotePath)
	if err != nil {
		return err
	}
	report.RemoteFingerprint = remoteFP

	localFP, err := probe.LocalFingerprint(localPath)
	if err != nil {
		return err
	}
	report.LocalFingerprint = localFP
	log.Debug("fingerprints", "local", localFP, "remote", remoteFP)

	eval, err := c.engine.Decide(ctx, localFP, remoteFP, modTimes{
		remote:     c.remote,
		remotePath: remotePath,
		localPath:  localPath,
	})
	report.apply(eval)
	if err != nil {
		return err
	}
	log.Info("decided", "decision", eval.Decision, "delta", eval.Delta)

	if c.dryRun {
		report.Message = dryRunMessage(eval.Decision)
		return nil
	}

	switch eval.Decision {
	case types.NoActionNeeded:
		report.Message = MessageUnchanged
	case types.SyncLocalToRemote:
		if err := c.executor.LocalToRemote(ctx, localPath, c.target.RemoteDir); err != nil {
			return err
		}
		report.Message = MessageLocalToRemote
	case types.SyncRemoteToLocal:
		backup, err := c.executor.RemoteToLocal(ctx, remotePath, localPath)
		report.BackupPath = backup
		if err != nil {
			return err
		}
		report.Message = MessageRemoteToLocal
	default:
		return &types.Error{Kind: types.KindInternal, Err: fmt.Errorf("unknown decision %v", eval.Decision)}
	}
	report.Outcome = types.OutcomeFor(eval.Decision)
	return nil
}

func dryRunMessage(d types.Decision) string {
	switch d {
	case types.SyncLocalToRemote:
		return MessageDryRunLocalToRemote
	case types.SyncRemoteToLocal:
		return MessageDryRunRemoteToLocal
	default:
		return MessageUnchanged
	}
}

type modTimes struct {
	remote     *probe.Remote
	remotePath string
	localPath  string
}

func (m modTimes) LocalModTime(context.Context) (time.Time, error) {
	return probe.LocalModTime(m.localPath)
}

func (m modTimes) RemoteModTime(ctx context.Context) (time.Time, error) {
	return m.remote.ModTime(ctx, m.remotePath)
}
