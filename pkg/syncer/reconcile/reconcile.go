// Package reconcile decides which copy of the synchronized file is
// authoritative. Content fingerprints are the primary signal; modification
// times are consulted only when the fingerprints differ and both files exist,
// and only when they are far enough apart to be trusted.
package reconcile

import (
	"context"
	"time"

	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

// DefaultThreshold is the minimum modification-time difference needed to pick
// a direction when the contents differ.
const DefaultThreshold = 30 * time.Second

// ModTimes supplies modification times on demand. The engine calls it only
// when the fingerprints differ and the local file exists.
type ModTimes interface {
	LocalModTime(ctx context.Context) (time.Time, error)
	RemoteModTime(ctx context.Context) (time.Time, error)
}

// Evaluation records what the engine looked at to reach a decision.
type Evaluation struct {
	Decision types.Decision

	// TimesCompared is set when modification times were fetched.
	TimesCompared bool
	LocalModTime  time.Time
	RemoteModTime time.Time

	// Delta is the absolute difference between the modification times.
	Delta time.Duration
}

// Engine is the reconciliation decision procedure.
type Engine struct {
	// Threshold is the strict lower bound on the modification-time delta.
	// Zero uses DefaultThreshold.
	Threshold time.Duration
}

// New returns an engine with the given threshold. Zero or less uses
// DefaultThreshold.
func New(threshold time.Duration) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{Threshold: threshold}
}

func (e *Engine) threshold() time.Duration {
	if e == nil || e.Threshold <= 0 {
		return DefaultThreshold
	}
	return e.Threshold
}

// Decide compares the fingerprints and, when needed, the modification times.
//
//  1. equal fingerprints: NoActionNeeded
//  2. local file absent: SyncRemoteToLocal
//  3. |local - remote| < threshold: KindAmbiguousConflict error
//  4. the newer copy wins
//
// Errors from the ModTimes source are returned unchanged.
func (e *Engine) Decide(ctx context.Context, local, remote types.Fingerprint, times ModTimes) (Evaluation, error) {
	if local == remote {
		return Evaluation{Decision: types.NoActionNeeded}, nil
	}
	if !local.Present() {
		return Evaluation{Decision: types.SyncRemoteToLocal}, nil
	}

	remoteTime, err := times.RemoteModTime(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	localTime, err := times.LocalModTime(ctx)
	if err != nil {
		return Evaluation{}, err
	}

	eval := Evaluation{
		TimesCompared: true,
		LocalModTime:  localTime,
		RemoteModTime: remoteTime,
		Delta:         absDuration(localTime.Sub(remoteTime)),
	}

	if eval.Delta < e.threshold() {
		return eval, &types.Error{Kind: types.KindAmbiguousConflict, Delta: eval.Delta}
	}

	if localTime.After(remoteTime) {
		eval.Decision = types.SyncLocalToRemote
	} else {
		eval.Decision = types.SyncRemoteToLocal
	}
	return eval, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
