package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/syncer/pkg/syncer/reconcile"
	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

// runIDTimeFormat has a fixed width so that run IDs sort by time.
const runIDTimeFormat = "2006-01-02T15-04-05.000000"

// NewRunID returns an ID like "sync-2024-06-15T10-30-00.123456-1b4e28ba" for
// a run started at ts.
func NewRunID(ts time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("sync-%s-%s", ts.UTC().Format(runIDTimeFormat), suffix)
}

// Report describes one completed run.
type Report struct {
	ID     string
	Target types.Target

	Decision types.Decision
	Outcome  types.OutcomeKind
	DryRun   bool
	Message  string

	LocalFingerprint  types.Fingerprint
	RemoteFingerprint types.Fingerprint

	// Modification times are only set when TimesCompared is true.
	TimesCompared bool
	LocalModTime  time.Time
	RemoteModTime time.Time
	Delta         time.Duration

	BackupPath string

	StartedAt  time.Time
	FinishedAt time.Time

	Err *types.Error
}

// Succeeded reports whether the run ended in Finished.
func (r *Report) Succeeded() bool {
	return r.Err == nil
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) apply(e reconcile.Evaluation) {
	r.Decision = e.Decision
	r.TimesCompared = e.TimesCompared
	r.LocalModTime = e.LocalModTime
	r.RemoteModTime = e.RemoteModTime
	r.Delta = e.Delta
}
