// Package types provides the core data types shared by the syncer packages:
// the file fingerprint, the sync target, reconciliation decisions and outcomes,
// and the error taxonomy reported to collaborators.
package types

import (
	"errors"
	"path/filepath"
	"strings"
)

// FingerprintLen is the number of hex characters in a content fingerprint.
const FingerprintLen = 32

// Fingerprint is the hex-encoded 128-bit content hash of a file.
type Fingerprint string

// NoFingerprint marks a file that does not exist.
const NoFingerprint Fingerprint = ""

// Present reports whether the fingerprint belongs to an existing file.
func (f Fingerprint) Present() bool {
	return f != NoFingerprint
}

// String returns the fingerprint, or "<absent>" for a missing file.
func (f Fingerprint) String() string {
	if !f.Present() {
		return "<absent>"
	}
	return string(f)
}

// Target describes the one local file and the remote directory it is kept in
// agreement with. It is read-only for the duration of a run.
type Target struct {
	// ToolPath is the path to the external transfer tool binary.
	ToolPath string `json:"tool_path" yaml:"tool_path"`

	// LocalFile is the path of the local copy.
	LocalFile string `json:"local_file" yaml:"local_file"`

	// RemoteDir is the remote directory, e.g. "gdrive:notes" or "gdrive:".
	RemoteDir string `json:"remote_dir" yaml:"remote_dir"`
}

// ErrInvalidTarget is returned by Validate when a required field is empty.
var ErrInvalidTarget = errors.New("invalid sync target")

// Validate checks that every field of the target is set.
func (t Target) Validate() error {
	var missing []string
	if t.ToolPath == "" {
		missing = append(missing, "tool_path")
	}
	if t.LocalFile == "" {
		missing = append(missing, "local_file")
	}
	if t.RemoteDir == "" {
		missing = append(missing, "remote_dir")
	}
	if len(missing) > 0 {
		return &validationError{fields: missing}
	}
	return nil
}

type validationError struct {
	fields []string
}

func (e *validationError) Error() string {
	return ErrInvalidTarget.Error() + ": missing " + strings.Join(e.fields, ", ")
}

func (e *validationError) Unwrap() error { return ErrInvalidTarget }

// RemoteFile returns the remote path of the synchronized file: RemoteDir joined
// with the base name of LocalFile. No separator is inserted when RemoteDir
// already ends in ':' or '/'.
func (t Target) RemoteFile() string {
	name := filepath.Base(t.LocalFile)
	if strings.HasSuffix(t.RemoteDir, ":") || strings.HasSuffix(t.RemoteDir, "/") {
		return t.RemoteDir + name
	}
	return t.RemoteDir + "/" + name
}

// LocalDir returns the directory that contains LocalFile.
func (t Target) LocalDir() string {
	return filepath.Dir(t.LocalFile)
}

// Decision is the result of reconciling the two copies.
type Decision int

// Reconciliation decisions.
const (
	NoActionNeeded Decision = iota
	SyncLocalToRemote
	SyncRemoteToLocal
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	switch d {
	case NoActionNeeded:
		return "none"
	case SyncLocalToRemote:
		return "local-to-remote"
	case SyncRemoteToLocal:
		return "remote-to-local"
	default:
		return "unknown"
	}
}

// OutcomeKind classifies a successful run.
type OutcomeKind int

// Successful run outcomes.
const (
	Unchanged OutcomeKind = iota
	SucceededLocalToRemote
	SucceededRemoteToLocal
)

// String returns the string representation of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case SucceededLocalToRemote:
		return "synced-local-to-remote"
	case SucceededRemoteToLocal:
		return "synced-remote-to-local"
	default:
		return "unknown"
	}
}

// OutcomeFor maps a decision to the outcome of carrying it out.
func OutcomeFor(d Decision) OutcomeKind {
	switch d {
	case SyncLocalToRemote:
		return SucceededLocalToRemote
	case SyncRemoteToLocal:
		return SucceededRemoteToLocal
	default:
		return Unchanged
	}
}
