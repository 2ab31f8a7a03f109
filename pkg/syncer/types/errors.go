package types

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies a class of failure in a reconciliation run.
type Kind int

// Error kinds. Every kind is terminal for the current run.
const (
	KindInternal Kind = iota
	KindToolNotFound
	KindRemotePathSyntax
	KindRemoteFileNotFound
	KindRemoteToolFailure
	KindRemoteModTimeUnavailable
	KindLocalModTimeUnavailable
	KindAmbiguousConflict
	KindSyncExecutionFailed
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindToolNotFound:
		return "tool_not_found"
	case KindRemotePathSyntax:
		return "remote_path_syntax"
	case KindRemoteFileNotFound:
		return "remote_file_not_found"
	case KindRemoteToolFailure:
		return "remote_tool_failure"
	case KindRemoteModTimeUnavailable:
		return "remote_modtime_unavailable"
	case KindLocalModTimeUnavailable:
		return "local_modtime_unavailable"
	case KindAmbiguousConflict:
		return "ambiguous_conflict"
	case KindSyncExecutionFailed:
		return "sync_execution_failed"
	default:
		return "internal"
	}
}

// Error is a classified reconciliation failure. Error() yields the single
// human-readable message surfaced to observers.
type Error struct {
	Kind Kind

	// Path is the file or binary the failure refers to.
	Path string

	// Code is the exit code of the external tool, for KindRemoteToolFailure.
	Code int

	// Delta is the modification-time difference, for KindAmbiguousConflict.
	Delta time.Duration

	// Err is the underlying cause, if any.
	Err error
}

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrInternal                 = &Error{Kind: KindInternal}
	ErrToolNotFound             = &Error{Kind: KindToolNotFound}
	ErrRemotePathSyntax         = &Error{Kind: KindRemotePathSyntax}
	ErrRemoteFileNotFound       = &Error{Kind: KindRemoteFileNotFound}
	ErrRemoteToolFailure        = &Error{Kind: KindRemoteToolFailure}
	ErrRemoteModTimeUnavailable = &Error{Kind: KindRemoteModTimeUnavailable}
	ErrLocalModTimeUnavailable  = &Error{Kind: KindLocalModTimeUnavailable}
	ErrAmbiguousConflict        = &Error{Kind: KindAmbiguousConflict}
	ErrSyncExecutionFailed      = &Error{Kind: KindSyncExecutionFailed}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindToolNotFound:
		return fmt.Sprintf("specified transfer tool %s does not exist, please check your settings", e.Path)
	case KindRemotePathSyntax:
		return fmt.Sprintf("syntax error in remote file %s, please check your settings", e.Path)
	case KindRemoteFileNotFound:
		return fmt.Sprintf("remote file %s does not exist, please check your settings", e.Path)
	case KindRemoteToolFailure:
		if e.Err != nil {
			return fmt.Sprintf("transfer tool failed on %s: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("transfer tool returned exit code %d, see https://rclone.org/docs/#exit-code", e.Code)
	case KindRemoteModTimeUnavailable:
		if e.Err != nil {
			return fmt.Sprintf("can't determine modification time of remote file %s: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("can't determine modification time of remote file %s", e.Path)
	case KindLocalModTimeUnavailable:
		return fmt.Sprintf("can't determine modification time of local file %s: %v", e.Path, e.Err)
	case KindAmbiguousConflict:
		return fmt.Sprintf("time difference of %.3f seconds is too small to ensure picking the right file", e.Delta.Seconds())
	case KindSyncExecutionFailed:
		return fmt.Sprintf("synchronization of %s failed: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("internal error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of err. Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// AsError returns err as an *Error, wrapping anything outside the taxonomy
// as KindInternal. It returns nil for a nil error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Err: err}
}
