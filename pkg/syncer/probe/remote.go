package probe

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jamesainslie/syncer/pkg/syncer/tool"
	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

// ModTimeLayout is the format of the ModTime field in the tool's listing
// output, e.g. 2022-04-10T08:03:16.000Z. time.Parse accepts a fractional
// second of any width after the seconds field; the zone must be a literal Z.
const ModTimeLayout = "2006-01-02T15:04:05Z"

// Remote probes the remote file through the transfer tool.
type Remote struct {
	runner   tool.Runner
	toolPath string
}

// NewRemote returns a remote probe. toolPath is only used in error messages.
func NewRemote(runner tool.Runner, toolPath string) *Remote {
	return &Remote{runner: runner, toolPath: toolPath}
}

// Fingerprint returns the remote file's checksum: the first 32 characters
// printed by the checksum subcommand.
func (r *Remote) Fingerprint(ctx context.Context, remotePath string) (types.Fingerprint, error) {
	result, err := r.runner.Run(ctx, tool.CmdChecksum, remotePath)
	if err != nil {
		return types.NoFingerprint, r.checksumError(err, remotePath)
	}

	out := strings.TrimLeft(result.Stdout, " \t\r\n")
	if len(out) < types.FingerprintLen {
		return types.NoFingerprint, unexpectedChecksum(remotePath, out)
	}
	sum := strings.ToLower(out[:types.FingerprintLen])
	if _, err := hex.DecodeString(sum); err != nil {
		return types.NoFingerprint, unexpectedChecksum(remotePath, out)
	}
	return types.Fingerprint(sum), nil
}

func (r *Remote) checksumError(err error, remotePath string) error {
	if errors.Is(err, tool.ErrNotFound) {
		return &types.Error{Kind: types.KindToolNotFound, Path: r.toolPath, Err: err}
	}
	if code := tool.ExitCode(err); code > 0 {
		return ClassifyExitCode(code, remotePath)
	}
	return &types.Error{Kind: types.KindInternal, Err: err}
}

func unexpectedChecksum(remotePath, out string) error {
	line, _, _ := strings.Cut(out, "\n")
	return &types.Error{
		Kind: types.KindRemoteToolFailure,
		Path: remotePath,
		Err:  fmt.Errorf("unexpected checksum output %q", line),
	}
}

// listEntry is the subset of a listing entry syncer reads.
type listEntry struct {
	ModTime *string `json:"ModTime"`
}

// ModTime returns the remote file's modification time in UTC, taken from the
// first entry of the listing subcommand's JSON output. Unlike Fingerprint,
// every nonzero exit is reported as KindRemoteModTimeUnavailable.
func (r *Remote) ModTime(ctx context.Context, remotePath string) (time.Time, error) {
	result, err := r.runner.Run(ctx, tool.CmdList, remotePath)
	if err != nil {
		if errors.Is(err, tool.ErrNotFound) {
			return time.Time{}, &types.Error{Kind: types.KindToolNotFound, Path: r.toolPath, Err: err}
		}
		return time.Time{}, &types.Error{Kind: types.KindRemoteModTimeUnavailable, Path: remotePath, Err: err}
	}

	modTime, err := parseListing(result.Stdout)
	if err != nil {
		return time.Time{}, &types.Error{Kind: types.KindRemoteModTimeUnavailable, Path: remotePath, Err: err}
	}
	return modTime, nil
}

func parseListing(out string) (time.Time, error) {
	var entries []listEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		return time.Time{}, fmt.Errorf("decoding listing: %w", err)
	}
	if len(entries) == 0 {
		return time.Time{}, errors.New("listing is empty")
	}
	if entries[0].ModTime == nil {
		return time.Time{}, errors.New("listing has no ModTime field")
	}
	t, err := time.Parse(ModTimeLayout, *entries[0].ModTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing ModTime: %w", err)
	}
	return t.UTC(), nil
}
