// Package probe gathers the content fingerprint and modification time of the
// local file (from the filesystem) and of the remote file (through the
// external transfer tool).
package probe

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

// chunkSize is the read size used when hashing local files.
const chunkSize = 8 * 1024

// LocalFingerprint returns the MD5 hex digest of the file at path, or
// types.NoFingerprint if the file does not exist. Other I/O failures are
// returned as errors.
func LocalFingerprint(path string) (types.Fingerprint, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.NoFingerprint, nil
	}
	if err != nil {
		return types.NoFingerprint, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	hash := md5.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(hash, f, buf); err != nil {
		return types.NoFingerprint, fmt.Errorf("hashing %s: %w", path, err)
	}
	return types.Fingerprint(hex.EncodeToString(hash.Sum(nil))), nil
}

// LocalModTime returns the modification time of the file at path in UTC.
// The caller must have confirmed the file exists; a failed stat, including a
// missing file, yields a KindLocalModTimeUnavailable error.
func LocalModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, &types.Error{Kind: types.KindLocalModTimeUnavailable, Path: path, Err: err}
	}
	return info.ModTime().UTC(), nil
}
