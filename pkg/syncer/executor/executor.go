// Package executor performs the one-directional copy chosen by the
// reconciliation engine, using the transfer tool's sync subcommand.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jamesainslie/syncer/pkg/syncer/logging"
	"github.com/jamesainslie/syncer/pkg/syncer/tool"
	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

// BackupSuffix is appended to the local file name for the pre-sync backup.
const BackupSuffix = ".bak"

// Executor copies the file in one direction.
type Executor struct {
	runner   tool.Runner
	toolPath string
}

// New returns an executor that drives the tool through runner. toolPath is
// only used in error messages.
func New(runner tool.Runner, toolPath string) *Executor {
	return &Executor{runner: runner, toolPath: toolPath}
}

// LocalToRemote syncs localPath into remoteDir.
func (e *Executor) LocalToRemote(ctx context.Context, localPath, remoteDir string) error {
	logging.Get("executor").Info("syncing local to remote", "source", localPath, "destination", remoteDir)
	return e.sync(ctx, localPath, remoteDir)
}

// RemoteToLocal syncs remotePath into the directory of localPath. An existing
// local file is first copied to localPath+BackupSuffix, replacing any earlier
// backup. It returns the backup path, or "" if there was no local file.
func (e *Executor) RemoteToLocal(ctx context.Context, remotePath, localPath string) (string, error) {
	log := logging.Get("executor")

	backup, err := Backup(localPath)
	if err != nil {
		return "", &types.Error{Kind: types.KindSyncExecutionFailed, Path: localPath, Err: err}
	}
	if backup != "" {
		log.Info("backed up local file", "path", localPath, "backup", backup)
	}

	localDir := filepath.Dir(localPath)
	log.Info("syncing remote to local", "source", remotePath, "destination", localDir)
	return backup, e.sync(ctx, remotePath, localDir)
}

func (e *Executor) sync(ctx context.Context, src, dst string) error {
	_, err := e.runner.Run(ctx, tool.CmdSync, src, dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, tool.ErrNotFound) {
		err = &types.Error{Kind: types.KindToolNotFound, Path: e.toolPath, Err: err}
	}
	return &types.Error{Kind: types.KindSyncExecutionFailed, Path: src, Err: err}
}

// Backup copies path to path+BackupSuffix if path exists, overwriting any
// previous backup and keeping the file mode. It returns the backup path, or
// "" when there is nothing to back up.
func Backup(path string) (string, error) {
	src, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("opening %s for backup: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	backup := path + BackupSuffix
	dst, err := os.OpenFile(backup, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("creating backup %s: %w", backup, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("writing backup %s: %w", backup, err)
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("syncing backup %s: %w", backup, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing backup %s: %w", backup, err)
	}
	return backup, nil
}
