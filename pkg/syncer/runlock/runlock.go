// Package runlock keeps two syncer processes from running against the same
// target at once.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another synchronization is running")

// Lock is a held run lock.
type Lock struct {
	flock *flock.Flock
}

// TryAcquire takes the lock at path without blocking. The lock file holds the
// PID of the owner while locked.
func TryAcquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		if pid, ok := Holder(path); ok {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, pid)
		}
		return nil, ErrLocked
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("failed to write run lock: %w", err)
	}
	return &Lock{flock: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.flock.Path()
}

// Release clears the recorded PID and unlocks. The lock file itself stays in
// place: removing it would let a process still holding the old inode lock it
// while another locks a freshly created file. It is a no-op if the lock is
// not held.
func (l *Lock) Release() error {
	if !l.flock.Locked() {
		return nil
	}
	truncErr := os.Truncate(l.flock.Path(), 0)
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	if truncErr != nil && !os.IsNotExist(truncErr) {
		return fmt.Errorf("failed to clear run lock: %w", truncErr)
	}
	return nil
}

// Holder returns the PID recorded in the lock file at path.
func Holder(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
