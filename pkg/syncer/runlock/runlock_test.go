package runlock

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTryAcquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "syncer.lock")

	lock, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire() error = %v", err)
	}

	pid, ok := Holder(path)
	if !ok || pid != os.Getpid() {
		t.Errorf("Holder() = %d, %v; want %d, true", pid, ok, os.Getpid())
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("lock file must survive Release(), stat error = %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("lock file size = %d after Release(), want 0", info.Size())
	}
	if _, ok := Holder(path); ok {
		t.Error("Holder() reported a pid after Release()")
	}

	// a second release is harmless
	if err := lock.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}

func TestTryAcquire_Contended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syncer.lock")

	first, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("first TryAcquire() error = %v", err)
	}
	defer first.Release()

	_, err = TryAcquire(path)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("second TryAcquire() error = %v, want ErrLocked", err)
	}
	if !strings.Contains(err.Error(), "pid") {
		t.Errorf("error %q should name the holder pid", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	again, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire() after release error = %v", err)
	}
	_ = again.Release()
}

func TestHolder_Invalid(t *testing.T) {
	dir := t.TempDir()

	if _, ok := Holder(filepath.Join(dir, "missing")); ok {
		t.Error("Holder() on missing file reported ok")
	}

	path := filepath.Join(dir, "garbage.lock")
	if err := os.WriteFile(path, []byte("not a pid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := Holder(path); ok {
		t.Error("Holder() on garbage reported ok")
	}
}
