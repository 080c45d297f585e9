package transaction

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAcquireLock(t *testing.T) {
	t.Run("creates lock file with metadata", func(t *testing.T) {
		dir := t.TempDir()

		lock, err := AcquireLock(dir)
		if err != nil {
			t.Fatalf("AcquireLock failed: %v", err)
		}
		defer lock.Release()

		data, err := os.ReadFile(filepath.Join(dir, "foundryup.lock"))
		if err != nil {
			t.Fatalf("lock file not created: %v", err)
		}
		if !strings.Contains(string(data), "pid=") {
			t.Errorf("lock metadata missing pid: %q", data)
		}
	})

	t.Run("prevents concurrent runs", func(t *testing.T) {
		dir := t.TempDir()

		lock1, err := AcquireLock(dir)
		if err != nil {
			t.Fatalf("first AcquireLock failed: %v", err)
		}
		defer lock1.Release()

		_, err = AcquireLock(dir)
		if !errors.Is(err, ErrLockExists) {
			t.Errorf("second AcquireLock error = %v, want ErrLockExists", err)
		}
	})

	t.Run("creates lock directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "root", "tmp")

		lock, err := AcquireLock(dir)
		if err != nil {
			t.Fatalf("AcquireLock failed: %v", err)
		}
		lock.Release()
	})

	t.Run("replaces stale lock", func(t *testing.T) {
		dir := t.TempDir()
		lockPath := filepath.Join(dir, "foundryup.lock")
		if err := os.WriteFile(lockPath, []byte("pid=1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-StaleLockThreshold - time.Minute)
		if err := os.Chtimes(lockPath, old, old); err != nil {
			t.Fatal(err)
		}

		lock, err := AcquireLock(dir)
		if err != nil {
			t.Fatalf("AcquireLock over stale lock failed: %v", err)
		}
		defer lock.Release()
	})

	t.Run("keeps fresh lock", func(t *testing.T) {
		dir := t.TempDir()
		lockPath := filepath.Join(dir, "foundryup.lock")
		if err := os.WriteFile(lockPath, []byte("pid=1\n"), 0600); err != nil {
			t.Fatal(err)
		}

		_, err := AcquireLock(dir)
		if !errors.Is(err, ErrLockExists) {
			t.Errorf("AcquireLock over fresh lock error = %v, want ErrLockExists", err)
		}
	})
}

func TestLockRelease(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "foundryup.lock")); !os.IsNotExist(err) {
		t.Error("lock file still exists after release")
	}

	// Releasing twice is harmless.
	if err := lock.Release(); err != nil {
		t.Errorf("second Release failed: %v", err)
	}

	// The lock can be taken again.
	lock2, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("re-acquire after release failed: %v", err)
	}
	lock2.Release()
}
