package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewFileLock(t *testing.T) {
	tmpDir := t.TempDir()
	lockPath := filepath.Join(tmpDir, "test.lock")

	lock := NewFileLock(lockPath)
	if lock == nil {
		t.Fatal("NewFileLock should not return nil")
	}

	if lock.Path() != lockPath {
		t.Errorf("Expected lock path %s, got %s", lockPath, lock.Path())
	}
}

func TestTryLock(t *testing.T) {
	tmpDir := t.TempDir()
	lockPath := filepath.Join(tmpDir, "test.lock")

	lock1 := NewFileLock(lockPath)
	lock2 := NewFileLock(lockPath)

	acquired, err := lock1.TryLock()
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if !acquired {
		t.Fatal("First TryLock should succeed")
	}

	acquired, err = lock2.TryLock()
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if acquired {
		t.Error("Second TryLock should fail when lock is held")
	}

	if err := lock1.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	acquired, err = lock2.TryLock()
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if !acquired {
		t.Error("TryLock should succeed after unlock")
	}

	lock2.Unlock()
}

func TestTryLockCreatesDirectory(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "nested", "dir", "complete.lock")

	lock := NewFileLock(lockPath)
	acquired, err := lock.TryLock()
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if !acquired {
		t.Fatal("TryLock should succeed")
	}
	defer lock.Unlock()

	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("Lock file should exist: %v", err)
	}
}

func TestAcquireSubmissionLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "complete.lock")

	held, err := AcquireSubmissionLock(lockPath)
	if err != nil {
		t.Fatalf("AcquireSubmissionLock failed: %v", err)
	}

	_, err = AcquireSubmissionLock(lockPath)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("Expected ErrLocked while held, got %v", err)
	}

	if err := held.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	again, err := AcquireSubmissionLock(lockPath)
	if err != nil {
		t.Fatalf("Lock should be free after unlock: %v", err)
	}
	again.Unlock()
}

func TestLockContextWaitsForRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	holder := NewFileLock(lockPath)
	if ok, err := holder.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock failed: ok=%v err=%v", ok, err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		holder.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	waiter := NewFileLock(lockPath)
	if err := waiter.LockContext(ctx, 5*time.Millisecond); err != nil {
		t.Fatalf("LockContext should acquire after release: %v", err)
	}
	waiter.Unlock()
}

func TestLockContextTimeout(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	holder := NewFileLock(lockPath)
	if ok, err := holder.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock failed: ok=%v err=%v", ok, err)
	}
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := NewFileLock(lockPath).LockContext(ctx, 5*time.Millisecond)
	if !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked on timeout, got %v", err)
	}
}

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	content := []byte("A-1:\n  Reviewed: true\n")

	if err := AtomicWrite(path, content); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("Expected %q, got %q", content, data)
	}
}

func TestAtomicWriteOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")

	if err := AtomicWrite(path, []byte("old")); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWrite(path, []byte("new")); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("Expected 'new', got %q", data)
	}
}

func TestAtomicWritePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")

	if err := AtomicWrite(path, []byte("x")); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("Expected permissions 0644, got %o", info.Mode().Perm())
	}
}

func TestAtomicWriteNoTempFileLeftBehind(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "answers.yaml")

	for i := 0; i < 3; i++ {
		if err := AtomicWrite(path, []byte(fmt.Sprintf("v%d", i))); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestAtomicWriteCreateDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "templates", "answers.yaml")

	if err := AtomicWrite(path, []byte("x")); err != nil {
		t.Fatalf("AtomicWrite should create parent directories: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("File should exist: %v", err)
	}
}

func TestWriteNew(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "answers.yaml")

	if err := WriteNew(path, []byte("first"), false); err != nil {
		t.Fatalf("WriteNew failed: %v", err)
	}

	err := WriteNew(path, []byte("second"), false)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("Expected ErrExists, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "first" {
		t.Errorf("Existing file should be unchanged, got %q", data)
	}

	if err := WriteNew(path, []byte("second"), true); err != nil {
		t.Fatalf("WriteNew with overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("Expected 'second', got %q", data)
	}

	if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
		t.Error("Lock file should be removed after WriteNew")
	}
}

func TestConcurrentWriteNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")

	const writers = 5
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- WriteNew(path, []byte(fmt.Sprintf("writer %d", n)), false)
		}(i)
	}
	wg.Wait()
	close(errs)

	written := 0
	for err := range errs {
		switch {
		case err == nil:
			written++
		case errors.Is(err, ErrExists):
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if written != 1 {
		t.Errorf("Expected exactly one writer to create the file, got %d", written)
	}
}
