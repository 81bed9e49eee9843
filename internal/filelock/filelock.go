// Package filelock guards submissions against concurrent runs and writes
// generated files atomically.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrLocked is returned when another process holds the submission lock.
	ErrLocked = errors.New("another bulkcomplete run is submitting")
	// ErrExists is returned by WriteNew when the target exists and overwrite is off.
	ErrExists = errors.New("file already exists")
)

// FileLock wraps a flock file lock for coordinating access between processes.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file is created on first lock.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file location.
func (fl *FileLock) Path() string {
	return fl.path
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held by another process.
func (fl *FileLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(fl.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", fl.path, err)
	}
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// LockContext retries every retryDelay until the lock is acquired or ctx ends.
func (fl *FileLock) LockContext(ctx context.Context, retryDelay time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(fl.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", fl.path, err)
	}
	acquired, err := fl.flock.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %v", ErrLocked, fl.path, ctx.Err())
		}
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrLocked, fl.path)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AcquireSubmissionLock takes the lock at path without waiting. It fails with
// ErrLocked while another run is submitting.
func AcquireSubmissionLock(path string) (*FileLock, error) {
	lock := NewFileLock(path)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return lock, nil
}

// AtomicWrite writes data to path through a temp file in the same directory
// and a rename, so readers never see a partial file. On failure the original
// file, if any, is left unchanged.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Renamed, nothing to clean up
	tempFile = nil
	return nil
}

// WriteNew writes data atomically while holding path + ".lock". Without
// overwrite an existing file is left alone and ErrExists is returned.
func WriteNew(path string, data []byte, overwrite bool) error {
	lock := NewFileLock(path + ".lock")
	if err := lock.LockContext(context.Background(), 10*time.Millisecond); err != nil {
		return err
	}
	defer func() {
		lock.Unlock()
		os.Remove(lock.Path())
	}()

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	return AtomicWrite(path, data)
}
