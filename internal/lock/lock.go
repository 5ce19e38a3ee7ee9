// Package lock serializes privileged commands across processes with an
// advisory file lock.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// retryDelay is how often a blocked Acquire polls the lock
const retryDelay = 50 * time.Millisecond

// FileLock wraps a flock file lock
type FileLock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock backed by the file at path. Nothing is touched until Acquire.
func New(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path
func (l *FileLock) Path() string {
	return l.path
}

// Acquire takes the exclusive lock, blocking until it is free or ctx is done
func (l *FileLock) Acquire(ctx context.Context) error {
	if err := l.ensureDir(); err != nil {
		return err
	}

	locked, err := l.flock.TryLockContext(ctx, retryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, context.Cause(ctx))
	}
	return nil
}

// TryAcquire takes the lock without blocking and reports whether it succeeded
func (l *FileLock) TryAcquire() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}

	locked, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	return locked, nil
}

// Release frees the lock
func (l *FileLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

func (l *FileLock) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	return nil
}
