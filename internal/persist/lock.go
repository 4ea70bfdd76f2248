// Package persist is the engine's optional snapshot layer: an
// LRU-fronted atom cache, a cross-process file lock guarding the
// snapshot file, and a pure-Go SQLite store for the vertex arena. The
// lock and the SQLite store back Graph.Snapshot()/LoadSnapshot() (a
// supplemented feature beyond the spec's in-memory-only interface);
// the atom cache fronts Graph.InsertAtom, and with it every Insert,
// FindAncestor and FindPattern, when AtomCacheSize > 0.
package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// StoreLock provides cross-process exclusive locking around a snapshot
// path, so two engine instances never write the same file at once.
type StoreLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewStoreLock creates a lock for the given snapshot path. The lock
// file lives alongside it at <path>.lock.
func NewStoreLock(snapshotPath string) *StoreLock {
	lockPath := snapshotPath + ".lock"
	return &StoreLock{path: lockPath, flock: flock.New(lockPath)}
}

func (l *StoreLock) ensureDir() error {
	dir := filepath.Dir(l.path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	return nil
}

// Lock acquires an exclusive lock, blocking until it is available.
func (l *StoreLock) Lock() error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	l.locked = true
	return nil
}

// LockTimeout acquires an exclusive lock, giving up with an error if
// timeout elapses before it becomes available. A non-positive timeout
// behaves like TryLock (a single, non-blocking attempt).
func (l *StoreLock) LockTimeout(timeout time.Duration) error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	if timeout <= 0 {
		acquired, err := l.TryLock()
		if err != nil {
			return err
		}
		if !acquired {
			return fmt.Errorf("lock %s: held by another process", l.path)
		}
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	acquired, err := l.flock.TryLockContext(ctx, 20*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("lock %s: timed out after %s", l.path, timeout)
	}
	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking.
func (l *StoreLock) TryLock() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Safe to call on an already-unlocked lock.
func (l *StoreLock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		l.locked = false
		return fmt.Errorf("release lock: %w", err)
	}
	l.locked = false
	return nil
}

// Path returns the path to the lock file.
func (l *StoreLock) Path() string { return l.path }

// IsLocked reports whether this handle currently holds the lock.
func (l *StoreLock) IsLocked() bool { return l.locked }
