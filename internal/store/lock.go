package store

import (
	"fmt"

	"github.com/gofrs/flock"
)

// WriterLock is a cross-process single-writer guard over the store file
// and the sibling index directories, backed by a file lock so a second
// process opening the same store waits until the first releases it instead
// of writing concurrently and corrupting shared state.
type WriterLock struct {
	flock *flock.Flock
	path  string
}

// AcquireWriterLock blocks until the exclusive lock on <dbPath>.lock is
// acquired.
func AcquireWriterLock(dbPath string) (*WriterLock, error) {
	lockPath := dbPath + ".lock"
	fl := flock.New(lockPath)

	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire writer lock %s: %w", lockPath, err)
	}

	return &WriterLock{flock: fl, path: lockPath}, nil
}

// Release unlocks the writer lock.
func (l *WriterLock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}

// Path returns the lock file's path.
func (l *WriterLock) Path() string {
	return l.path
}

// IsLocked reports whether this process currently holds the lock.
func (l *WriterLock) IsLocked() bool {
	return l.flock.Locked()
}
