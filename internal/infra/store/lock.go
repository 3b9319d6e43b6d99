package store

import (
	"fmt"
	"os"
	"time"

	"quizgate/internal/domain"

	"golang.org/x/sys/unix"
)

// FileLock is an exclusive advisory lock on a dedicated lock file. It is
// the system's sole cross-request synchronization primitive: one lock per
// data directory, no per-record locking. Acquisition is bounded so a stuck
// holder turns into a fast lock_unavailable failure instead of a hung
// request.
type FileLock struct {
	path    string
	timeout time.Duration
}

const lockPollInterval = 25 * time.Millisecond

func NewFileLock(path string, timeout time.Duration) *FileLock {
	return &FileLock{path: path, timeout: timeout}
}

// Acquire blocks until the exclusive lock is held or the timeout elapses,
// in which case it returns domain.ErrLockUnavailable. The returned release
// function unlocks and closes the handle; it is safe to call exactly once
// and must be called on every exit path.
func (l *FileLock) Acquire() (release func(), err error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	deadline := time.Now().Add(l.timeout)
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return func() {
				_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
				_ = f.Close()
			}, nil
		}
		if err != unix.EWOULDBLOCK && err != unix.EAGAIN {
			_ = f.Close()
			return nil, fmt.Errorf("flock: %w", err)
		}
		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, domain.ErrLockUnavailable
		}
		time.Sleep(lockPollInterval)
	}
}
