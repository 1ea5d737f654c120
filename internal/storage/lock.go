package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout bounds how long a writer waits for the sidecar
// lock before giving up.
const DefaultLockTimeout = 10 * time.Second

const lockRetryInterval = 50 * time.Millisecond

// WithLock takes an exclusive flock on path+".lock", runs fn, and
// releases the lock. The lock covers the whole read-modify-write
// cycle, so concurrent tl processes serialize instead of clobbering
// each other's saves.
func WithLock(ctx context.Context, path string, timeout time.Duration, fn func() error) error {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	fl := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := fl.TryLockContext(lockCtx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: timed out after %s", fl.Path(), timeout)
	}
	defer fl.Unlock()

	return fn()
}

// Transact opens the store under the document lock, runs fn against
// it, and saves if fn succeeds. Mutations made by fn are discarded on
// error.
func Transact(ctx context.Context, path string, fn func(*Store) error) error {
	return WithLock(ctx, path, DefaultLockTimeout, func() error {
		s, err := Open(path)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		return s.Save()
	})
}
