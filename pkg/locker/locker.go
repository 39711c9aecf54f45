// Package locker coordinates download jobs across service instances.
package locker

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned by WithLock when another holder owns the key.
var ErrLockHeld = errors.New("lock held by another holder")

// DistributedLocker provides lock capabilities across instances.
// Implementations must be safe for concurrent use.
type DistributedLocker interface {
	// Acquire attempts to take the lock without waiting. It returns false
	// when another holder owns it. The lock expires after ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees the lock. Releasing a lock this holder does not own is a no-op.
	Release(ctx context.Context, key string) error
}

// WithLock runs fn while holding key and releases it afterwards.
// It returns ErrLockHeld without calling fn when the lock is taken.
func WithLock(ctx context.Context, l DistributedLocker, key string, ttl time.Duration, fn func(context.Context) error) error {
	acquired, err := l.Acquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrLockHeld
	}

	defer func() {
		// The caller's context may already be done; release on a fresh one.
		_ = l.Release(context.WithoutCancel(ctx), key)
	}()

	return fn(ctx)
}
