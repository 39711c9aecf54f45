package locker

import (
	"context"
	"sync"
	"time"
)

// LocalLocker implements DistributedLocker inside a single process.
// It is used when Redis is disabled; locks still expire after their ttl.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
	now   func() time.Time
}

// NewLocalLocker creates a new in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Acquire takes the lock unless an unexpired holder exists.
func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expires, held := l.locks[key]; held && now.Before(expires) {
		return false, nil
	}
	l.locks[key] = now.Add(ttl)

	return true, nil
}

// Release drops the lock. Releasing an unknown key is a no-op.
func (l *LocalLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.locks, key)

	return nil
}
