package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker implements DistributedLocker with Redsync (Redlock).
// Keys are namespaced with the configured prefix so several projects can
// share one Redis.
type RedisLocker struct {
	rs     *redsync.Redsync
	prefix string
	logger *zap.Logger

	mu      sync.Mutex
	mutexes map[string]*redsync.Mutex
}

// NewRedisLocker creates a new Redis-based locker.
func NewRedisLocker(client *redis.Client, prefix string, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		rs:      redsync.New(goredis.NewPool(client)),
		prefix:  prefix,
		logger:  logger,
		mutexes: make(map[string]*redsync.Mutex),
	}
}

// Acquire makes a single, non-blocking attempt at the lock.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	name := r.name(key)
	mutex := r.rs.NewMutex(name,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		// Contention surfaces either as ErrFailed or as a wrapped "lock already taken".
		if errors.Is(err, redsync.ErrFailed) || strings.Contains(err.Error(), "lock already taken") {
			r.logger.Debug("lock already held", zap.String("key", name))
			return false, nil
		}

		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}

	r.mu.Lock()
	r.mutexes[key] = mutex
	r.mu.Unlock()

	r.logger.Debug("lock acquired", zap.String("key", name), zap.Duration("ttl", ttl))

	return true, nil
}

// Release frees the lock if this instance holds it.
func (r *RedisLocker) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	mutex, ok := r.mutexes[key]
	delete(r.mutexes, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	released, err := mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", r.name(key), err)
	}
	if !released {
		r.logger.Debug("lock already expired", zap.String("key", r.name(key)))
	}

	return nil
}

func (r *RedisLocker) name(key string) string {
	if r.prefix == "" {
		return key
	}

	return r.prefix + ":lock:" + key
}
