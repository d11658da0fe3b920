package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

// ErrLockHeld is returned when the lock could not be obtained before the
// retry budget ran out.
var ErrLockHeld = errors.New("lock held by another holder")

// Locker hands out short lived named locks shared by every instance.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewLocker returns nil when c is nil so callers can treat the lock as optional.
func NewLocker(c *Client, ttl time.Duration) *Locker {
	if c == nil {
		return nil
	}
	return &Locker{client: redislock.New(c.Client), ttl: ttl}
}

// Acquire blocks with linear backoff until the lock is held or the TTL elapses.
// The returned release func is safe to call once.
func (l *Locker) Acquire(ctx context.Context, key string) (func(context.Context), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), int(l.ttl/(50*time.Millisecond))),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) {
		_ = lock.Release(ctx)
	}, nil
}
