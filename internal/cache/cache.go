// Package cache provides a single-value TTL cache for cheap memoization of
// expensive reads inside one process.
package cache

import (
	"sync"
	"time"
)

// TTLCache caches one value for a fixed TTL. Invalidate drops the value
// immediately, so writers can force the next read to refill.
type TTLCache[T any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	value     T
	filled    bool
	expiresAt time.Time
}

func NewTTLCache[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		ttl: ttl,
		now: time.Now,
	}
}

// NewTTLCacheWithClock is for tests that need to control expiry.
func NewTTLCacheWithClock[T any](ttl time.Duration, now func() time.Time) *TTLCache[T] {
	return &TTLCache[T]{
		ttl: ttl,
		now: now,
	}
}

// Get returns the cached value, calling fill to refresh it when the value is
// missing or expired. A fill error is returned as-is and leaves any stale
// value untouched.
func (c *TTLCache[T]) Get(fill func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filled && c.now().Before(c.expiresAt) {
		return c.value, nil
	}

	value, err := fill()
	if err != nil {
		var zero T
		return zero, err
	}

	c.value = value
	c.filled = true
	c.expiresAt = c.now().Add(c.ttl)
	return value, nil
}

func (c *TTLCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filled = false
}
