package port

import (
	"context"
	"time"
)

// Cache defines the minimal key-value contract the chat service needs:
// string values plus integer counters for unread-mention tracking.
// Implementations must be concurrency-safe and context-aware.
type Cache interface {
	// Get fetches the value for key. Misses are returned as ("", ErrMiss).
	Get(ctx context.Context, key string) (string, error)

	// GetDel atomically fetches the value for key and removes it, so an
	// increment landing between the read and the removal is never lost.
	// Misses are returned as ("", ErrMiss).
	GetDel(ctx context.Context, key string) (string, error)

	// Set stores value at key. Zero or negative TTL means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Incr atomically increments the integer counter at key by delta and
	// returns the new value. A missing key counts from zero.
	Incr(ctx context.Context, key string, delta int64) (int64, error)

	// Del removes one or more keys and returns the number of keys removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way so callers can tell misses
// apart from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
