package repository

import (
	"context"
	"time"
)

// UsageCounter keeps short-lived per-key counters (e.g. daily chat usage).
type UsageCounter interface {
	// Incr increments key and sets its ttl when the key is new. Returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Get returns the current value, 0 when the key does not exist.
	Get(ctx context.Context, key string) (int64, error)
}
