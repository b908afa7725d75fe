package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"fitco-billing/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.UsageCounter = (*UsageCounter)(nil)

// UsageCounter is a fixed-window counter: the first increment of a key starts
// its window.
type UsageCounter struct {
	client RedisClient
}

func NewUsageCounter(client RedisClient) *UsageCounter {
	return &UsageCounter{client: client}
}

func (u *UsageCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := u.client.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := u.client.Expire(ctx, key, ttl); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func (u *UsageCounter) Get(ctx context.Context, key string) (int64, error) {
	val, err := u.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}
