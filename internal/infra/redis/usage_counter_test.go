//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

type fakeRedis struct {
	data    map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
	incrErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }
func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}
func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[key]++
	return f.counts[key], nil
}
func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.expires[key] = expiration
	return nil
}
func (f *fakeRedis) Del(ctx context.Context, keys ...string) error { return nil }
func (f *fakeRedis) Close() error                                  { return nil }

func TestUsageCounter(t *testing.T) {
	ctx := context.Background()

	t.Run("should set the window only on first increment", func(t *testing.T) {
		// Arrange
		fake := newFakeRedis()
		c := NewUsageCounter(fake)

		// Act
		n1, _ := c.Incr(ctx, "k", time.Hour)
		delete(fake.expires, "k")
		n2, err := c.Incr(ctx, "k", time.Hour)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n1 != 1 || n2 != 2 {
			t.Errorf("expected 1 then 2, got %d then %d", n1, n2)
		}
		if _, ok := fake.expires["k"]; ok {
			t.Error("expected expire to be set only once")
		}
	})

	t.Run("should treat a missing key as zero", func(t *testing.T) {
		c := NewUsageCounter(newFakeRedis())
		n, err := c.Get(ctx, "missing")
		if err != nil || n != 0 {
			t.Errorf("expected 0 and no error, got %d and %v", n, err)
		}
	})

	t.Run("should parse stored counts", func(t *testing.T) {
		fake := newFakeRedis()
		fake.data["k"] = "7"
		n, err := NewUsageCounter(fake).Get(ctx, "k")
		if err != nil || n != 7 {
			t.Errorf("expected 7, got %d (%v)", n, err)
		}
	})

	t.Run("should surface redis errors", func(t *testing.T) {
		fake := newFakeRedis()
		fake.incrErr = errors.New("conn refused")
		if _, err := NewUsageCounter(fake).Incr(ctx, "k", time.Hour); err == nil {
			t.Error("expected error")
		}
	})
}
