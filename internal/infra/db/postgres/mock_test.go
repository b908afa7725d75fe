//go:build !integration

package postgres

import (
	"context"
	"time"

	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"
	red "fitco-billing/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerPricingRepo mocks the database repository that the pricing decorator wraps.
type mockInnerPricingRepo struct {
	InsertIfAbsentFunc func(ctx context.Context, tx repository.Tx, p *model.PricingSettings) (bool, error)
	GetFunc            func(ctx context.Context, tx repository.Tx, key string) (*model.PricingSettings, error)
	UpdateFunc         func(ctx context.Context, tx repository.Tx, p *model.PricingSettings) error
}

func (m *mockInnerPricingRepo) InsertIfAbsent(ctx context.Context, tx repository.Tx, p *model.PricingSettings) (bool, error) {
	return m.InsertIfAbsentFunc(ctx, tx, p)
}
func (m *mockInnerPricingRepo) Get(ctx context.Context, tx repository.Tx, key string) (*model.PricingSettings, error) {
	return m.GetFunc(ctx, tx, key)
}
func (m *mockInnerPricingRepo) Update(ctx context.Context, tx repository.Tx, p *model.PricingSettings) error {
	return m.UpdateFunc(ctx, tx, p)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
