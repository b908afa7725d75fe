package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"
	"fitco-billing/internal/infra/metrics"
	red "fitco-billing/internal/infra/redis"
)

var _ repository.PricingRepository = (*pricingRepoCacheDecorator)(nil)

// pricingRepoCacheDecorator is a read-through cache over the pricing row. Redis
// failures degrade to the inner repository.
type pricingRepoCacheDecorator struct {
	inner repository.PricingRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewPricingRepoCacheDecorator(inner repository.PricingRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.PricingRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	l := logger.With().Str("component", "PricingCache").Logger()
	return &pricingRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: &l}
}

func pricingCacheKey(key string) string { return fmt.Sprintf("pricing:%s", key) }

func (d *pricingRepoCacheDecorator) Get(ctx context.Context, tx repository.Tx, key string) (*model.PricingSettings, error) {
	// reads inside a transaction bypass the cache
	if tx != nil {
		return d.inner.Get(ctx, tx, key)
	}

	ck := pricingCacheKey(key)
	val, err := d.cache.Get(ctx, ck)
	if err == nil {
		var p model.PricingSettings
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("pricing", "hit")
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		metrics.IncCacheRequest("pricing", "error")
		d.log.Warn().Err(err).Msg("pricing cache read failed")
	}

	metrics.IncCacheRequest("pricing", "miss")
	p, err := d.inner.Get(ctx, tx, key)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		if err := d.cache.Set(ctx, ck, b, d.ttl); err != nil {
			d.log.Warn().Err(err).Msg("pricing cache write failed")
		}
	}
	return p, nil
}

func (d *pricingRepoCacheDecorator) InsertIfAbsent(ctx context.Context, tx repository.Tx, p *model.PricingSettings) (bool, error) {
	created, err := d.inner.InsertIfAbsent(ctx, tx, p)
	if err != nil {
		return false, err
	}
	if created {
		d.invalidate(ctx, p.Key)
	}
	return created, nil
}

// Update invalidates before and after the write so a concurrent reader cannot
// re-populate the cache with the old row for a full TTL.
func (d *pricingRepoCacheDecorator) Update(ctx context.Context, tx repository.Tx, p *model.PricingSettings) error {
	d.invalidate(ctx, p.Key)
	if err := d.inner.Update(ctx, tx, p); err != nil {
		return err
	}
	d.invalidate(ctx, p.Key)
	return nil
}

func (d *pricingRepoCacheDecorator) invalidate(ctx context.Context, key string) {
	if err := d.cache.Del(ctx, pricingCacheKey(key)); err != nil {
		d.log.Warn().Err(err).Msg("pricing cache invalidation failed")
	}
}
