package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"fitco-billing/internal/config"
)

// NewPgxPool connects to Postgres, retrying with exponential backoff while the
// database comes up (container start, failover).
func NewPgxPool(ctx context.Context, cfg *config.DatabaseConfig, logger *zerolog.Logger) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	var pool *pgxpool.Pool
	connect := func() error {
		cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		p, err := pgxpool.ConnectConfig(cctx, pcfg)
		if err != nil {
			return err
		}
		if err := p.Ping(cctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.MaxElapsedTime = 30 * time.Second
	notify := func(err error, next time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", next).Msg("postgres not ready")
	}
	if err := backoff.RetryNotify(connect, backoff.WithContext(eb, ctx), notify); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}
