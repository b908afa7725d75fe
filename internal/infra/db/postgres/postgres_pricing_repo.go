package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"
)

var _ repository.PricingRepository = (*pricingRepo)(nil)

type pricingRepo struct {
	pool *pgxpool.Pool
}

func NewPricingRepo(pool *pgxpool.Pool) *pricingRepo {
	return &pricingRepo{pool: pool}
}

func (r *pricingRepo) InsertIfAbsent(ctx context.Context, tx repository.Tx, p *model.PricingSettings) (bool, error) {
	const q = `
INSERT INTO pricing_settings (key, monthly_price_cents, yearly_price_cents, currency, updated_by, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (key) DO NOTHING;`
	tag, err := execSQL(ctx, r.pool, tx, q, p.Key, p.MonthlyPriceCents, p.YearlyPriceCents, p.Currency, p.UpdatedBy, p.UpdatedAt)
	if err != nil {
		return false, mapErr("insert pricing", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pricingRepo) Get(ctx context.Context, tx repository.Tx, key string) (*model.PricingSettings, error) {
	const q = `
SELECT key, monthly_price_cents, yearly_price_cents, currency, updated_by, updated_at
  FROM pricing_settings WHERE key=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, key)
	if err != nil {
		return nil, err
	}
	var p model.PricingSettings
	if err := row.Scan(&p.Key, &p.MonthlyPriceCents, &p.YearlyPriceCents, &p.Currency, &p.UpdatedBy, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, mapErr("read pricing", err)
	}
	return &p, nil
}

func (r *pricingRepo) Update(ctx context.Context, tx repository.Tx, p *model.PricingSettings) error {
	const q = `
UPDATE pricing_settings
   SET monthly_price_cents=$2, yearly_price_cents=$3, currency=$4, updated_by=$5, updated_at=$6
 WHERE key=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, p.Key, p.MonthlyPriceCents, p.YearlyPriceCents, p.Currency, p.UpdatedBy, p.UpdatedAt)
	if err != nil {
		return mapErr("update pricing", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
