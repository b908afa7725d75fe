package repository

import (
	"context"

	"fitco-billing/internal/domain/model"
)

// -----------------------------
// Pricing settings
// -----------------------------

type PricingRepository interface {
	// InsertIfAbsent writes p only when no row with p.Key exists.
	InsertIfAbsent(ctx context.Context, tx Tx, p *model.PricingSettings) (bool, error)
	Get(ctx context.Context, tx Tx, key string) (*model.PricingSettings, error)
	Update(ctx context.Context, tx Tx, p *model.PricingSettings) error
}
