package repository

import (
	"context"

	"fitco-billing/internal/domain/model"
)

// -----------------------------
// Coupons
// -----------------------------

type CouponRepository interface {
	// FindByCode expects an already normalized (uppercase) code.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Coupon, error)
	Save(ctx context.Context, tx Tx, c *model.Coupon) error
	SetActive(ctx context.Context, tx Tx, id string, active bool) (*model.Coupon, error)
	List(ctx context.Context, tx Tx) ([]*model.Coupon, error)
}
