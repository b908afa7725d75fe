package usecase

import (
	"context"
	"errors"
	"time"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// CouponUseCase is the coupon directory. Billing only reads it through Lookup.
type CouponUseCase interface {
	// Lookup returns a usable coupon for code or domain.ErrInvalidCoupon.
	Lookup(ctx context.Context, code string) (*model.Coupon, error)

	Create(ctx context.Context, code string, pct int, expiry time.Time, active bool) (*model.Coupon, error)
	List(ctx context.Context) ([]*model.Coupon, error)
	SetActive(ctx context.Context, id string, active bool) (*model.Coupon, error)
}

var _ CouponUseCase = (*couponUC)(nil)

type couponUC struct {
	coupons repository.CouponRepository
	now     func() time.Time
	log     *zerolog.Logger
}

func NewCouponUseCase(coupons repository.CouponRepository, logger *zerolog.Logger) CouponUseCase {
	l := logger.With().Str("component", "CouponUC").Logger()
	return &couponUC{coupons: coupons, now: time.Now, log: &l}
}

func (c *couponUC) Lookup(ctx context.Context, code string) (*model.Coupon, error) {
	normalized := model.NormalizeCouponCode(code)
	if normalized == "" {
		return nil, domain.ErrInvalidCoupon
	}
	coupon, err := c.coupons.FindByCode(ctx, repository.NoTX, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCoupon
		}
		return nil, err
	}
	if !coupon.UsableAt(c.now()) {
		return nil, domain.ErrInvalidCoupon
	}
	return coupon, nil
}

func (c *couponUC) Create(ctx context.Context, code string, pct int, expiry time.Time, active bool) (*model.Coupon, error) {
	coupon, err := model.NewCoupon(code, pct, expiry, active)
	if err != nil {
		return nil, err
	}
	if err := c.coupons.Save(ctx, repository.NoTX, coupon); err != nil {
		return nil, err
	}
	c.log.Info().Str("code", coupon.Code).Int("pct", pct).Msg("coupon created")
	return coupon, nil
}

func (c *couponUC) List(ctx context.Context) ([]*model.Coupon, error) {
	return c.coupons.List(ctx, repository.NoTX)
}

func (c *couponUC) SetActive(ctx context.Context, id string, active bool) (*model.Coupon, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return c.coupons.SetActive(ctx, repository.NoTX, id, active)
}
