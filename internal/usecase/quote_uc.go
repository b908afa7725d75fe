package usecase

import (
	"context"
	"strings"

	"fitco-billing/internal/domain/model"
)

// QuoteUseCase computes deterministic prices from the pricing row and coupon directory.
type QuoteUseCase interface {
	Quote(ctx context.Context, planType, couponCode string) (*model.Quote, error)
}

var _ QuoteUseCase = (*quoteUC)(nil)

type quoteUC struct {
	pricing PricingUseCase
	coupons CouponUseCase
}

func NewQuoteUseCase(pricing PricingUseCase, coupons CouponUseCase) QuoteUseCase {
	return &quoteUC{pricing: pricing, coupons: coupons}
}

// Quote returns domain.ErrInvalidPlan for unknown plans and domain.ErrInvalidCoupon
// for a supplied code that is missing, inactive or expired. A blank code means no coupon.
func (q *quoteUC) Quote(ctx context.Context, planType, couponCode string) (*model.Quote, error) {
	plan, err := model.ParsePlanType(planType)
	if err != nil {
		return nil, err
	}
	settings, err := q.pricing.Current(ctx)
	if err != nil {
		return nil, err
	}

	base := settings.PriceCents(plan)
	out := &model.Quote{
		PlanType:        plan,
		BasePriceCents:  base,
		FinalPriceCents: base,
		Currency:        settings.Currency,
	}
	if strings.TrimSpace(couponCode) == "" {
		return out, nil
	}

	coupon, err := q.coupons.Lookup(ctx, couponCode)
	if err != nil {
		return nil, err
	}
	out.DiscountPercentage = coupon.DiscountPercentage
	out.DiscountAmountCents, out.FinalPriceCents = model.ApplyDiscount(base, coupon.DiscountPercentage)
	code := coupon.Code
	out.CouponCode = &code
	return out, nil
}
