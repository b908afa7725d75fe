package model

// Quote is a deterministic price computation for a plan and optional coupon.
// All amounts are minor units.
type Quote struct {
	PlanType            PlanType
	BasePriceCents      int64
	DiscountAmountCents int64
	FinalPriceCents     int64
	DiscountPercentage  int
	Currency            string
	CouponCode          *string
}

// AppliedCoupon returns the applied code or "".
func (q *Quote) AppliedCoupon() string {
	if q == nil || q.CouponCode == nil {
		return ""
	}
	return *q.CouponCode
}

// PlanPrice is one entry of the public plan listing.
type PlanPrice struct {
	PlanType   PlanType
	Interval   string
	Label      string
	PriceCents int64
	Currency   string
}
