package model

import (
	"strings"
	"time"

	"fitco-billing/internal/domain"

	"github.com/google/uuid"
)

// Coupon is a percentage discount code. Codes are stored uppercase.
type Coupon struct {
	ID                 string
	Code               string
	DiscountPercentage int
	ExpiryDate         time.Time
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewCoupon(code string, pct int, expiry time.Time, active bool) (*Coupon, error) {
	code = NormalizeCouponCode(code)
	if code == "" || pct < 0 || pct > 100 || expiry.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Coupon{
		ID:                 uuid.NewString(),
		Code:               code,
		DiscountPercentage: pct,
		ExpiryDate:         expiry,
		IsActive:           active,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// UsableAt reports whether the coupon may be applied at t.
func (c *Coupon) UsableAt(t time.Time) bool {
	return c != nil && c.IsActive && c.ExpiryDate.After(t)
}

func NormalizeCouponCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }
