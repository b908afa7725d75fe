package model

import "github.com/shopspring/decimal"

// CentsToAmount converts integer minor units to display units rounded to 2 places.
// Only response boundaries should call this.
func CentsToAmount(cents int64) float64 {
	f, _ := decimal.New(cents, -2).Round(2).Float64()
	return f
}

// DiscountCents returns round(base*pct/100), half away from zero.
func DiscountCents(base int64, pct int) int64 {
	return decimal.NewFromInt(base).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// ApplyDiscount floors the discounted price at one minor unit; a coupon never makes a plan free.
func ApplyDiscount(base int64, pct int) (discount, final int64) {
	discount = DiscountCents(base, pct)
	final = base - discount
	if final < 1 {
		final = 1
	}
	return discount, final
}
