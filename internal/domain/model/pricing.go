package model

import (
	"strings"
	"time"

	"fitco-billing/internal/domain"
)

// DefaultPricingKey identifies the single pricing row.
const DefaultPricingKey = "default"

type PricingSettings struct {
	Key               string
	MonthlyPriceCents int64
	YearlyPriceCents  int64
	Currency          string
	UpdatedBy         *string
	UpdatedAt         time.Time
}

func NewPricingSettings(monthlyCents, yearlyCents int64, currency string) (*PricingSettings, error) {
	p := &PricingSettings{
		Key:               DefaultPricingKey,
		MonthlyPriceCents: monthlyCents,
		YearlyPriceCents:  yearlyCents,
		Currency:          NormalizeCurrency(currency),
		UpdatedAt:         time.Now(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PricingSettings) Validate() error {
	if p.MonthlyPriceCents < 1 || p.YearlyPriceCents < 1 || len(p.Currency) != 3 {
		return domain.ErrInvalidArgument
	}
	return nil
}

// PriceCents returns the base price for a plan.
func (p *PricingSettings) PriceCents(plan PlanType) int64 {
	if plan == PlanYearly {
		return p.YearlyPriceCents
	}
	return p.MonthlyPriceCents
}

func NormalizeCurrency(c string) string { return strings.ToLower(strings.TrimSpace(c)) }
