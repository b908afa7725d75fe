package model

import (
	"strings"
	"time"

	"fitco-billing/internal/domain"
)

// PlanType is the billing interval tier a user subscribes to.
type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

// Plans lists the plan types in display order.
var Plans = []PlanType{PlanMonthly, PlanYearly}

// ParsePlanType validates a raw plan type. Matching is exact after trimming,
// the same way clients send it.
func ParsePlanType(raw string) (PlanType, error) {
	switch PlanType(strings.TrimSpace(raw)) {
	case PlanMonthly:
		return PlanMonthly, nil
	case PlanYearly:
		return PlanYearly, nil
	default:
		return "", domain.ErrInvalidPlan
	}
}

func (p PlanType) Valid() bool { return p == PlanMonthly || p == PlanYearly }

// Interval is the processor's recurring interval for the plan.
func (p PlanType) Interval() string {
	if p == PlanYearly {
		return "year"
	}
	return "month"
}

func (p PlanType) Label() string {
	if p == PlanYearly {
		return "Yearly Plan"
	}
	return "Monthly Plan"
}

// ProductName is the line-item label shown on the hosted checkout page.
func (p PlanType) ProductName() string {
	if p == PlanYearly {
		return "Fitco Premium Yearly"
	}
	return "Fitco Premium Monthly"
}

// ExpiryFrom returns the fallback expiry used when the processor reports no period end.
func (p PlanType) ExpiryFrom(t time.Time) time.Time {
	if p == PlanYearly {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

// PlanTypeFromInterval maps a processor interval back to a plan; anything but "year" is monthly.
func PlanTypeFromInterval(interval string) PlanType {
	if strings.EqualFold(strings.TrimSpace(interval), "year") {
		return PlanYearly
	}
	return PlanMonthly
}
