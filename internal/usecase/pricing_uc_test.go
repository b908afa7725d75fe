//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
)

func TestPricingUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("should create defaults once under concurrent first access", func(t *testing.T) {
		// --- Arrange ---
		f := newBillingFixture()

		// --- Act ---
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.pricing.Current(ctx); err != nil {
					t.Errorf("current: %v", err)
				}
			}()
		}
		wg.Wait()

		// --- Assert ---
		if f.prices.Inserts != 1 {
			t.Errorf("expected exactly one pricing row insert, got %d", f.prices.Inserts)
		}
	})

	t.Run("should keep existing row on EnsureDefaults", func(t *testing.T) {
		// --- Arrange ---
		f := newBillingFixture()
		monthly := int64(1500)
		if _, err := f.pricing.Update(ctx, &monthly, nil, nil, ""); err != nil {
			t.Fatalf("update: %v", err)
		}

		// --- Act ---
		if err := f.pricing.EnsureDefaults(ctx); err != nil {
			t.Fatalf("ensure defaults: %v", err)
		}

		// --- Assert ---
		s, _ := f.pricing.Current(ctx)
		if s.MonthlyPriceCents != 1500 {
			t.Errorf("expected monthly price to stay 1500, got %d", s.MonthlyPriceCents)
		}
	})

	t.Run("should update only provided fields and record the admin", func(t *testing.T) {
		// --- Arrange ---
		f := newBillingFixture()
		cur := " EUR "

		// --- Act ---
		s, err := f.pricing.Update(ctx, nil, nil, &cur, "admin-7")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.Currency != "eur" || s.MonthlyPriceCents != 999 || s.YearlyPriceCents != 9999 {
			t.Errorf("unexpected settings: %+v", s)
		}
		if s.UpdatedBy == nil || *s.UpdatedBy != "admin-7" {
			t.Errorf("expected updated_by admin-7, got %v", s.UpdatedBy)
		}
	})

	t.Run("should reject non-positive prices", func(t *testing.T) {
		f := newBillingFixture()
		zero := int64(0)
		_, err := f.pricing.Update(ctx, &zero, nil, nil, "admin")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should list both plans with labels", func(t *testing.T) {
		f := newBillingFixture()
		plans, err := f.pricing.Plans(ctx)
		if err != nil {
			t.Fatalf("plans: %v", err)
		}
		if len(plans) != 2 {
			t.Fatalf("expected 2 plans, got %d", len(plans))
		}
		if plans[0].PlanType != model.PlanMonthly || plans[0].Interval != "month" || plans[0].PriceCents != 999 {
			t.Errorf("unexpected monthly plan: %+v", plans[0])
		}
		if plans[1].PlanType != model.PlanYearly || plans[1].Label != "Yearly Plan" || plans[1].PriceCents != 9999 {
			t.Errorf("unexpected yearly plan: %+v", plans[1])
		}
	})
}
