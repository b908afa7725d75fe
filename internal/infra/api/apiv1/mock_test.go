//go:build !integration

package apiv1_test

import (
	"context"
	"time"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/usecase"
)

// Func-field fakes for the use case ports. Nil funcs fall back to ErrNotFound
// so an unexpected call fails loudly.

type fakePricing struct {
	CurrentFunc func(ctx context.Context) (*model.PricingSettings, error)
	UpdateFunc  func(ctx context.Context, m, y *int64, c *string, adminID string) (*model.PricingSettings, error)
	PlansFunc   func(ctx context.Context) ([]model.PlanPrice, error)
}

func (f *fakePricing) EnsureDefaults(context.Context) error { return nil }
func (f *fakePricing) Current(ctx context.Context) (*model.PricingSettings, error) {
	if f.CurrentFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.CurrentFunc(ctx)
}
func (f *fakePricing) Update(ctx context.Context, m, y *int64, c *string, adminID string) (*model.PricingSettings, error) {
	if f.UpdateFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.UpdateFunc(ctx, m, y, c, adminID)
}
func (f *fakePricing) Plans(ctx context.Context) ([]model.PlanPrice, error) {
	if f.PlansFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.PlansFunc(ctx)
}

type fakeCoupons struct {
	CreateFunc    func(ctx context.Context, code string, pct int, expiry time.Time, active bool) (*model.Coupon, error)
	ListFunc      func(ctx context.Context) ([]*model.Coupon, error)
	SetActiveFunc func(ctx context.Context, id string, active bool) (*model.Coupon, error)
}

func (f *fakeCoupons) Lookup(context.Context, string) (*model.Coupon, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeCoupons) Create(ctx context.Context, code string, pct int, expiry time.Time, active bool) (*model.Coupon, error) {
	if f.CreateFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.CreateFunc(ctx, code, pct, expiry, active)
}
func (f *fakeCoupons) List(ctx context.Context) ([]*model.Coupon, error) {
	if f.ListFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.ListFunc(ctx)
}
func (f *fakeCoupons) SetActive(ctx context.Context, id string, active bool) (*model.Coupon, error) {
	if f.SetActiveFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.SetActiveFunc(ctx, id, active)
}

type fakeQuotes struct {
	QuoteFunc func(ctx context.Context, planType, couponCode string) (*model.Quote, error)
}

func (f *fakeQuotes) Quote(ctx context.Context, planType, couponCode string) (*model.Quote, error) {
	if f.QuoteFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.QuoteFunc(ctx, planType, couponCode)
}

type fakeCheckout struct {
	CreateFunc func(ctx context.Context, userID, planType, couponCode string) (*usecase.CheckoutResult, error)
}

func (f *fakeCheckout) CreateCheckout(ctx context.Context, userID, planType, couponCode string) (*usecase.CheckoutResult, error) {
	if f.CreateFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.CreateFunc(ctx, userID, planType, couponCode)
}

type fakeWebhooks struct {
	HandleFunc func(ctx context.Context, payload []byte, signature string) (*usecase.WebhookResult, error)
}

func (f *fakeWebhooks) HandleEvent(ctx context.Context, payload []byte, signature string) (*usecase.WebhookResult, error) {
	if f.HandleFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.HandleFunc(ctx, payload, signature)
}

type fakeLedger struct {
	CurrentFunc   func(ctx context.Context, userID string) (*model.Subscription, error)
	SyncFunc      func(ctx context.Context, userID string) (model.EntitlementStatus, error)
	ListFunc      func(ctx context.Context, page model.Page) ([]*model.Subscription, int, error)
	GetFunc       func(ctx context.Context, id string) (*model.Subscription, error)
	ExpireFunc    func(ctx context.Context, id string) (*model.Subscription, error)
	SetStatusFunc func(ctx context.Context, userID string, status model.EntitlementStatus, planType string) (model.EntitlementStatus, error)
}

func (f *fakeLedger) IsEntitled(context.Context, string) (bool, error) { return false, nil }
func (f *fakeLedger) SyncEntitlementFlag(ctx context.Context, userID string) (model.EntitlementStatus, error) {
	if f.SyncFunc == nil {
		return model.EntitlementFree, nil
	}
	return f.SyncFunc(ctx, userID)
}
func (f *fakeLedger) Sweep(context.Context) (int, error) { return 0, nil }
func (f *fakeLedger) GrantManual(context.Context, string, string, *int64) (*model.Subscription, *model.Transaction, error) {
	return nil, nil, domain.ErrNotFound
}
func (f *fakeLedger) CurrentSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	if f.CurrentFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.CurrentFunc(ctx, userID)
}
func (f *fakeLedger) Get(ctx context.Context, id string) (*model.Subscription, error) {
	if f.GetFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.GetFunc(ctx, id)
}
func (f *fakeLedger) List(ctx context.Context, page model.Page) ([]*model.Subscription, int, error) {
	if f.ListFunc == nil {
		return nil, 0, nil
	}
	return f.ListFunc(ctx, page)
}
func (f *fakeLedger) Expire(ctx context.Context, id string) (*model.Subscription, error) {
	if f.ExpireFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.ExpireFunc(ctx, id)
}
func (f *fakeLedger) SetUserStatus(ctx context.Context, userID string, status model.EntitlementStatus, planType string) (model.EntitlementStatus, error) {
	if f.SetStatusFunc == nil {
		return "", domain.ErrNotFound
	}
	return f.SetStatusFunc(ctx, userID, status, planType)
}

type fakeStats struct {
	OverviewFunc func(ctx context.Context) (*model.Overview, error)
}

func (f *fakeStats) Overview(ctx context.Context) (*model.Overview, error) {
	if f.OverviewFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.OverviewFunc(ctx)
}
func (f *fakeStats) RevenueByPlan(context.Context) ([]model.PlanRevenue, error) {
	return []model.PlanRevenue{{PlanType: model.PlanMonthly, TotalCents: 1998, Count: 2}}, nil
}
func (f *fakeStats) Transactions(context.Context, model.Page) ([]*model.Transaction, int, error) {
	return nil, 0, nil
}

type fakeChat struct {
	ConsumeFunc func(ctx context.Context, userID string) (*usecase.ChatQuota, error)
}

func (f *fakeChat) Quota(context.Context, string) (*usecase.ChatQuota, error) {
	return &usecase.ChatQuota{Limit: 10, Remaining: 10}, nil
}
func (f *fakeChat) Consume(ctx context.Context, userID string) (*usecase.ChatQuota, error) {
	if f.ConsumeFunc == nil {
		return nil, domain.ErrNotFound
	}
	return f.ConsumeFunc(ctx, userID)
}
