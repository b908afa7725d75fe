package apiv1

import (
	"time"

	"github.com/samber/lo"

	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/usecase"
)

// ----- requests -----

type QuoteRequest struct {
	PlanType   string `json:"planType" validate:"required,oneof=monthly yearly"`
	CouponCode string `json:"couponCode" validate:"omitempty,max=64"`
}

type CheckoutRequest = QuoteRequest

type PricingUpdateRequest struct {
	MonthlyPriceCents *int64  `json:"monthlyPriceCents" validate:"omitempty,gte=1"`
	YearlyPriceCents  *int64  `json:"yearlyPriceCents" validate:"omitempty,gte=1"`
	Currency          *string `json:"currency" validate:"omitempty,len=3,alpha"`
}

type SubscriptionStatusRequest struct {
	Status string `json:"status" validate:"required,eq=expired"`
}

type UserStatusRequest struct {
	Status   string `json:"status" validate:"required,oneof=premium free"`
	PlanType string `json:"planType" validate:"omitempty,oneof=monthly yearly"`
}

type CouponCreateRequest struct {
	Code               string    `json:"code" validate:"required,max=64"`
	DiscountPercentage int       `json:"discountPercentage" validate:"gte=0,lte=100"`
	ExpiryDate         time.Time `json:"expiryDate" validate:"required"`
	IsActive           *bool     `json:"isActive"`
}

type CouponActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// ----- responses -----

type Quote struct {
	PlanType            string  `json:"planType"`
	BasePrice           float64 `json:"basePrice"`
	BasePriceCents      int64   `json:"basePriceCents"`
	FinalPrice          float64 `json:"finalPrice"`
	FinalPriceCents     int64   `json:"finalPriceCents"`
	DiscountAmount      float64 `json:"discountAmount"`
	DiscountAmountCents int64   `json:"discountAmountCents"`
	DiscountPercentage  int     `json:"discountPercentage"`
	CouponCode          *string `json:"couponCode,omitempty"`
	Currency            string  `json:"currency"`
}

func toQuote(q *model.Quote) Quote {
	return Quote{
		PlanType:            string(q.PlanType),
		BasePrice:           model.CentsToAmount(q.BasePriceCents),
		BasePriceCents:      q.BasePriceCents,
		FinalPrice:          model.CentsToAmount(q.FinalPriceCents),
		FinalPriceCents:     q.FinalPriceCents,
		DiscountAmount:      model.CentsToAmount(q.DiscountAmountCents),
		DiscountAmountCents: q.DiscountAmountCents,
		DiscountPercentage:  q.DiscountPercentage,
		CouponCode:          q.CouponCode,
		Currency:            q.Currency,
	}
}

type CheckoutResponse struct {
	CheckoutSessionID string `json:"checkoutSessionId"`
	CheckoutURL       string `json:"checkoutUrl"`
	Quote             Quote  `json:"quote"`
}

func toCheckout(res *usecase.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		CheckoutSessionID: res.SessionID,
		CheckoutURL:       res.CheckoutURL,
		Quote:             toQuote(res.Quote),
	}
}

type Plan struct {
	PlanType   string  `json:"planType"`
	Label      string  `json:"label"`
	Interval   string  `json:"interval"`
	Price      float64 `json:"price"`
	PriceCents int64   `json:"priceCents"`
	Currency   string  `json:"currency"`
}

func toPlans(in []model.PlanPrice) []Plan {
	return lo.Map(in, func(p model.PlanPrice, _ int) Plan {
		return Plan{
			PlanType:   string(p.PlanType),
			Label:      p.Label,
			Interval:   p.Interval,
			Price:      model.CentsToAmount(p.PriceCents),
			PriceCents: p.PriceCents,
			Currency:   p.Currency,
		}
	})
}

type Pricing struct {
	MonthlyPrice      float64   `json:"monthlyPrice"`
	MonthlyPriceCents int64     `json:"monthlyPriceCents"`
	YearlyPrice       float64   `json:"yearlyPrice"`
	YearlyPriceCents  int64     `json:"yearlyPriceCents"`
	Currency          string    `json:"currency"`
	UpdatedBy         *string   `json:"updatedBy,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toPricing(p *model.PricingSettings) Pricing {
	return Pricing{
		MonthlyPrice:      model.CentsToAmount(p.MonthlyPriceCents),
		MonthlyPriceCents: p.MonthlyPriceCents,
		YearlyPrice:       model.CentsToAmount(p.YearlyPriceCents),
		YearlyPriceCents:  p.YearlyPriceCents,
		Currency:          p.Currency,
		UpdatedBy:         p.UpdatedBy,
		UpdatedAt:         p.UpdatedAt,
	}
}

type Subscription struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"userId"`
	PlanType               string    `json:"planType"`
	Price                  float64   `json:"price"`
	PriceCents             int64     `json:"priceCents"`
	Currency               string    `json:"currency"`
	ExpiryDate             time.Time `json:"expiryDate"`
	Status                 string    `json:"status"`
	CouponCode             *string   `json:"couponCode,omitempty"`
	ExternalSubscriptionID *string   `json:"stripeSubscriptionId,omitempty"`
	ExternalCustomerID     *string   `json:"stripeCustomerId,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func toSubscription(s *model.Subscription) Subscription {
	return Subscription{
		ID:                     s.ID,
		UserID:                 s.UserID,
		PlanType:               string(s.PlanType),
		Price:                  model.CentsToAmount(s.PriceCents),
		PriceCents:             s.PriceCents,
		Currency:               s.Currency,
		ExpiryDate:             s.ExpiryDate,
		Status:                 string(s.Status),
		CouponCode:             s.CouponCode,
		ExternalSubscriptionID: s.ExternalSubscriptionID,
		ExternalCustomerID:     s.ExternalCustomerID,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

func toSubscriptions(in []*model.Subscription) []Subscription {
	return lo.Map(in, func(s *model.Subscription, _ int) Subscription { return toSubscription(s) })
}

type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	PlanType    string    `json:"planType"`
	Status      string    `json:"status"`
	Reference   string    `json:"reference"`
	CouponCode  *string   `json:"couponCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toTransactions(in []*model.Transaction) []Transaction {
	return lo.Map(in, func(t *model.Transaction, _ int) Transaction {
		return Transaction{
			ID:          t.ID,
			UserID:      t.UserID,
			Amount:      t.Amount(),
			AmountCents: t.AmountCents,
			Currency:    t.Currency,
			PlanType:    string(t.PlanType),
			Status:      string(t.Status),
			Reference:   t.Reference,
			CouponCode:  t.CouponCode,
			CreatedAt:   t.CreatedAt,
		}
	})
}

type Coupon struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code"`
	DiscountPercentage int       `json:"discountPercentage"`
	ExpiryDate         time.Time `json:"expiryDate"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

func toCoupon(c *model.Coupon) Coupon {
	return Coupon{
		ID:                 c.ID,
		Code:               c.Code,
		DiscountPercentage: c.DiscountPercentage,
		ExpiryDate:         c.ExpiryDate,
		IsActive:           c.IsActive,
		CreatedAt:          c.CreatedAt,
	}
}

func toCoupons(in []*model.Coupon) []Coupon {
	return lo.Map(in, func(c *model.Coupon, _ int) Coupon { return toCoupon(c) })
}

type Overview struct {
	TotalUsers          int              `json:"totalUsers"`
	ActiveSubscriptions int              `json:"activeSubscriptions"`
	TotalRevenue        float64          `json:"totalRevenue"`
	TotalRevenueCents   int64            `json:"totalRevenueCents"`
	MonthlyRevenue      []MonthlyRevenue `json:"monthlyRevenue"`
}

type MonthlyRevenue struct {
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	Total      float64 `json:"total"`
	TotalCents int64   `json:"totalCents"`
}

func toOverview(o *model.Overview) Overview {
	return Overview{
		TotalUsers:          o.TotalUsers,
		ActiveSubscriptions: o.ActiveSubscriptions,
		TotalRevenue:        model.CentsToAmount(o.TotalRevenueCents),
		TotalRevenueCents:   o.TotalRevenueCents,
		MonthlyRevenue: lo.Map(o.MonthlyRevenue, func(m model.MonthlyRevenue, _ int) MonthlyRevenue {
			return MonthlyRevenue{Year: m.Year, Month: m.Month, Total: model.CentsToAmount(m.TotalCents), TotalCents: m.TotalCents}
		}),
	}
}

type PlanRevenue struct {
	PlanType   string  `json:"planType"`
	Total      float64 `json:"total"`
	TotalCents int64   `json:"totalCents"`
	Count      int     `json:"count"`
}

func toPlanRevenue(in []model.PlanRevenue) []PlanRevenue {
	return lo.Map(in, func(p model.PlanRevenue, _ int) PlanRevenue {
		return PlanRevenue{PlanType: string(p.PlanType), Total: model.CentsToAmount(p.TotalCents), TotalCents: p.TotalCents, Count: p.Count}
	})
}

type ChatQuota struct {
	Premium   bool       `json:"premium"`
	Limit     int        `json:"limit"`
	Used      int        `json:"used"`
	Remaining int        `json:"remaining"`
	ResetsAt  *time.Time `json:"resetsAt,omitempty"`
}

func toChatQuota(q *usecase.ChatQuota) ChatQuota {
	out := ChatQuota{Premium: q.Premium, Limit: q.Limit, Used: q.Used, Remaining: q.Remaining}
	if !q.ResetsAt.IsZero() {
		out.ResetsAt = lo.ToPtr(q.ResetsAt)
	}
	return out
}
