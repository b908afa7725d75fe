package model

import (
	"time"

	"fitco-billing/internal/domain"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// Subscription is the local record of a user's paid (or comped) access.
// ExternalSubscriptionID is unique when set; renewals update the same row.
type Subscription struct {
	ID                     string
	UserID                 string
	PlanType               PlanType
	PriceCents             int64
	Currency               string
	ExpiryDate             time.Time
	Status                 SubscriptionStatus
	CouponCode             *string
	ExternalSubscriptionID *string
	ExternalCustomerID     *string
	CheckoutSessionID      *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NewSubscription builds an active subscription with a fresh id.
func NewSubscription(userID string, plan PlanType, priceCents int64, currency string, expiry time.Time) (*Subscription, error) {
	if userID == "" || !plan.Valid() || priceCents < 0 || expiry.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:         uuid.NewString(),
		UserID:     userID,
		PlanType:   plan,
		PriceCents: priceCents,
		Currency:   currency,
		ExpiryDate: expiry,
		Status:     SubscriptionStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsCurrent reports whether the row grants access at t.
func (s *Subscription) IsCurrent(t time.Time) bool {
	return s != nil && s.Status == SubscriptionStatusActive && s.ExpiryDate.After(t)
}

// StatusFromProcessor maps a processor subscription status to the local one.
func StatusFromProcessor(status string) SubscriptionStatus {
	switch status {
	case "active", "trialing":
		return SubscriptionStatusActive
	default:
		return SubscriptionStatusExpired
	}
}
