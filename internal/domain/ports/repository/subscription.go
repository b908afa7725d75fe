package repository

import (
	"context"
	"time"

	"fitco-billing/internal/domain/model"
)

// -----------------------------
// Subscriptions
// -----------------------------

type SubscriptionRepository interface {
	// UpsertByExternalID atomically inserts s or updates the row holding the same
	// external subscription id, and returns the stored row. s.ExternalSubscriptionID must be set.
	UpsertByExternalID(ctx context.Context, tx Tx, s *model.Subscription) (*model.Subscription, error)
	// Save inserts or updates by primary key. Used for rows without an external id.
	Save(ctx context.Context, tx Tx, s *model.Subscription) error

	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	FindByExternalID(ctx context.Context, tx Tx, externalID string) (*model.Subscription, error)
	// FindCurrentByUser returns the newest active subscription expiring after now.
	FindCurrentByUser(ctx context.Context, tx Tx, userID string, now time.Time) (*model.Subscription, error)
	HasCurrent(ctx context.Context, tx Tx, userID string, now time.Time) (bool, error)

	// UpdateState sets status and, when expiry is non-nil, the expiry date.
	UpdateState(ctx context.Context, tx Tx, id string, status model.SubscriptionStatus, expiry *time.Time) error
	// ExpireLapsed flips every active row with expiry before now to expired.
	ExpireLapsed(ctx context.Context, tx Tx, now time.Time) (int, error)
	ExpireActiveByUser(ctx context.Context, tx Tx, userID string) (int, error)

	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Subscription, error)
	Count(ctx context.Context, tx Tx) (int, error)
	CountCurrent(ctx context.Context, tx Tx, now time.Time) (int, error)
}
