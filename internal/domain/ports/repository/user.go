package repository

import (
	"context"

	"fitco-billing/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByStripeCustomerID(ctx context.Context, tx Tx, customerID string) (*model.User, error)
	SetStripeCustomerID(ctx context.Context, tx Tx, userID, customerID string) error
	// SetEntitlement writes the denormalized flag; customerID is stored when non-nil.
	SetEntitlement(ctx context.Context, tx Tx, userID string, status model.EntitlementStatus, customerID *string) error
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
