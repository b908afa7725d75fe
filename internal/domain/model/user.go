package model

import (
	"strings"
	"time"

	"fitco-billing/internal/domain"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// EntitlementStatus is the denormalized flag on the user row. The ledger is the source of truth.
type EntitlementStatus string

const (
	EntitlementFree    EntitlementStatus = "free"
	EntitlementPremium EntitlementStatus = "premium"
)

// User carries only the fields billing needs from the account record.
type User struct {
	ID                 string
	Email              string
	Name               string
	Role               Role
	SubscriptionStatus EntitlementStatus
	StripeCustomerID   *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewUser(id, email, name string, role Role) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	if role != RoleAdmin {
		role = RoleUser
	}
	now := time.Now()
	return &User{
		ID:                 id,
		Email:              email,
		Name:               strings.TrimSpace(name),
		Role:               role,
		SubscriptionStatus: EntitlementFree,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

func EntitlementFor(premium bool) EntitlementStatus {
	if premium {
		return EntitlementPremium
	}
	return EntitlementFree
}
