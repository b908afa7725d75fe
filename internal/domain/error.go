package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Billing
	ErrInvalidPlan            = errors.New("invalid plan type")
	ErrInvalidCoupon          = errors.New("invalid coupon")
	ErrProcessorNotConfigured = errors.New("payment processor is not configured")
	ErrInvalidSignature       = errors.New("invalid webhook signature")
	ErrUnresolvedUser         = errors.New("unable to resolve user for payment event")
	ErrTransientProcessor     = errors.New("payment processor temporarily unavailable")

	// Chat gating
	ErrChatLimitReached = errors.New("daily chat limit reached, upgrade to premium for unlimited access")
)
