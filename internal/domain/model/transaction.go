package model

import (
	"strings"
	"time"

	"fitco-billing/internal/domain"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type TransactionStatus string

const (
	TransactionStatusPaid   TransactionStatus = "paid"
	TransactionStatusFailed TransactionStatus = "failed"
)

// Reference prefixes. A reference is the idempotency key of a transaction.
const (
	RefPrefixCheckout      = "checkout:"
	RefPrefixInvoice       = "invoice:"
	RefPrefixInvoiceFailed = "invoice_failed:"
	RefPrefixManual        = "manual:"
)

// Transaction is an immutable ledger entry. Amounts are integer minor units.
type Transaction struct {
	ID                     string
	UserID                 string
	AmountCents            int64
	Currency               string
	PlanType               PlanType
	Status                 TransactionStatus
	Reference              string
	CouponCode             *string
	ExternalSubscriptionID *string
	ExternalInvoiceID      *string
	CheckoutSessionID      *string
	CreatedAt              time.Time
}

func NewTransaction(userID string, amountCents int64, currency string, plan PlanType, status TransactionStatus, reference string) (*Transaction, error) {
	if userID == "" || amountCents < 0 || !plan.Valid() || strings.TrimSpace(reference) == "" {
		return nil, domain.ErrInvalidArgument
	}
	if status != TransactionStatusPaid && status != TransactionStatusFailed {
		return nil, domain.ErrInvalidArgument
	}
	return &Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		AmountCents: amountCents,
		Currency:    currency,
		PlanType:    plan,
		Status:      status,
		Reference:   reference,
		CreatedAt:   time.Now(),
	}, nil
}

func CheckoutReference(sessionID string) string      { return RefPrefixCheckout + sessionID }
func InvoiceReference(invoiceID string) string       { return RefPrefixInvoice + invoiceID }
func InvoiceFailedReference(invoiceID string) string { return RefPrefixInvoiceFailed + invoiceID }

// ManualReference is used for comped grants which have no external event id.
func ManualReference() string { return RefPrefixManual + ulid.Make().String() }

// Amount returns the display value of the transaction.
func (t *Transaction) Amount() float64 { return CentsToAmount(t.AmountCents) }
