package adapter

import (
	"context"
	"time"
)

// Event types the reconciler reacts to. Anything else is acknowledged and ignored.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventInvoicePaid           = "invoice.paid"
	EventInvoicePaymentSuccess = "invoice.payment_succeeded"
	EventInvoicePaymentFailed  = "invoice.payment_failed"
	EventSubscriptionUpdated   = "customer.subscription.updated"
	EventSubscriptionDeleted   = "customer.subscription.deleted"
)

type CustomerRequest struct {
	UserID string
	Email  string
	Name   string
}

// CheckoutRequest describes a single-line-item recurring checkout.
type CheckoutRequest struct {
	CustomerID      string
	ProductName     string
	Interval        string // month | year
	UnitAmountCents int64
	Currency        string
	SuccessURL      string
	CancelURL       string
	Metadata        map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// ProcessorSubscription is the live view of a subscription fetched from the processor.
type ProcessorSubscription struct {
	ID               string
	CustomerID       string
	Status           string
	Interval         string
	CurrentPeriodEnd *time.Time
}

type CheckoutCompleted struct {
	SessionID      string
	Mode           string
	CustomerID     string
	SubscriptionID string
	AmountTotal    int64
	Currency       string
	Metadata       map[string]string
}

type Invoice struct {
	ID             string
	CustomerID     string
	SubscriptionID string
	AmountPaid     int64
	AmountDue      int64
	Currency       string
}

type SubscriptionChange struct {
	ID               string
	CustomerID       string
	Status           string
	CurrentPeriodEnd *time.Time
}

// Event is a verified processor notification. At most one payload field is set,
// matching Type; unknown types carry none.
type Event struct {
	ID           string
	Type         string
	Checkout     *CheckoutCompleted
	Invoice      *Invoice
	Subscription *SubscriptionChange
}

// PaymentProcessor is the hex port for the subscription payment processor.
type PaymentProcessor interface {
	Name() string
	// Configured reports whether API credentials are present.
	Configured() bool

	CreateCustomer(ctx context.Context, req CustomerRequest) (customerID string, err error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, id string) (*ProcessorSubscription, error)

	// VerifyEvent authenticates payload against the signature header before decoding it.
	// It returns domain.ErrInvalidSignature on mismatch and domain.ErrProcessorNotConfigured
	// without a signing secret.
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
