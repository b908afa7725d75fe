package stripe

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82/webhook"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/ports/adapter"
)

// VerifyEvent checks the Stripe-Signature header (including its timestamp
// tolerance) and decodes the objects the reconciler needs.
func (p *Processor) VerifyEvent(payload []byte, signature string) (*adapter.Event, error) {
	if p.webhookSecret == "" {
		return nil, domain.ErrProcessorNotConfigured
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	out := &adapter.Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}
	raw := ev.Data.Raw

	switch out.Type {
	case adapter.EventCheckoutCompleted:
		var s checkoutSessionObject
		if err := decode(raw, &s); err != nil {
			return nil, err
		}
		out.Checkout = &adapter.CheckoutCompleted{
			SessionID:      s.ID,
			Mode:           s.Mode,
			CustomerID:     string(s.Customer),
			SubscriptionID: string(s.Subscription),
			AmountTotal:    s.AmountTotal,
			Currency:       s.Currency,
			Metadata:       s.Metadata,
		}
	case adapter.EventInvoicePaid, adapter.EventInvoicePaymentSuccess, adapter.EventInvoicePaymentFailed:
		var inv invoiceObject
		if err := decode(raw, &inv); err != nil {
			return nil, err
		}
		out.Invoice = &adapter.Invoice{
			ID:             inv.ID,
			CustomerID:     string(inv.Customer),
			SubscriptionID: inv.subscriptionID(),
			AmountPaid:     inv.AmountPaid,
			AmountDue:      inv.AmountDue,
			Currency:       inv.Currency,
		}
	case adapter.EventSubscriptionUpdated, adapter.EventSubscriptionDeleted:
		var s subscriptionObject
		if err := decode(raw, &s); err != nil {
			return nil, err
		}
		out.Subscription = &adapter.SubscriptionChange{
			ID:               s.ID,
			CustomerID:       string(s.Customer),
			Status:           s.Status,
			CurrentPeriodEnd: unixPtr(s.periodEnd()),
		}
	}
	return out, nil
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode event object: %w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

// expandable holds the id of a field Stripe sends either as a bare id or as an
// expanded object.
type expandable string

func (e *expandable) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*e = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = expandable(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*e = expandable(obj.ID)
	return nil
}

type checkoutSessionObject struct {
	ID           string            `json:"id"`
	Mode         string            `json:"mode"`
	Customer     expandable        `json:"customer"`
	Subscription expandable        `json:"subscription"`
	AmountTotal  int64             `json:"amount_total"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

type invoiceObject struct {
	ID           string     `json:"id"`
	Customer     expandable `json:"customer"`
	Subscription expandable `json:"subscription"`
	Parent       *struct {
		SubscriptionDetails *struct {
			Subscription expandable `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
}

// subscriptionID supports both the legacy top-level field and the
// parent.subscription_details shape of newer API versions.
func (i invoiceObject) subscriptionID() string {
	if i.Subscription != "" {
		return string(i.Subscription)
	}
	if i.Parent != nil && i.Parent.SubscriptionDetails != nil {
		return string(i.Parent.SubscriptionDetails.Subscription)
	}
	return ""
}

type subscriptionObject struct {
	ID               string     `json:"id"`
	Customer         expandable `json:"customer"`
	Status           string     `json:"status"`
	CurrentPeriodEnd int64      `json:"current_period_end"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
		} `json:"data"`
	} `json:"items"`
}

func (s subscriptionObject) periodEnd() int64 {
	if len(s.Items.Data) > 0 && s.Items.Data[0].CurrentPeriodEnd > 0 {
		return s.Items.Data[0].CurrentPeriodEnd
	}
	return s.CurrentPeriodEnd
}
