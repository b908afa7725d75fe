package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"fitco-billing/internal/config"
	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/ports/adapter"
	"fitco-billing/internal/infra/metrics"
)

var _ adapter.PaymentProcessor = (*Processor)(nil)

// api is the subset of the Stripe client the processor calls.
type api interface {
	NewCustomer(params *stripelib.CustomerParams) (*stripelib.Customer, error)
	NewCheckoutSession(params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error)
	GetSubscription(id string, params *stripelib.SubscriptionParams) (*stripelib.Subscription, error)
}

type clientAPI struct {
	sc *client.API
}

func (c clientAPI) NewCustomer(params *stripelib.CustomerParams) (*stripelib.Customer, error) {
	return c.sc.Customers.New(params)
}

func (c clientAPI) NewCheckoutSession(params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error) {
	return c.sc.CheckoutSessions.New(params)
}

func (c clientAPI) GetSubscription(id string, params *stripelib.SubscriptionParams) (*stripelib.Subscription, error) {
	return c.sc.Subscriptions.Get(id, params)
}

// Processor implements adapter.PaymentProcessor on Stripe Checkout and Billing.
type Processor struct {
	api           api
	configured    bool
	webhookSecret string
	timeout       time.Duration
	log           *zerolog.Logger
}

func NewProcessor(cfg *config.StripeConfig, logger *zerolog.Logger) *Processor {
	l := logger.With().Str("component", "StripeProcessor").Logger()
	p := &Processor{
		configured:    strings.TrimSpace(cfg.SecretKey) != "",
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		timeout:       cfg.Timeout,
		log:           &l,
	}
	if p.timeout <= 0 {
		p.timeout = 10 * time.Second
	}
	if p.configured {
		sc := &client.API{}
		sc.Init(strings.TrimSpace(cfg.SecretKey), nil)
		p.api = clientAPI{sc: sc}
	} else {
		l.Warn().Msg("stripe secret key missing; checkout is disabled")
	}
	return p
}

func (p *Processor) Name() string     { return "stripe" }
func (p *Processor) Configured() bool { return p.configured && p.api != nil }

func (p *Processor) CreateCustomer(ctx context.Context, req adapter.CustomerRequest) (string, error) {
	if !p.Configured() {
		return "", domain.ErrProcessorNotConfigured
	}
	var id string
	err := p.call(ctx, "create_customer", func(ctx context.Context) error {
		params := &stripelib.CustomerParams{Email: stripelib.String(req.Email)}
		if req.Name != "" {
			params.Name = stripelib.String(req.Name)
		}
		params.AddMetadata("userId", req.UserID)
		params.Context = ctx
		c, err := p.api.NewCustomer(params)
		if err != nil {
			return err
		}
		id = c.ID
		return nil
	})
	return id, err
}

func (p *Processor) CreateCheckoutSession(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	if !p.Configured() {
		return nil, domain.ErrProcessorNotConfigured
	}
	var out *adapter.CheckoutSession
	err := p.call(ctx, "create_checkout_session", func(ctx context.Context) error {
		params := checkoutParams(req)
		params.Context = ctx
		s, err := p.api.NewCheckoutSession(params)
		if err != nil {
			return err
		}
		out = &adapter.CheckoutSession{ID: s.ID, URL: s.URL}
		return nil
	})
	return out, err
}

func checkoutParams(req adapter.CheckoutRequest) *stripelib.CheckoutSessionParams {
	return &stripelib.CheckoutSessionParams{
		Mode:       stripelib.String(string(stripelib.CheckoutSessionModeSubscription)),
		Customer:   stripelib.String(req.CustomerID),
		SuccessURL: stripelib.String(req.SuccessURL),
		CancelURL:  stripelib.String(req.CancelURL),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{
				PriceData: &stripelib.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripelib.String(req.Currency),
					UnitAmount: stripelib.Int64(req.UnitAmountCents),
					Recurring: &stripelib.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripelib.String(req.Interval),
					},
					ProductData: &stripelib.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripelib.String(req.ProductName),
					},
				},
				Quantity: stripelib.Int64(1),
			},
		},
		Metadata: req.Metadata,
	}
}

func (p *Processor) GetSubscription(ctx context.Context, id string) (*adapter.ProcessorSubscription, error) {
	if !p.Configured() {
		return nil, domain.ErrProcessorNotConfigured
	}
	var out *adapter.ProcessorSubscription
	err := p.call(ctx, "get_subscription", func(ctx context.Context) error {
		params := &stripelib.SubscriptionParams{}
		params.Context = ctx
		s, err := p.api.GetSubscription(id, params)
		if err != nil {
			return err
		}
		out = toProcessorSubscription(s)
		return nil
	})
	return out, err
}

func toProcessorSubscription(s *stripelib.Subscription) *adapter.ProcessorSubscription {
	out := &adapter.ProcessorSubscription{ID: s.ID, Status: string(s.Status)}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 {
		item := s.Items.Data[0]
		if item.Price != nil && item.Price.Recurring != nil {
			out.Interval = string(item.Price.Recurring.Interval)
		}
		out.CurrentPeriodEnd = unixPtr(item.CurrentPeriodEnd)
	}
	return out
}

// call applies the per-request timeout, records latency and maps failures to
// domain.ErrTransientProcessor so webhook deliveries are retried.
func (p *Processor) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveProcessorCall(op, time.Since(start).Milliseconds(), err == nil)
	if err == nil {
		return nil
	}

	var serr *stripelib.Error
	if errors.As(err, &serr) {
		p.log.Error().Str("op", op).Str("code", string(serr.Code)).Int("status", serr.HTTPStatusCode).Msg(serr.Msg)
	} else {
		p.log.Error().Err(err).Str("op", op).Msg("stripe call failed")
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrTransientProcessor, op, err)
}

func unixPtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
