package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/adapter"
	"fitco-billing/internal/domain/ports/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

type WebhookOutcome string

const (
	OutcomeApplied   WebhookOutcome = "applied"
	OutcomeDuplicate WebhookOutcome = "duplicate"
	OutcomeIgnored   WebhookOutcome = "ignored"
)

type WebhookResult struct {
	EventID string
	Type    string
	Outcome WebhookOutcome
}

// WebhookUseCase applies processor events to the ledger. Every branch is
// idempotent on an identifier taken from the event itself, so redelivery is
// answered with success.
type WebhookUseCase interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
}

var _ WebhookUseCase = (*webhookUC)(nil)

type webhookUC struct {
	processor adapter.PaymentProcessor
	subs      repository.SubscriptionRepository
	txns      repository.TransactionRepository
	users     repository.UserRepository
	ledger    LedgerUseCase
	pricing   PricingUseCase
	tm        repository.TransactionManager
	now       func() time.Time
	log       *zerolog.Logger
}

func NewWebhookUseCase(
	processor adapter.PaymentProcessor,
	subs repository.SubscriptionRepository,
	txns repository.TransactionRepository,
	users repository.UserRepository,
	ledger LedgerUseCase,
	pricing PricingUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) WebhookUseCase {
	l := logger.With().Str("component", "WebhookUC").Logger()
	return &webhookUC{
		processor: processor,
		subs:      subs,
		txns:      txns,
		users:     users,
		ledger:    ledger,
		pricing:   pricing,
		tm:        tm,
		now:       time.Now,
		log:       &l,
	}
}

func (w *webhookUC) HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if w.processor == nil {
		return nil, domain.ErrProcessorNotConfigured
	}
	ev, err := w.processor.VerifyEvent(payload, signature)
	if err != nil {
		return nil, err
	}

	res := &WebhookResult{EventID: ev.ID, Type: ev.Type, Outcome: OutcomeIgnored}
	l := w.log.With().Str("event_id", ev.ID).Str("event_type", ev.Type).Logger()

	switch ev.Type {
	case adapter.EventCheckoutCompleted:
		res.Outcome, err = w.checkoutCompleted(ctx, ev.Checkout)
	case adapter.EventInvoicePaid, adapter.EventInvoicePaymentSuccess:
		res.Outcome, err = w.invoicePaid(ctx, ev.Invoice)
	case adapter.EventInvoicePaymentFailed:
		res.Outcome, err = w.invoiceFailed(ctx, ev.Invoice)
	case adapter.EventSubscriptionUpdated, adapter.EventSubscriptionDeleted:
		res.Outcome, err = w.subscriptionChanged(ctx, ev.Subscription)
	default:
		l.Debug().Msg("unhandled event type")
		return res, nil
	}
	if err != nil {
		l.Error().Err(err).Msg("webhook processing failed")
		return nil, err
	}
	l.Info().Str("outcome", string(res.Outcome)).Msg("webhook processed")
	return res, nil
}

func (w *webhookUC) checkoutCompleted(ctx context.Context, cs *adapter.CheckoutCompleted) (WebhookOutcome, error) {
	if cs == nil || cs.Mode != "subscription" || cs.SubscriptionID == "" || cs.CustomerID == "" {
		return OutcomeIgnored, nil
	}

	user, err := w.resolveUser(ctx, cs.Metadata[MetaUserID], cs.CustomerID)
	if err != nil {
		return "", err
	}

	live, err := w.processor.GetSubscription(ctx, cs.SubscriptionID)
	if err != nil {
		return "", err
	}

	plan, perr := model.ParsePlanType(cs.Metadata[MetaPlanType])
	if perr != nil {
		plan = model.PlanTypeFromInterval(live.Interval)
	}
	price := cs.AmountTotal
	if raw := strings.TrimSpace(cs.Metadata[MetaFinalPriceCents]); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v >= 0 {
			price = v
		}
	}
	currency, err := w.currencyOr(ctx, cs.Currency)
	if err != nil {
		return "", err
	}

	sub := &model.Subscription{
		ID:                     uuid.NewString(),
		UserID:                 user.ID,
		PlanType:               plan,
		PriceCents:             price,
		Currency:               currency,
		ExpiryDate:             w.expiry(live, plan),
		Status:                 model.StatusFromProcessor(live.Status),
		CouponCode:             optional(cs.Metadata[MetaCouponCode]),
		ExternalSubscriptionID: optional(cs.SubscriptionID),
		ExternalCustomerID:     optional(cs.CustomerID),
		CheckoutSessionID:      optional(cs.SessionID),
	}

	outcome := OutcomeDuplicate
	err = w.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := w.subs.UpsertByExternalID(ctx, tx, sub); err != nil {
			return err
		}
		txn, err := model.NewTransaction(user.ID, price, currency, plan, model.TransactionStatusPaid, model.CheckoutReference(cs.SessionID))
		if err != nil {
			return err
		}
		txn.CouponCode = sub.CouponCode
		txn.ExternalSubscriptionID = sub.ExternalSubscriptionID
		txn.CheckoutSessionID = sub.CheckoutSessionID
		inserted, err := w.txns.InsertIfAbsent(ctx, tx, txn)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		outcome = OutcomeApplied
		return w.users.SetEntitlement(ctx, tx, user.ID, model.EntitlementPremium, &cs.CustomerID)
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

func (w *webhookUC) invoicePaid(ctx context.Context, inv *adapter.Invoice) (WebhookOutcome, error) {
	if inv == nil || inv.SubscriptionID == "" || inv.CustomerID == "" {
		return OutcomeIgnored, nil
	}

	live, err := w.processor.GetSubscription(ctx, inv.SubscriptionID)
	if err != nil {
		return "", err
	}

	var userID string
	plan := model.PlanTypeFromInterval(live.Interval)
	local, err := w.subs.FindByExternalID(ctx, repository.NoTX, inv.SubscriptionID)
	switch {
	case err == nil:
		userID = local.UserID
		if live.Interval == "" {
			plan = local.PlanType
		}
	case errors.Is(err, domain.ErrNotFound):
		// invoice can arrive before (or without) checkout completion
		user, err := w.resolveUser(ctx, "", inv.CustomerID)
		if err != nil {
			return "", err
		}
		userID = user.ID
	default:
		return "", err
	}

	currency, err := w.currencyOr(ctx, inv.Currency)
	if err != nil {
		return "", err
	}
	sub := &model.Subscription{
		ID:                     uuid.NewString(),
		UserID:                 userID,
		PlanType:               plan,
		PriceCents:             inv.AmountPaid,
		Currency:               currency,
		ExpiryDate:             w.expiry(live, plan),
		Status:                 model.StatusFromProcessor(live.Status),
		ExternalSubscriptionID: optional(inv.SubscriptionID),
		ExternalCustomerID:     optional(inv.CustomerID),
	}

	outcome := OutcomeDuplicate
	err = w.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		stored, err := w.subs.UpsertByExternalID(ctx, tx, sub)
		if err != nil {
			return err
		}
		txn, err := model.NewTransaction(stored.UserID, inv.AmountPaid, currency, plan, model.TransactionStatusPaid, model.InvoiceReference(inv.ID))
		if err != nil {
			return err
		}
		txn.ExternalSubscriptionID = sub.ExternalSubscriptionID
		txn.ExternalInvoiceID = optional(inv.ID)
		inserted, err := w.txns.InsertIfAbsent(ctx, tx, txn)
		if err != nil {
			return err
		}
		if inserted {
			outcome = OutcomeApplied
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if _, err := w.ledger.SyncEntitlementFlag(ctx, userID); err != nil {
		return "", err
	}
	return outcome, nil
}

func (w *webhookUC) invoiceFailed(ctx context.Context, inv *adapter.Invoice) (WebhookOutcome, error) {
	if inv == nil || inv.SubscriptionID == "" {
		return OutcomeIgnored, nil
	}
	local, err := w.subs.FindByExternalID(ctx, repository.NoTX, inv.SubscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return OutcomeIgnored, nil
		}
		return "", err
	}

	currency := model.NormalizeCurrency(inv.Currency)
	if currency == "" {
		currency = local.Currency
	}
	txn, err := model.NewTransaction(local.UserID, inv.AmountDue, currency, local.PlanType, model.TransactionStatusFailed, model.InvoiceFailedReference(inv.ID))
	if err != nil {
		return "", err
	}
	txn.ExternalSubscriptionID = local.ExternalSubscriptionID
	txn.ExternalInvoiceID = optional(inv.ID)

	// Status stays as is; dunning and a later subscription event decide expiry.
	inserted, err := w.txns.InsertIfAbsent(ctx, repository.NoTX, txn)
	if err != nil {
		return "", err
	}
	if !inserted {
		return OutcomeDuplicate, nil
	}
	return OutcomeApplied, nil
}

func (w *webhookUC) subscriptionChanged(ctx context.Context, ch *adapter.SubscriptionChange) (WebhookOutcome, error) {
	if ch == nil || ch.ID == "" {
		return OutcomeIgnored, nil
	}
	local, err := w.subs.FindByExternalID(ctx, repository.NoTX, ch.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return OutcomeIgnored, nil
		}
		return "", err
	}

	status := model.StatusFromProcessor(ch.Status)
	if err := w.subs.UpdateState(ctx, repository.NoTX, local.ID, status, ch.CurrentPeriodEnd); err != nil {
		return "", err
	}
	if _, err := w.ledger.SyncEntitlementFlag(ctx, local.UserID); err != nil {
		return "", err
	}
	return OutcomeApplied, nil
}

// resolveUser tries the metadata user id first, then the processor customer id.
func (w *webhookUC) resolveUser(ctx context.Context, userID, customerID string) (*model.User, error) {
	if userID = strings.TrimSpace(userID); userID != "" {
		u, err := w.users.FindByID(ctx, repository.NoTX, userID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if customerID != "" {
		u, err := w.users.FindByStripeCustomerID(ctx, repository.NoTX, customerID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrUnresolvedUser
}

func (w *webhookUC) expiry(live *adapter.ProcessorSubscription, plan model.PlanType) time.Time {
	if live != nil && live.CurrentPeriodEnd != nil && !live.CurrentPeriodEnd.IsZero() {
		return *live.CurrentPeriodEnd
	}
	return plan.ExpiryFrom(w.now())
}

func (w *webhookUC) currencyOr(ctx context.Context, c string) (string, error) {
	if c = model.NormalizeCurrency(c); c != "" {
		return c, nil
	}
	settings, err := w.pricing.Current(ctx)
	if err != nil {
		return "", err
	}
	return settings.Currency, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
