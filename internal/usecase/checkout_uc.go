package usecase

import (
	"context"
	"strconv"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/adapter"
	"fitco-billing/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Metadata keys embedded in the checkout session and read back by the reconciler.
const (
	MetaUserID             = "userId"
	MetaPlanType           = "planType"
	MetaBasePriceCents     = "basePriceCents"
	MetaFinalPriceCents    = "finalPriceCents"
	MetaDiscountPercentage = "discountPercentage"
	MetaCouponCode         = "couponCode"
)

type CheckoutResult struct {
	SessionID   string
	CheckoutURL string
	Quote       *model.Quote
}

// CheckoutUseCase starts a hosted checkout. It never writes subscriptions or
// transactions; those are created when the processor confirms payment.
type CheckoutUseCase interface {
	CreateCheckout(ctx context.Context, userID, planType, couponCode string) (*CheckoutResult, error)
}

// CheckoutURLs are the redirect targets after the hosted page.
type CheckoutURLs struct {
	SuccessURL string
	CancelURL  string
}

var _ CheckoutUseCase = (*checkoutUC)(nil)

type checkoutUC struct {
	users     repository.UserRepository
	quotes    QuoteUseCase
	processor adapter.PaymentProcessor
	urls      CheckoutURLs
	log       *zerolog.Logger
}

func NewCheckoutUseCase(users repository.UserRepository, quotes QuoteUseCase, processor adapter.PaymentProcessor, urls CheckoutURLs, logger *zerolog.Logger) CheckoutUseCase {
	l := logger.With().Str("component", "CheckoutUC").Logger()
	return &checkoutUC{users: users, quotes: quotes, processor: processor, urls: urls, log: &l}
}

func (c *checkoutUC) CreateCheckout(ctx context.Context, userID, planType, couponCode string) (*CheckoutResult, error) {
	if c.processor == nil || !c.processor.Configured() {
		return nil, domain.ErrProcessorNotConfigured
	}
	if _, err := model.ParsePlanType(planType); err != nil {
		return nil, err
	}

	quote, err := c.quotes.Quote(ctx, planType, couponCode)
	if err != nil {
		return nil, err
	}

	customerID, err := c.customerFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := c.processor.CreateCheckoutSession(ctx, adapter.CheckoutRequest{
		CustomerID:      customerID,
		ProductName:     quote.PlanType.ProductName(),
		Interval:        quote.PlanType.Interval(),
		UnitAmountCents: quote.FinalPriceCents,
		Currency:        quote.Currency,
		SuccessURL:      c.urls.SuccessURL,
		CancelURL:       c.urls.CancelURL,
		Metadata:        checkoutMetadata(userID, quote),
	})
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Str("plan", string(quote.PlanType)).Msg("checkout session failed")
		return nil, err
	}

	c.log.Info().
		Str("user_id", userID).
		Str("session_id", session.ID).
		Str("plan", string(quote.PlanType)).
		Int64("final_cents", quote.FinalPriceCents).
		Msg("checkout session created")
	return &CheckoutResult{SessionID: session.ID, CheckoutURL: session.URL, Quote: quote}, nil
}

// customerFor returns the user's processor customer id, creating it on first use.
// The stored id wins if a concurrent request persisted one first.
func (c *checkoutUC) customerFor(ctx context.Context, userID string) (string, error) {
	user, err := c.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	customerID, err := c.processor.CreateCustomer(ctx, adapter.CustomerRequest{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		return "", err
	}
	if err := c.users.SetStripeCustomerID(ctx, repository.NoTX, user.ID, customerID); err != nil {
		return "", err
	}

	stored, err := c.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return "", err
	}
	if stored.StripeCustomerID != nil && *stored.StripeCustomerID != customerID {
		c.log.Warn().Str("user_id", userID).Msg("customer id already stored by a concurrent checkout; reusing it")
		return *stored.StripeCustomerID, nil
	}
	return customerID, nil
}

func checkoutMetadata(userID string, q *model.Quote) map[string]string {
	return map[string]string{
		MetaUserID:             userID,
		MetaPlanType:           string(q.PlanType),
		MetaBasePriceCents:     strconv.FormatInt(q.BasePriceCents, 10),
		MetaFinalPriceCents:    strconv.FormatInt(q.FinalPriceCents, 10),
		MetaDiscountPercentage: strconv.Itoa(q.DiscountPercentage),
		MetaCouponCode:         q.AppliedCoupon(),
	}
}
