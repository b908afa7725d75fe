package usecase

import (
	"context"
	"errors"
	"time"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// PricingUseCase owns the single pricing settings row.
type PricingUseCase interface {
	// EnsureDefaults writes the configured defaults if no row exists yet. Safe to
	// call concurrently from several instances.
	EnsureDefaults(ctx context.Context) error

	// Current returns the pricing row. A missing row is created with defaults
	// through the same insert-if-absent path.
	Current(ctx context.Context) (*model.PricingSettings, error)

	// Update mutates fields of the pricing row. Nil pointers mean "no change".
	Update(ctx context.Context, monthlyCents, yearlyCents *int64, currency *string, adminID string) (*model.PricingSettings, error)

	// Plans lists every plan with its current price.
	Plans(ctx context.Context) ([]model.PlanPrice, error)
}

// PricingDefaults are the values written when the row is first created.
type PricingDefaults struct {
	MonthlyPriceCents int64
	YearlyPriceCents  int64
	Currency          string
}

var _ PricingUseCase = (*pricingUC)(nil)

type pricingUC struct {
	prices   repository.PricingRepository
	defaults PricingDefaults
	log      *zerolog.Logger
}

func NewPricingUseCase(prices repository.PricingRepository, defaults PricingDefaults, logger *zerolog.Logger) PricingUseCase {
	l := logger.With().Str("component", "PricingUC").Logger()
	return &pricingUC{prices: prices, defaults: defaults, log: &l}
}

func (p *pricingUC) EnsureDefaults(ctx context.Context) error {
	def, err := model.NewPricingSettings(p.defaults.MonthlyPriceCents, p.defaults.YearlyPriceCents, p.defaults.Currency)
	if err != nil {
		return err
	}
	created, err := p.prices.InsertIfAbsent(ctx, repository.NoTX, def)
	if err != nil {
		return err
	}
	if created {
		p.log.Info().
			Int64("monthly_cents", def.MonthlyPriceCents).
			Int64("yearly_cents", def.YearlyPriceCents).
			Str("currency", def.Currency).
			Msg("pricing defaults created")
	}
	return nil
}

func (p *pricingUC) Current(ctx context.Context) (*model.PricingSettings, error) {
	s, err := p.prices.Get(ctx, repository.NoTX, model.DefaultPricingKey)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := p.EnsureDefaults(ctx); err != nil {
		return nil, err
	}
	return p.prices.Get(ctx, repository.NoTX, model.DefaultPricingKey)
}

func (p *pricingUC) Update(ctx context.Context, monthlyCents, yearlyCents *int64, currency *string, adminID string) (*model.PricingSettings, error) {
	s, err := p.Current(ctx)
	if err != nil {
		return nil, err
	}
	if monthlyCents != nil {
		s.MonthlyPriceCents = *monthlyCents
	}
	if yearlyCents != nil {
		s.YearlyPriceCents = *yearlyCents
	}
	if currency != nil {
		s.Currency = model.NormalizeCurrency(*currency)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if adminID != "" {
		s.UpdatedBy = &adminID
	}
	s.UpdatedAt = time.Now()
	if err := p.prices.Update(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	p.log.Info().Str("admin_id", adminID).Msg("pricing updated")
	return s, nil
}

func (p *pricingUC) Plans(ctx context.Context) ([]model.PlanPrice, error) {
	s, err := p.Current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.PlanPrice, 0, len(model.Plans))
	for _, plan := range model.Plans {
		out = append(out, model.PlanPrice{
			PlanType:   plan,
			Interval:   plan.Interval(),
			Label:      plan.Label(),
			PriceCents: s.PriceCents(plan),
			Currency:   s.Currency,
		})
	}
	return out, nil
}
