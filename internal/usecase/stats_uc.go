package usecase

import (
	"context"
	"time"

	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase serves the admin dashboard.
type StatsUseCase interface {
	Overview(ctx context.Context) (*model.Overview, error)
	RevenueByPlan(ctx context.Context) ([]model.PlanRevenue, error)
	Transactions(ctx context.Context, page model.Page) ([]*model.Transaction, int, error)
}

type statsUC struct {
	users repository.UserRepository
	subs  repository.SubscriptionRepository
	txns  repository.TransactionRepository

	now func() time.Time
	log *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, subs repository.SubscriptionRepository, txns repository.TransactionRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, subs: subs, txns: txns, now: time.Now, log: logger}
}

func (s *statsUC) Overview(ctx context.Context) (*model.Overview, error) {
	users, err := s.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	active, err := s.subs.CountCurrent(ctx, repository.NoTX, s.now())
	if err != nil {
		return nil, err
	}
	total, err := s.txns.SumPaid(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	monthly, err := s.txns.SumPaidByMonth(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return &model.Overview{
		TotalUsers:          users,
		ActiveSubscriptions: active,
		TotalRevenueCents:   total,
		MonthlyRevenue:      monthly,
	}, nil
}

func (s *statsUC) RevenueByPlan(ctx context.Context) ([]model.PlanRevenue, error) {
	return s.txns.SumPaidByPlan(ctx, repository.NoTX)
}

func (s *statsUC) Transactions(ctx context.Context, page model.Page) ([]*model.Transaction, int, error) {
	total, err := s.txns.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.txns.List(ctx, repository.NoTX, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
