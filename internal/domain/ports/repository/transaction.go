package repository

import (
	"context"

	"fitco-billing/internal/domain/model"
)

// -----------------------------
// Transactions
// -----------------------------

type TransactionRepository interface {
	// InsertIfAbsent inserts t unless a row with the same reference exists.
	// It reports whether a row was written; an existing reference is not an error.
	InsertIfAbsent(ctx context.Context, tx Tx, t *model.Transaction) (bool, error)
	FindByReference(ctx context.Context, tx Tx, reference string) (*model.Transaction, error)

	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Transaction, error)
	Count(ctx context.Context, tx Tx) (int, error)

	SumPaid(ctx context.Context, tx Tx) (int64, error)
	SumPaidByMonth(ctx context.Context, tx Tx) ([]model.MonthlyRevenue, error)
	SumPaidByPlan(ctx context.Context, tx Tx) ([]model.PlanRevenue, error)
}
