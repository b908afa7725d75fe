package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"
	"fitco-billing/internal/infra/metrics"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

const transactionCols = `id, user_id, amount_cents, currency, plan_type, status, reference,
       coupon_code, external_subscription_id, external_invoice_id, checkout_session_id, created_at`

type transactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

// InsertIfAbsent is the idempotency gate for every ledger write: the unique
// reference decides which of two concurrent deliveries records the payment.
func (r *transactionRepo) InsertIfAbsent(ctx context.Context, tx repository.Tx, t *model.Transaction) (bool, error) {
	const q = `
INSERT INTO transactions (
  id, user_id, amount_cents, currency, plan_type, status, reference,
  coupon_code, external_subscription_id, external_invoice_id, checkout_session_id, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (reference) DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.UserID, t.AmountCents, t.Currency, t.PlanType, t.Status, t.Reference,
		t.CouponCode, t.ExternalSubscriptionID, t.ExternalInvoiceID, t.CheckoutSessionID, t.CreatedAt)
	if err != nil {
		return false, mapErr("insert transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	metrics.IncTransaction(string(t.Status), referenceSource(t.Reference))
	if t.Status == model.TransactionStatusPaid {
		metrics.AddRevenue(t.Currency, t.AmountCents)
	}
	return true, nil
}

func (r *transactionRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Transaction, error) {
	q := `SELECT ` + transactionCols + ` FROM transactions WHERE reference=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, reference)
	if err != nil {
		return nil, err
	}
	t, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, mapErr("read transaction", err)
	}
	return t, nil
}

func (r *transactionRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Transaction, error) {
	q := `SELECT ` + transactionCols + ` FROM transactions ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, mapErr("list transactions", err)
	}
	defer rows.Close()

	out := make([]*model.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *transactionRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM transactions;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, mapErr("count transactions", err)
	}
	return n, nil
}

func (r *transactionRepo) SumPaid(ctx context.Context, tx repository.Tx) (int64, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COALESCE(SUM(amount_cents),0)::bigint FROM transactions WHERE status='paid';`)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, mapErr("sum revenue", err)
	}
	return n, nil
}

func (r *transactionRepo) SumPaidByMonth(ctx context.Context, tx repository.Tx) ([]model.MonthlyRevenue, error) {
	const q = `
SELECT EXTRACT(YEAR FROM created_at)::int  AS y,
       EXTRACT(MONTH FROM created_at)::int AS m,
       COALESCE(SUM(amount_cents),0)::bigint
  FROM transactions
 WHERE status='paid'
 GROUP BY y, m
 ORDER BY y, m;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapErr("revenue by month", err)
	}
	defer rows.Close()

	var out []model.MonthlyRevenue
	for rows.Next() {
		var m model.MonthlyRevenue
		if err := rows.Scan(&m.Year, &m.Month, &m.TotalCents); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *transactionRepo) SumPaidByPlan(ctx context.Context, tx repository.Tx) ([]model.PlanRevenue, error) {
	const q = `
SELECT plan_type, COALESCE(SUM(amount_cents),0)::bigint, COUNT(*)
  FROM transactions
 WHERE status='paid'
 GROUP BY plan_type
 ORDER BY plan_type;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapErr("revenue by plan", err)
	}
	defer rows.Close()

	var out []model.PlanRevenue
	for rows.Next() {
		var (
			p    model.PlanRevenue
			plan string
		)
		if err := rows.Scan(&plan, &p.TotalCents, &p.Count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		p.PlanType = model.PlanType(plan)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var (
		t            model.Transaction
		plan, status string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.AmountCents, &t.Currency, &plan, &status, &t.Reference,
		&t.CouponCode, &t.ExternalSubscriptionID, &t.ExternalInvoiceID, &t.CheckoutSessionID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.PlanType = model.PlanType(plan)
	t.Status = model.TransactionStatus(status)
	return &t, nil
}

// referenceSource is the reference prefix: checkout, invoice, invoice_failed or manual.
func referenceSource(ref string) string {
	if i := strings.IndexByte(ref, ':'); i > 0 {
		return ref[:i]
	}
	return "unknown"
}
