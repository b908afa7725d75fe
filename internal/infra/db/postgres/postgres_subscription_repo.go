package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"
	"fitco-billing/internal/infra/metrics"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

const subscriptionCols = `id, user_id, plan_type, price_cents, currency, expiry_date, status,
       coupon_code, external_subscription_id, external_customer_id, checkout_session_id,
       created_at, updated_at`

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

// UpsertByExternalID relies on the unique index over external_subscription_id,
// so concurrent deliveries for the same subscription converge on one row.
// user_id and created_at of an existing row are never rewritten.
func (r *subscriptionRepo) UpsertByExternalID(ctx context.Context, tx repository.Tx, s *model.Subscription) (*model.Subscription, error) {
	if s.ExternalSubscriptionID == nil || *s.ExternalSubscriptionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_type, price_cents, currency, expiry_date, status,
  coupon_code, external_subscription_id, external_customer_id, checkout_session_id,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
ON CONFLICT (external_subscription_id) DO UPDATE SET
  plan_type            = EXCLUDED.plan_type,
  price_cents          = EXCLUDED.price_cents,
  currency             = EXCLUDED.currency,
  expiry_date          = EXCLUDED.expiry_date,
  status               = EXCLUDED.status,
  coupon_code          = COALESCE(EXCLUDED.coupon_code, subscriptions.coupon_code),
  external_customer_id = COALESCE(EXCLUDED.external_customer_id, subscriptions.external_customer_id),
  checkout_session_id  = COALESCE(EXCLUDED.checkout_session_id, subscriptions.checkout_session_id),
  updated_at           = NOW()
RETURNING ` + subscriptionCols + `;`

	return r.queryOne(ctx, tx, q,
		s.ID, s.UserID, s.PlanType, s.PriceCents, s.Currency, s.ExpiryDate, s.Status,
		s.CouponCode, s.ExternalSubscriptionID, s.ExternalCustomerID, s.CheckoutSessionID)
}

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_type, price_cents, currency, expiry_date, status,
  coupon_code, external_subscription_id, external_customer_id, checkout_session_id,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  plan_type=$3, price_cents=$4, currency=$5, expiry_date=$6, status=$7,
  coupon_code=$8, external_subscription_id=$9, external_customer_id=$10, checkout_session_id=$11,
  updated_at=$13;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.PlanType, s.PriceCents, s.Currency, s.ExpiryDate, s.Status,
		s.CouponCode, s.ExternalSubscriptionID, s.ExternalCustomerID, s.CheckoutSessionID,
		s.CreatedAt, time.Now())
	return mapErr("save subscription", err)
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionCols + ` FROM subscriptions WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *subscriptionRepo) FindByExternalID(ctx context.Context, tx repository.Tx, externalID string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionCols + ` FROM subscriptions WHERE external_subscription_id=$1;`
	return r.queryOne(ctx, tx, q, externalID)
}

func (r *subscriptionRepo) FindCurrentByUser(ctx context.Context, tx repository.Tx, userID string, now time.Time) (*model.Subscription, error) {
	q := `
SELECT ` + subscriptionCols + `
  FROM subscriptions
 WHERE user_id=$1 AND status='active' AND expiry_date > $2
 ORDER BY created_at DESC
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, userID, now)
}

func (r *subscriptionRepo) HasCurrent(ctx context.Context, tx repository.Tx, userID string, now time.Time) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE user_id=$1 AND status='active' AND expiry_date > $2);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, now)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, mapErr("has current subscription", err)
	}
	return ok, nil
}

func (r *subscriptionRepo) UpdateState(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus, expiry *time.Time) error {
	const q = `
UPDATE subscriptions
   SET status=$2, expiry_date=COALESCE($3, expiry_date), updated_at=NOW()
 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, status, expiry)
	if err != nil {
		return mapErr("update subscription state", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) ExpireLapsed(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `UPDATE subscriptions SET status='expired', updated_at=NOW() WHERE status='active' AND expiry_date < $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, mapErr("expire lapsed subscriptions", err)
	}
	n := int(tag.RowsAffected())
	if n > 0 {
		metrics.IncSubscriptionsExpired(n)
	}
	return n, nil
}

func (r *subscriptionRepo) ExpireActiveByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `UPDATE subscriptions SET status='expired', updated_at=NOW() WHERE user_id=$1 AND status='active';`
	tag, err := execSQL(ctx, r.pool, tx, q, userID)
	if err != nil {
		return 0, mapErr("expire user subscriptions", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *subscriptionRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Subscription, error) {
	q := `SELECT ` + subscriptionCols + ` FROM subscriptions ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, mapErr("list subscriptions", err)
	}
	defer rows.Close()

	out := make([]*model.Subscription, 0, limit)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *subscriptionRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM subscriptions;`)
}

func (r *subscriptionRepo) CountCurrent(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM subscriptions WHERE status='active' AND expiry_date > $1;`, now)
}

func (r *subscriptionRepo) count(ctx context.Context, tx repository.Tx, q string, args ...any) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, mapErr("count subscriptions", err)
	}
	return n, nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	s, err := scanSubscription(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, mapErr("read subscription", err)
	}
	return s, nil
}

func scanSubscription(row scanner) (*model.Subscription, error) {
	var (
		s            model.Subscription
		plan, status string
	)
	err := row.Scan(
		&s.ID, &s.UserID, &plan, &s.PriceCents, &s.Currency, &s.ExpiryDate, &status,
		&s.CouponCode, &s.ExternalSubscriptionID, &s.ExternalCustomerID, &s.CheckoutSessionID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.PlanType = model.PlanType(plan)
	s.Status = model.SubscriptionStatus(status)
	return &s, nil
}
