package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

const userCols = `id, email, name, role, subscription_status, stripe_customer_id, created_at, updated_at`

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, email, name, role, subscription_status, stripe_customer_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
ON CONFLICT (id) DO UPDATE SET
  email=$2, name=$3, role=$4, subscription_status=$5,
  stripe_customer_id=COALESCE($6, users.stripe_customer_id), updated_at=NOW();`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Email, u.Name, u.Role, u.SubscriptionStatus, u.StripeCustomerID, u.CreatedAt)
	return mapErr("save user", err)
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *PostgresUserRepo) FindByStripeCustomerID(ctx context.Context, tx repository.Tx, customerID string) (*model.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE stripe_customer_id=$1;`
	return r.queryOne(ctx, tx, q, customerID)
}

// SetStripeCustomerID only fills an empty column; the first writer wins.
func (r *PostgresUserRepo) SetStripeCustomerID(ctx context.Context, tx repository.Tx, userID, customerID string) error {
	const q = `
UPDATE users
   SET stripe_customer_id=COALESCE(stripe_customer_id, $2), updated_at=NOW()
 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, customerID)
	if err != nil {
		return mapErr("set stripe customer", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) SetEntitlement(ctx context.Context, tx repository.Tx, userID string, status model.EntitlementStatus, customerID *string) error {
	const q = `
UPDATE users
   SET subscription_status=$2, stripe_customer_id=COALESCE($3::text, stripe_customer_id), updated_at=NOW()
 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, status, customerID)
	if err != nil {
		return mapErr("set entitlement", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, mapErr("count users", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...any) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var (
		u            model.User
		role, status string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &status, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, mapErr("read user", err)
	}
	u.Role = model.Role(role)
	u.SubscriptionStatus = model.EntitlementStatus(status)
	return &u, nil
}
