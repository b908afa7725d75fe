package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"
)

var _ repository.CouponRepository = (*couponRepo)(nil)

const couponCols = `id, code, discount_percentage, expiry_date, is_active, created_at, updated_at`

type couponRepo struct {
	pool *pgxpool.Pool
}

func NewCouponRepo(pool *pgxpool.Pool) *couponRepo {
	return &couponRepo{pool: pool}
}

func (r *couponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	q := `SELECT ` + couponCols + ` FROM coupons WHERE code=$1;`
	return r.queryOne(ctx, tx, q, code)
}

func (r *couponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (id, code, discount_percentage, expiry_date, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW())
ON CONFLICT (id) DO UPDATE SET
  code=$2, discount_percentage=$3, expiry_date=$4, is_active=$5, updated_at=NOW();`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Code, c.DiscountPercentage, c.ExpiryDate, c.IsActive, c.CreatedAt)
	return mapErr("save coupon", err)
}

func (r *couponRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) (*model.Coupon, error) {
	q := `UPDATE coupons SET is_active=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + couponCols + `;`
	return r.queryOne(ctx, tx, q, id, active)
}

func (r *couponRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Coupon, error) {
	q := `SELECT ` + couponCols + ` FROM coupons ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapErr("list coupons", err)
	}
	defer rows.Close()

	var out []*model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *couponRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...any) (*model.Coupon, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	c, err := scanCoupon(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, mapErr("read coupon", err)
	}
	return c, nil
}

func scanCoupon(row scanner) (*model.Coupon, error) {
	var c model.Coupon
	if err := row.Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.ExpiryDate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
