package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside a database transaction and hands the
// transaction handle to fn as tx.
//
// Repositories accept that handle on every method. They must accept NoTX
// (run against the pool) and may add row locks (SELECT ... FOR UPDATE) when a
// real transaction is passed. The concrete type of tx is infra-defined
// (pgx.Tx for Postgres).
//
// Usage:
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
//		if err := subs.Save(ctx, tx, s); err != nil {
//			return err
//		}
//		_, err := txns.InsertIfAbsent(ctx, tx, t)
//		return err
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
