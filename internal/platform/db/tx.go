package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type contextKey string

// DBTxKey carries an open transaction so repositories participate in it
// instead of talking to the pool directly.
const DBTxKey contextKey = "db_tx"

// TxStarter begins transactions. *pgxpool.Pool satisfies it.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxFromContext retrieves the active transaction from context, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// WithTx begins a transaction and returns a derived context that
// repositories will route their queries through. The caller owns commit or
// rollback.
func WithTx(ctx context.Context, db TxStarter) (pgx.Tx, context.Context, error) {
	if db == nil {
		return nil, ctx, fmt.Errorf("no database pool available")
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, ctx, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, context.WithValue(ctx, DBTxKey, tx), nil
}

// InTx runs fn with a transaction injected into its context, so every
// repository call inside fn shares it. The transaction commits when fn
// returns nil and rolls back otherwise. A nil starter runs fn without a
// transaction, which keeps services testable against plain mocks.
func InTx(ctx context.Context, db TxStarter, fn func(ctx context.Context) error) error {
	if db == nil {
		return fn(ctx)
	}
	tx, txCtx, err := WithTx(ctx, db)
	if err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
