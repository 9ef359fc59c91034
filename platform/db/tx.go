package db

import (
	"context"
	"fmt"

	"handylink_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
)

// Beginner starts transactions. *pgxpool.Pool implements it; tests
// substitute an in-memory implementation.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx runs fn inside a single database transaction. Every mutating
// operation goes through here: all reads and writes of one logical
// operation commit or roll back together.
func WithTx(ctx context.Context, pool Beginner, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("begin transaction failed: %v", err))
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal(fmt.Sprintf("commit transaction failed: %v", err))
	}
	return nil
}
