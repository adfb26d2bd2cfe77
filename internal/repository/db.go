package repository

import (
	"context"
	"errors"
	"fmt"

	"foodhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes that indicate the transaction lost a race and can be
// retried from the start.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// classify maps retryable postgres failures onto ErrConcurrencyConflict and
// returns every other error unchanged.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s", model.ErrConcurrencyConflict, pgErr.Message)
		}
	}
	return err
}
