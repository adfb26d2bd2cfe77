package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodhub/internal/model"
	"foodhub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// maxTxAttempts bounds how often a transaction that lost a lock race is rerun.
const maxTxAttempts = 2

// txRunner runs units of work in bounded transactions.
type txRunner struct {
	db      repository.TxBeginner
	timeout time.Duration
	logger  zerolog.Logger
}

// run executes fn in a fresh transaction, committing on success and rolling
// back otherwise. A concurrency conflict reruns fn once from the start, so fn
// must not leak state between attempts.
func (r txRunner) run(ctx context.Context, op string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.once(ctx, fn)
		if err == nil || !errors.Is(err, model.ErrConcurrencyConflict) {
			return err
		}
		r.logger.Warn().Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Msg("transaction lost a concurrent update")
	}
	return err
}

func (r txRunner) once(parent context.Context, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	ctx, cancel := context.WithTimeout(parent, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return err
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
