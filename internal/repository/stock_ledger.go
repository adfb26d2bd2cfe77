package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"foodhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// stockLedger implements StockLedger on the items table.
type stockLedger struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockLedger creates a new PostgreSQL-backed stock ledger.
func NewStockLedger(pool *pgxpool.Pool, logger zerolog.Logger) StockLedger {
	return &stockLedger{
		pool:   pool,
		logger: logger.With().Str("repository", "stock_ledger").Logger(),
	}
}

// Snapshot reads the stock level of the given items in a single statement.
func (l *stockLedger) Snapshot(ctx context.Context, ids []string) (map[string]model.StockLevel, error) {
	levels := make(map[string]model.StockLevel, len(ids))
	if len(ids) == 0 {
		return levels, nil
	}

	rows, err := l.pool.Query(ctx, `SELECT id, quantity, is_active FROM items WHERE id = ANY($1)`, ids)
	if err != nil {
		l.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to read stock snapshot")
		return nil, fmt.Errorf("failed to read stock snapshot: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lvl model.StockLevel
		if err := rows.Scan(&lvl.ItemID, &lvl.Quantity, &lvl.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels[lvl.ItemID] = lvl
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock levels: %w", err)
	}

	return levels, nil
}

// LockItems row-locks the given items in ascending ID order.
func (l *stockLedger) LockItems(ctx context.Context, tx pgx.Tx, ids []string) (map[string]model.Item, error) {
	locked := make(map[string]model.Item, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		err = classify(err)
		l.logger.Error().Err(err).Int("count", len(sorted)).Msg("failed to lock items")
		return nil, fmt.Errorf("failed to lock items: %w", err)
	}

	items, err := collectItems(rows)
	if err != nil {
		return nil, classify(err)
	}
	for _, it := range items {
		locked[it.ID] = it
	}

	l.logger.Debug().Int("requested", len(sorted)).Int("locked", len(locked)).Msg("items locked")
	return locked, nil
}

// Reserve decrements an item's quantity if enough stock is on hand.
func (l *stockLedger) Reserve(ctx context.Context, tx pgx.Tx, itemID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, model.ErrInvalidQuantity
	}

	var remaining int
	err := tx.QueryRow(ctx, `
		UPDATE items
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
		RETURNING quantity
	`, itemID, qty).Scan(&remaining)
	if err == nil {
		l.logger.Debug().Str("item_id", itemID).Int("qty", qty).Int("remaining", remaining).Msg("stock reserved")
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		err = classify(err)
		l.logger.Error().Err(err).Str("item_id", itemID).Int("qty", qty).Msg("failed to reserve stock")
		return 0, fmt.Errorf("failed to reserve stock: %w", err)
	}

	// Nothing matched: either the item is unknown or it is short.
	var available int
	err = tx.QueryRow(ctx, `SELECT quantity FROM items WHERE id = $1`, itemID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &model.InvalidItemError{ItemIDs: []string{itemID}}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", classify(err))
	}

	l.logger.Debug().Str("item_id", itemID).Int("qty", qty).Int("available", available).Msg("insufficient stock")
	return 0, &model.InsufficientStockError{
		Shortfalls: []model.StockShortfall{{ItemID: itemID, Requested: qty, Available: available}},
	}
}

// Release returns quantity to an item.
func (l *stockLedger) Release(ctx context.Context, tx pgx.Tx, itemID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, model.ErrInvalidQuantity
	}

	var current int
	err := tx.QueryRow(ctx, `
		UPDATE items
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING quantity
	`, itemID, qty).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &model.InvalidItemError{ItemIDs: []string{itemID}}
	}
	if err != nil {
		err = classify(err)
		l.logger.Error().Err(err).Str("item_id", itemID).Int("qty", qty).Msg("failed to release stock")
		return 0, fmt.Errorf("failed to release stock: %w", err)
	}

	l.logger.Debug().Str("item_id", itemID).Int("qty", qty).Int("quantity", current).Msg("stock released")
	return current, nil
}

// SetQuantity overwrites an item's quantity and returns the previous value.
func (l *stockLedger) SetQuantity(ctx context.Context, tx pgx.Tx, itemID string, qty int) (int, error) {
	if qty < 0 {
		return 0, model.ErrNegativeQuantity
	}

	var previous int
	err := tx.QueryRow(ctx, `SELECT quantity FROM items WHERE id = $1 FOR UPDATE`, itemID).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &model.InvalidItemError{ItemIDs: []string{itemID}}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", classify(err))
	}

	if _, err := tx.Exec(ctx, `UPDATE items SET quantity = $2, updated_at = NOW() WHERE id = $1`, itemID, qty); err != nil {
		err = classify(err)
		l.logger.Error().Err(err).Str("item_id", itemID).Int("qty", qty).Msg("failed to set stock")
		return 0, fmt.Errorf("failed to set stock: %w", err)
	}

	l.logger.Debug().Str("item_id", itemID).Int("previous", previous).Int("quantity", qty).Msg("stock set")
	return previous, nil
}
