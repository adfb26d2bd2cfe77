package repository

import (
	"context"
	"errors"
	"fmt"

	"foodhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const itemColumns = `id, name, unit, price, discount, quantity, min_stock_level, is_active, created_at, updated_at`

// itemRepository implements the ItemRepository interface using PostgreSQL.
type itemRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewItemRepository creates a new PostgreSQL-backed item repository.
func NewItemRepository(pool *pgxpool.Pool, logger zerolog.Logger) ItemRepository {
	return &itemRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "item").Logger(),
	}
}

// scanItem reads one row selected with itemColumns.
func scanItem(row pgx.Row) (model.Item, error) {
	var it model.Item
	err := row.Scan(
		&it.ID,
		&it.Name,
		&it.Unit,
		&it.Price,
		&it.Discount,
		&it.Quantity,
		&it.MinStockLevel,
		&it.IsActive,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	return it, err
}

// collectItems drains rows selected with itemColumns.
func collectItems(rows pgx.Rows) ([]model.Item, error) {
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// GetAll retrieves items with pagination support.
func (r *itemRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items
		ORDER BY name, id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query items")
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	items, err := collectItems(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read item rows")
		return nil, err
	}
	return items, nil
}

// GetByID retrieves a single item by its ID.
func (r *itemRepository) GetByID(ctx context.Context, id string) (*model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	it, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("item_id", id).Msg("item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("item_id", id).Msg("failed to query item")
		return nil, fmt.Errorf("failed to query item: %w", err)
	}

	return &it, nil
}
