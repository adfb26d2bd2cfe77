package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new read-committed transaction. Stock rows are protected
// by explicit row locks, so a stronger isolation level is not needed.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, status, item_count, total_amount, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.CustomerID,
		string(order.Status),
		order.ItemCount,
		order.TotalAmount,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		err = classify(err)
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("customer_id", order.CustomerID).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts order lines within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, line_no, item_id, item_name, unit, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.LineNo,
			item.ItemID,
			item.ItemName,
			item.Unit,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			err = classify(err)
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("item_id", items[i].ItemID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its lines.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	return r.load(ctx, r.pool, id, false)
}

// GetForUpdate retrieves an order inside tx, locking the order row.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	return r.load(ctx, tx, id, true)
}

func (r *orderRepository) load(ctx context.Context, q querier, id uuid.UUID, lock bool) (*model.Order, []model.OrderItem, error) {
	orderQuery := `
		SELECT id, customer_id, status, item_count, total_amount, notes,
		       cancel_reason, cancelled_at, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	if lock {
		orderQuery += ` FOR UPDATE`
	}

	var (
		order  model.Order
		status string
	)
	err := q.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.CustomerID,
		&status,
		&order.ItemCount,
		&order.TotalAmount,
		&order.Notes,
		&order.CancelReason,
		&order.CancelledAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		err = classify(err)
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}
	order.Status = model.OrderStatus(status)
	if !order.Status.Valid() {
		r.logger.Error().Str("order_id", id.String()).Str("status", status).Msg("order has unknown status")
		return nil, nil, fmt.Errorf("order %s has unknown status %q", id, status)
	}

	itemsQuery := `
		SELECT id, order_id, line_no, item_id, item_name, unit, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_no
	`

	rows, err := q.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", classify(err))
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.LineNo,
			&item.ItemID,
			&item.ItemName,
			&item.Unit,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", classify(err))
	}

	return &order, items, nil
}

// MarkCancelled moves an order from the given status to cancelled. The update
// is guarded on the expected status so a concurrent transition is detected.
func (r *orderRepository) MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID, from model.OrderStatus, reason *string, at time.Time) error {
	query := `
		UPDATE orders
		SET status = $3, cancel_reason = $4, cancelled_at = $5, updated_at = $5
		WHERE id = $1 AND status = $2
	`

	tag, err := tx.Exec(ctx, query, id, string(from), string(model.StatusCancelled), reason, at)
	if err != nil {
		err = classify(err)
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to cancel order")
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("order_id", id.String()).
			Str("expected_status", string(from)).
			Msg("order status changed before cancellation")
		return fmt.Errorf("%w: order %s is no longer %s", model.ErrConcurrencyConflict, id, from)
	}

	return nil
}

// RecordStatusChange appends an entry to the order's status history.
func (r *orderRepository) RecordStatusChange(ctx context.Context, tx pgx.Tx, change model.StatusChange) error {
	query := `
		INSERT INTO order_status_history (order_id, from_status, to_status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(ctx, query,
		change.OrderID,
		string(change.FromStatus),
		string(change.ToStatus),
		change.Reason,
		change.CreatedAt,
	)
	if err != nil {
		err = classify(err)
		r.logger.Error().Err(err).Str("order_id", change.OrderID.String()).Msg("failed to record status change")
		return fmt.Errorf("failed to record status change: %w", err)
	}
	return nil
}
