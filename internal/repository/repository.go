package repository

import (
	"context"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ItemRepository defines read access to the item catalogue.
type ItemRepository interface {
	// GetAll retrieves items with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Item, error)

	// GetByID retrieves a single item by its ID. Returns nil if it does not exist.
	GetByID(ctx context.Context, id string) (*model.Item, error)
}

// StockLedger owns the on-hand quantity of every item. Mutations run inside
// a caller-supplied transaction and never drive a quantity below zero.
type StockLedger interface {
	// Snapshot reads the stock level of the given items in a single statement.
	// Unknown IDs are absent from the result.
	Snapshot(ctx context.Context, ids []string) (map[string]model.StockLevel, error)

	// LockItems row-locks the given items in ascending ID order and returns
	// them keyed by ID. Unknown IDs are absent from the result.
	LockItems(ctx context.Context, tx pgx.Tx, ids []string) (map[string]model.Item, error)

	// Reserve decrements an item's quantity if enough stock is on hand and
	// returns the remaining quantity.
	Reserve(ctx context.Context, tx pgx.Tx, itemID string, qty int) (int, error)

	// Release returns quantity to an item and returns the new quantity.
	Release(ctx context.Context, tx pgx.Tx, itemID string, qty int) (int, error)

	// SetQuantity overwrites an item's quantity and returns the previous value.
	SetQuantity(ctx context.Context, tx pgx.Tx, itemID string, qty int) (int, error)
}

// TxBeginner starts transactions shared by the ledger and order repository.
type TxBeginner interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	TxBeginner

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts order lines within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its lines.
	// Returns nil values if the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetForUpdate is GetByID inside a transaction with the order row locked.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// MarkCancelled moves an order from the given status to cancelled.
	MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID, from model.OrderStatus, reason *string, at time.Time) error

	// RecordStatusChange appends an entry to the order's status history.
	RecordStatusChange(ctx context.Context, tx pgx.Tx, change model.StatusChange) error
}
