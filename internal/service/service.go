package service

import (
	"context"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
)

// ItemService defines read operations on the item catalogue.
type ItemService interface {
	// GetAll retrieves items with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Item, error)

	// GetByID retrieves a single item by ID.
	GetByID(ctx context.Context, id string) (*model.Item, error)
}

// AvailabilityService answers whether a basket could be fulfilled right now.
type AvailabilityService interface {
	// Check reports a verdict per basket line without reserving anything.
	Check(ctx context.Context, req *model.AvailabilityRequest) (*model.AvailabilityResponse, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// PlaceOrder reserves stock for every basket line and records the order,
	// or changes nothing.
	PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) (*model.OrderResponse, error)

	// CancelOrder returns the order's stock and marks it cancelled.
	// Cancelling an already cancelled order succeeds without side effects.
	CancelOrder(ctx context.Context, req *model.CancelOrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order with its lines. Returns nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// InventoryService applies administrative stock corrections.
type InventoryService interface {
	// BulkUpdate sets absolute quantities for the listed items in one transaction.
	BulkUpdate(ctx context.Context, req *model.BulkUpdateRequest) (*model.BulkUpdateResponse, error)
}

// Options tune the transactional services.
type Options struct {
	TxTimeout      time.Duration
	MaxBasketLines int
	Producer       string
}

func (o Options) withDefaults() Options {
	if o.TxTimeout <= 0 {
		o.TxTimeout = 3 * time.Second
	}
	if o.MaxBasketLines <= 0 {
		o.MaxBasketLines = 100
	}
	if o.Producer == "" {
		o.Producer = "foodhub-orders"
	}
	return o
}
