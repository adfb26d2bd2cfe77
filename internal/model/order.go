package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// validNext lists the permitted transitions out of each status. Fulfilment
// owns the forward transitions; cancellation is owned by the order core.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPlaced: {
		StatusConfirmed: true, StatusPreparing: true, StatusReady: true,
		StatusOutForDelivery: true, StatusDelivered: true, StatusCancelled: true,
	},
	StatusConfirmed:      {StatusPreparing: true, StatusReady: true, StatusOutForDelivery: true, StatusDelivered: true, StatusCancelled: true},
	StatusPreparing:      {StatusReady: true, StatusOutForDelivery: true, StatusDelivered: true, StatusCancelled: true},
	StatusReady:          {StatusOutForDelivery: true, StatusDelivered: true, StatusCancelled: true},
	StatusOutForDelivery: {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// Terminal reports whether no transition is permitted out of s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Order represents a customer order.
type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	CustomerID   string          `json:"customerId" db:"customer_id"`
	Status       OrderStatus     `json:"status" db:"status"`
	ItemCount    int             `json:"itemCount" db:"item_count"`
	TotalAmount  decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Notes        *string         `json:"notes,omitempty" db:"notes"`
	CancelReason *string         `json:"cancelReason,omitempty" db:"cancel_reason"`
	CancelledAt  *time.Time      `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line of an order. Name, unit and price are copied from the
// item at placement time and do not follow later catalogue edits.
type OrderItem struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	OrderID    uuid.UUID       `json:"-" db:"order_id"`
	LineNo     int             `json:"lineNo" db:"line_no"`
	ItemID     string          `json:"itemId" db:"item_id"`
	ItemName   string          `json:"itemName" db:"item_name"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"unit_price"`
	TotalPrice decimal.Decimal `json:"totalPrice" db:"total_price"`
	Unit       string          `json:"unit" db:"unit"`
}

// StatusChange records a status transition applied to an order.
type StatusChange struct {
	OrderID    uuid.UUID   `json:"orderId" db:"order_id"`
	FromStatus OrderStatus `json:"fromStatus" db:"from_status"`
	ToStatus   OrderStatus `json:"toStatus" db:"to_status"`
	Reason     *string     `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
}

// BasketLine is a single requested (item, quantity) pair.
type BasketLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderRequest represents the request payload for placing an order.
type PlaceOrderRequest struct {
	CustomerID string       `json:"customerId"`
	Items      []BasketLine `json:"items"`
	Notes      *string      `json:"notes,omitempty"`
}

// CancelOrderRequest represents the request payload for cancelling an order.
type CancelOrderRequest struct {
	OrderID uuid.UUID `json:"orderId"`
	Reason  *string   `json:"reason,omitempty"`
}

// OrderResponse is an order together with its lines.
type OrderResponse struct {
	Order
	Items []OrderItem `json:"items"`
}

// MergeLines folds lines that reference the same item into one, keeping the
// position of the first occurrence.
func MergeLines(lines []BasketLine) []BasketLine {
	merged := make([]BasketLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ItemID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ItemID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}
