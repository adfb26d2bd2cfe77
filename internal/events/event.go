// Package events publishes domain events produced by the order core.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types. They double as kafka topic suffixes and rabbitmq routing keys.
const (
	TypeOrderPlaced       = "order.placed"
	TypeOrderCancelled    = "order.cancelled"
	TypeInventoryLowStock = "inventory.low_stock"
	TypeInventoryAdjusted = "inventory.adjusted"
)

// currentVersion is bumped when a payload changes incompatibly.
const currentVersion = 1

// ErrBufferFull is returned when the outbound queue cannot take another event.
var ErrBufferFull = errors.New("events: outbound buffer full")

// ErrClosed is returned when publishing after Close.
var ErrClosed = errors.New("events: publisher closed")

// Envelope wraps every event payload with routing metadata.
type Envelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into a fresh envelope.
func NewEnvelope(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  currentVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// DecodePayload unmarshals an envelope payload into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("decode %s payload: %w", env.EventType, err)
	}
	return out, nil
}

// Publisher delivers envelopes to a broker. Publish must not block on the
// network for longer than ctx allows.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// OrderLine is the per-line part of order payloads.
type OrderLine struct {
	ItemID     string          `json:"itemId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// OrderPlaced is the payload of order.placed.
type OrderPlaced struct {
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	ItemCount   int             `json:"itemCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Lines       []OrderLine     `json:"lines"`
}

// ReleasedLine is a quantity returned to stock.
type ReleasedLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// OrderCancelled is the payload of order.cancelled.
type OrderCancelled struct {
	OrderID    string         `json:"orderId"`
	FromStatus string         `json:"fromStatus"`
	Reason     string         `json:"reason,omitempty"`
	Released   []ReleasedLine `json:"released"`
}

// LowStock is the payload of inventory.low_stock.
type LowStock struct {
	ItemID        string `json:"itemId"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"minStockLevel"`
	OrderID       string `json:"orderId,omitempty"`
}

// StockAdjusted is the payload of inventory.adjusted.
type StockAdjusted struct {
	ItemID   string `json:"itemId"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}
