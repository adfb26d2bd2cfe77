package model

import (
	"fmt"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
	Details       any    `json:"details,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeEmptyBasket         = "EMPTY_BASKET"
	ErrCodeEmptyUpdate         = "EMPTY_UPDATE"
	ErrCodeInvalidItem         = "INVALID_ITEM"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeItemNotFound        = "ITEM_NOT_FOUND"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrMissingCustomer     = NewDomainError(ErrCodeMissingField, "Customer ID is required")
	ErrEmptyBasket         = NewDomainError(ErrCodeEmptyBasket, "Order must contain at least one item")
	ErrEmptyUpdate         = NewDomainError(ErrCodeEmptyUpdate, "Bulk update must contain at least one item")
	ErrInvalidItem         = NewDomainError(ErrCodeInvalidItem, "One or more items do not exist or are inactive")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrNegativeQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Stock quantity cannot be negative")
	ErrQuantityTooLarge    = NewDomainError(ErrCodeInvalidQuantity, "Quantity exceeds the maximum allowed")
	ErrTooManyLines        = NewDomainError(ErrCodeInvalidQuantity, "Order contains too many lines")
	ErrInsufficientStock   = NewDomainError(ErrCodeInsufficientStock, "One or more items do not have enough stock")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Order can no longer be cancelled")
	ErrConcurrencyConflict = NewDomainError(ErrCodeConcurrencyConflict, "Order could not be processed because of a concurrent update, please retry")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrItemNotFound        = NewDomainError(ErrCodeItemNotFound, "Item not found")
)

// StockShortfall describes a basket line that cannot be satisfied.
type StockShortfall struct {
	ItemID    string `json:"itemId"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError names every line that could not be reserved.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	ids := make([]string, len(e.Shortfalls))
	for i, s := range e.Shortfalls {
		ids[i] = fmt.Sprintf("%s (requested %d, available %d)", s.ItemID, s.Requested, s.Available)
	}
	return "insufficient stock for " + strings.Join(ids, ", ")
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvalidItemError names the items that are unknown or inactive.
type InvalidItemError struct {
	ItemIDs []string
}

func (e *InvalidItemError) Error() string {
	return "invalid items: " + strings.Join(e.ItemIDs, ", ")
}

func (e *InvalidItemError) Unwrap() error {
	return ErrInvalidItem
}
