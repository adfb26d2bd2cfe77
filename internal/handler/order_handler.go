package handler

import (
	"net/http"

	"foodhub/internal/model"
	"foodhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orders       service.OrderService
	availability service.AvailabilityService
	logger       zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, availability service.AvailabilityService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:       orders,
		availability: availability,
		logger:       logger.With().Str("handler", "order").Logger(),
	}
}

// PlaceOrder handles POST /orders/place-order requests.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req model.PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, err, h.logger)
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// cancelBody accepts the order id as a string so a malformed id is reported
// as a missing field rather than a decoding failure.
type cancelBody struct {
	OrderID string  `json:"orderId"`
	Reason  *string `json:"reason,omitempty"`
}

// CancelOrder handles POST /orders/cancel-order requests.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var body cancelBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeInvalidJSON(w, r, err, h.logger)
		return
	}
	if body.OrderID == "" {
		WriteError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "orderId is required", nil)
		return
	}
	orderID, err := uuid.Parse(body.OrderID)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "orderId must be a UUID", nil)
		return
	}

	order, err := h.orders.CancelOrder(r.Context(), &model.CancelOrderRequest{OrderID: orderID, Reason: body.Reason})
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// CheckAvailability handles POST /orders/check-availability requests.
func (h *OrderHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req model.AvailabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, err, h.logger)
		return
	}

	resp, err := h.availability.Check(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetByID handles GET /orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", nil)
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if order == nil {
		writeServiceError(w, r, model.ErrOrderNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
