package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodhub/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "Empty basket", err: model.ErrEmptyBasket, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeEmptyBasket},
		{name: "Missing customer", err: model.ErrMissingCustomer, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeMissingField},
		{name: "Invalid quantity", err: model.ErrInvalidQuantity, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeInvalidQuantity},
		{name: "Quantity too large", err: model.ErrQuantityTooLarge, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeInvalidQuantity},
		{name: "Invalid transition wrapped", err: fmt.Errorf("%w: order x is delivered", model.ErrInvalidTransition), expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeInvalidTransition},
		{name: "Concurrency conflict", err: model.ErrConcurrencyConflict, expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeConcurrencyConflict},
		{name: "Order not found", err: model.ErrOrderNotFound, expectedStatus: http.StatusNotFound, expectedCode: model.ErrCodeOrderNotFound},
		{name: "Item not found", err: model.ErrItemNotFound, expectedStatus: http.StatusNotFound, expectedCode: model.ErrCodeItemNotFound},
		{name: "Deadline exceeded", err: fmt.Errorf("failed to lock items: %w", context.DeadlineExceeded), expectedStatus: http.StatusGatewayTimeout, expectedCode: model.ErrCodeTimeout},
		{name: "Infrastructure failure", err: errors.New("connection reset"), expectedStatus: http.StatusInternalServerError, expectedCode: model.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			writeServiceError(rec, req, tt.err, zerolog.Nop())

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.expectedCode, decodeError(t, rec).Error)
		})
	}
}

func TestWriteServiceError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeServiceError(rec, req, errors.New("password authentication failed for user postgres"), zerolog.Nop())

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestWriteServiceError_Details(t *testing.T) {
	t.Run("Insufficient stock lists shortfalls", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := fmt.Errorf("place order: %w", &model.InsufficientStockError{
			Shortfalls: []model.StockShortfall{{ItemID: "B", Requested: 1, Available: 0}},
		})

		writeServiceError(rec, httptest.NewRequest(http.MethodPost, "/", nil), err, zerolog.Nop())

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `[{"itemId":"B","requested":1,"available":0}]`,
			string(mustJSON(t, decodeError(t, rec).Details)))
	})

	t.Run("Invalid items lists ids", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := &model.InvalidItemError{ItemIDs: []string{"X1"}}

		writeServiceError(rec, httptest.NewRequest(http.MethodPost, "/", nil), err, zerolog.Nop())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, model.ErrCodeInvalidItem, resp.Error)
		assert.Equal(t, []any{"X1"}, resp.Details)
	})
}
