package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"foodhub/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInventoryHandler_BulkUpdate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockInventoryService)
		h := NewInventoryHandler(svc, zerolog.Nop())

		applied := &model.BulkUpdateResponse{Changes: []model.StockChange{{ItemID: "A", Previous: 5, Current: 20}}}
		svc.On("BulkUpdate", mock.Anything, &model.BulkUpdateRequest{
			Updates: []model.StockUpdate{{ItemID: "A", Quantity: 20}},
		}).Return(applied, nil)

		rec := serve(http.MethodPost, "/orders/bulk-update", h.BulkUpdate,
			newRequest(http.MethodPost, "/orders/bulk-update", `{"updates":[{"itemId":"A","quantity":20}]}`))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp model.BulkUpdateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, *applied, resp)
		svc.AssertExpectations(t)
	})

	t.Run("Negative quantity", func(t *testing.T) {
		svc := new(MockInventoryService)
		h := NewInventoryHandler(svc, zerolog.Nop())
		svc.On("BulkUpdate", mock.Anything, mock.Anything).Return(nil, model.ErrNegativeQuantity)

		rec := serve(http.MethodPost, "/orders/bulk-update", h.BulkUpdate,
			newRequest(http.MethodPost, "/orders/bulk-update", `{"updates":[{"itemId":"A","quantity":-1}]}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, model.ErrCodeInvalidQuantity, decodeError(t, rec).Error)
	})

	t.Run("Unknown item", func(t *testing.T) {
		svc := new(MockInventoryService)
		h := NewInventoryHandler(svc, zerolog.Nop())
		svc.On("BulkUpdate", mock.Anything, mock.Anything).
			Return(nil, &model.InvalidItemError{ItemIDs: []string{"Z"}})

		rec := serve(http.MethodPost, "/orders/bulk-update", h.BulkUpdate,
			newRequest(http.MethodPost, "/orders/bulk-update", `{"updates":[{"itemId":"Z","quantity":1}]}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, model.ErrCodeInvalidItem, decodeError(t, rec).Error)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		svc := new(MockInventoryService)
		h := NewInventoryHandler(svc, zerolog.Nop())

		rec := serve(http.MethodPost, "/orders/bulk-update", h.BulkUpdate,
			newRequest(http.MethodPost, "/orders/bulk-update", `{"updates":"A"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "BulkUpdate", mock.Anything, mock.Anything)
	})
}
