package handler

import (
	"net/http"

	"foodhub/internal/model"
	"foodhub/internal/service"

	"github.com/rs/zerolog"
)

// InventoryHandler handles administrative stock corrections.
type InventoryHandler struct {
	service service.InventoryService
	logger  zerolog.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(service service.InventoryService, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "inventory").Logger(),
	}
}

// BulkUpdate handles POST /orders/bulk-update requests.
func (h *InventoryHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.BulkUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, err, h.logger)
		return
	}

	resp, err := h.service.BulkUpdate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
