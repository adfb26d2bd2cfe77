package handler

import (
	"net/http"
	"strconv"

	"foodhub/internal/model"
	"foodhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ItemHandler serves the item catalogue.
type ItemHandler struct {
	service service.ItemService
	logger  zerolog.Logger
}

// NewItemHandler creates a new item handler.
func NewItemHandler(service service.ItemService, logger zerolog.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		logger:  logger.With().Str("handler", "item").Logger(),
	}
}

// GetAll handles GET /items?limit=&offset= requests.
func (h *ItemHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := h.queryInt(w, r, "offset")
	if !ok {
		return
	}

	items, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// GetByID handles GET /items/{id} requests.
func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// queryInt parses an optional non-negative integer query parameter. Zero is
// returned when it is absent.
func (h *ItemHandler) queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		WriteError(w, r, http.StatusBadRequest, model.ErrCodeInvalidQuantity,
			"invalid "+name+" parameter", nil)
		return 0, false
	}
	return n, true
}
