package router

import (
	"net/http"
	"time"

	"foodhub/internal/handler"
	"foodhub/internal/middleware"
	"foodhub/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Items     *handler.ItemHandler
	Orders    *handler.OrderHandler
	Inventory *handler.InventoryHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// A request that runs longer than requestTimeout has its context cancelled.
func New(h Handlers, apiKey string, requestTimeout time.Duration, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.RequestIDHeader,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.CORS,
		middleware.APIKeyAuth(apiKey, logger),
	)
	if requestTimeout > 0 {
		r.Use(chimw.Timeout(requestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.Items.GetAll)
		r.Get("/{id}", h.Items.GetByID)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/place-order", h.Orders.PlaceOrder)
		r.Post("/cancel-order", h.Orders.CancelOrder)
		r.Post("/check-availability", h.Orders.CheckAvailability)
		r.Post("/bulk-update", h.Inventory.BulkUpdate)
		r.Get("/{id}", h.Orders.GetByID)
	})

	return r
}
