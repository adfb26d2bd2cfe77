package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"foodhub/internal/model"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes the standard error body, tagged with the request id.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.GetReqID(r.Context()),
		Details:       details,
	})
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON document")
	}
	return nil
}

// writeInvalidJSON reports a body that could not be decoded.
func writeInvalidJSON(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	msg := "invalid request body"
	if errors.Is(err, io.EOF) {
		msg = "request body is empty"
	}
	logger.Debug().Err(err).Str("path", r.URL.Path).Msg("invalid request body")
	WriteError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, msg, nil)
}

// writeServiceError maps a service error onto a status code and error body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var (
		stockErr   *model.InsufficientStockError
		invalidErr *model.InvalidItemError
		domainErr  *model.DomainError
	)

	switch {
	case errors.As(err, &stockErr):
		WriteError(w, r, http.StatusConflict, model.ErrCodeInsufficientStock,
			model.ErrInsufficientStock.Message, stockErr.Shortfalls)
	case errors.As(err, &invalidErr):
		WriteError(w, r, http.StatusBadRequest, model.ErrCodeInvalidItem,
			model.ErrInvalidItem.Message, invalidErr.ItemIDs)
	case errors.As(err, &domainErr):
		WriteError(w, r, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message, nil)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("request timed out")
		WriteError(w, r, http.StatusGatewayTimeout, model.ErrCodeTimeout, "request timed out", nil)
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("handler error")
		WriteError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError,
			"an internal error occurred", nil)
	}
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeInsufficientStock, model.ErrCodeInvalidTransition, model.ErrCodeConcurrencyConflict:
		return http.StatusConflict
	case model.ErrCodeOrderNotFound, model.ErrCodeItemNotFound, model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
