// Package respond holds the JSON response helpers shared by the API handlers.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"value_copilot/pkg/core/copilot"
	"value_copilot/pkg/core/ingest"
	"value_copilot/pkg/core/llm"
	"value_copilot/pkg/core/store"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, copilot.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, copilot.ErrInvalidInput),
		errors.Is(err, copilot.ErrEmptyDocument),
		errors.Is(err, ingest.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, copilot.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fail logs server-side failures and writes the mapped error.
func Fail(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	Error(w, status, err.Error())
}

// Download writes body as an attachment.
func Download(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
