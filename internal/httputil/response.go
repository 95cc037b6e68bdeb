// Package httputil writes JSON responses for the operational HTTP endpoints.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type errorMapping struct {
	sentinel error
	status   int
	code     string
	message  string
}

// errorMappings is checked in order. An empty message echoes the error text, which is
// only done for input validation failures.
var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "Access denied"},
	{apperrors.ErrRateLimitExceeded, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests"},
}

var internalError = ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}

// MakeJSONResponse writes body as JSON with statusCode.
func MakeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// HandleError logs err and writes the matching status. Anything unrecognised becomes a
// 500 whose body says nothing about the cause.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status, body := classify(err)
	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}
	MakeJSONResponse(w, status, body)
}

func classify(err error) (int, ErrorResponse) {
	for _, m := range errorMappings {
		if !apperrors.Is(err, m.sentinel) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return m.status, ErrorResponse{Error: m.code, Message: message}
	}
	return http.StatusInternalServerError, internalError
}
