// Package response provides standardized HTTP response formatting for the Inkwell API.
// Every body carries a `success` discriminator plus either `data` or `message`,
// so the client can render a uniform failure state.
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"

	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

// Envelope provides a consistent JSON response structure.
// TotalPages/CurrentPage are set on paginated post listings,
// Count on taxonomy listings; both are omitted elsewhere.
type Envelope struct {
	Success     bool   `json:"success"`
	Data        any    `json:"data,omitempty"`
	Message     string `json:"message,omitempty"`
	Count       int    `json:"count,omitzero"`
	TotalPages  int    `json:"totalPages,omitzero"`
	CurrentPage int    `json:"currentPage,omitzero"`
}

// Write marshals an envelope with the given status code using json/v2.
func Write(w http.ResponseWriter, status int, envelope Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	Write(w, http.StatusOK, Envelope{Success: true, Data: data}, logger)
}

// SuccessMessage writes a 200 OK response carrying only a message.
func SuccessMessage(w http.ResponseWriter, message string, logger *slog.Logger) {
	Write(w, http.StatusOK, Envelope{Success: true, Message: message}, logger)
}

// Created writes a created response (201 Created) with an optional message.
func Created(w http.ResponseWriter, data any, message string, logger *slog.Logger) {
	Write(w, http.StatusCreated, Envelope{Success: true, Data: data, Message: message}, logger)
}

// Paginated writes a paginated post listing.
func Paginated(w http.ResponseWriter, data any, totalPages, currentPage int, logger *slog.Logger) {
	Write(w, http.StatusOK, Envelope{
		Success:     true,
		Data:        data,
		TotalPages:  totalPages,
		CurrentPage: currentPage,
	}, logger)
}

// Counted writes a listing with an item count (taxonomy endpoints).
func Counted(w http.ResponseWriter, data any, count int, logger *slog.Logger) {
	Write(w, http.StatusOK, Envelope{Success: true, Data: data, Count: count}, logger)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	Write(w, status, Envelope{Success: false, Message: message}, logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, message, logger)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusUnauthorized, message, logger)
}

// Forbidden writes a 403 Forbidden response.
func Forbidden(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusForbidden, message, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, message, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, message, logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, message, logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain errors are mapped to their HTTP codes, unknown errors become 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		Error(w, domainErr.HTTPStatus(), domainErr.Message, logger)
		return
	}

	// Unknown error = 500
	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}
