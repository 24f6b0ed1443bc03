// Package respond writes the response envelope used by every service.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
)

// ErrorBody is the error member of the envelope.
type ErrorBody struct {
	Code    string  `json:"code"`
	Details *string `json:"details"`
}

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data"`
	Error   *ErrorBody `json:"error"`
}

// JSON writes payload with status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Success writes a successful envelope.
func Success(w http.ResponseWriter, status int, message string, data any) {
	if message == "" {
		message = "Success"
	}
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Failure writes an error envelope with an explicit code.
func Failure(w http.ResponseWriter, status int, code apperr.Kind, message, details string) {
	body := &ErrorBody{Code: string(code)}
	if details != "" {
		body.Details = &details
	}
	JSON(w, status, Envelope{Success: false, Message: message, Error: body})
}

// Error maps err onto the envelope. Unclassified errors are logged and
// reported as INTERNAL_ERROR without leaking their text.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		Failure(w, appErr.Kind.Status(), appErr.Kind, appErr.Message, appErr.Details)
		return
	}
	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	Failure(w, http.StatusInternalServerError, apperr.KindInternal, "Internal server error", "")
}
