package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chapel-lang/github-email-notifications/internal/errors"
	"github.com/chapel-lang/github-email-notifications/internal/models"
)

// writeAck writes a plain-text acknowledgement with status 200
func (h *Handler) writeAck(w http.ResponseWriter, ack string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, ack)
}

// writeJSON writes a JSON response with the given status code
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("Failed to encode JSON response", err)
	}
}

// writeAppError writes an application error response
func (h *Handler) writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	response := &models.ErrorResponse{
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		Details: appErr.Details,
	}

	// Log the error for internal monitoring
	h.log.With("error_code", appErr.Code).
		With("status_code", appErr.StatusCode).
		Error(appErr.Message, appErr.Err)

	h.writeJSON(w, response, appErr.StatusCode)
}
