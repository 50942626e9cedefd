package server

import (
	"encoding/json"
	"net/http"

	"tunemart/apperr"
	"tunemart/logger"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{
		Success: status < 400,
		Message: message,
		Data:    data,
	})
}

// writeError is the single place typed service errors become HTTP status
// codes. Unexpected failures get a generic message; the detail stays in
// the log, never in the response body.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, err.Error(), nil)
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, err.Error(), nil)
	case apperr.IsUnauthorized(err):
		writeJSON(w, http.StatusForbidden, err.Error(), nil)
	case apperr.IsStorage(err):
		log.Error("storage failure", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, "A storage error occurred. Please try again later.", nil)
	default:
		log.Error("unexpected failure", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, "An unexpected error occurred.", nil)
	}
}
