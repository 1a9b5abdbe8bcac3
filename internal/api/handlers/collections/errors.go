package collections

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Gamedex/internal/core/collections"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(apiError{Error: errorType, Message: message}); err != nil {
		slog.Error("[COLLECTIONS] failed to encode error response", "error", err)
	}
}

// handleServiceError maps collection service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case collections.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case errors.Is(err, collections.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "the game is not in this list")
	default:
		slog.Error("[COLLECTIONS] service error", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "an error occurred while updating the collection")
	}
}
