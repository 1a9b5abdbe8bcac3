package games

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Gamedex/internal/core/games"
)

// apiError is the structured error body returned to clients.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(apiError{Error: errorType, Message: message}); err != nil {
		slog.Error("[GAMES] failed to encode error response", "error", err)
	}
}

// handleServiceError maps gateway errors to HTTP responses. Upstream
// status codes are kept in the message for operability, but internal
// details never leak to clients.
func handleServiceError(w http.ResponseWriter, err error) {
	var upstreamErr *games.UpstreamError

	switch {
	case games.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	case errors.As(err, &upstreamErr):
		if upstreamErr.Status == http.StatusTooManyRequests {
			writeError(w, http.StatusTooManyRequests, "UpstreamRateLimited",
				"the game database is rate limiting requests, try again shortly")
			return
		}
		slog.Error("[GAMES] upstream error", "status", upstreamErr.Status)
		writeError(w, http.StatusBadGateway, "UpstreamError", upstreamErr.Error())

	case errors.Is(err, games.ErrCredentialsMissing):
		slog.Error("[GAMES] upstream credentials are not configured")
		writeError(w, http.StatusBadGateway, "UpstreamUnavailable", "the catalog is not available right now")

	default:
		var tokenErr *games.TokenRequestError
		if errors.As(err, &tokenErr) {
			slog.Error("[GAMES] token exchange rejected", "status", tokenErr.Status)
			writeError(w, http.StatusBadGateway, "UpstreamUnavailable", "the catalog is not available right now")
			return
		}
		slog.Error("[GAMES] gateway error", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "an error occurred while querying the catalog")
	}
}
