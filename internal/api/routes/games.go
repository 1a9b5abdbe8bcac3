package routes

import (
	"github.com/go-chi/chi/v5"

	gameshandlers "Gamedex/internal/api/handlers/games"
	gamesCore "Gamedex/internal/core/games"
)

// RegisterGameRoutes registers the catalog query endpoint.
//
// POST /api/games takes a tagged request ({"mode": "search", ...}) and
// returns normalized catalog data. All upstream access (rate limiting,
// retries, token refresh, caching) happens inside the gateway service;
// this route is the only door to it.
func RegisterGameRoutes(r chi.Router, service gamesCore.Service) {
	h := gameshandlers.NewHandler(service)

	r.Post("/api/games", h.HandleQuery)
}
