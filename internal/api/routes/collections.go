package routes

import (
	"github.com/go-chi/chi/v5"

	collectionshandlers "Gamedex/internal/api/handlers/collections"
	collectionsCore "Gamedex/internal/core/collections"
)

// RegisterCollectionRoutes registers the wishlist/vault CRUD endpoints.
// All of them require the session middleware to have assigned a visitor
// id; items are scoped to that id.
func RegisterCollectionRoutes(r chi.Router, service collectionsCore.Service) {
	h := collectionshandlers.NewHandler(service)

	r.Route("/api/collections", func(r chi.Router) {
		r.Get("/{list}", h.HandleList)
		r.Post("/{list}", h.HandleAdd)
		r.Put("/{list}/order", h.HandleReorder)
		r.Delete("/{list}/{gameID}", h.HandleRemove)
		r.Post("/{list}/{gameID}/move", h.HandleMove)
	})
}
