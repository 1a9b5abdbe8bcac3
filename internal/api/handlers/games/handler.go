package games

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"Gamedex/internal/core/games"
)

// Cache-Control directives per query mode. Live queries are never
// cached at the edge; taxonomy and single-entity reads are long-lived;
// trending is served slightly stale while revalidating.
const (
	cacheNoStore   = "no-store"
	cacheTaxonomy  = "public, s-maxage=86400"
	cacheLongLived = "public, s-maxage=3600"
	cacheTrending  = "public, s-maxage=60, stale-while-revalidate=120"
)

// queryRequest is the tagged request shape accepted by the catalog
// endpoint. Exactly one mode per request; the other fields are
// interpreted per mode.
type queryRequest struct {
	Mode     string                `json:"mode"`
	Term     string                `json:"term,omitempty"`
	Limit    int                   `json:"limit,omitempty"`
	Offset   int                   `json:"offset,omitempty"`
	ID       int64                 `json:"id,omitempty"`
	IDs      []int64               `json:"ids,omitempty"`
	Resource string                `json:"resource,omitempty"`
	Body     string                `json:"body,omitempty"`
	Filters  games.DiscoverFilters `json:"filters,omitempty"`
	Sort     string                `json:"sort,omitempty"`
}

// Handler dispatches tagged catalog queries to the gateway service.
type Handler struct {
	service games.Service
}

// NewHandler creates a new catalog query handler
func NewHandler(service games.Service) *Handler {
	return &Handler{service: service}
}

// HandleQuery handles POST /api/games
// The request body selects one query mode; the response is a normalized
// game record, a list of them, or null for a missing entity.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "request body must be valid JSON")
		return
	}

	switch req.Mode {
	case "search":
		list, err := h.service.Search(ctx, req.Term, req.Limit, req.Offset)
		h.respondList(w, list, cacheNoStore, err)

	case "trending":
		list, err := h.service.Trending(ctx, req.Limit, req.Offset)
		h.respondList(w, list, cacheTrending, err)

	case "discover":
		list, err := h.service.Discover(ctx, games.DiscoverRequest{
			Filters: req.Filters,
			Sort:    req.Sort,
			Limit:   req.Limit,
			Offset:  req.Offset,
		})
		h.respondList(w, list, cacheNoStore, err)

	case "taxonomy":
		entries, err := h.service.Taxonomy(ctx, req.Resource)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, cacheTaxonomy, entries)

	case "detail":
		game, err := h.service.Detail(ctx, req.ID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if game == nil {
			respondNull(w, cacheLongLived)
			return
		}
		respondJSON(w, http.StatusOK, cacheLongLived, game)

	case "recommend":
		list, err := h.service.Recommend(ctx, req.ID, req.Limit)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if list == nil {
			respondNull(w, cacheLongLived)
			return
		}
		respondJSON(w, http.StatusOK, cacheLongLived, list)

	case "bulk":
		if len(req.IDs) < 1 || len(req.IDs) > 50 {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "ids must contain between 1 and 50 entries")
			return
		}
		list, err := h.service.Bulk(ctx, req.IDs)
		h.respondList(w, list, cacheLongLived, err)

	case "multi":
		raw, err := h.service.MultiQuery(ctx, req.Body)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, cacheNoStore, raw)

	case "":
		writeError(w, http.StatusBadRequest, "InvalidRequest", "mode is required")

	default:
		writeError(w, http.StatusBadRequest, "InvalidRequest", "unknown mode: "+req.Mode)
	}
}

func (h *Handler) respondList(w http.ResponseWriter, list []games.Game, cacheControl string, err error) {
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if list == nil {
		list = []games.Game{}
	}
	respondJSON(w, http.StatusOK, cacheControl, list)
}

func respondJSON(w http.ResponseWriter, status int, cacheControl string, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("[GAMES] failed to encode response", "error", err)
	}
}

// respondNull writes the not-found shape for single-entity modes: a 404
// with a literal null body, which clients treat as "no such game" rather
// than a failure.
func respondNull(w http.ResponseWriter, cacheControl string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("null"))
}
