package collections

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Gamedex/internal/api/middleware"
	"Gamedex/internal/core/collections"
)

// Handler serves the wishlist/vault CRUD endpoints. The user identity
// comes from the session middleware; there is no cross-user access.
type Handler struct {
	service collections.Service
}

// NewHandler creates a new collections handler
func NewHandler(service collections.Service) *Handler {
	return &Handler{service: service}
}

// moveRequest is the body for moving a game between lists.
type moveRequest struct {
	To collections.List `json:"to"`
}

// reorderRequest is the body for rewriting a list's order.
type reorderRequest struct {
	Order []int64 `json:"order"`
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) string {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "no session")
	}
	return userID
}

func listParam(r *http.Request) collections.List {
	return collections.List(chi.URLParam(r, "list"))
}

// HandleList handles GET /api/collections/{list}
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := h.requireUser(w, r)
	if userID == "" {
		return
	}

	items, err := h.service.ListItems(r.Context(), userID, listParam(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// HandleAdd handles POST /api/collections/{list}
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID := h.requireUser(w, r)
	if userID == "" {
		return
	}

	var req collections.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "request body must be valid JSON")
		return
	}

	item, err := h.service.Add(r.Context(), userID, listParam(r), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// HandleRemove handles DELETE /api/collections/{list}/{gameID}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID := h.requireUser(w, r)
	if userID == "" {
		return
	}

	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "gameID must be an integer")
		return
	}

	if err := h.service.Remove(r.Context(), userID, listParam(r), gameID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMove handles POST /api/collections/{list}/{gameID}/move
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	userID := h.requireUser(w, r)
	if userID == "" {
		return
	}

	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "gameID must be an integer")
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "request body must be valid JSON")
		return
	}

	if err := h.service.Move(r.Context(), userID, listParam(r), req.To, gameID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleReorder handles PUT /api/collections/{list}/order
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	userID := h.requireUser(w, r)
	if userID == "" {
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "request body must be valid JSON")
		return
	}

	if err := h.service.Reorder(r.Context(), userID, listParam(r), req.Order); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("[COLLECTIONS] failed to encode response", "error", err)
	}
}
