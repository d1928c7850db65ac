package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/neighborly/engage/internal/httputil"
	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/service"
	"github.com/neighborly/engage/internal/transport/http/middleware"
)

type ShareHandler struct {
	shareService *service.ShareService
}

func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// Share handles POST /targets/{kind}/{id}/shares
func (h *ShareHandler) Share(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	ref, err := model.ParseRef(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Share", err)
		return
	}

	share, err := h.shareService.Share(r.Context(), actor, ref)
	if err != nil {
		writeServiceError(w, "Share", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, share)
}

// Delete handles DELETE /shares/{id}
func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	shareID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid share ID")
		return
	}

	if err := h.shareService.Delete(r.Context(), actor, shareID); err != nil {
		writeServiceError(w, "Delete share", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Share deleted"})
}

// ListMine handles GET /shares
func (h *ShareHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	result, err := h.shareService.ListMine(r.Context(), actor, limit)
	if err != nil {
		writeServiceError(w, "List shares", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
