package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/neighborly/engage/internal/httputil"
	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/service"
	"github.com/neighborly/engage/internal/transport/http/middleware"
	"github.com/neighborly/engage/internal/validation"
)

type ReactionHandler struct {
	reactionService *service.ReactionService
	validator       *validation.Validator
}

func NewReactionHandler(reactionService *service.ReactionService, validator *validation.Validator) *ReactionHandler {
	return &ReactionHandler{
		reactionService: reactionService,
		validator:       validator,
	}
}

// Toggle handles POST /targets/{kind}/{id}/reaction
// Flips the authenticated user's reaction and returns {liked, count}.
func (h *ReactionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	ref, err := model.ParseRef(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Toggle reaction", err)
		return
	}

	result, err := h.reactionService.Toggle(r.Context(), actor, ref)
	if err != nil {
		writeServiceError(w, "Toggle reaction", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Liked handles GET /targets/{kind}/liked?ids=1,2,3
// Batch lookup of the viewer's reaction state, for hydrating list views.
func (h *ReactionHandler) Liked(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	kind, err := model.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeServiceError(w, "Check liked", err)
		return
	}

	raw := r.URL.Query().Get("ids")
	if raw == "" {
		httputil.WriteBadRequest(w, "Missing ids query parameter")
		return
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			httputil.WriteBadRequest(w, "Invalid target ID in ids")
			return
		}
		ids = append(ids, id)
	}

	result, err := h.reactionService.Liked(r.Context(), actor, kind, ids)
	if err != nil {
		writeServiceError(w, "Check liked", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// ToggleCommentReaction handles POST /comments/{id}/reactions
// Flips one emoji and returns the full per-emoji map.
func (h *ReactionHandler) ToggleCommentReaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	var req model.ToggleCommentReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.reactionService.ToggleCommentReaction(r.Context(), actor, commentID, req.Emoji)
	if err != nil {
		writeServiceError(w, "Toggle comment reaction", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
