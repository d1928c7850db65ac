package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/neighborly/engage/internal/httputil"
	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/service"
	"github.com/neighborly/engage/internal/transport/http/middleware"
	"github.com/neighborly/engage/internal/validation"
)

type CommentHandler struct {
	commentService *service.CommentService
	validator      *validation.Validator
}

func NewCommentHandler(commentService *service.CommentService, validator *validation.Validator) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		validator:      validator,
	}
}

// Create handles POST /targets/{kind}/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	ref, err := model.ParseRef(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Create comment", err)
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.commentService.Create(r.Context(), actor, ref, req)
	if err != nil {
		writeServiceError(w, "Create comment", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}

// Edit handles PATCH /comments/{id}
func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
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

	var req model.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	comment, err := h.commentService.Edit(r.Context(), actor, commentID, req)
	if err != nil {
		writeServiceError(w, "Edit comment", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// Delete handles DELETE /comments/{id}
// Cascades to the comment's direct replies.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.commentService.Delete(r.Context(), actor, commentID)
	if err != nil {
		writeServiceError(w, "Delete comment", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Thread handles GET /targets/{kind}/{id}/comments
// Query params: cursor, limit.
func (h *CommentHandler) Thread(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	ref, err := model.ParseRef(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Fetch thread", err)
		return
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	thread, err := h.commentService.Thread(r.Context(), actor, ref, cursor, limit)
	if err != nil {
		writeServiceError(w, "Fetch thread", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, thread)
}
