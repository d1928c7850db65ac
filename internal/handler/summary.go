package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neighborly/engage/internal/httputil"
	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/service"
	"github.com/neighborly/engage/internal/transport/http/middleware"
)

type SummaryHandler struct {
	summaryService *service.SummaryService
}

func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// Get handles GET /targets/{kind}/{id}/summary
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	ref, err := model.ParseRef(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Get summary", err)
		return
	}

	summary, err := h.summaryService.Get(r.Context(), actor, ref)
	if err != nil {
		writeServiceError(w, "Get summary", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summary)
}
