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

type AttendanceHandler struct {
	attendanceService *service.AttendanceService
	validator         *validation.Validator
}

func NewAttendanceHandler(attendanceService *service.AttendanceService, validator *validation.Validator) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		validator:         validator,
	}
}

// SetStatus handles PUT /events/{id}/attendance
// A null status in the body (or repeating the current status) cancels
// the RSVP.
func (h *AttendanceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid event ID")
		return
	}

	var req model.SetAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.attendanceService.SetStatus(r.Context(), actor, eventID, req.Status)
	if err != nil {
		writeServiceError(w, "Set attendance", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetStatus handles GET /events/{id}/attendance
// Returns the viewer's own RSVP, status "none" when they hold no row.
func (h *AttendanceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid event ID")
		return
	}

	result, err := h.attendanceService.GetStatus(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, "Get attendance", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// CheckIn handles POST /events/{id}/checkins
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid event ID")
		return
	}

	var req model.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.attendanceService.CheckIn(r.Context(), actor, eventID, req.AttendeeID)
	if err != nil {
		writeServiceError(w, "Check in", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// ListCheckIns handles GET /events/{id}/checkins
func (h *AttendanceHandler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid event ID")
		return
	}

	result, err := h.attendanceService.ListCheckIns(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, "List checkins", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
