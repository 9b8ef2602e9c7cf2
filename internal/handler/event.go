package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/focusboard/internal/apperror"
	"github.com/sakif/focusboard/internal/service"
)

// EventHandler serves the calendar.
type EventHandler struct {
	events *service.EventService
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(events *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

type createEventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// HandleList returns every event, earliest start first.
//
// HTTP: GET /api/events
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleUpcoming returns events dated today or later.
//
// HTTP: GET /api/events/upcoming?limit=3
// limit defaults to service.DashboardLimit; 0 means no limit.
func (h *EventHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	limit := service.DashboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, h.logger, apperror.ValidationFailed("limit", "limit must be a non-negative number"))
			return
		}
		limit = n
	}

	events, err := h.events.Upcoming(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleMonth returns the calendar header label for the current month.
//
// HTTP: GET /api/events/month
// RESPONSE: {"label":"June 2024"}
func (h *EventHandler) HandleMonth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"label": h.events.MonthLabel()})
}

// HandleCreate adds an event.
//
// HTTP: POST /api/events
// REQUEST BODY: {"title":"Standup","date":"2024-06-17","time":"09:30","location":"","description":""}
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	event, err := h.events.Add(r.Context(), req.Title, req.Date, req.Time, req.Location, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// HandleDelete removes an event.
//
// HTTP: DELETE /api/events/{id}
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
