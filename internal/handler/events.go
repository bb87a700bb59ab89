package handler

import (
	"net/http"
	"time"

	"github.com/osse101/FateProtocol_Go/internal/eventlog"
)

// EventLogHandler serves the settlement event journal
type EventLogHandler struct {
	journal eventlog.Service
}

// NewEventLogHandler creates an EventLogHandler
func NewEventLogHandler(journal eventlog.Service) *EventLogHandler {
	return &EventLogHandler{journal: journal}
}

// HandleListEvents pages through journaled events, newest first
// @Summary List journaled events
// @Tags admin
// @Produce json
// @Param type query string false "Event type, e.g. match.resolved"
// @Param subject query string false "Match or proposal ID"
// @Param since query string false "RFC 3339 lower bound"
// @Param until query string false "RFC 3339 upper bound"
// @Param limit query int false "Page size"
// @Success 200 {array} eventlog.Event
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/admin/events [get]
func (h *EventLogHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	filter := eventlog.EventFilter{
		EventType: optionalQuery(r, "type"),
		SubjectID: optionalQuery(r, "subject"),
		Limit:     limit,
	}
	if filter.Since, ok = parseTimeQuery(w, r, "since"); !ok {
		return
	}
	if filter.Until, ok = parseTimeQuery(w, r, "until"); !ok {
		return
	}

	events, err := h.journal.ListEvents(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, "List events", err)
		return
	}
	if events == nil {
		events = []eventlog.Event{}
	}
	respondJSON(w, http.StatusOK, events)
}

func optionalQuery(r *http.Request, name string) *string {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	return &v
}

// parseTimeQuery reads an optional RFC 3339 query parameter. On failure the 400 response is already written.
func parseTimeQuery(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidTimestamp)
		return nil, false
	}
	return &ts, true
}
