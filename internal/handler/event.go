package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"homeboard/internal/auth"
	"homeboard/internal/events"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

type EventHandler struct {
	eventStore *store.EventStore
	hub        *events.Hub
}

func NewEventHandler(es *store.EventStore, hub *events.Hub) *EventHandler {
	return &EventHandler{eventStore: es, hub: hub}
}

func (h *EventHandler) notify(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(userID, events.EntityEvent, action, id)
	}
}

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Category    string `json:"category"`
}

func (req *eventRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return "date must be YYYY-MM-DD"
	}
	if req.Category == "" {
		req.Category = string(model.CategoryOther)
	}
	if !model.ValidCategory(model.EventCategory(req.Category)) {
		return "invalid category"
	}
	return ""
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userID := auth.UserID(r.Context())
	event, err := h.eventStore.Create(userID, req.Title, req.Description, req.Date, req.StartTime, req.EndTime, model.EventCategory(req.Category))
	if err != nil {
		slog.Error("creating calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.notify(userID, events.ActionCreated, event.ID)
	writeJSON(w, http.StatusCreated, event)
}

// List returns the account's calendar events, optionally filtered to one
// day with ?date=YYYY-MM-DD.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	list, err := h.eventStore.ListByUser(auth.UserID(r.Context()), date)
	if err != nil {
		slog.Error("listing calendar events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// owned loads the event and checks it belongs to the requesting account.
func (h *EventHandler) owned(w http.ResponseWriter, r *http.Request) *model.Event {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	event, err := h.eventStore.GetByID(id)
	if err != nil {
		slog.Error("fetching calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch event")
		return nil
	}
	if event == nil || event.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "event not found")
		return nil
	}
	return event
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	event := h.owned(w, r)
	if event == nil {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.eventStore.Update(event.ID, req.Title, req.Description, req.Date, req.StartTime, req.EndTime, model.EventCategory(req.Category))
	if err != nil {
		slog.Error("updating calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionUpdated, updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	event := h.owned(w, r)
	if event == nil {
		return
	}

	if err := h.eventStore.Delete(event.ID); err != nil {
		slog.Error("deleting calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionDeleted, event.ID)
	w.WriteHeader(http.StatusNoContent)
}
