package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"homeboard/internal/auth"
	"homeboard/internal/events"
	"homeboard/internal/store"
)

type ChildHandler struct {
	childStore *store.ChildStore
	hub        *events.Hub
}

func NewChildHandler(cs *store.ChildStore, hub *events.Hub) *ChildHandler {
	return &ChildHandler{childStore: cs, hub: hub}
}

func (h *ChildHandler) notify(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(userID, events.EntityChild, action, id)
	}
}

type childRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	Grade       string `json:"grade"`
	AvatarURL   string `json:"avatar_url"`
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	userID := auth.UserID(r.Context())
	child, err := h.childStore.Create(userID, req.Name, req.DateOfBirth, req.Grade, req.AvatarURL)
	if err != nil {
		slog.Error("creating child profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create child profile")
		return
	}

	h.notify(userID, events.ActionCreated, child.ID)
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	children, err := h.childStore.ListByUser(userID)
	if err != nil {
		slog.Error("listing child profiles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list child profiles")
		return
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	child, err := h.childStore.GetOwned(auth.UserID(r.Context()), id)
	if err != nil {
		slog.Error("fetching child profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch child profile")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	userID := auth.UserID(r.Context())
	existing, err := h.childStore.GetOwned(userID, id)
	if err != nil {
		slog.Error("fetching child profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update child profile")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	child, err := h.childStore.Update(id, req.Name, req.DateOfBirth, req.Grade, req.AvatarURL)
	if err != nil {
		slog.Error("updating child profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update child profile")
		return
	}

	h.notify(userID, events.ActionUpdated, child.ID)
	writeJSON(w, http.StatusOK, child)
}
