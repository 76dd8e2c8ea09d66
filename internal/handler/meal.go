package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"homeboard/internal/auth"
	"homeboard/internal/events"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

type MealHandler struct {
	mealStore   *store.MealStore
	recipeStore *store.RecipeStore
	hub         *events.Hub
}

func NewMealHandler(ms *store.MealStore, rs *store.RecipeStore, hub *events.Hub) *MealHandler {
	return &MealHandler{mealStore: ms, recipeStore: rs, hub: hub}
}

func (h *MealHandler) notify(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(userID, events.EntityMeal, action, id)
	}
}

// Week returns the account's meal assignments with dates in
// [start, end]. Both bounds are required.
func (h *MealHandler) Week(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	for _, d := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			writeError(w, http.StatusBadRequest, "start and end must be YYYY-MM-DD")
			return
		}
	}

	list, err := h.mealStore.ListRange(auth.UserID(r.Context()), start, end)
	if err != nil {
		slog.Error("listing meal assignments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list meal plan")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type mealRequest struct {
	Slot     string `json:"slot"`
	RecipeID int64  `json:"recipe_id"`
}

// Assign sets or clears one slot of the day named in the path. A zero
// recipe_id clears the slot; any other value must name a recipe the
// account owns.
func (h *MealHandler) Assign(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	var req mealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	slot := model.MealSlot(req.Slot)
	if !model.ValidSlot(slot) {
		writeError(w, http.StatusBadRequest, "invalid slot")
		return
	}

	userID := auth.UserID(r.Context())

	if req.RecipeID == 0 {
		prev, err := h.mealStore.GetSlot(userID, date, slot)
		if err != nil {
			slog.Error("fetching meal assignment", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to clear meal slot")
			return
		}
		if err := h.mealStore.Clear(userID, date, slot); err != nil {
			slog.Error("clearing meal slot", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to clear meal slot")
			return
		}
		if prev != nil {
			h.notify(userID, events.ActionDeleted, prev.ID)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	recipe, err := h.recipeStore.GetOwned(userID, req.RecipeID)
	if err != nil {
		slog.Error("fetching recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assign meal")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	meal, err := h.mealStore.Assign(userID, date, slot, recipe.ID)
	if err != nil {
		slog.Error("assigning meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assign meal")
		return
	}

	h.notify(userID, events.ActionUpdated, meal.ID)
	writeJSON(w, http.StatusOK, meal)
}
