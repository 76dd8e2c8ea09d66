package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"homeboard/internal/auth"
	"homeboard/internal/events"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

type RecipeHandler struct {
	recipeStore *store.RecipeStore
	hub         *events.Hub
}

func NewRecipeHandler(rs *store.RecipeStore, hub *events.Hub) *RecipeHandler {
	return &RecipeHandler{recipeStore: rs, hub: hub}
}

func (h *RecipeHandler) notify(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(userID, events.EntityRecipe, action, id)
	}
}

type recipeRequest struct {
	Name         string   `json:"name"`
	PrepMinutes  int      `json:"prep_minutes"`
	Calories     int      `json:"calories"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Tags         []string `json:"tags"`
	Allergens    []string `json:"allergens"`
	Rating       float64  `json:"rating"`
}

func (req *recipeRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.PrepMinutes < 0 {
		return "prep_minutes must not be negative"
	}
	if req.Calories < 0 {
		return "calories must not be negative"
	}
	if req.Rating < 0 || req.Rating > 5 {
		return "rating must be between 0 and 5"
	}
	return ""
}

func (req *recipeRequest) toModel() model.Recipe {
	return model.Recipe{
		Name:         req.Name,
		PrepMinutes:  req.PrepMinutes,
		Calories:     req.Calories,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Tags:         req.Tags,
		Allergens:    req.Allergens,
		Rating:       req.Rating,
	}
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userID := auth.UserID(r.Context())
	recipe, err := h.recipeStore.Create(userID, req.toModel())
	if err != nil {
		slog.Error("creating recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	h.notify(userID, events.ActionCreated, recipe.ID)
	writeJSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.recipeStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		slog.Error("listing recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// owned loads the recipe and checks it belongs to the requesting account.
func (h *RecipeHandler) owned(w http.ResponseWriter, r *http.Request) *model.Recipe {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	recipe, err := h.recipeStore.GetByID(id)
	if err != nil {
		slog.Error("fetching recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch recipe")
		return nil
	}
	if recipe == nil || recipe.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "recipe not found")
		return nil
	}
	return recipe
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	recipe := h.owned(w, r)
	if recipe == nil {
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.recipeStore.Update(recipe.ID, req.toModel())
	if err != nil {
		slog.Error("updating recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recipe")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionUpdated, updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes the recipe and, through the schema, any meal plan slots
// that pointed at it.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipe := h.owned(w, r)
	if recipe == nil {
		return
	}

	if err := h.recipeStore.Delete(recipe.ID); err != nil {
		slog.Error("deleting recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionDeleted, recipe.ID)
	w.WriteHeader(http.StatusNoContent)
}
