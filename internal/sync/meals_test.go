package sync

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"homeboard/internal/api"
	"homeboard/internal/model"
)

func TestAssignMealSwapsProvisional(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/meals/2026-09-07", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, model.MealAssignment{
			ID: 12, Date: "2026-09-07", Slot: model.SlotDinner,
			RecipeID: 3, RecipeName: "Spaghetti",
		})
	})

	s := newTestSyncer(t, mux)
	s.Recipes.Put(model.Recipe{ID: 3, Name: "Spaghetti"})

	meal, err := s.AssignMeal(context.Background(), "2026-09-07", model.SlotDinner, model.Recipe{ID: 3, Name: "Spaghetti"})
	if err != nil {
		t.Fatalf("AssignMeal: %v", err)
	}
	if meal.ID != 12 {
		t.Errorf("assignment id = %d, want 12", meal.ID)
	}
	if s.Meals.Len() != 1 {
		t.Fatalf("meal store holds %d items, want 1", s.Meals.Len())
	}
	for _, stored := range s.Meals.List() {
		if stored.ID < 0 {
			t.Errorf("provisional id %d survived the assign", stored.ID)
		}
	}
}

func TestAssignMealReplacesOccupiedSlot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/meals/2026-09-07", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, model.MealAssignment{
			ID: 5, Date: "2026-09-07", Slot: model.SlotDinner,
			RecipeID: 4, RecipeName: "Tacos",
		})
	})

	s := newTestSyncer(t, mux)
	s.Meals.Put(model.MealAssignment{
		ID: 5, Date: "2026-09-07", Slot: model.SlotDinner,
		RecipeID: 3, RecipeName: "Spaghetti",
	})

	if _, err := s.AssignMeal(context.Background(), "2026-09-07", model.SlotDinner, model.Recipe{ID: 4, Name: "Tacos"}); err != nil {
		t.Fatalf("AssignMeal: %v", err)
	}
	if s.Meals.Len() != 1 {
		t.Fatalf("meal store holds %d items, want 1; replacing a slot must not add one", s.Meals.Len())
	}
	stored, _ := s.Meals.Get(5)
	if stored.RecipeName != "Tacos" {
		t.Errorf("slot holds %q, want Tacos", stored.RecipeName)
	}
}

func TestAssignMealRollsBackOnRejection(t *testing.T) {
	s := newTestSyncer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]string{"error": "recipe not found"})
	}))
	s.Meals.Put(model.MealAssignment{
		ID: 5, Date: "2026-09-07", Slot: model.SlotDinner,
		RecipeID: 3, RecipeName: "Spaghetti",
	})

	if _, err := s.AssignMeal(context.Background(), "2026-09-07", model.SlotDinner, model.Recipe{ID: 99, Name: "Ghost"}); err == nil {
		t.Fatal("expected assignment to be rejected")
	}
	stored, _ := s.Meals.Get(5)
	if stored.RecipeName != "Spaghetti" {
		t.Errorf("slot holds %q after rollback, want Spaghetti", stored.RecipeName)
	}
}

func TestClearMealRestoresOnRefusal(t *testing.T) {
	s := newTestSyncer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		writeJSON(t, w, map[string]string{"error": "nope"})
	}))
	s.Meals.Put(model.MealAssignment{
		ID: 5, Date: "2026-09-07", Slot: model.SlotLunch,
		RecipeID: 3, RecipeName: "Spaghetti",
	})

	err := s.ClearMeal(context.Background(), "2026-09-07", model.SlotLunch)
	var verr *api.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *api.ValidationError", err)
	}
	if _, ok := s.Meals.Get(5); !ok {
		t.Error("assignment vanished after refused clear")
	}
}

func TestClearEmptySlotIsNoOp(t *testing.T) {
	s := newTestSyncer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request for an empty slot")
	}))

	if err := s.ClearMeal(context.Background(), "2026-09-07", model.SlotBreakfast); err != nil {
		t.Fatalf("ClearMeal: %v", err)
	}
}

func TestDeleteRecipePrunesAssignments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/recipes/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	s := newTestSyncer(t, mux)
	s.Recipes.Put(model.Recipe{ID: 3, Name: "Spaghetti"})
	s.Meals.Put(model.MealAssignment{ID: 5, Date: "2026-09-07", Slot: model.SlotDinner, RecipeID: 3, RecipeName: "Spaghetti"})
	s.Meals.Put(model.MealAssignment{ID: 6, Date: "2026-09-08", Slot: model.SlotLunch, RecipeID: 4, RecipeName: "Tacos"})

	if err := s.DeleteRecipe(context.Background(), 3); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if _, ok := s.Recipes.Get(3); ok {
		t.Error("deleted recipe still in store")
	}
	if _, ok := s.Meals.Get(5); ok {
		t.Error("assignment for the deleted recipe still in store")
	}
	if _, ok := s.Meals.Get(6); !ok {
		t.Error("unrelated assignment pruned")
	}
}
