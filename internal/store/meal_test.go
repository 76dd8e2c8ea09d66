package store

import (
	"database/sql"
	"testing"

	"homeboard/internal/model"
)

func seedRecipe(t *testing.T, db *sql.DB, userID int64, name string) *model.Recipe {
	t.Helper()
	recipe, err := NewRecipeStore(db).Create(userID, model.Recipe{
		Name:        name,
		PrepMinutes: 30,
		Ingredients: []string{"pasta", "tomatoes"},
		Tags:        []string{"dinner", "quick"},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	return recipe
}

func TestRecipeListColumns(t *testing.T) {
	db := testDB(t)
	userID, _ := seedFamily(t, db)

	recipes := NewRecipeStore(db)
	created := seedRecipe(t, db, userID, "Spaghetti")

	got, err := recipes.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if len(got.Ingredients) != 2 || got.Ingredients[0] != "pasta" {
		t.Errorf("ingredients = %v, want [pasta tomatoes]", got.Ingredients)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "quick" {
		t.Errorf("tags = %v, want [dinner quick]", got.Tags)
	}
	if got.Allergens != nil {
		t.Errorf("allergens = %v, want none", got.Allergens)
	}
}

func TestRecipeOwnership(t *testing.T) {
	db := testDB(t)
	userID, _ := seedFamily(t, db)
	other, err := NewUserStore(db).Create("other@example.com", "Alex", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	recipes := NewRecipeStore(db)
	recipe := seedRecipe(t, db, userID, "Spaghetti")

	got, err := recipes.GetOwned(other.ID, recipe.ID)
	if err != nil {
		t.Fatalf("get owned: %v", err)
	}
	if got != nil {
		t.Error("recipe visible to another account")
	}
}

func TestMealAssignReplacesSlot(t *testing.T) {
	db := testDB(t)
	userID, _ := seedFamily(t, db)

	meals := NewMealStore(db)
	first := seedRecipe(t, db, userID, "Spaghetti")
	second := seedRecipe(t, db, userID, "Tacos")

	assigned, err := meals.Assign(userID, "2026-09-07", model.SlotDinner, first.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.RecipeName != "Spaghetti" {
		t.Errorf("recipe name = %q, want Spaghetti", assigned.RecipeName)
	}

	replaced, err := meals.Assign(userID, "2026-09-07", model.SlotDinner, second.ID)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if replaced.RecipeName != "Tacos" {
		t.Errorf("recipe name = %q, want Tacos", replaced.RecipeName)
	}

	week, err := meals.ListRange(userID, "2026-09-07", "2026-09-13")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(week) != 1 {
		t.Fatalf("assignments = %d, want 1; replacing a slot must not add a row", len(week))
	}
}

func TestMealClear(t *testing.T) {
	db := testDB(t)
	userID, _ := seedFamily(t, db)

	meals := NewMealStore(db)
	recipe := seedRecipe(t, db, userID, "Spaghetti")

	if _, err := meals.Assign(userID, "2026-09-07", model.SlotLunch, recipe.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := meals.Clear(userID, "2026-09-07", model.SlotLunch); err != nil {
		t.Fatalf("clear: %v", err)
	}

	slot, err := meals.GetSlot(userID, "2026-09-07", model.SlotLunch)
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	if slot != nil {
		t.Errorf("slot = %+v, want empty", slot)
	}

	// Clearing an empty slot is a no-op.
	if err := meals.Clear(userID, "2026-09-07", model.SlotLunch); err != nil {
		t.Fatalf("clear empty slot: %v", err)
	}
}

func TestRecipeDeleteClearsPlan(t *testing.T) {
	db := testDB(t)
	userID, _ := seedFamily(t, db)

	recipes := NewRecipeStore(db)
	meals := NewMealStore(db)
	recipe := seedRecipe(t, db, userID, "Spaghetti")

	if _, err := meals.Assign(userID, "2026-09-07", model.SlotDinner, recipe.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := recipes.Delete(recipe.ID); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}

	slot, err := meals.GetSlot(userID, "2026-09-07", model.SlotDinner)
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	if slot != nil {
		t.Errorf("slot = %+v, want cleared by recipe delete", slot)
	}
}
