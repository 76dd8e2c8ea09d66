package sync

import (
	"context"

	"homeboard/internal/api"
	"homeboard/internal/model"
)

// RefreshMealPlan loads the assignments for [start, end] and replaces
// the meal store wholesale.
func (s *Syncer) RefreshMealPlan(ctx context.Context, start, end string) error {
	meals, err := s.client.MealWeek(ctx, start, end)
	if err != nil {
		return s.fail(err)
	}
	s.Meals.ReplaceAll(meals)
	return nil
}

func (s *Syncer) RefreshRecipes(ctx context.Context) error {
	recipes, err := s.client.ListRecipes(ctx)
	if err != nil {
		return s.fail(err)
	}
	s.Recipes.ReplaceAll(recipes)
	return nil
}

// MealAt returns the mirrored assignment occupying the slot, if any.
func (s *Syncer) MealAt(date string, slot model.MealSlot) (model.MealAssignment, bool) {
	for _, m := range s.Meals.List() {
		if m.Date == date && m.Slot == slot {
			return m, true
		}
	}
	return model.MealAssignment{}, false
}

// CreateRecipe adds a recipe optimistically.
func (s *Syncer) CreateRecipe(ctx context.Context, params api.RecipeParams) (*model.Recipe, error) {
	provisional := model.Recipe{
		Name:         params.Name,
		PrepMinutes:  params.PrepMinutes,
		Calories:     params.Calories,
		Ingredients:  params.Ingredients,
		Instructions: params.Instructions,
		Tags:         params.Tags,
		Allergens:    params.Allergens,
		Rating:       params.Rating,
	}

	recipe, err := s.recipeCoord.SubmitCreate(ctx, provisional, func(ctx context.Context) (model.Recipe, error) {
		created, err := s.client.CreateRecipe(ctx, params)
		if err != nil {
			return model.Recipe{}, err
		}
		return *created, nil
	})
	if err != nil {
		return nil, s.fail(err)
	}
	return &recipe, nil
}

// EditRecipe updates a recipe optimistically.
func (s *Syncer) EditRecipe(ctx context.Context, recipeID int64, params api.RecipeParams) (*model.Recipe, error) {
	recipe, err := s.recipeCoord.ApplyAndSubmit(ctx, recipeID,
		func(r model.Recipe) model.Recipe {
			r.Name = params.Name
			r.PrepMinutes = params.PrepMinutes
			r.Calories = params.Calories
			r.Ingredients = params.Ingredients
			r.Instructions = params.Instructions
			r.Tags = params.Tags
			r.Allergens = params.Allergens
			r.Rating = params.Rating
			return r
		},
		func(ctx context.Context) (model.Recipe, error) {
			updated, err := s.client.UpdateRecipe(ctx, recipeID, params)
			if err != nil {
				return model.Recipe{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		return nil, s.fail(err)
	}
	return &recipe, nil
}

// DeleteRecipe removes a recipe optimistically. Assignments pointing at
// the recipe go away with it on the server, so the local mirror is
// pruned the same way once the delete commits.
func (s *Syncer) DeleteRecipe(ctx context.Context, recipeID int64) error {
	err := s.recipeCoord.SubmitDelete(ctx, recipeID, func(ctx context.Context) error {
		return s.client.DeleteRecipe(ctx, recipeID)
	})
	if err != nil {
		return s.fail(err)
	}
	for _, m := range s.Meals.List() {
		if m.RecipeID == recipeID {
			s.Meals.Delete(m.ID)
		}
	}
	return nil
}

// AssignMeal pins a recipe to the slot optimistically. An occupied slot
// is treated as an edit of the existing assignment; an empty one as a
// create.
func (s *Syncer) AssignMeal(ctx context.Context, date string, slot model.MealSlot, recipe model.Recipe) (*model.MealAssignment, error) {
	call := func(ctx context.Context) (model.MealAssignment, error) {
		assigned, err := s.client.AssignMeal(ctx, date, slot, recipe.ID)
		if err != nil {
			return model.MealAssignment{}, err
		}
		return *assigned, nil
	}

	if current, ok := s.MealAt(date, slot); ok {
		meal, err := s.mealCoord.ApplyAndSubmit(ctx, current.ID,
			func(m model.MealAssignment) model.MealAssignment {
				m.RecipeID = recipe.ID
				m.RecipeName = recipe.Name
				return m
			},
			call,
		)
		if err != nil {
			return nil, s.fail(err)
		}
		return &meal, nil
	}

	provisional := model.MealAssignment{
		Date:       date,
		Slot:       slot,
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
	}
	meal, err := s.mealCoord.SubmitCreate(ctx, provisional, call)
	if err != nil {
		return nil, s.fail(err)
	}
	return &meal, nil
}

// ClearMeal empties the slot optimistically.
func (s *Syncer) ClearMeal(ctx context.Context, date string, slot model.MealSlot) error {
	current, ok := s.MealAt(date, slot)
	if !ok {
		return nil
	}
	err := s.mealCoord.SubmitDelete(ctx, current.ID, func(ctx context.Context) error {
		return s.client.ClearMeal(ctx, date, slot)
	})
	return s.fail(err)
}
