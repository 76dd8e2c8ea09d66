package model

import "time"

type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
)

// Slots lists the plan's meal slots in serving order.
var Slots = []MealSlot{SlotBreakfast, SlotLunch, SlotDinner}

func ValidSlot(s MealSlot) bool {
	switch s {
	case SlotBreakfast, SlotLunch, SlotDinner:
		return true
	}
	return false
}

// Recipe is an entry in the family recipe library. Ingredient lines are
// free text; the planner never parses them.
type Recipe struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Name         string    `json:"name"`
	PrepMinutes  int       `json:"prep_minutes"`
	Calories     int       `json:"calories"`
	Ingredients  []string  `json:"ingredients"`
	Instructions string    `json:"instructions"`
	Tags         []string  `json:"tags"`
	Allergens    []string  `json:"allergens"`
	Rating       float64   `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MealAssignment pins a recipe to one slot of one day. At most one
// assignment exists per account, date, and slot; assigning over an
// occupied slot replaces it.
type MealAssignment struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Date       string    `json:"date"` // YYYY-MM-DD
	Slot       MealSlot  `json:"slot"`
	RecipeID   int64     `json:"recipe_id"`
	RecipeName string    `json:"recipe_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
