package store

import (
	"database/sql"
	"fmt"

	"homeboard/internal/model"
)

type MealStore struct {
	db *sql.DB
}

func NewMealStore(db *sql.DB) *MealStore {
	return &MealStore{db: db}
}

func scanMeal(scanner interface{ Scan(...any) error }) (*model.MealAssignment, error) {
	var m model.MealAssignment
	err := scanner.Scan(
		&m.ID, &m.UserID, &m.Date, &m.Slot, &m.RecipeID, &m.RecipeName,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const mealCols = `m.id, m.user_id, m.date, m.slot, m.recipe_id, r.name, m.created_at, m.updated_at`

// Assign pins a recipe to the slot, replacing whatever was there. The
// unique index on (user_id, date, slot) makes this an upsert.
func (s *MealStore) Assign(userID int64, date string, slot model.MealSlot, recipeID int64) (*model.MealAssignment, error) {
	_, err := s.db.Exec(
		`INSERT INTO meal_assignments (user_id, date, slot, recipe_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, date, slot) DO UPDATE SET recipe_id = excluded.recipe_id, updated_at = CURRENT_TIMESTAMP`,
		userID, date, slot, recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("assign meal: %w", err)
	}
	return s.GetSlot(userID, date, slot)
}

func (s *MealStore) GetSlot(userID int64, date string, slot model.MealSlot) (*model.MealAssignment, error) {
	row := s.db.QueryRow(
		`SELECT `+mealCols+` FROM meal_assignments m JOIN recipes r ON r.id = m.recipe_id
		 WHERE m.user_id = ? AND m.date = ? AND m.slot = ?`,
		userID, date, slot,
	)
	m, err := scanMeal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal assignment: %w", err)
	}
	return m, nil
}

// Clear empties the slot. Clearing an already-empty slot is a no-op.
func (s *MealStore) Clear(userID int64, date string, slot model.MealSlot) error {
	_, err := s.db.Exec(
		`DELETE FROM meal_assignments WHERE user_id = ? AND date = ? AND slot = ?`,
		userID, date, slot,
	)
	if err != nil {
		return fmt.Errorf("clear meal slot: %w", err)
	}
	return nil
}

// ListRange returns the account's assignments with dates in [start, end],
// ordered by date. Dates are YYYY-MM-DD so string comparison is date
// comparison.
func (s *MealStore) ListRange(userID int64, start, end string) ([]model.MealAssignment, error) {
	rows, err := s.db.Query(
		`SELECT `+mealCols+` FROM meal_assignments m JOIN recipes r ON r.id = m.recipe_id
		 WHERE m.user_id = ? AND m.date >= ? AND m.date <= ? ORDER BY m.date ASC, m.slot ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list meal assignments: %w", err)
	}
	defer rows.Close()

	var meals []model.MealAssignment
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal assignment: %w", err)
		}
		meals = append(meals, *m)
	}
	return meals, rows.Err()
}
