package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"homeboard/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// List-valued recipe columns are stored as JSON arrays in TEXT columns.
func packList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func unpackList(s string) ([]string, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode list column: %w", err)
	}
	return out, nil
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var ingredients, tags, allergens string

	err := scanner.Scan(
		&r.ID, &r.UserID, &r.Name, &r.PrepMinutes, &r.Calories,
		&ingredients, &r.Instructions, &tags, &allergens, &r.Rating,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if r.Ingredients, err = unpackList(ingredients); err != nil {
		return nil, err
	}
	if r.Tags, err = unpackList(tags); err != nil {
		return nil, err
	}
	if r.Allergens, err = unpackList(allergens); err != nil {
		return nil, err
	}
	return &r, nil
}

const recipeCols = `id, user_id, name, prep_minutes, calories, ingredients, instructions, tags, allergens, rating, created_at, updated_at`

func (s *RecipeStore) Create(userID int64, r model.Recipe) (*model.Recipe, error) {
	result, err := s.db.Exec(
		`INSERT INTO recipes (user_id, name, prep_minutes, calories, ingredients, instructions, tags, allergens, rating) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, r.Name, r.PrepMinutes, r.Calories,
		packList(r.Ingredients), r.Instructions, packList(r.Tags), packList(r.Allergens), r.Rating,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecipeStore) GetByID(id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

// GetOwned returns the recipe only when it belongs to the account.
func (s *RecipeStore) GetOwned(userID, id int64) (*model.Recipe, error) {
	r, err := s.GetByID(id)
	if err != nil || r == nil {
		return r, err
	}
	if r.UserID != userID {
		return nil, nil
	}
	return r, nil
}

func (s *RecipeStore) ListByUser(userID int64) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE user_id = ? ORDER BY name ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

func (s *RecipeStore) Update(id int64, r model.Recipe) (*model.Recipe, error) {
	_, err := s.db.Exec(
		`UPDATE recipes SET name = ?, prep_minutes = ?, calories = ?, ingredients = ?, instructions = ?, tags = ?, allergens = ?, rating = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		r.Name, r.PrepMinutes, r.Calories,
		packList(r.Ingredients), r.Instructions, packList(r.Tags), packList(r.Allergens), r.Rating, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the recipe; meal assignments referencing it cascade
// away with it.
func (s *RecipeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}
