package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"homeboard/internal/model"
	"homeboard/internal/weather"
)

// AuthResponse is returned by Login and Register.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, email, name, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "name": name, "password": password}
	var out AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChildParams are the writable fields of a child profile.
type ChildParams struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Grade       string `json:"grade,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func (c *Client) ListChildren(ctx context.Context) ([]model.Child, error) {
	var out []model.Child
	if err := c.Do(ctx, http.MethodGet, "/api/children", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateChild(ctx context.Context, params ChildParams) (*model.Child, error) {
	var out model.Child
	if err := c.Do(ctx, http.MethodPost, "/api/children", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateChild(ctx context.Context, id int64, params ChildParams) (*model.Child, error) {
	var out model.Child
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/children/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TaskParams are the fields for creating a task.
type TaskParams struct {
	ChildID    int64   `json:"child_id"`
	Content    string  `json:"content"`
	Priority   string  `json:"priority,omitempty"`
	DueDate    *string `json:"due_date,omitempty"`
	Recurrence string  `json:"recurrence,omitempty"`
}

// TaskPatch is a partial task edit; nil fields are left unchanged.
type TaskPatch struct {
	Content    *string `json:"content,omitempty"`
	Priority   *string `json:"priority,omitempty"`
	DueDate    *string `json:"due_date,omitempty"`
	Recurrence *string `json:"recurrence,omitempty"`
	Status     *string `json:"status,omitempty"`
}

func (c *Client) ListTasks(ctx context.Context, childID int64) ([]model.Task, error) {
	var out []model.Task
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/child-tasks/%d", childID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, params TaskParams) (*model.Task, error) {
	var out model.Task
	if err := c.Do(ctx, http.MethodPost, "/api/child-tasks", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*model.Task, error) {
	var out model.Task
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/child-tasks/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/child-tasks/%d", id), nil, nil)
}

// DeleteCompletedTasks removes every done task for the child and returns
// the ids the server removed.
func (c *Client) DeleteCompletedTasks(ctx context.Context, childID int64) ([]int64, error) {
	var out struct {
		DeletedIDs []int64 `json:"deleted_ids"`
	}
	err := c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/child-tasks/%d/completed", childID), nil, &out)
	if err != nil {
		return nil, err
	}
	return out.DeletedIDs, nil
}

// RewardParams are the writable fields of a reward.
type RewardParams struct {
	ChildID     int64  `json:"child_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Points      int    `json:"points"`
	Kind        string `json:"kind,omitempty"`
}

func (c *Client) ListRewards(ctx context.Context, childID int64) ([]model.Reward, error) {
	var out []model.Reward
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/rewards/%d", childID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Points(ctx context.Context, childID int64) (*model.PointBalance, error) {
	var out model.PointBalance
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/rewards/%d/points", childID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateReward(ctx context.Context, params RewardParams) (*model.Reward, error) {
	var out model.Reward
	if err := c.Do(ctx, http.MethodPost, "/api/rewards", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReward(ctx context.Context, id int64, params RewardParams) (*model.Reward, error) {
	var out model.Reward
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/rewards/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReward(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/rewards/%d", id), nil, nil)
}

// Redeem deducts points from the child's balance for a reward and returns
// the balance after the deduction.
func (c *Client) Redeem(ctx context.Context, childID int64, points int, title string) (*model.PointBalance, error) {
	body := map[string]any{"points": points, "title": title}
	var out model.PointBalance
	if err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/rewards/%d/redeem", childID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PredefinedRewards(ctx context.Context) ([]model.PredefinedReward, error) {
	var out []model.PredefinedReward
	if err := c.Do(ctx, http.MethodGet, "/api/rewards/predefined", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EventParams are the writable fields of a calendar event.
type EventParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Category    string `json:"category,omitempty"`
}

// ListEvents returns calendar events, restricted to one day when date is
// non-empty (YYYY-MM-DD).
func (c *Client) ListEvents(ctx context.Context, date string) ([]model.Event, error) {
	path := "/api/events"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	var out []model.Event
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateEvent(ctx context.Context, params EventParams) (*model.Event, error) {
	var out model.Event
	if err := c.Do(ctx, http.MethodPost, "/api/events", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id int64, params EventParams) (*model.Event, error) {
	var out model.Event
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/events/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/events/%d", id), nil, nil)
}

// ShoppingItemParams are the writable fields of a shopping item.
type ShoppingItemParams struct {
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Priority string          `json:"priority,omitempty"`
	Cost     decimal.Decimal `json:"cost"`
}

func (c *Client) ListShoppingItems(ctx context.Context) ([]model.ShoppingItem, error) {
	var out []model.ShoppingItem
	if err := c.Do(ctx, http.MethodGet, "/api/finance/shopping-items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateShoppingItem(ctx context.Context, params ShoppingItemParams) (*model.ShoppingItem, error) {
	var out model.ShoppingItem
	if err := c.Do(ctx, http.MethodPost, "/api/finance/shopping-items", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateShoppingItem(ctx context.Context, id int64, params ShoppingItemParams) (*model.ShoppingItem, error) {
	var out model.ShoppingItem
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/finance/shopping-items/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteShoppingItem(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/finance/shopping-items/%d", id), nil, nil)
}

// TransactionParams are the writable fields of a budget transaction.
type TransactionParams struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
}

func (c *Client) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	var out []model.Transaction
	if err := c.Do(ctx, http.MethodGet, "/api/finance/transactions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, params TransactionParams) (*model.Transaction, error) {
	var out model.Transaction
	if err := c.Do(ctx, http.MethodPost, "/api/finance/transactions", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id int64, params TransactionParams) (*model.Transaction, error) {
	var out model.Transaction
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/finance/transactions/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/finance/transactions/%d", id), nil, nil)
}

func (c *Client) BudgetSummary(ctx context.Context) (*model.BudgetSummary, error) {
	var out model.BudgetSummary
	if err := c.Do(ctx, http.MethodGet, "/api/finance/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecipeParams are the writable fields of a recipe.
type RecipeParams struct {
	Name         string   `json:"name"`
	PrepMinutes  int      `json:"prep_minutes,omitempty"`
	Calories     int      `json:"calories,omitempty"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Allergens    []string `json:"allergens,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
}

func (c *Client) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	var out []model.Recipe
	if err := c.Do(ctx, http.MethodGet, "/api/recipes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRecipe(ctx context.Context, params RecipeParams) (*model.Recipe, error) {
	var out model.Recipe
	if err := c.Do(ctx, http.MethodPost, "/api/recipes", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRecipe(ctx context.Context, id int64, params RecipeParams) (*model.Recipe, error) {
	var out model.Recipe
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/recipes/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/recipes/%d", id), nil, nil)
}

// MealWeek returns meal assignments with dates in [start, end], both
// YYYY-MM-DD.
func (c *Client) MealWeek(ctx context.Context, start, end string) ([]model.MealAssignment, error) {
	path := "/api/meals?start=" + url.QueryEscape(start) + "&end=" + url.QueryEscape(end)
	var out []model.MealAssignment
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignMeal pins a recipe to one slot of the day, replacing any
// previous assignment.
func (c *Client) AssignMeal(ctx context.Context, date string, slot model.MealSlot, recipeID int64) (*model.MealAssignment, error) {
	body := map[string]any{"slot": slot, "recipe_id": recipeID}
	var out model.MealAssignment
	if err := c.Do(ctx, http.MethodPut, "/api/meals/"+url.PathEscape(date), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearMeal empties one slot of the day.
func (c *Client) ClearMeal(ctx context.Context, date string, slot model.MealSlot) error {
	body := map[string]any{"slot": slot, "recipe_id": 0}
	return c.Do(ctx, http.MethodPut, "/api/meals/"+url.PathEscape(date), body, nil)
}

// Weather returns today's forecast for the calendar strip. The server
// degrades gracefully; check Report.Available before rendering.
func (c *Client) Weather(ctx context.Context) (*weather.Report, error) {
	var out weather.Report
	if err := c.Do(ctx, http.MethodGet, "/api/weather", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.Do(ctx, http.MethodGet, "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, name string) (*model.User, error) {
	var out model.User
	if err := c.Do(ctx, http.MethodPut, "/api/profile", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	body := map[string]string{"current_password": current, "new_password": updated}
	return c.Do(ctx, http.MethodPut, "/api/profile/change-password", body, nil)
}
