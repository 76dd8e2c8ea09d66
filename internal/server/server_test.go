package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"homeboard/internal/config"
	"homeboard/internal/database"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

type testEnv struct {
	t      *testing.T
	srv    *httptest.Server
	users  *store.UserStore
	token  string
	userID int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(db, config.Server{JWTSecret: "test-secret"}, logger)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	env := &testEnv{t: t, srv: srv, users: store.NewUserStore(db)}
	env.register("parent@example.com", "secret-password")
	return env
}

func (e *testEnv) register(email, password string) {
	e.t.Helper()
	status, body := e.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "name": "Sam", "password": password,
	})
	if status != http.StatusCreated {
		e.t.Fatalf("register returned %d: %s", status, body)
	}
	var resp struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		e.t.Fatalf("decode register response: %v", err)
	}
	e.token = resp.Token
	e.userID = resp.User.ID
}

func (e *testEnv) do(method, path string, body any) (int, []byte) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		e.t.Fatalf("build request: %v", err)
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func (e *testEnv) createChild(name string) model.Child {
	e.t.Helper()
	status, body := e.do(http.MethodPost, "/api/children", map[string]string{"name": name})
	if status != http.StatusCreated {
		e.t.Fatalf("create child returned %d: %s", status, body)
	}
	var child model.Child
	if err := json.Unmarshal(body, &child); err != nil {
		e.t.Fatalf("decode child: %v", err)
	}
	return child
}

func (e *testEnv) createTask(childID int64, content string) model.Task {
	e.t.Helper()
	status, body := e.do(http.MethodPost, "/api/child-tasks", map[string]any{
		"child_id": childID, "content": content,
	})
	if status != http.StatusCreated {
		e.t.Fatalf("create task returned %d: %s", status, body)
	}
	var task model.Task
	if err := json.Unmarshal(body, &task); err != nil {
		e.t.Fatalf("decode task: %v", err)
	}
	return task
}

func (e *testEnv) upgrade() {
	e.t.Helper()
	expiry := time.Now().Add(30 * 24 * time.Hour)
	if err := e.users.UpdateSubscription(e.userID, model.PlanPremium, &expiry); err != nil {
		e.t.Fatalf("upgrade subscription: %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "parent@example.com", "name": "Sam", "password": "secret-password",
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", status)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "parent@example.com", "password": "secret-password",
	})
	if status != http.StatusOK {
		t.Fatalf("login = %d: %s", status, body)
	}

	status, _ = env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "parent@example.com", "password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("bad password login = %d, want 401", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""
	status, _ := env.do(http.MethodGet, "/api/children", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("unauthenticated list = %d, want 401", status)
	}
}

func TestTaskCompletionCreditsPoints(t *testing.T) {
	env := newTestEnv(t)
	child := env.createChild("Robin")
	task := env.createTask(child.ID, "Clean room")

	status, body := env.do(http.MethodPut, fmt.Sprintf("/api/child-tasks/%d", task.ID), map[string]any{
		"status": "done",
	})
	if status != http.StatusOK {
		t.Fatalf("complete task = %d: %s", status, body)
	}

	status, body = env.do(http.MethodGet, fmt.Sprintf("/api/rewards/%d/points", child.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("points = %d: %s", status, body)
	}
	var balance model.PointBalance
	if err := json.Unmarshal(body, &balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance.Balance != model.CompletionPoints {
		t.Errorf("balance = %d, want %d", balance.Balance, model.CompletionPoints)
	}
}

func TestRedeemInsufficientPoints(t *testing.T) {
	env := newTestEnv(t)
	child := env.createChild("Robin")

	status, body := env.do(http.MethodPost, fmt.Sprintf("/api/rewards/%d/redeem", child.ID), map[string]any{
		"points": 50, "title": "Cinema outing",
	})
	if status != http.StatusBadRequest {
		t.Errorf("overdraft redeem = %d: %s, want 400", status, body)
	}
}

func TestRedeemDebitsBalance(t *testing.T) {
	env := newTestEnv(t)
	child := env.createChild("Robin")

	// Earn 30 points.
	for i := 0; i < 3; i++ {
		task := env.createTask(child.ID, "chore")
		status, body := env.do(http.MethodPut, fmt.Sprintf("/api/child-tasks/%d", task.ID), map[string]any{"status": "done"})
		if status != http.StatusOK {
			t.Fatalf("complete task = %d: %s", status, body)
		}
	}

	status, body := env.do(http.MethodPost, fmt.Sprintf("/api/rewards/%d/redeem", child.ID), map[string]any{
		"points": 20, "title": "Extra play time",
	})
	if status != http.StatusOK {
		t.Fatalf("redeem = %d: %s", status, body)
	}
	var balance model.PointBalance
	if err := json.Unmarshal(body, &balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance.Balance != 10 {
		t.Errorf("balance after redeem = %d, want 10", balance.Balance)
	}
}

func TestRewardDeletion(t *testing.T) {
	env := newTestEnv(t)
	child := env.createChild("Robin")

	status, body := env.do(http.MethodPost, "/api/rewards", map[string]any{
		"child_id": child.ID, "title": "Movie night", "points": 50,
	})
	if status != http.StatusCreated {
		t.Fatalf("create reward = %d: %s", status, body)
	}
	var reward model.Reward
	if err := json.Unmarshal(body, &reward); err != nil {
		t.Fatalf("decode reward: %v", err)
	}

	status, body = env.do(http.MethodDelete, fmt.Sprintf("/api/rewards/%d", reward.ID), nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete reward = %d: %s", status, body)
	}

	status, body = env.do(http.MethodGet, fmt.Sprintf("/api/rewards/%d", child.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("list rewards = %d: %s", status, body)
	}
	var list []model.Reward
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode rewards: %v", err)
	}
	for _, r := range list {
		if r.ID == reward.ID {
			t.Errorf("deleted reward still listed: %+v", r)
		}
	}
}

func TestCumulativeRewardNotDeletable(t *testing.T) {
	env := newTestEnv(t)
	child := env.createChild("Robin")
	task := env.createTask(child.ID, "Clean room")

	status, body := env.do(http.MethodPut, fmt.Sprintf("/api/child-tasks/%d", task.ID), map[string]any{"status": "done"})
	if status != http.StatusOK {
		t.Fatalf("complete task = %d: %s", status, body)
	}

	status, body = env.do(http.MethodGet, fmt.Sprintf("/api/rewards/%d", child.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("list rewards = %d: %s", status, body)
	}
	var list []model.Reward
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode rewards: %v", err)
	}
	var cumulative *model.Reward
	for i := range list {
		if list[i].Kind == model.RewardCumulative {
			cumulative = &list[i]
		}
	}
	if cumulative == nil {
		t.Fatal("no cumulative record after completion")
	}

	status, _ = env.do(http.MethodDelete, fmt.Sprintf("/api/rewards/%d", cumulative.ID), nil)
	if status != http.StatusBadRequest {
		t.Errorf("delete accrual record = %d, want 400", status)
	}
}

func TestCrossAccountChildHidden(t *testing.T) {
	env := newTestEnv(t)
	child := env.createChild("Robin")

	env.register("other@example.com", "secret-password")
	status, _ := env.do(http.MethodGet, fmt.Sprintf("/api/children/%d", child.ID), nil)
	if status != http.StatusNotFound {
		t.Errorf("foreign child fetch = %d, want 404", status)
	}
}

func TestFinanceRoutesArePlanGated(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(http.MethodGet, "/api/finance/summary", nil)
	if status != http.StatusForbidden {
		t.Fatalf("free-plan summary = %d, want 403", status)
	}

	env.upgrade()
	status, body := env.do(http.MethodGet, "/api/finance/summary", nil)
	if status != http.StatusOK {
		t.Errorf("premium summary = %d: %s, want 200", status, body)
	}
}

func TestShoppingItemAutoCategorized(t *testing.T) {
	env := newTestEnv(t)
	env.upgrade()

	status, body := env.do(http.MethodPost, "/api/finance/shopping-items", map[string]any{
		"name": "milk", "cost": "3.50",
	})
	if status != http.StatusCreated {
		t.Fatalf("create item = %d: %s", status, body)
	}
	var item model.ShoppingItem
	if err := json.Unmarshal(body, &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if item.Category != "Groceries" {
		t.Errorf("category = %q, want Groceries", item.Category)
	}
}

func TestWeatherUnconfigured(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodGet, "/api/weather", nil)
	if status != http.StatusOK {
		t.Fatalf("weather = %d: %s", status, body)
	}
	var report struct {
		Configured bool `json:"configured"`
	}
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Configured {
		t.Error("weather should be unconfigured in tests")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""
	status, _ := env.do(http.MethodGet, "/health", nil)
	if status != http.StatusOK {
		t.Errorf("health = %d, want 200", status)
	}
}

func TestMealPlannerRoutesArePlanGated(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(http.MethodGet, "/api/recipes", nil)
	if status != http.StatusForbidden {
		t.Fatalf("free-plan recipes = %d, want 403", status)
	}
	status, _ = env.do(http.MethodGet, "/api/meals?start=2026-09-07&end=2026-09-13", nil)
	if status != http.StatusForbidden {
		t.Fatalf("free-plan meal plan = %d, want 403", status)
	}

	env.upgrade()
	status, body := env.do(http.MethodGet, "/api/recipes", nil)
	if status != http.StatusOK {
		t.Errorf("premium recipes = %d: %s, want 200", status, body)
	}
}

func (e *testEnv) createRecipe(name string) model.Recipe {
	e.t.Helper()
	status, body := e.do(http.MethodPost, "/api/recipes", map[string]any{
		"name": name, "ingredients": []string{"pasta", "tomatoes"}, "tags": []string{"dinner"},
	})
	if status != http.StatusCreated {
		e.t.Fatalf("create recipe returned %d: %s", status, body)
	}
	var recipe model.Recipe
	if err := json.Unmarshal(body, &recipe); err != nil {
		e.t.Fatalf("decode recipe: %v", err)
	}
	return recipe
}

func TestMealPlanRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.upgrade()

	spaghetti := env.createRecipe("Spaghetti")
	tacos := env.createRecipe("Tacos")

	status, body := env.do(http.MethodPut, "/api/meals/2026-09-07", map[string]any{
		"slot": "dinner", "recipe_id": spaghetti.ID,
	})
	if status != http.StatusOK {
		t.Fatalf("assign meal = %d: %s", status, body)
	}
	var meal model.MealAssignment
	if err := json.Unmarshal(body, &meal); err != nil {
		t.Fatalf("decode assignment: %v", err)
	}
	if meal.RecipeName != "Spaghetti" || meal.Slot != model.SlotDinner {
		t.Errorf("assignment = %+v, want Spaghetti at dinner", meal)
	}

	// Assigning over an occupied slot replaces it.
	status, body = env.do(http.MethodPut, "/api/meals/2026-09-07", map[string]any{
		"slot": "dinner", "recipe_id": tacos.ID,
	})
	if status != http.StatusOK {
		t.Fatalf("reassign meal = %d: %s", status, body)
	}

	status, body = env.do(http.MethodGet, "/api/meals?start=2026-09-07&end=2026-09-13", nil)
	if status != http.StatusOK {
		t.Fatalf("week = %d: %s", status, body)
	}
	var week []model.MealAssignment
	if err := json.Unmarshal(body, &week); err != nil {
		t.Fatalf("decode week: %v", err)
	}
	if len(week) != 1 || week[0].RecipeName != "Tacos" {
		t.Fatalf("week = %+v, want one Tacos dinner", week)
	}

	// A zero recipe_id clears the slot.
	status, _ = env.do(http.MethodPut, "/api/meals/2026-09-07", map[string]any{
		"slot": "dinner", "recipe_id": 0,
	})
	if status != http.StatusNoContent {
		t.Fatalf("clear meal = %d, want 204", status)
	}

	status, body = env.do(http.MethodGet, "/api/meals?start=2026-09-07&end=2026-09-13", nil)
	if status != http.StatusOK {
		t.Fatalf("week = %d: %s", status, body)
	}
	week = nil
	if err := json.Unmarshal(body, &week); err != nil {
		t.Fatalf("decode week: %v", err)
	}
	if len(week) != 0 {
		t.Errorf("week = %+v, want empty after clear", week)
	}
}

func TestAssignMealRejectsForeignRecipe(t *testing.T) {
	env := newTestEnv(t)
	env.upgrade()
	recipe := env.createRecipe("Spaghetti")

	env.register("other@example.com", "secret-password")
	env.upgrade()

	status, _ := env.do(http.MethodPut, "/api/meals/2026-09-07", map[string]any{
		"slot": "dinner", "recipe_id": recipe.ID,
	})
	if status != http.StatusNotFound {
		t.Errorf("assign foreign recipe = %d, want 404", status)
	}
}

func TestMealWeekRequiresBounds(t *testing.T) {
	env := newTestEnv(t)
	env.upgrade()

	status, _ := env.do(http.MethodGet, "/api/meals", nil)
	if status != http.StatusBadRequest {
		t.Errorf("week without bounds = %d, want 400", status)
	}
}
