package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"homeboard/internal/api"
	"homeboard/internal/model"
	"homeboard/internal/sync"
)

type mealsPane int

const (
	panePlanner mealsPane = iota
	paneRecipes
)

type mealsForm int

const (
	formRecipe mealsForm = iota
	formPicker
)

// mealsModel is the weekly meal planner: a grid of day/slot cells on the
// left, the recipe library on the right.
type mealsModel struct {
	syncer    *sync.Syncer
	pane      mealsPane
	weekStart time.Time

	// planner cursor walks the 7x3 grid as a flat list of cells
	cell int

	// recipe library cursor
	cursor int

	formActive bool
	form       *huh.Form
	formKind   mealsForm
	editingID  int64

	// recipe form
	formName         *string
	formPrep         *string
	formCalories     *string
	formIngredients  *string
	formInstructions *string
	formTags         *string
	formAllergens    *string
	formRating       *string

	// assignment picker
	formRecipeID *int64
	pickDate     string
	pickSlot     model.MealSlot
}

func newMealsModel(s *sync.Syncer) mealsModel {
	name, prep, calories, ingredients, instructions, tags, allergens, rating := "", "", "", "", "", "", "", ""
	var recipeID int64
	return mealsModel{
		syncer:           s,
		weekStart:        startOfWeek(time.Now()),
		formName:         &name,
		formPrep:         &prep,
		formCalories:     &calories,
		formIngredients:  &ingredients,
		formInstructions: &instructions,
		formTags:         &tags,
		formAllergens:    &allergens,
		formRating:       &rating,
		formRecipeID:     &recipeID,
	}
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// weekRange returns the displayed week's bounds as YYYY-MM-DD.
func (m mealsModel) weekRange() (string, string) {
	return m.weekStart.Format("2006-01-02"), m.weekStart.AddDate(0, 0, 6).Format("2006-01-02")
}

const cellsPerWeek = 7 * 3

// cellAt maps a flat cell index back to its date and slot.
func (m mealsModel) cellAt(cell int) (string, model.MealSlot) {
	day := cell / len(model.Slots)
	slot := model.Slots[cell%len(model.Slots)]
	return m.weekStart.AddDate(0, 0, day).Format("2006-01-02"), slot
}

func (m mealsModel) update(msg tea.Msg) (mealsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case mealPlanLoadedMsg:
		if n := m.syncer.Recipes.Len(); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.pane = panePlanner
		case key.Matches(msg, keys.Right):
			m.pane = paneRecipes
		case key.Matches(msg, keys.Up):
			if m.pane == panePlanner {
				if m.cell > 0 {
					m.cell--
				}
			} else if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.pane == panePlanner {
				if m.cell < cellsPerWeek-1 {
					m.cell++
				}
			} else if m.cursor < m.syncer.Recipes.Len()-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.PrevWeek):
			m.weekStart = m.weekStart.AddDate(0, 0, -7)
			m.cell = 0
			return m, m.load()
		case key.Matches(msg, keys.NextWeek):
			m.weekStart = m.weekStart.AddDate(0, 0, 7)
			m.cell = 0
			return m, m.load()
		case key.Matches(msg, keys.New):
			return m.showRecipeForm(0)
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if m.pane == panePlanner {
				date, slot := m.cellAt(m.cell)
				return m.showPicker(date, slot)
			}
			recipes := m.syncer.Recipes.List()
			if m.cursor < len(recipes) {
				return m.showRecipeForm(recipes[m.cursor].ID)
			}
		case key.Matches(msg, keys.Delete):
			return m, m.deleteSelected()
		}
	}
	return m, nil
}

// load refetches the recipe library and the displayed week.
func (m mealsModel) load() tea.Cmd {
	s := m.syncer
	start, end := m.weekRange()
	return func() tea.Msg {
		if err := s.RefreshRecipes(context.Background()); err != nil {
			return errMsg{err}
		}
		if err := s.RefreshMealPlan(context.Background(), start, end); err != nil {
			return errMsg{err}
		}
		return mealPlanLoadedMsg{}
	}
}

// deleteSelected clears the planner cell, or deletes the selected recipe
// when the library pane is focused.
func (m mealsModel) deleteSelected() tea.Cmd {
	s := m.syncer
	if m.pane == panePlanner {
		date, slot := m.cellAt(m.cell)
		return func() tea.Msg {
			if err := s.ClearMeal(context.Background(), date, slot); err != nil {
				return errMsg{err}
			}
			return mutationDoneMsg{status: "Slot cleared"}
		}
	}
	recipes := s.Recipes.List()
	if m.cursor >= len(recipes) {
		return nil
	}
	id := recipes[m.cursor].ID
	return func() tea.Msg {
		if err := s.DeleteRecipe(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: "Recipe removed"}
	}
}

func (m mealsModel) showPicker(date string, slot model.MealSlot) (mealsModel, tea.Cmd) {
	recipes := m.syncer.Recipes.List()
	if len(recipes) == 0 {
		return m, func() tea.Msg {
			return errMsg{fmt.Errorf("no recipes yet; press n to add one first")}
		}
	}

	options := make([]huh.Option[int64], 0, len(recipes))
	for _, r := range recipes {
		options = append(options, huh.NewOption(r.Name, r.ID))
	}
	*m.formRecipeID = recipes[0].ID
	if current, ok := m.syncer.MealAt(date, slot); ok {
		*m.formRecipeID = current.RecipeID
	}

	m.pickDate = date
	m.pickSlot = slot
	m.formKind = formPicker
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title(fmt.Sprintf("%s %s", date, slot)).
				Options(options...).
				Value(m.formRecipeID),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m mealsModel) showRecipeForm(editingID int64) (mealsModel, tea.Cmd) {
	m.editingID = editingID
	*m.formName = ""
	*m.formPrep = ""
	*m.formCalories = ""
	*m.formIngredients = ""
	*m.formInstructions = ""
	*m.formTags = ""
	*m.formAllergens = ""
	*m.formRating = ""
	if editingID != 0 {
		if r, ok := m.syncer.Recipes.Get(editingID); ok {
			*m.formName = r.Name
			if r.PrepMinutes > 0 {
				*m.formPrep = strconv.Itoa(r.PrepMinutes)
			}
			if r.Calories > 0 {
				*m.formCalories = strconv.Itoa(r.Calories)
			}
			*m.formIngredients = strings.Join(r.Ingredients, ", ")
			*m.formInstructions = r.Instructions
			*m.formTags = strings.Join(r.Tags, ", ")
			*m.formAllergens = strings.Join(r.Allergens, ", ")
			if r.Rating > 0 {
				*m.formRating = strconv.FormatFloat(r.Rating, 'f', -1, 64)
			}
		}
	}

	m.formKind = formRecipe
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(m.formName),
			huh.NewInput().Title("Prep minutes").Value(m.formPrep).
				Validate(validCount),
			huh.NewInput().Title("Calories").Value(m.formCalories).
				Validate(validCount),
			huh.NewInput().Title("Ingredients (comma separated)").Value(m.formIngredients),
			huh.NewText().Title("Instructions").Value(m.formInstructions),
			huh.NewInput().Title("Tags (comma separated)").Value(m.formTags),
			huh.NewInput().Title("Allergens (comma separated)").Value(m.formAllergens),
			huh.NewInput().Title("Rating (0-5)").Value(m.formRating).
				Validate(validRating),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func validCount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}

func validRating(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 5 {
		return fmt.Errorf("must be between 0 and 5")
	}
	return nil
}

func (m mealsModel) updateForm(msg tea.Msg) (mealsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if m.formKind == formPicker {
			return m, m.submitAssignment()
		}
		return m, m.submitRecipe()
	}

	return m, cmd
}

func (m mealsModel) submitAssignment() tea.Cmd {
	recipe, ok := m.syncer.Recipes.Get(*m.formRecipeID)
	if !ok {
		return nil
	}
	date, slot := m.pickDate, m.pickSlot
	s := m.syncer
	return func() tea.Msg {
		if _, err := s.AssignMeal(context.Background(), date, slot, recipe); err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: fmt.Sprintf("%s planned for %s", recipe.Name, slot)}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (m mealsModel) submitRecipe() tea.Cmd {
	name := strings.TrimSpace(*m.formName)
	if name == "" {
		return nil
	}
	prep, _ := strconv.Atoi(strings.TrimSpace(*m.formPrep))
	calories, _ := strconv.Atoi(strings.TrimSpace(*m.formCalories))
	rating, _ := strconv.ParseFloat(strings.TrimSpace(*m.formRating), 64)
	params := api.RecipeParams{
		Name:         name,
		PrepMinutes:  prep,
		Calories:     calories,
		Ingredients:  splitList(*m.formIngredients),
		Instructions: strings.TrimSpace(*m.formInstructions),
		Tags:         splitList(*m.formTags),
		Allergens:    splitList(*m.formAllergens),
		Rating:       rating,
	}
	editingID := m.editingID
	s := m.syncer
	return func() tea.Msg {
		var err error
		if editingID != 0 {
			_, err = s.EditRecipe(context.Background(), editingID, params)
		} else {
			_, err = s.CreateRecipe(context.Background(), params)
		}
		if err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: "Recipe saved"}
	}
}

func (m mealsModel) view() string {
	if m.formActive && m.form != nil {
		title := "New Recipe"
		if m.formKind == formPicker {
			title = "Plan Meal"
		} else if m.editingID != 0 {
			title = "Edit Recipe"
		}
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View()))
	}

	plannerTab := "Week Plan"
	recipesTab := "Recipes"
	if m.pane == paneRecipes {
		recipesTab = selectedStyle.Render(recipesTab)
		plannerTab = mutedStyle.Render(plannerTab)
	} else {
		plannerTab = selectedStyle.Render(plannerTab)
		recipesTab = mutedStyle.Render(recipesTab)
	}

	start, end := m.weekRange()
	rows := []string{
		titleStyle.Render("Meal Planner"), "",
		mutedStyle.Render(fmt.Sprintf("%s to %s ([ and ] change week)", start, end)), "",
		plannerTab + "  |  " + recipesTab, "",
	}

	if m.pane == paneRecipes {
		rows = append(rows, m.recipeRows()...)
	} else {
		rows = append(rows, m.plannerRows()...)
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m mealsModel) plannerRows() []string {
	var rows []string
	for cell := 0; cell < cellsPerWeek; cell++ {
		date, slot := m.cellAt(cell)
		if cell%len(model.Slots) == 0 {
			if cell > 0 {
				rows = append(rows, "")
			}
			day, _ := time.Parse("2006-01-02", date)
			rows = append(rows, titleStyle.Render(day.Format("Mon Jan 2")))
		}

		cursor := "  "
		if m.pane == panePlanner && cell == m.cell {
			cursor = selectedStyle.Render("> ")
		}
		dish := mutedStyle.Render("(empty)")
		if meal, ok := m.syncer.MealAt(date, slot); ok {
			dish = meal.RecipeName
		}
		rows = append(rows, fmt.Sprintf("%s%-10s %s", cursor, slot, dish))
	}
	return rows
}

func (m mealsModel) recipeRows() []string {
	recipes := m.syncer.Recipes.List()
	if len(recipes) == 0 {
		return []string{mutedStyle.Render("No recipes yet. Press n to add one.")}
	}

	var rows []string
	for i, r := range recipes {
		cursor := "  "
		if m.pane == paneRecipes && i == m.cursor {
			cursor = selectedStyle.Render("> ")
		}
		line := cursor + r.Name
		var extras []string
		if r.PrepMinutes > 0 {
			extras = append(extras, fmt.Sprintf("%dm", r.PrepMinutes))
		}
		if r.Calories > 0 {
			extras = append(extras, fmt.Sprintf("%d kcal", r.Calories))
		}
		if r.Rating > 0 {
			extras = append(extras, fmt.Sprintf("%.1f★", r.Rating))
		}
		if len(r.Tags) > 0 {
			extras = append(extras, "["+strings.Join(r.Tags, ", ")+"]")
		}
		if len(extras) > 0 {
			line += "  " + mutedStyle.Render(strings.Join(extras, "  "))
		}
		rows = append(rows, line)
	}
	return rows
}
