// Package tui is the terminal client. It renders the synced state and
// turns key presses into optimistic mutations; every remote call runs in
// a command so the interface never blocks on the network.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"homeboard/internal/api"
	"homeboard/internal/events"
	"homeboard/internal/model"
	"homeboard/internal/sync"
)

type viewState int

const (
	viewTasks viewState = iota
	viewRewards
	viewCalendar
	viewBudget
	viewMeals
	viewCount
)

var viewNames = []string{"Tasks", "Rewards", "Calendar", "Budget", "Meals"}

// upgradeNotice is shown when the server rejects a plan-gated feature,
// instead of the raw error text.
const upgradeNotice = "This is a premium feature. Upgrade your plan to use the budget, meal planner, and reward catalog."

// App is the root Bubble Tea model.
type App struct {
	syncer *sync.Syncer
	width  int
	height int

	signedIn    bool
	user        *model.User
	activeView  viewState
	showHelp    bool
	status      string
	errText     string
	children    []model.Child
	childCursor int

	watchCh <-chan events.ChangeEvent

	signin   signinModel
	tasks    tasksModel
	rewards  rewardsModel
	calendar calendarModel
	budget   budgetModel
	meals    mealsModel

	help help.Model
}

func NewApp(s *sync.Syncer) App {
	h := help.New()
	h.ShowAll = false

	user, signedIn := s.Restore()
	return App{
		syncer:   s,
		signedIn: signedIn,
		user:     user,
		signin:   newSigninModel(s),
		tasks:    newTasksModel(s),
		rewards:  newRewardsModel(s),
		calendar: newCalendarModel(s),
		budget:   newBudgetModel(s),
		meals:    newMealsModel(s),
		help:     h,
	}
}

func (a App) Init() tea.Cmd {
	if !a.signedIn {
		return a.signin.Init()
	}
	return tea.Batch(a.loadChildren(), a.startWatch())
}

func (a App) selectedChild() (model.Child, bool) {
	if a.childCursor >= len(a.children) {
		return model.Child{}, false
	}
	return a.children[a.childCursor], true
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case errMsg:
		if errors.Is(msg.err, api.ErrUnauthenticated) && a.signedIn {
			return a.signOut("Session expired, sign in again")
		}
		if errors.Is(msg.err, api.ErrEntitlement) {
			a.errText = upgradeNotice
			return a, nil
		}
		a.errText = msg.err.Error()
		if !a.signedIn {
			// Failed sign-in attempt; present a fresh form.
			a.signin = newSigninModel(a.syncer)
			return a, a.signin.Init()
		}
		return a, nil

	case mutationDoneMsg:
		a.status = msg.status
		a.errText = ""
		return a, a.refreshCurrentView()

	case signedInMsg:
		a.signedIn = true
		a.user = msg.user
		a.status = "Signed in"
		a.errText = ""
		return a, tea.Batch(a.loadChildren(), a.startWatch())

	case childrenLoadedMsg:
		a.children = a.syncer.Children.List()
		if a.childCursor >= len(a.children) {
			a.childCursor = max(0, len(a.children)-1)
		}
		if child, ok := a.selectedChild(); ok {
			return a, tea.Batch(a.loadTasks(child.ID), a.loadRewards(child.ID))
		}
		return a, nil

	case watchStartedMsg:
		a.watchCh = msg.ch
		return a, waitForChange(msg.ch)

	case watchClosedMsg:
		// Stream dropped; keep working and redial.
		a.watchCh = nil
		if a.signedIn {
			return a, a.startWatch()
		}
		return a, nil

	case changeEventMsg:
		cmds := []tea.Cmd{waitForChange(a.watchCh)}
		if cmd := a.refetchFor(msg.event); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		if !a.signedIn {
			var cmd tea.Cmd
			a.signin, cmd = a.signin.update(msg)
			return a, cmd
		}
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.SignOut):
			a.syncer.SignOut()
			return a.signOut("Signed out")
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTasks
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewRewards
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewCalendar
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewBudget
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewMeals
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewCount
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Left):
			if a.activeView == viewTasks || a.activeView == viewRewards {
				if a.childCursor > 0 {
					a.childCursor--
				}
				return a, a.refreshCurrentView()
			}
		case key.Matches(msg, keys.Right):
			if a.activeView == viewTasks || a.activeView == viewRewards {
				if a.childCursor < len(a.children)-1 {
					a.childCursor++
				}
				return a, a.refreshCurrentView()
			}
		}
	}

	return a.updateActiveView(msg)
}

func (a App) signOut(status string) (tea.Model, tea.Cmd) {
	a.signedIn = false
	a.user = nil
	a.children = nil
	a.childCursor = 0
	a.watchCh = nil
	a.status = status
	a.errText = ""
	a.signin = newSigninModel(a.syncer)
	return a, a.signin.Init()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	child, _ := a.selectedChild()
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg, child)
	case viewRewards:
		a.rewards, cmd = a.rewards.update(msg, child)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewBudget:
		a.budget, cmd = a.budget.update(msg)
	case viewMeals:
		a.meals, cmd = a.meals.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewRewards:
		return a.rewards.formActive
	case viewCalendar:
		return a.calendar.formActive
	case viewBudget:
		return a.budget.formActive
	case viewMeals:
		return a.meals.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	child, haveChild := a.selectedChild()
	switch a.activeView {
	case viewTasks:
		if haveChild {
			return a.loadTasks(child.ID)
		}
	case viewRewards:
		if haveChild {
			return a.loadRewards(child.ID)
		}
	case viewCalendar:
		return tea.Batch(a.loadEvents(), a.loadWeather())
	case viewBudget:
		return a.loadFinance()
	case viewMeals:
		return a.loadMealPlan()
	}
	return nil
}

// refetchFor maps a change event to the fetch that refreshes the
// affected collection. Events carry no payload; the fetch is the data.
func (a App) refetchFor(ev events.ChangeEvent) tea.Cmd {
	child, haveChild := a.selectedChild()
	switch ev.Entity {
	case events.EntityChild:
		return a.loadChildren()
	case events.EntityTask:
		if haveChild {
			return a.loadTasks(child.ID)
		}
	case events.EntityReward:
		if haveChild {
			return a.loadRewards(child.ID)
		}
	case events.EntityEvent:
		return a.loadEvents()
	case events.EntityShoppingItem, events.EntityTransaction:
		return a.loadFinance()
	case events.EntityRecipe, events.EntityMeal:
		return a.loadMealPlan()
	}
	return nil
}

func (a App) loadChildren() tea.Cmd {
	s := a.syncer
	return func() tea.Msg {
		if err := s.RefreshChildren(context.Background()); err != nil {
			return errMsg{err}
		}
		return childrenLoadedMsg{}
	}
}

func (a App) loadTasks(childID int64) tea.Cmd {
	s := a.syncer
	return func() tea.Msg {
		if err := s.RefreshTasks(context.Background(), childID); err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{childID: childID}
	}
}

func (a App) loadRewards(childID int64) tea.Cmd {
	s := a.syncer
	return func() tea.Msg {
		if err := s.RefreshRewards(context.Background(), childID); err != nil {
			return errMsg{err}
		}
		return rewardsLoadedMsg{childID: childID}
	}
}

func (a App) loadEvents() tea.Cmd {
	s := a.syncer
	return func() tea.Msg {
		if err := s.RefreshEvents(context.Background(), ""); err != nil {
			return errMsg{err}
		}
		return eventsLoadedMsg{}
	}
}

func (a App) loadWeather() tea.Cmd {
	s := a.syncer
	return func() tea.Msg {
		report, err := s.Weather(context.Background())
		if err != nil {
			// The calendar renders fine without a forecast.
			return nil
		}
		return weatherLoadedMsg{report: *report}
	}
}

func (a App) loadFinance() tea.Cmd {
	s := a.syncer
	return func() tea.Msg {
		if err := s.RefreshFinance(context.Background()); err != nil {
			return errMsg{err}
		}
		return financeLoadedMsg{}
	}
}

func (a App) loadMealPlan() tea.Cmd {
	s := a.syncer
	start, end := a.meals.weekRange()
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

func (a App) startWatch() tea.Cmd {
	s := a.syncer
	return func() tea.Msg {
		ch, err := s.Watch(context.Background())
		if err != nil {
			// Live updates are a nicety; fetches still work without them.
			return watchClosedMsg{}
		}
		return watchStartedMsg{ch: ch}
	}
}

func waitForChange(ch <-chan events.ChangeEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return changeEventMsg{event: ev}
	}
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if !a.signedIn {
		return a.signin.view(a.width, a.height)
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	child, _ := a.selectedChild()
	var content string
	switch a.activeView {
	case viewTasks:
		content = a.tasks.view(child, a.children)
	case viewRewards:
		content = a.rewards.view(child)
	case viewCalendar:
		content = a.calendar.view()
	case viewBudget:
		content = a.budget.view()
	case viewMeals:
		content = a.meals.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	title := titleStyle.Render("homeboard")
	return lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", tabRow)
}

func (a App) renderFooter() string {
	line := a.status
	if a.errText != "" {
		line = errorStyle.Render(a.errText)
	} else {
		line = statusStyle.Render(line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, a.help.View(keys))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
