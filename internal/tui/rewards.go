package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"homeboard/internal/model"
	"homeboard/internal/sync"
)

type rewardsModel struct {
	syncer *sync.Syncer
	cursor int

	catalogOpen   bool
	catalog       []model.PredefinedReward
	catalogCursor int

	formActive bool
	form       *huh.Form
	editingID  int64

	formTitle       *string
	formDescription *string
	formPoints      *string
}

func newRewardsModel(s *sync.Syncer) rewardsModel {
	title, description, points := "", "", ""
	return rewardsModel{
		syncer:          s,
		formTitle:       &title,
		formDescription: &description,
		formPoints:      &points,
	}
}

// rewards returns the child's custom rewards; the cumulative accrual
// record is displayed as the balance header, not as a list row.
func (m rewardsModel) rewards() []model.Reward {
	var out []model.Reward
	for _, r := range m.syncer.Rewards.List() {
		if r.Kind != model.RewardCumulative {
			out = append(out, r)
		}
	}
	return out
}

func (m rewardsModel) update(msg tea.Msg, child model.Child) (rewardsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg, child)
	}

	switch msg := msg.(type) {
	case rewardsLoadedMsg:
		if n := len(m.rewards()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case catalogLoadedMsg:
		m.catalog = msg.rewards
		m.catalogOpen = true
		m.catalogCursor = 0
		return m, nil

	case tea.KeyMsg:
		if m.catalogOpen {
			return m.updateCatalog(msg, child)
		}

		rewards := m.rewards()
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(rewards)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			if child.ID != 0 {
				return m.showForm(nil)
			}
		case key.Matches(msg, keys.Edit):
			if m.cursor < len(rewards) {
				r := rewards[m.cursor]
				return m.showForm(&r)
			}
		case key.Matches(msg, keys.Delete):
			if m.cursor < len(rewards) {
				return m, m.deleteReward(rewards[m.cursor].ID)
			}
		case key.Matches(msg, keys.Enter):
			if m.cursor < len(rewards) {
				return m, m.redeem(child.ID, rewards[m.cursor].ID)
			}
		case key.Matches(msg, keys.Catalog):
			return m, m.loadCatalog()
		}
	}
	return m, nil
}

func (m rewardsModel) updateCatalog(msg tea.KeyMsg, child model.Child) (rewardsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.catalogOpen = false
	case key.Matches(msg, keys.Up):
		if m.catalogCursor > 0 {
			m.catalogCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.catalogCursor < len(m.catalog)-1 {
			m.catalogCursor++
		}
	case key.Matches(msg, keys.Enter):
		if m.catalogCursor < len(m.catalog) {
			reward := m.catalog[m.catalogCursor]
			m.catalogOpen = false
			s := m.syncer
			return m, func() tea.Msg {
				if _, err := s.RedeemPredefined(context.Background(), child.ID, reward); err != nil {
					return errMsg{err}
				}
				return mutationDoneMsg{status: fmt.Sprintf("Redeemed %q for %d points", reward.Title, reward.Points)}
			}
		}
	}
	return m, nil
}

func (m rewardsModel) loadCatalog() tea.Cmd {
	s := m.syncer
	return func() tea.Msg {
		catalog, err := s.PredefinedCatalog(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return catalogLoadedMsg{rewards: catalog}
	}
}

func (m rewardsModel) deleteReward(id int64) tea.Cmd {
	s := m.syncer
	return func() tea.Msg {
		if err := s.DeleteReward(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: "Reward removed"}
	}
}

func (m rewardsModel) redeem(childID, rewardID int64) tea.Cmd {
	s := m.syncer
	return func() tea.Msg {
		balance, err := s.Redeem(context.Background(), childID, rewardID)
		if err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: fmt.Sprintf("Redeemed! %d points left", balance.Balance)}
	}
}

func (m rewardsModel) showForm(editing *model.Reward) (rewardsModel, tea.Cmd) {
	if editing != nil {
		m.editingID = editing.ID
		*m.formTitle = editing.Title
		*m.formDescription = editing.Description
		*m.formPoints = strconv.Itoa(editing.Points)
	} else {
		m.editingID = 0
		*m.formTitle = ""
		*m.formDescription = ""
		*m.formPoints = "50"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Reward").Value(m.formTitle),
			huh.NewInput().Title("Description").Value(m.formDescription),
			huh.NewInput().Title("Cost in points").Value(m.formPoints),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m rewardsModel) updateForm(msg tea.Msg, child model.Child) (rewardsModel, tea.Cmd) {
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
		title := strings.TrimSpace(*m.formTitle)
		if title == "" {
			return m, nil
		}
		points, err := strconv.Atoi(strings.TrimSpace(*m.formPoints))
		if err != nil || points < 0 {
			return m, func() tea.Msg { return errMsg{fmt.Errorf("cost must be a non-negative number")} }
		}

		description := *m.formDescription
		editingID := m.editingID
		s := m.syncer

		return m, func() tea.Msg {
			var err error
			if editingID != 0 {
				_, err = s.EditReward(context.Background(), editingID, title, description, points)
			} else {
				_, err = s.CreateReward(context.Background(), child.ID, title, description, points)
			}
			if err != nil {
				return errMsg{err}
			}
			return mutationDoneMsg{status: "Reward saved"}
		}
	}

	return m, cmd
}

func (m rewardsModel) view(child model.Child) string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Reward")
		if m.editingID != 0 {
			title = titleStyle.Render("Edit Reward")
		}
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	if m.catalogOpen {
		return m.renderCatalog(child)
	}

	header := titleStyle.Render(fmt.Sprintf("%s's rewards", child.Name)) +
		mutedStyle.Render(fmt.Sprintf("  (%d points available)", child.Points))

	rows := []string{header, ""}
	rewards := m.rewards()
	if len(rewards) == 0 {
		rows = append(rows, mutedStyle.Render("No custom rewards. Press n to add one, p for the catalog."))
	}

	for i, r := range rewards {
		cursor := "  "
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%-30s %4d pts", cursor, r.Title, r.Points)
		if r.Points > child.Points {
			line = mutedStyle.Render(line)
		}
		rows = append(rows, line)
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m rewardsModel) renderCatalog(child model.Child) string {
	rows := []string{titleStyle.Render("Reward catalog"), ""}
	for i, r := range m.catalog {
		cursor := "  "
		if i == m.catalogCursor {
			cursor = selectedStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%-30s %4d pts", cursor, r.Title, r.Points)
		if r.Points > child.Points {
			line = mutedStyle.Render(line)
		}
		rows = append(rows, line)
	}
	rows = append(rows, "", mutedStyle.Render("enter to redeem, esc to close"))
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
