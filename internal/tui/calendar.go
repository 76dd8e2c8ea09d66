package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"homeboard/internal/api"
	"homeboard/internal/model"
	"homeboard/internal/sync"
	"homeboard/internal/weather"
)

type calendarModel struct {
	syncer   *sync.Syncer
	cursor   int
	forecast *weather.Report

	formActive bool
	form       *huh.Form
	editingID  int64

	formTitle    *string
	formDate     *string
	formStart    *string
	formEnd      *string
	formCategory *string
}

func newCalendarModel(s *sync.Syncer) calendarModel {
	title, date, start, end, category := "", "", "", "", string(model.CategoryFamily)
	return calendarModel{
		syncer:       s,
		formTitle:    &title,
		formDate:     &date,
		formStart:    &start,
		formEnd:      &end,
		formCategory: &category,
	}
}

// events returns the calendar sorted by date then start time, which is
// the order the agenda renders in.
func (m calendarModel) events() []model.Event {
	list := m.syncer.Events.List()
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].StartTime < list[j].StartTime
	})
	return list
}

func (m calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case weatherLoadedMsg:
		report := msg.report
		m.forecast = &report
		return m, nil

	case eventsLoadedMsg:
		if n := len(m.events()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case tea.KeyMsg:
		list := m.events()
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(list)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if m.cursor < len(list) {
				e := list[m.cursor]
				return m.showForm(&e)
			}
		case key.Matches(msg, keys.Delete):
			if m.cursor < len(list) {
				return m, m.deleteEvent(list[m.cursor].ID)
			}
		}
	}
	return m, nil
}

func (m calendarModel) deleteEvent(id int64) tea.Cmd {
	s := m.syncer
	return func() tea.Msg {
		if err := s.DeleteEvent(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: "Event removed"}
	}
}

func (m calendarModel) showForm(editing *model.Event) (calendarModel, tea.Cmd) {
	if editing != nil {
		m.editingID = editing.ID
		*m.formTitle = editing.Title
		*m.formDate = editing.Date
		*m.formStart = editing.StartTime
		*m.formEnd = editing.EndTime
		*m.formCategory = string(editing.Category)
	} else {
		m.editingID = 0
		*m.formTitle = ""
		*m.formDate = time.Now().Format("2006-01-02")
		*m.formStart = ""
		*m.formEnd = ""
		*m.formCategory = string(model.CategoryFamily)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Event").Value(m.formTitle),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(m.formDate),
			huh.NewInput().Title("Starts (HH:MM, optional)").Value(m.formStart),
			huh.NewInput().Title("Ends (HH:MM, optional)").Value(m.formEnd),
			huh.NewSelect[string]().Title("Category").
				Options(
					huh.NewOption("school", string(model.CategorySchool)),
					huh.NewOption("sports", string(model.CategorySports)),
					huh.NewOption("family", string(model.CategoryFamily)),
					huh.NewOption("other", string(model.CategoryOther)),
				).
				Value(m.formCategory),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
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

		params := api.EventParams{
			Title:     title,
			Date:      strings.TrimSpace(*m.formDate),
			StartTime: strings.TrimSpace(*m.formStart),
			EndTime:   strings.TrimSpace(*m.formEnd),
			Category:  *m.formCategory,
		}
		editingID := m.editingID
		s := m.syncer

		return m, func() tea.Msg {
			var err error
			if editingID != 0 {
				_, err = s.EditEvent(context.Background(), editingID, params)
			} else {
				_, err = s.CreateEvent(context.Background(), params)
			}
			if err != nil {
				return errMsg{err}
			}
			return mutationDoneMsg{status: "Event saved"}
		}
	}

	return m, cmd
}

func (m calendarModel) view() string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Event")
		if m.editingID != 0 {
			title = titleStyle.Render("Edit Event")
		}
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	rows := []string{titleStyle.Render("Calendar")}
	if f := m.forecast; f != nil && f.Available {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("%s %s %.0f°%s (%.0f/%.0f)",
			f.Icon, f.Summary, f.Temp, f.Unit, f.High, f.Low)))
	}
	rows = append(rows, "")
	list := m.events()
	if len(list) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing scheduled. Press n to add an event."))
	}

	lastDate := ""
	idx := 0
	for _, e := range list {
		if e.Date != lastDate {
			lastDate = e.Date
			rows = append(rows, mutedStyle.Render(e.Date))
		}
		cursor := "  "
		if idx == m.cursor {
			cursor = selectedStyle.Render("> ")
		}
		timeText := "all day"
		if e.StartTime != "" {
			timeText = e.StartTime
			if e.EndTime != "" {
				timeText += "-" + e.EndTime
			}
		}
		rows = append(rows, fmt.Sprintf("%s%-9s %s %s", cursor, timeText, e.Title, mutedStyle.Render("["+string(e.Category)+"]")))
		idx++
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
