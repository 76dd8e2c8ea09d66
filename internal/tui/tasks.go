package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"homeboard/internal/model"
	"homeboard/internal/sync"
	"homeboard/internal/view"
)

type tasksModel struct {
	syncer *sync.Syncer
	cursor int

	formActive bool
	form       *huh.Form
	editingID  int64

	formContent  *string
	formPriority *string
	formDue      *string
	formRecur    *string
}

func newTasksModel(s *sync.Syncer) tasksModel {
	content, priority, due, recur := "", string(model.PriorityMedium), "", string(model.RecurrenceNone)
	return tasksModel{
		syncer:       s,
		formContent:  &content,
		formPriority: &priority,
		formDue:      &due,
		formRecur:    &recur,
	}
}

func (m tasksModel) tasks() []model.Task {
	return m.syncer.Tasks.List()
}

func (m tasksModel) update(msg tea.Msg, child model.Child) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg, child)
	}

	switch msg := msg.(type) {
	case tasksLoadedMsg:
		if n := len(m.tasks()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case tea.KeyMsg:
		tasks := m.tasks()
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			if child.ID != 0 {
				return m.showForm(nil)
			}
		case key.Matches(msg, keys.Edit):
			if m.cursor < len(tasks) {
				t := tasks[m.cursor]
				return m.showForm(&t)
			}
		case key.Matches(msg, keys.Advance):
			if m.cursor < len(tasks) {
				return m, m.advanceStatus(tasks[m.cursor])
			}
		case key.Matches(msg, keys.Delete):
			if m.cursor < len(tasks) {
				return m, m.deleteTask(tasks[m.cursor].ID)
			}
		case key.Matches(msg, keys.Sweep):
			if child.ID != 0 {
				return m, m.sweepCompleted(child.ID)
			}
		}
	}
	return m, nil
}

// advanceStatus walks a task forward: to-do → in-progress → done. Done
// tasks stay done from here; the completion credit must not repeat.
func (m tasksModel) advanceStatus(t model.Task) tea.Cmd {
	var next model.TaskStatus
	switch t.Status {
	case model.StatusToDo:
		next = model.StatusInProgress
	case model.StatusInProgress:
		next = model.StatusDone
	default:
		return nil
	}

	s := m.syncer
	return func() tea.Msg {
		_, err := s.SetTaskStatus(context.Background(), t.ID, next)
		if err != nil {
			var cascade *sync.CascadeError
			if errors.As(err, &cascade) {
				// The task is done; only the points failed to land.
				return errMsg{cascade}
			}
			return errMsg{err}
		}
		if next == model.StatusDone {
			return mutationDoneMsg{status: fmt.Sprintf("Done! +%d points", model.CompletionPoints)}
		}
		return mutationDoneMsg{status: "Task updated"}
	}
}

func (m tasksModel) deleteTask(id int64) tea.Cmd {
	s := m.syncer
	return func() tea.Msg {
		if err := s.DeleteTask(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: "Task deleted"}
	}
}

func (m tasksModel) sweepCompleted(childID int64) tea.Cmd {
	s := m.syncer
	return func() tea.Msg {
		ids, err := s.DeleteCompleted(context.Background(), childID)
		if err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: fmt.Sprintf("Cleared %d completed tasks", len(ids))}
	}
}

func (m tasksModel) showForm(editing *model.Task) (tasksModel, tea.Cmd) {
	if editing != nil {
		m.editingID = editing.ID
		*m.formContent = editing.Content
		*m.formPriority = string(editing.Priority)
		*m.formDue = ""
		if editing.DueDate != nil {
			*m.formDue = editing.DueDate.Format("2006-01-02")
		}
		*m.formRecur = string(editing.Recurrence)
	} else {
		m.editingID = 0
		*m.formContent = ""
		*m.formPriority = string(model.PriorityMedium)
		*m.formDue = ""
		*m.formRecur = string(model.RecurrenceNone)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(m.formContent),
			huh.NewSelect[string]().Title("Priority").
				Options(
					huh.NewOption("high", string(model.PriorityHigh)),
					huh.NewOption("medium", string(model.PriorityMedium)),
					huh.NewOption("low", string(model.PriorityLow)),
				).
				Value(m.formPriority),
			huh.NewInput().Title("Due date (YYYY-MM-DD, optional)").Value(m.formDue),
			huh.NewSelect[string]().Title("Repeats").
				Options(
					huh.NewOption("never", string(model.RecurrenceNone)),
					huh.NewOption("daily", string(model.RecurrenceDaily)),
					huh.NewOption("weekly", string(model.RecurrenceWeekly)),
					huh.NewOption("monthly", string(model.RecurrenceMonthly)),
				).
				Value(m.formRecur),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg, child model.Child) (tasksModel, tea.Cmd) {
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
		content := strings.TrimSpace(*m.formContent)
		if content == "" {
			return m, nil
		}

		var due *time.Time
		if d := strings.TrimSpace(*m.formDue); d != "" {
			if parsed, err := time.Parse("2006-01-02", d); err == nil {
				due = &parsed
			}
		}
		priority := model.TaskPriority(*m.formPriority)
		recurrence := model.Recurrence(*m.formRecur)
		editingID := m.editingID
		s := m.syncer

		return m, func() tea.Msg {
			var err error
			if editingID != 0 {
				_, err = s.EditTask(context.Background(), editingID, content, priority, due, recurrence)
			} else {
				_, err = s.CreateTask(context.Background(), child.ID, content, priority, due, recurrence)
			}
			if err != nil {
				return errMsg{err}
			}
			return mutationDoneMsg{status: "Task saved"}
		}
	}

	return m, cmd
}

func (m tasksModel) view(child model.Child, children []model.Child) string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.editingID != 0 {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	if len(children) == 0 {
		return panelStyle.Render(mutedStyle.Render("No children yet. Add one from the web app or API."))
	}

	tasks := m.tasks()
	now := time.Now()

	header := titleStyle.Render(fmt.Sprintf("%s's tasks", child.Name)) +
		mutedStyle.Render(fmt.Sprintf("  (%d points · %d%% complete)", child.Points, view.Progress(tasks)))

	rows := []string{header, ""}
	if len(tasks) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks. Press n to add one."))
	}

	for i, t := range tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
		}

		marker := "[ ]"
		line := t.Content
		switch t.Status {
		case model.StatusInProgress:
			marker = "[~]"
		case model.StatusDone:
			marker = "[x]"
			line = doneStyle.Render(line)
		}
		if m.syncer.TaskPending(t.ID) {
			line = pendingStyle.Render(line + " …saving")
		}

		prio := priorityStyle(string(t.Priority)).Render(string(t.Priority))
		dueText := ""
		if t.DueDate != nil {
			dueText = mutedStyle.Render(" due " + humanize.Time(*t.DueDate))
			if t.Late(now) {
				dueText = lateStyle.Render(" late, due " + humanize.Time(*t.DueDate))
			}
		}

		rows = append(rows, fmt.Sprintf("%s%s %s  %s%s", cursor, marker, line, prio, dueText))
	}

	if late := view.LateTasks(tasks, now); len(late) > 0 {
		rows = append(rows, "", lateStyle.Render(fmt.Sprintf("%d task(s) overdue", len(late))))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
