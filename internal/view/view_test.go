package view

import (
	"testing"
	"time"

	"homeboard/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestProgress(t *testing.T) {
	tests := []struct {
		name  string
		tasks []model.Task
		want  int
	}{
		{"empty", nil, 0},
		{"none done", []model.Task{{Status: model.StatusToDo}, {Status: model.StatusInProgress}}, 0},
		{"all done", []model.Task{{Status: model.StatusDone}, {Status: model.StatusDone}}, 100},
		{"one of three", []model.Task{
			{Status: model.StatusDone}, {Status: model.StatusToDo}, {Status: model.StatusToDo},
		}, 33},
		{"two of three rounds up", []model.Task{
			{Status: model.StatusDone}, {Status: model.StatusDone}, {Status: model.StatusToDo},
		}, 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.tasks); got != tt.want {
				t.Errorf("Progress = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDistributions(t *testing.T) {
	tasks := []model.Task{
		{Priority: model.PriorityHigh, Status: model.StatusToDo},
		{Priority: model.PriorityHigh, Status: model.StatusDone},
		{Priority: model.PriorityLow, Status: model.StatusDone},
	}

	prio := PriorityDistribution(tasks)
	if prio[model.PriorityHigh] != 2 || prio[model.PriorityLow] != 1 || prio[model.PriorityMedium] != 0 {
		t.Errorf("priority distribution = %v", prio)
	}

	status := StatusDistribution(tasks)
	if status[model.StatusDone] != 2 || status[model.StatusToDo] != 1 {
		t.Errorf("status distribution = %v", status)
	}

	events := []model.Event{
		{Category: model.CategorySchool},
		{Category: model.CategorySchool},
		{Category: model.CategoryFamily},
	}
	cat := CategoryDistribution(events)
	if cat[model.CategorySchool] != 2 || cat[model.CategoryFamily] != 1 {
		t.Errorf("category distribution = %v", cat)
	}
}

func TestCompletionSeries(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{Status: model.StatusDone, CompletedAt: timePtr(base.Add(2 * time.Hour))},
		{Status: model.StatusDone, CompletedAt: timePtr(base)},
		{Status: model.StatusToDo},
		{Status: model.StatusDone, CompletedAt: nil},
		{Status: model.StatusDone, CompletedAt: timePtr(base.Add(time.Hour))},
	}

	series := CompletionSeries(tasks)
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}
	for i, p := range series {
		if p.Count != i+1 {
			t.Errorf("series[%d].Count = %d, want %d", i, p.Count, i+1)
		}
		if i > 0 && p.At.Before(series[i-1].At) {
			t.Errorf("series not ordered by time at index %d", i)
		}
	}
}

func TestLateTasks(t *testing.T) {
	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: 1, Status: model.StatusToDo, DueDate: timePtr(now.Add(-48 * time.Hour))},
		{ID: 2, Status: model.StatusDone, DueDate: timePtr(now.Add(-24 * time.Hour))},
		{ID: 3, Status: model.StatusToDo, DueDate: timePtr(now.Add(24 * time.Hour))},
		{ID: 4, Status: model.StatusInProgress, DueDate: timePtr(now.Add(-72 * time.Hour))},
		{ID: 5, Status: model.StatusToDo},
	}

	late := LateTasks(tasks, now)
	if len(late) != 2 {
		t.Fatalf("late count = %d, want 2", len(late))
	}
	if late[0].ID != 4 || late[1].ID != 1 {
		t.Errorf("late order = [%d %d], want most overdue first", late[0].ID, late[1].ID)
	}
}
