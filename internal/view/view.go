// Package view derives display values from state snapshots. Every
// function is pure: the same snapshot always yields the same result, and
// input order never changes the answer.
package view

import (
	"math"
	"sort"
	"time"

	"homeboard/internal/model"
)

// Progress returns the share of tasks completed as a whole percentage.
// No tasks means 0, and the result is always within [0, 100].
func Progress(tasks []model.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Status == model.StatusDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(tasks)) * 100))
}

// PriorityDistribution counts tasks per priority.
func PriorityDistribution(tasks []model.Task) map[model.TaskPriority]int {
	dist := make(map[model.TaskPriority]int)
	for _, t := range tasks {
		dist[t.Priority]++
	}
	return dist
}

// StatusDistribution counts tasks per status.
func StatusDistribution(tasks []model.Task) map[model.TaskStatus]int {
	dist := make(map[model.TaskStatus]int)
	for _, t := range tasks {
		dist[t.Status]++
	}
	return dist
}

// CategoryDistribution counts calendar events per category.
func CategoryDistribution(events []model.Event) map[model.EventCategory]int {
	dist := make(map[model.EventCategory]int)
	for _, e := range events {
		dist[e.Category]++
	}
	return dist
}

// CompletionPoint is one step in a completion series.
type CompletionPoint struct {
	At    time.Time
	Count int
}

// CompletionSeries returns the running count of completed tasks ordered
// by completion time. Tasks without a completion timestamp are skipped.
func CompletionSeries(tasks []model.Task) []CompletionPoint {
	var times []time.Time
	for _, t := range tasks {
		if t.Status == model.StatusDone && t.CompletedAt != nil {
			times = append(times, *t.CompletedAt)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	series := make([]CompletionPoint, len(times))
	for i, at := range times {
		series[i] = CompletionPoint{At: at, Count: i + 1}
	}
	return series
}

// LateTasks returns the open tasks whose due date has passed, ordered by
// due date with the most overdue first.
func LateTasks(tasks []model.Task, now time.Time) []model.Task {
	var late []model.Task
	for _, t := range tasks {
		if t.Late(now) {
			late = append(late, t)
		}
	}
	sort.Slice(late, func(i, j int) bool { return late[i].DueDate.Before(*late[j].DueDate) })
	return late
}
