// Package recurrence computes due dates for repeating tasks.
package recurrence

import (
	"time"

	"homeboard/internal/model"
)

// Next returns the due date of the occurrence that follows due, advanced
// far enough to land after now. Completing a long-overdue daily task
// schedules tomorrow's instance, not a backlog of missed days. Monthly
// steps clamp to the last day of short months (Jan 31 -> Feb 28).
func Next(due time.Time, r model.Recurrence, now time.Time) time.Time {
	next := step(due, r)
	if next.Equal(due) {
		// Non-repeating rule; there is no next occurrence.
		return due
	}
	for !next.After(now) {
		next = step(next, r)
	}
	return next
}

func step(t time.Time, r model.Recurrence) time.Time {
	switch r {
	case model.RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case model.RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case model.RecurrenceMonthly:
		return addMonthClamped(t)
	}
	return t
}

func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
