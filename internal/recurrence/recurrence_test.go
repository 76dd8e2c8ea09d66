package recurrence

import (
	"testing"
	"time"

	"homeboard/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		rule model.Recurrence
		now  time.Time
		want time.Time
	}{
		{
			name: "daily on time",
			due:  date(2026, time.March, 10),
			rule: model.RecurrenceDaily,
			now:  date(2026, time.March, 10),
			want: date(2026, time.March, 11),
		},
		{
			name: "daily overdue skips missed days",
			due:  date(2026, time.March, 1),
			rule: model.RecurrenceDaily,
			now:  date(2026, time.March, 10),
			want: date(2026, time.March, 11),
		},
		{
			name: "weekly",
			due:  date(2026, time.March, 2),
			rule: model.RecurrenceWeekly,
			now:  date(2026, time.March, 2),
			want: date(2026, time.March, 9),
		},
		{
			name: "weekly overdue lands on same weekday",
			due:  date(2026, time.March, 2), // Monday
			rule: model.RecurrenceWeekly,
			now:  date(2026, time.March, 20),
			want: date(2026, time.March, 23), // next Monday
		},
		{
			name: "monthly",
			due:  date(2026, time.April, 15),
			rule: model.RecurrenceMonthly,
			now:  date(2026, time.April, 15),
			want: date(2026, time.May, 15),
		},
		{
			name: "monthly clamps to short month",
			due:  date(2026, time.January, 31),
			rule: model.RecurrenceMonthly,
			now:  date(2026, time.January, 31),
			want: date(2026, time.February, 28),
		},
		{
			name: "non-repeating returns the due date unchanged",
			due:  date(2026, time.March, 1),
			rule: model.RecurrenceNone,
			now:  date(2026, time.March, 10),
			want: date(2026, time.March, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.due, tt.rule, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("Next(%v, %s, %v) = %v, want %v", tt.due, tt.rule, tt.now, got, tt.want)
			}
		})
	}
}
