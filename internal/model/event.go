package model

import "time"

type EventCategory string

const (
	CategorySchool EventCategory = "school"
	CategorySports EventCategory = "sports"
	CategoryFamily EventCategory = "family"
	CategoryOther  EventCategory = "other"
)

func ValidCategory(c EventCategory) bool {
	switch c {
	case CategorySchool, CategorySports, CategoryFamily, CategoryOther:
		return true
	}
	return false
}

// Event is a single calendar entry. Events have no recurrence; each day is
// managed independently.
type Event struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        string        `json:"date"` // YYYY-MM-DD
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	Category    EventCategory `json:"category"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
