package model

import "time"

type Child struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	DateOfBirth    string    `json:"date_of_birth"`
	Grade          string    `json:"grade"`
	AvatarURL      string    `json:"avatar_url"`
	Points         int       `json:"points"`
	LifetimePoints int       `json:"lifetime_points"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
