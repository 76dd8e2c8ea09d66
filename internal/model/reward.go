package model

import "time"

type RewardKind string

const (
	// RewardCumulative is the single accrual record tracking a child's
	// earned points. At most one exists per child.
	RewardCumulative RewardKind = "cumulative"
	// RewardPredefined is a fixed catalog reward redeemed by deduction.
	RewardPredefined RewardKind = "predefined"
)

type Reward struct {
	ID          int64      `json:"id"`
	ChildID     int64      `json:"child_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	Kind        RewardKind `json:"kind"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CompletionPoints is credited to a child's cumulative reward each time a
// task transitions to done.
const CompletionPoints = 10

// PredefinedReward is a catalog entry offered to every child.
type PredefinedReward struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// PredefinedCatalog is the fixed reward catalog.
var PredefinedCatalog = []PredefinedReward{
	{Title: "Extra play time", Description: "Twenty minutes of extra play time", Points: 20},
	{Title: "Cinema outing", Description: "A trip to the cinema", Points: 50},
	{Title: "New toy", Description: "Pick out a new toy", Points: 100},
	{Title: "Amusement park visit", Description: "A day at the amusement park", Points: 200},
}

type PointBalance struct {
	ChildID     int64  `json:"child_id"`
	ChildName   string `json:"child_name"`
	TotalEarned int    `json:"total_earned"`
	TotalSpent  int    `json:"total_spent"`
	Balance     int    `json:"balance"`
}
