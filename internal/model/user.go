package model

import "time"

type SubscriptionPlan string

const (
	PlanFree    SubscriptionPlan = "free"
	PlanPremium SubscriptionPlan = "premium"
)

type User struct {
	ID                 int64            `json:"id"`
	Email              string           `json:"email"`
	Name               string           `json:"name"`
	PasswordHash       string           `json:"-"`
	SubscriptionPlan   SubscriptionPlan `json:"subscription_plan"`
	SubscriptionExpiry *time.Time       `json:"subscription_expiry"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Entitled reports whether the account's plan currently grants access to
// gated features. Free accounts are never entitled; premium accounts lose
// entitlement once the subscription expires.
func (u User) Entitled(now time.Time) bool {
	if u.SubscriptionPlan != PlanPremium {
		return false
	}
	return u.SubscriptionExpiry == nil || u.SubscriptionExpiry.After(now)
}
