package tui

import (
	"homeboard/internal/events"
	"homeboard/internal/model"
	"homeboard/internal/weather"
)

// Messages produced by commands. Every remote call runs inside a tea.Cmd
// and reports back through one of these.

type errMsg struct {
	err error
}

type signedInMsg struct {
	user *model.User
}

type childrenLoadedMsg struct{}

type tasksLoadedMsg struct {
	childID int64
}

type rewardsLoadedMsg struct {
	childID int64
}

type eventsLoadedMsg struct{}

type financeLoadedMsg struct{}

type mealPlanLoadedMsg struct{}

type catalogLoadedMsg struct {
	rewards []model.PredefinedReward
}

type mutationDoneMsg struct {
	status string
}

// changeEventMsg is a server-side change notification; the app refetches
// whatever collection it names.
type changeEventMsg struct {
	event events.ChangeEvent
}

// watchStartedMsg carries the freshly dialed change stream.
type watchStartedMsg struct {
	ch <-chan events.ChangeEvent
}

// watchClosedMsg means the change stream dropped; the app redials.
type watchClosedMsg struct{}

// weatherLoadedMsg carries today's forecast for the calendar strip.
type weatherLoadedMsg struct {
	report weather.Report
}
