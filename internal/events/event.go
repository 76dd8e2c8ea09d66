// Package events delivers change notifications to connected clients
// over WebSocket. After a mutation commits, the server broadcasts a
// small event naming the entity collection, the action, and the row id;
// clients use it to decide what to refetch rather than as a data feed.
package events

import "encoding/json"

// Actions carried by a ChangeEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Entity names carried by a ChangeEvent. They match the API collection
// names, not internal type names.
const (
	EntityChild        = "children"
	EntityTask         = "tasks"
	EntityReward       = "rewards"
	EntityEvent        = "events"
	EntityShoppingItem = "shopping-items"
	EntityTransaction  = "transactions"
	EntityRecipe       = "recipes"
	EntityMeal         = "meals"
)

// ChangeEvent is the wire message sent to clients.
type ChangeEvent struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

func (e ChangeEvent) encode() ([]byte, error) {
	return json.Marshal(e)
}
