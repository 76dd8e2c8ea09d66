package events

import (
	"context"
	"log/slog"
)

// Hub tracks connected clients and fans change events out to them.
// Events are scoped to an account: a broadcast for user 3 never reaches
// clients authenticated as user 5.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan scopedEvent
}

type scopedEvent struct {
	userID int64
	event  ChangeEvent
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan scopedEvent, 64),
	}
}

// Run owns the client set. It must be started before any client
// connects and exits when ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			slog.Debug("events client connected", "user_id", client.userID, "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				close(client.send)
				delete(h.clients, client)
				slog.Debug("events client disconnected", "user_id", client.userID, "total", len(h.clients))
			}

		case msg := <-h.broadcast:
			data, err := msg.event.encode()
			if err != nil {
				slog.Error("encoding change event", "error", err)
				continue
			}
			for client := range h.clients {
				if client.userID != msg.userID {
					continue
				}
				select {
				case client.send <- data:
				default:
					// Slow consumer; drop it rather than stall the hub.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Notify queues a change event for every client on the given account.
// It never blocks the caller; if the hub is saturated the event is
// dropped, which clients tolerate because events are refetch hints.
func (h *Hub) Notify(userID int64, entity, action string, id int64) {
	select {
	case h.broadcast <- scopedEvent{userID: userID, event: ChangeEvent{Entity: entity, Action: action, ID: id}}:
	default:
		slog.Warn("change event dropped, hub saturated", "entity", entity, "action", action)
	}
}
