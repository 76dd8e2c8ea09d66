package events

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"homeboard/internal/auth"
)

// Handler upgrades an authenticated request to a WebSocket connection
// and registers it with the hub. It expects auth middleware to have
// populated the request context.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == 0 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// The API is served to local-network and tunneled clients
			// with varying origins; token auth is the access control.
			InsecureSkipVerify: true,
		})
		if err != nil {
			slog.Error("websocket accept failed", "error", err)
			return
		}

		client := newClient(hub, conn, userID)
		hub.register <- client

		go client.writePump(r.Context())
		client.readPump(r.Context())
	}
}
