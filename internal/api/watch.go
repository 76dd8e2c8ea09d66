package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"homeboard/internal/events"
)

// Watch dials the server's change-event stream and delivers events until
// ctx is canceled or the connection drops, then closes the channel.
// Events are refetch hints; a closed channel means the caller should
// reconnect or fall back to polling.
func (c *Client) Watch(ctx context.Context) (<-chan events.ChangeEvent, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws"

	header := http.Header{}
	if token := c.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil {
			return nil, classifyStatus(resp.StatusCode, nil)
		}
		return nil, &TransportError{Err: err}
	}

	ch := make(chan events.ChangeEvent, 16)
	go func() {
		defer close(ch)
		defer conn.Close(websocket.StatusNormalClosure, "")

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var ev events.ChangeEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				slog.Debug("malformed change event", "error", err)
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
