package websocket

import (
	"context"
	"log/slog"
	"time"

	"dtalks/internal/notify"

	"github.com/gorilla/websocket"
)

const ( // ping pong(2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time to write a message to the peer
	PongWait       = 60 * time.Second    // no pong within this window = connection gone
	PingPeriod     = (PongWait * 9) / 10 // ping before pong wait expires, 10% slack for network jitter
	MaxMessageSize = 512                 // peers only send control frames
)

// Client is one user's notification socket.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	events <-chan notify.Event
	logger *slog.Logger
}

func NewClient(userID string, conn *websocket.Conn, events <-chan notify.Event, logger *slog.Logger) *Client {
	return &Client{UserID: userID, Conn: conn, events: events, logger: logger}
}

// ReadPump discards inbound frames and keeps the read deadline moving on
// pong. It calls done when the peer goes away.
func (c *Client) ReadPump(done context.CancelFunc) {
	defer done()

	c.Conn.SetReadLimit(MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("ws_read_failed", "user_id", c.UserID, "error", err)
			}
			return
		}
	}
}

// WritePump forwards events as JSON text frames and pings the peer until
// ctx is done or the event stream ends.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.closeFrame()
			return
		case event, ok := <-c.events:
			if !ok {
				c.closeFrame()
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteJSON(event); err != nil {
				c.logger.Warn("ws_write_failed", "user_id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) closeFrame() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(WriteWait))
}
