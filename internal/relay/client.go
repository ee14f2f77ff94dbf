package relay

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 << 20
)

// Identity is the authenticated participant behind a connection.
type Identity struct {
	ParticipantID string
	Name          string
	Color         string
	BoardID       uint
}

// Client is one websocket connection in a room.
type Client struct {
	Identity
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	logger    *slog.Logger
}

func newClient(conn *websocket.Conn, id Identity, buffer int, logger *slog.Logger) *Client {
	return &Client{
		Identity: id,
		conn:     conn,
		send:     make(chan []byte, buffer),
		logger:   logger,
	}
}

// enqueue reports false when the send buffer is full or already closed.
func (c *Client) enqueue(data []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump forwards every frame to handle until the connection fails.
func (c *Client) readPump(handle func(*Client, []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("readPump - unexpected close", "participant", c.ParticipantID, "err", err)
			}
			return
		}
		handle(c, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("writePump - write failed", "participant", c.ParticipantID, "err", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
