package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/protocol"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// Receiver applies messages arriving from the relay.
type Receiver interface {
	Receive(m protocol.Message) error
}

// Conn is a participant's websocket to a relay. It implements
// participant.Transport.
type Conn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	loaded    chan struct{}
	closeOnce sync.Once
	loadOnce  sync.Once
	logger    *slog.Logger
}

// Dial connects to a relay board endpoint, passing token in the
// Authorization header.
func Dial(ctx context.Context, url, token string, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", token)
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return &Conn{
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		loaded: make(chan struct{}),
		logger: logger,
	}, nil
}

// Emit queues m for the relay without blocking. Board and origin are
// stamped by the relay. When the send buffer is full the connection is
// closed, as the relay does with a slow consumer.
func (c *Conn) Emit(m protocol.Message) {
	data, err := protocol.Encode(m, 0, "")
	if err != nil {
		c.logger.Error("Emit - encode failed", "event", m.Event(), "err", err)
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("Emit - send buffer full, closing connection", "event", m.Event(), "err", errs.ErrSlowConsumer)
		go c.Close()
	}
}

// Done is closed once the connection has been closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Loaded is closed once the first state-load has been received.
func (c *Conn) Loaded() <-chan struct{} { return c.loaded }

// Run pumps frames in both directions until ctx ends or the connection
// fails. Malformed frames are logged and skipped.
func (c *Conn) Run(ctx context.Context, r Receiver) error {
	go c.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-c.done:
		}
	}()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			_ = c.Close()
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			if errors.Is(err, websocket.ErrCloseSent) {
				return nil
			}
			return err
		}
		_, m, err := protocol.Decode(data)
		if err != nil {
			c.logger.Warn("Run - decode failed", "err", err)
			continue
		}
		if err := r.Receive(m); err != nil {
			c.logger.Warn("Run - receive failed", "event", m.Event(), "err", err)
			continue
		}
		if _, ok := m.(protocol.StateLoad); ok {
			c.loadOnce.Do(func() { close(c.loaded) })
		}
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("writeLoop - write failed", "err", err)
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		err = c.ws.Close()
	})
	return err
}
