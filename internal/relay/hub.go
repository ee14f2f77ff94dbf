package relay

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"collabCanvas/internal/history"
	"collabCanvas/internal/models"
	"collabCanvas/internal/protocol"
	"collabCanvas/internal/replica"
	"collabCanvas/internal/session"

	"github.com/gorilla/websocket"
)

type Options struct {
	CanvasWidth      int
	CanvasHeight     int
	HistoryDepth     int
	SendBuffer       int
	EchoOrigin       bool
	AutosaveInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		CanvasWidth:      1920,
		CanvasHeight:     1080,
		HistoryDepth:     history.DefaultMaxDepth,
		SendBuffer:       256,
		AutosaveInterval: 30 * time.Second,
	}
}

// Hub owns the rooms of one relay instance. Every inbound message goes
// through the broker, and the subscriber started by Run applies it to the
// room and fans it out.
type Hub struct {
	mu        sync.Mutex
	rooms     map[uint]*Room
	broker    Broker
	autosaver *session.Autosaver
	opts      Options
	logger    *slog.Logger
}

func NewHub(broker Broker, autosaver *session.Autosaver, opts Options, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultOptions()
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaults.SendBuffer
	}
	if opts.HistoryDepth <= 0 {
		opts.HistoryDepth = defaults.HistoryDepth
	}
	return &Hub{
		rooms:     make(map[uint]*Room),
		broker:    broker,
		autosaver: autosaver,
		opts:      opts,
		logger:    logger,
	}
}

// Run subscribes to the broker and blocks until ctx is done or the
// subscription ends.
func (h *Hub) Run(ctx context.Context) error {
	ch, err := h.broker.Subscribe(ctx)
	if err != nil {
		return err
	}
	var tick <-chan time.Time
	if h.autosaver != nil && h.opts.AutosaveInterval > 0 {
		ticker := time.NewTicker(h.opts.AutosaveInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			h.saveAll(context.Background())
			return ctx.Err()
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			h.dispatch(ctx, data)
		case <-tick:
			h.saveAll(ctx)
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, data []byte) {
	env, m, err := protocol.Decode(data)
	if err != nil {
		h.logger.Warn("dispatch - decode failed", "err", err)
		return
	}
	h.room(ctx, env.BoardID).deliver(data, env.Origin, m)
}

// room returns the board's room, creating it and restoring a fresh autosave
// on first use. The restore runs outside h.mu; when two callers race, the
// first room inserted wins.
func (h *Hub) room(ctx context.Context, boardID uint) *Room {
	h.mu.Lock()
	r, ok := h.rooms[boardID]
	h.mu.Unlock()
	if ok {
		return r
	}

	r = newRoom(boardID, h.opts.CanvasWidth, h.opts.CanvasHeight, h.opts.HistoryDepth, h.opts.EchoOrigin, h.logger)
	restored := h.restore(ctx, r)

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.rooms[boardID]; ok {
		return existing
	}
	h.rooms[boardID] = r
	if restored {
		h.logger.Info("room - restored autosave", "board", boardID, "entities", r.Store().Len())
	}
	return r
}

func (h *Hub) restore(ctx context.Context, r *Room) bool {
	if h.autosaver == nil {
		return false
	}
	restored, err := h.autosaver.Restore(ctx, r.id, r.Store())
	if err != nil {
		h.logger.Warn("room - autosave restore failed", "board", r.id, "err", err)
	}
	if !restored {
		return false
	}
	r.replica.History().Seed(replica.CommitOrder(r.Store().Snapshot()))
	r.markSaved(r.Store().Revision())
	return true
}

// Serve runs the connection until it closes. The caller owns the upgrade.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, id Identity) {
	c := newClient(conn, id, h.opts.SendBuffer, h.logger)
	r := h.room(ctx, id.BoardID)
	if err := r.join(c); err != nil {
		h.logger.Error("Serve - join failed", "board", id.BoardID, "participant", id.ParticipantID, "err", err)
		_ = conn.Close()
		return
	}
	h.logger.Info("Serve - participant joined", "board", id.BoardID, "participant", id.ParticipantID, "name", id.Name)

	go c.writePump()
	c.readPump(func(c *Client, data []byte) { h.handleInbound(ctx, c, data) })

	remaining := r.leave(c)
	h.logger.Info("Serve - participant left", "board", id.BoardID, "participant", id.ParticipantID, "remaining", remaining)
	h.publish(ctx, protocol.ParticipantLeft{ParticipantID: id.ParticipantID}, id.BoardID, id.ParticipantID)
	if remaining == 0 {
		h.save(ctx, r)
	}
}

// handleInbound stamps the authenticated identity onto a client frame and
// publishes it.
func (h *Hub) handleInbound(ctx context.Context, c *Client, data []byte) {
	_, m, err := protocol.Decode(data)
	if err != nil {
		h.logger.Warn("handleInbound - decode failed", "participant", c.ParticipantID, "err", err)
		return
	}
	m, ok := stamp(m, c.Identity)
	if !ok {
		h.logger.Warn("handleInbound - event not accepted from clients", "participant", c.ParticipantID, "event", m.Event())
		return
	}
	h.publish(ctx, m, c.BoardID, c.ParticipantID)
}

func (h *Hub) publish(ctx context.Context, m protocol.Message, boardID uint, origin string) {
	data, err := protocol.Encode(m, boardID, origin)
	if err != nil {
		h.logger.Error("publish - encode failed", "event", m.Event(), "err", err)
		return
	}
	if err := h.broker.Publish(ctx, data); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Error("publish - broker publish failed", "event", m.Event(), "err", err)
	}
}

// stamp overwrites author and participant fields with id. State loads and
// participant-left frames are relay-originated only.
func stamp(m protocol.Message, id Identity) (protocol.Message, bool) {
	switch msg := m.(type) {
	case protocol.StrokeBegin:
		msg.AuthorID = id.ParticipantID
		return msg, true
	case protocol.ShapeCommit:
		msg.Shape.AuthorID = id.ParticipantID
		return msg, true
	case protocol.TextCommit:
		msg.Text.AuthorID = id.ParticipantID
		return msg, true
	case protocol.ImageCommit:
		msg.Image.AuthorID = id.ParticipantID
		return msg, true
	case protocol.CursorUpdate:
		msg.ParticipantID = id.ParticipantID
		if msg.Color == "" {
			msg.Color = id.Color
		}
		return msg, true
	case protocol.StrokeMove, protocol.StrokeEnd, protocol.Undo, protocol.Redo, protocol.Clear:
		return msg, true
	default:
		return m, false
	}
}

// Load replaces a board's canvas on every relay instance.
func (h *Hub) Load(ctx context.Context, boardID uint, snap *models.SessionSnapshot) error {
	data, err := protocol.Encode(protocol.StateLoad{Snapshot: snap}, boardID, "")
	if err != nil {
		return err
	}
	return h.broker.Publish(ctx, data)
}

// Snapshot returns the canonical state of a board, restoring its autosave if
// the room is not open yet.
func (h *Hub) Snapshot(ctx context.Context, boardID uint) *models.SessionSnapshot {
	return h.room(ctx, boardID).Snapshot()
}

func (h *Hub) Rooms() []uint {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]uint, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (h *Hub) Participants(boardID uint) int {
	h.mu.Lock()
	r, ok := h.rooms[boardID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	return r.Len()
}

func (h *Hub) saveAll(ctx context.Context) {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()
	for _, r := range rooms {
		h.save(ctx, r)
	}
}

func (h *Hub) save(ctx context.Context, r *Room) {
	if h.autosaver == nil {
		return
	}
	rev, dirty := r.dirty()
	if !dirty {
		return
	}
	if err := h.autosaver.Save(ctx, r.id, r.Store()); err != nil {
		h.logger.Error("save - autosave failed", "board", r.id, "err", err)
		return
	}
	r.markSaved(rev)
	h.logger.Debug("save - autosaved", "board", r.id, "revision", rev)
}

// Close drops every connection and saves dirty rooms.
func (h *Hub) Close(ctx context.Context) {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()
	for _, r := range rooms {
		r.mu.Lock()
		for c := range r.clients {
			delete(r.clients, c)
			c.close()
		}
		r.mu.Unlock()
		h.save(ctx, r)
	}
}
