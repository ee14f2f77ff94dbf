package relay

import (
	"log/slog"
	"sync"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/history"
	"collabCanvas/internal/models"
	"collabCanvas/internal/protocol"
	"collabCanvas/internal/replica"
	"collabCanvas/internal/store"
)

// Room is the canonical replica of one board plus its local connections.
type Room struct {
	id         uint
	mu         sync.Mutex
	replica    *replica.Replica
	clients    map[*Client]struct{}
	echoOrigin bool
	savedRev   uint64
	logger     *slog.Logger
}

func newRoom(id uint, width, height, depth int, echoOrigin bool, logger *slog.Logger) *Room {
	if logger == nil {
		logger = slog.Default()
	}
	s := store.New()
	s.SetCanvasSize(width, height)
	h := history.New(s, history.WithMaxDepth(depth), history.WithLogger(logger))
	return &Room{
		id:         id,
		replica:    replica.New(s, h, replica.Authoritative(), replica.WithLogger(logger)),
		clients:    make(map[*Client]struct{}),
		echoOrigin: echoOrigin,
		logger:     logger,
	}
}

func (r *Room) Store() *store.Store { return r.replica.Store() }

// join sends the canonical snapshot and then registers c, so every later
// fan-out reaches c after its state-load.
func (r *Room) join(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := protocol.Encode(protocol.StateLoad{Snapshot: r.replica.Store().Snapshot()}, r.id, "")
	if err != nil {
		return err
	}
	if !c.enqueue(data) {
		return errs.ErrSlowConsumer
	}
	r.clients[c] = struct{}{}
	return nil
}

// leave reports how many clients remain.
func (r *Room) leave(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		c.close()
	}
	return len(r.clients)
}

// deliver applies m to the canonical replica and fans data out. An undo
// without a target is resolved against the room's history and forwarded
// naming the removed entity, to the origin as well.
func (r *Room) deliver(data []byte, origin string, m protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	echo := r.echoOrigin
	if u, ok := m.(protocol.Undo); ok && u.TargetID == "" {
		resolved, ok := r.replica.UndoLatest()
		if !ok {
			r.logger.Debug("deliver - nothing to undo", "board", r.id, "origin", origin)
			return
		}
		var err error
		if data, err = protocol.Encode(resolved, r.id, origin); err != nil {
			r.logger.Error("deliver - encode failed", "board", r.id, "event", resolved.Event(), "err", err)
			return
		}
		echo = true
	} else if err := r.replica.Apply(m); err != nil {
		r.logger.Warn("deliver - apply failed", "board", r.id, "event", m.Event(), "err", err)
		return
	}
	for c := range r.clients {
		if !echo && origin != "" && c.ParticipantID == origin {
			continue
		}
		if !c.enqueue(data) {
			r.logger.Warn("deliver - dropping slow consumer", "board", r.id, "participant", c.ParticipantID, "err", errs.ErrSlowConsumer)
			delete(r.clients, c)
			c.close()
		}
	}
}

func (r *Room) Snapshot() *models.SessionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replica.Store().Snapshot()
}

func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Room) Cursors() []models.RemoteCursor {
	return r.replica.Cursors()
}

// dirty reports whether the store changed since the last markSaved.
func (r *Room) dirty() (uint64, bool) {
	rev := r.replica.Store().Revision()
	r.mu.Lock()
	defer r.mu.Unlock()
	return rev, rev != r.savedRev
}

func (r *Room) markSaved(rev uint64) {
	r.mu.Lock()
	r.savedRev = rev
	r.mu.Unlock()
}
