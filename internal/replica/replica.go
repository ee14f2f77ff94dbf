// Package replica applies protocol messages received from other
// participants to a local store.
package replica

import (
	"errors"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/history"
	"collabCanvas/internal/models"
	"collabCanvas/internal/protocol"
	"collabCanvas/internal/store"
)

type Replica struct {
	mu      sync.Mutex
	store   *store.Store
	history *history.Coordinator
	cursors map[string]models.RemoteCursor
	loaded  bool
	logger  *slog.Logger
}

type Option func(*Replica)

func WithLogger(l *slog.Logger) Option {
	return func(r *Replica) { r.logger = l }
}

// Authoritative marks the replica as already holding the canonical state,
// so incremental messages apply without waiting for a state load. Relay
// rooms are authoritative.
func Authoritative() Option {
	return func(r *Replica) { r.loaded = true }
}

func New(s *store.Store, h *history.Coordinator, opts ...Option) *Replica {
	r := &Replica{
		store:   s,
		history: h,
		cursors: make(map[string]models.RemoteCursor),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Replica) Store() *store.Store            { return r.store }
func (r *Replica) History() *history.Coordinator { return r.history }

// Loaded reports whether a state load has been applied.
func (r *Replica) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Apply performs the store mutation a message asks for. Messages touching
// the store are dropped until the first state load. Store errors are
// expected races between peers and are swallowed; only an unrecognised
// message is reported.
func (r *Replica) Apply(m protocol.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch msg := m.(type) {
	case protocol.CursorUpdate:
		if msg.ParticipantID == "" {
			return nil
		}
		r.cursors[msg.ParticipantID] = models.RemoteCursor{
			ParticipantID: msg.ParticipantID,
			Position:      msg.Position,
			Color:         msg.Color,
		}
		return nil
	case protocol.ParticipantLeft:
		delete(r.cursors, msg.ParticipantID)
		return nil
	case protocol.StateLoad:
		r.load(msg.Snapshot)
		return nil
	case nil:
		return errs.ErrUnknownEvent
	}

	if !r.loaded {
		r.logger.Debug("Apply - dropped before state load", "event", m.Event())
		return nil
	}

	switch msg := m.(type) {
	case protocol.StrokeBegin:
		r.swallow(msg, r.store.BeginStroke(msg.ID, msg.Point, msg.Style, msg.AuthorID))
	case protocol.StrokeMove:
		r.swallow(msg, r.store.AppendPoint(msg.ID, msg.Point))
	case protocol.StrokeEnd:
		closed, err := r.store.CloseStroke(msg.ID)
		if err != nil {
			r.swallow(msg, err)
			return nil
		}
		if closed {
			r.history.Commit(msg.ID)
		}
	case protocol.ShapeCommit:
		r.commit(msg, msg.Shape)
	case protocol.TextCommit:
		r.commit(msg, msg.Text)
	case protocol.ImageCommit:
		r.commit(msg, msg.Image)
	case protocol.Undo:
		if _, ok := r.history.ApplyUndo(msg.TargetID); !ok {
			r.logger.Debug("Apply - undo target absent", "id", msg.TargetID)
		}
	case protocol.Redo:
		r.history.ApplyRedo(msg.Entity)
	case protocol.Clear:
		r.store.Clear()
		r.history.Reset()
	default:
		return errs.ErrUnknownEvent
	}
	return nil
}

// commit records e in history only when it is new, so a replayed commit
// leaves the redo stack and the undo order alone.
func (r *Replica) commit(m protocol.Message, e models.Entity) {
	created, err := r.store.Upsert(e)
	if err != nil {
		r.swallow(m, err)
		return
	}
	if created {
		r.history.Commit(e.EntityID())
	}
}

// UndoLatest removes the most recent committed entity still present and
// returns the undo naming it, which is what peers must apply to stay in
// step. It reports false when nothing was undone.
func (r *Replica) UndoLatest() (protocol.Undo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return protocol.Undo{}, false
	}
	id, ok := r.history.ApplyUndo("")
	if !ok {
		return protocol.Undo{}, false
	}
	return protocol.Undo{TargetID: id}, true
}

func (r *Replica) load(snap *models.SessionSnapshot) {
	if snap == nil {
		r.logger.Warn("Apply - empty state load ignored")
		return
	}
	if skipped := r.store.Restore(snap); skipped > 0 {
		r.logger.Warn("Apply - state load skipped malformed entries", "skipped", skipped)
	}
	r.history.Seed(CommitOrder(r.store.Snapshot()))
	r.loaded = true
}

func (r *Replica) swallow(m protocol.Message, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, errs.ErrUnknownEntity), errors.Is(err, errs.ErrDuplicateID), errors.Is(err, errs.ErrStrokeClosed):
		r.logger.Debug("Apply - ignored", "event", m.Event(), "err", err)
	default:
		r.logger.Warn("Apply - rejected", "event", m.Event(), "err", err)
	}
}

// Cursors lists remote cursors ordered by participant id.
func (r *Replica) Cursors() []models.RemoteCursor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.RemoteCursor, 0, len(r.cursors))
	for _, c := range r.cursors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out
}

// CommitOrder lists every entity id of the snapshot by creation time, which
// is the order a fresh history is seeded in.
func CommitOrder(snap *models.SessionSnapshot) []string {
	var ids []string
	for _, e := range snap.Entities() {
		ids = append(ids, e.EntityID())
	}
	slices.SortStableFunc(ids, func(a, b string) int {
		switch {
		case models.LessByCreation(a, b):
			return -1
		case models.LessByCreation(b, a):
			return 1
		}
		return 0
	})
	return ids
}
