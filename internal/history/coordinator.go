// Package history makes committed canvas entities reversible. History is
// shared by the whole board: any participant can undo the most recent
// commit regardless of who authored it.
package history

import (
	"log/slog"
	"slices"
	"sync"

	"collabCanvas/internal/models"
	"collabCanvas/internal/protocol"
	"collabCanvas/internal/store"
)

const DefaultMaxDepth = 100

type Coordinator struct {
	mu        sync.Mutex
	store     *store.Store
	committed []string
	undone    []models.Entity
	maxDepth  int
	emitter   protocol.Emitter
	logger    *slog.Logger
}

type Option func(*Coordinator)

// WithMaxDepth bounds both the committed list and the redo stack.
func WithMaxDepth(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithEmitter sends undo and redo messages for locally initiated reversals.
func WithEmitter(e protocol.Emitter) Option {
	return func(c *Coordinator) { c.emitter = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

func New(s *store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    s,
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit records id as the most recent committed entity. Any commit starts a
// new branch of history, so pending redos are discarded.
func (c *Coordinator) Commit(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushCommitted(id)
	c.undone = c.undone[:0]
}

// Undo removes targetID, or the most recent committed entity still present
// when targetID is empty, and emits the matching undo message. With nothing
// to undo it reports false and changes nothing.
func (c *Coordinator) Undo(targetID string) (protocol.Undo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed, ok := c.undo(targetID)
	if !ok {
		return protocol.Undo{}, false
	}
	msg := protocol.Undo{TargetID: removed.EntityID()}
	c.emit(msg)
	return msg, true
}

// Redo re-inserts the most recently undone record verbatim and emits it in
// full. With nothing undone it reports false.
func (c *Coordinator) Redo() (protocol.Redo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.undone) > 0 {
		last := len(c.undone) - 1
		e := c.undone[last]
		c.undone = c.undone[:last]
		if err := c.store.Insert(e); err != nil {
			c.logger.Debug("Redo - record no longer fits", "id", e.EntityID(), "err", err)
			continue
		}
		c.pushCommitted(e.EntityID())
		msg := protocol.Redo{Entity: e.CloneEntity()}
		c.emit(msg)
		return msg, true
	}
	return protocol.Redo{}, false
}

// ApplyUndo is the remote form of Undo: same effect, nothing emitted. It
// reports the id that was removed.
func (c *Coordinator) ApplyUndo(targetID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.undo(targetID)
	if !ok {
		return "", false
	}
	return e.EntityID(), true
}

// ApplyRedo re-inserts a record received from another participant. A record
// already present is left in place and history is not touched.
func (c *Coordinator) ApplyRedo(e models.Entity) bool {
	if models.IsNil(e) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	created, err := c.store.Upsert(e)
	if err != nil {
		c.logger.Debug("ApplyRedo - insert failed", "id", e.EntityID(), "err", err)
		return false
	}
	id := e.EntityID()
	c.undone = slices.DeleteFunc(c.undone, func(u models.Entity) bool { return u.EntityID() == id })
	if !created {
		return false
	}
	c.pushCommitted(id)
	return true
}

// Reset forgets all history, as after a clear.
func (c *Coordinator) Reset() {
	c.Seed(nil)
}

// Seed replaces history with ids in commit order, as after a state load.
func (c *Coordinator) Seed(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed = c.committed[:0]
	c.undone = c.undone[:0]
	for _, id := range ids {
		c.pushCommitted(id)
	}
}

// Depth reports the sizes of the committed list and the redo stack.
func (c *Coordinator) Depth() (committed, undone int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.committed), len(c.undone)
}

func (c *Coordinator) undo(targetID string) (models.Entity, bool) {
	if targetID == "" {
		for len(c.committed) > 0 {
			last := len(c.committed) - 1
			id := c.committed[last]
			c.committed = c.committed[:last]
			if e, ok := c.store.Take(id); ok {
				c.pushUndone(e)
				return e, true
			}
		}
		return nil, false
	}
	c.committed = slices.DeleteFunc(c.committed, func(id string) bool { return id == targetID })
	e, ok := c.store.Take(targetID)
	if !ok {
		return nil, false
	}
	c.pushUndone(e)
	return e, true
}

func (c *Coordinator) pushCommitted(id string) {
	c.committed = slices.DeleteFunc(c.committed, func(o string) bool { return o == id })
	c.committed = append(c.committed, id)
	if over := len(c.committed) - c.maxDepth; over > 0 {
		c.committed = slices.Delete(c.committed, 0, over)
	}
}

func (c *Coordinator) pushUndone(e models.Entity) {
	c.undone = append(c.undone, e)
	if over := len(c.undone) - c.maxDepth; over > 0 {
		c.undone = slices.Delete(c.undone, 0, over)
	}
}

func (c *Coordinator) emit(m protocol.Message) {
	if c.emitter != nil {
		c.emitter.Emit(m)
	}
}
