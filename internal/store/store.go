// Package store holds the authoritative set of drawable entities of one
// canvas. Every participant and every relay room owns one Store.
package store

import (
	"sync"

	"collabCanvas/internal/enums"
	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
)

// collection keeps one entity kind in insertion order.
type collection[T models.Entity] struct {
	items map[string]T
	order []string
}

func newCollection[T models.Entity]() collection[T] {
	return collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) put(v T) {
	id := v.EntityID()
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[T]) remove(id string) (T, bool) {
	v, ok := c.items[id]
	if !ok {
		return v, false
	}
	delete(c.items, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return v, true
}

func (c *collection[T]) each(fn func(T)) {
	for _, id := range c.order {
		fn(c.items[id])
	}
}

// state is swapped as a whole by Clear and Restore.
type state struct {
	strokes collection[*models.Stroke]
	shapes  collection[*models.Shape]
	texts   collection[*models.Text]
	images  collection[*models.Image]
	kinds   map[string]enums.EntityKind
}

func newState() *state {
	return &state{
		strokes: newCollection[*models.Stroke](),
		shapes:  newCollection[*models.Shape](),
		texts:   newCollection[*models.Text](),
		images:  newCollection[*models.Image](),
		kinds:   make(map[string]enums.EntityKind),
	}
}

type Store struct {
	mu       sync.RWMutex
	st       *state
	width    int
	height   int
	revision uint64
}

func New() *Store {
	return &Store{st: newState()}
}

// BeginStroke opens a new stroke holding only its first point.
func (s *Store) BeginStroke(id string, first models.Point, style models.StrokeStyle, authorID string) error {
	if id == "" {
		return errs.ErrInvalidEntity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.kinds[id]; ok {
		return errs.ErrDuplicateID
	}
	s.st.strokes.put(&models.Stroke{
		ID:       id,
		Points:   models.Points{first},
		Color:    style.Color,
		Width:    style.Width,
		Tool:     style.Tool,
		AuthorID: authorID,
	})
	s.st.kinds[id] = enums.ENTITY_STROKE
	s.revision++
	return nil
}

// AppendPoint extends an open stroke. A missing stroke is an expected race
// with undo or clear and reports ErrUnknownEntity.
func (s *Store) AppendPoint(id string, p models.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stroke, ok := s.st.strokes.items[id]
	if !ok {
		return errs.ErrUnknownEntity
	}
	if stroke.Closed {
		return errs.ErrStrokeClosed
	}
	stroke.Points = append(stroke.Points, p)
	s.revision++
	return nil
}

// FinalizeStroke closes a stroke. Closing an already closed stroke is a no-op.
func (s *Store) FinalizeStroke(id string) error {
	_, err := s.CloseStroke(id)
	return err
}

// CloseStroke is FinalizeStroke reporting whether the stroke was still open.
func (s *Store) CloseStroke(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stroke, ok := s.st.strokes.items[id]
	if !ok {
		return false, errs.ErrUnknownEntity
	}
	if stroke.Closed {
		return false, nil
	}
	stroke.Closed = true
	s.revision++
	return true, nil
}

func (s *Store) PutStroke(stroke *models.Stroke) error { return s.Insert(stroke) }
func (s *Store) PutShape(shape *models.Shape) error    { return s.Insert(shape) }
func (s *Store) PutText(text *models.Text) error       { return s.Insert(text) }
func (s *Store) PutImage(image *models.Image) error    { return s.Insert(image) }

// Insert upserts a copy of e by id. Reusing an id for a different kind is
// rejected with ErrDuplicateID.
func (s *Store) Insert(e models.Entity) error {
	_, err := s.Upsert(e)
	return err
}

// Upsert is Insert reporting whether the id was new to the store.
func (s *Store) Upsert(e models.Entity) (bool, error) {
	if models.IsNil(e) || e.EntityID() == "" {
		return false, errs.ErrInvalidEntity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kind, exists := s.st.kinds[e.EntityID()]
	if exists && kind != e.EntityKind() {
		return false, errs.ErrDuplicateID
	}
	s.st.insert(e.CloneEntity())
	s.revision++
	return !exists, nil
}

func (st *state) insert(e models.Entity) {
	switch v := e.(type) {
	case *models.Stroke:
		st.strokes.put(v)
	case *models.Shape:
		st.shapes.put(v)
	case *models.Text:
		st.texts.put(v)
	case *models.Image:
		st.images.put(v)
	default:
		return
	}
	st.kinds[e.EntityID()] = e.EntityKind()
}

// Get returns a copy of the entity stored under id.
func (s *Store) Get(id string) (models.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		e  models.Entity
		ok bool
	)
	switch s.st.kinds[id] {
	case enums.ENTITY_STROKE:
		e, ok = s.st.strokes.items[id]
	case enums.ENTITY_SHAPE:
		e, ok = s.st.shapes.items[id]
	case enums.ENTITY_TEXT:
		e, ok = s.st.texts.items[id]
	case enums.ENTITY_IMAGE:
		e, ok = s.st.images.items[id]
	}
	if !ok {
		return nil, false
	}
	return e.CloneEntity(), true
}

func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.st.kinds[id]
	return ok
}

// Remove deletes the entity with the given id from whichever kind holds it.
func (s *Store) Remove(id string) bool {
	_, ok := s.Take(id)
	return ok
}

// Take removes the entity and hands back the removed record.
func (s *Store) Take(id string) (models.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind, ok := s.st.kinds[id]
	if !ok {
		return nil, false
	}
	var e models.Entity
	switch kind {
	case enums.ENTITY_STROKE:
		e, _ = s.st.strokes.remove(id)
	case enums.ENTITY_SHAPE:
		e, _ = s.st.shapes.remove(id)
	case enums.ENTITY_TEXT:
		e, _ = s.st.texts.remove(id)
	case enums.ENTITY_IMAGE:
		e, _ = s.st.images.remove(id)
	}
	delete(s.st.kinds, id)
	s.revision++
	return e, true
}

// Clear empties every kind in a single swap.
func (s *Store) Clear() {
	fresh := newState()
	s.mu.Lock()
	s.st = fresh
	s.revision++
	s.mu.Unlock()
}

// Snapshot deep-copies the current contents, each kind in insertion order.
func (s *Store) Snapshot() *models.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := models.NewSessionSnapshot()
	snap.CanvasWidth, snap.CanvasHeight = s.width, s.height
	s.st.strokes.each(func(v *models.Stroke) { snap.Strokes = append(snap.Strokes, v.Clone()) })
	s.st.shapes.each(func(v *models.Shape) { snap.Shapes = append(snap.Shapes, v.Clone()) })
	s.st.texts.each(func(v *models.Text) { snap.Texts = append(snap.Texts, v.Clone()) })
	s.st.images.each(func(v *models.Image) { snap.Images = append(snap.Images, v.Clone()) })
	return snap
}

// Restore replaces the whole contents with the snapshot's entities. Entries
// without an id, and repeated ids after the first, are skipped. It returns
// the number of skipped entries.
func (s *Store) Restore(snap *models.SessionSnapshot) int {
	fresh := newState()
	skipped := 0
	if snap != nil {
		for _, e := range snap.Entities() {
			if models.IsNil(e) || e.EntityID() == "" {
				skipped++
				continue
			}
			if _, ok := fresh.kinds[e.EntityID()]; ok {
				skipped++
				continue
			}
			fresh.insert(e.CloneEntity())
		}
	}
	s.mu.Lock()
	s.st = fresh
	if snap != nil && snap.CanvasWidth > 0 && snap.CanvasHeight > 0 {
		s.width, s.height = snap.CanvasWidth, snap.CanvasHeight
	}
	s.revision++
	s.mu.Unlock()
	return skipped
}

func (s *Store) SetCanvasSize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

func (s *Store) CanvasSize() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// Revision increases on every mutation; renderers use it to skip redundant frames.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.st.kinds)
}
