package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SessionSnapshot is the serializable image of a whole canvas. The field
// names are the persistence format and must not change.
type SessionSnapshot struct {
	Strokes      []*Stroke `json:"strokes"`
	Shapes       []*Shape  `json:"shapes"`
	Texts        []*Text   `json:"texts"`
	Images       []*Image  `json:"images"`
	CanvasWidth  int       `json:"canvasWidth"`
	CanvasHeight int       `json:"canvasHeight"`
	Timestamp    int64     `json:"timestamp"`
}

// NewSessionSnapshot returns an empty snapshot whose arrays encode as [] rather than null.
func NewSessionSnapshot() *SessionSnapshot {
	return &SessionSnapshot{
		Strokes: []*Stroke{},
		Shapes:  []*Shape{},
		Texts:   []*Text{},
		Images:  []*Image{},
	}
}

// Len counts every entity in the snapshot.
func (s *SessionSnapshot) Len() int {
	return len(s.Strokes) + len(s.Shapes) + len(s.Texts) + len(s.Images)
}

// Clone deep-copies the snapshot.
func (s *SessionSnapshot) Clone() *SessionSnapshot {
	c := NewSessionSnapshot()
	c.CanvasWidth, c.CanvasHeight, c.Timestamp = s.CanvasWidth, s.CanvasHeight, s.Timestamp
	for _, st := range s.Strokes {
		c.Strokes = append(c.Strokes, st.Clone())
	}
	for _, sh := range s.Shapes {
		c.Shapes = append(c.Shapes, sh.Clone())
	}
	for _, t := range s.Texts {
		c.Texts = append(c.Texts, t.Clone())
	}
	for _, im := range s.Images {
		c.Images = append(c.Images, im.Clone())
	}
	return c
}

// Entities flattens the snapshot in kind order, each kind in stored order.
func (s *SessionSnapshot) Entities() []Entity {
	out := make([]Entity, 0, s.Len())
	for _, im := range s.Images {
		out = append(out, im)
	}
	for _, st := range s.Strokes {
		out = append(out, st)
	}
	for _, sh := range s.Shapes {
		out = append(out, sh)
	}
	for _, t := range s.Texts {
		out = append(out, t)
	}
	return out
}

// To satisfy postgres jsonb data type
func (s *SessionSnapshot) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, s)
}

func (s SessionSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}
