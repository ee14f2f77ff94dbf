package models

import "collabCanvas/internal/enums"

// Stroke is a freehand brush or eraser path. Its points only ever grow
// while Closed is false.
type Stroke struct {
	ID       string     `json:"id"`
	Points   Points     `json:"points"`
	Color    string     `json:"color"`
	Width    float64    `json:"width"`
	Tool     enums.Tool `json:"tool"`
	AuthorID string     `json:"authorId,omitempty"`
	Closed   bool       `json:"closed"`
}

func (s *Stroke) EntityID() string             { return s.ID }
func (s *Stroke) EntityKind() enums.EntityKind { return enums.ENTITY_STROKE }
func (s *Stroke) isEntity()                    {}

func (s *Stroke) CloneEntity() Entity { return s.Clone() }

func (s *Stroke) Clone() *Stroke {
	c := *s
	c.Points = s.Points.Clone()
	return &c
}

// IsEraser reports whether the stroke removes pixels instead of painting.
func (s *Stroke) IsEraser() bool {
	return s.Tool == enums.TOOL_ERASER
}

// StrokeStyle is the UI configuration captured when a stroke begins.
type StrokeStyle struct {
	Color string     `json:"color"`
	Width float64    `json:"width"`
	Tool  enums.Tool `json:"tool"`
}
