package models

import (
	"math"

	"collabCanvas/internal/enums"
)

// Shape is a two-point rectangle, circle or line. Only the final geometry
// ever leaves the participant that drew it.
type Shape struct {
	ID       string          `json:"id"`
	Start    Point           `json:"start"`
	End      Point           `json:"end"`
	Color    string          `json:"color"`
	Width    float64         `json:"width"`
	Kind     enums.ShapeKind `json:"kind"`
	AuthorID string          `json:"authorId,omitempty"`
}

func (s *Shape) EntityID() string             { return s.ID }
func (s *Shape) EntityKind() enums.EntityKind { return enums.ENTITY_SHAPE }
func (s *Shape) isEntity()                    {}

func (s *Shape) CloneEntity() Entity { return s.Clone() }

func (s *Shape) Clone() *Shape {
	c := *s
	return &c
}

// Rect is an axis-aligned box with non-negative extent.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the bounding box of the two corner points, normalised to
// its minimum corner.
func (s *Shape) Bounds() Rect {
	return Rect{
		X:      math.Min(s.Start.X, s.End.X),
		Y:      math.Min(s.Start.Y, s.End.Y),
		Width:  math.Abs(s.End.X - s.Start.X),
		Height: math.Abs(s.End.Y - s.Start.Y),
	}
}

// Circle returns the centre of the bounding box and the larger of the two
// half extents, so a non-square drag still yields a circle.
func (s *Shape) Circle() (Point, float64) {
	center := Point{
		X: (s.Start.X + s.End.X) / 2,
		Y: (s.Start.Y + s.End.Y) / 2,
	}
	rx := math.Abs(s.End.X-s.Start.X) / 2
	ry := math.Abs(s.End.Y-s.Start.Y) / 2
	return center, math.Max(rx, ry)
}
