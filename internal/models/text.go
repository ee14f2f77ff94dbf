package models

import "collabCanvas/internal/enums"

// Text is a single-line label; Anchor is the left end of its baseline.
type Text struct {
	ID       string  `json:"id"`
	Anchor   Point   `json:"anchor"`
	Content  string  `json:"content"`
	Color    string  `json:"color"`
	FontSize float64 `json:"fontSize"`
	AuthorID string  `json:"authorId,omitempty"`
}

func (t *Text) EntityID() string             { return t.ID }
func (t *Text) EntityKind() enums.EntityKind { return enums.ENTITY_TEXT }
func (t *Text) isEntity()                    {}

func (t *Text) CloneEntity() Entity { return t.Clone() }

func (t *Text) Clone() *Text {
	c := *t
	return &c
}
