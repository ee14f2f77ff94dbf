package models

import "collabCanvas/internal/enums"

// Image places an encoded raster at Anchor. Payload is either a data URL or
// a URL of an uploaded blob; the engine never looks inside it.
type Image struct {
	ID       string  `json:"id"`
	Anchor   Point   `json:"anchor"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Payload  string  `json:"payload"`
	AuthorID string  `json:"authorId,omitempty"`
}

func (i *Image) EntityID() string             { return i.ID }
func (i *Image) EntityKind() enums.EntityKind { return enums.ENTITY_IMAGE }
func (i *Image) isEntity()                    {}

func (i *Image) CloneEntity() Entity { return i.Clone() }

func (i *Image) Clone() *Image {
	c := *i
	return &c
}
