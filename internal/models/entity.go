package models

import "collabCanvas/internal/enums"

// Entity is one addressable drawable: *Stroke, *Shape, *Text or *Image.
// The set is closed; switch on the concrete type to handle every kind.
type Entity interface {
	EntityID() string
	EntityKind() enums.EntityKind
	CloneEntity() Entity
	isEntity()
}

var (
	_ Entity = (*Stroke)(nil)
	_ Entity = (*Shape)(nil)
	_ Entity = (*Text)(nil)
	_ Entity = (*Image)(nil)
)

// IsNil reports whether e is nil or a typed nil pointer.
func IsNil(e Entity) bool {
	switch v := e.(type) {
	case *Stroke:
		return v == nil
	case *Shape:
		return v == nil
	case *Text:
		return v == nil
	case *Image:
		return v == nil
	}
	return e == nil
}
