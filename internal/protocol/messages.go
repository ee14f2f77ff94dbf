// Package protocol defines the messages participants exchange through the
// relay. Every message is self-describing: it names the entity it touches
// and, where needed, carries the full record.
package protocol

import (
	"collabCanvas/internal/enums"
	"collabCanvas/internal/models"
)

// Message is one of the concrete message structs in this file.
type Message interface {
	Event() enums.SocketEvent
	isMessage()
}

// Emitter hands messages to the transport. Emit must not block.
type Emitter interface {
	Emit(Message)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Message)

func (f EmitterFunc) Emit(m Message) { f(m) }

type StrokeBegin struct {
	ID       string             `json:"id"`
	Point    models.Point       `json:"point"`
	Style    models.StrokeStyle `json:"style"`
	AuthorID string             `json:"authorId,omitempty"`
}

type StrokeMove struct {
	ID    string       `json:"id"`
	Point models.Point `json:"point"`
}

type StrokeEnd struct {
	ID string `json:"id"`
}

type ShapeCommit struct {
	Shape *models.Shape
}

type TextCommit struct {
	Text *models.Text
}

type ImageCommit struct {
	Image *models.Image
}

type CursorUpdate struct {
	ParticipantID string       `json:"participantId"`
	Position      models.Point `json:"position"`
	Color         string       `json:"color,omitempty"`
}

// Undo removes TargetID. An empty target means the receiver's most recent
// committed entity; relay rooms resolve it to a concrete target before
// forwarding.
type Undo struct {
	TargetID string `json:"targetId,omitempty"`
}

// Redo carries the whole record so a receiver without history can rebuild it.
type Redo struct {
	Entity models.Entity
}

type StateLoad struct {
	Snapshot *models.SessionSnapshot
}

type Clear struct{}

type ParticipantLeft struct {
	ParticipantID string `json:"participantId"`
}

func (StrokeBegin) Event() enums.SocketEvent     { return enums.SOCKET_EVENT_STROKE_BEGIN }
func (StrokeMove) Event() enums.SocketEvent      { return enums.SOCKET_EVENT_STROKE_MOVE }
func (StrokeEnd) Event() enums.SocketEvent       { return enums.SOCKET_EVENT_STROKE_END }
func (ShapeCommit) Event() enums.SocketEvent     { return enums.SOCKET_EVENT_SHAPE_COMMIT }
func (TextCommit) Event() enums.SocketEvent      { return enums.SOCKET_EVENT_TEXT_COMMIT }
func (ImageCommit) Event() enums.SocketEvent     { return enums.SOCKET_EVENT_IMAGE_COMMIT }
func (CursorUpdate) Event() enums.SocketEvent    { return enums.SOCKET_EVENT_CURSOR_UPDATE }
func (Undo) Event() enums.SocketEvent            { return enums.SOCKET_EVENT_UNDO }
func (Redo) Event() enums.SocketEvent            { return enums.SOCKET_EVENT_REDO }
func (StateLoad) Event() enums.SocketEvent       { return enums.SOCKET_EVENT_STATE_LOAD }
func (Clear) Event() enums.SocketEvent           { return enums.SOCKET_EVENT_CANVAS_CLEAR }
func (ParticipantLeft) Event() enums.SocketEvent { return enums.SOCKET_EVENT_PARTICIPANT_LEFT }

func (StrokeBegin) isMessage()     {}
func (StrokeMove) isMessage()      {}
func (StrokeEnd) isMessage()       {}
func (ShapeCommit) isMessage()     {}
func (TextCommit) isMessage()      {}
func (ImageCommit) isMessage()     {}
func (CursorUpdate) isMessage()    {}
func (Undo) isMessage()            {}
func (Redo) isMessage()            {}
func (StateLoad) isMessage()       {}
func (Clear) isMessage()           {}
func (ParticipantLeft) isMessage() {}

// CommitOf wraps a finished entity in its commit message. Strokes have no
// commit message and yield ok == false.
func CommitOf(e models.Entity) (Message, bool) {
	switch v := e.(type) {
	case *models.Shape:
		return ShapeCommit{Shape: v}, true
	case *models.Text:
		return TextCommit{Text: v}, true
	case *models.Image:
		return ImageCommit{Image: v}, true
	}
	return nil, false
}
