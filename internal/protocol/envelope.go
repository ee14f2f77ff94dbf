package protocol

import (
	"encoding/json"
	"fmt"

	"collabCanvas/internal/enums"
	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
)

// Envelope is the JSON frame on the websocket and on the broker channel.
type Envelope struct {
	Event   enums.SocketEvent `json:"event"`
	BoardID uint              `json:"boardId,omitempty"`
	Origin  string            `json:"origin,omitempty"`
	Payload json.RawMessage   `json:"payload"`
}

// record is the redo payload: the entity kind plus its full record.
type record struct {
	Kind   enums.EntityKind `json:"kind"`
	Record json.RawMessage  `json:"record"`
}

func NewEnvelope(m Message, boardID uint, origin string) (*Envelope, error) {
	payload, err := encodePayload(m)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Event:   m.Event(),
		BoardID: boardID,
		Origin:  origin,
		Payload: payload,
	}, nil
}

// Encode marshals m into a complete envelope.
func Encode(m Message, boardID uint, origin string) ([]byte, error) {
	env, err := NewEnvelope(m, boardID, origin)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// Decode parses a frame and its payload.
func Decode(data []byte) (*Envelope, Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
	}
	m, err := env.Message()
	if err != nil {
		return &env, nil, err
	}
	return &env, m, nil
}

func encodePayload(m Message) (json.RawMessage, error) {
	var v any
	switch msg := m.(type) {
	case ShapeCommit:
		v = msg.Shape
	case TextCommit:
		v = msg.Text
	case ImageCommit:
		v = msg.Image
	case StateLoad:
		v = msg.Snapshot
	case Redo:
		if msg.Entity == nil {
			return nil, errs.ErrInvalidEntity
		}
		raw, err := json.Marshal(msg.Entity)
		if err != nil {
			return nil, err
		}
		v = record{Kind: msg.Entity.EntityKind(), Record: raw}
	case Clear:
		v = struct{}{}
	default:
		v = msg
	}
	return json.Marshal(v)
}

// Message decodes the payload into the struct named by Event.
func (e *Envelope) Message() (Message, error) {
	switch e.Event {
	case enums.SOCKET_EVENT_STROKE_BEGIN:
		var m StrokeBegin
		if err := unmarshal(e.Payload, &m); err != nil || m.ID == "" {
			return nil, invalid(e.Event, err)
		}
		return m, nil
	case enums.SOCKET_EVENT_STROKE_MOVE:
		var m StrokeMove
		if err := unmarshal(e.Payload, &m); err != nil || m.ID == "" {
			return nil, invalid(e.Event, err)
		}
		return m, nil
	case enums.SOCKET_EVENT_STROKE_END:
		var m StrokeEnd
		if err := unmarshal(e.Payload, &m); err != nil || m.ID == "" {
			return nil, invalid(e.Event, err)
		}
		return m, nil
	case enums.SOCKET_EVENT_SHAPE_COMMIT:
		var s models.Shape
		if err := unmarshal(e.Payload, &s); err != nil || s.ID == "" {
			return nil, invalid(e.Event, err)
		}
		return ShapeCommit{Shape: &s}, nil
	case enums.SOCKET_EVENT_TEXT_COMMIT:
		var t models.Text
		if err := unmarshal(e.Payload, &t); err != nil || t.ID == "" {
			return nil, invalid(e.Event, err)
		}
		return TextCommit{Text: &t}, nil
	case enums.SOCKET_EVENT_IMAGE_COMMIT:
		var i models.Image
		if err := unmarshal(e.Payload, &i); err != nil || i.ID == "" {
			return nil, invalid(e.Event, err)
		}
		return ImageCommit{Image: &i}, nil
	case enums.SOCKET_EVENT_CURSOR_UPDATE:
		var m CursorUpdate
		if err := unmarshal(e.Payload, &m); err != nil {
			return nil, invalid(e.Event, err)
		}
		return m, nil
	case enums.SOCKET_EVENT_UNDO:
		var m Undo
		if err := unmarshal(e.Payload, &m); err != nil {
			return nil, invalid(e.Event, err)
		}
		return m, nil
	case enums.SOCKET_EVENT_REDO:
		var r record
		if err := unmarshal(e.Payload, &r); err != nil {
			return nil, invalid(e.Event, err)
		}
		entity, err := DecodeEntity(r.Kind, r.Record)
		if err != nil {
			return nil, invalid(e.Event, err)
		}
		return Redo{Entity: entity}, nil
	case enums.SOCKET_EVENT_STATE_LOAD:
		var snap models.SessionSnapshot
		if err := unmarshal(e.Payload, &snap); err != nil {
			return nil, invalid(e.Event, err)
		}
		return StateLoad{Snapshot: &snap}, nil
	case enums.SOCKET_EVENT_CANVAS_CLEAR:
		return Clear{}, nil
	case enums.SOCKET_EVENT_PARTICIPANT_LEFT:
		var m ParticipantLeft
		if err := unmarshal(e.Payload, &m); err != nil {
			return nil, invalid(e.Event, err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", errs.ErrUnknownEvent, e.Event)
}

// DecodeEntity rebuilds an entity record of the given kind.
func DecodeEntity(kind enums.EntityKind, raw json.RawMessage) (models.Entity, error) {
	var e models.Entity
	switch kind {
	case enums.ENTITY_STROKE:
		e = &models.Stroke{}
	case enums.ENTITY_SHAPE:
		e = &models.Shape{}
	case enums.ENTITY_TEXT:
		e = &models.Text{}
	case enums.ENTITY_IMAGE:
		e = &models.Image{}
	default:
		return nil, errs.ErrInvalidEntity
	}
	if err := unmarshal(raw, e); err != nil {
		return nil, err
	}
	if e.EntityID() == "" {
		return nil, errs.ErrInvalidEntity
	}
	return e, nil
}

func unmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errs.ErrInvalidPayload
	}
	return json.Unmarshal(raw, v)
}

func invalid(event enums.SocketEvent, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", errs.ErrInvalidPayload, event)
	}
	return fmt.Errorf("%w: %s: %v", errs.ErrInvalidPayload, event, err)
}
