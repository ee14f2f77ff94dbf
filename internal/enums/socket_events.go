package enums

type SocketEvent string

// Canvas synchronization events, one per protocol message kind.
const (
	SOCKET_EVENT_STROKE_BEGIN     SocketEvent = "stroke-begin"
	SOCKET_EVENT_STROKE_MOVE      SocketEvent = "stroke-move"
	SOCKET_EVENT_STROKE_END       SocketEvent = "stroke-end"
	SOCKET_EVENT_SHAPE_COMMIT     SocketEvent = "shape-commit"
	SOCKET_EVENT_TEXT_COMMIT      SocketEvent = "text-commit"
	SOCKET_EVENT_IMAGE_COMMIT     SocketEvent = "image-commit"
	SOCKET_EVENT_CURSOR_UPDATE    SocketEvent = "cursor-update"
	SOCKET_EVENT_UNDO             SocketEvent = "undo"
	SOCKET_EVENT_REDO             SocketEvent = "redo"
	SOCKET_EVENT_STATE_LOAD       SocketEvent = "state-load"
	SOCKET_EVENT_CANVAS_CLEAR     SocketEvent = "canvas-clear"
	SOCKET_EVENT_PARTICIPANT_LEFT SocketEvent = "participant-left"
)
