package errs

type Error string

func (e Error) Error() string { return string(e) }

// Entity store and protocol
const (
	ErrDuplicateID        = Error("entity id already exists")
	ErrUnknownEntity      = Error("unknown entity")
	ErrStrokeClosed       = Error("stroke is already finalized")
	ErrInvalidSnapshot    = Error("invalid snapshot")
	ErrImageDecodeFailure = Error("image payload could not be decoded")
	ErrImagePending       = Error("image decode pending")
	ErrImageHostBlocked   = Error("image host is not allowed")
	ErrUnknownEvent       = Error("unknown event")
	ErrInvalidPayload     = Error("invalid payload")
	ErrInvalidEntity      = Error("invalid entity record")
)

// Relay and REST
const (
	ErrInvalidRequestBody = Error("invalid request body")
	ErrInvalidRequest     = Error("invalid request")
	ErrInvalidParams      = Error("invalid params")
	ErrUnauthorized       = Error("unauthorized")
	ErrInvalidToken       = Error("invalid token")
	ErrInvalidBoardID     = Error("invalid board id")
	ErrBoardNotFound      = Error("board not found")
	ErrBoardCreation      = Error("board creation failed")
	ErrBoardName          = Error("board name is empty or too long")
	ErrParticipantName    = Error("participant name is empty or too long")
	ErrPasscodeTooShort   = Error("passcode is too short")
	ErrWrongPasscode      = Error("wrong passcode")
	ErrSessionName        = Error("session name is empty or too long")
	ErrSessionNotFound    = Error("session not found")
	ErrAutosaveNotFound   = Error("no fresh autosave")
	ErrFileStorageOff     = Error("file storage is not configured")
	ErrInvalidFile        = Error("invalid file")
	ErrSlowConsumer       = Error("client send buffer is full")
)
