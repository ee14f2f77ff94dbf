package models

// RemoteCursor is the last known pointer position of another participant.
// It is never part of a snapshot.
type RemoteCursor struct {
	ParticipantID string `json:"participantId"`
	Position      Point  `json:"position"`
	Color         string `json:"color"`
}
