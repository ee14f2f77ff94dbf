package models

import "gorm.io/gorm"

// SavedSession is a named snapshot of a board, listed newest first.
type SavedSession struct {
	gorm.Model
	BoardID  uint            `gorm:"not null;uniqueIndex:idx_board_session_name" json:"board_id"`
	Name     string          `gorm:"not null;uniqueIndex:idx_board_session_name" json:"name"`
	Snapshot SessionSnapshot `gorm:"type:jsonb" json:"snapshot"`
}

type SaveSessionRequest struct {
	Name string `json:"name"`
}

// SavedSessionInfo is the list view of a saved session without its payload.
type SavedSessionInfo struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
	Entities  int    `json:"entities"`
}

func (s *SavedSession) ToInfo() SavedSessionInfo {
	return SavedSessionInfo{
		Name:      s.Name,
		Timestamp: s.Snapshot.Timestamp,
		Entities:  s.Snapshot.Len(),
	}
}
