package interfaces

import (
	"context"

	"collabCanvas/internal/models"
)

type BoardRepository interface {
	CreateBoard(ctx context.Context, board *models.Board) (*models.Board, error)
	// FindBoardByID returns errs.ErrBoardNotFound for unknown ids.
	FindBoardByID(ctx context.Context, id uint) (*models.Board, error)
}

type SessionRepository interface {
	// SaveSession replaces an existing session with the same board and name.
	SaveSession(ctx context.Context, session *models.SavedSession) error
	// ListSessions returns a board's sessions newest first.
	ListSessions(ctx context.Context, boardID uint) ([]models.SavedSession, error)
	FindSession(ctx context.Context, boardID uint, name string) (*models.SavedSession, error)
	DeleteSession(ctx context.Context, boardID uint, name string) error
}

// Canvas is the live board state held by the relay.
type Canvas interface {
	Snapshot(ctx context.Context, boardID uint) *models.SessionSnapshot
	Load(ctx context.Context, boardID uint, snap *models.SessionSnapshot) error
}
