package services

import (
	"context"
	"strings"
	"time"

	"collabCanvas/internal/interfaces"
	"collabCanvas/internal/models"
	"collabCanvas/internal/validators"
)

// SessionService stores named snapshots of live boards and loads them back
// into the relay.
type SessionService struct {
	sessionRepo interfaces.SessionRepository
	canvas      interfaces.Canvas
	now         func() time.Time
}

func NewSessionService(sessionRepo interfaces.SessionRepository, canvas interfaces.Canvas) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		canvas:      canvas,
		now:         time.Now,
	}
}

func (ss *SessionService) SaveSession(ctx context.Context, boardID uint, name string) (*models.SavedSessionInfo, error) {
	name = strings.TrimSpace(name)
	if err := validators.ValidateSessionName(name); err != nil {
		return nil, err
	}
	snap := ss.canvas.Snapshot(ctx, boardID)
	snap.Timestamp = ss.now().UnixMilli()
	saved := &models.SavedSession{BoardID: boardID, Name: name, Snapshot: *snap}
	if err := ss.sessionRepo.SaveSession(ctx, saved); err != nil {
		return nil, err
	}
	info := saved.ToInfo()
	return &info, nil
}

func (ss *SessionService) ListSessions(ctx context.Context, boardID uint) ([]models.SavedSessionInfo, error) {
	sessions, err := ss.sessionRepo.ListSessions(ctx, boardID)
	if err != nil {
		return nil, err
	}
	infos := make([]models.SavedSessionInfo, 0, len(sessions))
	for i := range sessions {
		infos = append(infos, sessions[i].ToInfo())
	}
	return infos, nil
}

// LoadSession replaces the live board with a saved session; every connected
// participant receives it as a state-load.
func (ss *SessionService) LoadSession(ctx context.Context, boardID uint, name string) (*models.SavedSessionInfo, error) {
	saved, err := ss.sessionRepo.FindSession(ctx, boardID, name)
	if err != nil {
		return nil, err
	}
	if err := ss.canvas.Load(ctx, boardID, &saved.Snapshot); err != nil {
		return nil, err
	}
	info := saved.ToInfo()
	return &info, nil
}

func (ss *SessionService) DeleteSession(ctx context.Context, boardID uint, name string) error {
	return ss.sessionRepo.DeleteSession(ctx, boardID, name)
}
