package repositories

import (
	"context"
	"errors"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

func (sr *SessionRepository) SaveSession(ctx context.Context, session *models.SavedSession) error {
	return sr.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "board_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot", "updated_at"}),
	}).Create(session).Error
}

func (sr *SessionRepository) ListSessions(ctx context.Context, boardID uint) ([]models.SavedSession, error) {
	var sessions []models.SavedSession
	result := sr.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("updated_at desc").
		Find(&sessions)
	if err := result.Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (sr *SessionRepository) FindSession(ctx context.Context, boardID uint, name string) (*models.SavedSession, error) {
	var session models.SavedSession
	result := sr.db.WithContext(ctx).
		Where("board_id = ? AND name = ?", boardID, name).
		First(&session)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errs.ErrSessionNotFound
	}
	if err := result.Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (sr *SessionRepository) DeleteSession(ctx context.Context, boardID uint, name string) error {
	result := sr.db.WithContext(ctx).Unscoped().
		Where("board_id = ? AND name = ?", boardID, name).
		Delete(&models.SavedSession{})
	if err := result.Error; err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return errs.ErrSessionNotFound
	}
	return nil
}
