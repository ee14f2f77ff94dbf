package repositories

import (
	"context"
	"errors"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"

	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{
		db: db,
	}
}

func (br *BoardRepository) CreateBoard(ctx context.Context, board *models.Board) (*models.Board, error) {
	result := br.db.WithContext(ctx).Create(board)
	if err := result.Error; err != nil {
		return nil, err
	}
	if result.RowsAffected <= 0 {
		return nil, errs.ErrBoardCreation
	}
	return board, nil
}

func (br *BoardRepository) FindBoardByID(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	result := br.db.WithContext(ctx).First(&board, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errs.ErrBoardNotFound
	}
	if err := result.Error; err != nil {
		return nil, err
	}
	return &board, nil
}
