package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"collabCanvas/configs"
	"collabCanvas/internal/interfaces"
	"collabCanvas/internal/models"
	"collabCanvas/internal/utils"
	"collabCanvas/internal/validators"

	"github.com/google/uuid"
)

type BoardService struct {
	boardRepo interfaces.BoardRepository
	config    *configs.Config
	secret    []byte
	now       func() time.Time
}

func NewBoardService(boardRepo interfaces.BoardRepository, config *configs.Config) *BoardService {
	secret := config.Viper.GetString("jwt.secret")
	if secret == "" {
		slog.Warn("NewBoardService - jwt.secret is empty, tokens will not survive a restart")
		secret = utils.GenerateSecretKey()
	}
	return &BoardService{
		boardRepo: boardRepo,
		config:    config,
		secret:    []byte(secret),
		now:       time.Now,
	}
}

// Secret is the key participant tokens are signed with.
func (bs *BoardService) Secret() []byte { return bs.secret }

func (bs *BoardService) CreateBoard(ctx context.Context, req *models.CreateBoardRequest) (*models.Board, []error) {
	if errors := validators.ValidateCreateBoard(req); len(errors) > 0 {
		return nil, errors
	}
	board := &models.Board{
		Name:         strings.TrimSpace(req.Name),
		CanvasWidth:  bs.config.Viper.GetInt("canvas.width"),
		CanvasHeight: bs.config.Viper.GetInt("canvas.height"),
	}
	if req.Passcode != "" {
		hashed, err := utils.HashPasscode(req.Passcode)
		if err != nil {
			return nil, []error{err}
		}
		board.PasscodeHash = hashed
		board.Protected = true
	}
	created, err := bs.boardRepo.CreateBoard(ctx, board)
	if err != nil {
		return nil, []error{err}
	}
	return created, nil
}

func (bs *BoardService) GetBoard(ctx context.Context, id uint) (*models.Board, error) {
	return bs.boardRepo.FindBoardByID(ctx, id)
}

// JoinBoard checks the passcode of a protected board and issues a
// participant token carrying a fresh participant id and cursor color.
func (bs *BoardService) JoinBoard(ctx context.Context, id uint, req *models.JoinBoardRequest) (*models.JoinBoardResponse, []error) {
	if errors := validators.ValidateJoinBoard(req); len(errors) > 0 {
		return nil, errors
	}
	board, err := bs.boardRepo.FindBoardByID(ctx, id)
	if err != nil {
		return nil, []error{err}
	}
	if board.Protected {
		if err := utils.ComparePasscode(board.PasscodeHash, req.Passcode); err != nil {
			return nil, []error{err}
		}
	}

	participantID := uuid.NewString()
	color := utils.ParticipantColor(participantID)
	expiration := bs.now().Add(time.Duration(bs.config.Viper.GetInt("jwt.expiration_time")) * time.Second)
	token, err := utils.CreateParticipantToken(models.Claims{
		ParticipantID: participantID,
		BoardID:       board.ID,
		Name:          strings.TrimSpace(req.Name),
		Color:         color,
	}, bs.secret, expiration)
	if err != nil {
		return nil, []error{err}
	}
	return &models.JoinBoardResponse{
		Token:         token,
		ParticipantID: participantID,
		Color:         color,
		Board:         board,
	}, nil
}
