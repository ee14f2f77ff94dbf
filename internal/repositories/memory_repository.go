package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
)

// MemoryRepository keeps boards and saved sessions in process. It backs the
// server when database.enabled is false.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   uint
	boards   map[uint]*models.Board
	sessions map[uint]map[string]*models.SavedSession
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		boards:   make(map[uint]*models.Board),
		sessions: make(map[uint]map[string]*models.SavedSession),
		now:      time.Now,
	}
}

func (mr *MemoryRepository) CreateBoard(_ context.Context, board *models.Board) (*models.Board, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.nextID++
	board.ID = mr.nextID
	board.CreatedAt = mr.now()
	board.UpdatedAt = board.CreatedAt
	stored := *board
	mr.boards[board.ID] = &stored
	return board, nil
}

func (mr *MemoryRepository) FindBoardByID(_ context.Context, id uint) (*models.Board, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	board, ok := mr.boards[id]
	if !ok {
		return nil, errs.ErrBoardNotFound
	}
	found := *board
	return &found, nil
}

func (mr *MemoryRepository) SaveSession(_ context.Context, session *models.SavedSession) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	byName, ok := mr.sessions[session.BoardID]
	if !ok {
		byName = make(map[string]*models.SavedSession)
		mr.sessions[session.BoardID] = byName
	}
	stored := *session
	stored.Snapshot = *session.Snapshot.Clone()
	stored.UpdatedAt = mr.now()
	if prev, ok := byName[session.Name]; ok {
		stored.ID = prev.ID
		stored.CreatedAt = prev.CreatedAt
	} else {
		mr.nextID++
		stored.ID = mr.nextID
		stored.CreatedAt = stored.UpdatedAt
	}
	byName[session.Name] = &stored
	return nil
}

func (mr *MemoryRepository) ListSessions(_ context.Context, boardID uint) ([]models.SavedSession, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	sessions := make([]models.SavedSession, 0, len(mr.sessions[boardID]))
	for _, s := range mr.sessions[boardID] {
		sessions = append(sessions, *s)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions, nil
}

func (mr *MemoryRepository) FindSession(_ context.Context, boardID uint, name string) (*models.SavedSession, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	s, ok := mr.sessions[boardID][name]
	if !ok {
		return nil, errs.ErrSessionNotFound
	}
	found := *s
	found.Snapshot = *s.Snapshot.Clone()
	return &found, nil
}

func (mr *MemoryRepository) DeleteSession(_ context.Context, boardID uint, name string) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if _, ok := mr.sessions[boardID][name]; !ok {
		return errs.ErrSessionNotFound
	}
	delete(mr.sessions[boardID], name)
	return nil
}
