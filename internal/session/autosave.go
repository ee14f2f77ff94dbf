package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
	"collabCanvas/internal/store"
)

type AutosaveRepository interface {
	SaveAutosave(ctx context.Context, boardID uint, snap *models.SessionSnapshot) error
	// LoadAutosave returns errs.ErrAutosaveNotFound when nothing is stored.
	LoadAutosave(ctx context.Context, boardID uint) (*models.SessionSnapshot, error)
	DeleteAutosave(ctx context.Context, boardID uint) error
}

// Autosaver writes board snapshots to a repository and restores them while
// they are fresh.
type Autosaver struct {
	repo   AutosaveRepository
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

func NewAutosaver(repo AutosaveRepository, window time.Duration, logger *slog.Logger) *Autosaver {
	if window <= 0 {
		window = DefaultFreshness
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Autosaver{repo: repo, window: window, now: time.Now, logger: logger}
}

func (a *Autosaver) Save(ctx context.Context, boardID uint, s *store.Store) error {
	return a.repo.SaveAutosave(ctx, boardID, Export(s, a.now()))
}

// Restore imports the board's autosave into s if one exists and is fresh.
// Stale autosaves are deleted without being read into the store.
func (a *Autosaver) Restore(ctx context.Context, boardID uint, s *store.Store) (bool, error) {
	snap, err := a.repo.LoadAutosave(ctx, boardID)
	if errors.Is(err, errs.ErrAutosaveNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !IsFresh(snap, a.now(), a.window) {
		a.logger.Info("Restore - discarding stale autosave", "board", boardID, "timestamp", snap.Timestamp)
		return false, a.repo.DeleteAutosave(ctx, boardID)
	}
	if err := Import(s, snap); err != nil {
		return false, err
	}
	return true, nil
}
