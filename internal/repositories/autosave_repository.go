package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
	"collabCanvas/internal/session"

	"github.com/redis/go-redis/v9"
)

// AutosaveRepository keeps the latest snapshot of each board in redis. Keys
// expire after ttl, so stale autosaves disappear on their own.
type AutosaveRepository struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewAutosaveRepository(redis *redis.Client, ttl time.Duration) *AutosaveRepository {
	return &AutosaveRepository{
		redis: redis,
		ttl:   ttl,
	}
}

func autosaveKey(boardID uint) string {
	return fmt.Sprintf("canvas:autosave:%d", boardID)
}

func (ar *AutosaveRepository) SaveAutosave(ctx context.Context, boardID uint, snap *models.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return ar.redis.Set(ctx, autosaveKey(boardID), data, ar.ttl).Err()
}

func (ar *AutosaveRepository) LoadAutosave(ctx context.Context, boardID uint) (*models.SessionSnapshot, error) {
	data, err := ar.redis.Get(ctx, autosaveKey(boardID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrAutosaveNotFound
	}
	if err != nil {
		return nil, err
	}
	return session.Decode(data)
}

func (ar *AutosaveRepository) DeleteAutosave(ctx context.Context, boardID uint) error {
	return ar.redis.Del(ctx, autosaveKey(boardID)).Err()
}
