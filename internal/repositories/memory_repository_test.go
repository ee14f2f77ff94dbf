package repositories

import (
	"context"
	"testing"
	"time"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBoards(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	board, err := repo.CreateBoard(ctx, &models.Board{Name: "retro"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), board.ID)

	found, err := repo.FindBoardByID(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, "retro", found.Name)

	_, err = repo.FindBoardByID(ctx, 99)
	assert.ErrorIs(t, err, errs.ErrBoardNotFound)
}

func TestMemorySessionsNewestFirstAndReplaced(t *testing.T) {
	repo := NewMemoryRepository()
	ms := int64(0)
	repo.now = func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}
	ctx := context.Background()

	for _, name := range []string{"first", "second", "first"} {
		snap := models.NewSessionSnapshot()
		snap.Timestamp = ms
		require.NoError(t, repo.SaveSession(ctx, &models.SavedSession{BoardID: 1, Name: name, Snapshot: *snap}))
	}

	sessions, err := repo.ListSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "first", sessions[0].Name)
	assert.Equal(t, "second", sessions[1].Name)

	require.NoError(t, repo.DeleteSession(ctx, 1, "first"))
	assert.ErrorIs(t, repo.DeleteSession(ctx, 1, "first"), errs.ErrSessionNotFound)
	_, err = repo.FindSession(ctx, 1, "first")
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}
