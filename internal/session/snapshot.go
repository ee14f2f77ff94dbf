// Package session exports and imports whole canvases and decides which
// autosaves are still worth restoring.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
	"collabCanvas/internal/store"
)

// DefaultFreshness is how long an autosave stays eligible for restore.
const DefaultFreshness = 24 * time.Hour

// Export copies the store into a snapshot stamped with now.
func Export(s *store.Store, now time.Time) *models.SessionSnapshot {
	snap := s.Snapshot()
	snap.Timestamp = now.UnixMilli()
	return snap
}

// Import replaces the store contents with snap. A nil snapshot fails with
// ErrInvalidSnapshot and leaves the store untouched.
func Import(s *store.Store, snap *models.SessionSnapshot) error {
	if snap == nil {
		return errs.ErrInvalidSnapshot
	}
	s.Restore(snap)
	return nil
}

// Decode parses a snapshot read from the wire or from disk.
func Decode(data []byte) (*models.SessionSnapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errs.ErrInvalidSnapshot
	}
	snap := models.NewSessionSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidSnapshot, err)
	}
	if snap.CanvasWidth < 0 || snap.CanvasHeight < 0 {
		return nil, fmt.Errorf("%w: negative canvas size", errs.ErrInvalidSnapshot)
	}
	return snap, nil
}

// IsFresh reports whether snap was taken less than window before now.
func IsFresh(snap *models.SessionSnapshot, now time.Time, window time.Duration) bool {
	if snap == nil || snap.Timestamp <= 0 {
		return false
	}
	age := now.Sub(time.UnixMilli(snap.Timestamp))
	return age < window
}
