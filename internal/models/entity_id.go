package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"collabCanvas/internal/enums"

	"github.com/google/uuid"
)

// NewEntityID builds an id of the form {kind}-{unixMillis}-{random}. Ids are
// generated by the participant that creates the entity and are unique
// without coordination.
func NewEntityID(kind enums.EntityKind, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%d-%s", kind, now.UnixMilli(), random)
}

// CreatedAt extracts the creation time in unix milliseconds from an id built
// by NewEntityID. Foreign ids yield ok == false.
func CreatedAt(id string) (int64, bool) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) < 3 {
		return 0, false
	}
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// LessByCreation orders ids by embedded creation time, then lexically.
// Ids without a timestamp sort after those with one.
func LessByCreation(a, b string) bool {
	ta, oka := CreatedAt(a)
	tb, okb := CreatedAt(b)
	switch {
	case oka && okb && ta != tb:
		return ta < tb
	case oka != okb:
		return oka
	}
	return a < b
}
