package utils

import (
	"hash/fnv"
	"strconv"
)

var cursorPalette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231",
	"#911eb4", "#42d4f4", "#f032e6", "#469990",
	"#9a6324", "#800000", "#808000", "#000075",
}

// ParticipantColor picks a stable cursor color for a participant id.
func ParticipantColor(participantID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(participantID))
	return cursorPalette[h.Sum32()%uint32(len(cursorPalette))]
}

// ParseID parses a positive decimal id from a path parameter.
func ParseID(value string) (uint, bool) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
