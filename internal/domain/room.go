package domain

import "strings"

// RoomName is a client-supplied, case-sensitive room identifier.
type RoomName string

// NormalizeRoomName trims the raw client input. An empty result means the
// name is unusable and the join must be ignored.
func NormalizeRoomName(raw string) (RoomName, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return RoomName(trimmed), true
}
