// Package domain contains entity without logic, just meta-data
package domain

import "github.com/google/uuid"

// SessionID identifies one connected client for the life of its connection.
// IDs are minted server-side and never reused while the process runs.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}
