package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkaye/rendezvous/internal/core"
	"github.com/mkaye/rendezvous/internal/domain"
)

type sessionEntry struct {
	room   domain.RoomName
	conn   core.SignalConnection
	cancel context.CancelFunc
}

// Registry is the connection registry: it mints session identities and
// answers id -> live connection lookups. The room back-reference it keeps
// per session exists so teardown can find the room to notify.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.SessionID]*sessionEntry)}
}

// Add registers a freshly accepted connection and returns its new identity.
func (r *Registry) Add(conn core.SignalConnection, cancel context.CancelFunc) domain.SessionID {
	sid := domain.NewSessionID()
	r.mu.Lock()
	r.sessions[sid] = &sessionEntry{conn: conn, cancel: cancel}
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("session registered")
	return sid
}

func (r *Registry) Conn(sid domain.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.conn, true
	}
	return nil, false
}

// RoomOf reports the room a session currently occupies. Unknown sessions
// and room-less sessions both answer false.
func (r *Registry) RoomOf(sid domain.SessionID) (domain.RoomName, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.room == "" {
		return "", false
	}
	return e.room, true
}

func (r *Registry) SetRoom(sid domain.SessionID, name domain.RoomName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.room = name
	return true
}

func (r *Registry) ClearRoom(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.room = ""
	}
}

// Remove discards the session record. Idempotent: the second call reports
// existed=false so teardown cannot run twice. The room the session last
// occupied is returned for the departure broadcast.
func (r *Registry) Remove(sid domain.SessionID) (domain.RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return "", false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("session removed")
	return e.room, true
}

// Cancel fires the session's context cancel, forcing its pumps down. Used
// by the backpressure policy to evict a member that cannot keep up.
func (r *Registry) Cancel(sid domain.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.cancel != nil {
		e.cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
