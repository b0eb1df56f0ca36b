package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkaye/rendezvous/internal/domain"
)

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
}

// RoomManager owns the room table. A single mutex serializes every
// structural transition (create, admit, remove, delete-when-empty), so two
// overlapping leaves on the last members of a room cannot both observe a
// non-empty room. Rooms exist only while they have members.
type RoomManager struct {
	mu    sync.Mutex
	rooms map[domain.RoomName]*Room
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.RoomName]*Room)}
}

// Join admits a session into the named room, creating it lazily, and
// returns the room together with the peer snapshot taken at admission time.
func (m *RoomManager) Join(name domain.RoomName, sid domain.SessionID, conn SignalConnection) (*Room, []domain.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[name]
	if !ok {
		room = newRoom(name)
		m.rooms[name] = room
		log.Info().Str("module", "core.rooms").Str("room", string(name)).Msg("room created")
	}
	peers := room.Peers(sid)
	room.add(sid, conn)
	return room, peers
}

// Leave removes a session from the named room and deletes the room once it
// is empty. The returned room lets the caller notify remaining members;
// removed is false when the session was not a member (idempotent teardown).
func (m *RoomManager) Leave(name domain.RoomName, sid domain.SessionID) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[name]
	if !ok {
		return nil, false
	}
	removed := room.remove(sid)
	if room.MemberCount() == 0 {
		delete(m.rooms, name)
		log.Info().Str("module", "core.rooms").Str("room", string(name)).Msg("room destroyed")
	}
	return room, removed
}

func (m *RoomManager) Get(name domain.RoomName) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[name]
	return room, ok
}

func (m *RoomManager) List() []RoomInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for name, r := range m.rooms {
		out = append(out, RoomInfo{Name: name, MemberCount: r.MemberCount()})
	}
	return out
}
