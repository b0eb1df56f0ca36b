package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkaye/rendezvous/internal/domain"
)

// PublishResult reports delivery stats/backpressure to the router.
type PublishResult struct {
	SentTo  int
	Dropped []domain.SessionID
}

// Room is a threadsafe in-memory member set.
// It never closes adapter-owned resources. Structural changes (add/remove)
// go through the RoomManager, which owns room lifecycle.
type Room struct {
	name    domain.RoomName
	mu      sync.RWMutex
	members map[domain.SessionID]SignalConnection
}

func newRoom(name domain.RoomName) *Room {
	return &Room{
		name:    name,
		members: make(map[domain.SessionID]SignalConnection),
	}
}

func (r *Room) Name() domain.RoomName { return r.name }

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Peers returns a snapshot of member ids, excluding one session.
// The result is never nil so it encodes as an empty JSON array.
func (r *Room) Peers(except domain.SessionID) []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SessionID, 0, len(r.members))
	for sid := range r.members {
		if sid == except {
			continue
		}
		out = append(out, sid)
	}
	return out
}

// Broadcast fans a frame out to every member except the originator.
// Members whose connection cannot take the frame right now are skipped;
// there is no buffering or retry.
func (r *Room) Broadcast(from domain.SessionID, f Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, conn := range r.members {
		if sid == from {
			continue
		}
		if err := conn.TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.name)).Str("from", string(from)).
		Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// Unicast delivers a frame to a single member. A target that is not in the
// room, or whose connection is unwritable, yields an error for the caller
// to drop on.
func (r *Room) Unicast(to domain.SessionID, f Frame) error {
	r.mu.RLock()
	conn, ok := r.members[to]
	r.mu.RUnlock()
	if !ok {
		return ErrNotMember
	}
	return conn.TrySend(f)
}

func (r *Room) add(sid domain.SessionID, conn SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[sid] = conn
	log.Info().Str("module", "core.room").Str("room", string(r.name)).Str("sid", string(sid)).Msg("member added")
}

func (r *Room) remove(sid domain.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sid]; !ok {
		return false
	}
	delete(r.members, sid)
	log.Info().Str("module", "core.room").Str("room", string(r.name)).Str("sid", string(sid)).Msg("member removed")
	return true
}
