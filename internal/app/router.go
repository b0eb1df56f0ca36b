package app

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mkaye/rendezvous/internal/core"
	"github.com/mkaye/rendezvous/internal/domain"
	"github.com/mkaye/rendezvous/internal/protocol"
)

// Router implements room membership transitions and message fan-out on top
// of the Registry and the room table. Every failure path degrades to a
// logged no-op; the protocol never surfaces errors to the sender.
type Router struct {
	Registry *Registry
	Rooms    *core.RoomManager
	Policy   Policy
}

func NewRouter(reg *Registry, rooms *core.RoomManager) *Router {
	return &Router{
		Registry: reg,
		Rooms:    rooms,
		Policy:   SimplePolicy{},
	}
}

// Connect registers a new connection and pushes the welcome with its minted
// identity. The welcome is queued before any pump dispatches inbound
// messages, so it is always the first frame a client sees.
func (ro *Router) Connect(conn core.SignalConnection, cancel context.CancelFunc) domain.SessionID {
	sid := ro.Registry.Add(conn, cancel)
	ro.send(conn, protocol.NewWelcome(sid))
	return sid
}

// Join admits a session into a room, answering with the peer snapshot and
// announcing the arrival to existing members. A session already in a room
// departs it first, so membership stays exclusive.
func (ro *Router) Join(sid domain.SessionID, rawName string) bool {
	name, ok := domain.NormalizeRoomName(rawName)
	if !ok {
		log.Debug().Str("module", "app.router").Str("sid", string(sid)).Msg("join ignored: blank room name")
		return false
	}
	conn, ok := ro.Registry.Conn(sid)
	if !ok {
		return false
	}
	if current, ok := ro.Registry.RoomOf(sid); ok {
		ro.Registry.ClearRoom(sid)
		ro.departRoom(sid, current)
		log.Info().Str("module", "app.router").Str("sid", string(sid)).Str("from_room", string(current)).Msg("left previous room on join")
	}
	room, peers := ro.Rooms.Join(name, sid, conn)
	ro.Registry.SetRoom(sid, name)
	log.Info().Str("module", "app.router").Str("sid", string(sid)).Str("room", string(name)).Int("peers", len(peers)).Msg("joined room")
	ro.send(conn, protocol.NewPeers(peers, name))
	ro.broadcast(room, sid, protocol.NewPeerJoined(sid))
	return true
}

// Relay forwards an offer/answer/candidate to its target, stamping the
// sender identity. Dropped silently when the sender is room-less, the
// target is unknown or in another room, or the target is unwritable: stale
// target references are benign races, not errors.
func (ro *Router) Relay(sid domain.SessionID, env protocol.Envelope) bool {
	name, ok := ro.Registry.RoomOf(sid)
	if !ok {
		log.Debug().Str("module", "app.router").Str("sid", string(sid)).Str("type", string(env.Type)).Msg("relay dropped: sender not in a room")
		return false
	}
	room, ok := ro.Rooms.Get(name)
	if !ok {
		return false
	}
	frame := encode(protocol.NewRelay(env, sid))
	if frame == nil {
		return false
	}
	if err := room.Unicast(env.Target, frame); err != nil {
		log.Debug().Str("module", "app.router").Str("sid", string(sid)).Str("target", string(env.Target)).
			Str("type", string(env.Type)).Err(err).Msg("relay dropped")
		return false
	}
	return true
}

// Leave takes a session out of its room and tells the remaining members.
// No-op for room-less sessions.
func (ro *Router) Leave(sid domain.SessionID) bool {
	name, ok := ro.Registry.RoomOf(sid)
	if !ok {
		return false
	}
	ro.Registry.ClearRoom(sid)
	ro.departRoom(sid, name)
	return true
}

// Disconnect is the single teardown funnel for explicit closes, transport
// errors and timeouts alike. Safe to call more than once per session.
func (ro *Router) Disconnect(sid domain.SessionID) {
	room, existed := ro.Registry.Remove(sid)
	if !existed {
		return
	}
	if room != "" {
		ro.departRoom(sid, room)
	}
}

func (ro *Router) departRoom(sid domain.SessionID, name domain.RoomName) {
	room, removed := ro.Rooms.Leave(name, sid)
	if !removed {
		return
	}
	ro.broadcast(room, sid, protocol.NewPeerLeft(sid))
}

func (ro *Router) broadcast(room *core.Room, from domain.SessionID, v any) {
	frame := encode(v)
	if frame == nil {
		return
	}
	res := room.Broadcast(from, frame)
	if ro.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch ro.Policy.OnBackpressure(room, slow) {
		case KickMember:
			ro.Registry.Cancel(slow)
		case NoAction, DropFrame:
		}
	}
}

func (ro *Router) send(conn core.SignalConnection, v any) {
	frame := encode(v)
	if frame == nil {
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Debug().Str("module", "app.router").Err(err).Msg("unicast skipped")
	}
}

func encode(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Str("module", "app.router").Err(err).Msg("encode message")
		return nil
	}
	return core.Frame(b)
}
