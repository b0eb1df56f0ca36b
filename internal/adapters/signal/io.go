package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mkaye/rendezvous/internal/core"
	"github.com/mkaye/rendezvous/internal/domain"
	"github.com/mkaye/rendezvous/internal/protocol"
)

// writePump drains the send queue to the network and keeps the connection
// alive with periodic pings. Its defer closes the connection, which also
// unblocks the read pump when the context is canceled.
func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				log.Error().Str("module", "signal").Err(err).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Str("module", "signal").Err(err).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound frames in order. Every exit path (client close,
// transport error, read-limit violation, cancellation via the write pump)
// funnels through the deferred Disconnect, so a session can never linger as
// a ghost member of a room.
func (ctl *Controller) readPump(ctx context.Context, sid domain.SessionID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.limiter.Forget(sid)
		ctl.Router.Disconnect(sid)
		c.Close()
	}()

	pongWait := ctl.cfg.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Err(err).Msg("readPump read error")
				return
			}
			ctl.dispatch(sid, c, data)
		}
	}
}

// dispatch validates the envelope and routes it. Malformed payloads and
// unknown types are ignored without any reply; the sender is expected to
// notice missing follow-ups, not receive errors.
func (ctl *Controller) dispatch(sid domain.SessionID, c *wsConn, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Err(err).Msg("bad json")
		return
	}

	switch env.Type {
	case protocol.TypeJoin:
		if !ctl.limiter.Allow(sid) {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join rate limited")
			return
		}
		ctl.Router.Join(sid, env.Room)
	case protocol.TypeLeave:
		ctl.Router.Leave(sid)
	case protocol.TypeOffer, protocol.TypeAnswer, protocol.TypeCandidate:
		ctl.Router.Relay(sid, env)
	case protocol.TypePing:
		ctl.sendJSON(c, protocol.NewPong())
	default:
		log.Warn().Str("module", "signal").Str("type", string(env.Type)).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Str("module", "signal").Err(err).Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(core.Frame(b))
}
