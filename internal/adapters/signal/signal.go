package signal

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mkaye/rendezvous/internal/app"
	"github.com/mkaye/rendezvous/internal/config"
	"github.com/mkaye/rendezvous/internal/core"
)

// Controller owns the websocket endpoint: it upgrades connections, hands
// them to the router for registration, and runs one read/write pump pair
// per session.
type Controller struct {
	Router   *app.Router
	cfg      *config.Config
	limiter  *JoinRateLimiter
	upgrader websocket.Upgrader
}

func NewController(cfg *config.Config, router *app.Router) *Controller {
	return &Controller{
		Router:  router,
		cfg:     cfg,
		limiter: NewJoinRateLimiter(cfg.JoinLimit, cfg.JoinWindow),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// wsConn adapts a *websocket.Conn to core.SignalConnection. Frames are
// queued on a buffered channel drained by the write pump; a full queue
// reports backpressure instead of blocking the caller.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.Mutex
	closed bool
}

func newWSConn(conn *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan core.Frame, buffer),
	}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.conn.Close()
}

// HandleSignal upgrades the request and brings a new session online. The
// client-token cookie set by the HTTP layer is only log correlation; the
// protocol identity is the id minted by the registry.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Str("module", "signal").Err(err).Msg("ws upgrade")
		return
	}

	conn := newWSConn(ws, ctl.cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	sid := ctl.Router.Connect(conn, cancel)
	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("ct", c.GetString("client_token")).Msg("new WS connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
