package multiplayer

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"typerace/internal/app/directory"
	"typerace/internal/app/protocol"
	"typerace/internal/app/race"
	"typerace/internal/app/session"
	"typerace/internal/pkg/logx"
)

// DefaultEventTimeout bounds the work done for one inbound event.
const DefaultEventTimeout = 30 * time.Second

// TokenVerifier resolves an identity token to a user id.
type TokenVerifier func(token string) (userID string, err error)

// Hub owns the session registry and routes events from every Client.
type Hub struct {
	registry *session.Registry
	races    *race.Service
	users    directory.Directory

	verify       TokenVerifier
	requireToken bool
	eventTimeout time.Duration
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger zerolog.Logger
}

// Option customizes a Hub.
type Option func(*Hub)

// WithTokenVerifier accepts identity tokens in authenticate payloads. When
// required is set, a connection must prove its identity with a token either at
// upgrade or in authenticate.
func WithTokenVerifier(verify TokenVerifier, required bool) Option {
	return func(h *Hub) {
		h.verify = verify
		h.requireToken = required
	}
}

// WithEventTimeout overrides DefaultEventTimeout.
func WithEventTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.eventTimeout = d
		}
	}
}

// WithClock overrides the time source used in event timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// NewHub returns a Hub with its own registry.
func NewHub(races *race.Service, users directory.Directory, opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		registry:     session.NewRegistry(),
		races:        races,
		users:        users,
		eventTimeout: DefaultEventTimeout,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logx.Component("multiplayer"),
	}

	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Registry exposes the session registry.
func (h *Hub) Registry() *session.Registry { return h.registry }

// Serve runs a connection until it closes. tokenUserID is the identity proven
// during the upgrade, or empty.
func (h *Hub) Serve(conn *websocket.Conn, tokenUserID string) {
	if h.ctx.Err() != nil {
		_ = conn.Close()
		return
	}

	c := newClient(h, conn, tokenUserID)
	h.registry.Register(c)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		c.WritePump()
	}()

	c.logger.Info().Str("token_user_id", tokenUserID).Msg("WebSocket connection established")

	defer h.wg.Done()
	c.ReadPump()
}

// Shutdown closes every connection without touching room state and waits for
// the pumps to exit or ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.logger.Info().Msg("Shutting down multiplayer hub...")
	h.cancel()

	for _, conn := range h.registry.Connections() {
		if c, ok := conn.(*Client); ok {
			c.closeWith(websocket.CloseGoingAway, "server shutting down")
		}
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info().Msg("Multiplayer hub shutdown complete.")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// disconnect runs when a connection's read loop ends.
func (h *Hub) disconnect(c *Client) {
	d, ok := h.registry.Remove(c.id)
	if !ok {
		return
	}

	c.logger.Info().
		Str("user_id", d.UserID).
		Str("room_code", d.RoomCode).
		Bool("last_connection", d.LastConnection).
		Msg("Client disconnected")

	if d.UserID == "" || d.RoomCode == "" || !d.LastConnection {
		return
	}
	if h.ctx.Err() != nil {
		return
	}

	if d.Remaining > 0 {
		h.broadcast(d.RoomCode, protocol.EventPlayerDisconnected, protocol.PlayerDisconnected{UserID: d.UserID, Name: d.Name})
	}

	ctx, cancel := context.WithTimeout(h.ctx, h.eventTimeout)
	defer cancel()

	reason, cancelled, err := h.races.HandleDisconnect(ctx, d.RoomCode, d.UserID)
	if err != nil {
		c.logger.Error().Err(err).Str("room_code", d.RoomCode).Msg("Disconnect handling failed")
		return
	}
	if cancelled {
		h.broadcast(d.RoomCode, protocol.EventGameCancelled, protocol.GameCancelled{RoomID: d.RoomCode, Reason: reason})
	}
}
