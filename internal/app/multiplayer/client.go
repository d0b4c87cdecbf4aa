/*
Package multiplayer runs the real-time race protocol: a Client per WebSocket connection,
and a Hub that owns the session registry and routes every inbound event to the race service.

This file holds the Client, its read and write pumps and its outbound helpers.
*/
package multiplayer

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"typerace/internal/app/protocol"
	"typerace/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	sendQueueSize = 256
)

// Client is one WebSocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	// tokenUserID is the identity proven at upgrade time, empty when none was presented.
	tokenUserID string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	logger zerolog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, tokenUserID string) *Client {
	id := randx.ID()
	return &Client{
		id:          id,
		hub:         hub,
		conn:        conn,
		tokenUserID: tokenUserID,
		send:        make(chan []byte, sendQueueSize),
		done:        make(chan struct{}),
		logger:      hub.logger.With().Str("conn_id", id).Logger(),
	}
}

// ID implements session.Conn.
func (c *Client) ID() string { return c.id }

// Send queues a frame without blocking. It returns false once the client is
// closed or its queue is full.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return false
	}
}

// close stops the write pump. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// closeWith sends a close frame and tears the connection down, which ends ReadPump.
func (c *Client) closeWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send close frame")
	}
	c.close()
	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// sendEvent encodes and queues one server event.
func (c *Client) sendEvent(event string, data any) {
	frame, err := protocol.Encode(event, data)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Failed to encode event")
		return
	}
	c.Send(frame)
}

func (c *Client) sendAck(ackID string, ack protocol.Ack) {
	frame, err := protocol.EncodeAck(ackID, ack)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to encode ack")
		return
	}
	c.Send(frame)
}

// ReadPump reads frames until the connection fails, handling them in order.
// The disconnect bookkeeping runs when it returns.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.disconnect(c)
		c.close()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			return
		}

		c.hub.handle(c, frame)
	}
}

// WritePump drains the send queue to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message := <-c.send:
			if !c.write(websocket.TextMessage, message) {
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}

		case <-c.done:
			c.flush()
			return
		}
	}
}

// flush writes whatever is still queued, so a final error or cancel notice reaches the peer.
func (c *Client) flush() {
	for {
		select {
		case message := <-c.send:
			if !c.write(websocket.TextMessage, message) {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Debug().Err(err).Int("message_type", messageType).Msg("Error writing message")
		return false
	}
	return true
}
