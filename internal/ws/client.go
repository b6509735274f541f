package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client is one admitted websocket connection. Its user id is set once at
// the handshake and immutable afterwards; the rooms it occupies live only
// in the hub's presence registry. A reconnect produces a new Client with a
// new id, never a reused one.
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	// closed is guarded by the hub's connection lock. Once set, nothing may
	// write to send.
	closed bool

	log zerolog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.cfg.SendBuffer),
		log:    hub.log.With().Str("conn_id", id).Str("user_id", userID).Logger(),
	}
}

// ID returns the opaque per-session connection identifier.
func (c *Client) ID() string { return c.id }

// UserID returns the identity verified at the handshake.
func (c *Client) UserID() string { return c.userID }

// readPump consumes inbound frames and dispatches them to the hub. It owns
// the read side of the connection; when it returns — for any reason — the
// connection is considered lost and the hub reaps its presence state.
// Unregister is idempotent, so a transport that signals loss twice is safe.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Malformed frames are dropped silently.
			c.log.Debug().Err(err).Msg("malformed event envelope")
			continue
		}
		c.hub.dispatch(c, env)
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings. It is the only writer to the connection, which gives
// every target per-connection delivery ordering.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
