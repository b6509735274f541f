package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/nearbychat/server/internal/domain"
	"github.com/nearbychat/server/internal/services"
)

// persistTimeout bounds the storage round trip for one message send. The
// presence lock is never held across this wait.
const persistTimeout = 5 * time.Second

var (
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_active",
		Help: "Current number of admitted websocket connections.",
	})
	wsRoomsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_rooms_with_presence",
		Help: "Current number of rooms with at least one joined connection.",
	})
	wsMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_messages_total",
		Help: "Chat messages processed by outcome (broadcast, dropped).",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(wsConnections, wsRoomsActive, wsMessages)
}

// MessageStore persists a chat message, assigning its identity and creation
// timestamp. It is the only suspension point in the send path.
type MessageStore interface {
	Save(ctx context.Context, roomID, senderID, text string) (*domain.Message, error)
}

// IdentityLookup resolves a user's public display name for message
// enrichment.
type IdentityLookup interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// RoomGuard is the slice of the room service the hub needs: the creator-only
// delete used by the delete-room event. (The room-open precondition on sends
// is enforced inside MessageStore.Save.)
type RoomGuard interface {
	Delete(ctx context.Context, userID, roomID string) error
}

// WSConfig carries the transport tuning the hub hands to its clients.
type WSConfig struct {
	ReadLimit    int64
	SendBuffer   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
	PingInterval time.Duration
}

// Hub owns the set of admitted connections and the presence registry, and
// routes every event: client joins/leaves/sends, disconnect reaping, and
// externally sourced room lifecycle notices. All shared state is guarded by
// hub locks; no lock is held while waiting on storage or the network.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Client

	presence *Registry

	store    MessageStore
	identity IdentityLookup
	rooms    RoomGuard

	cfg WSConfig
	log zerolog.Logger
}

// NewHub wires the hub to its collaborators.
func NewHub(store MessageStore, identity IdentityLookup, rooms RoomGuard, cfg WSConfig, log zerolog.Logger) *Hub {
	return &Hub{
		conns:    make(map[string]*Client),
		presence: NewRegistry(),
		store:    store,
		identity: identity,
		rooms:    rooms,
		cfg:      cfg,
		log:      log.With().Str("component", "hub").Logger(),
	}
}

// Attach admits an upgraded connection whose credential was already
// verified, registers it, and starts its pumps. It returns the new Client;
// the caller keeps no other handle to the session.
func (h *Hub) Attach(conn *websocket.Conn, userID string) *Client {
	c := newClient(h, conn, userID)

	h.mu.Lock()
	h.conns[c.id] = c
	total := len(h.conns)
	h.mu.Unlock()

	wsConnections.Inc()
	c.log.Info().Int("connections", total).Msg("connection admitted")

	go c.writePump()
	go c.readPump()
	return c
}

// unregister reaps a lost connection: it is removed from the connection set
// exactly once, dropped from every room it occupied, and the affected rooms'
// counts are re-broadcast. Duplicate invocations and never-joined
// connections are clean no-ops.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.conns[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c.id)
	c.closed = true
	h.mu.Unlock()
	close(c.send)

	wsConnections.Dec()

	affected := h.presence.Drop(c.id)
	wsRoomsActive.Set(float64(h.presence.ActiveRooms()))
	for room, count := range affected {
		h.broadcastCount(room, count)
	}
	c.log.Info().Int("rooms_left", len(affected)).Msg("connection reaped")
}

// dispatch routes one inbound envelope. Every failure is contained here:
// an error handling one connection's event never reaches another.
func (h *Hub) dispatch(c *Client, env Envelope) {
	switch env.Event {
	case EventJoinRoom:
		if ref, ok := decodeRoomRef(env.Data); ok {
			h.handleJoin(c, ref.Room)
		}
	case EventLeaveRoom:
		if ref, ok := decodeRoomRef(env.Data); ok {
			h.handleLeave(c, ref.Room)
		}
	case EventSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.log.Debug().Err(err).Msg("malformed send-message payload")
			return
		}
		h.handleSend(c, p)
	case EventDeleteRoom:
		if ref, ok := decodeRoomRef(env.Data); ok {
			h.handleDeleteRoom(c, ref.Room)
		}
	default:
		c.log.Debug().Str("event", env.Event).Msg("unknown event")
	}
}

// handleJoin adds the connection to a room. Joins are idempotent: a repeat
// join changes nothing but still triggers the count re-broadcast.
func (h *Hub) handleJoin(c *Client, room string) {
	if room == "" {
		return
	}
	count := h.presence.Join(room, c.id)
	wsRoomsActive.Set(float64(h.presence.ActiveRooms()))
	h.broadcastCount(room, count)
}

// handleLeave removes the connection from a room. Leaving a room with no
// presence entry is a silent no-op.
func (h *Hub) handleLeave(c *Client, room string) {
	count, existed := h.presence.Leave(room, c.id)
	if !existed {
		return
	}
	wsRoomsActive.Set(float64(h.presence.ActiveRooms()))
	h.broadcastCount(room, count)
}

// handleSend runs the message pipeline: validate and persist through the
// store (which assigns the ordering timestamp and checks the room is still
// open), enrich with the sender's display name, then fan out to the room —
// the sender's connection included. Any failure drops the send with a log
// line and no broadcast; delivery is at-most-once by design.
func (h *Hub) handleSend(c *Client, p SendMessagePayload) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	msg, err := h.store.Save(ctx, p.Room, c.userID, p.Text)
	if err != nil {
		wsMessages.WithLabelValues("dropped").Inc()
		if isValidationErr(err) {
			c.log.Debug().Err(err).Str("room", p.Room).Msg("send rejected")
		} else {
			c.log.Error().Err(err).Str("room", p.Room).Msg("message persist failed")
		}
		return
	}

	name, err := h.identity.DisplayName(ctx, c.userID)
	if err != nil {
		// The message is already persisted; deliver with a neutral name
		// rather than dropping it.
		c.log.Warn().Err(err).Msg("display name lookup failed")
		name = "anonymous"
	}

	frame := encodeEvent(EventReceiveMessage, MessagePayload{
		ID:         msg.ID,
		Room:       msg.RoomID,
		SenderID:   msg.SenderID,
		SenderName: name,
		Text:       msg.Text,
		CreatedAt:  msg.CreatedAt,
	})
	h.ToRoom(p.Room, frame)
	wsMessages.WithLabelValues("broadcast").Inc()
}

// handleDeleteRoom processes a creator's delete-room event. The room
// service enforces that only the creator may delete; on success the same
// notification path as the REST delete runs.
func (h *Hub) handleDeleteRoom(c *Client, room string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := h.rooms.Delete(ctx, c.userID, room); err != nil {
		c.log.Debug().Err(err).Str("room", room).Msg("delete-room rejected")
		return
	}
	h.NotifyRoomDeleted(room)
}

// NotifyRoomCreated relays an externally sourced room creation to every
// connection so list views update without re-polling.
func (h *Hub) NotifyRoomCreated(room string) {
	h.ToAll(encodeEvent(EventRoomCreated, RoomRef{Room: room}))
}

// NotifyRoomDeleted relays a room deletion: current members are told first,
// then every connection is force-evicted from the presence entry without
// waiting for explicit leaves, and all connections get the removal notice
// plus a zeroed count.
func (h *Hub) NotifyRoomDeleted(room string) {
	h.ToRoom(room, encodeEvent(EventRoomDeleted, RoomDeletedPayload{Room: room, Reason: "deleted"}))

	evicted := h.presence.Evict(room)
	wsRoomsActive.Set(float64(h.presence.ActiveRooms()))

	h.ToAll(encodeEvent(EventRoomRemoved, RoomRef{Room: room}))
	h.ToAll(encodeEvent(EventRoomUserCount, CountPayload{Room: room, Count: 0}))

	if len(evicted) > 0 {
		h.log.Info().Str("room", room).Int("evicted", len(evicted)).Msg("room deleted")
	}
}

// broadcastCount publishes a room's current count to its members
// (active-users) and to every connection (room-user-count).
func (h *Hub) broadcastCount(room string, count int) {
	payload := CountPayload{Room: room, Count: count}
	h.ToRoom(room, encodeEvent(EventActiveUsers, payload))
	h.ToAll(encodeEvent(EventRoomUserCount, payload))
}

// ToRoom delivers a frame to exactly the connections currently in room.
func (h *Hub) ToRoom(room string, frame []byte) {
	h.ToConnections(h.presence.Members(room), frame)
}

// ToAll delivers a frame to every admitted connection, members or not.
func (h *Hub) ToAll(frame []byte) {
	h.mu.RLock()
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	h.ToConnections(ids, frame)
}

// ToConnections delivers a frame to each listed connection. Delivery is
// fire-and-forget onto each client's queue; a connection mid-teardown or
// with a full queue never aborts delivery to the rest. Clients whose queue
// overflows are reaped, which re-broadcasts the rooms they occupied.
func (h *Hub) ToConnections(ids []string, frame []byte) {
	if frame == nil || len(ids) == 0 {
		return
	}

	var failed []*Client
	for _, id := range ids {
		h.mu.RLock()
		c, ok := h.conns[id]
		if !ok || c.closed {
			h.mu.RUnlock()
			continue
		}
		delivered := false
		select {
		case c.send <- frame:
			delivered = true
		default:
		}
		h.mu.RUnlock()

		if !delivered {
			failed = append(failed, c)
		}
	}

	for _, c := range failed {
		c.log.Warn().Msg("send queue full, dropping connection")
		h.unregister(c)
	}
}

// CountOf reports the current member count of a room.
func (h *Hub) CountOf(room string) int {
	return h.presence.Count(room)
}

// decodeRoomRef accepts both {"room": "id"} objects and bare "id" strings
// for room-referencing events.
func decodeRoomRef(raw json.RawMessage) (RoomRef, bool) {
	var ref RoomRef
	if err := json.Unmarshal(raw, &ref); err == nil && ref.Room != "" {
		return ref, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return RoomRef{Room: s}, true
	}
	return RoomRef{}, false
}

// isValidationErr reports whether err is an expected client-input failure
// rather than an infrastructure one.
func isValidationErr(err error) bool {
	return errors.Is(err, services.ErrEmptyMessage) ||
		errors.Is(err, services.ErrMessageTooLong) ||
		errors.Is(err, services.ErrMissingFields) ||
		errors.Is(err, services.ErrRoomNotFound) ||
		errors.Is(err, services.ErrRoomClosed)
}
