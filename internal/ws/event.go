// Package ws implements the realtime core: the connection gate's admitted
// clients, the room presence registry, and the hub that fans chat messages
// and room lifecycle notifications out to connections.
//
// This file defines the wire protocol. Every frame in either direction is a
// JSON envelope {"event": <name>, "data": <payload>}. Event names are part
// of the public contract and must stay stable.
package ws

import (
	"encoding/json"
	"time"
)

// Server-emitted events.
const (
	// EventActiveUsers carries {room, count} to the members of a room after
	// any presence change in it.
	EventActiveUsers = "active-users"

	// EventRoomUserCount carries {room, count} to every connection so room
	// list views can update without joining.
	EventRoomUserCount = "room-user-count"

	// EventReceiveMessage carries a persisted, sender-enriched chat message
	// to the members of its room.
	EventReceiveMessage = "receive-message"

	// EventRoomCreated announces a new room to every connection.
	EventRoomCreated = "room-created"

	// EventRoomDeleted tells the members of a room it was deleted.
	EventRoomDeleted = "room-deleted"

	// EventRoomRemoved tells every connection to drop a room from list views.
	EventRoomRemoved = "room-removed"
)

// Client-originated events.
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
	EventDeleteRoom  = "delete-room"
)

// Envelope is the frame wrapper for both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomRef identifies a room in join-room, leave-room, delete-room,
// room-created, and room-removed payloads.
type RoomRef struct {
	Room string `json:"room"`
}

// SendMessagePayload is the client payload for send-message.
type SendMessagePayload struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

// CountPayload is the payload for active-users and room-user-count.
type CountPayload struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
}

// RoomDeletedPayload is the payload for room-deleted.
type RoomDeletedPayload struct {
	Room   string `json:"room"`
	Reason string `json:"reason"`
}

// MessagePayload is the payload for receive-message. SenderName is
// denormalized at send time so receivers never need a second lookup.
type MessagePayload struct {
	ID         string    `json:"id"`
	Room       string    `json:"room"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// encodeEvent marshals an envelope with the given payload. Payload types in
// this package marshal without error; a failure here is a programming bug,
// so callers treat a nil return as "skip".
func encodeEvent(event string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil
	}
	return frame
}
