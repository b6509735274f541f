// Package domain defines the persistence models for users, rooms, and
// messages. These types are mapped with GORM and form the core data layer
// of the nearby-chat backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Message kinds. User messages carry chat text typed by a participant;
// system messages are generated by the server (e.g. room notices).
const (
	MessageKindText   = "text"
	MessageKindSystem = "system"
)

// User represents an account in the system. Accounts are anonymous beyond
// an email used for login and an optional public handle shown next to
// messages.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique login identifier, stored lowercase.
//   - PasswordHash: bcrypt hash; never serialized.
//   - Handle: public display name; may be empty until the user picks one.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID           string    `json:"id"      gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"   gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-"       gorm:"type:varchar(255);not null"`
	Handle       string    `json:"handle"  gorm:"type:varchar(64)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Room represents an ephemeral, geographically anchored chat channel.
// Rooms expire a fixed interval after creation and can be deactivated
// early by their creator.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Title / Tag: human-readable name and category label.
//   - CreatorID: owner of the room; only the creator may delete it.
//   - Lat / Lng: WGS84 coordinates the room is anchored to.
//   - ExpiresAt: hard expiry; expired rooms are invisible to discovery.
//   - IsActive: cleared on explicit deletion (soft delete, row retained).
type Room struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Title     string    `json:"title"      gorm:"type:varchar(255);not null"`
	Tag       string    `json:"tag"        gorm:"type:varchar(64);not null"`
	CreatorID string    `json:"creator_id" gorm:"type:char(36);not null;index:idx_creator_rooms"`
	Lat       float64   `json:"lat"        gorm:"not null"`
	Lng       float64   `json:"lng"        gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	IsActive  bool      `json:"is_active"  gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Creator is the owning user. Rooms are removed if the account is.
	Creator User `json:"-" gorm:"foreignKey:CreatorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Room.
func (Room) TableName() string { return "rooms" }

// Open reports whether the room is still usable at the given instant:
// active and not yet expired.
func (r *Room) Open(now time.Time) bool {
	return r.IsActive && r.ExpiresAt.After(now)
}

// Message represents one utterance inside a room. CreatedAt is assigned at
// persistence time and defines the total order of messages within a room.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - RoomID: owning room (indexed together with CreatedAt for history reads).
//   - SenderID: user that sent the message.
//   - Text: message body, bounded length, trimmed.
//   - Kind: "text" or "system".
//   - DeletedAt: soft deletion marker.
type Message struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	RoomID    string         `json:"room_id"   gorm:"type:char(36);not null;index:idx_room_msgs,priority:1"`
	SenderID  string         `json:"sender_id" gorm:"type:char(36);not null"`
	Text      string         `json:"text"      gorm:"type:text;not null"`
	Kind      string         `json:"kind"      gorm:"type:varchar(16);not null;default:'text';check:kind IN ('text','system')"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_room_msgs,priority:2"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`

	// Room is the parent channel. Messages are cascade-deleted with it.
	Room Room `json:"-" gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }
