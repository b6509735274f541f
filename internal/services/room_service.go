// Package services – RoomService
//
// This file implements room lifecycle and discovery. Rooms are ephemeral:
// they expire RoomTTL after creation and can be deactivated early by their
// creator. Discovery filters open rooms to a radius around the caller's
// position with a haversine distance check; the set of open rooms is small
// enough that filtering in process beats pushing geo math into SQLite.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nearbychat/server/internal/domain"
	"github.com/nearbychat/server/internal/geo"
	"github.com/nearbychat/server/internal/repo"
)

// NearbyRoom pairs a room with its distance from the query position.
type NearbyRoom struct {
	domain.Room
	DistanceKm float64 `json:"distance_km"`
}

// RoomService provides room creation, discovery, and deletion.
type RoomService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// RoomTTL is how long a new room stays open.
	RoomTTL time.Duration
	// RadiusKm bounds discovery distance.
	RadiusKm float64
}

// NewRoomService constructs a RoomService with the given lifetime and
// discovery radius.
func NewRoomService(db *gorm.DB, ttl time.Duration, radiusKm float64) *RoomService {
	return &RoomService{DB: db, RoomTTL: ttl, RadiusKm: radiusKm}
}

// Create opens a new room anchored at (lat, lng). A creator may hold at most
// one open room at a time.
func (s *RoomService) Create(ctx context.Context, creatorID, title, tag string, lat, lng float64) (*domain.Room, error) {
	title = strings.TrimSpace(title)
	tag = strings.TrimSpace(tag)
	if title == "" || tag == "" {
		return nil, ErrMissingFields
	}
	if !geo.ValidCoords(lat, lng) {
		return nil, ErrInvalidLocation
	}

	now := time.Now().UTC()
	if _, err := repo.GetActiveRoomByCreator(ctx, s.DB, creatorID, now); err == nil {
		return nil, ErrActiveRoomExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return repo.CreateRoom(ctx, s.DB, creatorID, title, tag, lat, lng, now.Add(s.RoomTTL))
}

// Nearby returns open rooms within the discovery radius of (lat, lng),
// closest first.
func (s *RoomService) Nearby(ctx context.Context, lat, lng float64) ([]NearbyRoom, error) {
	if !geo.ValidCoords(lat, lng) {
		return nil, ErrInvalidLocation
	}
	rooms, err := repo.ListOpenRooms(ctx, s.DB, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	out := make([]NearbyRoom, 0, len(rooms))
	for _, r := range rooms {
		d := geo.DistanceKm(lat, lng, r.Lat, r.Lng)
		if d <= s.RadiusKm {
			out = append(out, NearbyRoom{Room: r, DistanceKm: d})
		}
	}
	// Insertion sort; the open-room set is tiny.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].DistanceKm < out[j-1].DistanceKm; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

// MyActive returns the caller's currently open room, or ErrRoomNotFound.
func (s *RoomService) MyActive(ctx context.Context, creatorID string) (*domain.Room, error) {
	r, err := repo.GetActiveRoomByCreator(ctx, s.DB, creatorID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return r, nil
}

// Delete deactivates a room. Only the creator may delete it; the room row is
// retained (soft delete) so message history stays readable.
func (s *RoomService) Delete(ctx context.Context, userID, roomID string) error {
	r, err := repo.GetRoom(ctx, s.DB, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	if r.CreatorID != userID {
		return ErrNotRoomCreator
	}
	return repo.DeactivateRoom(ctx, s.DB, roomID, time.Now().UTC())
}

// Exists reports whether a room is still open (active and unexpired). It is
// the precondition check consulted before a message send is accepted.
func (s *RoomService) Exists(ctx context.Context, roomID string) (bool, error) {
	r, err := repo.GetRoom(ctx, s.DB, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return r.Open(time.Now().UTC()), nil
}
