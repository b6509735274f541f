// Room HTTP handlers.
//
// This file exposes REST endpoints for room lifecycle and discovery:
//   - POST   /rooms            (create; announces room-created to the hub)
//   - GET    /rooms?lat&lng    (nearby discovery)
//   - GET    /rooms/my-active  (caller's open room, if any)
//   - DELETE /rooms/:id        (creator-only; fires the lifecycle notifier)
//
// Room deletion is where the CRUD layer feeds the realtime core: after the
// soft delete commits, the hub evicts presence and notifies every client.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nearbychat/server/internal/domain"
	"github.com/nearbychat/server/internal/http/middleware"
	"github.com/nearbychat/server/internal/services"
)

// RoomService defines room lifecycle and discovery operations consumed by
// HTTP handlers.
type RoomService interface {
	// Create opens a new room anchored at the creator's position.
	Create(ctx context.Context, creatorID, title, tag string, lat, lng float64) (*domain.Room, error)
	// Nearby lists open rooms within the discovery radius, closest first.
	Nearby(ctx context.Context, lat, lng float64) ([]services.NearbyRoom, error)
	// MyActive returns the caller's open room or services.ErrRoomNotFound.
	MyActive(ctx context.Context, creatorID string) (*domain.Room, error)
	// Delete deactivates a room; creator-only.
	Delete(ctx context.Context, userID, roomID string) error
}

// LifecycleNotifier is the realtime side of room create/delete: the hub
// broadcasts the notices and evicts presence for deleted rooms.
type LifecycleNotifier interface {
	NotifyRoomCreated(room string)
	NotifyRoomDeleted(room string)
}

// CreateRoomRequest is the JSON payload for opening a room.
type CreateRoomRequest struct {
	Title string   `json:"title" binding:"required"`
	Tag   string   `json:"tag" binding:"required"`
	Lat   *float64 `json:"lat" binding:"required"`
	Lng   *float64 `json:"lng" binding:"required"`
}

// CreateRoom handles POST /rooms.
func (h *Handlers) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title, tag and a valid location are required")
		return
	}

	creatorID := c.GetString(middleware.ContextUserIDKey)
	room, err := h.rooms.Create(c.Request.Context(), creatorID, req.Title, req.Tag, *req.Lat, *req.Lng)
	if err != nil {
		failFromService(c, err)
		return
	}

	h.notifier.NotifyRoomCreated(room.ID)
	ok(c, http.StatusCreated, gin.H{"room": room})
}

// NearbyRooms handles GET /rooms?lat&lng.
func (h *Handlers) NearbyRooms(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "latitude and longitude are required")
		return
	}

	rooms, err := h.rooms.Nearby(c.Request.Context(), lat, lng)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"rooms": rooms})
}

// MyActiveRoom handles GET /rooms/my-active.
func (h *Handlers) MyActiveRoom(c *gin.Context) {
	room, err := h.rooms.MyActive(c.Request.Context(), c.GetString(middleware.ContextUserIDKey))
	if err != nil {
		if err == services.ErrRoomNotFound {
			ok(c, http.StatusOK, gin.H{"has_active_room": false})
			return
		}
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"has_active_room": true, "room": room})
}

// DeleteRoom handles DELETE /rooms/:id.
func (h *Handlers) DeleteRoom(c *gin.Context) {
	roomID := c.Param("id")
	userID := c.GetString(middleware.ContextUserIDKey)

	if err := h.rooms.Delete(c.Request.Context(), userID, roomID); err != nil {
		failFromService(c, err)
		return
	}

	h.notifier.NotifyRoomDeleted(roomID)
	ok(c, http.StatusOK, gin.H{"message": "room deleted"})
}
