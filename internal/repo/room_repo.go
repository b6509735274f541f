// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Room model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearbychat/server/internal/domain"
)

// CreateRoom inserts a new room row anchored at (lat, lng) that expires at
// expiresAt.
func CreateRoom(ctx context.Context, db *gorm.DB, creatorID, title, tag string, lat, lng float64, expiresAt time.Time) (*domain.Room, error) {
	r := &domain.Room{
		ID:        uuid.NewString(),
		Title:     title,
		Tag:       tag,
		CreatorID: creatorID,
		Lat:       lat,
		Lng:       lng,
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	return r, db.WithContext(ctx).Create(r).Error
}

// GetRoom fetches a room by ID regardless of its active/expired state.
func GetRoom(ctx context.Context, db *gorm.DB, id string) (*domain.Room, error) {
	var r domain.Room
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListOpenRooms returns all rooms that are active and unexpired as of now.
// Radius filtering happens in the service layer; the table is expected to
// stay small because rooms are short-lived.
func ListOpenRooms(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Room, error) {
	var out []domain.Room
	err := db.WithContext(ctx).
		Where("is_active = ? AND expires_at > ?", true, now).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// GetActiveRoomByCreator returns the creator's currently open room, if any.
func GetActiveRoomByCreator(ctx context.Context, db *gorm.DB, creatorID string, now time.Time) (*domain.Room, error) {
	var r domain.Room
	err := db.WithContext(ctx).
		Where("creator_id = ? AND is_active = ? AND expires_at > ?", creatorID, true, now).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeactivateRoom soft-deletes a room: it is marked inactive and expired
// immediately, so discovery and the send precondition both start failing.
func DeactivateRoom(ctx context.Context, db *gorm.DB, id string, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "expires_at": now}).Error
}
