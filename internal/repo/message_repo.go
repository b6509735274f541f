// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message
// model. CreatedAt is assigned here at persistence time; it defines the
// total order of messages within a room.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearbychat/server/internal/domain"
)

// CreateMessage inserts a new message row, assigning its identity and
// creation timestamp.
func CreateMessage(ctx context.Context, db *gorm.DB, roomID, senderID, text, kind string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		SenderID:  senderID,
		Text:      text,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	return m, db.WithContext(ctx).Create(m).Error
}

// CountMessages returns the number of messages in a room.
func CountMessages(ctx context.Context, db *gorm.DB, roomID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("room_id = ?", roomID).
		Count(&total).Error
	return total, err
}

// ListMessagesPage returns a page of a room's messages ordered
// deterministically (CreatedAt ASC, ID ASC).
func ListMessagesPage(ctx context.Context, db *gorm.DB, roomID string, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
