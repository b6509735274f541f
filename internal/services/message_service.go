// Package services – MessageService
//
// This file implements message persistence and history reads. Save is the
// storage half of the realtime pipeline: it validates the payload, checks
// the room-open precondition, and persists through the repo, which assigns
// the id and creation timestamp that define per-room ordering. Broadcast of
// the persisted snapshot is the hub's job, not this service's.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/nearbychat/server/internal/domain"
	"github.com/nearbychat/server/internal/repo"
)

// MessageService provides message persistence and paginated history.
type MessageService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// MaxRunes caps message length; values <= 0 disable the check.
	MaxRunes int
}

// NewMessageService constructs a MessageService with the given length cap.
func NewMessageService(db *gorm.DB, maxRunes int) *MessageService {
	return &MessageService{DB: db, MaxRunes: maxRunes}
}

// Save validates and persists a user message in roomID. The room must still
// be open; messages referencing a closed or unknown room fail with
// ErrRoomClosed / ErrRoomNotFound and nothing is written.
func (s *MessageService) Save(ctx context.Context, roomID, senderID, text string) (*domain.Message, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, ErrMissingFields
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxRunes > 0 && utf8.RuneCountInString(text) > s.MaxRunes {
		return nil, ErrMessageTooLong
	}

	r, err := repo.GetRoom(ctx, s.DB, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !r.Open(time.Now().UTC()) {
		return nil, ErrRoomClosed
	}

	return repo.CreateMessage(ctx, s.DB, roomID, senderID, text, domain.MessageKindText)
}

// History returns a page of a room's messages in creation order plus the
// total count, for the REST history endpoint.
func (s *MessageService) History(ctx context.Context, roomID string, page, pageSize int) ([]domain.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountMessages(ctx, s.DB, roomID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}

	items, err := repo.ListMessagesPage(ctx, s.DB, roomID, offset, pageSize)
	return items, total, err
}
