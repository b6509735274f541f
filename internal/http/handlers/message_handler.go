// Message history HTTP handler.
//
// This file exposes GET /chat/:id, the paginated history read a
// client performs when entering a room. Live traffic flows over the
// websocket; this endpoint only serves what was already persisted.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nearbychat/server/internal/domain"
)

// MessageHistory defines the read side of the message service consumed by
// HTTP handlers.
type MessageHistory interface {
	// History returns a page of a room's messages in creation order plus
	// the total count.
	History(ctx context.Context, roomID string, page, pageSize int) ([]domain.Message, int64, error)
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListMessagesResponse wraps a page of messages and pagination information.
type ListMessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 50
		maxPageSize     = 200
	)
	page = atoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = atoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// ListMessages handles GET /chat/:id.
func (h *Handlers) ListMessages(c *gin.Context) {
	roomID := c.Param("id")
	page, pageSize := clampPagination(c)

	items, total, err := h.history.History(c.Request.Context(), roomID, page, pageSize)
	if err != nil {
		failFromService(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// atoiDefault converts s to an int, returning def when empty or invalid.
func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	return n
}
