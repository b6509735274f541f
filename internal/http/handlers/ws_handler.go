// Websocket connection gate.
//
// This file exposes GET /ws, the one-time admission step for realtime
// sessions. The bearer credential arrives out-of-band of the event stream —
// as a ?token query parameter or an Authorization header — and is verified
// exactly once, BEFORE the protocol upgrade. A missing or invalid token is
// a terminal rejection for the attempt: the client never reaches presence
// logic and must reconnect with a fresh token.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nearbychat/server/internal/http/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from app origins unknown at build time;
	// bearer-token verification is the admission control here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Connect handles GET /ws. On success the connection is handed to the hub
// with its verified, immutable user identity attached.
func (h *Handlers) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	userID, err := h.verifier.Verify(token)
	if err != nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote its own response.
		middleware.LoggerFrom(c).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.hub.Attach(conn, userID)
}
