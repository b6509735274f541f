// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication for the REST surface.
// The websocket handshake performs its own one-time verification in the
// connection gate; this middleware covers everything else behind the
// /api/v* group.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nearbychat/server/internal/auth"
)

// RequireAuth verifies the Authorization: Bearer token on every request and
// stores the verified user id in the Gin context under ContextUserIDKey.
// Requests without a valid token are rejected with 401 and never reach the
// handler.
func RequireAuth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c, "authorization token missing")
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer x" header
// value, returning "" when the scheme is absent or wrong.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
