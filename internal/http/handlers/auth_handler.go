// Account HTTP handlers.
//
// This file exposes REST endpoints for signup, login, the current account,
// and handle updates:
//   - POST /auth/signup
//   - POST /auth/login
//   - GET  /auth/me       (authenticated)
//   - PUT  /auth/handle   (authenticated)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nearbychat/server/internal/domain"
	"github.com/nearbychat/server/internal/http/middleware"
)

// AccountService defines the account operations consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor the context.
type AccountService interface {
	// Signup registers a new account.
	Signup(ctx context.Context, email, password string) (*domain.User, error)
	// Login verifies credentials and returns the account.
	Login(ctx context.Context, email, password string) (*domain.User, error)
	// Get fetches an account by id.
	Get(ctx context.Context, id string) (*domain.User, error)
	// UpdateHandle sets the public display handle.
	UpdateHandle(ctx context.Context, id, handle string) error
}

// TokenMinter signs a fresh bearer token for a verified account.
type TokenMinter interface {
	Mint(userID string) (string, error)
}

// SignupRequest is the JSON payload for creating an account.
type SignupRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateHandleRequest is the JSON payload for setting the display handle.
type UpdateHandleRequest struct {
	Handle string `json:"handle" binding:"required,min=1,max=64"`
}

// LoginResponse carries the minted token plus the account it belongs to.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Signup handles POST /auth/signup.
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "passwords do not match")
		return
	}

	u, err := h.accounts.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"user": u})
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	u, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failFromService(c, err)
		return
	}
	token, err := h.minter.Mint(u.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "token minting failed")
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, User: u})
}

// Me handles GET /auth/me.
func (h *Handlers) Me(c *gin.Context) {
	u, err := h.accounts.Get(c.Request.Context(), c.GetString(middleware.ContextUserIDKey))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user": u})
}

// UpdateHandle handles PUT /auth/handle.
func (h *Handlers) UpdateHandle(c *gin.Context) {
	var req UpdateHandleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "handle is required")
		return
	}

	userID := c.GetString(middleware.ContextUserIDKey)
	if err := h.accounts.UpdateHandle(c.Request.Context(), userID, req.Handle); err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"handle": req.Handle})
}
