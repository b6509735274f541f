// Package services – UserService
//
// This file implements account signup, login, and profile handling. Passwords
// are stored as bcrypt hashes; login success yields the account so the caller
// can mint a token. DisplayName is the identity lookup used to enrich
// outgoing chat messages with a denormalized sender name.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nearbychat/server/internal/domain"
	"github.com/nearbychat/server/internal/repo"
)

// minPasswordLen is the smallest accepted signup password length.
const minPasswordLen = 6

// UserService provides account-level operations.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// BcryptCost overrides bcrypt.DefaultCost when > 0 (tests lower it).
	BcryptCost int
}

// NewUserService constructs a UserService with default hashing cost.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) cost() int {
	if s.BcryptCost > 0 {
		return s.BcryptCost
	}
	return bcrypt.DefaultCost
}

// Signup registers a new account. The email must be unused and the password
// at least minPasswordLen characters.
func (s *UserService) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrMissingFields
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
	if err != nil {
		return nil, err
	}
	return repo.CreateUser(ctx, s.DB, email, string(hash))
}

// Login verifies email/password and returns the account on success.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get fetches an account by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateHandle sets the public display handle for the account.
func (s *UserService) UpdateHandle(ctx context.Context, id, handle string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ErrMissingFields
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return repo.UpdateUserHandle(ctx, s.DB, id, handle)
}

// DisplayName resolves the public name shown next to a user's messages.
// Accounts that never picked a handle get a stable anonymous fallback
// derived from their id.
func (s *UserService) DisplayName(ctx context.Context, id string) (string, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if h := strings.TrimSpace(u.Handle); h != "" {
		return h, nil
	}
	short := u.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return "anon-" + short, nil
}
