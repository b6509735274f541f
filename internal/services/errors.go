// Package services defines the business logic for accounts, rooms, and
// messages. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer. The websocket core treats all of them as non-fatal: a failing event
// is dropped and logged, never propagated to other connections.
package services

import "errors"

// Account-related errors.
var (
	// ErrEmailTaken indicates a signup attempt with an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the referenced account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrWeakPassword is returned when a signup password is below the minimum length.
	ErrWeakPassword = errors.New("password too short")
)

// Room-related errors.
var (
	// ErrRoomNotFound indicates the referenced room does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomClosed indicates the room exists but is deactivated or expired;
	// sends and joins referencing it must be treated as failed preconditions.
	ErrRoomClosed = errors.New("room closed")

	// ErrActiveRoomExists is returned when a creator who already has an open
	// room attempts to create another.
	ErrActiveRoomExists = errors.New("active room already exists")

	// ErrNotRoomCreator is returned when a non-creator attempts to delete a room.
	ErrNotRoomCreator = errors.New("not the room creator")

	// ErrInvalidLocation is returned for coordinates outside the WGS84 domain.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrMissingFields is returned when a required field is absent or blank.
	ErrMissingFields = errors.New("required field missing")
)

// Message-related errors.
var (
	// ErrEmptyMessage is returned when a message is empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a message exceeds the rune limit.
	ErrMessageTooLong = errors.New("message too long")
)
