// Handler wiring.
//
// Handlers groups every HTTP endpoint — REST and the websocket handshake —
// behind abstract service interfaces so transport concerns stay separate
// from business logic.
package handlers

import (
	"github.com/nearbychat/server/internal/auth"
	"github.com/nearbychat/server/internal/ws"
)

// Handlers groups the HTTP endpoints for accounts, rooms, message history,
// and the websocket connection gate.
type Handlers struct {
	accounts AccountService
	rooms    RoomService
	history  MessageHistory
	minter   TokenMinter
	notifier LifecycleNotifier

	verifier auth.Verifier
	hub      *ws.Hub
}

// New constructs a Handlers instance bound to the given collaborators.
// The hub serves both as the websocket attach point and as the room
// lifecycle notifier.
func New(accounts AccountService, rooms RoomService, history MessageHistory, minter TokenMinter, verifier auth.Verifier, hub *ws.Hub) *Handlers {
	return &Handlers{
		accounts: accounts,
		rooms:    rooms,
		history:  history,
		minter:   minter,
		notifier: hub,
		verifier: verifier,
		hub:      hub,
	}
}
