package types

import (
	"context"

	"ctchen222/tictactoe-solo/internal/player"
)

// RegistrationRequest asks the hub to attach a websocket to a session,
// creating the session if it is not running yet.
type RegistrationRequest struct {
	Player     *player.Player
	SessionID  string
	Difficulty string // optional, only used for a new session
	Ctx        context.Context
}

// PlayerMessage is a raw client frame read from a player's connection.
type PlayerMessage struct {
	Player  *player.Player
	Message []byte
}
