package models

import (
	"time"

	"ctchen222/tictactoe-solo/internal/game"
)

// GameRecord is a finished game journaled for a session.
type GameRecord struct {
	ID         int64           `json:"id"`
	SessionID  string          `json:"session_id"`
	Difficulty game.Difficulty `json:"difficulty"`
	Status     game.GameStatus `json:"status"`
	Winner     game.PlayerMark `json:"winner,omitempty"`
	Moves      []int           `json:"moves"`
	FinishedAt time.Time       `json:"finished_at"`
}

// CreateSessionRequest defines the structure for a new guest session request.
type CreateSessionRequest struct {
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard impossible"`
}

// SessionResponse defines the structure for a successful session creation.
type SessionResponse struct {
	SessionID  string          `json:"session_id"`
	Token      string          `json:"token"`
	Difficulty game.Difficulty `json:"difficulty"`
	ExpiresAt  time.Time       `json:"expires_at"`
}
