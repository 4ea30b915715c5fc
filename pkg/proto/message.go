package proto

import (
	"ctchen222/tictactoe-solo/internal/engine"
	"ctchen222/tictactoe-solo/internal/game"
)

// Client message types
const (
	TypeMove          = "move"
	TypeNewGame       = "new_game"
	TypeSetDifficulty = "set_difficulty"
)

// Server message types
const (
	TypeState  = "state"
	TypeError  = "error"
	TypeClosed = "closed"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=move new_game set_difficulty"`
	Index      *int   `json:"index,omitempty" validate:"required_if=Type move"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type       string              `json:"type" validate:"required"`
	Reason     string              `json:"reason,omitempty"`
	SessionID  string              `json:"session_id,omitempty"`
	Board      [][]game.PlayerMark `json:"board,omitempty"`
	Next       game.PlayerMark     `json:"next,omitempty"`
	Outcome    *game.Outcome       `json:"outcome,omitempty"`
	Difficulty game.Difficulty     `json:"difficulty,omitempty"`
	Scores     *game.ScoreBoard    `json:"scores,omitempty"`
	Moves      []int               `json:"moves,omitempty"`
}

// NewStateMessage renders an engine snapshot for the client.
func NewStateMessage(s engine.Snapshot) *ServerToClientMessage {
	outcome := s.Outcome
	scores := s.Scores
	msg := &ServerToClientMessage{
		Type:       TypeState,
		SessionID:  s.SessionID,
		Board:      s.Board.Rows(),
		Outcome:    &outcome,
		Difficulty: s.Difficulty,
		Scores:     &scores,
		Moves:      s.Moves,
	}
	if !outcome.IsTerminal() {
		msg.Next = s.Turn
	}
	return msg
}

// NewClosedMessage tells the client the session has ended.
func NewClosedMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeClosed, Reason: reason}
}

// NewErrorMessage tells the client why its input was rejected.
func NewErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
