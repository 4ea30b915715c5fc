package events

import (
	"encoding/json"
	"fmt"

	"ctchen222/tictactoe-solo/internal/game"
)

// Pub/Sub channel constants
const (
	EventsChannel        = "channel:events"
	sessionChannelFormat = "channel:session:%s"
)

// Event types emitted by the game engine.
const (
	TypeMoveApplied       = "move_applied"
	TypeStatusChanged     = "status_changed"
	TypeScoreUpdated      = "score_updated"
	TypeTurnChanged       = "turn_changed"
	TypeDifficultyChanged = "difficulty_changed"

	// Session lifecycle, published on EventsChannel.
	TypeSessionStarted = "session_started"
	TypeSessionClosed  = "session_closed"
)

// SessionChannel returns the Pub/Sub channel carrying one session's events.
func SessionChannel(sessionID string) string {
	return fmt.Sprintf(sessionChannelFormat, sessionID)
}

// Event represents a state change published by a session.
type Event struct {
	Type      string          `json:"event"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// MoveAppliedPayload is the payload for the "move_applied" event.
type MoveAppliedPayload struct {
	Index  int             `json:"index"`
	Player game.PlayerMark `json:"player"`
}

// StatusChangedPayload is the payload for the "status_changed" event.
type StatusChangedPayload struct {
	Status game.GameStatus `json:"status"`
	Winner game.PlayerMark `json:"winner,omitempty"`
	Line   *game.WinLine   `json:"line,omitempty"`
}

// ScoreUpdatedPayload is the payload for the "score_updated" event.
type ScoreUpdatedPayload struct {
	Scores game.ScoreBoard `json:"scores"`
}

// TurnChangedPayload is the payload for the "turn_changed" event.
type TurnChangedPayload struct {
	Player game.PlayerMark `json:"player"`
}

// DifficultyChangedPayload is the payload for the "difficulty_changed" event.
type DifficultyChangedPayload struct {
	Difficulty game.Difficulty `json:"difficulty"`
}

// SessionStartedPayload is the payload for the "session_started" event.
type SessionStartedPayload struct {
	SessionID  string          `json:"session_id"`
	ServerID   string          `json:"server_id"`
	Difficulty game.Difficulty `json:"difficulty"`
}

// SessionClosedPayload is the payload for the "session_closed" event.
type SessionClosedPayload struct {
	SessionID string          `json:"session_id"`
	Scores    game.ScoreBoard `json:"scores"`
}

// New builds an event for sessionID with payload encoded as JSON.
func New(eventType, sessionID string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, SessionID: sessionID, Payload: data}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", e.Type, err)
	}
	return nil
}
