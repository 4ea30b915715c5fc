package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ctchen222/tictactoe-solo/internal/events"
	"ctchen222/tictactoe-solo/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("engine")

// ErrPolicyContractViolation means the move policy produced an index that
// is not an empty cell. It signals a bug, not a user error.
var ErrPolicyContractViolation = errors.New("move policy contract violation")

//go:generate mockgen -destination=mocks/mock_policy.go -package=mocks . MovePolicy

// MovePolicy chooses the computer's move for a board snapshot.
type MovePolicy interface {
	SelectMove(board game.Board, difficulty game.Difficulty) (int, error)
}

// MoveResult describes an applied move and the state it left behind.
type MoveResult struct {
	Index   int             `json:"index"`
	Player  game.PlayerMark `json:"player"`
	Outcome game.Outcome    `json:"outcome"`
	Next    game.PlayerMark `json:"next,omitempty"`
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	SessionID  string          `json:"session_id"`
	Board      game.Board      `json:"board"`
	Turn       game.PlayerMark `json:"turn"`
	Outcome    game.Outcome    `json:"outcome"`
	Difficulty game.Difficulty `json:"difficulty"`
	Scores     game.ScoreBoard `json:"scores"`
	Moves      []int           `json:"moves"`
}

// Engine owns the board, turn order and score of one single-player session.
// It is not safe for concurrent use; a session goroutine owns it.
type Engine struct {
	id         string
	board      game.Board
	turn       game.PlayerMark
	outcome    game.Outcome
	difficulty game.Difficulty
	scores     game.ScoreBoard
	moves      []int

	policy    MovePolicy
	publisher events.Publisher
	metrics   *engineMetrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher sets where state-change events are sent.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithDifficulty sets the initial difficulty. Invalid levels are ignored.
func WithDifficulty(d game.Difficulty) Option {
	return func(e *Engine) {
		if d.Valid() {
			e.difficulty = d
		}
	}
}

// New creates an engine for session id with a fresh game and an empty score board.
func New(id string, policy MovePolicy, opts ...Option) *Engine {
	e := &Engine{
		id:         id,
		difficulty: game.Medium,
		policy:     policy,
		metrics:    newEngineMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reset()
	return e
}

// ID returns the session id.
func (e *Engine) ID() string { return e.id }

// Board returns a copy of the board.
func (e *Engine) Board() game.Board { return e.board }

// Turn returns the player to move.
func (e *Engine) Turn() game.PlayerMark { return e.turn }

// Outcome returns the status of the current game.
func (e *Engine) Outcome() game.Outcome { return e.outcome }

// Difficulty returns the active difficulty.
func (e *Engine) Difficulty() game.Difficulty { return e.difficulty }

// Scores returns a copy of the score board.
func (e *Engine) Scores() game.ScoreBoard { return e.scores }

// Snapshot returns a copy of the full engine state.
func (e *Engine) Snapshot() Snapshot {
	moves := make([]int, len(e.moves))
	copy(moves, e.moves)
	return Snapshot{
		SessionID:  e.id,
		Board:      e.board,
		Turn:       e.turn,
		Outcome:    e.outcome,
		Difficulty: e.difficulty,
		Scores:     e.scores,
		Moves:      moves,
	}
}

// NewGame clears the board and gives the first move to X. Scores are kept.
func (e *Engine) NewGame(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "engine.NewGame", trace.WithAttributes(
		attribute.String("session.id", e.id),
	))
	defer span.End()

	e.reset()
	slog.DebugContext(ctx, "New game started", "session.id", e.id, "difficulty", e.difficulty)

	e.emit(ctx, events.TypeStatusChanged, statusPayload(e.outcome))
	e.emit(ctx, events.TypeTurnChanged, events.TurnChangedPayload{Player: e.turn})
}

// SetDifficulty changes the difficulty and starts a new game.
func (e *Engine) SetDifficulty(ctx context.Context, d game.Difficulty) error {
	ctx, span := tracer.Start(ctx, "engine.SetDifficulty", trace.WithAttributes(
		attribute.String("session.id", e.id),
		attribute.String("game.difficulty", string(d)),
	))
	defer span.End()

	if !d.Valid() {
		err := fmt.Errorf("%w: %q", game.ErrUnknownDifficulty, d)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unknown difficulty")
		return err
	}

	e.difficulty = d
	slog.InfoContext(ctx, "Difficulty changed", "session.id", e.id, "difficulty", d)
	e.emit(ctx, events.TypeDifficultyChanged, events.DifficultyChangedPayload{Difficulty: d})

	e.NewGame(ctx)
	return nil
}

// ApplyHumanMove places X at index and, if the game continues, passes the
// turn to the computer.
func (e *Engine) ApplyHumanMove(ctx context.Context, index int) (MoveResult, error) {
	ctx, span := tracer.Start(ctx, "engine.ApplyHumanMove", trace.WithAttributes(
		attribute.String("session.id", e.id),
		attribute.Int("move.index", index),
	))
	defer span.End()

	if err := e.validate(index, game.PlayerX); err != nil {
		slog.DebugContext(ctx, "Rejected human move", "session.id", e.id, "move.index", index, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return MoveResult{}, err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	return e.place(ctx, index, game.PlayerX), nil
}

// ComputerTurn asks the move policy for O's move and applies it.
func (e *Engine) ComputerTurn(ctx context.Context) (MoveResult, error) {
	ctx, span := tracer.Start(ctx, "engine.ComputerTurn", trace.WithAttributes(
		attribute.String("session.id", e.id),
		attribute.String("game.difficulty", string(e.difficulty)),
	))
	defer span.End()

	if e.outcome.IsTerminal() {
		span.SetStatus(codes.Error, "Game already finished")
		return MoveResult{}, game.ErrGameOver
	}
	if e.turn != game.PlayerO {
		span.SetStatus(codes.Error, "Not computer's turn")
		return MoveResult{}, game.ErrNotComputerTurn
	}

	index, err := e.policy.SelectMove(e.board, e.difficulty)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPolicyContractViolation, err)
		slog.ErrorContext(ctx, "Move policy failed", "session.id", e.id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move policy failed")
		return MoveResult{}, err
	}
	span.SetAttributes(attribute.Int("move.index", index))

	if !game.InBounds(index) || e.board[index] != game.None {
		err := fmt.Errorf("%w: index %d is not an empty cell", ErrPolicyContractViolation, index)
		slog.ErrorContext(ctx, "Move policy returned an illegal move", "session.id", e.id, "move.index", index, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move policy returned an illegal move")
		return MoveResult{}, err
	}

	return e.place(ctx, index, game.PlayerO), nil
}

// EvaluateTerminal checks for a win or a draw and records a finished game
// on the score board. Once the game is over it only returns the stored
// outcome, so repeated calls never count a game twice.
func (e *Engine) EvaluateTerminal(ctx context.Context) game.Outcome {
	if e.outcome.IsTerminal() {
		return e.outcome
	}

	if winner, line, ok := game.CheckWinner(e.board); ok {
		e.outcome = game.Outcome{Status: game.StatusWon, Winner: winner, Line: &line}
	} else if e.board.IsFull() {
		e.outcome = game.Outcome{Status: game.StatusDraw}
	} else {
		return e.outcome
	}

	e.scores.Record(e.outcome)
	e.metrics.gameFinished(ctx, e.outcome, e.difficulty)
	slog.InfoContext(ctx, "Game finished", "session.id", e.id, "status", e.outcome.Status, "winner", e.outcome.Winner, "moves", len(e.moves))

	e.emit(ctx, events.TypeStatusChanged, statusPayload(e.outcome))
	e.emit(ctx, events.TypeScoreUpdated, events.ScoreUpdatedPayload{Scores: e.scores})
	return e.outcome
}

func (e *Engine) validate(index int, mark game.PlayerMark) error {
	if e.outcome.IsTerminal() {
		return game.ErrGameOver
	}
	if !game.InBounds(index) {
		return game.ErrOutOfRange
	}
	if e.turn != mark {
		return game.ErrNotYourTurn
	}
	if e.board[index] != game.None {
		return game.ErrCellOccupied
	}
	return nil
}

func (e *Engine) place(ctx context.Context, index int, mark game.PlayerMark) MoveResult {
	e.board[index] = mark
	e.moves = append(e.moves, index)
	e.metrics.moveApplied(ctx, mark)
	e.emit(ctx, events.TypeMoveApplied, events.MoveAppliedPayload{Index: index, Player: mark})

	outcome := e.EvaluateTerminal(ctx)
	result := MoveResult{Index: index, Player: mark, Outcome: outcome}
	if outcome.IsTerminal() {
		return result
	}

	e.turn = mark.Opponent()
	result.Next = e.turn
	e.emit(ctx, events.TypeTurnChanged, events.TurnChangedPayload{Player: e.turn})
	return result
}

func (e *Engine) reset() {
	e.board = game.Board{}
	e.turn = game.PlayerX
	e.outcome = game.InProgress()
	e.moves = e.moves[:0]
}

// emit publishes an event. Delivery failures are logged; engine state is
// already committed.
func (e *Engine) emit(ctx context.Context, eventType string, payload any) {
	if e.publisher == nil {
		return
	}
	event, err := events.New(eventType, e.id, payload)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build event", "session.id", e.id, "event.type", eventType, "error", err)
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "Failed to publish event", "session.id", e.id, "event.type", eventType, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}

func statusPayload(o game.Outcome) events.StatusChangedPayload {
	return events.StatusChangedPayload{Status: o.Status, Winner: o.Winner, Line: o.Line}
}
