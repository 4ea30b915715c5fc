package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"ctchen222/tictactoe-solo/internal/api/models"
	"ctchen222/tictactoe-solo/internal/engine"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/validator"
	"ctchen222/tictactoe-solo/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage handles a message from the player. It acts as a dispatcher.
func (r *Room) HandleMessage(ctx context.Context, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.sendError(ctx, "malformed message")
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.sendError(ctx, "invalid message")
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		r.handleMove(ctx, *message.Index)
	case proto.TypeNewGame:
		r.handleNewGame(ctx)
	case proto.TypeSetDifficulty:
		r.handleSetDifficulty(ctx, message.Difficulty)
	}
}

// handleMove applies the human's move and schedules the computer's reply.
func (r *Room) handleMove(ctx context.Context, index int) {
	ctx, span := tracer.Start(ctx, "room.handleMove", trace.WithAttributes(
		attribute.String("session.id", r.ID),
		attribute.Int("move.index", index),
	))
	defer span.End()

	result, err := r.engine.ApplyHumanMove(ctx, index)
	if err != nil {
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		r.sendError(ctx, err.Error())
		return
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	r.afterMove(ctx, result)
}

func (r *Room) handleNewGame(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.handleNewGame", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	r.cancelComputerTurn()
	r.engine.NewGame(ctx)
}

func (r *Room) handleSetDifficulty(ctx context.Context, name string) {
	ctx, span := tracer.Start(ctx, "room.handleSetDifficulty", trace.WithAttributes(
		attribute.String("session.id", r.ID),
		attribute.String("game.difficulty", name),
	))
	defer span.End()

	difficulty, err := game.ParseDifficulty(name)
	if err == nil {
		err = r.engine.SetDifficulty(ctx, difficulty)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unknown difficulty")
		r.sendError(ctx, err.Error())
		return
	}
	r.cancelComputerTurn()

	if r.sessions != nil {
		if err := r.sessions.UpdateDifficulty(ctx, r.ID, difficulty); err != nil {
			slog.ErrorContext(ctx, "Failed to store session difficulty", "session.id", r.ID, "error", err)
			span.RecordError(err)
		}
	}
}

// playComputerTurn runs when the thinking delay has elapsed.
func (r *Room) playComputerTurn(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.playComputerTurn", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	result, err := r.engine.ComputerTurn(ctx)
	switch {
	case err == nil:
		r.afterMove(ctx, result)
	case errors.Is(err, engine.ErrPolicyContractViolation):
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move policy contract violation")
		slog.ErrorContext(ctx, "Closing session after move policy failure", "session.id", r.ID, "error", err)
		r.Stop(ReasonContractViolation)
	default:
		// The game was reset or finished while the timer was pending.
		slog.DebugContext(ctx, "Skipped computer turn", "session.id", r.ID, "error", err)
	}
}

func (r *Room) afterMove(ctx context.Context, result engine.MoveResult) {
	if result.Outcome.IsTerminal() {
		r.recordFinishedGame(ctx)
		return
	}
	if result.Next == game.PlayerO {
		r.scheduleComputerTurn()
	}
}

// recordFinishedGame journals the game that just ended.
func (r *Room) recordFinishedGame(ctx context.Context) {
	if r.history == nil {
		return
	}
	ctx, span := tracer.Start(ctx, "room.recordFinishedGame", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	snapshot := r.engine.Snapshot()
	record := &models.GameRecord{
		SessionID:  r.ID,
		Difficulty: snapshot.Difficulty,
		Status:     snapshot.Outcome.Status,
		Winner:     snapshot.Outcome.Winner,
		Moves:      snapshot.Moves,
		FinishedAt: time.Now(),
	}
	if err := r.history.RecordGame(ctx, record); err != nil {
		slog.ErrorContext(ctx, "Failed to record finished game", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to record finished game")
	}
}
