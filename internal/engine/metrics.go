package engine

import (
	"context"
	"log/slog"

	"ctchen222/tictactoe-solo/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("engine")

type engineMetrics struct {
	moves         metric.Int64Counter
	gamesFinished metric.Int64Counter
}

func newEngineMetrics() *engineMetrics {
	m := &engineMetrics{}
	var err error
	m.moves, err = meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Moves applied, by player"),
	)
	if err != nil {
		slog.Warn("failed to create moves counter", "error", err)
	}
	m.gamesFinished, err = meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Finished games, by result and difficulty"),
	)
	if err != nil {
		slog.Warn("failed to create games counter", "error", err)
	}
	return m
}

func (m *engineMetrics) moveApplied(ctx context.Context, mark game.PlayerMark) {
	if m.moves == nil {
		return
	}
	m.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("player", string(mark))))
}

func (m *engineMetrics) gameFinished(ctx context.Context, o game.Outcome, d game.Difficulty) {
	if m.gamesFinished == nil {
		return
	}
	result := string(o.Status)
	if o.Status == game.StatusWon {
		result = string(o.Winner) + "_won"
	}
	m.gamesFinished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
		attribute.String("difficulty", string(d)),
	))
}
