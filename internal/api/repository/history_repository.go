package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ctchen222/tictactoe-solo/internal/api/models"
	"ctchen222/tictactoe-solo/internal/game"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api.repository.history")

const defaultHistoryLimit = 50

// HistoryRepository defines the interface for the finished-games journal.
type HistoryRepository interface {
	RecordGame(ctx context.Context, record *models.GameRecord) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.GameRecord, error)
}

type gameRow struct {
	ID         int64  `db:"id"`
	SessionID  string `db:"session_id"`
	Difficulty string `db:"difficulty"`
	Status     string `db:"status"`
	Winner     string `db:"winner"`
	Moves      string `db:"moves"`
	FinishedAt int64  `db:"finished_at"`
}

type sqliteHistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new SQLite-based HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &sqliteHistoryRepository{db: db}
}

// RecordGame inserts a finished game and sets record.ID.
func (r *sqliteHistoryRepository) RecordGame(ctx context.Context, record *models.GameRecord) error {
	ctx, span := tracer.Start(ctx, "HistoryRepository.RecordGame")
	defer span.End()

	moves, err := json.Marshal(record.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now()
	}

	query := `INSERT INTO games (session_id, difficulty, status, winner, moves, finished_at) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		record.SessionID,
		string(record.Difficulty),
		string(record.Status),
		string(record.Winner),
		string(moves),
		record.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record game: %w", err)
	}
	if record.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read game id: %w", err)
	}
	return nil
}

// ListBySession returns the most recent finished games of a session, newest first.
func (r *sqliteHistoryRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.GameRecord, error) {
	ctx, span := tracer.Start(ctx, "HistoryRepository.ListBySession")
	defer span.End()

	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	var rows []gameRow
	query := `SELECT id, session_id, difficulty, status, winner, moves, finished_at FROM games WHERE session_id = ? ORDER BY id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, sessionID, limit); err != nil {
		return nil, fmt.Errorf("failed to list games for session: %w", err)
	}

	records := make([]models.GameRecord, 0, len(rows))
	for _, row := range rows {
		var moves []int
		if err := json.Unmarshal([]byte(row.Moves), &moves); err != nil {
			return nil, fmt.Errorf("failed to unmarshal moves of game %d: %w", row.ID, err)
		}
		records = append(records, models.GameRecord{
			ID:         row.ID,
			SessionID:  row.SessionID,
			Difficulty: game.Difficulty(row.Difficulty),
			Status:     game.GameStatus(row.Status),
			Winner:     game.PlayerMark(row.Winner),
			Moves:      moves,
			FinishedAt: time.UnixMilli(row.FinishedAt),
		})
	}
	return records, nil
}
