package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

var gamesSchema = []string{`
CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	status TEXT NOT NULL,
	winner TEXT NOT NULL DEFAULT '',
	moves TEXT NOT NULL,
	finished_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_games_session ON games (session_id, id)`,
}

// OpenHistory opens the SQLite database that journals finished games and
// makes sure its schema exists. The default DSN ":memory:" keeps the journal
// for the life of the process only.
func OpenHistory(ctx context.Context, dsn string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	pool.SetMaxOpenConns(1)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	for _, stmt := range gamesSchema {
		if _, err := pool.ExecContext(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create games schema: %w", err)
		}
	}

	slog.InfoContext(ctx, "History database initialized and schema verified.", "dsn", dsn)
	return pool, nil
}
