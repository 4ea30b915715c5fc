package repository

import (
	"context"
	"fmt"
	"time"

	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/player"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("repository.session")

const (
	fieldServerID         = "server_id"
	fieldDifficulty       = "difficulty"
	fieldConnectionStatus = "connection_status"
	fieldLastSeen         = "last_seen"
)

// SessionPresence is what other processes can learn about a running session.
type SessionPresence struct {
	ServerID   string
	Difficulty game.Difficulty
	Status     player.PlayerStatus
	LastSeen   time.Time
}

// SessionRepository defines the interface for session presence operations.
type SessionRepository interface {
	Register(ctx context.Context, sessionID, serverID string, difficulty game.Difficulty) error
	Find(ctx context.Context, sessionID string) (*SessionPresence, error)
	UpdateConnectionStatus(ctx context.Context, sessionID string, status player.PlayerStatus) error
	UpdateDifficulty(ctx context.Context, sessionID string, difficulty game.Difficulty) error
	Remove(ctx context.Context, sessionID string) error
}

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionRepository creates a new Redis-based SessionRepository. Presence
// keys expire after ttl unless refreshed.
func NewSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{
		rdb: rdb,
		ttl: ttl,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Register stores the initial presence of a session.
func (r *redisSessionRepository) Register(ctx context.Context, sessionID, serverID string, difficulty game.Difficulty) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Register")
	defer span.End()

	key := sessionKey(sessionID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		fieldServerID, serverID,
		fieldDifficulty, string(difficulty),
		fieldConnectionStatus, string(player.StatusConnected),
		fieldLastSeen, time.Now().UnixMilli(),
	)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}
	return nil
}

// Find returns the stored presence of a session, or nil if there is none.
func (r *redisSessionRepository) Find(ctx context.Context, sessionID string) (*SessionPresence, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.Find")
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	presence := &SessionPresence{
		ServerID:   data[fieldServerID],
		Difficulty: game.Difficulty(data[fieldDifficulty]),
		Status:     player.PlayerStatus(data[fieldConnectionStatus]),
	}
	var ms int64
	if _, err := fmt.Sscan(data[fieldLastSeen], &ms); err == nil {
		presence.LastSeen = time.UnixMilli(ms)
	}
	return presence, nil
}

// UpdateConnectionStatus updates the connection status and refreshes the TTL.
func (r *redisSessionRepository) UpdateConnectionStatus(ctx context.Context, sessionID string, status player.PlayerStatus) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.UpdateConnectionStatus")
	defer span.End()

	key := sessionKey(sessionID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		fieldConnectionStatus, string(status),
		fieldLastSeen, time.Now().UnixMilli(),
	)
	pipe.Expire(ctx, key, r.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// UpdateDifficulty records the difficulty currently in effect.
func (r *redisSessionRepository) UpdateDifficulty(ctx context.Context, sessionID string, difficulty game.Difficulty) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.UpdateDifficulty")
	defer span.End()

	return r.rdb.HSet(ctx, sessionKey(sessionID), fieldDifficulty, string(difficulty)).Err()
}

// Remove deletes the presence of a closed session.
func (r *redisSessionRepository) Remove(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Remove")
	defer span.End()

	return r.rdb.Del(ctx, sessionKey(sessionID)).Err()
}
