package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"ctchen222/tictactoe-solo/internal/events"

	"github.com/go-redis/redis/v8"
)

// RedisPublisher publishes engine events on per-session Redis channels and
// session lifecycle events on the global events channel.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish implements events.Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, event events.Event) error {
	ctx, span := tracer.Start(ctx, "RedisPublisher.Publish")
	defer span.End()

	channel := events.SessionChannel(event.SessionID)
	switch event.Type {
	case events.TypeSessionStarted, events.TypeSessionClosed:
		channel = events.EventsChannel
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
