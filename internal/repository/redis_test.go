package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ctchen222/tictactoe-solo/internal/events"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/player"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestSessionRepository(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	repo := NewSessionRepository(rdb, time.Minute)

	got, err := repo.Find(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Register(ctx, "s1", "server-a", game.Medium))
	got, err = repo.Find(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "server-a", got.ServerID)
	assert.Equal(t, game.Medium, got.Difficulty)
	assert.Equal(t, player.StatusConnected, got.Status)
	assert.WithinDuration(t, time.Now(), got.LastSeen, 5*time.Second)

	ttl, err := rdb.TTL(ctx, "session:s1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.UpdateConnectionStatus(ctx, "s1", player.StatusDisconnected))
	require.NoError(t, repo.UpdateDifficulty(ctx, "s1", game.Impossible))
	got, err = repo.Find(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, player.StatusDisconnected, got.Status)
	assert.Equal(t, game.Impossible, got.Difficulty)

	require.NoError(t, repo.Remove(ctx, "s1"))
	got, err = repo.Find(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisPublisherChannels(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	session := rdb.Subscribe(ctx, events.SessionChannel("s1"))
	defer session.Close()
	global := rdb.Subscribe(ctx, events.EventsChannel)
	defer global.Close()
	for _, sub := range []*redis.PubSub{session, global} {
		_, err := sub.Receive(ctx)
		require.NoError(t, err)
	}

	pub := NewRedisPublisher(rdb)
	moved, err := events.New(events.TypeMoveApplied, "s1", events.MoveAppliedPayload{Index: 4, Player: game.PlayerX})
	require.NoError(t, err)
	started, err := events.New(events.TypeSessionStarted, "s1", events.SessionStartedPayload{SessionID: "s1", ServerID: "a", Difficulty: game.Hard})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(ctx, moved))
	require.NoError(t, pub.Publish(ctx, started))

	receive := func(sub *redis.PubSub) events.Event {
		t.Helper()
		select {
		case msg := <-sub.Channel():
			var ev events.Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			return ev
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
			return events.Event{}
		}
	}

	ev := receive(session)
	assert.Equal(t, events.TypeMoveApplied, ev.Type)
	var payload events.MoveAppliedPayload
	require.NoError(t, ev.Decode(&payload))
	assert.Equal(t, 4, payload.Index)

	ev = receive(global)
	assert.Equal(t, events.TypeSessionStarted, ev.Type)
	assert.Equal(t, "s1", ev.SessionID)
}
