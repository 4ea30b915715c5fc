package hub

import (
	"context"
	"log/slog"
	"time"

	apirepository "ctchen222/tictactoe-solo/internal/api/repository"
	"ctchen222/tictactoe-solo/internal/engine"
	"ctchen222/tictactoe-solo/internal/events"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/hub/types"
	"ctchen222/tictactoe-solo/internal/repository"
	"ctchen222/tictactoe-solo/internal/room"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hub")

// Config holds the settings the hub hands to every room it creates.
type Config struct {
	DefaultDifficulty game.Difficulty
	ThinkingDelay     time.Duration
	GracePeriod       time.Duration
}

// Hub keeps the running sessions of this server, routes new and returning
// connections to them and announces session lifecycle events.
type Hub struct {
	ServerID string

	cfg       Config
	newPolicy func() engine.MovePolicy
	rdb       *redis.Client
	sessions  repository.SessionRepository
	history   apirepository.HistoryRepository
	publisher events.Publisher

	rooms      map[string]*room.Room
	register   chan *types.RegistrationRequest
	unregister chan *room.Room
	moved      chan string
}

// Option configures a Hub.
type Option func(*Hub)

// WithRedis enables session presence, event fan-out and the cross-server
// event subscriber.
func WithRedis(rdb *redis.Client, presenceTTL time.Duration) Option {
	return func(h *Hub) {
		h.rdb = rdb
		h.sessions = repository.NewSessionRepository(rdb, presenceTTL)
		h.publisher = repository.NewRedisPublisher(rdb)
	}
}

// WithSessions stores session presence in sessions instead of Redis.
func WithSessions(sessions repository.SessionRepository) Option {
	return func(h *Hub) {
		h.sessions = sessions
	}
}

// WithHistory journals finished games.
func WithHistory(history apirepository.HistoryRepository) Option {
	return func(h *Hub) {
		h.history = history
	}
}

// WithPublisher overrides where engine and lifecycle events are sent
// besides the player's websocket.
func WithPublisher(p events.Publisher) Option {
	return func(h *Hub) {
		h.publisher = p
	}
}

// NewHub creates a new hub. newPolicy is called once per session.
func NewHub(cfg Config, newPolicy func() engine.MovePolicy, opts ...Option) *Hub {
	if !cfg.DefaultDifficulty.Valid() {
		cfg.DefaultDifficulty = game.Medium
	}
	h := &Hub{
		ServerID:   uuid.New().String(),
		cfg:        cfg,
		newPolicy:  newPolicy,
		rooms:      make(map[string]*room.Room),
		register:   make(chan *types.RegistrationRequest),
		unregister: make(chan *room.Room),
		moved:      make(chan string, 16),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the hub. It returns when ctx is cancelled; running rooms stop
// with it.
func (h *Hub) Run(ctx context.Context) {
	slog.InfoContext(ctx, "Hub started", "server.id", h.ServerID)
	if h.rdb != nil {
		go h.runEventSubscriber(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Hub stopping", "server.id", h.ServerID, "sessions.count", len(h.rooms))
			return

		case req := <-h.register:
			h.handleRegistration(ctx, req)

		case r := <-h.unregister:
			h.handleSessionClosed(ctx, r)

		case sessionID := <-h.moved:
			if r, ok := h.rooms[sessionID]; ok {
				slog.InfoContext(ctx, "Session started on another server, closing local copy", "session.id", sessionID)
				r.Stop(room.ReasonSessionMoved)
			}
		}
	}
}

// Register returns the register channel.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}
