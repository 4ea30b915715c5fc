package hub

import (
	"context"
	"log/slog"

	"ctchen222/tictactoe-solo/internal/events"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/hub/types"
	"ctchen222/tictactoe-solo/internal/room"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleRegistration attaches the connection to its running session, or
// starts a new session for it.
func (h *Hub) handleRegistration(ctx context.Context, req *types.RegistrationRequest) {
	reqCtx := req.Ctx
	if reqCtx == nil {
		reqCtx = ctx
	}
	reqCtx, span := tracer.Start(reqCtx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("session.id", req.SessionID),
	))
	defer span.End()

	if existing, ok := h.rooms[req.SessionID]; ok {
		if existing.Attach(req.Player) {
			span.SetAttributes(attribute.Bool("session.reconnect", true))
			slog.InfoContext(reqCtx, "Player reconnected to running session", "session.id", req.SessionID)
			return
		}
		// The room finished but its unregistration is still queued.
		delete(h.rooms, req.SessionID)
	}

	difficulty := h.cfg.DefaultDifficulty
	if req.Difficulty != "" {
		parsed, err := game.ParseDifficulty(req.Difficulty)
		if err != nil {
			slog.WarnContext(reqCtx, "Ignoring unknown difficulty", "session.id", req.SessionID, "difficulty", req.Difficulty)
		} else {
			difficulty = parsed
		}
	}
	if resumed, ok := h.resumedDifficulty(reqCtx, req.SessionID); ok {
		difficulty = resumed
		span.SetAttributes(attribute.Bool("session.resumed", true))
	}
	span.SetAttributes(attribute.String("game.difficulty", string(difficulty)))

	newRoom := room.NewRoom(req.SessionID, h.newPolicy(), room.Options{
		Difficulty:    difficulty,
		ThinkingDelay: h.cfg.ThinkingDelay,
		GracePeriod:   h.cfg.GracePeriod,
		Publisher:     h.publisher,
		Sessions:      h.sessions,
		History:       h.history,
	})
	h.rooms[req.SessionID] = newRoom

	if h.sessions != nil {
		if err := h.sessions.Register(reqCtx, req.SessionID, h.ServerID, difficulty); err != nil {
			slog.ErrorContext(reqCtx, "Failed to register session presence", "session.id", req.SessionID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to register session presence")
		}
	}
	h.publishLifecycle(reqCtx, events.TypeSessionStarted, req.SessionID, events.SessionStartedPayload{
		SessionID:  req.SessionID,
		ServerID:   h.ServerID,
		Difficulty: difficulty,
	})

	go newRoom.Run(ctx, h.unregister)
	newRoom.Attach(req.Player)
	slog.InfoContext(reqCtx, "Session started", "session.id", req.SessionID, "difficulty", difficulty)
}

// resumedDifficulty returns the difficulty of a session that is still live
// on another server. The session keeps it when it moves here.
func (h *Hub) resumedDifficulty(ctx context.Context, sessionID string) (game.Difficulty, bool) {
	if h.sessions == nil {
		return "", false
	}
	presence, err := h.sessions.Find(ctx, sessionID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to look up session presence", "session.id", sessionID, "error", err)
		return "", false
	}
	if presence == nil || presence.ServerID == h.ServerID || !presence.Difficulty.Valid() {
		return "", false
	}
	return presence.Difficulty, true
}

// handleSessionClosed forgets a room that ended on its own.
func (h *Hub) handleSessionClosed(ctx context.Context, r *room.Room) {
	ctx, span := tracer.Start(ctx, "hub.handleSessionClosed", trace.WithAttributes(
		attribute.String("session.id", r.ID),
		attribute.String("session.close_reason", r.CloseReason()),
	))
	defer span.End()

	if current, ok := h.rooms[r.ID]; ok && current == r {
		delete(h.rooms, r.ID)
	}

	if h.sessions != nil && r.CloseReason() != room.ReasonSessionMoved {
		if err := h.sessions.Remove(ctx, r.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to remove session presence", "session.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to remove session presence")
		}
	}
	h.publishLifecycle(ctx, events.TypeSessionClosed, r.ID, events.SessionClosedPayload{
		SessionID: r.ID,
		Scores:    r.FinalScores(),
	})
	slog.InfoContext(ctx, "Session removed from hub", "session.id", r.ID, "reason", r.CloseReason())
}

func (h *Hub) publishLifecycle(ctx context.Context, eventType, sessionID string, payload any) {
	if h.publisher == nil {
		return
	}
	event, err := events.New(eventType, sessionID, payload)
	if err == nil {
		err = h.publisher.Publish(ctx, event)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish lifecycle event", "session.id", sessionID, "event.type", eventType, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}
