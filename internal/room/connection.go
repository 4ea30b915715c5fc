package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ctchen222/tictactoe-solo/internal/events"
	"ctchen222/tictactoe-solo/internal/hub/types"
	"ctchen222/tictactoe-solo/internal/player"
	"ctchen222/tictactoe-solo/pkg/proto"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var errNotConnected = errors.New("player not connected")

// Publish forwards an engine event to the player's websocket. Events are
// dropped while the player is away; a reconnect gets a full state message.
func (r *Room) Publish(ctx context.Context, event events.Event) error {
	if r.player == nil || r.player.Status != player.StatusConnected {
		return nil
	}
	return r.send(ctx, event)
}

func (r *Room) send(ctx context.Context, message any) error {
	if r.player == nil || r.player.Status != player.StatusConnected {
		return errNotConnected
	}

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := r.player.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.WarnContext(ctx, "error writing message to player", "session.id", r.ID, "error", err)
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (r *Room) sendState(ctx context.Context) {
	if err := r.send(ctx, proto.NewStateMessage(r.engine.Snapshot())); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
	}
}

func (r *Room) sendError(ctx context.Context, reason string) {
	if err := r.send(ctx, proto.NewErrorMessage(reason)); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
	}
}

func newClosedFrame(reason string) *proto.ServerToClientMessage {
	return proto.NewClosedMessage(reason)
}

// ReadPump pumps messages from the websocket connection to the room's run
// loop until the connection fails.
func (r *Room) ReadPump(p *player.Player) {
	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	defer func() {
		select {
		case r.detach <- p:
		case <-r.done:
		}
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			slog.WarnContext(ctx, "Player connection error", "session.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Player connection error")
			return
		}
		select {
		case r.incoming <- &types.PlayerMessage{Player: p, Message: msg}:
		case <-r.done:
			return
		}
	}
}

// handleAttach makes p the session's connection, replacing any previous one.
func (r *Room) handleAttach(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "room.handleAttach", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	reconnect := r.player != nil
	if old := r.player; old != nil && old != p && old.Conn != nil {
		old.Status = player.StatusDisconnected
		old.Conn.Close()
	}

	r.stopGraceTimer()
	p.Status = player.StatusConnected
	p.LastSeen = time.Now()
	r.player = p
	go r.ReadPump(p)

	if r.sessions != nil {
		if err := r.sessions.UpdateConnectionStatus(ctx, r.ID, player.StatusConnected); err != nil {
			slog.ErrorContext(ctx, "Failed to set session status to connected", "session.id", r.ID, "error", err)
			span.RecordError(err)
		}
	}

	span.SetAttributes(attribute.Bool("session.reconnect", reconnect))
	slog.InfoContext(ctx, "Player attached to session", "session.id", r.ID, "reconnect", reconnect)
	r.sendState(ctx)
}

// handleDetach starts the reconnection grace period when the current
// connection drops. Stale connections are ignored.
func (r *Room) handleDetach(ctx context.Context, p *player.Player) {
	if p != r.player || p.Status == player.StatusDisconnected {
		return
	}
	ctx, span := tracer.Start(ctx, "room.handleDetach", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	p.Status = player.StatusDisconnected
	p.LastSeen = time.Now()
	p.Conn.Close()
	r.graceTimer = time.NewTimer(r.gracePeriod)

	if r.sessions != nil {
		if err := r.sessions.UpdateConnectionStatus(ctx, r.ID, player.StatusDisconnected); err != nil {
			slog.ErrorContext(ctx, "Failed to set session status to disconnected", "session.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to set session status to disconnected")
		}
	}
	slog.InfoContext(ctx, "Player disconnected. Waiting for reconnection.", "session.id", r.ID, "grace_period", r.gracePeriod)
}

func (r *Room) ping(ctx context.Context) {
	if r.player == nil || r.player.Status != player.StatusConnected {
		return
	}
	if err := r.player.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		slog.WarnContext(ctx, "Failed to send ping to player, assuming disconnect", "session.id", r.ID, "error", err)
		r.handleDetach(ctx, r.player)
		return
	}
	// Refreshes the presence TTL.
	if r.sessions != nil {
		if err := r.sessions.UpdateConnectionStatus(ctx, r.ID, player.StatusConnected); err != nil {
			slog.WarnContext(ctx, "Failed to refresh session presence", "session.id", r.ID, "error", err)
		}
	}
}
