package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/tictactoe-solo/internal/events"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// runEventSubscriber watches the global events channel for sessions taken
// over by another server.
func (h *Hub) runEventSubscriber(ctx context.Context) {
	slog.InfoContext(ctx, "Event subscriber started", "channel", events.EventsChannel)
	pubsub := h.rdb.Subscribe(ctx, events.EventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleEvent(ctx, msg.Payload)
		}
	}
}

func (h *Hub) handleEvent(ctx context.Context, raw string) {
	ctx, span := tracer.Start(ctx, "hub.handleEvent", trace.WithAttributes(
		attribute.String("event.channel", events.EventsChannel),
	))
	defer span.End()

	var event events.Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		slog.ErrorContext(ctx, "Could not unmarshal global event", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not unmarshal global event")
		return
	}
	span.SetAttributes(attribute.String("event.type", event.Type))

	switch event.Type {
	case events.TypeSessionStarted:
		var payload events.SessionStartedPayload
		if err := event.Decode(&payload); err != nil {
			slog.ErrorContext(ctx, "Could not unmarshal session_started payload", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Could not unmarshal session_started payload")
			return
		}
		if payload.ServerID == h.ServerID {
			return
		}
		select {
		case h.moved <- payload.SessionID:
		case <-ctx.Done():
		}
	}
}
