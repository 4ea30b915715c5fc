package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandlerDispatchesToAll(t *testing.T) {
	var first, second bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&first, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&second, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With("session.id", "s1").WithGroup("move")

	log.Info("applied", "index", 4)

	if !strings.Contains(first.String(), "session.id=s1") || !strings.Contains(first.String(), "move.index=4") {
		t.Errorf("first handler output = %q", first.String())
	}
	if second.Len() != 0 {
		t.Errorf("warn-level handler received an info record: %q", second.String())
	}
}

func TestMultiHandlerEnabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Enabled(info) = true, want false")
	}
	if !h.Enabled(ctx, slog.LevelWarn) {
		t.Error("Enabled(warn) = false, want true")
	}
}

func TestNewWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelDebug).Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("console output = %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
