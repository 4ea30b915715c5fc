package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"ctchen222/tictactoe-solo/internal/game"
)

// Config holds the server settings read from the environment.
type Config struct {
	HTTPAddr             string
	RedisAddr            string
	OtelCollectorAddr    string
	TelemetryEnabled     bool
	TraceStdout          bool
	JWTSecret            []byte
	TokenTTL             time.Duration
	ThinkingDelay        time.Duration
	ReconnectGracePeriod time.Duration
	DefaultDifficulty    game.Difficulty
	HistoryDSN           string
	LogLevel             string
}

// Load reads the configuration, falling back to defaults for unset variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:         getEnv("REDIS_CONNSTRING", "localhost:6379"),
		OtelCollectorAddr: getEnv("OTEL_COLLECTOR_ADDR", "otel-collector:4317"),
		JWTSecret:         []byte(getEnv("JWT_SECRET", "my_super_secret_key")),
		HistoryDSN:        getEnv("HISTORY_DSN", ":memory:"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.TelemetryEnabled, err = getBool("TELEMETRY_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.TraceStdout, err = getBool("TRACE_STDOUT", false); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ThinkingDelay, err = getDuration("THINKING_DELAY", 600*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.ReconnectGracePeriod, err = getDuration("RECONNECT_GRACE_PERIOD", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.DefaultDifficulty, err = game.ParseDifficulty(getEnv("DEFAULT_DIFFICULTY", string(game.Medium))); err != nil {
		return nil, fmt.Errorf("DEFAULT_DIFFICULTY: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
