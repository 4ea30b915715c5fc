package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/tictactoe-solo/internal/api/controller"
	apirepository "ctchen222/tictactoe-solo/internal/api/repository"
	"ctchen222/tictactoe-solo/internal/api/service"
	"ctchen222/tictactoe-solo/internal/bot"
	"ctchen222/tictactoe-solo/internal/config"
	"ctchen222/tictactoe-solo/internal/db"
	"ctchen222/tictactoe-solo/internal/engine"
	"ctchen222/tictactoe-solo/internal/hub"
	"ctchen222/tictactoe-solo/internal/logger"
	"ctchen222/tictactoe-solo/internal/server"
	"ctchen222/tictactoe-solo/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdown := telemetry.ShutdownFunc(telemetry.Noop)
	if cfg.TelemetryEnabled {
		shutdown, err = telemetry.InitOtel(ctx, telemetry.Options{
			CollectorAddr: cfg.OtelCollectorAddr,
			PrettyTraces:  cfg.TraceStdout,
		})
		if err != nil {
			log.Fatalf("failed to initialize telemetry: %v", err)
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(logger.ParseLevel(cfg.LogLevel))

	// Initialize Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// Initialize the game journal
	historyDB, err := db.OpenHistory(ctx, cfg.HistoryDSN)
	if err != nil {
		log.Fatalf("failed to initialize history db: %v", err)
	}
	defer historyDB.Close()

	// Create repositories
	historyRepo := apirepository.NewHistoryRepository(historyDB)

	// Create services
	sessionService := service.NewSessionService(historyRepo, cfg.JWTSecret, cfg.TokenTTL)

	// Create controllers
	sessionController := controller.NewSessionController(sessionService, cfg.DefaultDifficulty)

	// Create hub
	h := hub.NewHub(hub.Config{
		DefaultDifficulty: cfg.DefaultDifficulty,
		ThinkingDelay:     cfg.ThinkingDelay,
		GracePeriod:       cfg.ReconnectGracePeriod,
	},
		func() engine.MovePolicy { return bot.NewPolicy(nil) },
		hub.WithRedis(rdb, cfg.ReconnectGracePeriod+time.Minute),
		hub.WithHistory(historyRepo),
	)
	go h.Run(ctx)

	// Create the Gin-based server
	srv := server.NewServer(h, sessionService, sessionController)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr, "server.id", h.ServerID)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
