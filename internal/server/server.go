package server

import (
	"context"
	"log/slog"
	"net/http"

	"ctchen222/tictactoe-solo/internal/api/controller"
	"ctchen222/tictactoe-solo/internal/api/response"
	"ctchen222/tictactoe-solo/internal/api/service"
	"ctchen222/tictactoe-solo/internal/hub/types"
	"ctchen222/tictactoe-solo/internal/player"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Registrar accepts websocket connections for sessions.
type Registrar interface {
	Register() chan<- *types.RegistrationRequest
}

type Server struct {
	hub               Registrar
	sessionService    service.SessionService
	sessionController *controller.SessionController
	upgrader          websocket.Upgrader
}

func NewServer(h Registrar, sessionService service.SessionService, sessionController *controller.SessionController) *Server {
	return &Server{
		hub:               h,
		sessionService:    sessionService,
		sessionController: sessionController,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Engine returns the gin router with every route registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	{
		api.POST("/sessions", s.sessionController.CreateSession)
		api.GET("/sessions/:id/games", s.sessionController.ListGames)
	}
	return r
}

// Handler is Engine wrapped with OpenTelemetry HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.Engine(), "tictactoe-solo")
}

// handleWebSocket's only responsibility is to authenticate the session,
// upgrade the connection and pass a registration request to the hub. It
// does not distinguish between new and reconnecting sessions.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.Path),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	claims, err := s.sessionService.ParseToken(c.Query("token"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid session token")
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	sessionID := claims.Subject
	span.SetAttributes(attribute.String("session.id", sessionID))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "session.id", sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	// The query overrides the level chosen when the session was created.
	difficulty := c.Query("difficulty")
	if difficulty == "" {
		difficulty = string(claims.Difficulty)
	}
	span.SetAttributes(attribute.String("game.difficulty", difficulty))

	req := &types.RegistrationRequest{
		Player:     player.NewPlayer(sessionID, conn),
		SessionID:  sessionID,
		Difficulty: difficulty,
		// The request context ends with this handler; the hub keeps the trace.
		Ctx: context.WithoutCancel(ctx),
	}

	select {
	case s.hub.Register() <- req:
	case <-ctx.Done():
		conn.Close()
	}
}
