package controller

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ctchen222/tictactoe-solo/internal/api/models"
	"ctchen222/tictactoe-solo/internal/api/response"
	"ctchen222/tictactoe-solo/internal/api/service"
	"ctchen222/tictactoe-solo/internal/game"

	"github.com/gin-gonic/gin"
)

// SessionController handles guest session HTTP requests.
type SessionController struct {
	sessionService    service.SessionService
	defaultDifficulty game.Difficulty
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService service.SessionService, defaultDifficulty game.Difficulty) *SessionController {
	return &SessionController{
		sessionService:    sessionService,
		defaultDifficulty: defaultDifficulty,
	}
}

// CreateSession handles the guest session endpoint. The body is optional.
func (sc *SessionController) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	difficulty := sc.defaultDifficulty
	if req.Difficulty != "" {
		difficulty = game.Difficulty(req.Difficulty)
	}

	resp, err := sc.sessionService.CreateSession(c.Request.Context(), difficulty)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to create session", "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to create session")
		return
	}

	response.CreatedResponse(c, resp)
}

// ListGames returns the finished games of a session. The bearer token must
// belong to the requested session.
func (sc *SessionController) ListGames(c *gin.Context) {
	sessionID := c.Param("id")

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		token = c.Query("token")
	}
	claims, err := sc.sessionService.ParseToken(token)
	if err != nil {
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	if claims.Subject != sessionID {
		response.ErrorResponse(c, http.StatusForbidden, "token does not belong to this session")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			response.ErrorResponse(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}

	records, err := sc.sessionService.ListGames(c.Request.Context(), sessionID, limit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to list games", "session.id", sessionID, "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to list games")
		return
	}

	response.SuccessResponseList(c, records)
}
