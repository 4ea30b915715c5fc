package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ctchen222/tictactoe-solo/internal/api/models"
	"ctchen222/tictactoe-solo/internal/api/repository"
	"ctchen222/tictactoe-solo/internal/game"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a session token cannot be verified.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the claims of a session token. Difficulty is the level
// chosen when the session was created.
type SessionClaims struct {
	Difficulty game.Difficulty `json:"difficulty,omitempty"`
	jwt.RegisteredClaims
}

// SessionService defines the interface for guest session business logic.
type SessionService interface {
	CreateSession(ctx context.Context, difficulty game.Difficulty) (*models.SessionResponse, error)
	ParseToken(token string) (*SessionClaims, error)
	ListGames(ctx context.Context, sessionID string, limit int) ([]models.GameRecord, error)
}

type sessionService struct {
	historyRepo repository.HistoryRepository
	secret      []byte
	ttl         time.Duration
	now         func() time.Time
}

// NewSessionService creates a new SessionService signing tokens with secret.
func NewSessionService(historyRepo repository.HistoryRepository, secret []byte, ttl time.Duration) SessionService {
	return &sessionService{
		historyRepo: historyRepo,
		secret:      secret,
		ttl:         ttl,
		now:         time.Now,
	}
}

// CreateSession generates a guest session id and a signed token carrying it.
func (s *sessionService) CreateSession(ctx context.Context, difficulty game.Difficulty) (*models.SessionResponse, error) {
	sessionID := uuid.New().String()
	expiresAt := s.now().Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Difficulty: difficulty,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &models.SessionResponse{
		SessionID:  sessionID,
		Token:      tokenString,
		Difficulty: difficulty,
		ExpiresAt:  expiresAt,
	}, nil
}

// ParseToken verifies token and returns its claims. A difficulty that is
// not a known level is cleared.
func (s *sessionService) ParseToken(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if !claims.Difficulty.Valid() {
		claims.Difficulty = ""
	}
	return claims, nil
}

// ListGames returns the finished games journaled for a session.
func (s *sessionService) ListGames(ctx context.Context, sessionID string, limit int) ([]models.GameRecord, error) {
	return s.historyRepo.ListBySession(ctx, sessionID, limit)
}
