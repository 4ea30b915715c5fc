package service

import (
	"context"
	"testing"
	"time"

	"ctchen222/tictactoe-solo/internal/api/models"
	"ctchen222/tictactoe-solo/internal/game"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	records []models.GameRecord
	gotID   string
	gotN    int
}

func (f *fakeHistory) RecordGame(ctx context.Context, record *models.GameRecord) error {
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeHistory) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.GameRecord, error) {
	f.gotID, f.gotN = sessionID, limit
	return f.records, nil
}

func TestCreateSessionAndParseToken(t *testing.T) {
	svc := NewSessionService(&fakeHistory{}, []byte("secret"), time.Hour)

	resp, err := svc.CreateSession(context.Background(), game.Hard)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, game.Hard, resp.Difficulty)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	claims, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, claims.Subject)
	assert.Equal(t, game.Hard, claims.Difficulty)

	other, err := svc.CreateSession(context.Background(), game.Easy)
	require.NoError(t, err)
	assert.NotEqual(t, resp.SessionID, other.SessionID)
}

func TestParseTokenRejects(t *testing.T) {
	svc := NewSessionService(&fakeHistory{}, []byte("secret"), time.Hour)
	resp, err := svc.CreateSession(context.Background(), game.Medium)
	require.NoError(t, err)

	expired := NewSessionService(&fakeHistory{}, []byte("secret"), -time.Minute)
	old, err := expired.CreateSession(context.Background(), game.Medium)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "s1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		svc   SessionService
		token string
	}{
		{"garbage", svc, "not-a-token"},
		{"wrong secret", NewSessionService(&fakeHistory{}, []byte("other"), time.Hour), resp.Token},
		{"expired", svc, old.Token},
		{"no expiry", svc, noExp},
		{"no subject", svc, noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.svc.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestListGamesDelegates(t *testing.T) {
	history := &fakeHistory{records: []models.GameRecord{{ID: 1, SessionID: "s1", Status: game.StatusDraw}}}
	svc := NewSessionService(history, []byte("secret"), time.Hour)

	got, err := svc.ListGames(context.Background(), "s1", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "s1", history.gotID)
	assert.Equal(t, 10, history.gotN)
}

func TestParseTokenDropsUnknownDifficulty(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Difficulty: "nightmare",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "s1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	svc := NewSessionService(&fakeHistory{}, []byte("secret"), time.Hour)
	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.Subject)
	assert.Empty(t, claims.Difficulty)
}
