package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ctchen222/tictactoe-solo/internal/api/controller"
	"ctchen222/tictactoe-solo/internal/api/models"
	"ctchen222/tictactoe-solo/internal/api/service"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/hub/types"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanRegistrar chan *types.RegistrationRequest

func (c chanRegistrar) Register() chan<- *types.RegistrationRequest { return c }

type noHistory struct{}

func (noHistory) RecordGame(ctx context.Context, record *models.GameRecord) error { return nil }

func (noHistory) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.GameRecord, error) {
	return nil, nil
}

func newTestServer(t *testing.T) (*httptest.Server, chanRegistrar, service.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registrar := make(chanRegistrar, 1)
	svc := service.NewSessionService(noHistory{}, []byte("secret"), time.Hour)
	srv := NewServer(registrar, svc, controller.NewSessionController(svc, game.Medium))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, registrar, svc
}

func TestHealthz(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateSessionRoute(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", strings.NewReader(`{"difficulty":"hard"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestWebSocketRequiresToken(t *testing.T) {
	ts, registrar, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	for _, target := range []string{wsURL, wsURL + "?token=bogus"} {
		_, resp, err := websocket.DefaultDialer.Dial(target, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Empty(t, registrar)
}

func TestWebSocketRegistersSession(t *testing.T) {
	ts, registrar, svc := newTestServer(t)

	session, err := svc.CreateSession(context.Background(), game.Medium)
	require.NoError(t, err)

	target := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?difficulty=hard&token=" + session.Token
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case req := <-registrar:
		assert.Equal(t, session.SessionID, req.SessionID)
		assert.Equal(t, session.SessionID, req.Player.ID)
		assert.Equal(t, "hard", req.Difficulty)
		require.NotNil(t, req.Player.Conn)
	case <-time.After(2 * time.Second):
		t.Fatal("no registration request")
	}
}

func TestWebSocketUsesSessionDifficulty(t *testing.T) {
	ts, registrar, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", strings.NewReader(`{"difficulty":"hard"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Extras models.SessionResponse `json:"extras"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, game.Hard, body.Extras.Difficulty)

	target := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + body.Extras.Token
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case req := <-registrar:
		assert.Equal(t, body.Extras.SessionID, req.SessionID)
		assert.Equal(t, "hard", req.Difficulty)
	case <-time.After(2 * time.Second):
		t.Fatal("no registration request")
	}
}
