package repository

import (
	"context"
	"testing"
	"time"

	"ctchen222/tictactoe-solo/internal/api/models"
	"ctchen222/tictactoe-solo/internal/db"
	"ctchen222/tictactoe-solo/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) HistoryRepository {
	t.Helper()
	pool, err := db.OpenHistory(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return NewHistoryRepository(pool)
}

func TestRecordAndListGames(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	finished := time.UnixMilli(1_700_000_000_000)

	first := &models.GameRecord{
		SessionID:  "s1",
		Difficulty: game.Hard,
		Status:     game.StatusWon,
		Winner:     game.PlayerO,
		Moves:      []int{0, 4, 1, 2, 6, 3, 8, 5},
		FinishedAt: finished,
	}
	second := &models.GameRecord{
		SessionID:  "s1",
		Difficulty: game.Impossible,
		Status:     game.StatusDraw,
		Moves:      []int{0, 1, 2, 4, 3, 5, 7, 6, 8},
	}
	other := &models.GameRecord{SessionID: "s2", Difficulty: game.Easy, Status: game.StatusWon, Winner: game.PlayerX, Moves: []int{0, 3, 1, 4, 2}}

	for _, rec := range []*models.GameRecord{first, second, other} {
		require.NoError(t, repo.RecordGame(ctx, rec))
		assert.NotZero(t, rec.ID)
	}
	assert.False(t, second.FinishedAt.IsZero(), "FinishedAt defaults to now")

	got, err := repo.ListBySession(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, second.ID, got[0].ID, "newest first")
	assert.Equal(t, game.StatusDraw, got[0].Status)
	assert.Equal(t, game.None, got[0].Winner)

	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, game.Hard, got[1].Difficulty)
	assert.Equal(t, game.PlayerO, got[1].Winner)
	assert.Equal(t, first.Moves, got[1].Moves)
	assert.True(t, finished.Equal(got[1].FinishedAt))
}

func TestListBySessionLimitAndEmpty(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	got, err := repo.ListBySession(ctx, "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordGame(ctx, &models.GameRecord{SessionID: "s1", Difficulty: game.Medium, Status: game.StatusDraw, Moves: []int{}}))
	}
	got, err = repo.ListBySession(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
