package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richjohnson-wwt/nat-wof/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewStore(sqlDB)
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, Entry{
		GameID: 1, Winner: "Richard", Answer: "STEAK KNIFE", Theme: "Thing",
		Scores: map[string]int{"Human": 1300}, FinishedAt: base,
	}))
	require.NoError(t, s.Record(ctx, Entry{
		GameID: 2, Winner: "AI1", Answer: "OVER THE MOON", Theme: "Phrase",
		FinishedAt: base.Add(time.Hour),
	}))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].GameID)
	assert.Equal(t, "OVER THE MOON", got[0].Answer)
	assert.Empty(t, got[0].Scores)
	assert.Equal(t, 1300, got[1].Scores["Human"])
	assert.True(t, base.Equal(got[1].FinishedAt))

	got, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	board, err := s.Leaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, board)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, w := range []string{"AI1", "Richard", "AI1", "AI2", "AI1", "Richard"} {
		require.NoError(t, s.Record(ctx, Entry{
			GameID: int64(i + 1), Winner: w, Answer: "X", FinishedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	board, err = s.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "AI1", board[0].Winner)
	assert.Equal(t, 3, board[0].Wins)
	assert.Equal(t, "Richard", board[1].Winner)
	assert.Equal(t, 2, board[1].Wins)
}
