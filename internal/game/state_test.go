package game

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richjohnson-wwt/nat-wof/internal/kv"
)

func newTestState(t *testing.T, answer string) (*State, kv.Store) {
	t.Helper()
	store := kv.NewMemoryStore()
	s := NewState(store)
	_, err := s.StartNewGame(context.Background(), answer, "Thing", map[string]string{
		PlayerAI1: "AI1_guy", PlayerAI2: "AI2_guy", PlayerHuman: "Richard",
	})
	require.NoError(t, err)
	return s, store
}

func TestStartNewGame(t *testing.T) {
	ctx := context.Background()
	s, store := newTestState(t, "steak knife")

	g, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.ID)
	assert.Equal(t, "_ _ _ _ _ * _ _ _ _ _", g.Puzzle)
	assert.Equal(t, "STEAK KNIFE", g.Answer)
	assert.Equal(t, "Thing", g.Theme)
	assert.Equal(t, StatusActive, g.Status)
	assert.Equal(t, PlayerAI1, g.Turn)
	assert.Equal(t, map[string]int{"AI1": 0, "AI2": 0, "Human": 0}, g.Scores)
	assert.Empty(t, g.Revealed)

	// The answer lives outside the hash.
	raw, err := store.HGetAll(ctx, "game:1")
	require.NoError(t, err)
	for _, v := range raw {
		assert.NotContains(t, v, "STEAK KNIFE")
	}

	id, err := s.StartNewGame(ctx, "OVER THE MOON", "Phrase", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
	scores, err := s.Scores(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"AI1": 0, "AI2": 0, "Human": 0}, scores)
}

func TestStartNewGameRejectsEmptyAnswer(t *testing.T) {
	s := NewState(kv.NewMemoryStore())
	_, err := s.StartNewGame(context.Background(), " & ", "Thing", nil)
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestNoGame(t *testing.T) {
	ctx := context.Background()
	s := NewState(kv.NewMemoryStore())

	_, err := s.Current(ctx)
	assert.ErrorIs(t, err, ErrNoGame)
	_, err = s.Turn(ctx)
	assert.ErrorIs(t, err, ErrNoGame)
	_, err = s.RevealLetter(ctx, "E")
	assert.ErrorIs(t, err, ErrNoGame)
}

func TestRevealLetterUpdatesPuzzleAndCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, "STEAK KNIFE")

	n, err := s.RevealLetter(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	puzzle, err := s.Field(ctx, FieldPuzzle)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(puzzle, "E"))
	assert.Contains(t, puzzle, "*")
	assert.Contains(t, puzzle, "_")

	n, err = s.RevealLetter(ctx, "E")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.RevealLetter(ctx, "Z")
	require.NoError(t, err)
	assert.Zero(t, n)

	g, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 10}, g.Revealed)
	assert.Equal(t, Mask(g.Answer, g.Revealed), g.Puzzle)
}

func TestRevealAllRemovesUnderscores(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, "STEAK KNIFE")

	require.NoError(t, s.RevealAll(ctx))
	puzzle, err := s.Field(ctx, FieldPuzzle)
	require.NoError(t, err)
	assert.NotContains(t, puzzle, "_")
	assert.Contains(t, puzzle, "*")
}

func TestUpdateScore(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, "STEAK KNIFE")

	got, err := s.UpdateScore(ctx, PlayerAI1, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, got)
	got, err = s.UpdateScore(ctx, PlayerAI1, 250)
	require.NoError(t, err)
	assert.Equal(t, 350, got)

	raw, err := s.Field(ctx, FieldScores)
	require.NoError(t, err)
	var scores map[string]int
	require.NoError(t, json.Unmarshal([]byte(raw), &scores))
	assert.Equal(t, 350, scores["AI1"])

	// Missing players are initialised.
	got, err = s.UpdateScore(ctx, "Guest", 400)
	require.NoError(t, err)
	assert.Equal(t, 400, got)

	require.NoError(t, s.ZeroScore(ctx, PlayerAI1))
	score, err := s.PlayerScore(ctx, PlayerAI1)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestAddGuessedLetter(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, "STEAK KNIFE")

	require.NoError(t, s.AddGuessedLetter(ctx, "t", false))
	require.NoError(t, s.AddGuessedLetter(ctx, "T", false))
	require.NoError(t, s.AddGuessedLetter(ctx, "r", false))
	require.NoError(t, s.AddGuessedLetter(ctx, "e", true))
	require.NoError(t, s.AddGuessedLetter(ctx, "", true))

	g, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"T", "R"}, g.GuessedConsonants)
	assert.Equal(t, []string{"E"}, g.GuessedVowels)
	assert.Equal(t, []string{"T", "R", "E"}, g.Guessed())

	vowels, err := s.UnguessedVowels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "I", "O", "U"}, vowels)

	cons, err := s.UnguessedConsonants(ctx)
	require.NoError(t, err)
	assert.Equal(t, "S", cons[0])
	assert.NotContains(t, cons, "T")
	assert.Len(t, cons, len(ConsonantOrder)-2)
}

func TestNextTurnRotation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, "STEAK KNIFE")

	for _, want := range []string{PlayerAI2, PlayerHuman, PlayerAI1, PlayerAI2} {
		got, err := s.NextTurn(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	require.NoError(t, s.SetTurn(ctx, "Pat"))
	got, err := s.NextTurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, PlayerAI1, got)

	require.NoError(t, s.SetTurn(ctx, ""))
	got, err = s.NextTurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, PlayerAI1, got)
}

func TestFinish(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, "STEAK KNIFE")

	require.NoError(t, s.Finish(ctx, PlayerHuman))
	g, err := s.Current(ctx)
	require.NoError(t, err)
	assert.True(t, g.Finished())
	assert.Equal(t, "Richard", g.Winner)
	assert.Equal(t, "S T E A K * K N I F E", g.Puzzle)
	assert.Equal(t, Mask(g.Answer, g.Revealed), g.Puzzle)
}

func TestDisplayName(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, "STEAK KNIFE")

	name, err := s.DisplayName(ctx, PlayerAI2)
	require.NoError(t, err)
	assert.Equal(t, "AI2_guy", name)

	name, err = s.DisplayName(ctx, "Pat")
	require.NoError(t, err)
	assert.Equal(t, "Pat", name)

	names, err := s.PlayerNames(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func TestChargeNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, "steak knife")
	_, err := s.UpdateScore(ctx, PlayerAI1, 600)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		charged int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.Charge(ctx, PlayerAI1, VowelCost)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				charged++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, charged)
	score, err := s.PlayerScore(ctx, PlayerAI1)
	require.NoError(t, err)
	assert.Equal(t, 100, score)

	left, ok, err := s.Charge(ctx, PlayerAI1, VowelCost)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 100, left)
}
