package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richjohnson-wwt/nat-wof/internal/actions"
	"github.com/richjohnson-wwt/nat-wof/internal/game"
	"github.com/richjohnson-wwt/nat-wof/internal/kv"
	"github.com/richjohnson-wwt/nat-wof/internal/puzzles"
	"github.com/richjohnson-wwt/nat-wof/internal/wheel"
)

type cashWheel struct{}

func (cashWheel) Spin() wheel.Wedge { return wheel.Wedge{Label: "500", Kind: wheel.Cash, Amount: 500} }

func newPlayer(t *testing.T, answer string, bank ...string) (*Player, *game.State) {
	t.Helper()
	st := game.NewState(kv.NewMemoryStore())
	_, err := st.StartNewGame(context.Background(), answer, "Thing", nil)
	require.NoError(t, err)

	ps := make([]puzzles.Puzzle, 0, len(bank))
	for _, a := range bank {
		ps = append(ps, puzzles.Puzzle{Answer: a, Theme: "Thing"})
	}
	b, err := puzzles.NewBank(ps, nil)
	require.NoError(t, err)

	h := actions.New(st, cashWheel{}, nil)
	return NewPlayer(h, BankSolver{Bank: b}, nil), st
}

func TestTakeTurnSolvesUniqueCandidate(t *testing.T) {
	ctx := context.Background()
	p, st := newPlayer(t, "STEAK KNIFE", "STEAK KNIFE", "OVER THE MOON")

	res, err := p.TakeTurn(ctx, game.PlayerAI1)
	require.NoError(t, err)
	require.Len(t, res.History, 3)

	assert.Equal(t, actions.ActionSolve, res.History[0].Action)
	assert.True(t, res.History[0].Success)
	assert.True(t, res.History[1].Skipped)
	assert.True(t, res.History[2].Skipped)
	assert.Equal(t, actions.ActionSpin, res.Action)
	assert.Equal(t, game.StatusFinished, res.Updates.Status)
	assert.NotEmpty(t, res.TurnID)
	for _, h := range res.History {
		assert.Equal(t, res.TurnID, h.TurnID)
	}

	status, err := st.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, status)
}

func TestTakeTurnSpinsWhenAmbiguous(t *testing.T) {
	ctx := context.Background()
	p, _ := newPlayer(t, "STEAK KNIFE", "STEAK KNIFE", "SHEEP SHEAR")

	res, err := p.TakeTurn(ctx, game.PlayerAI1)
	require.NoError(t, err)
	require.Len(t, res.History, 3)

	assert.False(t, res.History[0].Success)
	assert.Equal(t, actions.ActionSpin, res.History[0].NextAction)
	assert.True(t, res.History[1].Skipped)
	assert.False(t, res.History[1].SkipNext)

	assert.Equal(t, actions.ActionSpin, res.Action)
	assert.False(t, res.Skipped)
	assert.Equal(t, "R", res.Updates.Letter)
	assert.True(t, res.EndsTurn)
	assert.Equal(t, game.PlayerAI2, res.Updates.Turn)
}

func TestTakeTurnBuysVowelWhenAffordable(t *testing.T) {
	ctx := context.Background()
	p, st := newPlayer(t, "STEAK KNIFE", "STEAK KNIFE", "SHEEP SHEAR")
	_, err := st.UpdateScore(ctx, game.PlayerAI1, 600)
	require.NoError(t, err)

	res, err := p.TakeTurn(ctx, game.PlayerAI1)
	require.NoError(t, err)

	assert.Equal(t, actions.ActionBuyVowel, res.History[0].NextAction)
	buy := res.History[1]
	assert.True(t, buy.Success)
	assert.Equal(t, "E", buy.Updates.Letter)
	assert.True(t, buy.SkipNext)

	assert.True(t, res.Skipped)
	assert.False(t, res.EndsTurn)
	assert.Equal(t, 350, res.Updates.Scores[game.PlayerAI1])
	assert.Equal(t, game.PlayerAI1, res.Updates.Turn)
}

func TestTakeTurnWrongSolveEndsTurn(t *testing.T) {
	ctx := context.Background()
	p, _ := newPlayer(t, "STEAK KNIFE", "STEAK SAUCE")

	res, err := p.TakeTurn(ctx, game.PlayerAI1)
	require.NoError(t, err)

	assert.Equal(t, actions.ActionSolve, res.History[0].Action)
	assert.False(t, res.History[0].Success)
	assert.True(t, res.Skipped)
	assert.True(t, res.EndsTurn)
	assert.Equal(t, game.PlayerAI2, res.Updates.Turn)
}

func TestTakeTurnRespectsTurn(t *testing.T) {
	p, _ := newPlayer(t, "STEAK KNIFE", "STEAK KNIFE")
	_, err := p.TakeTurn(context.Background(), game.PlayerHuman)
	assert.ErrorIs(t, err, actions.ErrNotYourTurn)
}

func TestBankSolverThreshold(t *testing.T) {
	b, err := puzzles.NewBank([]puzzles.Puzzle{{Answer: "STEAK KNIFE", Theme: "Thing"}}, nil)
	require.NoError(t, err)
	g := &game.Game{Puzzle: "_ _ _ _ _ * _ _ _ _ _", Theme: "Thing"}

	assert.Equal(t, "STEAK KNIFE", BankSolver{Bank: b}.Guess(g))
	assert.Empty(t, BankSolver{Bank: b, Threshold: 0.5}.Guess(g))

	g.Puzzle = "S T E A K * K _ _ _ E"
	g.GuessedConsonants = []string{"S", "T", "K"}
	g.GuessedVowels = []string{"E", "A"}
	assert.Equal(t, "STEAK KNIFE", BankSolver{Bank: b, Threshold: 0.5}.Guess(g))
}

func TestBankSolverReadsFullyRevealedBoard(t *testing.T) {
	answer := "ROCK & ROLL"
	g := &game.Game{Answer: answer, Theme: "Phrase", Revealed: game.AllPositions(answer)}
	g.Puzzle = game.Mask(answer, g.Revealed)

	assert.Equal(t, answer, BankSolver{Threshold: 1}.Guess(g), "not in any bank")

	g.Revealed = g.Revealed[1:]
	g.Puzzle = game.Mask(answer, g.Revealed)
	assert.Empty(t, BankSolver{}.Guess(g))
}
