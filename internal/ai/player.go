// internal/ai/player.go
//
// Automated player: one turn is the sequential pipeline
//   solve -> buy_vowel -> spin
// where every step receives the previous step's Result.
//
// Rules:
//   - solve proposes an answer only when the puzzle bank has exactly one
//     candidate matching the board and enough of the board is revealed;
//     otherwise it sets next_action to buy_vowel (affordable and vowels
//     left) or spin.
//   - buy_vowel is skipped after a solve attempt or when next_action is
//     spin; a successful purchase sets skip_next.
//   - spin is skipped when skip_next is set.
//   - history accumulates every step; all steps share one turn id.

package ai

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/richjohnson-wwt/nat-wof/internal/actions"
	"github.com/richjohnson-wwt/nat-wof/internal/game"
	"github.com/richjohnson-wwt/nat-wof/internal/puzzles"
)

// Solver proposes a full answer for the board, or "" to pass.
type Solver interface {
	Guess(g *game.Game) string
}

// BankSolver answers from a puzzle bank.
type BankSolver struct {
	Bank      *puzzles.Bank
	Threshold float64 // minimum revealed letter ratio, 0..1
}

// Guess returns the only bank answer consistent with the board, theme and
// guessed letters once at least Threshold of the letters are revealed. A
// fully revealed board is read off directly, bank or not.
func (s BankSolver) Guess(g *game.Game) string {
	if g == nil {
		return ""
	}
	if g.Answer != "" && game.Solved(g.Answer, g.Revealed) {
		return g.Answer
	}
	if s.Bank == nil {
		return ""
	}
	if game.RevealedRatio(g.Puzzle) < s.Threshold {
		return ""
	}
	cands := s.Bank.Candidates(g.Theme, g.Puzzle, g.Guessed())
	if len(cands) != 1 {
		return ""
	}
	return cands[0]
}

// Player drives AI turns through the action handlers.
type Player struct {
	h      *actions.Handler
	solver Solver
	vowel  actions.VowelFunc
	cons   actions.ConsonantFunc
}

// NewPlayer builds a Player. A nil solver never solves; a nil vowel chooser
// means the heuristic one.
func NewPlayer(h *actions.Handler, solver Solver, vowel actions.VowelFunc) *Player {
	if solver == nil {
		solver = BankSolver{}
	}
	if vowel == nil {
		vowel, _ = NewVowelChooser(StrategyHeuristic, false, nil)
	}
	return &Player{h: h, solver: solver, vowel: vowel, cons: ConsonantChooser()}
}

// TakeTurn runs the pipeline once for player and returns the last step's
// Result with the full history attached.
func (p *Player) TakeTurn(ctx context.Context, player string) (*actions.Result, error) {
	if err := p.h.CheckTurn(ctx, player); err != nil {
		return nil, err
	}
	turnID := uuid.NewString()
	logger := log.With().Str("turnId", turnID).Str("player", player).Logger()

	var history []actions.Result
	step := func(res *actions.Result) *actions.Result {
		res.TurnID = turnID
		res.History = nil
		history = append(history, *res)
		logger.Debug().Str("action", string(res.Action)).Bool("success", res.Success).Bool("skipped", res.Skipped).Msg(res.Details)
		return res
	}

	res, err := p.solve(ctx, player)
	if err != nil {
		return nil, err
	}
	prev := step(res)

	res, err = p.buyVowel(ctx, player, prev)
	if err != nil {
		return nil, err
	}
	prev = step(res)

	res, err = p.spin(ctx, player, prev)
	if err != nil {
		return nil, err
	}
	last := step(res)

	last.History = history
	logger.Info().Str("final", last.FinalAnswer).Msg("ai turn complete")
	return last, nil
}

func (p *Player) solve(ctx context.Context, player string) (*actions.Result, error) {
	g, err := p.h.State().Current(ctx)
	if err != nil {
		return nil, err
	}
	if guess := p.solver.Guess(g); guess != "" {
		res, err := p.h.Solve(ctx, player, guess)
		if err != nil {
			return nil, err
		}
		// A wrong attempt already passed the turn.
		res.SkipNext = true
		return res, nil
	}

	next := actions.ActionSpin
	if g.Scores[player] >= game.VowelCost && len(g.GuessedVowels) < len(game.Vowels) {
		next = actions.ActionBuyVowel
	}
	return &actions.Result{
		Action:     actions.ActionSolve,
		Details:    "No solution available yet",
		Player:     player,
		NextAction: next,
		Updates:    boardUpdates(player, g),
	}, nil
}

func (p *Player) buyVowel(ctx context.Context, player string, prev *actions.Result) (*actions.Result, error) {
	if prev.SkipNext || (prev.Action == actions.ActionSolve && prev.Success) {
		return p.skipped(ctx, actions.ActionBuyVowel, prev, "Skipped because puzzle solution was attempted.", true)
	}
	if prev.NextAction == actions.ActionSpin {
		return p.skipped(ctx, actions.ActionBuyVowel, prev, "Skipped because agent chose to spin.", false)
	}
	res, err := p.h.BuyVowel(ctx, player, p.vowel)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		res.NextAction = actions.ActionSpin
	}
	return res, nil
}

func (p *Player) spin(ctx context.Context, player string, prev *actions.Result) (*actions.Result, error) {
	if prev.SkipNext {
		return p.skipped(ctx, actions.ActionSpin, prev, prev.Details, true)
	}
	return p.h.Spin(ctx, player, p.cons)
}

// skipped is a no-op step; it carries the outcome of prev forward so the
// last step of a turn always reports how the turn ended.
func (p *Player) skipped(ctx context.Context, action actions.Action, prev *actions.Result, details string, skipNext bool) (*actions.Result, error) {
	g, err := p.h.State().Current(ctx)
	if err != nil {
		return nil, err
	}
	return &actions.Result{
		Action:      action,
		Success:     true,
		Skipped:     true,
		Details:     details,
		Player:      prev.Player,
		NextAction:  prev.NextAction,
		EndsTurn:    prev.EndsTurn,
		SkipNext:    skipNext,
		Updates:     boardUpdates(prev.Player, g),
		FinalAnswer: prev.FinalAnswer,
	}, nil
}

func boardUpdates(player string, g *game.Game) actions.Updates {
	return actions.Updates{
		Player: player,
		Puzzle: g.Puzzle,
		Scores: g.Scores,
		Status: g.Status,
		Turn:   g.Turn,
	}
}
