// internal/actions/actions.go
//
// Action handlers: spin, buy-vowel and solve against the current game.
//
// Responsibilities:
//   - Enforce turn ownership and game-over before touching state.
//   - Apply one rule per call and write updates back through game.State.
//   - Advance the turn with NextTurn whenever the player's turn ends.
//   - Describe what happened in a Result that every driver (CLI, AI, HTTP)
//     can print or serialize.
//
// Notes:
//   - Letters are chosen through callbacks so human input, AI strategies and
//     HTTP request bodies share one rule implementation.
//   - Only store failures and rule violations are returned as errors; a
//     refused purchase is a Result with Success=false.

package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/richjohnson-wwt/nat-wof/internal/game"
	"github.com/richjohnson-wwt/nat-wof/internal/results"
	"github.com/richjohnson-wwt/nat-wof/internal/wheel"
)

var (
	ErrNotYourTurn   = errors.New("not your turn")
	ErrGameOver      = errors.New("game is over")
	ErrInvalidLetter = errors.New("invalid letter")
)

// Action names, as used in Result.Action and Result.NextAction.
type Action string

const (
	ActionSpin     Action = "spin"
	ActionBuyVowel Action = "buy_vowel"
	ActionSolve    Action = "solve"
)

// ConsonantFunc picks a consonant after a cash spin. remaining lists the
// unguessed consonants in preference order and is never empty.
type ConsonantFunc func(ctx context.Context, wedge wheel.Wedge, masked string, remaining []string) (string, error)

// VowelFunc picks a vowel to buy from the non-empty remaining list.
type VowelFunc func(ctx context.Context, masked string, remaining []string) (string, error)

// Fixed returns a chooser that always answers letter. Used by drivers that
// know the letter before the wheel is spun.
func Fixed(letter string) ConsonantFunc {
	return func(context.Context, wheel.Wedge, string, []string) (string, error) { return letter, nil }
}

// FixedVowel is the VowelFunc counterpart of Fixed.
func FixedVowel(letter string) VowelFunc {
	return func(context.Context, string, []string) (string, error) { return letter, nil }
}

// Updates is the state delta of one action.
type Updates struct {
	Player          string         `json:"player"`
	Wedge           string         `json:"wheel_wedge,omitempty"`
	Letter          string         `json:"chosen_letter,omitempty"`
	Occurrences     int            `json:"occurrences"`
	Amount          int            `json:"amount,omitempty"`
	Cost            int            `json:"cost,omitempty"`
	Guess           string         `json:"guess,omitempty"`
	Answer          string         `json:"answer,omitempty"` // set once solved
	Puzzle          string         `json:"puzzle"`
	Status          game.Status    `json:"status,omitempty"`
	Scores          map[string]int `json:"scores,omitempty"`
	Turn            string         `json:"turn,omitempty"`
	RemainingVowels []string       `json:"remaining_vowels,omitempty"`
}

// Result describes one action.
type Result struct {
	TurnID      string   `json:"turn_id,omitempty"`
	Action      Action   `json:"action"`
	Success     bool     `json:"success"`
	Skipped     bool     `json:"skipped"`
	Details     string   `json:"details"`
	Player      string   `json:"player"`
	NextAction  Action   `json:"next_action,omitempty"`
	EndsTurn    bool     `json:"ends_turn"`
	SkipNext    bool     `json:"skip_next,omitempty"`
	Updates     Updates  `json:"updates"`
	FinalAnswer string   `json:"final_answer,omitempty"`
	History     []Result `json:"history,omitempty"`
}

// Spinner is the part of the wheel the handlers need.
type Spinner interface {
	Spin() wheel.Wedge
}

// Recorder stores finished games.
type Recorder interface {
	Record(ctx context.Context, e results.Entry) error
}

// Handler applies actions to the current game.
type Handler struct {
	state    *game.State
	wheel    Spinner
	recorder Recorder
}

// New builds a Handler. recorder may be nil.
func New(state *game.State, spinner Spinner, recorder Recorder) *Handler {
	return &Handler{state: state, wheel: spinner, recorder: recorder}
}

// State exposes the underlying accessor.
func (h *Handler) State() *game.State { return h.state }

// CheckTurn fails with ErrGameOver when the game is finished and with
// ErrNotYourTurn when player does not hold the turn.
func (h *Handler) CheckTurn(ctx context.Context, player string) error {
	status, err := h.state.Status(ctx)
	if err != nil {
		return err
	}
	if status == game.StatusFinished {
		return ErrGameOver
	}
	turn, err := h.state.Turn(ctx)
	if err != nil {
		return err
	}
	if turn != player {
		return fmt.Errorf("%w: it is %s's turn", ErrNotYourTurn, turn)
	}
	return nil
}

// Spin spins the wheel for player. Bankrupt zeroes the player's score, lose
// a turn passes the turn; otherwise choose picks a consonant that is
// revealed and paid at the wedge amount per occurrence. The turn continues
// only when the consonant is in the puzzle (or none were left to pick).
func (h *Handler) Spin(ctx context.Context, player string, choose ConsonantFunc) (*Result, error) {
	if err := h.CheckTurn(ctx, player); err != nil {
		return nil, err
	}
	wedge := h.wheel.Spin()
	res := &Result{
		Action:     ActionSpin,
		Success:    true,
		Player:     player,
		NextAction: ActionSpin,
		Updates:    Updates{Player: player, Wedge: wedge.Label},
	}
	details := fmt.Sprintf("%s spun the wheel: %s", player, wedge.Label)

	switch wedge.Kind {
	case wheel.Bankrupt:
		if err := h.state.ZeroScore(ctx, player); err != nil {
			return nil, err
		}
		res.Details = details + "; BANKRUPT -> score set to 0"
		res.FinalAnswer = "BANKRUPT - score set to 0."
		return h.endTurn(ctx, res)
	case wheel.LoseATurn:
		res.Details = details + "; Lose a Turn"
		res.FinalAnswer = "Lose a Turn."
		return h.endTurn(ctx, res)
	}

	remaining, err := h.state.UnguessedConsonants(ctx)
	if err != nil {
		return nil, err
	}
	masked, err := h.state.Field(ctx, game.FieldPuzzle)
	if err != nil {
		return nil, err
	}
	if len(remaining) == 0 {
		res.Details = details + "; no consonants remaining"
		res.FinalAnswer = fmt.Sprintf("%s spun %s.", player, wedge.Label)
		return h.snapshot(ctx, res)
	}

	letter, err := choose(ctx, wedge, masked, remaining)
	if err != nil {
		return nil, err
	}
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if !contains(remaining, letter) {
		return nil, fmt.Errorf("%w: %q is not an unguessed consonant", ErrInvalidLetter, letter)
	}

	n, err := h.state.RevealLetter(ctx, letter)
	if err != nil {
		return nil, err
	}
	if err := h.state.AddGuessedLetter(ctx, letter, false); err != nil {
		return nil, err
	}
	if n > 0 && wedge.Amount > 0 {
		if _, err := h.state.UpdateScore(ctx, player, wedge.Amount*n); err != nil {
			return nil, err
		}
	}

	res.Updates.Letter = letter
	res.Updates.Occurrences = n
	res.Updates.Amount = wedge.Amount
	res.Details = fmt.Sprintf("%s; guessed '%s', occurrences=%d, amount=%d", details, letter, n, wedge.Amount)
	log.Info().Str("player", player).Str("wedge", wedge.Label).Str("letter", letter).Int("occurrences", n).Msg("spin")

	if n == 0 {
		res.FinalAnswer = fmt.Sprintf("%s spun %s and guessed '%s', but it is not in the puzzle.", player, wedge.Label, letter)
		return h.endTurn(ctx, res)
	}
	res.FinalAnswer = fmt.Sprintf("%s spun %s and guessed '%s', occurrences=%d, amount=%d.", player, wedge.Label, letter, n, wedge.Amount)
	return h.snapshot(ctx, res)
}

// BuyVowel charges game.VowelCost and reveals the vowel picked by choose.
// Insufficient funds or no vowels left give Success=false without any state
// change. The turn ends when the vowel is not in the puzzle.
func (h *Handler) BuyVowel(ctx context.Context, player string, choose VowelFunc) (*Result, error) {
	if err := h.CheckTurn(ctx, player); err != nil {
		return nil, err
	}
	res := &Result{
		Action:     ActionBuyVowel,
		Player:     player,
		NextAction: ActionBuyVowel,
		Updates:    Updates{Player: player, Cost: game.VowelCost},
	}

	money, err := h.state.PlayerScore(ctx, player)
	if err != nil {
		return nil, err
	}
	remaining, err := h.state.UnguessedVowels(ctx)
	if err != nil {
		return nil, err
	}
	res.Updates.RemainingVowels = remaining

	if money < game.VowelCost {
		res.Details = fmt.Sprintf("Insufficient funds: %s has %d, needs %d", player, money, game.VowelCost)
		return h.snapshot(ctx, res)
	}
	if len(remaining) == 0 {
		res.Details = "No vowels remaining"
		return h.snapshot(ctx, res)
	}

	masked, err := h.state.Field(ctx, game.FieldPuzzle)
	if err != nil {
		return nil, err
	}
	letter, err := choose(ctx, masked, remaining)
	if err != nil {
		return nil, err
	}
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if !contains(remaining, letter) {
		return nil, fmt.Errorf("%w: %q is not an unguessed vowel", ErrInvalidLetter, letter)
	}

	left, ok, err := h.state.Charge(ctx, player, game.VowelCost)
	if err != nil {
		return nil, err
	}
	if !ok {
		res.Details = fmt.Sprintf("Insufficient funds: %s has %d, needs %d", player, left, game.VowelCost)
		return h.snapshot(ctx, res)
	}
	n, err := h.state.RevealLetter(ctx, letter)
	if err != nil {
		return nil, err
	}
	if err := h.state.AddGuessedLetter(ctx, letter, true); err != nil {
		return nil, err
	}
	res.Success = true
	res.SkipNext = true
	res.Updates.Letter = letter
	res.Updates.Occurrences = n
	res.Updates.RemainingVowels = without(remaining, letter)
	res.Details = fmt.Sprintf("%s bought '%s' for %d; occurrences=%d", player, letter, game.VowelCost, n)
	res.FinalAnswer = fmt.Sprintf("%s bought the vowel '%s' (occurrences=%d).", player, letter, n)
	log.Info().Str("player", player).Str("letter", letter).Int("occurrences", n).Msg("buy vowel")

	if n == 0 {
		return h.endTurn(ctx, res)
	}
	return h.snapshot(ctx, res)
}

// Solve compares attempt with the answer ignoring case, spacing and
// punctuation. A correct attempt finishes the game; a wrong one ends the
// turn.
func (h *Handler) Solve(ctx context.Context, player, attempt string) (*Result, error) {
	if err := h.CheckTurn(ctx, player); err != nil {
		return nil, err
	}
	answer, err := h.state.Answer(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Action:     ActionSolve,
		Player:     player,
		NextAction: ActionSolve,
		Updates:    Updates{Player: player, Guess: strings.TrimSpace(attempt)},
	}

	if game.Normalize(attempt) == "" || game.Normalize(attempt) != game.Normalize(answer) {
		res.Details = fmt.Sprintf("%s guessed %q: incorrect", player, res.Updates.Guess)
		res.FinalAnswer = fmt.Sprintf("%s's solve attempt was incorrect.", player)
		log.Info().Str("player", player).Str("guess", res.Updates.Guess).Msg("solve incorrect")
		return h.endTurn(ctx, res)
	}

	if err := h.state.Finish(ctx, player); err != nil {
		return nil, err
	}
	res.Success = true
	res.SkipNext = true
	res.Updates.Answer = answer
	res.Details = fmt.Sprintf("%s solved the puzzle: %s", player, answer)
	res.FinalAnswer = fmt.Sprintf("%s solved the puzzle: %s", player, answer)
	log.Info().Str("player", player).Str("answer", answer).Msg("puzzle solved")

	if _, err := h.snapshot(ctx, res); err != nil {
		return nil, err
	}
	h.record(ctx, player)
	return res, nil
}

// record writes the finished game to the ledger; failures are logged only.
func (h *Handler) record(ctx context.Context, player string) {
	if h.recorder == nil {
		return
	}
	g, err := h.state.Current(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load finished game")
		return
	}
	e := results.Entry{
		GameID: g.ID,
		Winner: g.Winner,
		Answer: g.Answer,
		Theme:  g.Theme,
		Scores: g.Scores,
	}
	if e.Winner == "" {
		e.Winner = player
	}
	if err := h.recorder.Record(ctx, e); err != nil {
		log.Warn().Err(err).Int64("gameId", g.ID).Msg("record result")
	}
}

func (h *Handler) endTurn(ctx context.Context, res *Result) (*Result, error) {
	if _, err := h.state.NextTurn(ctx); err != nil {
		return nil, err
	}
	res.EndsTurn = true
	return h.snapshot(ctx, res)
}

// snapshot fills puzzle, scores, status and turn from the store.
func (h *Handler) snapshot(ctx context.Context, res *Result) (*Result, error) {
	g, err := h.state.Current(ctx)
	if err != nil {
		return nil, err
	}
	res.Updates.Puzzle = g.Puzzle
	res.Updates.Scores = g.Scores
	res.Updates.Status = g.Status
	res.Updates.Turn = g.Turn
	return res, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func without(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
