// internal/runner/orchestrator.go
//
// Game loop that hands turns to AI and human players.
//
// Responsibilities:
//   - Start a new game when none exists or the current one is finished.
//   - Menu mode: [1] AI1 [2] AI2 [3] Human [q] Quit; the chosen player is
//     given the turn before running.
//   - Auto mode: follow the stored turn until the game is finished.

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/richjohnson-wwt/nat-wof/internal/actions"
	"github.com/richjohnson-wwt/nat-wof/internal/game"
)

// ErrStalled is returned by auto mode when the game does not finish within
// MaxTurns player turns.
var ErrStalled = errors.New("game did not finish")

const defaultMaxTurns = 500

// AIPlayer runs one automated turn.
type AIPlayer interface {
	TakeTurn(ctx context.Context, player string) (*actions.Result, error)
}

// Starter creates a new current game.
type Starter interface {
	NewGame(ctx context.Context) (int64, error)
}

type Orchestrator struct {
	h     *actions.Handler
	ai    AIPlayer
	human *Human
	start Starter

	MaxTurns int
}

// NewOrchestrator wires the loop; the human player reads from in and every
// message goes to out.
func NewOrchestrator(h *actions.Handler, ai AIPlayer, start Starter, in io.Reader, out io.Writer) *Orchestrator {
	return &Orchestrator{
		h:        h,
		ai:       ai,
		human:    NewHuman(h, in, out),
		start:    start,
		MaxTurns: defaultMaxTurns,
	}
}

// Run plays until the game is finished or the user quits. Cancelling ctx
// stops the loop at the next prompt or turn boundary; that is not an error.
func (o *Orchestrator) Run(ctx context.Context, auto bool) error {
	err := o.run(ctx, auto)
	if ctx.Err() != nil {
		o.human.printf("Stopped by user.\n")
		return nil
	}
	return err
}

func (o *Orchestrator) run(ctx context.Context, auto bool) error {
	if err := o.ensureGame(ctx); err != nil {
		return err
	}
	if auto {
		return o.runAuto(ctx)
	}

	for {
		o.human.printf("\nChoose action: [1] AI1  [2] AI2  [3] Human  [q] Quit\n")
		choice, err := o.human.prompt(ctx, "> ")
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		var player string
		switch strings.ToLower(choice) {
		case "q":
			return nil
		case "1":
			player = game.PlayerAI1
		case "2":
			player = game.PlayerAI2
		case "3":
			player = game.PlayerHuman
		default:
			o.human.printf("Invalid choice. Try again.\n")
			continue
		}

		if err := o.RunPlayer(ctx, player); ctx.Err() != nil {
			return ctx.Err()
		} else if err != nil && !errors.Is(err, ErrQuit) {
			o.human.printf("Last turn runner failed: %v\n", err)
			log.Warn().Err(err).Str("player", player).Msg("turn failed")
		}
		over, err := o.gameOver(ctx)
		if err != nil {
			return err
		}
		if over {
			o.human.printf("Game over.\n")
			return nil
		}
	}
}

// RunPlayer gives player the turn and plays it.
func (o *Orchestrator) RunPlayer(ctx context.Context, player string) error {
	if err := o.h.State().SetTurn(ctx, player); err != nil {
		return err
	}
	if player == game.PlayerHuman {
		return o.human.TakeTurn(ctx, player)
	}

	res, err := o.ai.TakeTurn(ctx, player)
	if err != nil {
		return err
	}
	name, _ := o.h.State().DisplayName(ctx, player)
	for _, step := range res.History {
		if step.Skipped {
			continue
		}
		o.human.printf("[%s] %s: %s\n", name, step.Action, step.Details)
	}
	if res.FinalAnswer != "" {
		o.human.printf("Final Answer: %s\n", res.FinalAnswer)
	}
	o.human.printf("Puzzle: %s\n", res.Updates.Puzzle)
	return nil
}

func (o *Orchestrator) runAuto(ctx context.Context) error {
	for i := 0; i < o.MaxTurns; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		turn, err := o.h.State().Turn(ctx)
		if err != nil {
			return err
		}
		if !game.IsPlayer(turn) {
			turn = game.PlayerOrder[0]
		}
		if err := o.RunPlayer(ctx, turn); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
		over, err := o.gameOver(ctx)
		if err != nil {
			return err
		}
		if over {
			o.human.printf("Game over.\n")
			return nil
		}
	}
	return fmt.Errorf("%w after %d turns", ErrStalled, o.MaxTurns)
}

func (o *Orchestrator) ensureGame(ctx context.Context) error {
	status, err := o.h.State().Status(ctx)
	switch {
	case errors.Is(err, game.ErrNoGame):
		o.human.printf("No game found. Starting a new game.\n")
	case err != nil:
		return err
	case status == game.StatusFinished:
		o.human.printf("Game over. Starting a new game.\n")
	default:
		o.human.printf("Game is already in progress.\n")
		return nil
	}
	id, err := o.start.NewGame(ctx)
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	log.Info().Int64("gameId", id).Msg("orchestrator started game")
	return nil
}

func (o *Orchestrator) gameOver(ctx context.Context) (bool, error) {
	status, err := o.h.State().Status(ctx)
	if err != nil {
		return false, err
	}
	return status == game.StatusFinished, nil
}
