// internal/app/app.go
//
// Wires configuration into the running game: stores, wheel, puzzle bank,
// action handlers and the automated player. Shared by the CLI commands and
// the HTTP server.
//
// Notes:
//   - SQLite is always opened: it holds the results ledger and, with the
//     sqlite backend, the game record too.
//   - The memory backend is process-local; use it for tests and
//     single-process `serve` / `play` sessions.

package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/richjohnson-wwt/nat-wof/internal/actions"
	"github.com/richjohnson-wwt/nat-wof/internal/ai"
	"github.com/richjohnson-wwt/nat-wof/internal/config"
	"github.com/richjohnson-wwt/nat-wof/internal/db"
	"github.com/richjohnson-wwt/nat-wof/internal/game"
	"github.com/richjohnson-wwt/nat-wof/internal/kv"
	"github.com/richjohnson-wwt/nat-wof/internal/puzzles"
	"github.com/richjohnson-wwt/nat-wof/internal/results"
	"github.com/richjohnson-wwt/nat-wof/internal/wheel"
)

type App struct {
	Cfg     *config.Config
	DB      *sql.DB
	KV      kv.Store
	State   *game.State
	Wheel   *wheel.Wheel
	Bank    *puzzles.Bank
	Results *results.Store
	Actions *actions.Handler
	AI      *ai.Player

	now func() time.Time
}

// New opens every backing store named by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	w, err := wheel.Load(cfg.WheelFile, nil)
	if err != nil {
		return nil, fmt.Errorf("load wheel: %w", err)
	}
	bank, err := puzzles.Load(cfg.PuzzlesFile, nil)
	if err != nil {
		return nil, fmt.Errorf("load puzzles: %w", err)
	}
	sqlDB, err := db.Open(cfg.Store.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Store.SQLitePath, err)
	}

	var store kv.Store
	switch cfg.Store.Backend {
	case "memory":
		store = kv.NewMemoryStore()
	case "sqlite":
		store = kv.NewSQLiteStore(sqlDB)
	case "redis":
		store, err = kv.DialRedis(ctx, cfg.Store.RedisHost, cfg.Store.RedisPort, cfg.Store.RedisDB)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	default:
		_ = sqlDB.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	vowel, err := ai.NewVowelChooser(cfg.AI.VowelStrategy, cfg.AI.RandomizeVowelTies, nil)
	if err != nil {
		_ = store.Close()
		_ = sqlDB.Close()
		return nil, err
	}

	a := &App{
		Cfg:     cfg,
		DB:      sqlDB,
		KV:      store,
		State:   game.NewState(store),
		Wheel:   w,
		Bank:    bank,
		Results: results.NewStore(sqlDB),
		now:     time.Now,
	}
	a.Actions = actions.New(a.State, a.Wheel, a.Results)
	a.AI = ai.NewPlayer(a.Actions, ai.BankSolver{Bank: bank, Threshold: cfg.AI.SolveThreshold}, vowel)

	log.Debug().
		Str("backend", cfg.Store.Backend).
		Int("puzzles", bank.Len()).
		Int("wedges", len(w.Wedges())).
		Msg("app ready")
	return a, nil
}

// Close releases the kv store and the database.
func (a *App) Close() error {
	return errors.Join(a.KV.Close(), a.DB.Close())
}

// NewGame starts a game with a random puzzle from the bank.
func (a *App) NewGame(ctx context.Context) (int64, error) {
	return a.StartPuzzle(ctx, a.Bank.Random())
}

// NewDailyGame starts today's puzzle.
func (a *App) NewDailyGame(ctx context.Context) (int64, error) {
	return a.StartPuzzle(ctx, a.Bank.Daily(a.now(), a.Cfg.DailySalt))
}

// StartPuzzle starts a game for p with the configured player names.
func (a *App) StartPuzzle(ctx context.Context, p puzzles.Puzzle) (int64, error) {
	return a.State.StartNewGame(ctx, p.Answer, p.Theme, a.Cfg.PlayerNames())
}
