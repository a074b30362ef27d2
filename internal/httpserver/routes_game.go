// internal/httpserver/routes_game.go
//
// HTTP routes for playing the current game.
//   - GET  /game            → public snapshot (never the answer)
//   - POST /game/new        → start a game (random, or today's puzzle with daily=true)
//   - POST /game/spin       → spin and guess {player, letter}
//   - POST /game/buy-vowel  → buy {player, letter}
//   - POST /game/solve      → solve {player, attempt}
//   - POST /game/ai-turn    → run one automated turn {player}
//   - GET  /leaderboard     → wins per winner plus recent finished games
//
// The letter for a spin is sent up front; it is only used when the wheel
// lands on a cash wedge.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/richjohnson-wwt/nat-wof/internal/actions"
	"github.com/richjohnson-wwt/nat-wof/internal/game"
)

// mountGame registers the /game routes and /leaderboard.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Get("/", s.handleGetGame)
		r.Post("/new", s.handleNewGame)
		r.Post("/spin", s.handleSpin)
		r.Post("/buy-vowel", s.handleBuyVowel)
		r.Post("/solve", s.handleSolve)
		r.Post("/ai-turn", s.handleAITurn)
	})
	r.Get("/leaderboard", s.handleLeaderboard)
}

// -----------------------------------------------------------------------------
// GET /game

// gameRes is the public view of the current game.
type gameRes struct {
	*game.Game
	Names map[string]string `json:"names"`
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.app.State.Current(r.Context())
	if err != nil {
		writeActionErr(w, r, err)
		return
	}
	names, err := s.app.State.PlayerNames(r.Context())
	if err != nil {
		writeActionErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameRes{Game: g, Names: names})
}

// -----------------------------------------------------------------------------
// POST /game/new

type newGameReq struct {
	Daily bool `json:"daily"`
}

type newGameRes struct {
	GameID int64  `json:"gameId"`
	Theme  string `json:"theme"`
	Puzzle string `json:"puzzle"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body means a random puzzle

	newGame := s.app.NewGame
	if req.Daily {
		newGame = s.app.NewDailyGame
	}
	id, err := newGame(r.Context())
	if err != nil {
		writeActionErr(w, r, err)
		return
	}
	g, err := s.app.State.Current(r.Context())
	if err != nil {
		writeActionErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameRes{GameID: id, Theme: g.Theme, Puzzle: g.Puzzle})
}

// -----------------------------------------------------------------------------
// actions

type actionReq struct {
	Player  string `json:"player"`
	Letter  string `json:"letter"`
	Attempt string `json:"attempt"`
}

// decodeAction parses the body and checks the player id.
func decodeAction(w http.ResponseWriter, r *http.Request) (actionReq, bool) {
	var req actionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return req, false
	}
	req.Player = strings.TrimSpace(req.Player)
	req.Letter = strings.ToUpper(strings.TrimSpace(req.Letter))
	if req.Player == "" {
		writeErr(w, http.StatusBadRequest, "player_required")
		return req, false
	}
	return req, true
}

func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	if !game.IsConsonant(req.Letter) {
		writeErr(w, http.StatusBadRequest, "invalid_letter")
		return
	}
	s.respond(w, r)(s.app.Actions.Spin(r.Context(), req.Player, actions.Fixed(req.Letter)))
}

func (s *Server) handleBuyVowel(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	if !game.IsVowel(req.Letter) {
		writeErr(w, http.StatusBadRequest, "invalid_letter")
		return
	}
	s.respond(w, r)(s.app.Actions.BuyVowel(r.Context(), req.Player, actions.FixedVowel(req.Letter)))
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Attempt) == "" {
		writeErr(w, http.StatusBadRequest, "attempt_required")
		return
	}
	s.respond(w, r)(s.app.Actions.Solve(r.Context(), req.Player, req.Attempt))
}

func (s *Server) handleAITurn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	if req.Player == game.PlayerHuman {
		writeErr(w, http.StatusBadRequest, "not_an_ai_player")
		return
	}
	s.respond(w, r)(s.app.AI.TakeTurn(r.Context(), req.Player))
}

// respond writes an action result or maps its error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request) func(*actions.Result, error) {
	return func(res *actions.Result, err error) {
		if err != nil {
			writeActionErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// -----------------------------------------------------------------------------
// GET /leaderboard

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeErr(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = n
	}
	top, err := s.app.Results.Leaderboard(r.Context(), limit)
	if err != nil {
		writeActionErr(w, r, err)
		return
	}
	recent, err := s.app.Results.Recent(r.Context(), limit)
	if err != nil {
		writeActionErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"top": top, "recent": recent})
}
