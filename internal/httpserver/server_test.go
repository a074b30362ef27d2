package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richjohnson-wwt/nat-wof/internal/actions"
	"github.com/richjohnson-wwt/nat-wof/internal/ai"
	"github.com/richjohnson-wwt/nat-wof/internal/app"
	"github.com/richjohnson-wwt/nat-wof/internal/config"
	"github.com/richjohnson-wwt/nat-wof/internal/game"
	"github.com/richjohnson-wwt/nat-wof/internal/puzzles"
	"github.com/richjohnson-wwt/nat-wof/internal/wheel"
)

type cashWheel struct{}

func (cashWheel) Spin() wheel.Wedge { return wheel.Wedge{Label: "500", Kind: wheel.Cash, Amount: 500} }

func newTestServer(t *testing.T, adminPassword string) (*Server, *app.App) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Backend = "memory"
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "wof.db")
	cfg.Players = []config.Player{
		{ID: game.PlayerAI1, Name: "Ava"},
		{ID: game.PlayerAI2, Name: "Bo"},
		{ID: game.PlayerHuman, Name: "Richard"},
	}
	if adminPassword != "" {
		hash, err := HashPassword(adminPassword)
		require.NoError(t, err)
		cfg.HTTP.AdminPasswordHash = hash
	}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	a.Actions = actions.New(a.State, cashWheel{}, a.Results)
	a.AI = ai.NewPlayer(a.Actions, ai.BankSolver{Bank: a.Bank}, nil)
	return New(a), a
}

func startSteakKnife(t *testing.T, a *app.App) {
	t.Helper()
	_, err := a.StartPuzzle(context.Background(), puzzles.Puzzle{Answer: "STEAK KNIFE", Theme: "Thing"})
	require.NoError(t, err)
}

func do(t *testing.T, s *Server, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec, body := do(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])

	rec, body = do(t, s, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}

func TestGameLifecycle(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec, body := do(t, s, http.MethodGet, "/game", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_game", body["error"])

	rec, body = do(t, s, http.MethodPost, "/game/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["gameId"])
	assert.NotEmpty(t, body["puzzle"])

	rec, body = do(t, s, http.MethodGet, "/game", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AI1", body["turn"])
	assert.Equal(t, "active", body["status"])
	assert.NotContains(t, body, "answer")
	assert.Equal(t, "Richard", body["names"].(map[string]any)["Human"])
}

func TestSpinBuySolve(t *testing.T) {
	s, a := newTestServer(t, "")
	startSteakKnife(t, a)

	rec, body := do(t, s, http.MethodPost, "/game/spin", map[string]string{"player": "Human", "letter": "S"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_your_turn", body["error"])

	rec, body = do(t, s, http.MethodPost, "/game/spin", map[string]string{"player": "AI1", "letter": "E"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_letter", body["error"])

	rec, body = do(t, s, http.MethodPost, "/game/spin", map[string]string{"letter": "S"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "player_required", body["error"])

	rec, body = do(t, s, http.MethodPost, "/game/buy-vowel", map[string]string{"player": "AI1", "letter": "E"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, body = do(t, s, http.MethodPost, "/game/spin", map[string]string{"player": "AI1", "letter": "s"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	updates := body["updates"].(map[string]any)
	assert.Equal(t, float64(1), updates["occurrences"])
	assert.Equal(t, "S _ _ _ _ * _ _ _ _ _", updates["puzzle"])

	rec, _ = do(t, s, http.MethodPost, "/game/spin", map[string]string{"player": "AI1", "letter": "S"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, s, http.MethodPost, "/game/buy-vowel", map[string]string{"player": "AI1", "letter": "E"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, body = do(t, s, http.MethodPost, "/game/solve", map[string]string{"player": "AI1"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "attempt_required", body["error"])

	rec, body = do(t, s, http.MethodPost, "/game/solve", map[string]string{"player": "AI1", "attempt": "Steak Knife"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, body = do(t, s, http.MethodPost, "/game/solve", map[string]string{"player": "AI1", "attempt": "Steak Knife"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "game_over", body["error"])

	rec, body = do(t, s, http.MethodGet, "/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	top := body["top"].([]any)
	require.Len(t, top, 1)
	assert.Equal(t, "Ava", top[0].(map[string]any)["winner"])

	rec, _ = do(t, s, http.MethodGet, "/leaderboard?limit=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAITurn(t *testing.T) {
	s, a := newTestServer(t, "")
	startSteakKnife(t, a)

	rec, body := do(t, s, http.MethodPost, "/game/ai-turn", map[string]string{"player": "Human"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "not_an_ai_player", body["error"])

	rec, body = do(t, s, http.MethodPost, "/game/ai-turn", map[string]string{"player": "AI1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["turn_id"])
	assert.Len(t, body["history"], 3)
}

func TestAdmin(t *testing.T) {
	s, a := newTestServer(t, "hunter22")
	startSteakKnife(t, a)

	rec, _ := do(t, s, http.MethodPost, "/admin/turn", map[string]string{"player": "Human"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = do(t, s, http.MethodPost, "/admin/turn", map[string]string{"player": "Human"}, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := do(t, s, http.MethodPost, "/admin/login", map[string]string{"password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_password", body["error"])

	rec, body = do(t, s, http.MethodPost, "/admin/login", map[string]string{"password": "hunter22"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	rec, body = do(t, s, http.MethodPost, "/admin/turn", map[string]string{"player": "Pat"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_player", body["error"])

	rec, _ = do(t, s, http.MethodPost, "/admin/turn", map[string]string{"player": "Human"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	turn, err := a.State.Turn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.PlayerHuman, turn)

	rec, _ = do(t, s, http.MethodPost, "/admin/finish", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	status, err := a.State.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, status)
}

func TestAdminLoginDisabled(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec, body := do(t, s, http.MethodPost, "/admin/login", map[string]string{"password": "x"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "admin_disabled", body["error"])
}

func TestStartStopsWhenContextDone(t *testing.T) {
	s, _ := newTestServer(t, "")

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server still running after cancel")
	}
}

func TestStartReportsListenError(t *testing.T) {
	s, _ := newTestServer(t, "")
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	err = s.Start(context.Background(), l.Addr().String())
	assert.Error(t, err)
}
