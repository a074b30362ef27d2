package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// run executes the command tree with a fresh sqlite file per test.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	newDaily, playAuto, servePort, configPath, puzzlesTheme = false, false, "", "", ""

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "wof.db"))
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("PLAYER_NAMES", "")
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"new", "show", "play", "human", "ai", "serve", "admin", "puzzles"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub := map[string]bool{}
	for _, c := range adminCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.True(t, sub["set-turn"])
	assert.True(t, sub["finish"])
	assert.True(t, sub["hash-password"])

	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, playCmd.Flags().Lookup("auto"))
	require.NotNil(t, newCmd.Flags().Lookup("daily"))
}

func TestNewThenShowPersists(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "new")
	require.NoError(t, err)
	assert.Contains(t, out, "Started game 1")

	out, err = run(t, "", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Wheel of Fortune ===")
	assert.Contains(t, out, "Player: AI1")
	assert.Contains(t, out, "Guessed consonants: -")
}

func TestShowWithoutGame(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "", "show")
	assert.Error(t, err)
}

func TestAICommand(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "", "new")
	require.NoError(t, err)

	_, err = run(t, "", "ai", "Human")
	assert.Error(t, err)

	_, err = run(t, "", "ai", "AI2")
	assert.Error(t, err, "not AI2's turn")

	out, err := run(t, "", "ai", "AI1")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "AI1", res["player"])
	assert.NotEmpty(t, res["history"])
}

func TestAdminCommands(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "", "new")
	require.NoError(t, err)

	_, err = run(t, "", "admin", "set-turn", "Nobody")
	assert.Error(t, err)

	out, err := run(t, "", "admin", "set-turn", "Human")
	require.NoError(t, err)
	assert.Contains(t, out, "Turn: Human")

	out, err = run(t, "", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Player: Human")

	out, err = run(t, "", "admin", "finish")
	require.NoError(t, err)
	assert.Contains(t, out, "Game finished.")

	out, err = run(t, "q\n", "play")
	require.NoError(t, err)
	assert.Contains(t, out, "Game over. Starting a new game.")
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "", "admin", "hash-password", "s3cret")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	out, err = run(t, "from-stdin\n", "admin", "hash-password")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	hash = strings.TrimPrefix(lines[len(lines)-1], "Password: ")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-stdin")))
}

func TestPuzzlesCommand(t *testing.T) {
	setupEnv(t)
	t.Setenv("PUZZLES_FILE", "")

	out, err := run(t, "", "puzzles")
	require.NoError(t, err)
	assert.Contains(t, out, "STEAK KNIFE")
	assert.Contains(t, out, "15 puzzle(s)")

	out, err = run(t, "", "puzzles", "--theme", "thing")
	require.NoError(t, err)
	assert.Contains(t, out, "HOT AIR BALLOON")
	assert.NotContains(t, out, "OVER THE MOON")
	assert.Contains(t, out, "3 puzzle(s)")
}
