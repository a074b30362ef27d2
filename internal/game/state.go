// internal/game/state.go
//
// State accessor: reads and mutates the current game record in a kv.Store.
//
// Key layout:
//   game_id_counter      INCR'd for every new game
//   current_game_id      id all accessors operate on
//   game:<id>            hash: puzzle, theme, player, status, winner,
//                        guessed_consonants, guessed_vowels, revealed,
//                        scores, players (lists/maps JSON-encoded)
//   game:<id>:answer     the secret answer, kept out of the hash
//   player_names         hash: player id -> display name
//
// Read-modify-write updates are serialized per State value; separate
// processes sharing one store are not coordinated.

package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/richjohnson-wwt/nat-wof/internal/kv"
)

const (
	keyCounter     = "game_id_counter"
	keyCurrent     = "current_game_id"
	keyPlayerNames = "player_names"

	FieldPuzzle            = "puzzle"
	FieldTheme             = "theme"
	FieldTurn              = "player"
	FieldStatus            = "status"
	FieldWinner            = "winner"
	FieldGuessedConsonants = "guessed_consonants"
	FieldGuessedVowels     = "guessed_vowels"
	FieldRevealed          = "revealed"
	FieldScores            = "scores"
	FieldPlayers           = "players"
)

var (
	// ErrNoGame is returned when no current game has been started.
	ErrNoGame = errors.New("no active game")
	// ErrEmptyAnswer is returned when starting a game without an answer.
	ErrEmptyAnswer = errors.New("answer must not be empty")
)

// State reads and writes the current game.
type State struct {
	kv kv.Store
	mu sync.Mutex // serializes read-modify-write updates
}

func NewState(store kv.Store) *State {
	return &State{kv: store}
}

func gameKey(id string) string   { return "game:" + id }
func answerKey(id string) string { return "game:" + id + ":answer" }

// StartNewGame creates a game record and makes it current. players maps
// stable ids to display names; scores start at 0 for each id (for the fixed
// rotation when players is empty).
func (s *State) StartNewGame(ctx context.Context, answer, theme string, players map[string]string) (int64, error) {
	answer = strings.ToUpper(strings.TrimSpace(answer))
	if Normalize(answer) == "" {
		return 0, ErrEmptyAnswer
	}
	if len(players) == 0 {
		players = make(map[string]string, len(PlayerOrder))
		for _, p := range PlayerOrder {
			players[p] = p
		}
	}
	scores := make(map[string]int, len(players))
	for id := range players {
		scores[id] = 0
	}

	n, err := s.kv.Incr(ctx, keyCounter)
	if err != nil {
		return 0, fmt.Errorf("allocate game id: %w", err)
	}
	id := strconv.FormatInt(n, 10)

	fields := map[string]string{
		FieldPuzzle:            Mask(answer, nil),
		FieldTheme:             theme,
		FieldTurn:              PlayerOrder[0],
		FieldStatus:            string(StatusActive),
		FieldWinner:            "",
		FieldGuessedConsonants: "[]",
		FieldGuessedVowels:     "[]",
		FieldRevealed:          "[]",
		FieldScores:            mustJSON(scores),
		FieldPlayers:           mustJSON(players),
	}
	if err := s.kv.HSet(ctx, gameKey(id), fields); err != nil {
		return 0, fmt.Errorf("write game %s: %w", id, err)
	}
	if err := s.kv.Set(ctx, answerKey(id), answer); err != nil {
		return 0, fmt.Errorf("write answer %s: %w", id, err)
	}
	if err := s.kv.Set(ctx, keyCurrent, id); err != nil {
		return 0, fmt.Errorf("set current game: %w", err)
	}
	if err := s.SetPlayerNames(ctx, players); err != nil {
		log.Warn().Err(err).Msg("store player names")
	}
	log.Info().Str("gameId", id).Str("theme", theme).Msg("new game started")
	return n, nil
}

// GameID returns the id of the current game.
func (s *State) GameID(ctx context.Context) (string, error) {
	id, err := s.kv.Get(ctx, keyCurrent)
	if errors.Is(err, kv.ErrNotFound) || (err == nil && id == "") {
		return "", ErrNoGame
	}
	return id, err
}

// Current decodes the whole current game, answer included.
func (s *State) Current(ctx context.Context) (*Game, error) {
	id, err := s.GameID(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := s.kv.HGetAll(ctx, gameKey(id))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNoGame
	}
	g := &Game{
		Puzzle:  raw[FieldPuzzle],
		Theme:   raw[FieldTheme],
		Status:  Status(raw[FieldStatus]),
		Turn:    raw[FieldTurn],
		Winner:  raw[FieldWinner],
		Scores:  map[string]int{},
		Players: map[string]string{},
	}
	g.ID, _ = strconv.ParseInt(id, 10, 64)
	for field, dst := range map[string]any{
		FieldRevealed:          &g.Revealed,
		FieldGuessedConsonants: &g.GuessedConsonants,
		FieldGuessedVowels:     &g.GuessedVowels,
		FieldScores:            &g.Scores,
		FieldPlayers:           &g.Players,
	} {
		if err := decodeField(raw, field, dst); err != nil {
			return nil, err
		}
	}
	ans, err := s.kv.Get(ctx, answerKey(id))
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return nil, err
	}
	g.Answer = ans
	return g, nil
}

// Field returns a raw field of the current game; a missing field is "".
func (s *State) Field(ctx context.Context, field string) (string, error) {
	id, err := s.GameID(ctx)
	if err != nil {
		return "", err
	}
	v, err := s.kv.HGet(ctx, gameKey(id), field)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetField writes a raw field of the current game.
func (s *State) SetField(ctx context.Context, field, value string) error {
	id, err := s.GameID(ctx)
	if err != nil {
		return err
	}
	return s.kv.HSet(ctx, gameKey(id), map[string]string{field: value})
}

// Answer returns the secret answer of the current game.
func (s *State) Answer(ctx context.Context) (string, error) {
	id, err := s.GameID(ctx)
	if err != nil {
		return "", err
	}
	ans, err := s.kv.Get(ctx, answerKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	return ans, err
}

// RevealLetter reveals every occurrence of letter, regenerates the masked
// puzzle and returns how many positions were newly revealed.
func (s *State) RevealLetter(ctx context.Context, letter string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.Answer(ctx)
	if err != nil || answer == "" {
		return 0, err
	}
	var revealed []int
	if err := s.getJSON(ctx, FieldRevealed, &revealed); err != nil {
		return 0, err
	}
	revealed, newly := Reveal(answer, revealed, letter)
	if newly == 0 {
		return 0, nil
	}
	return newly, s.writeReveal(ctx, answer, revealed)
}

// RevealAll reveals the whole answer.
func (s *State) RevealAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.Answer(ctx)
	if err != nil {
		return err
	}
	return s.writeReveal(ctx, answer, AllPositions(answer))
}

func (s *State) writeReveal(ctx context.Context, answer string, revealed []int) error {
	id, err := s.GameID(ctx)
	if err != nil {
		return err
	}
	return s.kv.HSet(ctx, gameKey(id), map[string]string{
		FieldRevealed: mustJSON(revealed),
		FieldPuzzle:   Mask(answer, revealed),
	})
}

// Scores returns all player scores.
func (s *State) Scores(ctx context.Context) (map[string]int, error) {
	scores := map[string]int{}
	if err := s.getJSON(ctx, FieldScores, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// PlayerScore returns one player's score (0 when unknown).
func (s *State) PlayerScore(ctx context.Context, player string) (int, error) {
	scores, err := s.Scores(ctx)
	if err != nil {
		return 0, err
	}
	return scores[player], nil
}

// UpdateScore adds delta to a player's score (missing players start at 0)
// and returns the new score.
func (s *State) UpdateScore(ctx context.Context, player string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scores, err := s.Scores(ctx)
	if err != nil {
		return 0, err
	}
	scores[player] += delta
	return scores[player], s.SetField(ctx, FieldScores, mustJSON(scores))
}

// Charge deducts cost from a player's score only when the score covers it.
// It returns the resulting score and whether the charge was made.
func (s *State) Charge(ctx context.Context, player string, cost int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scores, err := s.Scores(ctx)
	if err != nil {
		return 0, false, err
	}
	if scores[player] < cost {
		return scores[player], false, nil
	}
	scores[player] -= cost
	return scores[player], true, s.SetField(ctx, FieldScores, mustJSON(scores))
}

// ZeroScore sets a player's score to 0 (BANKRUPT).
func (s *State) ZeroScore(ctx context.Context, player string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scores, err := s.Scores(ctx)
	if err != nil {
		return err
	}
	scores[player] = 0
	return s.SetField(ctx, FieldScores, mustJSON(scores))
}

// AddGuessedLetter records letter (upper-cased, deduplicated) as guessed.
func (s *State) AddGuessedLetter(ctx context.Context, letter string, vowel bool) error {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		return nil
	}
	field := FieldGuessedConsonants
	if vowel {
		field = FieldGuessedVowels
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var list []string
	if err := s.getJSON(ctx, field, &list); err != nil {
		return err
	}
	for _, l := range list {
		if l == letter {
			return nil
		}
	}
	return s.SetField(ctx, field, mustJSON(append(list, letter)))
}

// UnguessedVowels returns the vowels not bought yet, in A E I O U order.
func (s *State) UnguessedVowels(ctx context.Context) ([]string, error) {
	return s.unguessed(ctx, FieldGuessedVowels, Vowels)
}

// UnguessedConsonants returns the consonants not guessed yet, in
// ConsonantOrder.
func (s *State) UnguessedConsonants(ctx context.Context) ([]string, error) {
	return s.unguessed(ctx, FieldGuessedConsonants, ConsonantOrder)
}

func (s *State) unguessed(ctx context.Context, field string, all []string) ([]string, error) {
	var guessed []string
	if err := s.getJSON(ctx, field, &guessed); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(guessed))
	for _, g := range guessed {
		seen[g] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, l := range all {
		if _, ok := seen[l]; !ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// Turn returns the id of the player allowed to act.
func (s *State) Turn(ctx context.Context) (string, error) {
	return s.Field(ctx, FieldTurn)
}

// SetTurn hands the turn to player.
func (s *State) SetTurn(ctx context.Context, player string) error {
	return s.SetField(ctx, FieldTurn, player)
}

// NextTurn advances the turn along PlayerOrder. An empty or unknown current
// turn restarts the rotation at its first player.
func (s *State) NextTurn(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.Turn(ctx)
	if err != nil {
		return "", err
	}
	next := PlayerOrder[0]
	for i, p := range PlayerOrder {
		if p == cur {
			next = PlayerOrder[(i+1)%len(PlayerOrder)]
			break
		}
	}
	if err := s.SetTurn(ctx, next); err != nil {
		return "", err
	}
	log.Debug().Str("from", cur).Str("to", next).Msg("turn advanced")
	return next, nil
}

// Status returns the lifecycle state of the current game.
func (s *State) Status(ctx context.Context) (Status, error) {
	v, err := s.Field(ctx, FieldStatus)
	return Status(v), err
}

// Finish marks the game solved by player: the winner's display name is
// recorded, the whole answer is revealed and the status becomes finished.
func (s *State) Finish(ctx context.Context, player string) error {
	winner, err := s.DisplayName(ctx, player)
	if err != nil {
		return err
	}
	if err := s.RevealAll(ctx); err != nil {
		return err
	}
	id, err := s.GameID(ctx)
	if err != nil {
		return err
	}
	return s.kv.HSet(ctx, gameKey(id), map[string]string{
		FieldWinner: winner,
		FieldStatus: string(StatusFinished),
	})
}

// SetPlayerNames stores display names (UI only).
func (s *State) SetPlayerNames(ctx context.Context, names map[string]string) error {
	if len(names) == 0 {
		return nil
	}
	return s.kv.HSet(ctx, keyPlayerNames, names)
}

// PlayerNames returns the id -> display name mapping (possibly empty).
func (s *State) PlayerNames(ctx context.Context) (map[string]string, error) {
	return s.kv.HGetAll(ctx, keyPlayerNames)
}

// DisplayName resolves a player id, falling back to the id itself.
func (s *State) DisplayName(ctx context.Context, id string) (string, error) {
	name, err := s.kv.HGet(ctx, keyPlayerNames, id)
	if errors.Is(err, kv.ErrNotFound) || (err == nil && name == "") {
		return id, nil
	}
	return name, err
}

func (s *State) getJSON(ctx context.Context, field string, dst any) error {
	raw, err := s.Field(ctx, field)
	if err != nil || raw == "" {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", field, err)
	}
	return nil
}

func decodeField(raw map[string]string, field string, dst any) error {
	v := raw[field]
	if v == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return fmt.Errorf("decode %s: %w", field, err)
	}
	return nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
