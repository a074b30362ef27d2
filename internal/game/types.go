// internal/game/types.go
//
// Core type definitions for the Wheel of Fortune game record.
// Defines:
//   - Status: lifecycle of a game (active → finished).
//   - Game: decoded snapshot of the single flat game record.
//   - Player ids, turn rotation, vowel cost and letter tables.

package game

import "strings"

// Status represents the lifecycle state of a game.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Stable player ids. Display names are configured separately.
const (
	PlayerAI1   = "AI1"
	PlayerAI2   = "AI2"
	PlayerHuman = "Human"
)

// PlayerOrder is the fixed turn rotation.
var PlayerOrder = []string{PlayerAI1, PlayerAI2, PlayerHuman}

// VowelCost is deducted from a player's score for every vowel bought.
const VowelCost = 250

// Vowels in the order they are offered for purchase.
var Vowels = []string{"A", "E", "I", "O", "U"}

// ConsonantOrder ranks consonants by how often they help in puzzles.
var ConsonantOrder = []string{
	"R", "S", "T", "L", "N", "D", "H", "M", "C", "B", "P",
	"G", "Y", "K", "F", "W", "V", "X", "Z", "J", "Q",
}

// Game holds a decoded snapshot of the current game record.
type Game struct {
	ID                int64             `json:"id"`
	Puzzle            string            `json:"puzzle"` // masked display string
	Answer            string            `json:"-"`      // secret; never serialized
	Theme             string            `json:"theme"`
	Status            Status            `json:"status"`
	Turn              string            `json:"turn"`
	Winner            string            `json:"winner,omitempty"`
	Revealed          []int             `json:"revealed"`
	GuessedConsonants []string          `json:"guessed_consonants"`
	GuessedVowels     []string          `json:"guessed_vowels"`
	Scores            map[string]int    `json:"scores"`
	Players           map[string]string `json:"players"`
}

// Finished reports whether the game has been solved.
func (g *Game) Finished() bool { return g.Status == StatusFinished }

// Guessed returns every guessed letter, consonants first.
func (g *Game) Guessed() []string {
	out := make([]string, 0, len(g.GuessedConsonants)+len(g.GuessedVowels))
	out = append(out, g.GuessedConsonants...)
	return append(out, g.GuessedVowels...)
}

// IsVowel reports whether letter is a single vowel (case-insensitive).
func IsVowel(letter string) bool {
	l := strings.ToUpper(strings.TrimSpace(letter))
	for _, v := range Vowels {
		if l == v {
			return true
		}
	}
	return false
}

// IsConsonant reports whether letter is a single A–Z letter that is not a vowel.
func IsConsonant(letter string) bool {
	l := strings.ToUpper(strings.TrimSpace(letter))
	return len(l) == 1 && l[0] >= 'A' && l[0] <= 'Z' && !IsVowel(l)
}

// IsPlayer reports whether id is part of the turn rotation.
func IsPlayer(id string) bool {
	for _, p := range PlayerOrder {
		if p == id {
			return true
		}
	}
	return false
}
