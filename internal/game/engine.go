// internal/game/engine.go
//
// Reveal engine: pure functions over (answer, revealed positions).
// Responsibilities:
//   - Build the masked display string shown to players.
//   - Reveal every unrevealed occurrence of a guessed letter.
//   - Normalize solve attempts for comparison.
//
// Notes:
//   - Positions are rune indexes into the answer.
//   - The masked puzzle is always Mask(answer, revealed); the state layer
//     never writes a puzzle string from anywhere else.
package game

import (
	"sort"
	"strings"
	"unicode"
)

const (
	maskHidden = "_"
	maskSpace  = "*"
)

// Mask renders answer with unrevealed letters as "_" and spaces as "*".
// Any other character (punctuation, digits) is shown as-is. Tokens are
// separated by single spaces, e.g. "STEAK KNIFE" → "_ _ _ _ _ * _ _ _ _ _".
func Mask(answer string, revealed []int) string {
	open := make(map[int]struct{}, len(revealed))
	for _, p := range revealed {
		open[p] = struct{}{}
	}
	runes := []rune(answer)
	out := make([]string, 0, len(runes))
	for i, r := range runes {
		switch {
		case r == ' ':
			out = append(out, maskSpace)
		case unicode.IsLetter(r):
			if _, ok := open[i]; ok {
				out = append(out, string(unicode.ToUpper(r)))
			} else {
				out = append(out, maskHidden)
			}
		default:
			out = append(out, string(r))
		}
	}
	return strings.Join(out, " ")
}

// Reveal adds every position of letter in answer that is not yet revealed.
// It returns the new sorted position list and the number of positions added.
// The input slice is not modified.
func Reveal(answer string, revealed []int, letter string) ([]int, int) {
	out := append([]int(nil), revealed...)
	target := []rune(strings.ToUpper(strings.TrimSpace(letter)))
	if len(target) != 1 || !unicode.IsLetter(target[0]) {
		return out, 0
	}
	seen := make(map[int]struct{}, len(revealed))
	for _, p := range revealed {
		seen[p] = struct{}{}
	}
	newly := 0
	for i, r := range []rune(answer) {
		if unicode.ToUpper(r) != target[0] {
			continue
		}
		if _, ok := seen[i]; ok {
			continue
		}
		out = append(out, i)
		newly++
	}
	sort.Ints(out)
	return out, newly
}

// AllPositions returns every position of answer.
func AllPositions(answer string) []int {
	n := len([]rune(answer))
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Normalize upper-cases s and drops everything that is not a letter:
// "Steak knife!" → "STEAKKNIFE".
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Solved reports whether every letter position of answer is revealed.
func Solved(answer string, revealed []int) bool {
	return !strings.Contains(Mask(answer, revealed), maskHidden)
}

// RevealedRatio is the share of letter positions revealed, in [0, 1].
func RevealedRatio(masked string) float64 {
	letters, open := 0, 0
	for _, tok := range strings.Split(masked, " ") {
		r := []rune(tok)
		if len(r) != 1 {
			continue
		}
		switch {
		case tok == maskHidden:
			letters++
		case unicode.IsLetter(r[0]):
			letters++
			open++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(open) / float64(letters)
}
