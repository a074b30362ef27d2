// internal/ai/strategy.go
//
// Letter choosers for the automated player.
//
// Responsibilities:
//   - Consonants: first unguessed consonant in preference order.
//   - Vowels: frequency priors plus masked-pattern bonuses ("heuristic"),
//     or a uniform pick ("random").

package ai

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"

	"github.com/richjohnson-wwt/nat-wof/internal/actions"
	"github.com/richjohnson-wwt/nat-wof/internal/game"
	"github.com/richjohnson-wwt/nat-wof/internal/wheel"
)

const (
	StrategyHeuristic = "heuristic"
	StrategyRandom    = "random"
)

// ChooseConsonant returns the first of remaining that appears in
// game.ConsonantOrder, or remaining[0] when none does. Empty input gives "".
func ChooseConsonant(remaining []string) string {
	if len(remaining) == 0 {
		return ""
	}
	set := make(map[string]struct{}, len(remaining))
	for _, c := range remaining {
		set[strings.ToUpper(c)] = struct{}{}
	}
	for _, c := range game.ConsonantOrder {
		if _, ok := set[c]; ok {
			return c
		}
	}
	return strings.ToUpper(remaining[0])
}

// ConsonantChooser adapts ChooseConsonant to the spin handler.
func ConsonantChooser() actions.ConsonantFunc {
	return func(_ context.Context, _ wheel.Wedge, _ string, remaining []string) (string, error) {
		return ChooseConsonant(remaining), nil
	}
}

var (
	vowelPriors = map[string]float64{"E": 12, "A": 9, "O": 8, "I": 7, "U": 3}
	vowelTies   = []string{"E", "A", "O", "I", "U"}

	vowelBonuses = []struct {
		re    *regexp.Regexp
		vowel string
		bonus float64
	}{
		{regexp.MustCompile(`[_*]VER`), "O", 6}, // OVER
		{regexp.MustCompile(`Q[_*]`), "U", 10},
		{regexp.MustCompile(`TH[_*]`), "E", 4}, // THE
		{regexp.MustCompile(`[_*]ING`), "I", 2},
	}
)

// visibleOccurrenceWeight is added per copy of a vowel already on the board.
const visibleOccurrenceWeight = 0.75

// ChooseVowelHeuristic scores each remaining vowel and returns the best;
// ties go to the earlier vowel in E A O I U. Returns "" when nothing remains.
func ChooseVowelHeuristic(masked string, remaining []string) string {
	top := topVowels(masked, remaining)
	if len(top) == 0 {
		return ""
	}
	return top[0]
}

// topVowels returns every remaining vowel sharing the best heuristic score,
// in E A O I U order.
func topVowels(masked string, remaining []string) []string {
	if len(remaining) == 0 {
		return nil
	}
	board := strings.ToUpper(strings.ReplaceAll(masked, " ", ""))

	scores := make(map[string]float64, len(remaining))
	for _, v := range remaining {
		v = strings.ToUpper(v)
		scores[v] = vowelPriors[v] + float64(strings.Count(board, v))*visibleOccurrenceWeight
	}
	for _, b := range vowelBonuses {
		if _, ok := scores[b.vowel]; ok && b.re.MatchString(board) {
			scores[b.vowel] += b.bonus
		}
	}

	var top []string
	bestScore := 0.0
	for _, v := range vowelTies {
		sc, ok := scores[v]
		if !ok {
			continue
		}
		switch {
		case len(top) == 0 || sc > bestScore:
			top, bestScore = []string{v}, sc
		case sc == bestScore:
			top = append(top, v)
		}
	}
	if len(top) == 0 {
		return []string{strings.ToUpper(remaining[0])}
	}
	return top
}

// NewVowelChooser returns the chooser for strategy ("" means heuristic).
// With randomizeTies the heuristic picks uniformly among equally scored
// vowels. A nil rng uses a randomly seeded source.
func NewVowelChooser(strategy string, randomizeTies bool, rng *rand.Rand) (actions.VowelFunc, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	var mu sync.Mutex
	pick := func(l []string) string {
		mu.Lock()
		defer mu.Unlock()
		return l[rng.IntN(len(l))]
	}

	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyHeuristic:
		return func(_ context.Context, masked string, remaining []string) (string, error) {
			top := topVowels(masked, remaining)
			switch {
			case len(top) == 0:
				return "", nil
			case randomizeTies:
				return pick(top), nil
			}
			return top[0], nil
		}, nil
	case StrategyRandom:
		return func(_ context.Context, _ string, remaining []string) (string, error) {
			if len(remaining) == 0 {
				return "", nil
			}
			return strings.ToUpper(pick(remaining)), nil
		}, nil
	}
	return nil, fmt.Errorf("unknown vowel strategy %q", strategy)
}
