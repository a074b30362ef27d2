// internal/puzzles/puzzles.go
//
// Puzzle bank management.
//
// Responsibilities:
//   - Load (puzzle, theme) rows from a CSV file or the embedded default bank.
//   - Pick random or date-deterministic puzzles for new games.
//   - List bank answers consistent with a masked display (used by the AI solver).
//
// CSV format (no header):
//   puzzle, theme, date, episode, round
// Rows with fewer than two columns or an empty puzzle/theme are skipped.

package puzzles

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/richjohnson-wwt/nat-wof/assets"
)

// ErrEmptyBank is returned when no usable rows were loaded.
var ErrEmptyBank = errors.New("no puzzles loaded")

// Puzzle is one row of the bank.
type Puzzle struct {
	Answer  string `json:"answer"`
	Theme   string `json:"theme"`
	Date    string `json:"date,omitempty"`
	Episode string `json:"episode,omitempty"`
	Round   string `json:"round,omitempty"`
}

// Parse reads CSV rows from r.
func Parse(r io.Reader) ([]Puzzle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []Puzzle
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 2 {
			continue
		}
		p := Puzzle{
			Answer: strings.ToUpper(strings.TrimSpace(row[0])),
			Theme:  strings.TrimSpace(row[1]),
		}
		if p.Answer == "" || p.Theme == "" {
			continue
		}
		if len(row) > 2 {
			p.Date = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			p.Episode = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			p.Round = strings.TrimSpace(row[4])
		}
		out = append(out, p)
	}
	return out, nil
}

// Bank is an immutable list of puzzles with its own random source.
type Bank struct {
	puzzles []Puzzle
	mu      sync.Mutex // guards rng
	rng     *rand.Rand
}

// NewBank wraps puzzles. A nil rng uses a randomly seeded source.
func NewBank(ps []Puzzle, rng *rand.Rand) (*Bank, error) {
	if len(ps) == 0 {
		return nil, ErrEmptyBank
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Bank{puzzles: append([]Puzzle(nil), ps...), rng: rng}, nil
}

// Load reads the bank from path, or from the embedded default when path is
// empty.
func Load(path string, rng *rand.Rand) (*Bank, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if path == "" {
		rc, err = assets.Puzzles()
	} else {
		rc, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open puzzles: %w", err)
	}
	defer rc.Close()

	ps, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse puzzles: %w", err)
	}
	return NewBank(ps, rng)
}

// Len returns the number of puzzles.
func (b *Bank) Len() int { return len(b.puzzles) }

// All returns a copy of the bank.
func (b *Bank) All() []Puzzle { return append([]Puzzle(nil), b.puzzles...) }

// Random returns a uniformly random puzzle.
func (b *Bank) Random() Puzzle {
	b.mu.Lock()
	i := b.rng.IntN(len(b.puzzles))
	b.mu.Unlock()
	return b.puzzles[i]
}

// Daily returns the puzzle of the day for t; every process using the same
// salt picks the same puzzle.
func (b *Bank) Daily(t time.Time, salt string) Puzzle {
	return b.puzzles[DailyIndex(t, salt, len(b.puzzles))]
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DailyIndex returns HMAC(salt, YYYY-MM-DD) % n.
func DailyIndex(t time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// Candidates lists bank answers with the given theme (case-insensitive; any
// theme when empty) that are consistent with masked and guessed.
func (b *Bank) Candidates(theme, masked string, guessed []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range b.puzzles {
		if theme != "" && !strings.EqualFold(p.Theme, theme) {
			continue
		}
		if _, dup := seen[p.Answer]; dup {
			continue
		}
		if Matches(p.Answer, masked, guessed) {
			seen[p.Answer] = struct{}{}
			out = append(out, p.Answer)
		}
	}
	return out
}

// Matches reports whether answer could be behind the masked display:
//   - "*" must be a space and "_" a letter that has not been guessed
//     (a guessed letter would have been revealed everywhere);
//   - any other token must equal the answer character.
func Matches(answer, masked string, guessed []string) bool {
	tokens := strings.Split(masked, " ")
	runes := []rune(strings.ToUpper(answer))
	if len(tokens) != len(runes) {
		return false
	}
	used := make(map[rune]struct{}, len(guessed))
	for _, g := range guessed {
		for _, r := range strings.ToUpper(g) {
			used[r] = struct{}{}
		}
	}
	for i, tok := range tokens {
		r := runes[i]
		switch tok {
		case "*":
			if r != ' ' {
				return false
			}
		case "_":
			if !unicode.IsLetter(r) {
				return false
			}
			if _, ok := used[r]; ok {
				return false
			}
		default:
			if tok != string(r) {
				return false
			}
		}
	}
	return true
}
