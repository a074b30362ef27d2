// Package wheel holds the wedge table and spins it.
package wheel

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/richjohnson-wwt/nat-wof/assets"
)

// Kind classifies a wedge.
type Kind int

const (
	Cash Kind = iota
	Bankrupt
	LoseATurn
	FreePlay
)

func (k Kind) String() string {
	switch k {
	case Cash:
		return "cash"
	case Bankrupt:
		return "bankrupt"
	case LoseATurn:
		return "lose_a_turn"
	case FreePlay:
		return "free_play"
	}
	return "unknown"
}

// Wedge is one entry on the wheel.
type Wedge struct {
	Label  string // as printed on the wheel, e.g. "650" or "BANKRUPT"
	Kind   Kind
	Amount int // dollars per revealed consonant; 0 for specials
}

func (w Wedge) String() string { return w.Label }

// ErrEmptyWheel is returned when a wedge table has no entries.
var ErrEmptyWheel = errors.New("wheel has no wedges")

// ParseWedge parses one wheel line: a positive amount, BANKRUPT,
// LOSE A TURN or FREE PLAY (case-insensitive).
func ParseWedge(s string) (Wedge, error) {
	label := strings.ToUpper(strings.TrimSpace(s))
	if n, err := strconv.Atoi(label); err == nil {
		if n <= 0 {
			return Wedge{}, fmt.Errorf("wedge %q: amount must be positive", s)
		}
		return Wedge{Label: label, Kind: Cash, Amount: n}, nil
	}
	switch {
	case strings.Contains(label, "BANKRUPT"):
		return Wedge{Label: label, Kind: Bankrupt}, nil
	case strings.Contains(label, "LOSE") && strings.Contains(label, "TURN"):
		return Wedge{Label: label, Kind: LoseATurn}, nil
	case label == "FREE PLAY":
		return Wedge{Label: label, Kind: FreePlay}, nil
	}
	return Wedge{}, fmt.Errorf("wedge %q: unknown value", s)
}

// Wheel picks uniformly random wedges. Safe for concurrent use.
type Wheel struct {
	wedges []Wedge
	mu     sync.Mutex // guards rng
	rng    *rand.Rand
}

// New builds a wheel. A nil rng uses a randomly seeded source.
func New(wedges []Wedge, rng *rand.Rand) (*Wheel, error) {
	if len(wedges) == 0 {
		return nil, ErrEmptyWheel
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Wheel{wedges: append([]Wedge(nil), wedges...), rng: rng}, nil
}

// Load reads wedges one per line from path, or from the embedded default
// table when path is empty.
func Load(path string, rng *rand.Rand) (*Wheel, error) {
	var lines []string
	if path == "" {
		l, err := assets.WheelLines()
		if err != nil {
			return nil, fmt.Errorf("embedded wheel: %w", err)
		}
		lines = l
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		l, err := assets.ReadLines(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		lines = l
	}

	wedges := make([]Wedge, 0, len(lines))
	for _, line := range lines {
		w, err := ParseWedge(line)
		if err != nil {
			return nil, err
		}
		wedges = append(wedges, w)
	}
	return New(wedges, rng)
}

// Spin returns a random wedge.
func (w *Wheel) Spin() Wedge {
	w.mu.Lock()
	i := w.rng.IntN(len(w.wedges))
	w.mu.Unlock()
	return w.wedges[i]
}

// Wedges returns a copy of the table.
func (w *Wheel) Wedges() []Wedge {
	return append([]Wedge(nil), w.wedges...)
}
