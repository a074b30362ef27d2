// internal/runner/human.go
//
// Interactive human turn over an io.Reader / io.Writer pair.
//
// Responsibilities:
//   - Show the board (player, theme, puzzle, scores by display name,
//     guessed letters) before and after every action.
//   - Menu: [1] Spin [2] Buy vowel [3] Solve [q] Quit.
//   - Re-prompt on invalid menu input, non-consonants/non-vowels and letters
//     that were already guessed.
//   - Stop when the action handlers end the turn or the game is finished;
//     insufficient funds keeps the turn.

package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/richjohnson-wwt/nat-wof/internal/actions"
	"github.com/richjohnson-wwt/nat-wof/internal/game"
	"github.com/richjohnson-wwt/nat-wof/internal/wheel"
)

// ErrQuit is returned when the user quits, input runs out or the context is
// cancelled while waiting for input.
var ErrQuit = errors.New("quit")

// Human plays turns from line-oriented input.
type Human struct {
	h   *actions.Handler
	in  *bufio.Scanner
	out io.Writer

	once  sync.Once
	lines chan inputLine
}

type inputLine struct {
	text string
	err  error
}

func NewHuman(h *actions.Handler, in io.Reader, out io.Writer) *Human {
	return &Human{h: h, in: bufio.NewScanner(in), out: out}
}

// TakeTurn plays player's turn until it ends. It returns ErrQuit when the
// user quits before the turn is over.
func (u *Human) TakeTurn(ctx context.Context, player string) error {
	if err := u.h.CheckTurn(ctx, player); err != nil {
		return err
	}
	if err := u.ShowState(ctx); err != nil {
		return err
	}
	for {
		u.printf("\nChoose action: [1] Spin  [2] Buy vowel  [3] Solve  [q] Quit\n")
		choice, err := u.prompt(ctx, "> ")
		if err != nil {
			return err
		}
		var res *actions.Result
		switch strings.ToLower(choice) {
		case "q":
			return ErrQuit
		case "1":
			res, err = u.h.Spin(ctx, player, u.askConsonant)
		case "2":
			res, err = u.h.BuyVowel(ctx, player, u.askVowel)
		case "3":
			var attempt string
			if attempt, err = u.prompt(ctx, "Enter your solution: "); err == nil {
				res, err = u.h.Solve(ctx, player, attempt)
			}
		default:
			u.printf("Invalid choice. Try again.\n")
			continue
		}
		if err != nil {
			return err
		}

		u.report(res)
		if err := u.ShowState(ctx); err != nil {
			return err
		}
		if res.Updates.Status == game.StatusFinished {
			return nil
		}
		if res.EndsTurn {
			name, _ := u.h.State().DisplayName(ctx, res.Updates.Turn)
			u.printf("Turn ended. Next player: %s\n", name)
			return nil
		}
	}
}

// ShowState prints the current board.
func (u *Human) ShowState(ctx context.Context) error {
	g, err := u.h.State().Current(ctx)
	if err != nil {
		return err
	}
	names, err := u.h.State().PlayerNames(ctx)
	if err != nil {
		return err
	}
	display := func(id string) string {
		if n := names[id]; n != "" {
			return n
		}
		return id
	}

	ids := make([]string, 0, len(g.Scores))
	for id := range g.Scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	scores := make([]string, 0, len(ids))
	for _, id := range ids {
		scores = append(scores, fmt.Sprintf("%s: %d", display(id), g.Scores[id]))
	}

	u.printf("\n=== Wheel of Fortune ===\n")
	u.printf("Player: %s\n", display(g.Turn))
	u.printf("Theme:  %s\n", g.Theme)
	u.printf("Puzzle: %s\n", g.Puzzle)
	u.printf("Scores: %s\n", strings.Join(scores, ", "))
	u.printf("Guessed consonants: %s\n", listOrDash(g.GuessedConsonants))
	u.printf("Guessed vowels:     %s\n", listOrDash(g.GuessedVowels))
	if g.Finished() {
		u.printf("Winner: %s\n", g.Winner)
	}
	return nil
}

func (u *Human) askConsonant(ctx context.Context, wedge wheel.Wedge, _ string, remaining []string) (string, error) {
	u.printf("You spun: %s\n", wedge.Label)
	for {
		l, err := u.prompt(ctx, "Enter a consonant: ")
		if err != nil {
			return "", err
		}
		l = strings.ToUpper(l)
		switch {
		case !game.IsConsonant(l):
			u.printf("Please enter a single consonant (A/E/I/O/U are vowels).\n")
		case !containsLetter(remaining, l):
			u.printf("That consonant was already guessed. Try another.\n")
		default:
			return l, nil
		}
	}
}

func (u *Human) askVowel(ctx context.Context, _ string, remaining []string) (string, error) {
	for {
		l, err := u.prompt(ctx, "Enter a vowel (A/E/I/O/U): ")
		if err != nil {
			return "", err
		}
		l = strings.ToUpper(l)
		switch {
		case !game.IsVowel(l):
			u.printf("Please enter a single vowel (A/E/I/O/U).\n")
		case !containsLetter(remaining, l):
			u.printf("That vowel was already bought. Try another.\n")
		default:
			return l, nil
		}
	}
}

func (u *Human) report(res *actions.Result) {
	switch res.Action {
	case actions.ActionSpin:
		switch {
		case res.Updates.Letter == "":
			u.printf("%s\n", res.Details)
		case res.Updates.Occurrences > 0:
			u.printf("'%s' appears %d time(s). You earn %d.\n",
				res.Updates.Letter, res.Updates.Occurrences, res.Updates.Occurrences*res.Updates.Amount)
		default:
			u.printf("'%s' is not in the puzzle.\n", res.Updates.Letter)
		}
	case actions.ActionBuyVowel:
		if !res.Success {
			u.printf("%s\n", res.Details)
			return
		}
		u.printf("Revealed '%s' %d time(s).\n", res.Updates.Letter, res.Updates.Occurrences)
	case actions.ActionSolve:
		if res.Success {
			u.printf("Correct! You solved the puzzle!\n")
			return
		}
		u.printf("Incorrect. The attempt '%s' does not match.\n", res.Updates.Guess)
	}
}

// prompt writes p and waits for one trimmed line. End of input and a done
// ctx both give ErrQuit.
func (u *Human) prompt(ctx context.Context, p string) (string, error) {
	u.printf("%s", p)
	u.once.Do(u.startReader)
	select {
	case <-ctx.Done():
		u.printf("\n")
		return "", ErrQuit
	case l, ok := <-u.lines:
		if !ok {
			return "", ErrQuit
		}
		return l.text, l.err
	}
}

// startReader scans input on its own goroutine so a blocked read never
// holds up cancellation.
func (u *Human) startReader() {
	u.lines = make(chan inputLine)
	go func() {
		defer close(u.lines)
		for u.in.Scan() {
			u.lines <- inputLine{text: strings.TrimSpace(u.in.Text())}
		}
		if err := u.in.Err(); err != nil {
			u.lines <- inputLine{err: err}
		}
	}()
}

func (u *Human) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

func listOrDash(l []string) string {
	if len(l) == 0 {
		return "-"
	}
	return strings.Join(l, ", ")
}

func containsLetter(list []string, l string) bool {
	for _, v := range list {
		if v == l {
			return true
		}
	}
	return false
}
