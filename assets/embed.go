package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed puzzles.csv wheel.txt
var FS embed.FS

// ReadLines returns trimmed, non-empty lines from r. Lines starting with
// "#" are comments.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

func WheelLines() ([]string, error) {
	f, err := FS.Open("wheel.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// Puzzles opens the embedded puzzle bank. Callers close it.
func Puzzles() (io.ReadCloser, error) {
	return FS.Open("puzzles.csv")
}
