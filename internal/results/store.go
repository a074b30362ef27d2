// internal/results/store.go
//
// Ledger of finished games, kept in SQLite next to the kv tables.
//
// Responsibilities:
//   - Record one row per solved game (winner, answer, theme, final scores).
//   - Leaderboard: wins per winner, most wins first.
//   - Recent: latest finished games.

package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type Entry struct {
	ID         int64          `json:"id,omitempty"`
	GameID     int64          `json:"gameId"`
	Winner     string         `json:"winner"`
	Answer     string         `json:"answer"`
	Theme      string         `json:"theme"`
	Scores     map[string]int `json:"scores"`
	FinishedAt time.Time      `json:"finishedAt"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts e. A zero FinishedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now()
	}
	if e.Scores == nil {
		e.Scores = map[string]int{}
	}
	scores, err := json.Marshal(e.Scores)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results(game_id, winner, answer, theme, scores, finished_at)
		 VALUES(?,?,?,?,?,?)`,
		e.GameID, e.Winner, e.Answer, e.Theme, string(scores), e.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

type LBRow struct {
	Winner  string `json:"winner"`
	Wins    int    `json:"wins"`
	LastWin string `json:"lastWin"`
}

// Leaderboard returns wins per winner, most wins first.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT winner, COUNT(1) AS wins, MAX(finished_at) AS last_win
		 FROM results
		 GROUP BY winner
		 ORDER BY wins DESC, last_win DESC, winner ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Winner, &r.Wins, &r.LastWin); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Recent returns the latest finished games, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, winner, answer, theme, scores, finished_at
		 FROM results
		 ORDER BY finished_at DESC, id DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var (
			e              Entry
			scores, finish string
		)
		if err := rows.Scan(&e.ID, &e.GameID, &e.Winner, &e.Answer, &e.Theme, &scores, &finish); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(scores), &e.Scores)
		e.FinishedAt, _ = time.Parse(time.RFC3339Nano, finish)
		out = append(out, e)
	}
	return out, rows.Err()
}
