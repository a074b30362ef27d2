package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// sqliteStore keeps strings and hashes in the kv_strings / kv_hashes tables
// created by the db package migrations. The *sql.DB is owned by the caller.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an already migrated database handle.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_strings WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO kv_strings (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

func (s *sqliteStore) Incr(ctx context.Context, key string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int64
	var cur string
	err = tx.QueryRowContext(ctx, `SELECT value FROM kv_strings WHERE key=?`, key).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return 0, err
	default:
		n, err = strconv.ParseInt(cur, 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
	}
	n++
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO kv_strings (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, strconv.FormatInt(n, 10)); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit incr %s: %w", key, err)
	}
	return n, nil
}

func (s *sqliteStore) Del(ctx context.Context, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv_strings WHERE key=?`, k); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv_hashes WHERE key=?`, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) HGet(ctx context.Context, key, field string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_hashes WHERE key=? AND field=?`, key, field,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *sqliteStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for f, v := range fields {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO kv_hashes (key, field, value) VALUES (?, ?, ?)
            ON CONFLICT(key, field) DO UPDATE SET value=excluded.value`, key, f, v); err != nil {
			return fmt.Errorf("hset %s.%s: %w", key, f, err)
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT field, value FROM kv_hashes WHERE key=?`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var f, v string
		if err := rows.Scan(&f, &v); err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, rows.Err()
}

func (s *sqliteStore) HDel(ctx context.Context, key string, fields ...string) error {
	for _, f := range fields {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_hashes WHERE key=? AND field=?`, key, f); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the database handle belongs to the caller.
func (s *sqliteStore) Close() error { return nil }
