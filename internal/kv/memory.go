// internal/kv/memory.go
//
// In-memory implementation of the kv.Store interface.
// Used for tests, demos and single-process play where durability is not required.
//
// Characteristics:
//   - Strings and hashes live in separate maps, as in Redis.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package kv

import (
	"context"
	"strconv"
	"sync"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex                 // guards both maps
	strings map[string]string            // plain keys
	hashes  map[string]map[string]string // hash keys -> fields
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		strings: make(map[string]string),
		hashes:  make(map[string]map[string]string),
	}
}

func (m *memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.strings[key]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

func (m *memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[key] = value
	return nil
}

func (m *memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if v, ok := m.strings[key]; ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		n = parsed
	}
	n++
	m.strings[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.strings, k)
		delete(m.hashes, k)
	}
	return nil
}

func (m *memory) HGet(_ context.Context, key, field string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.hashes[key][field]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

func (m *memory) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		m.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = v
	}
	return nil
}

// HGetAll returns a copy so callers cannot mutate stored state.
func (m *memory) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.hashes[key]))
	for f, v := range m.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func (m *memory) HDel(_ context.Context, key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		return nil
	}
	for _, f := range fields {
		delete(h, f)
	}
	if len(h) == 0 {
		delete(m.hashes, key)
	}
	return nil
}

func (m *memory) Close() error { return nil }
