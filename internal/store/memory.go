// internal/store/memory.go
//
// Session persistence for game engines.
// The presentation layer keeps one engine per session id here and threads
// it through every request.
//
// Characteristics of the in-memory implementation:
//   - Stores engine snapshots keyed by session id; callers always get copies.
//   - Concurrency-safe via RWMutex; Update holds the write lock for the whole
//     read-modify-write so two requests for one session cannot interleave.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/cowsbulls/internal/game"
)

// ErrNotFound is returned when no session exists for an id.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces the engine for id.
	Save(ctx context.Context, id string, e *game.Engine) error

	// Get returns an independent copy of the engine for id.
	Get(ctx context.Context, id string) (*game.Engine, error)

	// Update loads the engine, runs fn and saves the result atomically.
	// If fn returns an error nothing is written and the error is returned.
	Update(ctx context.Context, id string, fn func(*game.Engine) error) error

	// Delete removes the session. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Purge removes sessions last written before the cutoff and reports how many.
	Purge(ctx context.Context, before time.Time) (int, error)
}

type memEntry struct {
	snap    game.Snapshot
	updated time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]memEntry
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]memEntry), now: time.Now}
}

func (m *memory) Save(ctx context.Context, id string, e *game.Engine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = memEntry{snap: e.Snapshot(), updated: m.now()}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Engine, error) {
	m.mu.RLock()
	ent, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return game.Restore(ent.snap)
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Engine) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	e, err := game.Restore(ent.snap)
	if err != nil {
		return err
	}
	if err := fn(e); err != nil {
		return err
	}
	m.sessions[id] = memEntry{snap: e.Snapshot(), updated: m.now()}
	return nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Purge(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, ent := range m.sessions {
		if ent.updated.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
