// internal/store/memory.go
//
// In-memory implementation of the round Store interface.
// Each player owns at most one round; saving a new round replaces the old
// one, which is how a new start discards an in-flight round.
//
// Characteristics:
//   - Stores game.Round values keyed by player ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update gives callers an atomic read-modify-write.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/pathrecall/internal/game"
)

// ErrNotFound is returned when a player has no round.
var ErrNotFound = errors.New("store: round not found")

// Store defines the persistence interface for rounds.
type Store interface {
	// Save stores r as the player's current round, replacing any other.
	Save(ctx context.Context, owner string, r game.Round) error

	// Get returns the player's current round or ErrNotFound.
	Get(ctx context.Context, owner string) (game.Round, error)

	// Update applies fn to the player's round under the write lock.
	// If fn returns an error nothing is written and the error is returned.
	Update(ctx context.Context, owner string, fn func(game.Round) (game.Round, error)) (game.Round, error)

	// Prune removes rounds last touched before the cutoff and reports how many.
	Prune(ctx context.Context, before time.Time) int
}

type entry struct {
	round   game.Round
	touched time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex     // guards rounds
	rounds map[string]entry // keyed by player ID
	now    func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return newMemory(time.Now)
}

func newMemory(now func() time.Time) *memory {
	return &memory{rounds: make(map[string]entry), now: now}
}

// Save adds or replaces the player's round.
func (m *memory) Save(ctx context.Context, owner string, r game.Round) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[owner] = entry{round: r, touched: m.now()}
	return nil
}

// Get looks up the player's round.
func (m *memory) Get(ctx context.Context, owner string) (game.Round, error) {
	if err := ctx.Err(); err != nil {
		return game.Round{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.rounds[owner]; ok {
		return e.round, nil
	}
	return game.Round{}, ErrNotFound
}

// Update runs fn against the stored round while holding the write lock.
func (m *memory) Update(ctx context.Context, owner string, fn func(game.Round) (game.Round, error)) (game.Round, error) {
	if err := ctx.Err(); err != nil {
		return game.Round{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rounds[owner]
	if !ok {
		return game.Round{}, ErrNotFound
	}
	next, err := fn(e.round)
	if err != nil {
		return e.round, err
	}
	m.rounds[owner] = entry{round: next, touched: m.now()}
	return next, nil
}

// Prune drops entries not touched since before.
func (m *memory) Prune(ctx context.Context, before time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for owner, e := range m.rounds {
		if e.touched.Before(before) {
			delete(m.rounds, owner)
			n++
		}
	}
	return n
}
