// Package levelstore manages the set of level instances currently resident
// in memory: lazy creation on first entry, reference-counted pinning while
// players are present, and a periodic sweep that frees stale levels (spec
// §2 L2 "Level store", §3 "Level record").
package levelstore

import (
	"sync"
	"time"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

// LevelID identifies one level instance within a dungeon.
type LevelID struct {
	DungeonID int32
	Depth     int
}

// Record is one level's live state: its grid, the dungeon-type ruleset it
// was generated under, and the bookkeeping the store needs to decide when
// it can be released.
type Record struct {
	ID        LevelID
	Grid      *grid.Grid
	Type      *catalog.DungeonType
	Flags     catalog.LevelFlag
	Seed      int64
	createdAt time.Time

	mu         sync.Mutex
	pinCount   int
	lastActive time.Time
}

func (r *Record) Pin() {
	r.mu.Lock()
	r.pinCount++
	r.lastActive = time.Now()
	r.mu.Unlock()
}

func (r *Record) Unpin() {
	r.mu.Lock()
	if r.pinCount > 0 {
		r.pinCount--
	}
	r.lastActive = time.Now()
	r.mu.Unlock()
}

func (r *Record) Pinned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pinCount > 0
}

func (r *Record) IdleSince() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.lastActive)
}

// Factory builds a fresh grid for a level id that doesn't exist yet. The
// dungeon generator (internal/dungeongen) implements this; levelstore only
// knows how to call it and hold the result.
type Factory func(id LevelID, dtype *catalog.DungeonType, seed int64) (*grid.Grid, error)

// Store is the in-memory registry of resident levels. Accessed only from
// the tick goroutine — no internal locking on the map itself, matching the
// reference server's single-threaded game-loop convention (its AOIGrid and
// State are likewise lock-free and loop-goroutine-only).
type Store struct {
	factory Factory
	levels  map[LevelID]*Record
}

func NewStore(factory Factory) *Store {
	return &Store{factory: factory, levels: make(map[LevelID]*Record)}
}

// Acquire returns the Record for id, lazily generating it on first entry
// (spec §4.1 "Lazy registration"), and pins it.
func (s *Store) Acquire(id LevelID, dtype *catalog.DungeonType, seed int64) (*Record, error) {
	if r, ok := s.levels[id]; ok {
		r.Pin()
		return r, nil
	}
	g, err := s.factory(id, dtype, seed)
	if err != nil {
		return nil, err
	}
	r := &Record{
		ID: id, Grid: g, Type: dtype, Seed: seed,
		createdAt: time.Now(), lastActive: time.Now(),
	}
	s.levels[id] = r
	r.Pin()
	return r, nil
}

// Lookup returns a resident level without creating it or touching its pin
// count, for read-only queries (command surface "dungeon list").
func (s *Store) Lookup(id LevelID) (*Record, bool) {
	r, ok := s.levels[id]
	return r, ok
}

func (s *Store) Release(id LevelID) {
	if r, ok := s.levels[id]; ok {
		r.Unpin()
	}
}

// Sweep frees every unpinned level idle longer than staleAfter, returning
// the ids it dropped. Called once per housekeeping pass from internal/tick.
func (s *Store) Sweep(staleAfter time.Duration) []LevelID {
	var freed []LevelID
	for id, r := range s.levels {
		if r.Pinned() {
			continue
		}
		if r.IdleSince() < staleAfter {
			continue
		}
		delete(s.levels, id)
		freed = append(freed, id)
	}
	return freed
}

func (s *Store) Count() int { return len(s.levels) }

// All iterates every resident level, for the tick scheduler's per-level
// update pass.
func (s *Store) All(fn func(*Record)) {
	for _, r := range s.levels {
		fn(r)
	}
}
