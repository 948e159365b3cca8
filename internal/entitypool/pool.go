// Package entitypool implements the dense, fixed-capacity monster and item
// pools with generational id reuse and high-water-mark compaction (spec §2
// L3 "Entity pools", §4.3). It wraps internal/core/ecs's generational
// EntityPool with the compaction machinery the generic pool doesn't have.
package entitypool

import "github.com/erasmund/depthkeep/internal/core/ecs"

// Kind distinguishes the two pools the design calls for.
type Kind byte

const (
	KindMonster Kind = iota
	KindItem
)

// Priority biases which entities survive compaction: Unique and Quest
// entries are kept first, Townsperson entries are purged before Normal ones
// (see score in compact.go); within a tier the combined-metric score decides.
type Priority byte

const (
	PriorityNormal Priority = iota
	PriorityTownsperson // biased to be purged first
	PriorityUnique       // biased heavily to be kept
	PriorityQuest
)

// Entry is the bookkeeping compaction needs per occupied slot: nothing
// about gameplay lives here, only what is required to score and evict it.
type Entry struct {
	ID           ecs.EntityID
	Alive        bool
	Priority     Priority
	Level        int     // monster/item level, for the level-ratio metric
	NearestDist  int     // distance to nearest player, refreshed each tick by the caller
}

// EvictFunc is called once per entity compaction frees, so the caller can
// clear every cross-reference pointing at it: cell monster-link, player
// target/health-track, held-item back-link (spec §4.3). Survivors keep
// their id — the backing pool already reuses freed slots via its
// generational free list, so compaction only needs to evict, never to
// renumber anything still alive (see DESIGN.md).
type EvictFunc func(kind Kind, id ecs.EntityID)

// Pool is one dense, fixed-capacity entity array.
type Pool struct {
	kind     Kind
	capacity int
	pool     *ecs.EntityPool
	entries  []Entry
}

func New(kind Kind, capacity int) *Pool {
	return &Pool{
		kind:     kind,
		capacity: capacity,
		pool:     ecs.NewEntityPool(),
		entries:  make([]Entry, 0, capacity),
	}
}

func (p *Pool) Len() int { return len(p.entries) }

func (p *Pool) Capacity() int { return p.capacity }

// HighWaterMark reports whether the pool has reached the compaction
// trigger threshold (>= 3/4 capacity, per spec §4.3).
func (p *Pool) HighWaterMark() bool {
	return len(p.entries)*4 >= p.capacity*3
}

// ErrPoolFull is returned by Alloc when the pool cannot grow further; callers
// must trigger compaction (or abort the action) rather than half-allocate.
type ErrPoolFull struct{ Kind Kind }

func (e ErrPoolFull) Error() string { return "entitypool: pool full" }

// Alloc reserves a new slot, growing the backing array. The caller supplies
// the bookkeeping fields; gameplay state is stored elsewhere keyed by id.
func (p *Pool) Alloc(priority Priority, level int) (ecs.EntityID, error) {
	if len(p.entries) >= p.capacity {
		return 0, ErrPoolFull{Kind: p.kind}
	}
	id := p.pool.Create()
	idx := id.Index()
	for int(idx) >= len(p.entries) {
		p.entries = append(p.entries, Entry{})
	}
	p.entries[idx] = Entry{ID: id, Alive: true, Priority: priority, Level: level}
	return id, nil
}

func (p *Pool) Alive(id ecs.EntityID) bool {
	return p.pool.Alive(id) && int(id.Index()) < len(p.entries) && p.entries[id.Index()].Alive
}

func (p *Pool) Free(id ecs.EntityID) {
	if !p.Alive(id) {
		return
	}
	p.entries[id.Index()].Alive = false
	p.pool.Destroy(id)
}

// Entry returns the bookkeeping for id's slot, for updating NearestDist
// each tick. ok is false for a dead or out-of-range id.
func (p *Pool) Entry(id ecs.EntityID) (*Entry, bool) {
	if !p.Alive(id) {
		return nil, false
	}
	return &p.entries[id.Index()], true
}

// Each walks only alive slots, the iteration helper spec §4.3 asks for.
func (p *Pool) Each(fn func(ecs.EntityID, *Entry)) {
	for i := range p.entries {
		if p.entries[i].Alive {
			fn(p.entries[i].ID, &p.entries[i])
		}
	}
}
