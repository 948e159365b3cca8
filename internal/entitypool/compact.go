package entitypool

import "sort"

// score combines the victim-selection metric spec §4.3 describes: distance
// from any player (closer survives), level ratio (weaker relative to the
// level's average is purged first), with unique/quest entries given a huge
// bias to keep and townspeople a bias to purge. Lower score is purged
// first.
func score(e Entry, levelAverage int) int {
	s := e.NearestDist * 10
	if levelAverage > 0 {
		s += (e.Level * 100) / levelAverage
	}
	switch e.Priority {
	case PriorityUnique, PriorityQuest:
		s += 1_000_000
	case PriorityTownsperson:
		s -= 1_000
	}
	return s
}

// Compact frees the lowest-scoring alive entries until the pool is back
// under the high-water mark and calls evict once per entity it removes, so
// the caller can clear that entity's back-references before the slot is
// reused. Surviving entities keep their id unchanged: the backing pool's
// generational free list already reclaims freed slots on the next Alloc,
// so there is nothing to remap for anything still alive. Not re-entrant:
// callers must not call Compact from within evict, or while a generator
// holds references into this pool (spec §4.3).
func (p *Pool) Compact(levelAverage int, evict EvictFunc) {
	type scored struct {
		idx int
		s   int
	}
	alive := make([]scored, 0, len(p.entries))
	for i, e := range p.entries {
		if e.Alive {
			alive = append(alive, scored{idx: i, s: score(e, levelAverage)})
		}
	}

	target := (p.capacity * 3) / 4
	if len(alive) <= target {
		return
	}

	sort.Slice(alive, func(i, j int) bool { return alive[i].s < alive[j].s })
	toFree := len(alive) - target
	for i := 0; i < toFree; i++ {
		idx := alive[i].idx
		id := p.entries[idx].ID
		p.entries[idx].Alive = false
		p.pool.Destroy(id)
		if evict != nil {
			evict(p.kind, id)
		}
	}
}
