package tick

import (
	"time"

	"github.com/erasmund/depthkeep/internal/core/system"
	"github.com/erasmund/depthkeep/internal/world"
)

// housekeepingInterval throttles world.Housekeeping to roughly once every
// few seconds of wall-clock tick time rather than every tick, matching the
// reference server's periodic (not per-tick) sweep cadence for pin expiry,
// stale-level eviction, and pool compaction (spec §4.2, §4.3).
const housekeepingInterval = 25

// HousekeepingSystem drives World.Housekeeping on a throttled cadence.
// Runs in PhaseCleanup, last in the tick, after everything else has had a
// chance to touch levels/pools this tick.
type HousekeepingSystem struct {
	w       *world.World
	counter int
}

func NewHousekeepingSystem(w *world.World) *HousekeepingSystem {
	return &HousekeepingSystem{w: w}
}

func (s *HousekeepingSystem) Phase() system.Phase { return system.PhaseCleanup }

func (s *HousekeepingSystem) Update(time.Duration) {
	s.counter++
	if s.counter < housekeepingInterval {
		return
	}
	s.counter = 0
	s.w.Housekeeping(time.Now())
}
