// Package dungeongen implements the procedural level-generation pipeline:
// framing, room archetypes, corridor carving, streamers, destruction mode,
// stair placement, monster/item allocation, town layout, plasma-fractal
// caverns and maze carving (spec §2 L5 "Dungeon generator", §4.5).
// Grounded on original_source/src/server/generate.c's cave_gen/town_gen
// pipeline, reshaped into small composable stages instead of one long
// procedure.
package dungeongen

import "math/rand"

// Rand is the RNG surface the generator needs. A seed derived from the
// world seed plus position gives deterministic town layouts; dungeon
// levels draw a fresh seed per spec §4.5.
type Rand struct {
	r *rand.Rand
}

func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// Intn returns [0,n).
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.Intn(n)
}

// Magik reports true with probability chance/100, matching the original
// server's magik(n) helper.
func (r *Rand) Magik(chance int) bool {
	return r.Intn(100) < chance
}

// RandRange returns a value in [lo, hi].
func (r *Rand) RandRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Spread returns a value within d of center, matching rand_spread.
func (r *Rand) Spread(center, d int) int {
	return center - d + r.Intn(2*d+1)
}

// Dice rolls n dice of s sides, 1-indexed per side (standard "NdS").
func (r *Rand) Dice(n, s int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += 1 + r.Intn(s)
	}
	return total
}
