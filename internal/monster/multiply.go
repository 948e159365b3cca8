package monster

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/entitypool"
	"github.com/erasmund/depthkeep/internal/grid"
)

// multiplyRadius bounds the local-density scan TryMultiply uses (SUPPLEMENTED
// FEATURES: "multiply self-capping by local population density" in place of
// the reference server's flat MAX_MONSTER_MULT world cap).
const multiplyRadius = 3

// multiplyLocalCap is the number of monsters of any race (the multiplier
// itself included) within multiplyRadius at which a further multiply
// attempt is refused, independent of the race's global MaxNum.
const multiplyLocalCap = 4

// TryMultiply implements the reference server's RF1_MULTIPLY check
// (monster2.c multiply_monster), gated by local density rather than a
// single global counter: a race flagged Multiply spawns a copy of itself
// into a random adjacent naked cell unless multiplyLocalCap monsters are
// already within multiplyRadius (counted without regard to race), or the
// race's global population cap (spec §3 invariant) is reached. Returns the
// new instance, or nil if the race cannot multiply, a cap applies, or no
// eligible cell/slot was available.
func TryMultiply(pool *entitypool.Pool, pop *Population, cat *catalog.Catalog, races *catalog.RaceTable, m *Instance, g *grid.Grid, rng Roller) *Instance {
	race := races.Get(m.RaceID)
	if race == nil || !race.Has(catalog.RaceFlagMultiply) {
		return nil
	}
	if pop.AtCapacity(race) {
		return nil
	}

	density := 0
	for dy := -multiplyRadius; dy <= multiplyRadius; dy++ {
		for dx := -multiplyRadius; dx <= multiplyRadius; dx++ {
			c := grid.Coord{X: m.Pos.X + dx, Y: m.Pos.Y + dy}
			if !g.InBounds(c) {
				continue
			}
			link := g.At(c).Monster
			if !link.Valid() {
				continue
			}
			density++
		}
	}
	if density >= multiplyLocalCap {
		return nil
	}

	adj := neighbours8(m.Pos)
	candidates := make([]grid.Coord, 0, len(adj))
	for _, c := range adj {
		if g.InBounds(c) && cellEligible(g, cat.Features, race, c, false) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	target := candidates[rng.Intn(len(candidates))]

	child, err := PlaceOne(pool, pop, cat, race, g, target, PlaceOpts{
		EgoID:       m.EgoID,
		ClonePct:    NextClonePct(m, 0),
		SummonDepth: NextSummonDepth(m),
	}, rng)
	if err != nil {
		return nil
	}
	return child
}
