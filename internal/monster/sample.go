package monster

import "github.com/erasmund/depthkeep/internal/catalog"

// Roller is the RNG surface the sampler needs; internal/dungeongen.Rand
// satisfies it directly so both subsystems can share a seed when a
// dungeon level's population is drawn during generation.
type Roller interface{ Intn(n int) int }

// SampleOpts carries get_mon_num's inputs beyond the race table itself
// (spec §4.6 "Restricted sampling").
type SampleOpts struct {
	Depth        int // requested level; nasty rolls boost a working copy of this
	DungeonType  *catalog.DungeonType
	Present      []PlayerID // players on the destination level, for unique exclusion
	PowerSamples int        // total draws to keep the highest level of; below 1 counts as 1
}

// eligible reports whether race passes every static gate in spec §4.6
// step 1, before any stochastic rule is applied.
func eligible(race *catalog.Race, depth int, dtype *catalog.DungeonType, rule catalog.SpawnRule) bool {
	if race.Level > depth {
		return false
	}
	if race.MinDepth > 0 && depth < race.MinDepth {
		return false
	}
	if race.MaxDepth > 0 && depth > race.MaxDepth {
		return false
	}
	if dtype != nil {
		for _, g := range dtype.ExcludeGlyphs {
			if rune(g) == race.Glyph {
				return false
			}
		}
	}
	return rule.Allows(race)
}

// nastyBoost applies spec §4.6 step 2 and SUPPLEMENTED FEATURES'
// per-dungeon-tunable NASTY divisor and out-of-depth cap.
func nastyBoost(depth int, dtype *catalog.DungeonType, rng Roller) int {
	div := 200
	cap := depth + 25
	if dtype != nil {
		if dtype.NastyDiv > 0 {
			div = dtype.NastyDiv
		}
		if dtype.OutOfDepthCap > 0 {
			cap = depth + dtype.OutOfDepthCap
		}
	}
	if rng.Intn(div) != 0 {
		return depth
	}
	boosted := depth + 5 + rng.Intn(depth/4+1)
	if boosted > cap {
		boosted = cap
	}
	return boosted
}

// weight gives higher preference to races rated close to (but at or
// below) the working depth, matching the reference table's bias toward
// "native" depth monsters over far-underleveled ones.
func weight(race *catalog.Race, depth int) int {
	diff := depth - int(race.Level)
	w := 100 - diff*4
	if w < 1 {
		w = 1
	}
	return w
}

// GetMonNum implements spec §4.6's restricted sampler end to end: nasty
// roll, preference-weighted draw, power-bias (keep the highest level of
// several samples), and unique exclusion. ok is false when no eligible
// race exists at all.
func GetMonNum(races *catalog.RaceTable, pop *Population, kills *UniqueKillLog, opts SampleOpts, rng Roller) (*catalog.Race, bool) {
	workingDepth := opts.Depth
	if opts.DungeonType != nil {
		workingDepth = nastyBoost(opts.Depth, opts.DungeonType, rng)
	}

	var rule catalog.SpawnRule
	if opts.DungeonType != nil {
		rule = opts.DungeonType.PickRule(rng.Intn(100))
	}

	samples := opts.PowerSamples
	if samples < 1 {
		samples = 1
	}

	var best *catalog.Race
	for i := 0; i < samples; i++ {
		r := drawOne(races, pop, kills, workingDepth, opts.DungeonType, rule, opts.Present, rng)
		if r == nil {
			continue
		}
		if best == nil || r.Level > best.Level {
			best = r
		}
	}
	return best, best != nil
}

// drawOne performs a single weighted draw over the eligible, not-excluded
// race set.
func drawOne(races *catalog.RaceTable, pop *Population, kills *UniqueKillLog, depth int, dtype *catalog.DungeonType, rule catalog.SpawnRule, present []PlayerID, rng Roller) *catalog.Race {
	type candidate struct {
		race *catalog.Race
		w    int
	}
	var pool []candidate
	total := 0
	for _, r := range races.All() {
		if !eligible(r, depth, dtype, rule) {
			continue
		}
		if r.IsUnique() {
			if pop.AtCapacity(r) {
				continue
			}
			if kills.KilledByAll(r.ID, present) {
				continue
			}
		}
		w := weight(r, depth)
		pool = append(pool, candidate{race: r, w: w})
		total += w
	}
	if total <= 0 {
		return nil
	}
	roll := rng.Intn(total)
	for _, c := range pool {
		if roll < c.w {
			return c.race
		}
		roll -= c.w
	}
	return pool[len(pool)-1].race
}
