package monster

import (
	"errors"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/core/ecs"
	"github.com/erasmund/depthkeep/internal/entitypool"
	"github.com/erasmund/depthkeep/internal/grid"
)

// GroupMax bounds a single place_group fan-out (spec §4.6 "Placement").
const GroupMax = 8

var (
	ErrCellBlocked    = errors.New("monster: target cell is occupied or unwalkable")
	ErrCellProtected  = errors.New("monster: target cell is protected")
	ErrNoEligibleCell = errors.New("monster: no eligible cell found near seed")
)

// toLink converts an entitypool id to a grid.EntityLink. The pool's
// generation counter starts at 0 for a slot's first occupant, which would
// collide with grid.NoEntity (the zero value) if stored directly; the +1
// offset keeps Gen==0 meaning "empty" while still round-tripping every
// live id. fromLink reverses it.
func toLink(id ecs.EntityID) grid.EntityLink {
	return grid.EntityLink{Index: id.Index(), Gen: id.Generation() + 1}
}

func fromLink(l grid.EntityLink) ecs.EntityID {
	if !l.Valid() {
		return 0
	}
	return ecs.NewEntityID(l.Index, l.Gen-1)
}

// PlaceOpts carries place_one/place_aux's optional behavior (spec §4.6
// "Placement").
type PlaceOpts struct {
	EgoID       int32
	Asleep      bool
	ClonePct    float64
	SummonDepth int
	Owner       ecs.EntityID
	ForceMaxHP  bool
	// Override disables the protected-cell checks placement normally
	// applies; set by admin summon commands (spec §4.6 "Failure modes").
	Override bool
}

// cellEligible implements spec §4.6 "Failure modes": refuses PROT cells,
// stairs, and terrain/race mismatches (aquatic on dry land, etc.) unless
// Override is set.
func cellEligible(g *grid.Grid, ft *catalog.FeatureTable, race *catalog.Race, c grid.Coord, override bool) bool {
	if !grid.CellNaked(g, ft, c) {
		return false
	}
	if override {
		return true
	}
	cell := g.At(c)
	if cell.Has(grid.FlagProt) {
		return false
	}
	feat := ft.Get(cell.Feature)
	if feat != nil && (feat.Has(catalog.FeatStairsUp) || feat.Has(catalog.FeatStairsDown)) {
		return false
	}
	isWater := feat != nil && cell.Feature == catalog.FeatWater
	if race.Has(catalog.RaceFlagAquatic) && !isWater {
		return false
	}
	if !race.Has(catalog.RaceFlagAquatic) && isWater {
		return false
	}
	return true
}

// PlaceOne creates one monster instance at c (spec §4.6 "place_one").
func PlaceOne(pool *entitypool.Pool, pop *Population, cat *catalog.Catalog, race *catalog.Race, g *grid.Grid, c grid.Coord, opts PlaceOpts, rng Roller) (*Instance, error) {
	if !cellEligible(g, cat.Features, race, c, opts.Override) {
		if g.At(c).Has(grid.FlagProt) {
			return nil, ErrCellProtected
		}
		return nil, ErrCellBlocked
	}
	if pop.AtCapacity(race) {
		return nil, ErrNoEligibleCell
	}

	var ego *catalog.Ego
	if opts.EgoID != 0 {
		ego = cat.Egos[opts.EgoID]
	}
	eff := catalog.Apply(race, ego)

	priority := entitypool.PriorityNormal
	if race.IsUnique() {
		priority = entitypool.PriorityUnique
	}
	id, err := pool.Alloc(priority, int(race.Level))
	if err != nil {
		return nil, err
	}

	hp := eff.HitDice * eff.HitSides
	if !opts.ForceMaxHP {
		hp = diceRoll(eff.HitDice, eff.HitSides, rng)
	}
	if hp < 1 {
		hp = 1
	}

	speed := eff.Speed + int16(rng.Intn(3)-1)

	inst := &Instance{
		ID:          id,
		RaceID:      race.ID,
		EgoID:       opts.EgoID,
		Pos:         c,
		HP:          hp,
		MaxHP:       hp,
		Speed:       speed,
		BaseSpeed:   eff.Speed,
		AC:          eff.AC,
		BaseAC:      eff.AC,
		Attacks:     eff.Attacks,
		OrigAttacks: eff.Attacks,
		Level:       int(race.Level),
		ClonePct:    opts.ClonePct,
		SummonDepth: opts.SummonDepth,
		Owner:       opts.Owner,
	}
	inst.Status.Sleep = 0
	if opts.Asleep {
		inst.Status.Sleep = 50 + rng.Intn(50)
	}

	cell := g.At(c)
	cell.Monster = toLink(id)
	pop.Inc(race.ID)

	return inst, nil
}

func diceRoll(n, s int, rng Roller) int {
	total := 0
	for i := 0; i < n; i++ {
		total += 1 + rng.Intn(s)
	}
	return total
}

// PlaceGroup fans a group of up to GroupMax monsters out from seed via
// breadth-first search over naked, terrain-compatible cells (spec §4.6
// "place_group").
func PlaceGroup(pool *entitypool.Pool, pop *Population, cat *catalog.Catalog, race *catalog.Race, g *grid.Grid, seed grid.Coord, count int, rng Roller) []*Instance {
	if count > GroupMax {
		count = GroupMax
	}
	var placed []*Instance
	visited := map[grid.Coord]bool{}
	queue := []grid.Coord{seed}
	for len(queue) > 0 && len(placed) < count {
		c := queue[0]
		queue = queue[1:]
		if visited[c] {
			continue
		}
		visited[c] = true

		if cellEligible(g, cat.Features, race, c, false) {
			inst, err := PlaceOne(pool, pop, cat, race, g, c, PlaceOpts{Asleep: true}, rng)
			if err == nil {
				placed = append(placed, inst)
			}
		}
		for _, n := range neighbours8(c) {
			if !g.InBounds(n) || visited[n] {
				continue
			}
			queue = append(queue, n)
		}
	}
	return placed
}

func neighbours8(c grid.Coord) []grid.Coord {
	out := make([]grid.Coord, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, grid.Coord{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return out
}

// PlaceAux places the seed monster, then conditionally spawns FRIEND /
// FRIENDS / ESCORT retinues (spec §4.6 "place_aux"). Escorts are sampled
// restricted to same-glyph, lower-or-equal-level, non-unique races.
func PlaceAux(pool *entitypool.Pool, pop *Population, kills *UniqueKillLog, races *catalog.RaceTable, cat *catalog.Catalog, race *catalog.Race, g *grid.Grid, c grid.Coord, depth int, rng Roller) ([]*Instance, error) {
	seed, err := PlaceOne(pool, pop, cat, race, g, c, PlaceOpts{}, rng)
	if err != nil {
		return nil, err
	}
	out := []*Instance{seed}

	if race.Has(catalog.RaceFlagFriends) {
		n := 1 + rng.Intn(2)
		out = append(out, PlaceGroup(pool, pop, cat, race, g, c, n, rng)...)
	}

	if race.Has(catalog.RaceFlagEscort) || race.Has(catalog.RaceFlagFriendsEscort) {
		escortCount := 2 + rng.Intn(4)
		rule := catalog.SpawnRule{Mode: catalog.RuleNone, AllowGlyph: [5]rune{race.Glyph}}
		for i := 0; i < escortCount; i++ {
			escortRace := drawOne(races, pop, kills, depth, nil, rule, nil, rng)
			if escortRace == nil || escortRace.IsUnique() || escortRace.Level > race.Level {
				continue
			}
			adj := neighbours8(c)
			target := adj[rng.Intn(len(adj))]
			if !g.InBounds(target) {
				continue
			}
			inst, err := PlaceOne(pool, pop, cat, escortRace, g, target, PlaceOpts{}, rng)
			if err == nil {
				out = append(out, inst)
			}
		}
	}

	return out, nil
}
