package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

const (
	tunnelTurnChance = 10 // percent chance per step to change direction
	tunnelRandChance = 5  // percent chance per step to take a random step
)

// connectRooms is Stage 3: shuffle centroids, connect pairwise (last to
// first, then 0 to 1 to ...), each tunnel a randomised walk biased toward
// the target.
func connectRooms(g *grid.Grid, ft *catalog.FeatureTable, rooms []RoomCenter, rng *Rand) {
	if len(rooms) < 2 {
		return
	}
	shuffled := make([]RoomCenter, len(rooms))
	copy(shuffled, rooms)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	tunnel(g, ft, shuffled[len(shuffled)-1].Coord, shuffled[0].Coord, rng)
	for i := 0; i < len(shuffled)-1; i++ {
		tunnel(g, ft, shuffled[i].Coord, shuffled[i+1].Coord, rng)
	}
}

// tunnel carves a biased random walk from start to end, then materialises
// the queued path and processes door candidates (spec §4.5 Stage 3).
func tunnel(g *grid.Grid, ft *catalog.FeatureTable, start, end grid.Coord, rng *Rand) {
	pos := start
	var path []grid.Coord
	maxSteps := g.Width*g.Height/4 + 100

	for steps := 0; steps < maxSteps && pos != end; steps++ {
		dx, dy := sign(end.X-pos.X), sign(end.Y-pos.Y)
		if rng.Intn(100) < tunnelRandChance {
			dx, dy = rng.Intn(3)-1, rng.Intn(3)-1
		} else if rng.Intn(100) < tunnelTurnChance {
			if rng.Intn(2) == 0 {
				dy = rng.Intn(3) - 1
			} else {
				dx = rng.Intn(3) - 1
			}
		}
		if dx == 0 && dy == 0 {
			dx = sign(end.X - pos.X)
		}

		next := grid.Coord{X: clamp(pos.X+dx, 1, g.Width-2), Y: clamp(pos.Y+dy, 1, g.Height-2)}
		if !passable(g, ft, next) {
			continue
		}
		path = append(path, next)
		pos = next
	}

	// The randomised walk above is biased toward end but isn't guaranteed
	// to arrive within maxSteps (spec §8 Property 2 "every floor cell is
	// reachable from every other" demands it always does). Whatever
	// distance remains is closed with a direct elbow — straight along X,
	// then straight along Y — so a stalled walk can never leave two rooms
	// disconnected. ICKY vault interiors are skipped rather than carved
	// through, preserving their corridor immunity.
	for pos != end {
		switch {
		case pos.X != end.X:
			pos.X += sign(end.X - pos.X)
		case pos.Y != end.Y:
			pos.Y += sign(end.Y - pos.Y)
		}
		pos = grid.Coord{X: clamp(pos.X, 1, g.Width-2), Y: clamp(pos.Y, 1, g.Height-2)}
		path = append(path, pos)
	}

	for _, c := range path {
		if g.At(c).Has(grid.FlagIcky) {
			continue
		}
		g.SetFeature(c, catalog.FeatFloor)
	}
	for _, c := range path {
		if g.At(c).Has(grid.FlagIcky) {
			continue
		}
		considerDoor(g, ft, c, rng)
	}
}

// passable reports whether the corridor walk may step into c: OUTER walls
// are pierced (and sealed against adjacent piercing), INNER walls refuse
// the step, floor/dark cells are joined freely, and ICKY vault interiors
// refuse the step outright (GLOSSARY: "protected from later corridors and
// destruction").
func passable(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord) bool {
	if !g.InBounds(c) {
		return false
	}
	if g.At(c).Has(grid.FlagIcky) {
		return false
	}
	feat := ft.Get(g.At(c).Feature)
	if feat == nil {
		return true
	}
	switch g.At(c).Feature {
	case catalog.FeatOuterWall:
		sealNeighbourhood(g, c)
		return true
	case catalog.FeatInnerWall, catalog.FeatPermWall:
		return false
	default:
		return true
	}
}

// sealNeighbourhood converts the 3x3 area around a freshly pierced OUTER
// wall to SOLID-equivalent (here: inner wall) so no adjacent piercing is
// allowed, per spec §4.5 Stage 3.
func sealNeighbourhood(g *grid.Grid, c grid.Coord) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			p := grid.Coord{X: c.X + dx, Y: c.Y + dy}
			if !g.InBounds(p) || p == c {
				continue
			}
			cell := g.At(p)
			if cell.Feature == catalog.FeatOuterWall {
				cell.Feature = catalog.FeatInnerWall
			}
		}
	}
}

const (
	doorClosedChance = 40
	doorSecretChance = 15
	doorLockedChance = 10
	doorTrapMinDepth = 5
)

// considerDoor turns a corridor cell with at least two corridor (non-room
// floor) neighbours and opposing walls into a door candidate (spec §4.5
// Stage 3 "door candidates ... cells with enough corridor neighbours and
// opposing walls").
func considerDoor(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord, rng *Rand) {
	if !hasOpposingWalls(g, c) {
		return
	}
	corridors := 0
	for _, n := range []grid.Coord{{X: c.X, Y: c.Y - 1}, {X: c.X, Y: c.Y + 1}, {X: c.X - 1, Y: c.Y}, {X: c.X + 1, Y: c.Y}} {
		if g.InBounds(n) && g.At(n).Feature == catalog.FeatFloor && !g.At(n).Has(grid.FlagRoom) {
			corridors++
		}
	}
	if corridors < 2 {
		return
	}
	roll := rng.Intn(100)
	switch {
	case roll < doorClosedChance:
		g.SetFeature(c, catalog.FeatDoorClosed)
	case roll < doorClosedChance+doorSecretChance:
		g.SetFeature(c, catalog.FeatDoorSecret)
	case roll < doorClosedChance+doorSecretChance+doorLockedChance:
		g.SetFeature(c, catalog.FeatDoorLocked)
	}
}

func hasOpposingWalls(g *grid.Grid, c grid.Coord) bool {
	nWall := g.InBounds(grid.Coord{X: c.X, Y: c.Y - 1}) && isWall(g, grid.Coord{X: c.X, Y: c.Y - 1})
	sWall := g.InBounds(grid.Coord{X: c.X, Y: c.Y + 1}) && isWall(g, grid.Coord{X: c.X, Y: c.Y + 1})
	eWall := g.InBounds(grid.Coord{X: c.X + 1, Y: c.Y}) && isWall(g, grid.Coord{X: c.X + 1, Y: c.Y})
	wWall := g.InBounds(grid.Coord{X: c.X - 1, Y: c.Y}) && isWall(g, grid.Coord{X: c.X - 1, Y: c.Y})
	return (nWall && sWall) || (eWall && wWall)
}

func isWall(g *grid.Grid, c grid.Coord) bool {
	switch g.At(c).Feature {
	case catalog.FeatOuterWall, catalog.FeatInnerWall, catalog.FeatGranite, catalog.FeatPermWall:
		return true
	default:
		return false
	}
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
