package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

// placeStairs is Stage 6: place stairs near walls, count scaled to floor
// size. Each successfully placed coordinate is the stair-landing point
// for arrival placement in the opposite direction (spec §4.5 Stage 6).
func placeStairs(g *grid.Grid, ft *catalog.FeatureTable, rng *Rand, feat catalog.FeatureID, count int) []grid.Coord {
	var placed []grid.Coord
	for i := 0; i < count; i++ {
		c, ok := findStairSpot(g, ft, rng)
		if !ok {
			continue
		}
		g.SetFeature(c, feat)
		placed = append(placed, c)
	}
	return placed
}

// findStairSpot looks for a walkable cell adjacent to a wall, matching the
// reference server's "near walls" placement bias, falling back to any
// walkable cell after enough failed tries.
func findStairSpot(g *grid.Grid, ft *catalog.FeatureTable, rng *Rand) (grid.Coord, bool) {
	for tries := 0; tries < 200; tries++ {
		c := grid.Coord{X: 1 + rng.Intn(g.Width-2), Y: 1 + rng.Intn(g.Height-2)}
		if !grid.CellNaked(g, ft, c) {
			continue
		}
		if tries < 150 && !adjacentToWall(g, c) {
			continue
		}
		return c, true
	}
	return grid.Coord{}, false
}

func adjacentToWall(g *grid.Grid, c grid.Coord) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			p := grid.Coord{X: c.X + dx, Y: c.Y + dy}
			if g.InBounds(p) && isWall(g, p) {
				return true
			}
		}
	}
	return false
}
