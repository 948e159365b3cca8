package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

const (
	destroyEpicentres = 2
	destroyRadius     = 15
)

// destroyLevel is Stage 5: drop a few epicentres, reroll every cell within
// radius between granite/quartz/magma/floor, and strip room/glow flags
// (spec §4.5 Stage 5). Monster and item contents are not tracked at this
// layer; the caller clears them from its own pools before or after calling
// this, since dungeongen has no entity-pool dependency (kept acyclic with
// internal/entitypool/internal/monster per the layer map).
func destroyLevel(g *grid.Grid, ft *catalog.FeatureTable, rng *Rand) {
	for e := 0; e < destroyEpicentres; e++ {
		cy := rng.Intn(g.Height)
		cx := rng.Intn(g.Width)
		for y := cy - destroyRadius; y <= cy+destroyRadius; y++ {
			for x := cx - destroyRadius; x <= cx+destroyRadius; x++ {
				c := grid.Coord{X: x, Y: y}
				if !g.InBounds(c) {
					continue
				}
				dist := (x-cx)*(x-cx) + (y-cy)*(y-cy)
				if dist > destroyRadius*destroyRadius {
					continue
				}
				cell := g.At(c)
				if cell.Feature == catalog.FeatPermWall || cell.Has(grid.FlagIcky) {
					continue
				}
				g.SetFeature(c, rerollDestroyedFeature(rng))
				cell.Clear(grid.FlagRoom)
				cell.Clear(grid.FlagGlow)
				cell.Monster = grid.NoEntity
				cell.Item = grid.NoEntity
			}
		}
	}
}

func rerollDestroyedFeature(rng *Rand) catalog.FeatureID {
	switch rng.Intn(4) {
	case 0:
		return catalog.FeatGranite
	case 1:
		return catalog.FeatQuartz
	case 2:
		return catalog.FeatMagma
	default:
		return catalog.FeatFloor
	}
}
