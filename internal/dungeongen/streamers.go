package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

const (
	streamerDensity = 5 // cells converted per step, grounded on DUN_STR_DEN
	streamerRange   = 2 // spread radius per step, grounded on DUN_STR_RNG
)

// placeStreamers is Stage 4: overlay veins of magma/quartz/water along
// random linear sweeps; magma/quartz can carry hidden treasure that
// upgrades on digging (spec §4.5 Stage 4). watery levels (Stage 1's
// independent "watery" mode) get additional sweeps of plain water carved
// the same way, grounded on generate.c's river/watery streamer passes.
func placeStreamers(g *grid.Grid, ft *catalog.FeatureTable, rng *Rand, watery bool) {
	buildStreamer(g, ft, catalog.FeatMagma, catalog.FeatMagmaTreasure, 3, rng)
	buildStreamer(g, ft, catalog.FeatMagma, catalog.FeatMagmaTreasure, 3, rng)
	buildStreamer(g, ft, catalog.FeatMagma, catalog.FeatMagmaTreasure, 3, rng)
	buildStreamer(g, ft, catalog.FeatQuartz, catalog.FeatQuartzTreasure, 2, rng)
	buildStreamer(g, ft, catalog.FeatQuartz, catalog.FeatQuartzTreasure, 2, rng)
	if watery {
		buildStreamer(g, ft, catalog.FeatWater, catalog.FeatWater, 0, rng)
		buildStreamer(g, ft, catalog.FeatWater, catalog.FeatWater, 0, rng)
		buildStreamer(g, ft, catalog.FeatWater, catalog.FeatWater, 0, rng)
	}
}

// buildStreamer walks a random compass direction from a random start,
// converting nearby granite walls to the streamer's feature, with a
// chance per cell to carry treasure (spec's "Three each of magma and
// quartz ... hidden gold" grounded on build_streamer).
func buildStreamer(g *grid.Grid, ft *catalog.FeatureTable, vein, treasureVein catalog.FeatureID, treasureChance int, rng *Rand) {
	y := rng.Spread(g.Height/2, 10)
	x := rng.Spread(g.Width/2, 15)
	dy, dx := compassDir(rng)

	for steps := 0; steps < g.Width+g.Height; steps++ {
		for i := 0; i < streamerDensity; i++ {
			ty := rng.Spread(y, streamerRange)
			tx := rng.Spread(x, streamerRange)
			c := grid.Coord{X: tx, Y: ty}
			if !g.InBounds(c) {
				continue
			}
			if g.At(c).Feature != catalog.FeatGranite {
				continue
			}
			feat := vein
			if treasureChance > 0 && rng.Intn(treasureChance) == 0 {
				feat = treasureVein
			}
			g.SetFeature(c, feat)
		}
		y += dy
		x += dx
		if !g.InBounds(grid.Coord{X: x, Y: y}) {
			break
		}
	}
}

func compassDir(rng *Rand) (dy, dx int) {
	dirs := [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	d := dirs[rng.Intn(8)]
	return d[0], d[1]
}
