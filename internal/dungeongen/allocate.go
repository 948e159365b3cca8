package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

// AllocationCounts is Stage 7+8's scatter quantities, each normal(mean,3)
// scaled by the level's size ratio (spec §4.5 Stages 7-8).
type AllocationCounts struct {
	Rubble      int
	Traps       int
	Gold        int
	Objects     int
	BetweenGates int
	Fountains   int
	Monsters    int // (BASE + randint(8) + depth/3) * size_ratio
}

const monsterBase = 4

// PlanAllocation computes Stage 7/8's scatter counts for a level of the
// given size ratio (g.Width*g.Height against the reference full size) and
// depth.
func PlanAllocation(sizeRatio float64, depth int, rng *Rand) AllocationCounts {
	scale := func(mean int) int {
		v := int(float64(normalish(mean, 3, rng)) * sizeRatio)
		if v < 0 {
			v = 0
		}
		return v
	}
	return AllocationCounts{
		Rubble:       scale(6),
		Traps:        scale(4),
		Gold:         scale(5),
		Objects:      scale(6),
		BetweenGates: scale(1),
		Fountains:    scale(1),
		Monsters:     int(float64(monsterBase+rng.Intn(8)+depth/3) * sizeRatio),
	}
}

// normalish approximates a normal(mean, stddev) draw as the original
// server's normal distribution table does, via a small sum of uniforms
// (an Irwin-Hall approximation), good enough for scatter counts.
func normalish(mean, stddev int, rng *Rand) int {
	sum := 0
	const samples = 4
	for i := 0; i < samples; i++ {
		sum += rng.Intn(2*stddev + 1)
	}
	avg := sum / samples
	return mean + avg - stddev
}

// ScatterTerrain places rubble, between-gate pairs and fountains directly
// onto naked floor cells; it places no traps, gold, regular objects or
// monsters. Neither it nor PlanAllocation is called by Generate or by
// internal/world.
func ScatterTerrain(g *grid.Grid, ft *catalog.FeatureTable, counts AllocationCounts, rng *Rand) {
	for i := 0; i < counts.Rubble; i++ {
		if c, ok := randomNaked(g, ft, rng); ok {
			g.SetFeature(c, catalog.FeatRubble)
		}
	}

	gatesPlaced := 0
	var firstGate grid.Coord
	for i := 0; i < counts.BetweenGates; i++ {
		c1, ok1 := randomNaked(g, ft, rng)
		c2, ok2 := randomNaked(g, ft, rng)
		if !ok1 || !ok2 {
			continue
		}
		g.AddOverlay(c1, &grid.Overlay{Kind: grid.OverlayGateLink, GateTarget: c2})
		g.AddOverlay(c2, &grid.Overlay{Kind: grid.OverlayGateLink, GateTarget: c1})
		gatesPlaced++
		firstGate = c1
	}
	_ = firstGate

	for i := 0; i < counts.Fountains; i++ {
		if c, ok := randomNaked(g, ft, rng); ok {
			g.SetFeature(c, catalog.FeatWater)
			g.AddOverlay(c, &grid.Overlay{Kind: grid.OverlayFountain, FountainID: int32(i + 1)})
		}
	}
}

func randomNaked(g *grid.Grid, ft *catalog.FeatureTable, rng *Rand) (grid.Coord, bool) {
	for tries := 0; tries < 100; tries++ {
		c := grid.Coord{X: rng.Intn(g.Width), Y: rng.Intn(g.Height)}
		if grid.CellNaked(g, ft, c) {
			return c, true
		}
	}
	return grid.Coord{}, false
}
