package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

const (
	cavernRoughness  = 6
	cavernMinFilled  = 10 // spec §4.5: "< 10 cells, discard and retry"
	cavernMaxRetries = 5
)

// carveCavern builds a plasma-fractal cave: a height-map via iterated
// midpoint displacement, flood-filled from the centre to isolate the
// connected open region, then converted to floor/outer-wall/filler (spec
// §4.5 "Algorithmic details worth preserving", grounded on
// original_source/src/server/generate.c's generate_hmap + lake_level
// cavern path).
func carveCavern(g *grid.Grid, ft *catalog.FeatureTable, rng *Rand) {
	for attempt := 0; attempt < cavernMaxRetries; attempt++ {
		hmap := midpointDisplacement(g.Width, g.Height, cavernRoughness, rng)
		threshold := medianHeight(hmap)

		cy, cx := g.Height/2, g.Width/2
		filled := floodFill(hmap, threshold, cx, cy)
		if len(filled) < cavernMinFilled {
			continue
		}

		boundary := make(map[grid.Coord]bool)
		for c := range filled {
			for _, n := range neighbours4(c) {
				if !filled[n] {
					boundary[n] = true
				}
			}
		}

		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				c := grid.Coord{X: x, Y: y}
				switch {
				case filled[c]:
					g.SetFeature(c, catalog.FeatFloor)
				case boundary[c]:
					g.SetFeature(c, catalog.FeatOuterWall)
				default:
					g.SetFeature(c, catalog.FeatGranite)
				}
			}
		}
		return
	}
}

// midpointDisplacement produces a height map via iterated midpoint
// displacement, each pass halving the step size and the random offset
// range (the "grid size" / "roughness" parameters spec calls for).
func midpointDisplacement(width, height, roughness int, rng *Rand) [][]int {
	h := make([][]int, height)
	for y := range h {
		h[y] = make([]int, width)
	}
	step := maxInt(width, height)
	if step < 2 {
		step = 2
	}
	rangeAmt := roughness * 16

	for y := 0; y < height; y += step {
		for x := 0; x < width; x += step {
			h[y][clampIdx(x, width)] = rng.Spread(0, rangeAmt)
		}
	}

	for step > 1 {
		half := step / 2
		if half < 1 {
			break
		}
		for y := 0; y < height; y += step {
			for x := 0; x < width; x += step {
				avg := cornerAvg(h, x, y, step, width, height)
				setIfInBounds(h, x+half, y+half, width, height, avg+rng.Spread(0, rangeAmt))
				setIfInBounds(h, x+half, y, width, height, avg+rng.Spread(0, rangeAmt))
				setIfInBounds(h, x, y+half, width, height, avg+rng.Spread(0, rangeAmt))
			}
		}
		step = half
		rangeAmt /= 2
		if rangeAmt < 1 {
			rangeAmt = 1
		}
	}
	return h
}

func cornerAvg(h [][]int, x, y, step, width, height int) int {
	sum, n := 0, 0
	for _, p := range [][2]int{{x, y}, {x + step, y}, {x, y + step}, {x + step, y + step}} {
		px, py := clampIdx(p[0], width), clampIdx(p[1], height)
		sum += h[py][px]
		n++
	}
	return sum / n
}

func setIfInBounds(h [][]int, x, y, width, height, v int) {
	if x >= 0 && x < width && y >= 0 && y < height {
		h[y][x] = v
	}
}

func clampIdx(v, max int) int {
	if v >= max {
		return max - 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func medianHeight(h [][]int) int {
	sum, n := 0, 0
	for _, row := range h {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

func floodFill(h [][]int, threshold, startX, startY int) map[grid.Coord]bool {
	height := len(h)
	if height == 0 {
		return nil
	}
	width := len(h[0])
	filled := make(map[grid.Coord]bool)
	stack := []grid.Coord{{X: startX, Y: startY}}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.X < 0 || c.X >= width || c.Y < 0 || c.Y >= height {
			continue
		}
		if filled[c] {
			continue
		}
		if h[c.Y][c.X] < threshold {
			continue
		}
		filled[c] = true
		stack = append(stack, neighbours4(c)...)
	}
	return filled
}

func neighbours4(c grid.Coord) []grid.Coord {
	return []grid.Coord{
		{X: c.X - 1, Y: c.Y}, {X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y - 1}, {X: c.X, Y: c.Y + 1},
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
