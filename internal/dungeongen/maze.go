package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

const mazeRandomizeChance = 33 // percent, spec: "33% chance at each node"

// carveMaze carves a perfect maze via recursive spanning-tree carving over
// half-scale vertices (spec §4.5 "Maze rooms use recursive spanning-tree
// carving over half-scale vertices"), grounded on
// original_source/src/server/generate.c's dig()/maze_row walk.
func carveMaze(g *grid.Grid, ft *catalog.FeatureTable, rng *Rand) {
	vw, vh := (g.Width-1)/2, (g.Height-1)/2
	if vw < 1 || vh < 1 {
		return
	}
	visited := make([][]bool, vh)
	for i := range visited {
		visited[i] = make([]bool, vw)
	}

	type vertex struct{ vx, vy int }
	dirs := [4]vertex{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	var stack []vertex
	start := vertex{vx: rng.Intn(vw), vy: rng.Intn(vh)}
	visited[start.vy][start.vx] = true
	stamp(g, start.vx, start.vy)
	stack = append(stack, start)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		order := dirs
		if rng.Intn(100) < mazeRandomizeChance {
			for i := len(order) - 1; i > 0; i-- {
				j := rng.Intn(i + 1)
				order[i], order[j] = order[j], order[i]
			}
		}

		advanced := false
		for _, d := range order {
			nv := vertex{vx: cur.vx + d.vx, vy: cur.vy + d.vy}
			if nv.vx < 0 || nv.vx >= vw || nv.vy < 0 || nv.vy >= vh {
				continue
			}
			if visited[nv.vy][nv.vx] {
				continue
			}
			visited[nv.vy][nv.vx] = true
			carveEdge(g, cur.vx, cur.vy, nv.vx, nv.vy)
			stamp(g, nv.vx, nv.vy)
			stack = append(stack, nv)
			advanced = true
			break
		}
		if !advanced {
			stack = stack[:len(stack)-1]
		}
	}
	_ = ft
}

func vertexToCell(vx, vy int) grid.Coord {
	return grid.Coord{X: 1 + vx*2, Y: 1 + vy*2}
}

func stamp(g *grid.Grid, vx, vy int) {
	c := vertexToCell(vx, vy)
	if g.InBounds(c) {
		g.SetFeature(c, catalog.FeatFloor)
	}
}

func carveEdge(g *grid.Grid, ax, ay, bx, by int) {
	a := vertexToCell(ax, ay)
	b := vertexToCell(bx, by)
	mid := grid.Coord{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	if g.InBounds(mid) {
		g.SetFeature(mid, catalog.FeatFloor)
	}
}
