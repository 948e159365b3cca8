package levelstore

import "github.com/erasmund/depthkeep/internal/grid"

// AOIGrid is a cell-based area-of-interest index over one level's entities,
// sized so a 3x3 neighbourhood fully covers the visibility range (spec §2
// L4 "Visibility & targeting"). Kept separate from grid.Grid itself since
// not every caller needs spatial lookup by entity id.
const cellSize = 20

type cellKey struct{ cx, cy int }

func toCellCoord(v int) int {
	if v < 0 {
		return (v - cellSize + 1) / cellSize
	}
	return v / cellSize
}

type AOIGrid struct {
	cells map[cellKey]map[uint32]struct{}
	pos   map[uint32]grid.Coord
}

func NewAOIGrid() *AOIGrid {
	return &AOIGrid{
		cells: make(map[cellKey]map[uint32]struct{}),
		pos:   make(map[uint32]grid.Coord),
	}
}

func (g *AOIGrid) key(c grid.Coord) cellKey {
	return cellKey{cx: toCellCoord(c.X), cy: toCellCoord(c.Y)}
}

func (g *AOIGrid) Add(entityIndex uint32, c grid.Coord) {
	k := g.key(c)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[uint32]struct{})
		g.cells[k] = cell
	}
	cell[entityIndex] = struct{}{}
	g.pos[entityIndex] = c
}

func (g *AOIGrid) Remove(entityIndex uint32) {
	c, ok := g.pos[entityIndex]
	if !ok {
		return
	}
	k := g.key(c)
	if cell := g.cells[k]; cell != nil {
		delete(cell, entityIndex)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
	delete(g.pos, entityIndex)
}

func (g *AOIGrid) Move(entityIndex uint32, to grid.Coord) {
	from, ok := g.pos[entityIndex]
	if ok && g.key(from) == g.key(to) {
		g.pos[entityIndex] = to
		return
	}
	if ok {
		g.Remove(entityIndex)
	}
	g.Add(entityIndex, to)
}

// Nearby returns every entity index in the 3x3 cell neighbourhood around c.
// Callers apply exact-distance filtering on top, same two-stage pattern as
// the reference server's GetNearby + caller-side range check.
func (g *AOIGrid) Nearby(c grid.Coord) []uint32 {
	cx, cy := toCellCoord(c.X), toCellCoord(c.Y)
	var out []uint32
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			k := cellKey{cx: cx + dx, cy: cy + dy}
			for idx := range g.cells[k] {
				out = append(out, idx)
			}
		}
	}
	return out
}
