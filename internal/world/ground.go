package world

import (
	"github.com/erasmund/depthkeep/internal/core/ecs"
	"github.com/erasmund/depthkeep/internal/grid"
)

// TakeGroundItem removes and returns the first item in the ground-item
// chain at c, if any (spec §4.1 ground-item list, §3 "pickup").
func (w *World) TakeGroundItem(level LevelID, c grid.Coord) (*ItemInstance, bool) {
	chain := w.groundItems[level]
	if chain == nil || len(chain[c]) == 0 {
		return nil, false
	}
	g := w.gridFor(level)
	if g == nil {
		return nil, false
	}
	id := chain[c][0]
	item := w.itemData[id]
	removeFromChain(c, id, chain, g)
	return item, item != nil
}

// PlaceGroundItem drops an already-allocated item instance onto the
// ground at c on level (spec §4.1 "drop").
func (w *World) PlaceGroundItem(level LevelID, c grid.Coord, item *ItemInstance) {
	g := w.gridFor(level)
	if g == nil {
		return
	}
	item.Level = level
	item.Pos = c

	chain := w.groundItems[level]
	if chain == nil {
		chain = make(map[grid.Coord][]ecs.EntityID)
		w.groundItems[level] = chain
	}
	dropOnto(g, c, item.ID, chain)
}

func (w *World) gridFor(level LevelID) *grid.Grid {
	rec, ok := w.Levels.Lookup(level)
	if !ok {
		return nil
	}
	return rec.Grid
}
