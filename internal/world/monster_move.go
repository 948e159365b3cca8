package world

import (
	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/monster"
)

// MoveMonster relocates inst to dest on level, maintaining invariant 5
// (spec §8, Testable Property 5: "for every live monster M, the cell at
// M's coordinate has monster_link == M.id"): the old cell's link is
// cleared and the new cell's link is set atomically with inst.Pos.
// Returns false without mutating anything if dest is out of bounds or
// already occupied.
func (w *World) MoveMonster(level LevelID, inst *monster.Instance, dest grid.Coord) bool {
	rec, ok := w.Levels.Lookup(level)
	if !ok {
		return false
	}
	if !rec.Grid.InBounds(dest) {
		return false
	}
	if rec.Grid.At(dest).Monster.Valid() {
		return false
	}

	rec.Grid.At(inst.Pos).Monster = grid.NoEntity
	inst.Pos = dest
	rec.Grid.At(dest).Monster = toLink(inst.ID)
	return true
}
