package world

import (
	"errors"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

var ErrNoGate = errors.New("world: no gate overlay at that cell")

// StepOnto moves a player to dest within their current level and, if dest
// carries a between-gate overlay, immediately continues the step through
// to the paired cell on the same level (spec §4.5 Stage 7 "between-gates
// (pairs of teleporters — both endpoints recorded in overlay so visiting
// one teleports atomically to the other)"; Testable Property 6 "stepping
// through gate A to B and immediately back through B lands the entity on
// A's original cell, unchanged"). Between-gates never cross levels: both
// endpoints are written onto the one grid being built by vaultplace.go's
// numbered twin-cell glyphs (allocate.go's ScatterTerrain also pairs gates
// on one grid, but level generation does not call it).
func (w *World) StepOnto(p *Player, dest grid.Coord) error {
	rec, ok := w.Levels.Lookup(p.Level)
	if !ok {
		return ErrNoGate
	}
	if !rec.Grid.InBounds(dest) {
		return ErrNoGate
	}

	p.Grid = dest

	overlay := rec.Grid.GetOverlay(dest)
	if overlay == nil || overlay.Kind != grid.OverlayGateLink {
		return nil
	}
	if !rec.Grid.InBounds(overlay.GateTarget) {
		return ErrNoGate
	}

	p.Grid = overlay.GateTarget
	return nil
}

// dungeonTypeFor resolves the ruleset a target level should generate
// under. Town tiles (dungeon id 0) carry no dungeon-type ruleset.
func (w *World) dungeonTypeFor(id LevelID) *catalog.DungeonType {
	if id.DungeonID == townDungeonID {
		return nil
	}
	return w.cat.DungeonTypes.Get(id.DungeonID)
}
