package world

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/monster"
	"github.com/erasmund/depthkeep/internal/visibility"
)

// monsterVisIndex and playerVisIndex map the two distinct entity
// namespaces (monster pool index, player id) onto disjoint visibility
// tracker keys, since visibility.Tracker's key space is a flat uint32
// shared by whatever a viewer can see.
func monsterVisIndex(id uint32) uint32    { return id * 2 }
func playerVisIndex(id PlayerID) uint32   { return uint32(id)*2 + 1 }

// ViewerFor builds the visibility.Viewer for p's current stats, for
// internal/tick's per-tick visibility pass (spec §4.4).
func (w *World) ViewerFor(p *Player) visibility.Viewer {
	party := make(map[uint32]struct{})
	if p.Party != nil {
		for member := range p.Party.Members {
			if member == p.ID {
				continue
			}
			party[playerVisIndex(member)] = struct{}{}
		}
	}
	return visibility.Viewer{
		Pos:              p.Grid,
		InfravisionRange: p.InfravisionRange,
		Blind:            p.IsBlind,
		SeeInvisible:     p.SeeInvisible,
		Telepathy:        p.Telepathy,
		TelepathyMask:    p.TelepathyMask,
		AdminSeeAll:      p.SeeAll,
		PartyMembers:     party,
		SuppressDisturb:  p.SuppressDisturb,
	}
}

// MonsterTarget builds the visibility.Target for a live monster instance.
func (w *World) MonsterTarget(inst *monster.Instance, g *grid.Grid) visibility.Target {
	race := w.cat.Races.Get(inst.RaceID)
	cell := g.At(inst.Pos)
	var flags catalog.RaceFlag
	if race != nil {
		flags = race.Flags
	}
	return visibility.Target{
		EntityIndex: monsterVisIndex(inst.ID.Index()),
		Pos:         inst.Pos,
		ColdBlooded: race != nil && race.Has(catalog.RaceFlagColdBlood),
		Invisible:   race != nil && race.Has(catalog.RaceFlagInvisible),
		EmptyMind:   race != nil && race.Has(catalog.RaceFlagEmptyMind),
		WeirdMind:   race != nil && race.Has(catalog.RaceFlagWeirdMind),
		RaceFlags:   uint64(flags),
		CellLit:     cell.Has(grid.FlagView) && (cell.Has(grid.FlagGlow) || cell.Has(grid.FlagLite)),
	}
}

// PlayerTarget builds the visibility.Target for another player, for
// sighting PC-vs-PC (spec §4.4 applies the same resolve routine to both).
func (w *World) PlayerTarget(other *Player, g *grid.Grid) visibility.Target {
	cell := g.At(other.Grid)
	return visibility.Target{
		EntityIndex: playerVisIndex(other.ID),
		Pos:         other.Grid,
		Invisible:   false,
		CellLit:     cell.Has(grid.FlagView) && (cell.Has(grid.FlagGlow) || cell.Has(grid.FlagLite)),
	}
}
