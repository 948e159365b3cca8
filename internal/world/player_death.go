package world

import (
	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/monster"
)

// KillPlayer applies a player death: an experience penalty (already
// computed by the caller, typically via the scripting collaborator's
// calc_death_exp_penalty hook per spec §9 "Luabridge"), full HP/MP
// restore, and relocation to a respawn point. Status timers are cleared
// so a death always starts the next life clean.
func (w *World) KillPlayer(p *Player, expPenalty int64, respawn LevelID, at grid.Coord) {
	p.Exp -= expPenalty
	if p.Exp < 0 {
		p.Exp = 0
	}
	p.HP = p.MaxHP
	p.MP = p.MaxMP
	*w.PlayerStatus(p.ID) = monster.Status{}

	oldLevel := p.Level
	if oldLevel == respawn {
		p.Grid = at
		return
	}
	if _, err := w.Levels.Acquire(respawn, w.dungeonTypeFor(respawn), w.worldSeed+int64(respawn.Depth)); err != nil {
		// Respawn point unavailable; leave the player on their current
		// level rather than losing them to a half-applied move.
		return
	}
	p.Level = respawn
	p.Grid = at
	w.Levels.Release(oldLevel)
}
