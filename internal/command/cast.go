package command

import (
	"errors"

	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/net/packet"
	"github.com/erasmund/depthkeep/internal/scripting"
	"github.com/erasmund/depthkeep/internal/world"
)

var ErrBadCast = errors.New("command: malformed spell cast")

// boltSpellID is the one built-in attack spell this game ships: a bolt of
// force aimed in a direction, dealing 4-10 damage to the monster in the
// adjacent cell that way. Anything beyond this single
// spell is left to the script layer (spec §9 "Luabridge"): a loaded
// pre_exec_spell_<id> hook can answer for any other id, but actually
// resolving that spell's effect is outside this core's scope.
const boltSpellID = 1

// handleCast decodes and resolves OpCast. The wire layout always starts
// with a 4-byte spell id; which further fields follow is answered by the
// scripting collaborator's PreCastRequirements query rather than hardcoded
// per spell, so an unrecognised spell id still parses correctly even
// though this core doesn't know how to apply its effect.
func handleCast(w *world.World, p *world.Player, r *packet.Reader) error {
	spellID := r.ReadD()

	req := defaultPreCastRequirements()
	if eng := w.Engine(); eng != nil {
		req = eng.PreCastRequirements(spellID)
	}

	var dx, dy int
	if req.NeedsDirection {
		dx, dy = readDelta(r)
	}
	var targetItemID int32
	if req.NeedsTargetItem {
		targetItemID = r.ReadD()
	}
	var extra int32
	if req.NeedsExtraInt {
		extra = r.ReadD()
	}
	_, _ = targetItemID, extra

	if spellID != boltSpellID {
		return nil // unknown spell: requirements validated, no built-in effect
	}
	if !req.NeedsDirection {
		return ErrBadCast
	}

	target := grid.Coord{X: p.Grid.X + dx, Y: p.Grid.Y + dy}
	inst, ok := w.MonsterAt(p.Level, target)
	if !ok {
		return ErrNoTarget
	}

	dmg := 4 + globalRNG.Intn(7)
	inst.HP -= dmg
	if inst.HP > 0 {
		return nil
	}

	killers := []world.PlayerID{p.ID}
	if p.Party != nil {
		killers = killers[:0]
		for m := range p.Party.Members {
			killers = append(killers, m)
		}
	}
	w.KillMonster(p.Level, inst, killers, globalRollerAdapter{globalRNG})
	return nil
}

func defaultPreCastRequirements() scripting.PreCastRequirements {
	return scripting.PreCastRequirements{NeedsDirection: true}
}
