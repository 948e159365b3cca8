// Package tick implements the L7 tick scheduler: per-tick energy credit
// and turn dispatch for players and monsters, status-timer countdowns,
// periodic regeneration, and the throttled housekeeping pass (spec §2 L7
// "Tick scheduler", §4.7). Grounded on internal/core/system's Phase-ordered
// Runner, the same single-threaded cooperative loop shape the reference
// server's main tick uses, generalized from its fixed per-character system
// list to the dungeon-crawler turn model spec §4.7 describes.
package tick

import (
	"github.com/erasmund/depthkeep/internal/command"
	"github.com/erasmund/depthkeep/internal/world"
)

// energyThreshold is the action cost every queued command consumes (spec
// §4.7 "credit energy proportional to speed; act once energy crosses a
// threshold"). Normal speed (110) reaches it in exactly one tick.
const energyThreshold = 100

// normalSpeed is the baseline speed value every energy credit is scaled
// against, matching the reference server's normal=110 convention recorded
// on catalog.Race.BaseSpeed.
const normalSpeed = 110

// creditPlayerEnergy advances p's energy by an amount proportional to
// their current speed, and executes at most one queued command if they've
// crossed the threshold (spec §4.7 "execute one queued input per player
// per their turn").
func creditPlayerEnergy(w *world.World, p *world.Player) {
	speed := p.Speed
	if speed <= 0 {
		speed = normalSpeed
	}
	p.Energy += int(speed)
	if p.Energy < energyThreshold {
		return
	}
	p.Energy -= energyThreshold

	if len(p.Input) == 0 {
		return
	}
	cmd := p.Input[0]
	p.Input = p.Input[1:]
	command.Execute(w, p, cmd) //nolint:errcheck // per-command failures are reported to the client by internal/net, not fatal to the tick
}
