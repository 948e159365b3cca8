package command

import (
	"errors"
	"math/rand"

	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/monster"
	"github.com/erasmund/depthkeep/internal/net/packet"
	"github.com/erasmund/depthkeep/internal/world"
)

var ErrNoTarget = errors.New("command: nothing to attack there")

// globalRNG backs combat rolls, which spec §8's determinism properties
// never require to be reproducible (only generation seeding is): unlike
// internal/dungeongen's seeded Rand, per-swing damage can draw from the
// package-level source.
var globalRNG = rand.New(rand.NewSource(1))

func handleAttack(w *world.World, p *world.Player, r *packet.Reader) error {
	dx, dy := readDelta(r)
	target := grid.Coord{X: p.Grid.X + dx, Y: p.Grid.Y + dy}

	inst, ok := w.MonsterAt(p.Level, target)
	if !ok {
		return ErrNoTarget
	}

	dmg := rollAttack(inst, globalRNG)
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

// rollAttack sums one player swing's worth of damage against target,
// drawn from the defending monster's own attack-dice profile as a stand-in
// weapon roll. Simplified relative to the reference server's per-
// attack-method resolution (to-hit roll, AC comparison, per-effect
// application): this always connects and applies raw dice damage only,
// leaving status-effect attacks (poison/confuse/fear/paralyze) to
// internal/tick's status system once a target is afflicted by other means.
func rollAttack(target *monster.Instance, rng *rand.Rand) int {
	dice, sides := 1, 6
	if target.OrigAttacks[0].Dice > 0 {
		dice, sides = target.OrigAttacks[0].Dice, target.OrigAttacks[0].Sides
	}
	total := 0
	for i := 0; i < dice; i++ {
		total += 1 + rng.Intn(sides)
	}
	return total
}

type globalRollerAdapter struct{ r *rand.Rand }

func (g globalRollerAdapter) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.r.Intn(n)
}
