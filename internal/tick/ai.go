package tick

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/core/system"
	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/levelstore"
	"github.com/erasmund/depthkeep/internal/monster"
	"github.com/erasmund/depthkeep/internal/world"
)

// PlayerEnergySystem drives the player half of spec §4.7's L7 tick
// scheduler: credit energy proportional to speed, execute one queued
// command per player once the threshold is crossed. Runs in PhaseUpdate,
// ahead of MonsterAISystem so a player's move this tick is what monster AI
// reacts to.
type PlayerEnergySystem struct {
	w *world.World
}

func NewPlayerEnergySystem(w *world.World) *PlayerEnergySystem {
	return &PlayerEnergySystem{w: w}
}

func (s *PlayerEnergySystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *PlayerEnergySystem) Update(time.Duration) {
	for _, id := range sortedPlayerIDs(s.w) {
		p, ok := s.w.Players[id]
		if !ok {
			continue
		}
		creditPlayerEnergy(s.w, p)
	}
}

func sortedPlayerIDs(w *world.World) []world.PlayerID {
	ids := make([]world.PlayerID, 0, len(w.Players))
	for id := range w.Players {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// monsterEnergyThreshold mirrors energyThreshold: a monster acts once per
// energyThreshold/Speed ticks, the same action-cost economy players spend
// queued commands against (spec §4.7 "same energy model").
const monsterEnergyThreshold = energyThreshold

// multiplyChance is the per-action-tick roll a Multiply-flagged race gets
// to spawn a copy of itself, independent of whether it also moved or
// attacked this turn (spec §4.6 "Multiplying").
const multiplyChance = 20

// MonsterAISystem drives every live monster's turn: move toward the
// nearest player on its level, melee a player found in an adjacent cell,
// and roll a multiply attempt for races that carry RaceFlagMultiply (spec
// §2 L6 "Monster subsystem", §4.6, §4.7). Grounded on the reference
// server's per-monster ai_* dispatch collapsed to the subset this game
// supports: no ranged attacks and no spellcasting monsters.
type MonsterAISystem struct {
	w   *world.World
	log *zap.Logger
	rng *rand.Rand
}

func NewMonsterAISystem(w *world.World, log *zap.Logger) *MonsterAISystem {
	return &MonsterAISystem{w: w, log: log, rng: rand.New(rand.NewSource(1))}
}

func (s *MonsterAISystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *MonsterAISystem) Update(time.Duration) {
	s.w.Levels.All(func(rec *levelstore.Record) {
		residents := playersOnLevel(s.w, rec.ID)
		if len(residents) == 0 {
			return
		}
		s.w.EachMonsterOnGrid(rec.Grid, func(c grid.Coord, inst *monster.Instance) {
			s.act(rec, inst, residents)
		})
	})
}

func playersOnLevel(w *world.World, id world.LevelID) []*world.Player {
	var out []*world.Player
	for _, p := range w.Players {
		if p.Level == id {
			out = append(out, p)
		}
	}
	return out
}

func (s *MonsterAISystem) act(rec *levelstore.Record, inst *monster.Instance, residents []*world.Player) {
	if inst.Status.Asleep() || inst.Status.Stun > 0 {
		return
	}

	speed := inst.Speed
	if speed <= 0 {
		speed = normalSpeed
	}
	inst.Energy += int(speed)
	if inst.Energy < monsterEnergyThreshold {
		return
	}
	inst.Energy -= monsterEnergyThreshold

	target := nearestPlayer(inst.Pos, residents)
	if target == nil {
		return
	}

	if chebyshev(inst.Pos, target.Grid) <= 1 {
		s.melee(rec, inst, target)
	} else {
		step := stepToward(inst.Pos, target.Grid)
		s.w.MoveMonster(rec.ID, inst, step)
	}

	s.tryMultiply(rec, inst)
}

// melee applies inst's primary attack to target, killing and respawning
// the player via world.KillPlayer if it drops their HP to zero (spec §4.7
// "monster turn: attack an adjacent player").
func (s *MonsterAISystem) melee(rec *levelstore.Record, inst *monster.Instance, target *world.Player) {
	dice, sides := 1, 4
	if inst.Attacks[0].Dice > 0 {
		dice, sides = inst.Attacks[0].Dice, inst.Attacks[0].Sides
	}
	dmg := 0
	for i := 0; i < dice; i++ {
		dmg += 1 + s.rng.Intn(sides)
	}

	target.HP -= dmg
	if target.HP > 0 {
		return
	}

	penalty := target.Exp / 10
	if eng := s.w.Engine(); eng != nil {
		penalty = eng.CalcDeathExpPenalty(int(target.CharLevel), target.Exp)
	}
	s.w.KillPlayer(target, penalty, target.Level, target.Grid)
}

// tryMultiply gives a Multiply-flagged race a further roll at copying
// itself beyond the per-turn move/attack it already made.
func (s *MonsterAISystem) tryMultiply(rec *levelstore.Record, inst *monster.Instance) {
	race := s.w.Catalog().Races.Get(inst.RaceID)
	if race == nil || !race.Has(catalog.RaceFlagMultiply) {
		return
	}
	if s.rng.Intn(multiplyChance) != 0 {
		return
	}
	child := monster.TryMultiply(s.w.Monsters, s.w.Population, s.w.Catalog(), s.w.Catalog().Races, inst, rec.Grid, s.rng)
	if child == nil {
		return
	}
	s.w.RegisterMonster(rec.ID, child)
}

func nearestPlayer(from grid.Coord, residents []*world.Player) *world.Player {
	var best *world.Player
	bestDist := -1
	for _, p := range residents {
		d := chebyshev(from, p.Grid)
		if bestDist == -1 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

func chebyshev(a, b grid.Coord) int {
	dx, dy := absInt(a.X-b.X), absInt(a.Y-b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// stepToward returns the single-cell step from c toward dest, the greedy
// chase an unintelligent monster takes rather than full pathfinding (spec
// §9 "Open Questions": pathing fidelity left to the simplest move that
// satisfies the turn-based contract).
func stepToward(c, dest grid.Coord) grid.Coord {
	dx, dy := sign(dest.X-c.X), sign(dest.Y-c.Y)
	return grid.Coord{X: c.X + dx, Y: c.Y + dy}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
