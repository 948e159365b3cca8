// Package monster implements the live monster subsystem: restricted race
// sampling, group/escort placement, dynamic level-scaling, summon taxonomy,
// multiplication, and death/experience/drop propagation (spec §2 L6
// "Monster subsystem", §4.6). Grounded on original_source/src/server/
// monster2.c's get_mon_num/place_monster/monster_death pipeline, reshaped
// into small pure functions over internal/catalog's immutable tables per
// spec §9's "Polymorphism" design note.
package monster

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/core/ecs"
	"github.com/erasmund/depthkeep/internal/grid"
)

// WorldPos is the spec §3 "world position" (wx, wy, wz).
type WorldPos struct {
	WX, WY, WZ int32
}

// Status carries the countdown timers spec §3 lists on a monster instance.
type Status struct {
	Sleep     int
	Stun      int
	Fear      int
	Confusion int
}

func (s *Status) Asleep() bool { return s.Sleep > 0 }

// HeldItem is one link of a monster's held-item list (spec §3 "optional
// held-item linked list").
type HeldItem struct {
	ItemID catalog.ItemKindID
	Count  int
	Next   *HeldItem
}

// Instance is a live monster (spec §3 "Monster instance"). Per spec §9's
// "Polymorphism" note, an ego modifier is not inheritance: Race/Ego are
// collapsed into an EffectiveRace once at spawn (catalog.Apply) and the
// resulting numbers are snapshotted onto the fields below; Instance itself
// never re-reads the catalog to recompute them.
type Instance struct {
	ID     ecs.EntityID
	RaceID catalog.RaceID
	EgoID  int32

	World WorldPos
	Pos   grid.Coord

	HP, MaxHP int
	Speed     int16 // current, may be buffed/debuffed
	BaseSpeed int16 // racial, restored when a status effect expires
	AC        int16
	BaseAC    int16

	Attacks     [4]catalog.Attack
	OrigAttacks [4]catalog.Attack // restored after a status effect that alters an attack expires

	Exp          int64
	Level        int
	LevelsGained int // levels accrued since spawn; ScaleAttack's "levels gained" input

	ClosestPlayer ecs.EntityID

	// Energy accrues each tick proportional to Speed; internal/tick's AI
	// dispatch fires once it crosses the same action threshold a player's
	// queued input does (spec §4.7 "same energy model").
	Energy int

	Status Status

	// ClonePct tracks how diluted a bloodline summon/multiply chain is
	// (GLOSSARY "Clone%"); approaches but never reaches 100.
	ClonePct float64
	// SummonDepth counts links in a summon/multiply chain; a chain past
	// the configured threshold is flagged a clone and yields no exp.
	SummonDepth int

	Held  *HeldItem
	Owner ecs.EntityID // pet owner; zero value = none
}

func (m *Instance) IsPet() bool { return !m.Owner.IsZero() }

// IsClone reports whether this instance's summon/multiply lineage has
// crossed the configured threshold (spec §4.6 "Summoning": "if the
// counter exceeds a config threshold, the summon is flagged as a clone
// and yields no experience on death").
func (m *Instance) IsClone(threshold int) bool { return m.SummonDepth > threshold }
