// Package visibility computes the per-viewer visible/in_los state for
// monsters and other players, diffing it tick to tick to raise disturbance
// events on interesting transitions (spec §2 L4 "Visibility & targeting",
// §4.4). Grounded on internal/world/state.go's KnownEntities diffing (the
// reference server scans once every 2 ticks and compares against the
// player's last-known set) and its party/telepathy special cases.
package visibility

import "github.com/erasmund/depthkeep/internal/grid"

// State is what the viewer currently believes about one target: whether it
// is known to exist (visible) and whether there is a clear line of sight.
type State struct {
	Visible bool
	InLOS   bool
}

// Viewer carries the per-player inputs the visibility routine reads. Pure
// data; internal/world populates it each tick from player stats/buffs.
type Viewer struct {
	Pos             grid.Coord
	InfravisionRange int
	Blind           bool
	SeeInvisible    bool
	Telepathy       bool
	TelepathyMask   uint64 // race flags telepathy is filtered to, 0 = all
	AdminSeeAll     bool
	PartyMembers    map[uint32]struct{} // entity index set, always visible to party
	SuppressDisturb bool
}

// Target carries the per-monster (or per-player) inputs needed to resolve
// visibility against one viewer.
type Target struct {
	EntityIndex  uint32
	Pos          grid.Coord
	ColdBlooded  bool // defeats infravision
	Invisible    bool
	EmptyMind    bool   // never detected by telepathy
	WeirdMind    bool   // stochastic telepathy detection
	RaceFlags    uint64
	CellLit      bool // cell has VIEW + (GLOW or LITE)
}

// Roller supplies the stochastic weird-mind telepathy check; production
// code passes a seeded RNG, tests pass a fixed sequence.
type Roller interface{ Intn(n int) int }

// Resolve computes the State of target as seen by viewer (spec §4.4's
// bullet list, in the order the spec lists the inputs).
func Resolve(viewer Viewer, target Target, roll Roller) State {
	if viewer.AdminSeeAll {
		return State{Visible: true, InLOS: true}
	}
	if _, ok := viewer.PartyMembers[target.EntityIndex]; ok {
		return State{Visible: true, InLOS: true}
	}

	visible := false

	if target.Invisible {
		if viewer.SeeInvisible {
			visible = true
		}
	} else {
		dist := chebyshev(viewer.Pos, target.Pos)
		if !target.ColdBlooded && viewer.InfravisionRange > 0 && dist <= viewer.InfravisionRange {
			visible = true
		}
	}

	if !visible && viewer.Telepathy && !target.EmptyMind {
		masked := viewer.TelepathyMask == 0 || viewer.TelepathyMask&target.RaceFlags != 0
		if masked {
			if target.WeirdMind {
				if roll != nil && roll.Intn(2) == 0 {
					visible = true
				}
			} else {
				visible = true
			}
		}
	}

	inLOS := false
	if target.CellLit && !viewer.Blind {
		if !target.Invisible || viewer.SeeInvisible {
			inLOS = true
			visible = true
		}
	}

	return State{Visible: visible, InLOS: inLOS}
}

func chebyshev(a, b grid.Coord) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Tracker is the per-viewer diff cache (spec's KnownEntities analogue):
// one entry per entity index the viewer currently knows about.
type Tracker struct {
	known map[uint32]State
}

func NewTracker() *Tracker {
	return &Tracker{known: make(map[uint32]State)}
}

func (t *Tracker) Reset() { clear(t.known) }

// TransitionKind names which edge of the visible/in_los state changed.
type TransitionKind byte

const (
	NoTransition TransitionKind = iota
	BecameVisible
	BecameHidden
	LOSLost
)

// Update folds the freshly computed state for one entity into the tracker
// and reports what transitioned, per spec §4.4: "On transitions
// (not-visible -> visible, in_los -> not) enqueue a disturbance event."
func (t *Tracker) Update(entityIndex uint32, next State) TransitionKind {
	prev, known := t.known[entityIndex]

	if !next.Visible {
		delete(t.known, entityIndex)
		if known && prev.Visible {
			return BecameHidden
		}
		return NoTransition
	}

	t.known[entityIndex] = next
	if !known || !prev.Visible {
		return BecameVisible
	}
	if prev.InLOS && !next.InLOS {
		return LOSLost
	}
	return NoTransition
}
