package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erasmund/depthkeep/internal/grid"
)

type fixedRoll struct{ v int }

func (f fixedRoll) Intn(n int) int { return f.v % n }

func TestResolveInfravisionRange(t *testing.T) {
	viewer := Viewer{Pos: grid.Coord{X: 0, Y: 0}, InfravisionRange: 5}
	near := Target{Pos: grid.Coord{X: 3, Y: 0}}
	far := Target{Pos: grid.Coord{X: 10, Y: 0}}

	assert.True(t, Resolve(viewer, near, nil).Visible)
	assert.False(t, Resolve(viewer, far, nil).Visible)
}

func TestResolveColdBloodedDefeatsInfravision(t *testing.T) {
	viewer := Viewer{Pos: grid.Coord{X: 0, Y: 0}, InfravisionRange: 10}
	target := Target{Pos: grid.Coord{X: 1, Y: 0}, ColdBlooded: true}
	assert.False(t, Resolve(viewer, target, nil).Visible)
}

func TestResolveInvisibleRequiresSeeInvisible(t *testing.T) {
	viewer := Viewer{Pos: grid.Coord{X: 0, Y: 0}, InfravisionRange: 99}
	target := Target{Pos: grid.Coord{X: 1, Y: 0}, Invisible: true}
	assert.False(t, Resolve(viewer, target, nil).Visible)

	viewer.SeeInvisible = true
	assert.False(t, Resolve(viewer, target, nil).Visible, "still needs a detection channel, not just see-invisible")
}

func TestResolveCellLitGrantsLOS(t *testing.T) {
	viewer := Viewer{}
	target := Target{CellLit: true}
	state := Resolve(viewer, target, nil)
	assert.True(t, state.Visible)
	assert.True(t, state.InLOS)
}

func TestResolveBlindBlocksLOS(t *testing.T) {
	viewer := Viewer{Blind: true}
	target := Target{CellLit: true}
	assert.False(t, Resolve(viewer, target, nil).InLOS)
}

func TestResolveTelepathyRespectsEmptyAndWeirdMind(t *testing.T) {
	viewer := Viewer{Telepathy: true}
	empty := Target{EmptyMind: true}
	assert.False(t, Resolve(viewer, empty, nil).Visible)

	weird := Target{WeirdMind: true}
	assert.True(t, Resolve(viewer, weird, fixedRoll{0}).Visible)
	assert.False(t, Resolve(viewer, weird, fixedRoll{1}).Visible)
}

func TestResolveAdminAndPartyOverrides(t *testing.T) {
	admin := Viewer{AdminSeeAll: true}
	assert.Equal(t, State{Visible: true, InLOS: true}, Resolve(admin, Target{}, nil))

	party := Viewer{PartyMembers: map[uint32]struct{}{5: {}}}
	assert.Equal(t, State{Visible: true, InLOS: true}, Resolve(party, Target{EntityIndex: 5}, nil))
	assert.Equal(t, State{}, Resolve(party, Target{EntityIndex: 6}, nil))
}

func TestTrackerTransitions(t *testing.T) {
	tr := NewTracker()

	kind := tr.Update(1, State{Visible: true, InLOS: true})
	assert.Equal(t, BecameVisible, kind)

	kind = tr.Update(1, State{Visible: true, InLOS: true})
	assert.Equal(t, NoTransition, kind)

	kind = tr.Update(1, State{Visible: true, InLOS: false})
	assert.Equal(t, LOSLost, kind)

	kind = tr.Update(1, State{Visible: false})
	assert.Equal(t, BecameHidden, kind)

	kind = tr.Update(1, State{Visible: false})
	assert.Equal(t, NoTransition, kind)
}
