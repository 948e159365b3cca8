package levelstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

func testFactory(calls *int) Factory {
	return func(id LevelID, dtype *catalog.DungeonType, seed int64) (*grid.Grid, error) {
		*calls++
		return grid.New(10, 10), nil
	}
}

func TestAcquireLazyCreatesOnce(t *testing.T) {
	var calls int
	s := NewStore(testFactory(&calls))
	id := LevelID{DungeonID: 1, Depth: 3}

	r1, err := s.Acquire(id, nil, 42)
	require.NoError(t, err)
	r2, err := s.Acquire(id, nil, 42)
	require.NoError(t, err)

	assert.Same(t, r1, r2)
	assert.Equal(t, 1, calls)
	assert.True(t, r1.Pinned())
}

func TestSweepSkipsPinnedAndFreshLevels(t *testing.T) {
	var calls int
	s := NewStore(testFactory(&calls))
	id := LevelID{DungeonID: 1, Depth: 1}

	r, err := s.Acquire(id, nil, 1)
	require.NoError(t, err)

	freed := s.Sweep(0)
	assert.Empty(t, freed, "pinned level must not be swept")

	r.Unpin()
	r.lastActive = time.Now().Add(-time.Hour)
	freed = s.Sweep(time.Minute)
	assert.Equal(t, []LevelID{id}, freed)
	assert.Equal(t, 0, s.Count())
}

func TestAOIGridNearbyNeighbourhood(t *testing.T) {
	g := NewAOIGrid()
	g.Add(1, grid.Coord{X: 0, Y: 0})
	g.Add(2, grid.Coord{X: cellSize, Y: 0})    // adjacent cell
	g.Add(3, grid.Coord{X: cellSize * 5, Y: 0}) // far cell

	near := g.Nearby(grid.Coord{X: 0, Y: 0})
	assert.Contains(t, near, uint32(1))
	assert.Contains(t, near, uint32(2))
	assert.NotContains(t, near, uint32(3))
}

func TestAOIGridMoveAcrossCells(t *testing.T) {
	g := NewAOIGrid()
	g.Add(1, grid.Coord{X: 0, Y: 0})
	g.Move(1, grid.Coord{X: cellSize * 5, Y: 0})

	assert.NotContains(t, g.Nearby(grid.Coord{X: 0, Y: 0}), uint32(1))
	assert.Contains(t, g.Nearby(grid.Coord{X: cellSize * 5, Y: 0}), uint32(1))
}
