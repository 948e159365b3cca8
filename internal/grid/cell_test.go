package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erasmund/depthkeep/internal/catalog"
)

func TestGridBounds(t *testing.T) {
	g := New(4, 3)
	assert.True(t, g.InBounds(Coord{0, 0}))
	assert.True(t, g.InBounds(Coord{3, 2}))
	assert.False(t, g.InBounds(Coord{4, 0}))
	assert.False(t, g.InBounds(Coord{0, 3}))
	assert.False(t, g.InBounds(Coord{-1, 0}))
}

func TestCellFlags(t *testing.T) {
	c := &Cell{}
	assert.False(t, c.Has(FlagRoom))
	c.Set(FlagRoom)
	c.Set(FlagGlow)
	assert.True(t, c.Has(FlagRoom))
	assert.True(t, c.Has(FlagGlow))
	c.Clear(FlagRoom)
	assert.False(t, c.Has(FlagRoom))
	assert.True(t, c.Has(FlagGlow))
}

func TestCellEmptyAndNaked(t *testing.T) {
	ft := catalog.DefaultFeatureTable()
	g := New(3, 3)
	floor := Coord{1, 1}
	g.SetFeature(floor, catalog.FeatFloor)

	require.True(t, CellEmpty(g, ft, floor))
	require.True(t, CellNaked(g, ft, floor))

	g.At(floor).Item = EntityLink{Index: 1, Gen: 1}
	assert.True(t, CellEmpty(g, ft, floor))
	assert.False(t, CellNaked(g, ft, floor))

	g.At(floor).Item = NoEntity
	g.At(floor).Monster = EntityLink{Index: 2, Gen: 1}
	assert.False(t, CellEmpty(g, ft, floor))
	assert.False(t, CellNaked(g, ft, floor))

	assert.False(t, CellEmpty(g, ft, Coord{10, 10}))
}

func TestCellFloorExcludesDoorsAndStairs(t *testing.T) {
	ft := catalog.DefaultFeatureTable()
	g := New(3, 1)
	g.SetFeature(Coord{0, 0}, catalog.FeatFloor)
	g.SetFeature(Coord{1, 0}, catalog.FeatDoorClosed)
	g.SetFeature(Coord{2, 0}, catalog.FeatStairDown)

	assert.True(t, CellFloor(g, ft, Coord{0, 0}))
	assert.False(t, CellFloor(g, ft, Coord{1, 0}))
	assert.False(t, CellFloor(g, ft, Coord{2, 0}))
}

func TestOverlayRoundTrip(t *testing.T) {
	g := New(2, 2)
	c := Coord{0, 0}
	assert.Nil(t, g.GetOverlay(c))

	g.AddOverlay(c, &Overlay{Kind: OverlayShop, ShopID: 7})
	got := g.GetOverlay(c)
	require.NotNil(t, got)
	assert.Equal(t, int32(7), got.ShopID)

	g.RemoveOverlay(c)
	assert.Nil(t, g.GetOverlay(c))
}
