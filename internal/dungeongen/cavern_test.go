package dungeongen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

func TestCarveCavernProducesSomeFloor(t *testing.T) {
	ft := catalog.DefaultFeatureTable()
	g, _ := frame(ft, 60, 40, 10, NewRand(3), false, false)
	carveCavern(g, ft, NewRand(3))

	floorCount := 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.At(grid.Coord{X: x, Y: y}).Feature == catalog.FeatFloor {
				floorCount++
			}
		}
	}
	assert.Greater(t, floorCount, 0)
}

func TestCarveMazeConnectsVertices(t *testing.T) {
	ft := catalog.DefaultFeatureTable()
	g, _ := frame(ft, 21, 21, 10, NewRand(11), false, false)
	carveMaze(g, ft, NewRand(11))

	floorCount := 0
	for vy := 0; vy < 10; vy++ {
		for vx := 0; vx < 10; vx++ {
			if g.At(vertexToCell(vx, vy)).Feature == catalog.FeatFloor {
				floorCount++
			}
		}
	}
	assert.Equal(t, 100, floorCount, "maze carving should reach and mark every vertex cell as floor")
}
