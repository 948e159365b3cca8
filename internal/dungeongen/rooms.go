package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

// RoomCenter is one room's recorded centroid, used by corridor carving and
// by monster/item allocation as a candidate drop point (spec §4.5 Stage 2
// "Records the room's centroid in a room table").
type RoomCenter struct {
	grid.Coord
	Type int // 1..12, the archetype that built this room
}

const blockSize = 11 // spec §4.5 Stage 2: "Partition the grid into 11x11 blocks"

// roomMinLevel gates each archetype to a minimum depth, mirroring the
// original server's room[] table (simple rooms appear from level 1;
// vaults and pits need depth to justify their difficulty).
var roomMinLevel = [13]int{
	0: 0, // unused, archetypes are 1-indexed
	1: 1, 2: 1, 3: 1, 4: 1,
	5: 5, 6: 10,
	7: 10, 8: 10,
	9: 2, 10: 20, 11: 30, 12: 5,
}

// pickRoomType draws a depth-biased archetype from the 12-entry table,
// retrying while the roll is below the level gate for that type (spec
// §4.5 Stage 2's "depth-biased room type from the 12-entry table").
func pickRoomType(depth int, rng *Rand) int {
	for tries := 0; tries < 20; tries++ {
		t := 1 + rng.Intn(12)
		if depth >= roomMinLevel[t] {
			return t
		}
	}
	return 1
}

// placeRooms runs Stage 2: block partition, room attempts, archetype
// dispatch.
func placeRooms(g *grid.Grid, ft *catalog.FeatureTable, vaults *catalog.VaultTable, depth int, rng *Rand) []RoomCenter {
	blocksY := g.Height / blockSize
	blocksX := g.Width / blockSize
	if blocksY < 1 || blocksX < 1 {
		return nil
	}
	occupied := make([][]bool, blocksY)
	for i := range occupied {
		occupied[i] = make([]bool, blocksX)
	}

	attempts := 30 + depth/2
	var rooms []RoomCenter
	for i := 0; i < attempts; i++ {
		by := rng.Intn(blocksY)
		bx := rng.Intn(blocksX)
		if occupied[by][bx] {
			continue
		}
		typ := pickRoomType(depth, rng)
		cy := by*blockSize + blockSize/2
		cx := bx*blockSize + blockSize/2
		center := grid.Coord{X: cx, Y: cy}
		if !buildRoom(g, ft, vaults, typ, center, depth, rng) {
			continue
		}
		occupied[by][bx] = true
		rooms = append(rooms, RoomCenter{Coord: center, Type: typ})
	}
	return rooms
}

// buildRoom dispatches to the archetype constructor, mirroring room_build's
// switch over the 12 build types.
func buildRoom(g *grid.Grid, ft *catalog.FeatureTable, vaults *catalog.VaultTable, typ int, c grid.Coord, depth int, rng *Rand) bool {
	switch typ {
	case 1:
		buildSimple(g, ft, c, rng)
	case 2:
		buildOverlapping(g, ft, c, rng)
	case 3:
		buildCross(g, ft, c, rng)
	case 4:
		buildLargeWithFeature(g, ft, c, rng)
	case 5:
		buildMonsterNest(g, ft, c, rng)
	case 6:
		buildMonsterPit(g, ft, c, rng)
	case 7:
		return buildVaultRoom(g, ft, vaults, c, depth, 4, rng)
	case 8:
		return buildVaultRoom(g, ft, vaults, c, depth, 8, rng)
	case 9:
		buildCircular(g, ft, c, rng)
	case 10:
		buildFractalCave(g, ft, c, rng)
	case 11:
		return buildVaultRoom(g, ft, vaults, c, depth, 12, rng)
	case 12:
		buildCrypt(g, ft, c, rng)
	default:
		return false
	}
	return true
}

func fillRect(g *grid.Grid, y1, x1, y2, x2 int, feat catalog.FeatureID) {
	if y1 < 0 {
		y1 = 0
	}
	if x1 < 0 {
		x1 = 0
	}
	if y2 >= g.Height {
		y2 = g.Height - 1
	}
	if x2 >= g.Width {
		x2 = g.Width - 1
	}
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			g.SetFeature(grid.Coord{X: x, Y: y}, feat)
		}
	}
}

func markRoom(g *grid.Grid, y1, x1, y2, x2 int, flags ...grid.CellFlag) {
	if y1 < 0 {
		y1 = 0
	}
	if x1 < 0 {
		x1 = 0
	}
	if y2 >= g.Height {
		y2 = g.Height - 1
	}
	if x2 >= g.Width {
		x2 = g.Width - 1
	}
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			cell := g.At(grid.Coord{X: x, Y: y})
			for _, f := range flags {
				cell.Set(f)
			}
		}
	}
}

// buildSimple is archetype 1: a plain rectangular room with an outer wall
// that corridors may pierce.
func buildSimple(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord, rng *Rand) {
	hy := 2 + rng.Intn(2)
	hx := 3 + rng.Intn(4)
	y1, y2 := c.Y-hy, c.Y+hy
	x1, x2 := c.X-hx, c.X+hx
	fillRect(g, y1-1, x1-1, y2+1, x2+1, catalog.FeatOuterWall)
	fillRect(g, y1, x1, y2, x2, catalog.FeatFloor)
	markRoom(g, y1-1, x1-1, y2+1, x2+1, grid.FlagRoom)
}

// buildOverlapping is archetype 2: two overlapping rectangles, giving an
// irregular L/T-shaped room.
func buildOverlapping(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord, rng *Rand) {
	buildSimple(g, ft, c, rng)
	offset := grid.Coord{X: c.X + 2 + rng.Intn(3), Y: c.Y + rng.Intn(3) - 1}
	buildSimple(g, ft, offset, rng)
}

// buildCross is archetype 3: a cross/plus-shaped room, a horizontal bar
// crossed by a vertical bar.
func buildCross(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord, rng *Rand) {
	hy1, hx1 := 1, 5+rng.Intn(3)
	hy2, hx2 := 4+rng.Intn(2), 1
	fillRect(g, c.Y-hy1-1, c.X-hx1-1, c.Y+hy1+1, c.X+hx1+1, catalog.FeatOuterWall)
	fillRect(g, c.Y-hy2-1, c.X-hx2-1, c.Y+hy2+1, c.X+hx2+1, catalog.FeatOuterWall)
	fillRect(g, c.Y-hy1, c.X-hx1, c.Y+hy1, c.X+hx1, catalog.FeatFloor)
	fillRect(g, c.Y-hy2, c.X-hx2, c.Y+hy2, c.X+hx2, catalog.FeatFloor)
	markRoom(g, c.Y-hy2-1, c.X-hx1-1, c.Y+hy2+1, c.X+hx1+1, grid.FlagRoom)
}

// buildLargeWithFeature is archetype 4: a large room with an inner feature
// (a pillar cluster or a sunken pool of water), INNER wall around the
// feature so corridors cannot pierce it directly.
func buildLargeWithFeature(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord, rng *Rand) {
	hy, hx := 4, 9
	y1, y2 := c.Y-hy, c.Y+hy
	x1, x2 := c.X-hx, c.X+hx
	fillRect(g, y1-1, x1-1, y2+1, x2+1, catalog.FeatOuterWall)
	fillRect(g, y1, x1, y2, x2, catalog.FeatFloor)
	markRoom(g, y1-1, x1-1, y2+1, x2+1, grid.FlagRoom)

	feat := catalog.FeatInnerWall
	if rng.Magik(40) {
		feat = catalog.FeatWater
	}
	fillRect(g, c.Y-1, c.X-2, c.Y+1, c.X+2, feat)
}

// buildMonsterNest is archetype 5: a single chamber intended for a
// monster-theme population pass (spec §4.5 "themed rooms"); the room
// itself is unremarkable, the theme is applied by internal/monster against
// this room's recorded centroid.
func buildMonsterNest(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord, rng *Rand) {
	buildSimple(g, ft, c, rng)
	markRoom(g, c.Y-3, c.X-5, c.Y+3, c.X+5, grid.FlagIcky)
}

// buildMonsterPit is archetype 6: like the nest but larger and darker, for
// a denser single-theme population.
func buildMonsterPit(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord, rng *Rand) {
	hy, hx := 3, 8
	fillRect(g, c.Y-hy-1, c.X-hx-1, c.Y+hy+1, c.X+hx+1, catalog.FeatOuterWall)
	fillRect(g, c.Y-hy, c.X-hx, c.Y+hy, c.X+hx, catalog.FeatFloor)
	markRoom(g, c.Y-hy-1, c.X-hx-1, c.Y+hy+1, c.X+hx+1, grid.FlagRoom, grid.FlagIcky)
}

// buildCircular is archetype 9: an approximately circular room carved with
// a radius test against a rectangular frame.
func buildCircular(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord, rng *Rand) {
	radius := 3 + rng.Intn(3)
	fillRect(g, c.Y-radius-1, c.X-radius-1, c.Y+radius+1, c.X+radius+1, catalog.FeatOuterWall)
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				g.SetFeature(grid.Coord{X: c.X + x, Y: c.Y + y}, catalog.FeatFloor)
			}
		}
	}
	markRoom(g, c.Y-radius-1, c.X-radius-1, c.Y+radius+1, c.X+radius+1, grid.FlagRoom)
}

// buildCrypt is archetype 12: a small, heavily walled chamber themed for
// undead population, INNER-walled on all sides except door candidates left
// for the corridor pass to discover.
func buildCrypt(g *grid.Grid, ft *catalog.FeatureTable, c grid.Coord, rng *Rand) {
	hy, hx := 2, 3
	fillRect(g, c.Y-hy-1, c.X-hx-1, c.Y+hy+1, c.X+hx+1, catalog.FeatInnerWall)
	fillRect(g, c.Y-hy, c.X-hx, c.Y+hy, c.X+hx, catalog.FeatFloor)
	markRoom(g, c.Y-hy-1, c.X-hx-1, c.Y+hy+1, c.X+hx+1, grid.FlagRoom, grid.FlagIcky)
}
