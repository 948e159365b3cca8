package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

// ShopKind is one entry in the 16-kind shop table (spec §4.5 "Town
// layout": "a 16-entry table of shop kinds").
type ShopKind struct {
	Index  int32
	Name   string
	Width  int
	Height int
}

// TownParams seeds a deterministic town tile: world seed plus tile
// coordinates give the same layout every time the tile is (re)generated
// (spec §4.5 "Consistent-per-tile RNG seed").
type TownParams struct {
	WorldSeed int64
	TileX     int
	TileY     int
	Width     int
	Height    int
	Shops     []ShopKind
}

func townSeed(p TownParams) int64 {
	return p.WorldSeed ^ (int64(p.TileX)*1_000_003 + int64(p.TileY)*97)
}

// GenerateTown lays out a town tile: buildings from the shop table (each
// door overlaid with its shop index) and houses (overlaid with an owner
// slot; apartment houses split into 4 owned sub-houses with 4 doors around
// a cross-shaped inner wall), per spec §4.5 "Town layout".
func GenerateTown(ft *catalog.FeatureTable, p TownParams) *grid.Grid {
	rng := NewRand(townSeed(p))
	g := grid.New(p.Width, p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			g.SetFeature(grid.Coord{X: x, Y: y}, catalog.FeatFloor)
		}
	}
	for y := 0; y < p.Height; y++ {
		g.SetFeature(grid.Coord{X: 0, Y: y}, catalog.FeatPermWall)
		g.SetFeature(grid.Coord{X: p.Width - 1, Y: y}, catalog.FeatPermWall)
	}
	for x := 0; x < p.Width; x++ {
		g.SetFeature(grid.Coord{X: x, Y: 0}, catalog.FeatPermWall)
		g.SetFeature(grid.Coord{X: x, Y: p.Height - 1}, catalog.FeatPermWall)
	}

	occupied := make([][]bool, p.Height)
	for i := range occupied {
		occupied[i] = make([]bool, p.Width)
	}

	for _, shop := range p.Shops {
		placeShopBuilding(g, occupied, shop, rng)
	}

	placeApartmentHouse(g, occupied, rng)

	return g
}

func placeShopBuilding(g *grid.Grid, occupied [][]bool, shop ShopKind, rng *Rand) {
	for tries := 0; tries < 40; tries++ {
		x := 2 + rng.Intn(g.Width-shop.Width-4)
		y := 2 + rng.Intn(g.Height-shop.Height-4)
		if rectOccupied(occupied, x, y, shop.Width, shop.Height) {
			continue
		}
		markOccupied(occupied, x, y, shop.Width, shop.Height)
		fillRect(g, y, x, y+shop.Height-1, x+shop.Width-1, catalog.FeatPermWall)
		fillRect(g, y+1, x+1, y+shop.Height-2, x+shop.Width-2, catalog.FeatFloor)

		doorY := y + shop.Height - 1
		doorX := x + shop.Width/2
		doorPos := grid.Coord{X: doorX, Y: doorY}
		g.SetFeature(doorPos, catalog.FeatDoorOpen)
		g.AddOverlay(doorPos, &grid.Overlay{Kind: grid.OverlayShop, ShopID: shop.Index})
		return
	}
}

// placeApartmentHouse splits a rectangle into 4 owned sub-houses and emits
// 4 doors around a cross-shaped inner wall, per spec's apartment-house
// description.
func placeApartmentHouse(g *grid.Grid, occupied [][]bool, rng *Rand) {
	width, height := 10, 10
	for tries := 0; tries < 40; tries++ {
		x := 2 + rng.Intn(g.Width-width-4)
		y := 2 + rng.Intn(g.Height-height-4)
		if rectOccupied(occupied, x, y, width, height) {
			continue
		}
		markOccupied(occupied, x, y, width, height)

		fillRect(g, y, x, y+height-1, x+width-1, catalog.FeatPermWall)
		fillRect(g, y+1, x+1, y+height-2, x+width-2, catalog.FeatFloor)
		midY, midX := y+height/2, x+width/2
		fillRect(g, y+1, midX, y+height-2, midX, catalog.FeatInnerWall)
		fillRect(g, midY, x+1, midY, x+width-2, catalog.FeatInnerWall)

		doors := []grid.Coord{
			{X: midX, Y: y}, {X: midX, Y: y + height - 1},
			{X: x, Y: midY}, {X: x + width - 1, Y: midY},
		}
		for i, d := range doors {
			g.SetFeature(d, catalog.FeatDoorClosed)
			g.AddOverlay(d, &grid.Overlay{Kind: grid.OverlayDoorOwner, OwnerID: int32(i + 1)})
		}
		return
	}
}

func rectOccupied(occupied [][]bool, x, y, w, h int) bool {
	for yy := y; yy < y+h && yy < len(occupied); yy++ {
		for xx := x; xx < x+w && xx < len(occupied[yy]); xx++ {
			if occupied[yy][xx] {
				return true
			}
		}
	}
	return false
}

func markOccupied(occupied [][]bool, x, y, w, h int) {
	for yy := y; yy < y+h && yy < len(occupied); yy++ {
		for xx := x; xx < x+w && xx < len(occupied[yy]); xx++ {
			occupied[yy][xx] = true
		}
	}
}
