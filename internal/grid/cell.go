// Package grid implements the per-level cell array: terrain, per-cell
// flags, and the sparse overlay list for cells that carry extra state
// (spec §2 L1 "Cell grid & overlay", §4.1).
package grid

import "github.com/erasmund/depthkeep/internal/catalog"

// CellFlag bits track transient, per-cell state layered on top of the
// terrain feature (spec §3 "Cell").
type CellFlag uint16

const (
	FlagRoom CellFlag = 1 << iota
	FlagIcky                // vault interior: protected from corridors/destruction
	FlagGlow                // permanently lit regardless of torch radius
	FlagMark                // player has seen this cell at least once
	FlagView                // currently within a viewer's line of sight
	FlagLite                // currently lit (torch radius or FlagGlow)
	FlagNoPK                // PvP-safe cell (town, sanctuary)
	FlagProt                // protected from monster/terrain destruction
)

// EntityLink is a weak reference into an entity pool: generation plus
// index, matching the core ECS's EntityID shape so a cell can point at a
// monster or item instance without importing entitypool (grid sits below
// it in the layer map).
type EntityLink struct {
	Index uint32
	Gen    uint32
}

// Valid reports whether the link points at anything.
func (l EntityLink) Valid() bool { return l.Gen != 0 }

var NoEntity = EntityLink{}

// Cell is one square of a level's grid.
type Cell struct {
	Feature catalog.FeatureID
	Flags   CellFlag
	Monster EntityLink // occupying monster/player, if any
	Item    EntityLink // head of the ground-item stack, if any
}

func (c *Cell) Has(flag CellFlag) bool { return c.Flags&flag != 0 }
func (c *Cell) Set(flag CellFlag)      { c.Flags |= flag }
func (c *Cell) Clear(flag CellFlag)    { c.Flags &^= flag }

// OverlayKind distinguishes the tagged union stored in Overlay.
type OverlayKind byte

const (
	OverlayNone OverlayKind = iota
	OverlayShop
	OverlayGateLink  // between-gate pairing, spec §4.1 "between gates"
	OverlayFountain
	OverlayDoorOwner // a door keyed to a specific player/party
)

// Overlay holds the rarely-populated extra state for one cell. The grid
// keeps these out of Cell itself (one per level, not one per cell) since
// the vast majority of cells never need one; this mirrors the reference
// server's decision to keep GroundItem lists external to the base map
// array rather than inline in every cell.
type Overlay struct {
	Kind       OverlayKind
	ShopID     int32
	GateTarget Coord // paired gate's coordinate, always on the same level
	FountainID int32
	OwnerID    int32
}

// Coord is an (x, y) grid position.
type Coord struct {
	X, Y int
}

// Grid is one level's cell array plus its sparse overlay map.
type Grid struct {
	Width, Height int
	cells         []Cell
	overlays      map[Coord]*Overlay
}

func New(width, height int) *Grid {
	return &Grid{
		Width: width, Height: height,
		cells:    make([]Cell, width*height),
		overlays: make(map[Coord]*Overlay),
	}
}

func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

func (g *Grid) index(c Coord) int { return c.Y*g.Width + c.X }

// At returns the cell at c. Panics if c is out of bounds; callers that
// cannot guarantee bounds should check InBounds first.
func (g *Grid) At(c Coord) *Cell { return &g.cells[g.index(c)] }

func (g *Grid) SetFeature(c Coord, id catalog.FeatureID) {
	g.cells[g.index(c)].Feature = id
}

func (g *Grid) AddOverlay(c Coord, o *Overlay) {
	g.overlays[c] = o
}

func (g *Grid) GetOverlay(c Coord) *Overlay {
	return g.overlays[c]
}

func (g *Grid) RemoveOverlay(c Coord) {
	delete(g.overlays, c)
}

// CellEmpty reports whether a cell is walkable terrain with no occupant,
// matching the reference generator's cave_empty_bold predicate family.
func CellEmpty(g *Grid, ft *catalog.FeatureTable, c Coord) bool {
	if !g.InBounds(c) {
		return false
	}
	cell := g.At(c)
	if cell.Monster.Valid() {
		return false
	}
	feat := ft.Get(cell.Feature)
	return feat != nil && feat.Has(catalog.FeatWalkable)
}

// CellNaked is CellEmpty plus no item on the floor, the stricter
// condition used when placing a new monster or vault contents.
func CellNaked(g *Grid, ft *catalog.FeatureTable, c Coord) bool {
	if !CellEmpty(g, ft, c) {
		return false
	}
	return !g.At(c).Item.Valid()
}

// CellFloor reports whether the terrain at c is plain walkable floor
// (not a door, not stairs), used by corridor carving to avoid routing
// through special terrain.
func CellFloor(g *Grid, ft *catalog.FeatureTable, c Coord) bool {
	if !g.InBounds(c) {
		return false
	}
	feat := ft.Get(g.At(c).Feature)
	if feat == nil {
		return false
	}
	return feat.Has(catalog.FeatWalkable) && !feat.Has(catalog.FeatDoor) &&
		!feat.Has(catalog.FeatStairsUp) && !feat.Has(catalog.FeatStairsDown)
}
