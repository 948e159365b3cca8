package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

// Params are the generator's inputs: dungeon-type record, depth, and RNG
// seed (spec §4.5 "Inputs: position, dungeon-type record, RNG seed").
type Params struct {
	DungeonType *catalog.DungeonType
	Depth       int
	Seed        int64
	Width       int
	Height      int
	// Quest marks this level as a quest level: spec §4.5 Stage 6 "Quest
	// levels never place down stairs". Set by the caller (internal/world)
	// from catalog.DungeonType.QuestDepth, which is the one piece of quest
	// identity the catalog carries per dungeon handle.
	Quest bool
}

// Level is the generator's output: a populated grid plus the per-level
// flags derived during framing, the room table Stage 2 recorded (consumed
// by internal/monster for nest/pit theming, spec §4.5 Stage 2), and the
// feeling/danger rating a SUPPLEMENTED FEATURE attaches post-generation.
type Level struct {
	Grid    *grid.Grid
	Flags   catalog.LevelFlag
	Rooms   []RoomCenter
	Arena   bool // Stage 1 "arena"/"empty" roll: the whole level is one open room
	Watery  bool // Stage 1 "watery" mode: placeStreamers adds extra water streamers
	Feeling int  // per-level feeling rating, set by internal/world's populateLevel once population lands
}

const (
	noTeleportChance = 2
	noMagicChance    = 4
	noGenoChance     = 10
	noMapChance      = 2
	noMagicMapChance = 2
	noDestroyChance  = 4
	noStairChance    = 3  // spec §3 level flag NO_STAIR
	destroyOneInN    = 30 // DUN_DEST analogue: roughly 1/30 levels past depth 10
	// arenaChance is the Stage 1 "empty"/"arena" roll (original_source
	// generate.c's empty_level, EMPTY_LEVEL 1-in-15; the source's own
	// comments call the same boolean both "empty" and "arena level"
	// interchangeably, so spec.md's Stage-1 opening-paragraph "arena" roll
	// and its later six-mode list's "empty" entry are one and the same
	// roll here, not two independent ones).
	arenaChance         = 7
	mazePermawallChance = 20 // DUN_MAZE_PERMAWALL: odds a carved maze's walls are permanent
	wateryChance        = 15 // DUN_RIVER_CHANCE-order odds of a watery level past depth 5
)

// frame lays down the permanent boundary wall, fills the interior according
// to the mode flags the caller already decided (empty/arena -> floor,
// permaze -> permanent wall, otherwise granite), and rolls the per-level
// flag set — the first stage of cave_gen (spec §4.5 Stage 1 "Framing").
func frame(ft *catalog.FeatureTable, width, height, depth int, rng *Rand, arena, permaze bool) (*grid.Grid, catalog.LevelFlag) {
	g := grid.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.SetFeature(grid.Coord{X: x, Y: y}, catalog.FeatPermWall)
		}
	}

	fill := catalog.FeatGranite
	switch {
	case arena:
		fill = catalog.FeatFloor
	case permaze:
		fill = catalog.FeatPermWall
	}
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			g.SetFeature(grid.Coord{X: x, Y: y}, fill)
		}
	}
	if arena {
		markRoom(g, 1, 1, height-2, width-2, grid.FlagRoom)
	}

	var flags catalog.LevelFlag
	if rng.Magik(noTeleportChance) {
		flags |= catalog.LevelNoTeleport
	}
	if depth < 100 && rng.Magik(noMagicChance) {
		flags |= catalog.LevelNoMagic
	}
	if rng.Magik(noGenoChance) {
		flags |= catalog.LevelNoGeno
	}
	if rng.Magik(noMapChance) {
		flags |= catalog.LevelNoMap
	}
	if rng.Magik(noMagicMapChance) {
		flags |= catalog.LevelNoMagicMap
	}
	if rng.Magik(noDestroyChance) {
		flags |= catalog.LevelNoDestroy
	}
	if rng.Magik(noStairChance) {
		flags |= catalog.LevelNoStair
	}
	return g, flags
}

// Generate runs the full pipeline for one dungeon level: frame, rooms,
// corridors, streamers, optional destruction, stairs, then returns the
// level for internal/monster and internal/command to allocate into.
//
// Stage 1's six modes (spec §4.5: "empty", "cavern", "destroyed", "watery",
// "maze", "permawall-maze") combine under these exclusions: cavern and maze
// are mutually exclusive (maze is only rolled when cavern didn't land);
// permawall-maze is not a seventh independent roll but a wall-material
// sub-variant of maze itself (original_source's DUN_MAZE_PERMAWALL), so it
// can only occur alongside maze; empty/arena excludes both cavern and maze
// (an open level has no walls left to carve rooms or paths into); watery
// and destroyed are independent overlays that can combine with any of the
// above except that destroyed needs depth > 10 and is suppressed on
// empty/arena levels, quest levels and levels flagged NO_DESTROY.
func Generate(ft *catalog.FeatureTable, vaults *catalog.VaultTable, p Params) (*Level, error) {
	rng := NewRand(p.Seed)

	cavern := rng.Intn(max(p.Depth, 1)) > dunCavernThreshold && rng.Magik(dunCavernChance)
	maze := !cavern && rng.Intn(dunMazeFactor) < p.Depth-10
	permaze := maze && rng.Magik(mazePermawallChance)
	arena := !cavern && !maze && rng.Magik(arenaChance)
	watery := p.Depth > 5 && rng.Magik(wateryChance)

	g, flags := frame(ft, p.Width, p.Height, p.Depth, rng, arena, permaze)

	if cavern {
		carveCavern(g, ft, rng)
	}
	if maze {
		carveMaze(g, ft, rng)
	}

	var rooms []RoomCenter
	if !arena && !cavern && !maze {
		rooms = placeRooms(g, ft, vaults, p.Depth, rng)
		connectRooms(g, ft, rooms, rng)
	}

	placeStreamers(g, ft, rng, watery)

	destroyed := !arena && p.Depth > 10 && !p.Quest && flags&catalog.LevelNoDestroy == 0 && rng.Intn(destroyOneInN) == 0
	if destroyed {
		destroyLevel(g, ft, rng)
	}

	if flags&catalog.LevelNoStair == 0 {
		isTopLevel := p.DungeonType == nil || p.Depth <= p.DungeonType.BaseDepth
		if !p.Quest {
			placeStairs(g, ft, rng, catalog.FeatStairDown, stairCountDown(rng))
		}
		if !isTopLevel {
			placeStairs(g, ft, rng, catalog.FeatStairUp, stairCountUp(rng))
		}
	}

	return &Level{Grid: g, Flags: flags, Rooms: rooms, Arena: arena, Watery: watery}, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

const (
	dunCavernThreshold = 2
	dunCavernChance    = 7 // magik() percent chance
	dunMazeFactor      = 5
)

func stairCountDown(rng *Rand) int { return rng.RandRange(3, 4) }
func stairCountUp(rng *Rand) int   { return rng.RandRange(1, 2) }
