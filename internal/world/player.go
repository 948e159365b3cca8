package world

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/core/ecs"
	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/levelstore"
	"github.com/erasmund/depthkeep/internal/visibility"
)

// LevelID identifies a resident level instance; re-exported so callers
// outside internal/levelstore don't need a second import for it.
type LevelID = levelstore.LevelID

// WorldPos is the spec §3 "world position" (wx, wy, wz): dungeon id, depth,
// and the position's owning coordinate space. Kept distinct from grid.Coord,
// which is a within-level cell position.
type WorldPos struct {
	WX, WY, WZ int32
}

// PlayerID identifies a player character; stable across reconnects (it is
// the character's persisted row id), unlike the transient session id.
type PlayerID int32

// Party is the minimal grouping spec §3/§4.4 needs: party members are
// always visible to each other regardless of line-of-sight or infravision.
type Party struct {
	ID      int32
	Leader  PlayerID
	Members map[PlayerID]struct{}
}

// Command is one queued client input, drained by internal/tick during the
// player's turn on their floor (spec §2 "Command & query surface", §4.7
// "execute one queued input").
type Command struct {
	Opcode byte
	Args   []byte
}

// Player is the live, in-memory state of a connected character (spec §3
// "Player instance"). Account/session plumbing lives in internal/net and
// internal/persist; this struct holds only what the world-state engine,
// generator, and monster subsystem read or mutate each tick.
type Player struct {
	ID      PlayerID
	Name    string
	Session uint64 // internal/net session id, 0 if currently offline but still in-world (logout grace)

	// AccountName is carried only so a disconnect or autosave can write
	// back through internal/persist's CharacterRepo without the caller
	// threading session state alongside every *Player it touches.
	AccountName string

	Pos   WorldPos
	Grid  grid.Coord
	Level LevelID

	HP, MaxHP int
	MP, MaxMP int
	AC        int16
	CharLevel int16
	Exp       int64

	Speed  int16
	Energy int // spec §4.7 "credit energy proportional to speed"

	// Sight inputs consumed by internal/visibility.Resolve each tick.
	InfravisionRange int
	IsBlind          bool
	SeeInvisible     bool
	Telepathy        bool
	TelepathyMask    uint64
	SeeAll           bool // admin wizard-mode, spec §6 "Administrative surface"
	SuppressDisturb  bool

	Skills map[int32]int16 // skill id -> rank

	Inventory []*ItemInstance
	Gold      int64

	// KnownUniques tracks which unique races this player has personally
	// killed, consulted by monster.UniqueKillLog's per-player exclusion
	// rule (spec §4.6 "reject uniques already killed by all players
	// present", E2E-3).
	KnownUniques map[catalog.RaceID]bool

	Party *Party
	Guild int32

	Input []Command

	Vis *visibility.Tracker

	// AdminLevel gates the administrative surface (spec §6 "Administrative
	// surface"): the summon-override and shutdown commands.
	AdminLevel int16

	// StaticPin records the deep-level logout static-floor rule (spec §3
	// "Lifecycle", §4.2 pin/unpin): RemovePlayer sets it to the level it
	// keeps pinned past this player's disconnect.
	StaticPin LevelID
}

// toLink mirrors monster.toLink: entitypool generation 0 means "first
// occupant of this slot", which must not collide with grid.NoEntity's zero
// value, so every stored link is generation+1.
func toLink(id ecs.EntityID) grid.EntityLink {
	return grid.EntityLink{Index: id.Index(), Gen: id.Generation() + 1}
}
