// Package world assembles the per-server game state: the resident level
// store, the monster and item entity pools, and the set of connected
// players, and wires the level factory to internal/dungeongen so a level
// is generated and populated the first time anything steps onto it (spec
// §2 "World assembly", §4.1 "Lazy registration").
package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/config"
	"github.com/erasmund/depthkeep/internal/core/ecs"
	"github.com/erasmund/depthkeep/internal/dungeongen"
	"github.com/erasmund/depthkeep/internal/entitypool"
	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/levelstore"
	"github.com/erasmund/depthkeep/internal/monster"
	"github.com/erasmund/depthkeep/internal/scripting"
)

// defaultLevelWidth/Height size every generated dungeon level; town tiles
// are sized independently by their own TownParams.
const (
	defaultLevelWidth  = 66
	defaultLevelHeight = 22
)

// World is the single-threaded owner of every piece of live game state.
// Every method on it is called from the tick goroutine only (spec §5
// "Concurrency & resource model": the game loop is single-threaded
// cooperative; net I/O hands commands across a channel rather than
// touching World directly).
type World struct {
	cfg *config.Config
	cat *catalog.Catalog
	log *zap.Logger

	Levels   *levelstore.Store
	Monsters *entitypool.Pool
	Items    *entitypool.Pool

	monsterData  map[ecs.EntityID]*monster.Instance
	monsterLevel map[ecs.EntityID]LevelID
	itemData     map[ecs.EntityID]*ItemInstance
	groundItems  map[LevelID]map[grid.Coord][]ecs.EntityID

	Population *monster.Population
	Kills      *monster.UniqueKillLog

	Players   map[PlayerID]*Player
	bySession map[uint64]PlayerID

	// statusRegistry/statusStore extend spec §4.7's "periodic effects
	// (regeneration, poison tick, fear countdown)" to players: monster
	// instances carry their status counters inline (monster.Status on
	// monster.Instance), but Player has no equivalent field, so the same
	// monster.Status shape is kept in an ecs.PtrComponentStore keyed by a
	// synthetic EntityID derived from PlayerID. statusRegistry exists so
	// disconnecting a player (RemovePlayer) clears every component store
	// for them through one call instead of one delete per store as more
	// player-scoped component kinds are added later.
	statusRegistry *ecs.Registry
	statusStore    *ecs.PtrComponentStore[monster.Status]

	worldSeed int64

	shutdown bool

	// engine is the Luabridge collaborator (spec §9): optional, set once by
	// the caller after construction once scripts have loaded. Combat and
	// death handling fall back to a built-in default when nil, so a world
	// can run (e.g. in tests) without ever loading Lua at all.
	engine *scripting.Engine
}

// SetEngine attaches the spell/death-penalty scripting collaborator.
func (w *World) SetEngine(e *scripting.Engine) { w.engine = e }

// Engine returns the attached scripting collaborator, or nil if none was set.
func (w *World) Engine() *scripting.Engine { return w.engine }

// NewWorld builds an empty world and wires the level factory to the
// procedural generator: dungeon levels run the full dungeongen.Generate
// pipeline plus a population pass, town tiles run GenerateTown (spec
// §4.5 "Town layout", Testable Property 1 "same (tile, seed) always
// regenerates identical town layout").
func NewWorld(cat *catalog.Catalog, cfg *config.Config, log *zap.Logger) *World {
	statusStore := ecs.NewPtrComponentStore[monster.Status]()
	statusRegistry := ecs.NewRegistry()
	statusRegistry.Register(statusStore)

	w := &World{
		cfg:            cfg,
		cat:            cat,
		log:            log,
		Monsters:       entitypool.New(entitypool.KindMonster, monsterPoolCapacity),
		Items:          entitypool.New(entitypool.KindItem, itemPoolCapacity),
		monsterData:    make(map[ecs.EntityID]*monster.Instance),
		monsterLevel:   make(map[ecs.EntityID]LevelID),
		itemData:       make(map[ecs.EntityID]*ItemInstance),
		groundItems:    make(map[LevelID]map[grid.Coord][]ecs.EntityID),
		Population:     monster.NewPopulation(),
		Kills:          monster.NewUniqueKillLog(),
		Players:        make(map[PlayerID]*Player),
		bySession:      make(map[uint64]PlayerID),
		statusRegistry: statusRegistry,
		statusStore:    statusStore,
		worldSeed:      cfg.Server.Seed,
	}
	w.Levels = levelstore.NewStore(w.generateLevel)
	return w
}

// playerStatusKey maps a PlayerID onto the synthetic EntityID namespace
// w.statusStore is keyed by. Generation is always 0: this store is never
// used with entitypool's alive/stale-reference checks, only as a typed map.
func playerStatusKey(id PlayerID) ecs.EntityID { return ecs.NewEntityID(uint32(id), 0) }

// PlayerStatus returns p's status-timer component, creating an all-zero
// one on first access (spec §4.7 "periodic effects" extended to players;
// see the statusStore field doc on World).
func (w *World) PlayerStatus(id PlayerID) *monster.Status {
	if s, ok := w.statusStore.Get(playerStatusKey(id)); ok {
		return s
	}
	s := &monster.Status{}
	w.statusStore.Set(playerStatusKey(id), s)
	return s
}

// EachPlayerStatus walks every player with a live status component, the
// per-tick countdown pass internal/tick's StatusSystem needs.
func (w *World) EachPlayerStatus(fn func(PlayerID, *monster.Status)) {
	w.statusStore.Each(func(id ecs.EntityID, s *monster.Status) {
		fn(PlayerID(id.Index()), s)
	})
}

const (
	monsterPoolCapacity = 4096
	itemPoolCapacity    = 8192
)

// townDungeonID is the reserved dungeon id town tiles live under, distinct
// from every real dungeon handle (spec §3 "Dungeon handle").
const townDungeonID = 0

// generateLevel is the levelstore.Factory: it runs the generator, then the
// post-generation population and feeling-rating passes a resident level
// needs before any player or query touches it.
func (w *World) generateLevel(id levelstore.LevelID, dtype *catalog.DungeonType, seed int64) (*grid.Grid, error) {
	if id.DungeonID == townDungeonID {
		return dungeongen.GenerateTown(w.cat.Features, dungeongen.TownParams{
			WorldSeed: w.worldSeed,
			TileX:     id.Depth,
			TileY:     0,
			Width:     defaultLevelWidth,
			Height:    defaultLevelHeight,
			Shops:     nil,
		}), nil
	}

	attempts := w.cfg.Generation.MaxGenerateAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lvl *dungeongen.Level
	var err error
	for i := 0; i < attempts; i++ {
		lvl, err = dungeongen.Generate(w.cat.Features, w.cat.Vaults, dungeongen.Params{
			DungeonType: dtype,
			Depth:       id.Depth,
			Seed:        seed + int64(i),
			Width:       defaultLevelWidth,
			Height:      defaultLevelHeight,
			Quest:       dtype != nil && dtype.QuestDepth != 0 && dtype.QuestDepth == id.Depth,
		})
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("world: generate level %+v after %d attempts: %w", id, attempts, err)
	}

	lvl.Feeling = w.populateLevel(lvl, id, dtype, seed)
	w.groundItems[id] = make(map[grid.Coord][]ecs.EntityID)

	return lvl.Grid, nil
}

// populateLevel runs stage 8 (spec §4.5 "Stage 8: monster/item
// allocation"): restricted sampling via monster.GetMonNum, then placement
// via PlaceAux for each drawn race, and returns a feeling rating derived
// from what landed (SUPPLEMENTED FEATURES "per-level feeling rating").
func (w *World) populateLevel(lvl *dungeongen.Level, id levelstore.LevelID, dtype *catalog.DungeonType, seed int64) int {
	rng := dungeongen.NewRand(seed ^ 0x5A17)

	count := 4 + rng.Intn(6)
	danger := 0
	for i := 0; i < count; i++ {
		race, ok := monster.GetMonNum(w.cat.Races, w.Population, w.Kills, monster.SampleOpts{
			Depth:        id.Depth,
			DungeonType:  dtype,
			PowerSamples: 2,
		}, rng)
		if !ok {
			continue
		}

		c, found := pickSpawnCell(lvl.Grid, w.cat.Features, rng)
		if !found {
			continue
		}

		placed, err := monster.PlaceAux(w.Monsters, w.Population, w.Kills, w.cat.Races, w.cat, race, lvl.Grid, c, id.Depth, rng)
		if err != nil {
			continue
		}
		for _, inst := range placed {
			w.monsterData[inst.ID] = inst
			w.monsterLevel[inst.ID] = id
			danger += int(race.Level)
		}
	}

	feeling := danger / 10
	if feeling > 9 {
		feeling = 9
	}
	return feeling
}

// pickSpawnCell finds a random naked floor cell by rejection sampling,
// matching the reference generator's scatter placement for initial
// population.
func pickSpawnCell(g *grid.Grid, ft *catalog.FeatureTable, rng *dungeongen.Rand) (grid.Coord, bool) {
	for tries := 0; tries < 200; tries++ {
		c := grid.Coord{X: 1 + rng.Intn(g.Width-2), Y: 1 + rng.Intn(g.Height-2)}
		if grid.CellNaked(g, ft, c) {
			return c, true
		}
	}
	return grid.Coord{}, false
}

// RegisterMonster records a freshly placed monster (from a multiply roll,
// a summon effect, or anything else placed after initial population) so
// housekeeping's level-scoped sweep and eviction can find it.
func (w *World) RegisterMonster(id levelstore.LevelID, inst *monster.Instance) {
	w.monsterData[inst.ID] = inst
	w.monsterLevel[inst.ID] = id
}

// Monster looks up a live monster's mutable state by id.
func (w *World) Monster(id ecs.EntityID) (*monster.Instance, bool) {
	inst, ok := w.monsterData[id]
	return inst, ok
}

// MonsterAt resolves the monster occupying cell c on level id, if any.
func (w *World) MonsterAt(id LevelID, c grid.Coord) (*monster.Instance, bool) {
	rec, ok := w.Levels.Lookup(id)
	if !ok {
		return nil, false
	}
	link := rec.Grid.At(c).Monster
	if !link.Valid() {
		return nil, false
	}
	inst, ok := w.monsterData[fromLink(link)]
	return inst, ok
}

// Item looks up a live item instance by id.
func (w *World) Item(id ecs.EntityID) (*ItemInstance, bool) {
	item, ok := w.itemData[id]
	return item, ok
}

// EachItem walks every live item instance, ground or carried, for the
// command surface's artifact-list query.
func (w *World) EachItem(fn func(*ItemInstance)) {
	for _, item := range w.itemData {
		fn(item)
	}
}

// EachMonsterOnGrid walks every occupied cell of g and yields the monster
// sitting there, the precise per-level query internal/tick and
// internal/command need.
func (w *World) EachMonsterOnGrid(g *grid.Grid, fn func(grid.Coord, *monster.Instance)) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := grid.Coord{X: x, Y: y}
			link := g.At(c).Monster
			if !link.Valid() {
				continue
			}
			id := fromLink(link)
			inst := w.monsterData[id]
			if inst != nil {
				fn(c, inst)
			}
		}
	}
}

// EachMonster walks every live monster instance regardless of which level
// it's resident on, the global sweep internal/tick's status and regen
// passes need.
func (w *World) EachMonster(fn func(*monster.Instance)) {
	for _, inst := range w.monsterData {
		fn(inst)
	}
}

func fromLink(l grid.EntityLink) ecs.EntityID {
	if !l.Valid() {
		return 0
	}
	return ecs.NewEntityID(l.Index, l.Gen-1)
}

// AddPlayer registers a connected player into the world and pins their
// starting level (spec §4.1/§4.2 "Join").
func (w *World) AddPlayer(p *Player) error {
	rec, err := w.Levels.Acquire(p.Level, w.dungeonTypeFor(p.Level), w.worldSeed+int64(p.Level.Depth))
	if err != nil {
		return fmt.Errorf("world: add player %s: %w", p.Name, err)
	}
	_ = rec
	w.Players[p.ID] = p
	if p.Session != 0 {
		w.bySession[p.Session] = p.ID
	}
	return nil
}

// RemovePlayer unregisters a player. If pin is true the player's current
// level stays pinned for DeepLogoutPinMins*depth minutes past disconnect
// (spec §3 "Lifecycle", §4.2 "deep-level logout pin") instead of releasing
// immediately; the tick housekeeping pass is responsible for unpinning it
// once that window elapses.
func (w *World) RemovePlayer(id PlayerID, pin bool) {
	p, ok := w.Players[id]
	if !ok {
		return
	}
	delete(w.bySession, p.Session)
	delete(w.Players, id)
	w.statusRegistry.RemoveAll(playerStatusKey(id))

	if pin {
		p.StaticPin = p.Level
		// Refresh the record's idle clock to mark "now" as the start of the
		// deep-logout pin window, without dropping the pin itself (spec §4.2
		// "deep-level logout pin").
		if rec, ok := w.Levels.Lookup(p.Level); ok {
			rec.Unpin()
			rec.Pin()
		}
		return
	}
	w.Levels.Release(p.Level)
}

// PlayerBySession resolves a net session id to its player, or (nil, false)
// if that session hasn't completed character selection yet.
func (w *World) PlayerBySession(session uint64) (*Player, bool) {
	id, ok := w.bySession[session]
	if !ok {
		return nil, false
	}
	p, ok := w.Players[id]
	return p, ok
}

// PresentOn returns the ids of every player currently on level id, the set
// monster.GetMonNum's unique-exclusion rule is scoped against (spec §4.6,
// E2E-3).
func (w *World) PresentOn(id LevelID) []monster.PlayerID {
	var out []monster.PlayerID
	for pid, p := range w.Players {
		if p.Level == id {
			out = append(out, monster.PlayerID(pid))
		}
	}
	return out
}

func (w *World) Catalog() *catalog.Catalog { return w.cat }
func (w *World) Config() *config.Config    { return w.cfg }

// RequestShutdown marks the world for graceful shutdown; cmd/server's main
// loop checks ShuttingDown once per tick and exits after saving every
// player (spec §6 "Administrative surface": shutdown command).
func (w *World) RequestShutdown()   { w.shutdown = true }
func (w *World) ShuttingDown() bool { return w.shutdown }
