package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/erasmund/depthkeep/internal/command"
	"github.com/erasmund/depthkeep/internal/grid"
	gonet "github.com/erasmund/depthkeep/internal/net"
	"github.com/erasmund/depthkeep/internal/net/packet"
	"github.com/erasmund/depthkeep/internal/persist"
	"github.com/erasmund/depthkeep/internal/visibility"
	"github.com/erasmund/depthkeep/internal/world"
)

// opLogin/opCharSelect/opLogout sit above every in-world command.Opcode
// value (which starts at 1) so the two opcode spaces never collide inside
// a single packet.Registry. The account/character-select layer is one of
// spec.md's named external collaborators ("the chat and account-management
// layers ... treated as external collaborators"): this is a minimal,
// concrete stand-in for it, not a production login protocol.
const (
	opLogin      byte = 0x10
	opCharSelect byte = 0x11
	opLogout     byte = 0x12
)

// defaultSpawnLevel/defaultSpawnCell is where a freshly created
// character's first life begins: the town tile, depth 0, a fixed cell
// assumed clear of terrain (spec §3 "starting location").
var (
	defaultSpawnLevel = world.LevelID{DungeonID: 0, Depth: 0}
	defaultSpawnCell  = grid.Coord{X: 3, Y: 3}
)

const (
	startingHP    = 20
	startingMP    = 10
	startingAC    = int16(10)
	startingSpeed = int16(110)
	startingGold  = int64(100)
)

// inputQueueCap bounds how many unprocessed commands a player can queue
// before new ones are dropped, so a flooded client can't grow Input
// without bound between ticks.
const inputQueueCap = 8

// sessionDeps bundles everything a packet handler needs that main's run()
// otherwise keeps local: the world, the persistence repos, a logger, and
// the live session table (net.Server only hands out new/dead session
// events, not a lookup by id, so the game loop keeps its own).
type sessionDeps struct {
	world       *world.World
	accountRepo *persist.AccountRepo
	charRepo    *persist.CharacterRepo
	itemRepo    *persist.ItemRepo
	log         *zap.Logger

	sessions map[uint64]*gonet.Session
}

func newSessionDeps(w *world.World, accountRepo *persist.AccountRepo, charRepo *persist.CharacterRepo, itemRepo *persist.ItemRepo, log *zap.Logger) *sessionDeps {
	return &sessionDeps{
		world:       w,
		accountRepo: accountRepo,
		charRepo:    charRepo,
		itemRepo:    itemRepo,
		log:         log,
		sessions:    make(map[uint64]*gonet.Session),
	}
}

func registerHandlers(reg *packet.Registry, deps *sessionDeps) {
	reg.Register(opLogin, []packet.SessionState{packet.StateHandshake, packet.StateVersionOK}, func(s any, r *packet.Reader) {
		handleLogin(deps, s.(*gonet.Session), r)
	})
	reg.Register(opCharSelect, []packet.SessionState{packet.StateAuthenticated}, func(s any, r *packet.Reader) {
		handleCharSelect(deps, s.(*gonet.Session), r)
	})
	reg.Register(opLogout, []packet.SessionState{packet.StateInWorld}, func(s any, r *packet.Reader) {
		handleLogout(deps, s.(*gonet.Session))
	})

	for _, op := range []command.Opcode{
		command.OpMove, command.OpAttack, command.OpPickup, command.OpDrop, command.OpCast,
		command.OpQueryArtifacts, command.OpQueryUniques, command.OpQueryOnline, command.OpQueryDungeons,
		command.OpAdminSummon, command.OpAdminShutdown,
	} {
		op := op
		reg.Register(byte(op), []packet.SessionState{packet.StateInWorld}, func(s any, r *packet.Reader) {
			handleGameOpcode(deps, s.(*gonet.Session), r)
		})
	}
}

// handleLogin validates (or lazily creates) an account and sends back the
// character roster. A real account layer would separate "create" from
// "log in" and rate-limit attempts (spec.md leaves that surface out of
// scope); here a login with an unknown name creates the account on the
// spot.
func handleLogin(deps *sessionDeps, sess *gonet.Session, r *packet.Reader) {
	name := r.ReadS()
	password := r.ReadS()
	if name == "" {
		sess.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	acct, err := deps.accountRepo.Load(ctx, name)
	if err != nil {
		deps.log.Error("account load failed", zap.String("account", name), zap.Error(err))
		sess.Close()
		return
	}
	if acct == nil {
		acct, err = deps.accountRepo.Create(ctx, name, password, sess.IP, sess.IP)
		if err != nil {
			deps.log.Error("account create failed", zap.String("account", name), zap.Error(err))
			sess.Close()
			return
		}
	} else if acct.Banned || !deps.accountRepo.ValidatePassword(acct.PasswordHash, password) {
		sess.Close()
		return
	}

	_ = deps.accountRepo.UpdateLastActive(ctx, name, sess.IP)
	_ = deps.accountRepo.SetOnline(ctx, name, true)

	sess.AccountName = name
	sess.SetState(packet.StateAuthenticated)

	chars, err := deps.charRepo.LoadByAccount(ctx, name)
	if err != nil {
		deps.log.Error("character list load failed", zap.String("account", name), zap.Error(err))
		sess.Close()
		return
	}

	w := packet.NewWriterWithOpcode(opLogin)
	w.WriteC(byte(len(chars)))
	for _, c := range chars {
		w.WriteS(c.Name)
		w.WriteH(uint16(c.CharLevel))
	}
	sess.Send(w.Bytes())
}

// handleCharSelect loads an existing character by name, or creates one if
// the account hasn't rolled it yet, then joins it into the live world.
func handleCharSelect(deps *sessionDeps, sess *gonet.Session, r *packet.Reader) {
	name := r.ReadS()
	if name == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row, err := deps.charRepo.LoadByName(ctx, name)
	if err != nil {
		deps.log.Error("character load failed", zap.String("character", name), zap.Error(err))
		return
	}
	if row == nil {
		row = &persist.CharacterRow{
			AccountName: sess.AccountName,
			Name:        name,
			CharLevel:   1,
			HP:          startingHP,
			MaxHP:       startingHP,
			MP:          startingMP,
			MaxMP:       startingMP,
			AC:          startingAC,
			Speed:       startingSpeed,
			Gold:        startingGold,
			DungeonID:   defaultSpawnLevel.DungeonID,
			Depth:       int32(defaultSpawnLevel.Depth),
			GridX:       int32(defaultSpawnCell.X),
			GridY:       int32(defaultSpawnCell.Y),
		}
		if err := deps.charRepo.Create(ctx, row); err != nil {
			deps.log.Error("character create failed", zap.String("character", name), zap.Error(err))
			return
		}
	}

	items, err := deps.itemRepo.LoadByCharID(ctx, row.ID)
	if err != nil {
		deps.log.Error("inventory load failed", zap.String("character", name), zap.Error(err))
		return
	}

	p := characterRowToPlayer(row)
	p.Session = sess.ID
	for _, it := range items {
		p.Inventory = append(p.Inventory, it.ToInstance(p.ID))
	}

	if err := deps.world.AddPlayer(p); err != nil {
		deps.log.Error("join world failed", zap.String("character", name), zap.Error(err))
		return
	}

	sess.CharName = name
	sess.SetState(packet.StateInWorld)

	ack := packet.NewWriterWithOpcode(opCharSelect)
	ack.WriteD(row.DungeonID)
	ack.WriteD(row.Depth)
	ack.WriteD(int32(p.Grid.X))
	ack.WriteD(int32(p.Grid.Y))
	sess.Send(ack.Bytes())
}

// handleLogout saves and removes the player, returning the session to
// character select rather than disconnecting outright.
func handleLogout(deps *sessionDeps, sess *gonet.Session) {
	p, ok := deps.world.PlayerBySession(sess.ID)
	if !ok {
		return
	}
	saveOnePlayer(deps, p)
	deps.world.RemovePlayer(p.ID, true)
	sess.CharName = ""
	sess.SetState(packet.StateReturningToSelect)
}

// handleGameOpcode queues a raw in-world packet as a world.Command; the
// owning player's turn (internal/tick's PlayerEnergySystem) drains and
// executes it, keeping every world mutation on the single tick goroutine
// (spec §5 "Concurrency & resource model").
func handleGameOpcode(deps *sessionDeps, sess *gonet.Session, r *packet.Reader) {
	p, ok := deps.world.PlayerBySession(sess.ID)
	if !ok {
		return
	}
	if len(p.Input) >= inputQueueCap {
		return
	}
	p.Input = append(p.Input, command.Decode(r))
}

func characterRowToPlayer(row *persist.CharacterRow) *world.Player {
	return &world.Player{
		ID:          world.PlayerID(row.ID),
		Name:        row.Name,
		AccountName: row.AccountName,
		Level:       world.LevelID{DungeonID: row.DungeonID, Depth: int(row.Depth)},
		Grid:        grid.Coord{X: int(row.GridX), Y: int(row.GridY)},
		HP:          row.HP,
		MaxHP:       row.MaxHP,
		MP:          row.MP,
		MaxMP:       row.MaxMP,
		AC:          row.AC,
		CharLevel:   row.CharLevel,
		Exp:         row.Exp,
		Speed:       row.Speed,
		Skills:      row.Skills,
		Gold:        row.Gold,
		AdminLevel:  row.AdminLevel,
		Guild:       row.Guild,
		StaticPin:   world.LevelID{DungeonID: row.StaticPinDungeonID, Depth: int(row.StaticPinDepth)},
		Vis:         visibility.NewTracker(),
	}
}

func playerToCharacterRow(p *world.Player) *persist.CharacterRow {
	uniques := make([]int32, 0, len(p.KnownUniques))
	for race, known := range p.KnownUniques {
		if known {
			uniques = append(uniques, int32(race))
		}
	}
	return &persist.CharacterRow{
		ID:                 int32(p.ID),
		AccountName:        p.AccountName,
		Name:               p.Name,
		CharLevel:          p.CharLevel,
		Exp:                p.Exp,
		HP:                 p.HP,
		MaxHP:              p.MaxHP,
		MP:                 p.MP,
		MaxMP:              p.MaxMP,
		AC:                 p.AC,
		Speed:              p.Speed,
		Gold:               p.Gold,
		DungeonID:          p.Level.DungeonID,
		Depth:              int32(p.Level.Depth),
		GridX:              int32(p.Grid.X),
		GridY:              int32(p.Grid.Y),
		StaticPinDungeonID: p.StaticPin.DungeonID,
		StaticPinDepth:     int32(p.StaticPin.Depth),
		AdminLevel:         p.AdminLevel,
		Guild:              p.Guild,
		Skills:             p.Skills,
		KnownUniques:       uniques,
	}
}

func saveOnePlayer(deps *sessionDeps, p *world.Player) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := deps.charRepo.SaveCharacter(ctx, playerToCharacterRow(p)); err != nil {
		deps.log.Error("character save failed", zap.Int32("player", int32(p.ID)), zap.Error(err))
	}
	if err := deps.itemRepo.SaveInventory(ctx, int32(p.ID), p.Inventory); err != nil {
		deps.log.Error("inventory save failed", zap.Int32("player", int32(p.ID)), zap.Error(err))
	}
}

// drainConnections moves every session the accept loop has queued since
// the last tick into the game loop's own session table.
func drainConnections(srv *gonet.Server, deps *sessionDeps) {
	for {
		select {
		case sess := <-srv.NewSessions():
			deps.sessions[sess.ID] = sess
			deps.log.Debug("session accepted", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
		default:
			return
		}
	}
}

// drainDeadSessions reaps sessions the net layer has reported closed,
// saving and releasing any in-world player still attached to them.
func drainDeadSessions(srv *gonet.Server, deps *sessionDeps) {
	for {
		select {
		case id := <-srv.DeadSessions():
			delete(deps.sessions, id)
			if p, ok := deps.world.PlayerBySession(id); ok {
				saveOnePlayer(deps, p)
				deps.world.RemovePlayer(p.ID, true)
			}
		default:
			return
		}
	}
}

// drainInbound dispatches up to maxPerTick queued packets per session
// through the registry (spec §4.7's per-tick input phase): a session
// still producing packets faster than that just carries them over to the
// next tick rather than starving its neighbours.
func drainInbound(deps *sessionDeps, reg *packet.Registry, maxPerTick int) {
	for _, sess := range deps.sessions {
		for i := 0; i < maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				if err := reg.Dispatch(sess, sess.State(), data); err != nil {
					deps.log.Debug("dispatch error", zap.Uint64("session", sess.ID), zap.Error(err))
				}
			default:
				i = maxPerTick
			}
		}
	}
}

// saveAllPlayers is the shutdown-time autosave: every still-connected
// player is written back regardless of how it disconnects.
func saveAllPlayers(deps *sessionDeps) {
	for _, p := range deps.world.Players {
		saveOnePlayer(deps, p)
	}
}
