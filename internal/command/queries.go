package command

import (
	"github.com/erasmund/depthkeep/internal/levelstore"
	"github.com/erasmund/depthkeep/internal/net/packet"
	"github.com/erasmund/depthkeep/internal/world"
)

// queryArtifacts reports every currently-tracked artifact instance: the
// number of artifacts, then per artifact its kind id and whether it's
// presently held or lying on the ground (spec §6 "Administrative surface": artifact
// list).
func queryArtifacts(w *world.World, p *world.Player) []byte {
	wr := packet.NewWriterWithOpcode(byte(OpQueryArtifacts))
	var count int32
	body := packet.NewWriter()
	w.EachItem(func(item *world.ItemInstance) {
		kind := item.Kind(w.Catalog())
		if kind == nil || !kind.Artifact {
			return
		}
		count++
		body.WriteD(int32(kind.ID))
		if item.Held {
			body.WriteC(1)
		} else {
			body.WriteC(0)
		}
	})
	wr.WriteD(count)
	wr.WriteBytes(body.RawBytes())
	return wr.Bytes()
}

// queryUniques reports every unique race's live/dead state: the number of
// unique races, then per race its id and current population (0 or 1), per
// spec §4.6's unique exclusion bookkeeping.
func queryUniques(w *world.World) []byte {
	wr := packet.NewWriterWithOpcode(byte(OpQueryUniques))
	var count int32
	body := packet.NewWriter()
	for _, race := range w.Catalog().Races.All() {
		if !race.IsUnique() {
			continue
		}
		count++
		body.WriteD(int32(race.ID))
		body.WriteC(byte(w.Population.Count(race.ID)))
	}
	wr.WriteD(count)
	wr.WriteBytes(body.RawBytes())
	return wr.Bytes()
}

// queryOnline lists every currently-connected player by id and name (spec
// §6 "online-player list").
func queryOnline(w *world.World) []byte {
	wr := packet.NewWriterWithOpcode(byte(OpQueryOnline))
	var count int32
	body := packet.NewWriter()
	for _, p := range w.Players {
		if p.Session == 0 {
			continue
		}
		count++
		body.WriteD(int32(p.ID))
		body.WriteS(p.Name)
	}
	wr.WriteD(count)
	wr.WriteBytes(body.RawBytes())
	return wr.Bytes()
}

// queryDungeons lists every resident level: dungeon id, depth, and whether
// it is currently pinned (spec §6 "dungeon list").
func queryDungeons(w *world.World) []byte {
	wr := packet.NewWriterWithOpcode(byte(OpQueryDungeons))
	wr.WriteD(int32(w.Levels.Count()))
	w.Levels.All(func(r *levelstore.Record) {
		wr.WriteD(r.ID.DungeonID)
		wr.WriteD(int32(r.ID.Depth))
		if r.Pinned() {
			wr.WriteC(1)
		} else {
			wr.WriteC(0)
		}
	})
	return wr.Bytes()
}
