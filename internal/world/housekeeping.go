package world

import (
	"time"

	"github.com/erasmund/depthkeep/internal/core/ecs"
	"github.com/erasmund/depthkeep/internal/entitypool"
	"github.com/erasmund/depthkeep/internal/levelstore"
)

// Housekeeping runs the periodic maintenance pass internal/tick drives once
// per housekeeping interval: unpinning expired deep-logout pins, sweeping
// stale unpinned levels, and compacting either entity pool once it crosses
// its high-water mark (spec §4.2, §4.3).
func (w *World) Housekeeping(now time.Time) {
	w.unpinExpired()

	staleAfter := time.Duration(w.cfg.World.StaleLevelSeconds) * time.Second
	for _, id := range w.Levels.Sweep(staleAfter) {
		w.releaseLevel(id)
	}

	if w.Monsters.HighWaterMark() {
		w.Monsters.Compact(w.monsterLevelAverage(), w.evictMonster)
	}
	if w.Items.HighWaterMark() {
		w.Items.Compact(0, w.evictItem)
	}
}

// unpinExpired releases a disconnected player's static-floor pin once
// k*depth minutes have elapsed since disconnect (spec §3 "Lifecycle", §4.2
// "deep-level logout pin"). RemovePlayer refreshes a pinned record's idle
// clock at disconnect time without dropping the pin, so IdleSince here
// measures time-since-disconnect directly. Levels a connected player is on
// are skipped: their pin is that player's own.
func (w *World) unpinExpired() {
	occupied := make(map[LevelID]bool, len(w.Players))
	for _, p := range w.Players {
		occupied[p.Level] = true
	}
	var expired []levelstore.LevelID
	w.Levels.All(func(r *levelstore.Record) {
		if !r.Pinned() || occupied[r.ID] {
			return
		}
		deadline := time.Duration(w.cfg.World.DeepLogoutPinMins*r.ID.Depth) * time.Minute
		if r.IdleSince() >= deadline {
			expired = append(expired, r.ID)
		}
	})
	for _, id := range expired {
		w.Levels.Release(id)
	}
}

// releaseLevel discards a swept level's entity bookkeeping. Artifacts are
// preserved rather than destroyed when cfg.AntiArtsHoard is set (spec
// E2E-5 "artifact preservation on level deallocation"): instead of freeing
// the item, it's detached from the level and kept in a limbo slot so it
// can be regenerated/returned rather than permanently lost.
func (w *World) releaseLevel(id LevelID) {
	chain := w.groundItems[id]
	for _, ids := range chain {
		for _, itemID := range ids {
			item := w.itemData[itemID]
			if item == nil {
				continue
			}
			kind := item.Kind(w.cat)
			if kind != nil && kind.Artifact && w.cfg.World.AntiArtsHoard {
				w.orphanArtifact(item)
				continue
			}
			w.Items.Free(itemID)
			delete(w.itemData, itemID)
		}
	}
	delete(w.groundItems, id)

	for eid, lvl := range w.monsterLevel {
		if lvl != id {
			continue
		}
		w.Monsters.Free(eid)
		delete(w.monsterData, eid)
		delete(w.monsterLevel, eid)
	}
}

// orphanArtifact detaches a preserved artifact from its now-gone level
// without freeing its pool slot, so the next dungeon reset/admin query can
// find and re-place it (spec §3 lifecycle "artifacts ... are exempt from
// normal item lifetime").
func (w *World) orphanArtifact(item *ItemInstance) {
	item.Level = LevelID{}
	item.Held = false
}

// monsterLevelAverage feeds entitypool.Compact's level-ratio metric: the
// mean monster level across every currently live monster, recomputed at
// compaction time rather than kept running to avoid drift from deaths.
func (w *World) monsterLevelAverage() int {
	total, count := 0, 0
	w.Monsters.Each(func(_ ecs.EntityID, e *entitypool.Entry) {
		total += e.Level
		count++
	})
	if count == 0 {
		return 0
	}
	return total / count
}

// evictMonster clears every cross-reference to a monster compaction
// selected for removal: the occupant link of the cell it stands on, and its
// entry in monsterData/monsterLevel (spec §4.3 "EvictFunc ... clear every
// cross-reference").
func (w *World) evictMonster(kind entitypool.Kind, id ecs.EntityID) {
	if inst, ok := w.monsterData[id]; ok {
		if rec, ok := w.Levels.Lookup(w.monsterLevel[id]); ok && rec.Grid.InBounds(inst.Pos) {
			if cell := rec.Grid.At(inst.Pos); cell.Monster == toLink(id) {
				cell.Monster.Index, cell.Monster.Gen = 0, 0
			}
		}
	}
	delete(w.monsterData, id)
	delete(w.monsterLevel, id)
}

// evictItem clears a compacted item's data and ground-chain membership.
func (w *World) evictItem(kind entitypool.Kind, id ecs.EntityID) {
	item, ok := w.itemData[id]
	if !ok {
		return
	}
	delete(w.itemData, id)
	if item.Held {
		return
	}
	if chain := w.groundItems[item.Level]; chain != nil {
		if rec, ok := w.Levels.Lookup(item.Level); ok {
			removeFromChain(item.Pos, id, chain, rec.Grid)
		}
	}
}
