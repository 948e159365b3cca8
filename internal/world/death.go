package world

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/core/ecs"
	"github.com/erasmund/depthkeep/internal/entitypool"
	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/monster"
)

// KillMonster applies spec §4.6 "Death and drops" end to end: population
// and unique-kill bookkeeping, experience split among the killers present,
// and a drop roll against the race's declared drop table, placed on the
// ground at the monster's last cell.
func (w *World) KillMonster(level LevelID, inst *monster.Instance, killers []PlayerID, rng monster.Roller) {
	race := w.cat.Races.Get(inst.RaceID)
	if race == nil {
		return
	}

	w.Population.Dec(race.ID)

	if race.IsUnique() {
		ids := make([]monster.PlayerID, len(killers))
		for i, k := range killers {
			ids[i] = monster.PlayerID(k)
		}
		w.Kills.RecordKill(race.ID, ids)
		for _, k := range killers {
			if p, ok := w.Players[k]; ok {
				if p.KnownUniques == nil {
					p.KnownUniques = make(map[catalog.RaceID]bool)
				}
				p.KnownUniques[race.ID] = true
			}
		}
	}

	w.splitExperience(race, inst, killers)
	w.rollDrops(level, race, inst.Pos, rng)

	w.Monsters.Free(inst.ID)
	delete(w.monsterData, inst.ID)
	delete(w.monsterLevel, inst.ID)

	if rec, ok := w.Levels.Lookup(level); ok {
		rec.Grid.At(inst.Pos).Monster = grid.NoEntity
	}
}

// splitExperience divides a clone-free kill's experience value evenly
// among the killers present, per spec §4.6 "experience split among
// present party/killers"; clones (spec §4.6 "Summoning") award nothing.
func (w *World) splitExperience(race *catalog.Race, inst *monster.Instance, killers []PlayerID) {
	if inst.IsClone(w.cfg.World.CloneSummonCap) || len(killers) == 0 {
		return
	}
	value := int64(race.HitDice) * int64(race.ExpPerLevel+1)
	if w.cfg.Rates.ExpRate > 0 {
		value = int64(float64(value) * w.cfg.Rates.ExpRate)
	}
	share := value / int64(len(killers))
	if share < 1 {
		share = 1
	}
	for _, k := range killers {
		p, ok := w.Players[k]
		if !ok {
			continue
		}
		p.Exp += share
	}
}

// rollDrops implements the race-declared drop table roll plus the
// DropGood/DropGreat/DropCount bonus rolls (spec §4.6 "race-declared
// drops"), placing anything that hits onto the ground at pos.
func (w *World) rollDrops(level LevelID, race *catalog.Race, pos grid.Coord, rng monster.Roller) {
	rec, ok := w.Levels.Lookup(level)
	if !ok {
		return
	}

	entries := w.cat.Drops.Get(race.ID)
	if len(entries) == 0 {
		return
	}

	rolls := 1
	if race.DropGood {
		rolls++
	}
	if race.DropGreat {
		rolls += 2
	}
	if race.DropCount > rolls {
		rolls = race.DropCount
	}

	for i := 0; i < rolls; i++ {
		for _, e := range entries {
			if rng.Intn(1_000_000) >= e.Chance {
				continue
			}
			count := e.Min
			if e.Max > e.Min {
				count += rng.Intn(e.Max - e.Min + 1)
			}
			w.spawnGroundItem(level, rec.Grid, pos, e.ItemID, count)
			break
		}
	}
}

// spawnGroundItem allocates a fresh item instance and drops it onto pos.
func (w *World) spawnGroundItem(level LevelID, g *grid.Grid, pos grid.Coord, kindID catalog.ItemKindID, count int) {
	kind := w.cat.Items.Get(kindID)
	priority := entitypool.PriorityNormal
	itemLevel := 0
	if kind != nil && kind.Artifact {
		priority = entitypool.PriorityQuest
	}

	id, err := w.Items.Alloc(priority, itemLevel)
	if err != nil {
		return
	}
	item := &ItemInstance{
		ID:     id,
		KindID: kindID,
		Count:  count,
		Level:  level,
		Pos:    pos,
	}
	w.itemData[id] = item

	chain := w.groundItems[level]
	if chain == nil {
		chain = make(map[grid.Coord][]ecs.EntityID)
		w.groundItems[level] = chain
	}
	dropOnto(g, pos, id, chain)
}
