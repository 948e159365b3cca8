package world

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/core/ecs"
	"github.com/erasmund/depthkeep/internal/grid"
)

// ItemInstance is a live object (spec §3 "Item instance & kind"): an
// immutable catalog.ItemKind blueprint plus the per-instance state that
// varies copy to copy. Two stacks of the same kind with the same
// enchantment/charges/identified state are mergeable; anything else keeps
// them separate slots.
type ItemInstance struct {
	ID     ecs.EntityID
	KindID catalog.ItemKindID

	Count      int
	EnchantLvl int16
	Charges    int16
	Identified bool

	// DiscoveredBy records which players have identified this exact
	// instance, for per-player "is this known to you" queries distinct
	// from the blueprint-wide Identified flag an ego/artifact sets once
	// and for all.
	DiscoveredBy map[PlayerID]bool

	// Location is either on the ground (Level+Pos set, Owner zero) or
	// carried (Owner set, Level/Pos irrelevant).
	Level LevelID
	Pos   grid.Coord
	Owner PlayerID
	Held  bool // true while carried, as opposed to lying on the ground
}

// Kind resolves this instance's immutable blueprint.
func (i *ItemInstance) Kind(cat *catalog.Catalog) *catalog.ItemKind {
	return cat.Items.Get(i.KindID)
}

// Mergeable reports whether other can be folded into this stack (spec §3
// "stacking"): same kind, same enchant/charges, both unidentified-or-both-
// identified, neither an artifact singleton.
func (i *ItemInstance) Mergeable(other *ItemInstance, cat *catalog.Catalog) bool {
	kind := i.Kind(cat)
	if kind == nil || kind.Artifact || !kind.Stackable() {
		return false
	}
	return i.KindID == other.KindID &&
		i.EnchantLvl == other.EnchantLvl &&
		i.Charges == other.Charges &&
		i.Identified == other.Identified
}

// dropOnto places item on the ground at c, linking it into the cell's
// ground-item chain (spec §4.1 "external ground-item list" decision: the
// cell stores only the head link, internal/world keeps the chain itself
// rather than allocating it inline per cell).
func dropOnto(g *grid.Grid, c grid.Coord, id ecs.EntityID, chain map[grid.Coord][]ecs.EntityID) {
	cell := g.At(c)
	if !cell.Item.Valid() {
		cell.Item = toLink(id)
	}
	chain[c] = append(chain[c], id)
}

func removeFromChain(c grid.Coord, id ecs.EntityID, chain map[grid.Coord][]ecs.EntityID, g *grid.Grid) {
	list := chain[c]
	for i, e := range list {
		if e == id {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(chain, c)
		g.At(c).Item = grid.NoEntity
	} else {
		chain[c] = list
		g.At(c).Item = toLink(list[0])
	}
}
