package dungeongen

import (
	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/grid"
)

// vaultSpawn describes one monster cell a placed vault wants populated,
// handed back to internal/monster by the caller that owns the level.
type vaultSpawn struct {
	Pos        grid.Coord
	LevelBonus int // +5/+11/+40 per spec §4.5's vault glyph table
	Treasure   bool
}

// buildVaultRoom is archetypes 7/8/11 (lesser vault, greater vault, random
// vault): pick a vault rated near depth, optionally mirror/rotate it, and
// stamp its ASCII picture into the grid (spec §4.5's "Vault placement").
// window widens with archetype so greater/random vaults can reach further
// from the exact depth than a lesser vault.
func buildVaultRoom(g *grid.Grid, ft *catalog.FeatureTable, vaults *catalog.VaultTable, c grid.Coord, depth, window int, rng *Rand) bool {
	candidates := vaults.ForDepth(depth, window)
	if len(candidates) == 0 {
		return false
	}
	v := candidates[rng.Intn(len(candidates))]
	placeVault(g, ft, v, c, rng)

	if v.Has(catalog.VaultHives) {
		for _, d := range []grid.Coord{{X: v.Width + 1, Y: 0}, {X: -v.Width - 1, Y: 0}, {X: 0, Y: v.Height + 1}} {
			adjacent := grid.Coord{X: c.X + d.X, Y: c.Y + d.Y}
			if g.InBounds(adjacent) {
				placeVault(g, ft, v, adjacent, rng)
				break
			}
		}
	}
	return true
}

// placeVault stamps one vault instance, applying mirror/rotate transforms
// unless its flags forbid them, and processes every non-space glyph as an
// instruction.
func placeVault(g *grid.Grid, ft *catalog.FeatureTable, v *catalog.Vault, center grid.Coord, rng *Rand) []vaultSpawn {
	mirrorX := !v.Has(catalog.VaultNoMirror) && rng.Intn(2) == 0
	mirrorY := !v.Has(catalog.VaultNoMirror) && rng.Intn(2) == 0
	rotate := !v.Has(catalog.VaultNoRotate) && rng.Intn(2) == 0

	w, h := v.Width, v.Height
	if rotate {
		w, h = h, w
	}
	originY := center.Y - h/2
	originX := center.X - w/2

	var spawns []vaultSpawn
	var gateA, gateB grid.Coord
	var haveA, haveB bool
	for vy := 0; vy < v.Height; vy++ {
		for vx := 0; vx < v.Width; vx++ {
			glyph := v.At(vx, vy)
			if glyph == catalog.GlyphSpace {
				continue
			}
			ty, tx := vy, vx
			if rotate {
				ty, tx = vx, vy
			}
			if mirrorX {
				tx = w - 1 - tx
			}
			if mirrorY {
				ty = h - 1 - ty
			}
			pos := grid.Coord{X: originX + tx, Y: originY + ty}
			if !g.InBounds(pos) {
				continue
			}
			switch glyph {
			case catalog.GlyphGateA:
				gateA, haveA = pos, true
			case catalog.GlyphGateB:
				gateB, haveB = pos, true
			}
			spawns = append(spawns, applyVaultGlyph(g, ft, pos, glyph, rng)...)
		}
	}
	// Pair the vault's numbered twin cells into one between-gate (spec §4.5
	// "a numbered cell that pairs with its twin as a between-gate"): each
	// half's overlay is stamped with the transformed position of the other,
	// computed only after both halves have been walked once.
	if haveA && haveB {
		g.AddOverlay(gateA, &grid.Overlay{Kind: grid.OverlayGateLink, GateTarget: gateB})
		g.AddOverlay(gateB, &grid.Overlay{Kind: grid.OverlayGateLink, GateTarget: gateA})
	}
	markRoom(g, originY, originX, originY+h, originX+w, grid.FlagRoom, grid.FlagIcky)
	return spawns
}

func applyVaultGlyph(g *grid.Grid, ft *catalog.FeatureTable, pos grid.Coord, glyph catalog.VaultGlyph, rng *Rand) []vaultSpawn {
	switch glyph {
	case catalog.GlyphOuterWall:
		g.SetFeature(pos, catalog.FeatOuterWall)
	case catalog.GlyphInnerWall:
		g.SetFeature(pos, catalog.FeatInnerWall)
	case catalog.GlyphPermWall:
		g.SetFeature(pos, catalog.FeatPermWall)
	case catalog.GlyphFloor:
		g.SetFeature(pos, catalog.FeatFloor)
	case catalog.GlyphTreasure:
		g.SetFeature(pos, catalog.FeatFloor)
		return []vaultSpawn{{Pos: pos, Treasure: true}}
	case catalog.GlyphTrap:
		g.SetFeature(pos, catalog.FeatFloor)
	case catalog.GlyphSecretDoor:
		feat := catalog.FeatDoorSecret
		if rng.Magik(30) {
			feat = catalog.FeatDoorLocked
		}
		g.SetFeature(pos, feat)
	case catalog.GlyphMonsterLow:
		g.SetFeature(pos, catalog.FeatFloor)
		return []vaultSpawn{{Pos: pos, LevelBonus: 5}}
	case catalog.GlyphMonsterMid:
		g.SetFeature(pos, catalog.FeatFloor)
		return []vaultSpawn{{Pos: pos, LevelBonus: 11, Treasure: true}}
	case catalog.GlyphMonsterHigh:
		g.SetFeature(pos, catalog.FeatFloor)
		return []vaultSpawn{{Pos: pos, LevelBonus: 40, Treasure: true}}
	case catalog.GlyphGateA, catalog.GlyphGateB:
		// Floor only; placeVault pairs the two halves into one
		// OverlayGateLink once both positions are known.
		g.SetFeature(pos, catalog.FeatFloor)
	}
	return nil
}
