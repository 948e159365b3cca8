package monster

import "github.com/erasmund/depthkeep/internal/catalog"

// Taxonomy names a summon class: the narrow race family a SUMMON_* effect
// draws from (spec §4.6 "Summoning"). Each value maps to a predicate over
// catalog.Race rather than a stored list, so a new race earns a taxonomy
// automatically by carrying the right flags/glyph.
type Taxonomy int

const (
	TaxAny Taxonomy = iota
	TaxAnt
	TaxSpider
	TaxHound
	TaxHydra
	TaxAngel
	TaxDemon
	TaxUndead
	TaxHighUndead
	TaxDragon
	TaxHighDragon
	TaxElemental
	TaxKin // same race as the summoner
)

// glyphClasses gives the handful of taxonomies that key off a monster
// glyph rather than a race flag, matching the reference symbol classes
// (monster2.c's SUMMON_ANT/SUMMON_SPIDER/etc. glyph checks).
var glyphClasses = map[Taxonomy]rune{
	TaxAnt:    'a',
	TaxSpider: 'S',
	TaxHound:  'C',
	TaxHydra:  'M',
}

// Matches reports whether race belongs to taxonomy t.
func (t Taxonomy) Matches(race *catalog.Race) bool {
	if g, ok := glyphClasses[t]; ok {
		return race.Glyph == g
	}
	switch t {
	case TaxAny:
		return true
	case TaxAngel:
		return race.Has(catalog.RaceFlagAngel)
	case TaxDemon:
		return race.Has(catalog.RaceFlagDemon)
	case TaxUndead:
		return race.Has(catalog.RaceFlagUndead)
	case TaxHighUndead:
		return race.Has(catalog.RaceFlagUndead) && race.Level >= 20
	case TaxDragon:
		return race.Has(catalog.RaceFlagDragon)
	case TaxHighDragon:
		return race.Has(catalog.RaceFlagDragon) && race.Level >= 30
	case TaxElemental:
		return race.Has(catalog.RaceFlagElemental)
	default:
		return false
	}
}

// SummonOpts carries summon_specific's inputs beyond the taxonomy itself
// (spec §4.6 "Summoning").
type SummonOpts struct {
	Depth       int
	MaxLevel    int16 // 0 = no ceiling beyond depth
	Kin         *catalog.Race // required when Taxonomy == TaxKin
	Summoner    *Instance
	CloneDivisor int // SUPPLEMENTED FEATURES: configurable clone%/summon-depth dilution rate
}

// SummonSpecific draws one race matching taxonomy via a weighted pick over
// the eligible subset, mirroring GetMonNum's draw but scoped to the
// taxonomy predicate instead of a dungeon-type SpawnRule.
func SummonSpecific(races *catalog.RaceTable, tax Taxonomy, opts SummonOpts, rng Roller) (*catalog.Race, bool) {
	type candidate struct {
		race *catalog.Race
		w    int
	}
	var pool []candidate
	total := 0
	for _, r := range races.All() {
		if r.Level > int16(opts.Depth) {
			continue
		}
		if opts.MaxLevel > 0 && r.Level > opts.MaxLevel {
			continue
		}
		if tax == TaxKin {
			if opts.Kin == nil || r.ID != opts.Kin.ID {
				continue
			}
		} else if !tax.Matches(r) {
			continue
		}
		w := weight(r, opts.Depth)
		pool = append(pool, candidate{race: r, w: w})
		total += w
	}
	if total <= 0 {
		return nil, false
	}
	roll := rng.Intn(total)
	for _, c := range pool {
		if roll < c.w {
			return c.race, true
		}
		roll -= c.w
	}
	return pool[len(pool)-1].race, true
}

const defaultCloneDivisor = 3

// NextClonePct computes a freshly summoned/multiplied instance's dilution
// relative to its summoner (GLOSSARY "Clone%"): it approaches but never
// reaches 100, so a long chain asymptotically loses potency without ever
// fully bottoming out.
func NextClonePct(summoner *Instance, divisor int) float64 {
	if divisor <= 0 {
		divisor = defaultCloneDivisor
	}
	if summoner == nil {
		return 0
	}
	remaining := 100 - summoner.ClonePct
	return summoner.ClonePct + remaining/float64(divisor)
}

// NextSummonDepth is the chain-length counter IsClone thresholds against.
func NextSummonDepth(summoner *Instance) int {
	if summoner == nil {
		return 0
	}
	return summoner.SummonDepth + 1
}
