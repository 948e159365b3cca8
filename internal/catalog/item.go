package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemKindID identifies an object kind (immutable blueprint, spec §3
// "Item instance & kind").
type ItemKindID int32

type ItemCategory byte

const (
	CategoryMisc ItemCategory = iota
	CategoryWeapon
	CategoryArmor
	CategoryScroll
	CategoryPotion
	CategoryWand
	CategoryFood
	CategoryGold
)

// ItemKind is the immutable blueprint shared by every instance of an object.
type ItemKind struct {
	ID         ItemKindID
	Name       string
	Category   ItemCategory
	Weight     int
	MaxStack   int
	BaseValue  int
	Artifact   bool // true artifact: singleton, exempt from normal item lifetime (spec §3 lifecycle)
	Dice       int  // weapon damage dice, or potion/wand effect magnitude
	Sides      int
	Charges    int // wand/staff starting charges
}

func (k *ItemKind) Stackable() bool { return k.MaxStack > 1 }

type itemKindYAML struct {
	ID        ItemKindID `yaml:"id"`
	Name      string     `yaml:"name"`
	Category  string     `yaml:"category"`
	Weight    int        `yaml:"weight"`
	MaxStack  int        `yaml:"max_stack"`
	BaseValue int        `yaml:"base_value"`
	Artifact  bool       `yaml:"artifact"`
	Dice      int        `yaml:"dice"`
	Sides     int        `yaml:"sides"`
	Charges   int        `yaml:"charges"`
}

var categoryNames = map[string]ItemCategory{
	"misc": CategoryMisc, "weapon": CategoryWeapon, "armor": CategoryArmor,
	"scroll": CategoryScroll, "potion": CategoryPotion, "wand": CategoryWand,
	"food": CategoryFood, "gold": CategoryGold,
}

type itemKindFile struct {
	Items []itemKindYAML `yaml:"items"`
}

// ItemKindTable is the immutable, boot-loaded object-kind catalog.
type ItemKindTable struct {
	byID map[ItemKindID]*ItemKind
}

func LoadItemKindTable(path string) (*ItemKindTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item kind table %s: %w", path, err)
	}
	var f itemKindFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item kind table %s: %w", path, err)
	}
	t := &ItemKindTable{byID: make(map[ItemKindID]*ItemKind, len(f.Items))}
	for _, iy := range f.Items {
		if iy.MaxStack == 0 {
			iy.MaxStack = 1
		}
		t.byID[iy.ID] = &ItemKind{
			ID: iy.ID, Name: iy.Name, Category: categoryNames[iy.Category],
			Weight: iy.Weight, MaxStack: iy.MaxStack, BaseValue: iy.BaseValue,
			Artifact: iy.Artifact, Dice: iy.Dice, Sides: iy.Sides, Charges: iy.Charges,
		}
	}
	return t, nil
}

func (t *ItemKindTable) Get(id ItemKindID) *ItemKind { return t.byID[id] }

// DropEntry is a single possible drop from a race (spec §4.6 "race-declared
// drops"), grounded on the reference server's mob drop table shape.
type DropEntry struct {
	ItemID ItemKindID `yaml:"item_id"`
	Min    int        `yaml:"min"`
	Max    int        `yaml:"max"`
	Chance int        `yaml:"chance"` // out of 1,000,000 (100% == 1_000_000)
}

type dropRaceYAML struct {
	RaceID RaceID      `yaml:"race_id"`
	Items  []DropEntry `yaml:"items"`
}

type dropFile struct {
	Drops []dropRaceYAML `yaml:"drops"`
}

// DropTable holds every race's declared drop list, indexed by race id.
type DropTable struct {
	byRace map[RaceID][]DropEntry
}

func LoadDropTable(path string) (*DropTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read drop table %s: %w", path, err)
	}
	var f dropFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse drop table %s: %w", path, err)
	}
	t := &DropTable{byRace: make(map[RaceID][]DropEntry, len(f.Drops))}
	for _, d := range f.Drops {
		t.byRace[d.RaceID] = d.Items
	}
	return t, nil
}

func (t *DropTable) Get(raceID RaceID) []DropEntry { return t.byRace[raceID] }
