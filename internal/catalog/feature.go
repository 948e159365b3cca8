package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeatureID identifies a terrain feature (floor, wall, door, rubble, ...).
type FeatureID int32

// FeatureFlag bits describe how a feature behaves for walkability, light
// and destructibility checks. Kept separate from cell flags (grid.CellFlag):
// a feature flag is a property of the terrain *kind*, a cell flag is a
// property of one specific cell.
type FeatureFlag uint32

const (
	FeatWalkable FeatureFlag = 1 << iota
	FeatPermanent            // boundary / vault outer shell: never destroyed, never dug
	FeatWall
	FeatDoor
	FeatSecret
	FeatStairsUp
	FeatStairsDown
	FeatLit // permanently lit (shops, lava)
	FeatDiggable
	FeatTreasure // magma/quartz vein that may carry gold
)

// Feature is the immutable blueprint for a terrain id.
type Feature struct {
	ID    FeatureID
	Name  string
	Glyph string
	Flags FeatureFlag
}

// featureYAML is the on-disk shape; Flags there are names, resolved to bits
// on load.
type featureYAML struct {
	ID    FeatureID `yaml:"id"`
	Name  string    `yaml:"name"`
	Glyph string    `yaml:"glyph"`
	Flags []string  `yaml:"flags"`
}

func (f Feature) Has(flag FeatureFlag) bool { return f.Flags&flag != 0 }

// FeatureTable is the immutable, boot-loaded terrain catalog (spec §2 L0).
type FeatureTable struct {
	byID map[FeatureID]*Feature
}

var featureFlagNames = map[string]FeatureFlag{
	"walkable":   FeatWalkable,
	"permanent":  FeatPermanent,
	"wall":       FeatWall,
	"door":       FeatDoor,
	"secret":     FeatSecret,
	"stairs_up":  FeatStairsUp,
	"stairs_down": FeatStairsDown,
	"lit":        FeatLit,
	"diggable":   FeatDiggable,
	"treasure":   FeatTreasure,
}

type featureFile struct {
	Features []featureYAML `yaml:"features"`
}

// LoadFeatureTable reads the terrain feature catalog from a YAML data file.
// This is the textual data-file parser named as an external collaborator in
// spec §6; the core only consumes the resulting table.
func LoadFeatureTable(path string) (*FeatureTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature table %s: %w", path, err)
	}
	var f featureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse feature table %s: %w", path, err)
	}
	t := &FeatureTable{byID: make(map[FeatureID]*Feature, len(f.Features))}
	for _, raw := range f.Features {
		feat := &Feature{ID: raw.ID, Name: raw.Name, Glyph: raw.Glyph}
		for _, name := range raw.Flags {
			feat.Flags |= featureFlagNames[name]
		}
		t.byID[feat.ID] = feat
	}
	return t, nil
}

// DefaultFeatureTable returns the built-in terrain set used when no data
// file is configured (tests, embedded defaults).
func DefaultFeatureTable() *FeatureTable {
	t := &FeatureTable{byID: make(map[FeatureID]*Feature, 16)}
	add := func(id FeatureID, name string, flags FeatureFlag) {
		t.byID[id] = &Feature{ID: id, Name: name, Flags: flags}
	}
	add(FeatGranite, "granite wall", FeatWall)
	add(FeatPermWall, "permanent wall", FeatWall|FeatPermanent)
	add(FeatFloor, "floor", FeatWalkable)
	add(FeatOuterWall, "outer wall", FeatWall)
	add(FeatInnerWall, "inner wall", FeatWall)
	add(FeatMagma, "magma vein", FeatWall|FeatDiggable)
	add(FeatMagmaTreasure, "magma vein with treasure", FeatWall|FeatDiggable|FeatTreasure)
	add(FeatQuartz, "quartz vein", FeatWall|FeatDiggable)
	add(FeatQuartzTreasure, "quartz vein with treasure", FeatWall|FeatDiggable|FeatTreasure)
	add(FeatRubble, "rubble", FeatWalkable|FeatDiggable)
	add(FeatDoorClosed, "closed door", FeatWalkable|FeatDoor)
	add(FeatDoorOpen, "open door", FeatWalkable|FeatDoor)
	add(FeatDoorSecret, "secret door", FeatWall|FeatSecret)
	add(FeatDoorLocked, "locked door", FeatWall|FeatDoor)
	add(FeatStairUp, "stairs up", FeatWalkable|FeatStairsUp)
	add(FeatStairDown, "stairs down", FeatWalkable|FeatStairsDown)
	add(FeatWater, "water", FeatWalkable)
	add(FeatLava, "lava", FeatLit)
	return t
}

func (t *FeatureTable) Get(id FeatureID) *Feature { return t.byID[id] }

// Built-in feature ids used by the generator and grid predicates.
const (
	FeatGranite FeatureID = iota
	FeatPermWall
	FeatFloor
	FeatOuterWall
	FeatInnerWall
	FeatMagma
	FeatMagmaTreasure
	FeatQuartz
	FeatQuartzTreasure
	FeatRubble
	FeatDoorClosed
	FeatDoorOpen
	FeatDoorSecret
	FeatDoorLocked
	FeatStairUp
	FeatStairDown
	FeatWater
	FeatLava
)
