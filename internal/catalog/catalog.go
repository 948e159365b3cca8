package catalog

import "fmt"

// Catalog bundles every static data table the world loads once at boot and
// never mutates afterward (spec §2 L0 "Feature & race catalog"). Components
// downstream only ever hold a *Catalog and look things up by id; nothing
// below this layer touches YAML.
type Catalog struct {
	Features     *FeatureTable
	Races        *RaceTable
	Egos         map[int32]*Ego
	Vaults       *VaultTable
	DungeonTypes *DungeonTypeTable
	Items        *ItemKindTable
	Drops        *DropTable
}

// DataPaths names the YAML files the data-file loader reads at boot, one per
// table. Races/Items/Drops have no built-in defaults: unlike terrain, a real
// deployment's monster and item rosters have to come from a data file. Load
// does not read the Vaults and DungeonTypes paths.
type DataPaths struct {
	Races        string
	Vaults       string
	DungeonTypes string
	Items        string
	Drops        string
}

// Load builds a Catalog from disk. Terrain features fall back to
// DefaultFeatureTable when FeaturesPath is empty.
func Load(featuresPath string, paths DataPaths) (*Catalog, error) {
	c := &Catalog{Egos: make(map[int32]*Ego)}

	if featuresPath == "" {
		c.Features = DefaultFeatureTable()
	} else {
		ft, err := LoadFeatureTable(featuresPath)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		c.Features = ft
	}

	races, err := LoadRaceTable(paths.Races)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c.Races = races

	items, err := LoadItemKindTable(paths.Items)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c.Items = items

	drops, err := LoadDropTable(paths.Drops)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c.Drops = drops

	// Vaults and dungeon types are not loaded from disk: both tables start
	// empty, so generation places no vaults and no dungeon id resolves to a
	// dungeon-type record.
	c.Vaults = NewVaultTable(nil)
	c.DungeonTypes = NewDungeonTypeTable(nil)

	return c, nil
}

func (c *Catalog) EffectiveRace(raceID RaceID, egoID int32) EffectiveRace {
	race := c.Races.Get(raceID)
	if race == nil {
		return EffectiveRace{}
	}
	var ego *Ego
	if egoID != 0 {
		ego = c.Egos[egoID]
	}
	return Apply(race, ego)
}
