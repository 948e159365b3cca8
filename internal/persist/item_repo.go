package persist

import (
	"context"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/core/ecs"
	"github.com/erasmund/depthkeep/internal/world"
)

// ItemRow is the persisted shape of a carried world.ItemInstance. Ground
// items are not persisted (spec §4.2 "stale level eviction" already decides
// their fate); only what a character carries survives a restart.
type ItemRow struct {
	ID         int32
	CharID     int32
	KindID     int32
	Count      int32
	EnchantLvl int16
	Charges    int16
	Identified bool
	ObjID      int32
}

type ItemRepo struct {
	db *DB
}

func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// LoadByCharID returns all carried items belonging to a character.
func (r *ItemRepo) LoadByCharID(ctx context.Context, charID int32) ([]ItemRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, char_id, kind_id, count, enchant_lvl, charges, identified, obj_id
		 FROM character_items WHERE char_id = $1`, charID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(
			&it.ID, &it.CharID, &it.KindID, &it.Count,
			&it.EnchantLvl, &it.Charges, &it.Identified, &it.ObjID,
		); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

// MaxObjID returns the largest persisted entity-pool index across all
// carried items, used on startup to seed the entity pool above every
// previously-issued id so a reloaded item never collides with a freshly
// allocated one.
func (r *ItemRepo) MaxObjID(ctx context.Context) (int32, error) {
	var maxID int32
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(obj_id), 0) FROM character_items`,
	).Scan(&maxID)
	return maxID, err
}

// ToInstance rehydrates a persisted row into a carried world.ItemInstance.
func (row ItemRow) ToInstance(owner world.PlayerID) *world.ItemInstance {
	return &world.ItemInstance{
		ID:         ecs.NewEntityID(uint32(row.ObjID), 0),
		KindID:     catalog.ItemKindID(row.KindID),
		Count:      int(row.Count),
		EnchantLvl: row.EnchantLvl,
		Charges:    row.Charges,
		Identified: row.Identified,
		Owner:      owner,
		Held:       true,
	}
}

// SaveInventory replaces all persisted items for a character with the
// contents of inv (delete + bulk insert, same shape as a character save).
func (r *ItemRepo) SaveInventory(ctx context.Context, charID int32, inv []*world.ItemInstance) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM character_items WHERE char_id = $1`, charID); err != nil {
		return err
	}

	for _, item := range inv {
		if _, err := tx.Exec(ctx,
			`INSERT INTO character_items (char_id, kind_id, count, enchant_lvl, charges, identified, obj_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			charID, int32(item.KindID), item.Count, item.EnchantLvl, item.Charges,
			item.Identified, int32(item.ID.Index()),
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
