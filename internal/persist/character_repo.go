package persist

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// CharacterRow is the persisted shape of a world.Player (spec §3 "Player
// instance"). internal/world never imports internal/persist, so the two
// field sets are kept structurally parallel by hand rather than sharing a
// type: a repo layer that imported world.Player directly would let a save
// silently carry transient state (Input queue, Vis tracker, Session id).
type CharacterRow struct {
	ID          int32
	AccountName string
	Name        string

	CharLevel int16
	Exp       int64
	HP        int
	MaxHP     int
	MP        int
	MaxMP     int
	AC        int16
	Speed     int16
	Gold      int64

	DungeonID int32
	Depth     int32
	GridX     int32
	GridY     int32

	StaticPinDungeonID int32
	StaticPinDepth     int32

	AdminLevel int16
	Guild      int32

	Skills       map[int32]int16
	KnownUniques []int32

	CreatedAt time.Time
	DeletedAt *time.Time
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func (r *CharacterRepo) LoadByAccount(ctx context.Context, accountName string) ([]CharacterRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, account_name, name,
		        char_level, exp, hp, max_hp, mp, max_mp, ac, speed, gold,
		        dungeon_id, depth, grid_x, grid_y,
		        static_pin_dungeon_id, static_pin_depth,
		        admin_level, guild, skills, known_uniques, created_at, deleted_at
		 FROM characters
		 WHERE account_name = $1 AND deleted_at IS NULL
		 ORDER BY id`, accountName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CharacterRow
	for rows.Next() {
		c, err := scanCharacterRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *CharacterRepo) LoadByName(ctx context.Context, name string) (*CharacterRow, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, account_name, name,
		        char_level, exp, hp, max_hp, mp, max_mp, ac, speed, gold,
		        dungeon_id, depth, grid_x, grid_y,
		        static_pin_dungeon_id, static_pin_depth,
		        admin_level, guild, skills, known_uniques, created_at, deleted_at
		 FROM characters WHERE name = $1 AND deleted_at IS NULL`, name,
	)
	c, err := scanCharacterRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacterRow(row rowScanner) (CharacterRow, error) {
	var c CharacterRow
	var skillsRaw, uniquesRaw []byte
	err := row.Scan(
		&c.ID, &c.AccountName, &c.Name,
		&c.CharLevel, &c.Exp, &c.HP, &c.MaxHP, &c.MP, &c.MaxMP, &c.AC, &c.Speed, &c.Gold,
		&c.DungeonID, &c.Depth, &c.GridX, &c.GridY,
		&c.StaticPinDungeonID, &c.StaticPinDepth,
		&c.AdminLevel, &c.Guild, &skillsRaw, &uniquesRaw, &c.CreatedAt, &c.DeletedAt,
	)
	if err != nil {
		return c, err
	}
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &c.Skills); err != nil {
			return c, err
		}
	}
	if len(uniquesRaw) > 0 {
		if err := json.Unmarshal(uniquesRaw, &c.KnownUniques); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (r *CharacterRepo) Create(ctx context.Context, c *CharacterRow) error {
	skills, err := json.Marshal(nonNilSkills(c.Skills))
	if err != nil {
		return err
	}
	uniques, err := json.Marshal(nonNilUniques(c.KnownUniques))
	if err != nil {
		return err
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (
			account_name, name,
			char_level, exp, hp, max_hp, mp, max_mp, ac, speed, gold,
			dungeon_id, depth, grid_x, grid_y,
			static_pin_dungeon_id, static_pin_depth,
			admin_level, guild, skills, known_uniques
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21
		) RETURNING id`,
		c.AccountName, c.Name,
		c.CharLevel, c.Exp, c.HP, c.MaxHP, c.MP, c.MaxMP, c.AC, c.Speed, c.Gold,
		c.DungeonID, c.Depth, c.GridX, c.GridY,
		c.StaticPinDungeonID, c.StaticPinDepth,
		c.AdminLevel, c.Guild, skills, uniques,
	).Scan(&c.ID)
}

func (r *CharacterRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM characters WHERE name = $1)`, name,
	).Scan(&exists)
	return exists, err
}

func (r *CharacterRepo) CountByAccount(ctx context.Context, accountName string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM characters WHERE account_name = $1 AND deleted_at IS NULL`,
		accountName,
	).Scan(&count)
	return count, err
}

func (r *CharacterRepo) SoftDelete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET deleted_at = NOW() WHERE name = $1 AND deleted_at IS NULL`,
		name,
	)
	return err
}

func (r *CharacterRepo) HardDelete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM characters WHERE name = $1`, name)
	return err
}

// CleanExpiredDeletions removes soft-deleted characters older than grace.
func (r *CharacterRepo) CleanExpiredDeletions(ctx context.Context, accountName string, grace time.Duration) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM characters WHERE account_name = $1 AND deleted_at IS NOT NULL AND deleted_at <= NOW() - $2::interval`,
		accountName, grace.String(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SavePosition persists a player's world position, used on each level
// transition and periodic autosave (spec §3 "Lifecycle").
func (r *CharacterRepo) SavePosition(ctx context.Context, name string, dungeonID, depth, gridX, gridY int32) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET dungeon_id = $1, depth = $2, grid_x = $3, grid_y = $4 WHERE name = $5`,
		dungeonID, depth, gridX, gridY, name,
	)
	return err
}

// SaveCharacter persists every mutable field of a character (full autosave
// or disconnect save).
func (r *CharacterRepo) SaveCharacter(ctx context.Context, c *CharacterRow) error {
	skills, err := json.Marshal(nonNilSkills(c.Skills))
	if err != nil {
		return err
	}
	uniques, err := json.Marshal(nonNilUniques(c.KnownUniques))
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx,
		`UPDATE characters SET
			char_level = $1, exp = $2, hp = $3, max_hp = $4, mp = $5, max_mp = $6, ac = $7,
			speed = $8, gold = $9,
			dungeon_id = $10, depth = $11, grid_x = $12, grid_y = $13,
			static_pin_dungeon_id = $14, static_pin_depth = $15,
			admin_level = $16, guild = $17, skills = $18, known_uniques = $19
		WHERE name = $20`,
		c.CharLevel, c.Exp, c.HP, c.MaxHP, c.MP, c.MaxMP, c.AC,
		c.Speed, c.Gold,
		c.DungeonID, c.Depth, c.GridX, c.GridY,
		c.StaticPinDungeonID, c.StaticPinDepth,
		c.AdminLevel, c.Guild, skills, uniques,
		c.Name,
	)
	return err
}

func nonNilSkills(m map[int32]int16) map[int32]int16 {
	if m == nil {
		return map[int32]int16{}
	}
	return m
}

func nonNilUniques(s []int32) []int32 {
	if s == nil {
		return []int32{}
	}
	return s
}
