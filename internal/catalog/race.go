package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RaceID identifies a monster race (static blueprint), grounded on the
// reference server's NpcTemplate loader (internal/data/npc.go) but shaped
// for the monster subsystem of spec §4.6 instead of an MMO NPC roster.
type RaceID int32

// RaceFlag bits are the movement / resistance / summon-affinity / alignment
// / type tags the restricted sampler and summon taxonomy filter on.
type RaceFlag uint64

const (
	RaceFlagUnique RaceFlag = 1 << iota
	RaceFlagMultiply
	RaceFlagAquatic
	RaceFlagFlying
	RaceFlagPassWall
	RaceFlagEvil
	RaceFlagGood
	RaceFlagUndead
	RaceFlagDemon
	RaceFlagDragon
	RaceFlagAnimal
	RaceFlagOrc
	RaceFlagGiant
	RaceFlagTroll
	RaceFlagElemental
	RaceFlagAngel
	RaceFlagEmptyMind  // never detected by telepathy
	RaceFlagWeirdMind  // stochastic telepathy detection
	RaceFlagColdBlood  // defeats infravision
	RaceFlagInvisible
	RaceFlagFriends   // spawns with FRIEND escort
	RaceFlagFriendsEscort
	RaceFlagEscort
)

func (f RaceFlag) Has(bit RaceFlag) bool { return f&bit != 0 }

// AttackMethod names how an attack slot connects (hit/touch/bite/claw/gaze/...).
type AttackMethod byte

const (
	MethodHit AttackMethod = iota
	MethodTouch
	MethodBite
	MethodClaw
	MethodSting
	MethodGaze
	MethodSpit
	MethodCrush
)

// AttackEffect names the damage/status effect an attack slot applies.
type AttackEffect byte

const (
	EffectDamage AttackEffect = iota
	EffectPoison
	EffectConfuse
	EffectFear
	EffectSleep
	EffectDrainExp
	EffectDrainStr
	EffectParalyze
	EffectBlind
)

// Attack is one of a race's (up to) four attack slots.
type Attack struct {
	Method AttackMethod
	Effect AttackEffect
	Dice   int
	Sides  int
}

// Race is the immutable blueprint for a monster race (spec §3 "Monster race").
type Race struct {
	ID           RaceID
	Name         string
	Glyph        rune
	Attr         byte
	Level        int16 // base monster level ("depth" the race is rated at)
	HitDice      int
	HitSides     int
	BaseSpeed    int16 // relative to normal=110
	BaseAC       int16
	Flags        RaceFlag
	Attacks      [4]Attack
	MinDepth     int
	MaxDepth     int // force-depth ceiling; 0 = no ceiling
	MaxNum       int // 1 == unique
	ExpPerLevel  int // exp value contribution per hit die, used by the curve in §4.6
	DropGood     bool
	DropGreat    bool
	DropCount    int
}

func (r *Race) Has(flag RaceFlag) bool { return r.Flags&flag != 0 }
func (r *Race) IsUnique() bool         { return r.MaxNum == 1 }

// raceYAML mirrors the reference server's flat NpcTemplate shape, a small
// concession to the external data-file format named in spec §6.
type raceYAML struct {
	ID        RaceID   `yaml:"id"`
	Name      string   `yaml:"name"`
	Glyph     string   `yaml:"glyph"`
	Level     int16    `yaml:"level"`
	HitDice   int      `yaml:"hit_dice"`
	HitSides  int      `yaml:"hit_sides"`
	Speed     int16    `yaml:"speed"`
	AC        int16    `yaml:"ac"`
	Flags     []string `yaml:"flags"`
	MinDepth  int      `yaml:"min_depth"`
	MaxDepth  int      `yaml:"max_depth"`
	MaxNum    int      `yaml:"max_num"`
	DropGood  bool     `yaml:"drop_good"`
	DropGreat bool     `yaml:"drop_great"`
	DropCount int      `yaml:"drop_count"`
}

var raceFlagNames = map[string]RaceFlag{
	"unique": RaceFlagUnique, "multiply": RaceFlagMultiply, "aquatic": RaceFlagAquatic,
	"flying": RaceFlagFlying, "pass_wall": RaceFlagPassWall, "evil": RaceFlagEvil,
	"good": RaceFlagGood, "undead": RaceFlagUndead, "demon": RaceFlagDemon,
	"dragon": RaceFlagDragon, "animal": RaceFlagAnimal, "orc": RaceFlagOrc,
	"giant": RaceFlagGiant, "troll": RaceFlagTroll, "elemental": RaceFlagElemental,
	"angel": RaceFlagAngel, "empty_mind": RaceFlagEmptyMind, "weird_mind": RaceFlagWeirdMind,
	"cold_blood": RaceFlagColdBlood, "invisible": RaceFlagInvisible,
	"friends": RaceFlagFriends, "friends_escort": RaceFlagFriendsEscort, "escort": RaceFlagEscort,
}

type raceFile struct {
	Races []raceYAML `yaml:"races"`
}

// RaceTable is the immutable, boot-loaded race catalog.
type RaceTable struct {
	byID map[RaceID]*Race
	all  []*Race
}

func LoadRaceTable(path string) (*RaceTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read race table %s: %w", path, err)
	}
	var f raceFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse race table %s: %w", path, err)
	}
	t := &RaceTable{byID: make(map[RaceID]*Race, len(f.Races))}
	for _, ry := range f.Races {
		r := &Race{
			ID: ry.ID, Name: ry.Name, Level: ry.Level,
			HitDice: ry.HitDice, HitSides: ry.HitSides, BaseSpeed: ry.Speed, BaseAC: ry.AC,
			MinDepth: ry.MinDepth, MaxDepth: ry.MaxDepth, MaxNum: ry.MaxNum,
			DropGood: ry.DropGood, DropGreat: ry.DropGreat, DropCount: ry.DropCount,
		}
		if len(ry.Glyph) > 0 {
			r.Glyph = rune(ry.Glyph[0])
		}
		for _, name := range ry.Flags {
			r.Flags |= raceFlagNames[name]
		}
		t.byID[r.ID] = r
		t.all = append(t.all, r)
	}
	return t, nil
}

func (t *RaceTable) Get(id RaceID) *Race { return t.byID[id] }
func (t *RaceTable) All() []*Race        { return t.all }
