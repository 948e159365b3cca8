package catalog

// RuleMode is the boolean combinator a dungeon-type spawn rule applies
// across its flag mask (spec §4.6 "Dungeon-type rule engine").
type RuleMode byte

const (
	RuleNone RuleMode = iota
	RuleAnd
	RuleOr
	RuleNand
	RuleNor
)

// SpawnRule is (mode, flag mask, 5-glyph allow list). One rule id is sampled
// per spawn from the dungeon's percentage-keyed table, giving stable
// per-dungeon flavour while allowing exceptions.
type SpawnRule struct {
	Mode       RuleMode
	FlagMask   RaceFlag
	AllowGlyph [5]rune // 0 rune = unused slot
}

// Allows reports whether a race satisfies this rule.
func (r SpawnRule) Allows(race *Race) bool {
	glyphOK := true
	anyGlyph := false
	for _, g := range r.AllowGlyph {
		if g == 0 {
			continue
		}
		anyGlyph = true
		if race.Glyph == g {
			glyphOK = true
			break
		}
		glyphOK = false
	}
	if anyGlyph && !glyphOK {
		return false
	}
	switch r.Mode {
	case RuleNone:
		return true
	case RuleAnd:
		return race.Flags&r.FlagMask == r.FlagMask
	case RuleOr:
		return race.Flags&r.FlagMask != 0
	case RuleNand:
		return race.Flags&r.FlagMask != r.FlagMask
	case RuleNor:
		return race.Flags&r.FlagMask == 0
	default:
		return true
	}
}

// DungeonType is the per-dungeon generation and population ruleset (spec §3
// "Dungeon handle" dungeon-type rules, §4.6 rule engine).
type DungeonType struct {
	ID            int32
	Name          string
	BaseDepth     int
	MaxDepth      int
	Flags         DungeonFlag
	AllowGlyphs   string // allowed monster glyphs
	ExcludeGlyphs string
	Rules         [100]SpawnRule // percentage-keyed: index 0..99
	NastyDiv      int            // 1/NASTY roll divisor, spec SUPPLEMENTED FEATURES
	OutOfDepthCap int            // max depth boost from a nasty roll
	// QuestDepth is the one depth within this dungeon handle, if any, that
	// is a quest level: spec §4.5 Stage 6 "Quest levels never place down
	// stairs". 0 means this dungeon has no quest level.
	QuestDepth int
}

// DungeonFlag mirrors spec §3 dungeon handle bit set.
type DungeonFlag uint16

const (
	DungeonRandom DungeonFlag = 1 << iota
	DungeonDeleted
	DungeonNoMap
	DungeonNoMagicMap
)

func (d *DungeonType) Has(flag DungeonFlag) bool { return d.Flags&flag != 0 }

// PickRule samples one spawn rule by percentage roll, in [0,100).
func (d *DungeonType) PickRule(roll int) SpawnRule {
	if roll < 0 {
		roll = 0
	}
	if roll > 99 {
		roll = 99
	}
	return d.Rules[roll]
}

// LevelFlag mirrors spec §3 level record per-level flags.
type LevelFlag uint16

const (
	LevelNoTeleport LevelFlag = 1 << iota
	LevelNoMagic
	LevelNoGeno
	LevelNoMap
	LevelNoMagicMap
	LevelNoDestroy
	LevelNoStair
	LevelNoGhost
)

type DungeonTypeTable struct {
	byID map[int32]*DungeonType
}

func NewDungeonTypeTable(types []*DungeonType) *DungeonTypeTable {
	t := &DungeonTypeTable{byID: make(map[int32]*DungeonType, len(types))}
	for _, dt := range types {
		t.byID[dt.ID] = dt
	}
	return t
}

func (t *DungeonTypeTable) Get(id int32) *DungeonType { return t.byID[id] }
