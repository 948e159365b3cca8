package monster

import "math"

// ExpForLevel is the per-race experience curve threshold to reach level+1,
// proportional to the race's hit dice (spec §4.6 "Scaling & experience").
// Resolved Open Question (spec §9 "softexp vs softlev"): this package
// implements the "softlev" variant — the curve scales hit points and
// per-attack damage directly off levels gained, rather than re-deriving a
// virtual experience total — matching original_source/src/server/
// monster2.c's monster_death formula, the concrete precedent spec §9 names.
func ExpForLevel(hitDice, level int) int64 {
	base := int64(hitDice) * 12
	return base * int64(level+1) * int64(level+1) / 2
}

// GainExp adds amount to the monster's experience and applies every level
// gained via LevelUp. Returns the number of levels gained.
func GainExp(m *Instance, hitDice int, amount int64, rng Roller) int {
	if m.IsClone(cloneExpThreshold) {
		return 0 // spec §4.6: clones yield/gain no further credit
	}
	m.Exp += amount
	gained := 0
	for ExpForLevel(hitDice, m.Level) <= m.Exp {
		LevelUp(m, rng)
		gained++
		if gained > 200 {
			break // runaway guard; no real curve needs this many steps per call
		}
	}
	return gained
}

const cloneExpThreshold = 100 // fixed threshold GainExp passes to IsClone; not read from cfg.CloneSummonCap

// LevelUp applies one level's worth of stat growth (spec §4.6 "Scaling &
// experience"): additive hp proportional to hit dice, a small capped
// chance at +speed, a chance to thicken AC, and sqrt-based damage scaling
// applied symmetrically to every attack's dice and sides.
func LevelUp(m *Instance, rng Roller) {
	m.Level++
	m.LevelsGained++

	hpGain := 2 + rng.Intn(3)
	m.MaxHP += hpGain
	m.HP += hpGain

	if rng.Intn(10) == 0 && m.Speed < m.BaseSpeed+20 {
		m.Speed++
	}
	if rng.Intn(6) == 0 {
		m.AC++
	}

	for i := range m.Attacks {
		d, s := ScaleAttack(m.OrigAttacks[i].Dice, m.OrigAttacks[i].Sides, m.LevelsGained)
		m.Attacks[i].Dice = d
		m.Attacks[i].Sides = s
	}
	capTotalDamage(m)
}

// capTotalDamage enforces the per-monster total-average-damage cap (spec
// §4.6) by uniformly shrinking every attack once the sum of per-attack
// averages crosses totalAvgCapBase.
func capTotalDamage(m *Instance) {
	total := 0.0
	for _, a := range m.Attacks {
		if a.Dice > 0 && a.Sides > 0 {
			total += float64(a.Dice) * (float64(a.Sides) + 1) / 2
		}
	}
	if total <= totalAvgCapBase || total == 0 {
		return
	}
	scale := totalAvgCapBase / total
	for i := range m.Attacks {
		if m.Attacks[i].Dice <= 0 {
			continue
		}
		nd := int(float64(m.Attacks[i].Dice)*scale + 0.5)
		if nd < 1 {
			nd = 1
		}
		m.Attacks[i].Dice = nd
	}
}

// perAttackAvgCap and totalAvgCap bound how far ScaleAttack may inflate
// damage (spec §4.6: "respecting per-attack sanity caps (both a per-attack
// average damage cap and a total-average-damage per-monster cap)").
const (
	perAttackAvgCap = 60.0
	totalAvgCapBase = 180.0
)

// ScaleAttack grows one attack's dice/sides by sqrt(1 + f) where f is a
// smooth function of levels gained, applied symmetrically to dice and
// sides (spec §4.6, and spec §9's Open Question resolution: the sqrt
// multiplier is applied to both dice and sides, not just one).
func ScaleAttack(dice, sides, levelsGained int) (int, int) {
	if dice <= 0 || sides <= 0 {
		return dice, sides
	}
	f := float64(levelsGained) / 10.0
	mult := math.Sqrt(1 + f)

	nd := int(float64(dice)*mult + 0.5)
	ns := int(float64(sides)*mult + 0.5)
	if nd < dice {
		nd = dice
	}
	if ns < sides {
		ns = sides
	}

	avg := float64(nd) * (float64(ns) + 1) / 2
	if avg > perAttackAvgCap {
		scale := perAttackAvgCap / avg
		nd = int(float64(nd)*scale + 0.5)
		ns = int(float64(ns)*scale + 0.5)
		if nd < 1 {
			nd = 1
		}
		if ns < 1 {
			ns = 1
		}
	}
	return nd, ns
}

// TotalAverageDamage sums the average damage of every attack slot, the
// per-monster value the total-average-damage cap in spec §4.6 bounds.
func TotalAverageDamage(attacks [4]struct{ Dice, Sides int }) float64 {
	total := 0.0
	for _, a := range attacks {
		if a.Dice > 0 && a.Sides > 0 {
			total += float64(a.Dice) * (float64(a.Sides) + 1) / 2
		}
	}
	return total
}
