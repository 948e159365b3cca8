package catalog

// Ego is a modifier blueprint layered atop a race (spec §9 "Polymorphism" /
// GLOSSARY "Ego"). Monster-with-ego is not inheritance; it is a pure function
// (race, *Ego) -> EffectiveRace computed once at spawn time (Apply below) and
// snapshotted onto the instance.
type Ego struct {
	ID          int32
	Name        string
	HPMult      float64 // multiplies hit dice count
	SpeedBonus  int16
	ACBonus     int16
	DamageMult  float64 // multiplies every attack's dice and sides directly (rounded, minimum 1)
	ExtraFlags  RaceFlag
}

// EffectiveRace is the derived, flattened blueprint a monster instance is
// actually spawned from: race plus an optional ego, collapsed into concrete
// numbers once so the rest of the system never has to re-apply the ego.
type EffectiveRace struct {
	Race       *Race
	Ego        *Ego
	HitDice    int
	HitSides   int
	Speed      int16
	AC         int16
	Attacks    [4]Attack
	Flags      RaceFlag
}

// Apply computes the EffectiveRace for a race plus an optional ego. Pure
// function, no allocation beyond the returned value.
func Apply(race *Race, ego *Ego) EffectiveRace {
	eff := EffectiveRace{
		Race: race, Ego: ego,
		HitDice: race.HitDice, HitSides: race.HitSides,
		Speed: race.BaseSpeed, AC: race.BaseAC,
		Attacks: race.Attacks, Flags: race.Flags,
	}
	if ego == nil {
		return eff
	}
	if ego.HPMult > 0 {
		eff.HitDice = int(float64(race.HitDice) * ego.HPMult)
		if eff.HitDice < 1 {
			eff.HitDice = 1
		}
	}
	eff.Speed += ego.SpeedBonus
	eff.AC += ego.ACBonus
	eff.Flags |= ego.ExtraFlags
	if ego.DamageMult > 0 {
		for i := range eff.Attacks {
			eff.Attacks[i].Dice = scaleRound(eff.Attacks[i].Dice, ego.DamageMult)
			eff.Attacks[i].Sides = scaleRound(eff.Attacks[i].Sides, ego.DamageMult)
		}
	}
	return eff
}

func scaleRound(v int, mult float64) int {
	scaled := int(float64(v)*mult + 0.5)
	if scaled < 1 && v > 0 {
		scaled = 1
	}
	return scaled
}
