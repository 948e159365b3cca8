package command

import (
	"errors"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/monster"
	"github.com/erasmund/depthkeep/internal/net/packet"
	"github.com/erasmund/depthkeep/internal/world"
)

var ErrNotAdmin = errors.New("command: admin level required")

// minAdminLevel gates the administrative surface (spec §6): any access
// level at or above this may summon with protected-cell override and
// request a graceful shutdown.
const minAdminLevel = 9

// handleAdminSummon places a race at the caller's feet, bypassing the
// normal protected-cell and terrain-match checks placement otherwise
// applies (spec §4.6 "Failure modes", admin Override).
func handleAdminSummon(w *world.World, p *world.Player, r *packet.Reader) error {
	if p.AdminLevel < minAdminLevel {
		return ErrNotAdmin
	}
	raceID := catalog.RaceID(r.ReadD())
	race := w.Catalog().Races.Get(raceID)
	if race == nil {
		return errors.New("command: unknown race id")
	}

	rec, ok := w.Levels.Lookup(p.Level)
	if !ok {
		return errors.New("command: no resident level")
	}

	rng := &systemRand{}
	inst, err := monster.PlaceOne(w.Monsters, w.Population, w.Catalog(), race, rec.Grid, p.Grid, monster.PlaceOpts{Override: true}, rng)
	if err != nil {
		return err
	}
	w.RegisterMonster(p.Level, inst)
	return nil
}

func handleAdminShutdown(w *world.World, p *world.Player) error {
	if p.AdminLevel < minAdminLevel {
		return ErrNotAdmin
	}
	w.RequestShutdown()
	return nil
}

// systemRand adapts this package's shared globalRNG to monster.Roller for the
// one-off admin summon roll (hp variance, sleep timer).
type systemRand struct{}

func (systemRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return globalRNG.Intn(n)
}
