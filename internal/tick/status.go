package tick

import (
	"time"

	"github.com/erasmund/depthkeep/internal/core/system"
	"github.com/erasmund/depthkeep/internal/monster"
	"github.com/erasmund/depthkeep/internal/world"
)

// decrStatus counts down every timer on a single status block, shared by
// both the monster and player passes below.
func decrStatus(st *monster.Status) {
	decrCountdown(&st.Sleep)
	decrCountdown(&st.Stun)
	decrCountdown(&st.Fear)
	decrCountdown(&st.Confusion)
}

// regenInterval is how many ticks pass between natural HP/MP regeneration
// pulses, matching the reference server's every-few-turns regen cadence
// rather than crediting a fraction every single tick.
const regenInterval = 10

// StatusSystem counts down monster status timers (sleep/stun/fear/
// confusion) and applies periodic player and monster regeneration (spec
// §3 "status timers", §4.7 "periodic effects"). Runs in PhasePostUpdate,
// after combat/AI have had a chance to apply new statuses this tick.
type StatusSystem struct {
	w       *world.World
	counter int
}

func NewStatusSystem(w *world.World) *StatusSystem {
	return &StatusSystem{w: w}
}

func (s *StatusSystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *StatusSystem) Update(time.Duration) {
	s.w.EachMonster(func(inst *monster.Instance) {
		decrStatus(&inst.Status)
	})
	s.w.EachPlayerStatus(func(_ world.PlayerID, st *monster.Status) {
		decrStatus(st)
	})

	s.counter++
	if s.counter < regenInterval {
		return
	}
	s.counter = 0

	for _, p := range s.w.Players {
		regen(&p.HP, p.MaxHP)
		regen(&p.MP, p.MaxMP)
	}
	s.w.EachMonster(func(inst *monster.Instance) {
		regen(&inst.HP, inst.MaxHP)
	})
}

func decrCountdown(field *int) {
	if *field > 0 {
		*field--
	}
}

// regen restores one point of a capped resource, the reference server's
// slow natural-regen tick rather than a percentage-of-max formula.
func regen(cur *int, max int) {
	if *cur > 0 && *cur < max {
		*cur++
	}
}
