package tick

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/erasmund/depthkeep/internal/core/event"
	"github.com/erasmund/depthkeep/internal/core/system"
	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/levelstore"
	"github.com/erasmund/depthkeep/internal/monster"
	"github.com/erasmund/depthkeep/internal/visibility"
	"github.com/erasmund/depthkeep/internal/world"
)

// VisibilitySystem recomputes every connected player's visible set once
// per tick and raises a Disturbance event on each transition (spec §4.4).
// It runs in PhasePostUpdate, after monster AI and combat have moved
// things around but before PhaseOutput builds outgoing packets.
type VisibilitySystem struct {
	w   *world.World
	bus *event.Bus
	log *zap.Logger
	rng *rand.Rand
}

func NewVisibilitySystem(w *world.World, bus *event.Bus, log *zap.Logger) *VisibilitySystem {
	return &VisibilitySystem{w: w, bus: bus, log: log, rng: rand.New(rand.NewSource(1))}
}

func (s *VisibilitySystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *VisibilitySystem) Update(time.Duration) {
	s.w.Levels.All(func(rec *levelstore.Record) {
		residents := s.playersOn(rec.ID)
		if len(residents) == 0 {
			return
		}

		for _, p := range residents {
			if p.Vis == nil {
				continue
			}
			viewer := s.w.ViewerFor(p)

			s.w.EachMonsterOnGrid(rec.Grid, func(_ grid.Coord, inst *monster.Instance) {
				target := s.w.MonsterTarget(inst, rec.Grid)
				next := visibility.Resolve(viewer, target, s.rng)
				s.emit(p, target.EntityIndex, p.Vis.Update(target.EntityIndex, next))
			})

			for _, other := range residents {
				if other.ID == p.ID {
					continue
				}
				target := s.w.PlayerTarget(other, rec.Grid)
				next := visibility.Resolve(viewer, target, s.rng)
				s.emit(p, target.EntityIndex, p.Vis.Update(target.EntityIndex, next))
			}
		}
	})
}

func (s *VisibilitySystem) playersOn(id world.LevelID) []*world.Player {
	var out []*world.Player
	for _, p := range s.w.Players {
		if p.Level == id {
			out = append(out, p)
		}
	}
	return out
}

func (s *VisibilitySystem) emit(p *world.Player, targetIndex uint32, trans visibility.TransitionKind) {
	if trans == visibility.NoTransition || p.SuppressDisturb {
		return
	}
	event.Emit(s.bus, event.Disturbance{
		ViewerID:    int32(p.ID),
		TargetIndex: targetIndex,
		Kind:        byte(trans),
	})
}
