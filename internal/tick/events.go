package tick

import (
	"time"

	"github.com/erasmund/depthkeep/internal/core/event"
	"github.com/erasmund/depthkeep/internal/core/system"
)

// EventDispatchSystem rotates the event bus's double buffer and delivers
// last tick's events to their subscribers, the bus's documented "emitted in
// tick N, readable in tick N+1" contract. Runs first in PhasePreUpdate, so
// every other PreUpdate/Update system sees fresh deliveries before doing
// its own work.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() system.Phase { return system.PhasePreUpdate }

func (s *EventDispatchSystem) Update(time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
