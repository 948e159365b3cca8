package command

import (
	"errors"

	"github.com/erasmund/depthkeep/internal/grid"
	"github.com/erasmund/depthkeep/internal/net/packet"
	"github.com/erasmund/depthkeep/internal/world"
)

var ErrBlocked = errors.New("command: destination cell is blocked")

// readDelta decodes the one-step (dx, dy) direction every movement and
// attack opcode shares, each a signed byte in [-1, 1].
func readDelta(r *packet.Reader) (int, int) {
	dx := int(int8(r.ReadC()))
	dy := int(int8(r.ReadC()))
	if dx < -1 {
		dx = -1
	} else if dx > 1 {
		dx = 1
	}
	if dy < -1 {
		dy = -1
	} else if dy > 1 {
		dy = 1
	}
	return dx, dy
}

func handleMove(w *world.World, p *world.Player, r *packet.Reader) error {
	dx, dy := readDelta(r)
	dest := grid.Coord{X: p.Grid.X + dx, Y: p.Grid.Y + dy}

	rec, ok := w.Levels.Lookup(p.Level)
	if !ok {
		return ErrBlocked
	}
	if !rec.Grid.InBounds(dest) {
		return ErrBlocked
	}
	if !grid.CellEmpty(rec.Grid, w.Catalog().Features, dest) {
		return ErrBlocked
	}

	return w.StepOnto(p, dest)
}
