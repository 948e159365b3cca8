package command

import (
	"errors"

	"github.com/erasmund/depthkeep/internal/net/packet"
	"github.com/erasmund/depthkeep/internal/world"
)

var (
	ErrNothingHere   = errors.New("command: no item on the ground here")
	ErrNotCarried    = errors.New("command: item not in inventory")
	ErrInventoryFull = errors.New("command: inventory is full")
)

const maxInventorySlots = 40

// handlePickup moves the item on the ground at the player's current cell
// into their inventory (spec §4.1 "ground-item list").
func handlePickup(w *world.World, p *world.Player) error {
	rec, ok := w.Levels.Lookup(p.Level)
	if !ok {
		return ErrNothingHere
	}
	link := rec.Grid.At(p.Grid).Item
	if !link.Valid() {
		return ErrNothingHere
	}
	if len(p.Inventory) >= maxInventorySlots {
		return ErrInventoryFull
	}

	item, ok := w.TakeGroundItem(p.Level, p.Grid)
	if !ok {
		return ErrNothingHere
	}
	item.Held = true
	item.Owner = p.ID
	p.Inventory = append(p.Inventory, item)
	return nil
}

// handleDrop moves one inventory slot (by index, the packet's first
// argument byte) onto the player's current cell.
func handleDrop(w *world.World, p *world.Player, r *packet.Reader) error {
	idx := int(r.ReadC())
	if idx < 0 || idx >= len(p.Inventory) {
		return ErrNotCarried
	}
	item := p.Inventory[idx]
	p.Inventory = append(p.Inventory[:idx], p.Inventory[idx+1:]...)

	item.Held = false
	item.Owner = 0
	w.PlaceGroundItem(p.Level, p.Grid, item)
	return nil
}
