package command

import (
	"errors"

	"github.com/erasmund/depthkeep/internal/net/packet"
	"github.com/erasmund/depthkeep/internal/world"
)

var ErrUnknownOpcode = errors.New("command: unknown opcode")

// Decode captures a just-received client packet as a queued world.Command:
// the opcode plus every byte after it, left undecoded until the player's
// turn comes up (spec §4.7 "execute one queued input per player per
// their-turn", decoding deferred so a flooded input queue never blocks
// packet intake).
func Decode(r *packet.Reader) world.Command {
	return world.Command{
		Opcode: r.Opcode(),
		Args:   r.ReadBytes(r.Remaining()),
	}
}

// Execute runs one queued command against the world on behalf of p,
// returning a response payload for query opcodes (nil for action opcodes,
// which have no synchronous reply).
func Execute(w *world.World, p *world.Player, cmd world.Command) ([]byte, error) {
	r := packet.NewReader(append([]byte{cmd.Opcode}, cmd.Args...))
	switch Opcode(cmd.Opcode) {
	case OpMove:
		return nil, handleMove(w, p, r)
	case OpAttack:
		return nil, handleAttack(w, p, r)
	case OpPickup:
		return nil, handlePickup(w, p)
	case OpDrop:
		return nil, handleDrop(w, p, r)
	case OpCast:
		return nil, handleCast(w, p, r)
	case OpQueryArtifacts:
		return queryArtifacts(w, p), nil
	case OpQueryUniques:
		return queryUniques(w), nil
	case OpQueryOnline:
		return queryOnline(w), nil
	case OpQueryDungeons:
		return queryDungeons(w), nil
	case OpAdminSummon:
		return nil, handleAdminSummon(w, p, r)
	case OpAdminShutdown:
		return nil, handleAdminShutdown(w, p)
	default:
		return nil, ErrUnknownOpcode
	}
}
