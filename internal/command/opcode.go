// Package command implements the L8 command & query surface: decoding one
// queued client action into a world.Command, executing it against the
// world state on the owning player's turn, and the read-only knowledge
// queries (artifact list, unique list, online-player list, dungeon list)
// spec §2/§6 describe. Grounded on the reference server's opcode-keyed
// packet handler table (internal/net/packet.Registry), but split from the
// network layer: internal/net only decodes bytes into a world.Command and
// queues it, never mutates World directly (spec §5 "Concurrency & resource
// model").
package command

// Opcode names one client-issuable action. Values are this project's own;
// they do not need to match any external protocol numbering.
type Opcode byte

const (
	OpMove Opcode = iota + 1
	OpAttack
	OpPickup
	OpDrop
	OpCast
	OpQueryArtifacts
	OpQueryUniques
	OpQueryOnline
	OpQueryDungeons
	OpAdminSummon
	OpAdminShutdown
)
