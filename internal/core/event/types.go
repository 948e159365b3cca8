package event

import "github.com/erasmund/depthkeep/internal/core/ecs"

// Phase 1 event types (minimal set).

type PlayerLoggedIn struct {
	EntityID    ecs.EntityID
	AccountName string
}

type PlayerDisconnected struct {
	EntityID  ecs.EntityID
	SessionID uint64
}

// Disturbance fires when a viewer's visibility tracker reports a
// became-visible/became-hidden/los-lost transition on some target (spec
// §4.4 "On transitions ... enqueue a disturbance event"). ViewerID is the
// player who observed the change; TargetIndex is the raw visibility
// tracker key (monster or player namespace, see internal/world's
// monsterVisIndex/playerVisIndex).
type Disturbance struct {
	ViewerID    int32
	TargetIndex uint32
	Kind        byte
}

// MonsterDied fires once a monster's death has been fully resolved
// (population/unique bookkeeping, exp split, drops placed) so interested
// systems - achievements, quest hooks, logging - can react without being
// wired directly into internal/world.KillMonster.
type MonsterDied struct {
	RaceID int32
	Level  int
}
