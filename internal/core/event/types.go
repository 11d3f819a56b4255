package event

import (
	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/vector"
)

type PlayerJoined struct {
	EntityID ecs.EntityID
	Name     string
}

type PlayerDisconnected struct {
	EntityID  ecs.EntityID
	SessionID uint64
}

// PlayerDataChanged is emitted after a player's resources were changed and
// synced. Persistence uses it to mark the player dirty.
type PlayerDataChanged struct {
	EntityID ecs.EntityID
	Snapshot playerdata.Snapshot
}

type SpellcardDeclared struct {
	User    ecs.EntityID
	Target  ecs.EntityID
	Carrier ecs.EntityID
	Card    string
	First   bool
}

// LifeLost is emitted when a lethal hit was absorbed by a spare life.
type LifeLost struct {
	EntityID ecs.EntityID
	Pos      vector.Vector3
	Power    float32
}

// MobRemoved is emitted once per mob death, before its entity is destroyed.
type MobRemoved struct {
	EntityID ecs.EntityID
	Name     string
	Killer   ecs.EntityID // zero when the mob died on its own
	Pos      vector.Vector3
}
