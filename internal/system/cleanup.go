package system

import (
	"time"

	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/world"
)

// CleanupSystem recycles the ids of entities removed during the tick.
// Stores drop an entity the moment it dies; only the id waits for here.
type CleanupSystem struct {
	world *world.State
	freed int
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.freed += s.world.ECS().Flush()
}

// Freed returns how many ids have been recycled so far.
func (s *CleanupSystem) Freed() int { return s.freed }
