package system

import (
	"time"

	"github.com/danmakucore/server/internal/core/event"
	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/world"
)

// lifeLostDrops is how many power items a player scatters on losing a life.
const lifeLostDrops = 5

// PickupSystem moves falling data and lets players collect it. Phase 3
// (PostUpdate).
type PickupSystem struct {
	world     *world.State
	collected int
}

// NewPickupSystem subscribes to LifeLost so a hit player scatters power
// items around where it was hit.
func NewPickupSystem(ws *world.State, ttl int) *PickupSystem {
	s := &PickupSystem{world: ws}
	world.Subscribe(ws, func(e event.LifeLost) {
		if e.Power > 0 {
			ws.ScatterPickups(playerdata.Power, lifeLostDrops, e.Pos, ttl)
		}
	})
	return s
}

func (s *PickupSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *PickupSystem) Update(_ time.Duration) {
	s.collected += s.world.TickFallingData()
}

// Collected is the number of pickups collected since startup.
func (s *PickupSystem) Collected() int { return s.collected }
