package system

import (
	"time"

	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/world"
)

// CarrierSystem runs declared spellcards. A carrier whose user left the
// world or whose card ran out is removed and its end is announced.
// Phase 2 (Update), after PhaseSystem declared this tick's cards.
type CarrierSystem struct {
	world *world.State
	fired int // danmaku spawned last tick
}

func NewCarrierSystem(ws *world.State) *CarrierSystem {
	return &CarrierSystem{world: ws}
}

func (s *CarrierSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CarrierSystem) Update(_ time.Duration) {
	var done []*spellcard.Carrier
	s.fired = 0
	s.world.EachCarrier(func(c *spellcard.Carrier) {
		user := c.User.ID()
		if _, ok := s.world.Actor(user); !ok {
			done = append(done, c)
			return
		}
		side := world.SideEnemy
		if _, ok := s.world.Player(user); ok {
			side = world.SidePlayer
		}
		alive, fired := c.Tick(s.world.SinkFor(user, side))
		s.fired += fired
		if !alive {
			done = append(done, c)
		}
	})
	for _, c := range done {
		s.world.RemoveCarrier(c.ID)
		s.world.AnnounceEnd(c.User.ID(), c.Card)
		if c.Target != nil && c.Target.ID() != c.User.ID() {
			s.world.AnnounceEnd(c.Target.ID(), c.Card)
		}
	}
}

// Fired is the number of danmaku spawned during the last update.
func (s *CarrierSystem) Fired() int { return s.fired }
