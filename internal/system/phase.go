package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/event"
	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/data"
	"github.com/danmakucore/server/internal/phase"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/vector"
	"github.com/danmakucore/server/internal/world"
)

// PhaseSystem picks targets for mobs and ticks their phase managers. Dead
// mobs drop their loot and leave the world. Phase 2 (Update).
type PhaseSystem struct {
	world      *world.State
	bosses     *data.BossTable
	fallingTTL int
	log        *zap.Logger
}

// NewPhaseSystem creates the phase system. bosses may be nil, in which case
// no falling data is scattered on death.
func NewPhaseSystem(ws *world.State, bosses *data.BossTable, fallingTTL int, log *zap.Logger) *PhaseSystem {
	return &PhaseSystem{world: ws, bosses: bosses, fallingTTL: fallingTTL, log: log}
}

func (s *PhaseSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PhaseSystem) Update(_ time.Duration) {
	var dead []*world.Mob
	s.world.EachMob(func(m *world.Mob) {
		if m.Dead {
			dead = append(dead, m)
			return
		}
		if m.HurtResist > 0 {
			m.HurtResist--
		}
		s.acquireTarget(m)
		m.Face()
		if m.Phases != nil {
			m.Phases.Tick()
		}
		// A phase without a spellcard kills its mob on init.
		if m.Dead {
			dead = append(dead, m)
		}
	})
	for _, m := range dead {
		s.handleDeath(m)
	}
}

// acquireTarget keeps a visible target or switches to the nearest living
// player in sight.
func (s *PhaseSystem) acquireTarget(m *world.Mob) {
	if t, ok := m.AttackTarget(); ok && m.CanSee(t) {
		return
	}
	r := m.SightRange
	if r <= 0 {
		r = world.DefaultSightRange
	}
	t, ok := vector.Nearest[spellcard.Actor](s.world, m.Pos, r, func(a spellcard.Actor) bool {
		_, isPlayer := s.world.Player(a.ID())
		return isPlayer && a.Alive()
	})
	if ok {
		m.Target = t.ID()
	} else {
		m.Target = 0
	}
}

func (s *PhaseSystem) handleDeath(m *world.Mob) {
	var killer *world.Player
	if !m.LastAttacker.IsZero() {
		killer, _ = s.world.Player(m.LastAttacker)
	}

	if m.Phases != nil {
		if cur := m.Phases.Current(); cur != nil {
			if d, ok := cur.(phase.Dropper); ok && killer != nil {
				s.giveLoot(killer, m.Phases.Types(), d.DropLoot())
			}
			cur.Deconstruct()
		}
	}

	if s.bosses != nil {
		if def := s.bosses.Get(m.Name); def != nil {
			for _, drop := range def.Drops {
				s.world.ScatterPickups(drop.PickupKind(), drop.Count, m.Pos, s.fallingTTL)
			}
		}
	}

	ev := event.MobRemoved{EntityID: m.ID(), Name: m.Name, Pos: m.Pos}
	if killer != nil {
		ev.Killer = killer.ID()
	}
	world.Emit(s.world, ev)
	s.world.RemoveMob(m.ID())
	s.log.Info("首領被擊倒", zap.String("boss", m.Name), zap.Bool("killed", killer != nil))
}

func (s *PhaseSystem) giveLoot(p *world.Player, types *phase.Types, loot []phase.Loot) {
	for _, l := range loot {
		if l.Item != phase.ItemSpellcard {
			continue
		}
		card, ok := types.Spellcards.ByID(l.Meta)
		if !ok {
			continue
		}
		p.GiveCard(card.Name, 1)
		p.Dirty = true
	}
}
