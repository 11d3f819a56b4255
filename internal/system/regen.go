package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/handler"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/vector"
	"github.com/danmakucore/server/internal/world"
)

// regenInterval is how many ticks pass between health regen steps.
const regenInterval = 20

// RegenSystem counts down player invulnerability, regenerates health and
// respawns dead players. Phase 3 (PostUpdate).
//
// A respawn replaces the dead player with a clone under a new entity id.
// The clone starts from fresh resource data: a death clone never inherits
// the old counters.
type RegenSystem struct {
	world      *world.State
	limits     playerdata.Limits
	spawn      vector.Vector3
	tickMillis int
	tickCount  int
	log        *zap.Logger
}

func NewRegenSystem(ws *world.State, limits playerdata.Limits, spawn vector.Vector3, tickMillis int, log *zap.Logger) *RegenSystem {
	return &RegenSystem{world: ws, limits: limits, spawn: spawn, tickMillis: tickMillis, log: log}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RegenSystem) Update(_ time.Duration) {
	s.tickCount++
	regen := s.tickCount%regenInterval == 0

	var respawn []*world.Player
	s.world.AllPlayers(func(p *world.Player) {
		if p.Dead {
			p.Respawn--
			if p.Respawn <= 0 {
				respawn = append(respawn, p)
			}
			return
		}
		if p.HurtResist > 0 {
			p.HurtResist--
		}
		if regen && p.Health < p.MaxHealth {
			p.Health = min(p.Health+1, p.MaxHealth)
		}
	})
	for _, p := range respawn {
		s.respawn(p)
	}
}

func (s *RegenSystem) respawn(old *world.Player) *world.Player {
	clone := &world.Player{
		Pos:       s.spawn,
		LookDir:   vector.Forward,
		Health:    old.MaxHealth,
		MaxHealth: old.MaxHealth,
		Data:      playerdata.New(s.limits),
		Cards:     old.Cards,
		Dirty:     true,
	}
	clone.SetCreative(old.Creative())
	s.world.ReplacePlayer(old, clone)
	if clone.Session != nil {
		clone.Session.Send(handler.BuildHello(s.tickMillis, clone.ID()))
	}

	ch := s.world.Channel()
	playerdata.CopyOnClone(old, clone, ch, true)
	playerdata.SyncOnJoin(clone, ch)
	s.log.Info("玩家重生", zap.String("name", clone.Name), zap.Uint64("entity", uint64(clone.ID())))
	return clone
}
