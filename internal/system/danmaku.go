package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/core/event"
	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/scripting"
	"github.com/danmakucore/server/internal/world"
)

const (
	// maxDanmakuAge removes shots without an end time after a minute.
	maxDanmakuAge = 1200
	// playerHitRadius and mobHitRadius are added to a shot's own radius.
	playerHitRadius = 0.3
	mobHitRadius    = 1.0
	// hurtResistTicks is the invulnerability after a survived hit.
	hurtResistTicks = 10
)

// DamageCalc adjusts the damage of a danmaku hit. Implemented by the Lua
// engine.
type DamageCalc interface {
	CalcDanmakuDamage(ctx scripting.DamageContext) float64
}

// DanmakuSystem moves every danmaku and resolves hits. Enemy shots hurt
// players, player shots hurt mobs, and a shot is used up by its first hit.
// A lethal hit on a player costs a life instead while the player has one.
// Phase 2 (Update), after CarrierSystem.
type DanmakuSystem struct {
	world        *world.State
	damage       DamageCalc
	policy       playerdata.DeathPolicy
	respawnTicks int
	log          *zap.Logger
}

// NewDanmakuSystem creates the danmaku system. damage may be nil, which
// keeps every shot's own damage.
func NewDanmakuSystem(ws *world.State, damage DamageCalc, policy playerdata.DeathPolicy, respawnTicks int, log *zap.Logger) *DanmakuSystem {
	return &DanmakuSystem{world: ws, damage: damage, policy: policy, respawnTicks: respawnTicks, log: log}
}

func (s *DanmakuSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *DanmakuSystem) Update(_ time.Duration) {
	var gone []ecs.EntityID
	s.world.EachDanmaku(func(d *world.Danmaku) {
		if !d.Step() || d.Age > maxDanmakuAge {
			gone = append(gone, d.ID())
			return
		}
		var hit bool
		if d.Side == world.SideEnemy {
			hit = s.hitPlayer(d)
		} else {
			hit = s.hitMob(d)
		}
		if hit {
			gone = append(gone, d.ID())
		}
	})
	for _, id := range gone {
		s.world.RemoveDanmaku(id)
	}
}

func (s *DanmakuSystem) hitPlayer(d *world.Danmaku) bool {
	for _, p := range s.world.PlayersAround(d.Pos, d.Radius()+playerHitRadius) {
		if !p.Alive() || p.Creative() || p.HurtResist > 0 {
			continue
		}
		s.damagePlayer(p, d)
		return true
	}
	return false
}

func (s *DanmakuSystem) damagePlayer(p *world.Player, d *world.Danmaku) {
	dmg := s.calc(d, 0, p.Health, true)
	if dmg <= 0 {
		return
	}
	p.Health -= dmg
	p.HurtResist = hurtResistTicks
	if p.Health > 0 {
		return
	}

	var power float32
	if data, ok := p.PlayerData(); ok {
		power = data.Power()
	}
	if playerdata.InterceptDeath(p, s.world.Channel(), true, s.policy) {
		p.Dirty = true
		world.Emit(s.world, event.LifeLost{EntityID: p.ID(), Pos: p.Pos, Power: power})
		return
	}
	p.Health = 0
	p.Dead = true
	p.Respawn = s.respawnTicks
	s.log.Info("玩家死亡", zap.String("name", p.Name))
}

func (s *DanmakuSystem) hitMob(d *world.Danmaku) bool {
	hit := false
	r := d.Radius() + mobHitRadius
	s.world.EachMob(func(m *world.Mob) {
		if hit || !m.Alive() || m.Pos.DistanceSquared(d.Pos) > r*r {
			return
		}
		hit = true
		var power float32
		if owner, ok := s.world.Player(d.Owner); ok && owner.Data != nil {
			power = owner.Data.Power()
		}
		m.Hurt(s.calc(d, power, m.Health, false), d.Owner)
	})
	return hit
}

func (s *DanmakuSystem) calc(d *world.Danmaku, attackerPower float32, targetHealth float64, targetPlayer bool) float64 {
	base := d.Damage()
	if s.damage == nil {
		return base
	}
	return s.damage.CalcDanmakuDamage(scripting.DamageContext{
		Damage:        base,
		Level:         d.Level,
		AttackerPower: attackerPower,
		TargetHealth:  targetHealth,
		TargetPlayer:  targetPlayer,
	})
}
