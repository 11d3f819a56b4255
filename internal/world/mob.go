package world

import (
	"math/rand"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/core/event"
	"github.com/danmakucore/server/internal/phase"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/vector"
)

// DefaultSightRange is how far a mob sees when its definition sets none.
const DefaultSightRange = 32.0

// Mob is a phase-driven danmaku enemy. It is the phase.Entity its manager
// drives.
type Mob struct {
	id    ecs.EntityID
	state *State

	Name string // boss definition name
	Pos  vector.Vector3
	// LookDir is refreshed towards the target every tick.
	LookDir vector.Vector3

	Health     float64
	MaxHealth  float64
	HurtResist int
	Dead       bool
	SightRange float64

	Target       ecs.EntityID
	LastAttacker ecs.EntityID

	Phases *phase.Manager
	rng    *rand.Rand
}

var _ phase.Entity = (*Mob)(nil)

func (m *Mob) ID() ecs.EntityID         { return m.id }
func (m *Mob) Position() vector.Vector3 { return m.Pos }
func (m *Mob) Look() vector.Vector3     { return m.LookDir }
func (m *Mob) Alive() bool              { return !m.Dead }
func (m *Mob) SetDead()                 { m.Dead = true }
func (m *Mob) Rand() *rand.Rand         { return m.rng }

func (m *Mob) SetHurtResistant(ticks int) {
	m.HurtResist = ticks
}

// AttackTarget resolves the current target to a living actor.
func (m *Mob) AttackTarget() (spellcard.Actor, bool) {
	if m.Target.IsZero() {
		return nil, false
	}
	a, ok := m.state.Actor(m.Target)
	if !ok || !a.Alive() {
		return nil, false
	}
	return a, true
}

func (m *Mob) CanSee(target spellcard.Actor) bool {
	r := m.SightRange
	if r <= 0 {
		r = DefaultSightRange
	}
	return target.Position().DistanceSquared(m.Pos) <= r*r
}

func (m *Mob) DeclareSpellcard(target spellcard.Actor, card *spellcard.Spellcard, first bool) (*spellcard.Carrier, bool) {
	c, ok := spellcard.Declare(m.state, m, target, card, first)
	if !ok {
		return nil, false
	}
	ev := event.SpellcardDeclared{User: m.id, Carrier: c.ID, Card: card.Name, First: first}
	if target != nil {
		ev.Target = target.ID()
	}
	Emit(m.state, ev)
	return c, true
}

// Sink spawns enemy-side danmaku owned by this mob.
func (m *Mob) Sink() shape.Sink {
	return m.state.SinkFor(m.id, SideEnemy)
}

// Hurt applies damage unless the mob is resisting hits. It reports true
// when the hit killed the mob.
func (m *Mob) Hurt(amount float64, attacker ecs.EntityID) bool {
	if m.Dead || m.HurtResist > 0 || amount <= 0 {
		return false
	}
	m.LastAttacker = attacker
	m.Health -= amount
	if m.Health <= 0 {
		m.Health = 0
		m.Dead = true
		return true
	}
	return false
}

// Face turns the mob towards its target, if it has one.
func (m *Mob) Face() {
	if t, ok := m.AttackTarget(); ok {
		m.LookDir = vector.AngleToEntity(m, t)
	}
}
