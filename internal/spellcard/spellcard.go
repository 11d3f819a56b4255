// Package spellcard holds declared special attacks and the carrier entity
// that runs one after declaration.
package spellcard

import (
	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/vector"
)

const (
	// DeclareRange bounds both the look-at target search and the
	// one-carrier-per-user check for player declarations.
	DeclareRange = 32.0
	// ClearRadius is how far enemy danmaku is wiped on a first attack.
	ClearRadius = 40.0
)

// Spellcard is a named attack. Level doubles as its bomb cost.
type Spellcard struct {
	Name       string
	Level      int
	EndTime    int // ticks the carrier attacks for
	RemoveTime int // ticks before the carrier is removed; EndTime when zero
	Touhou     string
	Behavior   Behavior
}

func (s *Spellcard) removeTime() int {
	if s.RemoveTime < s.EndTime {
		return s.EndTime
	}
	return s.RemoveTime
}

// Actor is a living entity that can declare or be targeted by a spellcard.
type Actor interface {
	ID() ecs.EntityID
	Position() vector.Vector3
	Look() vector.Vector3
	Alive() bool
}

// Player is an Actor subject to bomb costs.
type Player interface {
	Actor
	Creative() bool
}

// Volley is one shape fired by a behaviour. A zero Angle aims at the
// carrier's target, or along the user's look when there is none.
type Volley struct {
	Pattern  shape.Pattern
	Template danmaku.Template
	Angle    vector.Vector3
}

// Behavior is what a spellcard does. OnDeclare may veto a declaration;
// OnUpdate runs every attacking tick of the carrier.
type Behavior interface {
	OnDeclare(user, target Actor, first bool) bool
	OnUpdate(c *Carrier) []Volley
}

// Static fires the same volleys every Interval ticks.
type Static struct {
	Interval int
	Volleys  []Volley
}

func (Static) OnDeclare(Actor, Actor, bool) bool { return true }

func (s Static) OnUpdate(c *Carrier) []Volley {
	if s.Interval > 1 && c.Age%s.Interval != 0 {
		return nil
	}
	return s.Volleys
}
