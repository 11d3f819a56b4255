package spellcard

import (
	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/vector"
)

// World is what declarations need from the surrounding simulation.
type World interface {
	Rand() vector.Source
	AddCarrier(c *Carrier) ecs.EntityID
	// HasCarrier reports a live carrier owned by user within radius of around.
	HasCarrier(user ecs.EntityID, around vector.Vector3, radius float64) bool
	// LookedAtTarget finds the living non-player-owned entity viewer looks at.
	LookedAtTarget(viewer Actor, maxDist float64) (Actor, bool)
	// ClearDanmaku removes danmaku hostile to user near it.
	ClearDanmaku(user Actor, radius float64) int
	// Announce tells the entity (when it is a connected player) about card.
	Announce(to ecs.EntityID, card *Spellcard)
	Bombs(player ecs.EntityID) int
	SpendBombs(player ecs.EntityID, n int)
}

// Declare spawns a carrier for card unless its behaviour refuses. On a
// first attack the target is told about the card and hostile danmaku
// around the user is cleared.
func Declare(w World, user, target Actor, card *Spellcard, first bool) (*Carrier, bool) {
	if card == nil {
		return nil, false
	}
	if card.Behavior != nil && !card.Behavior.OnDeclare(user, target, first) {
		return nil, false
	}
	c := NewCarrier(user, target, card, w.Rand())
	c.ID = w.AddCarrier(c)

	w.Announce(user.ID(), card)
	if first {
		if target != nil {
			w.Announce(target.ID(), card)
		}
		w.ClearDanmaku(user, ClearRadius)
	}
	return c, true
}

// CanPlayerDeclare returns the target p would declare card against. It
// fails while p already runs a carrier nearby, when nothing is looked at,
// or when p cannot pay the bombs.
func CanPlayerDeclare(w World, p Player, card *Spellcard) (Actor, bool) {
	if card == nil || w.HasCarrier(p.ID(), p.Position(), DeclareRange) {
		return nil, false
	}
	target, ok := w.LookedAtTarget(p, DeclareRange)
	if !ok {
		return nil, false
	}
	if !p.Creative() && w.Bombs(p.ID()) < card.Level {
		return nil, false
	}
	return target, true
}

// DeclarePlayer checks and pays for a player declaration. Bombs are spent
// before the behaviour gets its say, so a vetoed declaration still costs.
func DeclarePlayer(w World, p Player, card *Spellcard, first bool) (*Carrier, bool) {
	target, ok := CanPlayerDeclare(w, p, card)
	if !ok {
		return nil, false
	}
	if !p.Creative() {
		w.SpendBombs(p.ID(), card.Level)
	}
	return Declare(w, p, target, card, first)
}
