package spellcard

import (
	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/vector"
)

// Carrier is the entity spawned by a declaration. It ticks the spellcard's
// behaviour on behalf of its user until the card runs out.
type Carrier struct {
	ID     ecs.EntityID
	User   Actor
	Target Actor // nil when declared without a target
	Card   *Spellcard
	Level  danmaku.Level
	Age    int

	rng vector.Source
}

func NewCarrier(user, target Actor, card *Spellcard, rng vector.Source) *Carrier {
	return &Carrier{User: user, Target: target, Card: card, Level: danmaku.LevelNormal, rng: rng}
}

func (c *Carrier) SetLevel(l danmaku.Level) {
	c.Level = l
}

// Aim is the direction volleys without an explicit angle are fired along.
func (c *Carrier) Aim() vector.Vector3 {
	if c.Target != nil && c.Target.Alive() {
		return vector.AngleToEntity(c.User, c.Target)
	}
	return c.User.Look()
}

// Tick advances the carrier one tick and reports whether it should stay in
// the world. fired counts spawned danmaku.
func (c *Carrier) Tick(sink shape.Sink) (alive bool, fired int) {
	if !c.User.Alive() {
		return false, 0
	}
	if c.Age < c.Card.EndTime && c.Card.Behavior != nil {
		for _, v := range c.Card.Behavior.OnUpdate(c) {
			s, err := shape.Build(v.Pattern, c.rng)
			if err != nil {
				continue
			}
			angle := v.Angle
			if angle == vector.Zero {
				angle = c.Aim()
			}
			_, ids := shape.Fire(sink, s, v.Template, c.User.Position(), angle, c.Level, c.Age)
			fired += len(ids)
		}
	}
	c.Age++
	return c.Age < c.Card.removeTime(), fired
}
