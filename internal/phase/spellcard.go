package phase

import (
	"github.com/danmakucore/server/internal/nbt"
	"github.com/danmakucore/server/internal/spellcard"
)

const (
	keySpellcard   = "spellcard"
	keyFirstAttack = "firstAttack"

	// hurtResistTicks is granted to the mob when a spellcard phase starts.
	hurtResistTicks = 40
)

type SpellcardType struct{}

// Instantiate draws a random registered spellcard. An empty registry gives
// a phase without a card, which removes its mob on Init.
func (t *SpellcardType) Instantiate(m *Manager) Phase {
	card, _ := m.types.Spellcards.Random(m.entity.Rand())
	return t.WithCard(m, card)
}

func (t *SpellcardType) WithCard(m *Manager, card *spellcard.Spellcard) *SpellcardPhase {
	return &SpellcardPhase{Base: NewBase(m, t), card: card}
}

// SpellcardPhase declares its spellcard at the mob's target every time the
// counter wraps, and immediately on its first attack.
type SpellcardPhase struct {
	Base
	card        *spellcard.Spellcard
	firstAttack bool
}

func (p *SpellcardPhase) Spellcard() *spellcard.Spellcard { return p.card }
func (p *SpellcardPhase) FirstAttack() bool               { return p.firstAttack }

func (p *SpellcardPhase) Init() {
	if p.card == nil {
		p.Entity().SetDead()
		return
	}
	p.Base.Init()
	p.Interval = p.card.EndTime
	p.firstAttack = true
	p.Entity().SetHurtResistant(hurtResistTicks)
}

func (p *SpellcardPhase) ServerUpdate() {
	p.Base.ServerUpdate()

	e := p.Entity()
	if p.card == nil {
		e.SetDead()
		return
	}
	if p.Frozen || !(p.CounterStart() || p.firstAttack) {
		return
	}
	target, ok := e.AttackTarget()
	if !ok || !e.CanSee(target) {
		return
	}
	c, ok := e.DeclareSpellcard(target, p.card, p.firstAttack)
	if !ok {
		return
	}
	p.firstAttack = false
	c.SetLevel(p.Level)
}

func (p *SpellcardPhase) Serialize() *nbt.Compound {
	c := p.Base.Serialize()
	name := ""
	if p.card != nil {
		name, _ = p.manager.types.Spellcards.Name(p.card)
	}
	c.SetString(keySpellcard, name)
	c.SetBool(keyFirstAttack, p.firstAttack)
	return c
}

// Deserialize swaps an unknown spellcard for a random registered one.
func (p *SpellcardPhase) Deserialize(c *nbt.Compound) {
	p.Base.Deserialize(c)
	cards := p.manager.types.Spellcards
	card, ok := cards.Get(c.String(keySpellcard))
	if !ok {
		card, _ = cards.Random(p.Entity().Rand())
	}
	p.card = card
	p.firstAttack = c.Bool(keyFirstAttack)
}

// DropLoot drops the phase's spellcard as an item.
func (p *SpellcardPhase) DropLoot() []Loot {
	if p.card == nil {
		return nil
	}
	return []Loot{{Item: ItemSpellcard, Meta: p.manager.types.Spellcards.ID(p.card)}}
}
