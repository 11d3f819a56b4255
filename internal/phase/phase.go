// Package phase sequences the attack phases of a danmaku mob.
package phase

import (
	"errors"
	"math/rand"

	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/nbt"
	"github.com/danmakucore/server/internal/registry"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/spellcard"
)

var (
	ErrNoNextPhase     = errors.New("phase: no next phase")
	ErrNoPreviousPhase = errors.New("phase: no previous phase")
	ErrIndexRange      = errors.New("phase: index out of range")
)

// Built-in type names.
const (
	NameSpellcard = "danmakucore:spellcard"
	NameShape     = "danmakucore:shape"
	NameFallback  = "danmakucore:fallback"
)

// Side selects which update a manager dispatches to.
type Side int

const (
	SideServer Side = iota
	SideClient
)

// Phase is one attack mode of a mob.
type Phase interface {
	Init()
	ServerUpdate()
	ClientUpdate()
	Deconstruct()
	Active() bool
	Type() Type
	Serialize() *nbt.Compound
	Deserialize(c *nbt.Compound)
}

// Type creates phases and identifies them in saved data through its
// registered name.
type Type interface {
	Instantiate(m *Manager) Phase
}

// Entity is the mob a manager drives.
type Entity interface {
	spellcard.Actor
	SetDead()
	Rand() *rand.Rand
	AttackTarget() (spellcard.Actor, bool)
	CanSee(target spellcard.Actor) bool
	SetHurtResistant(ticks int)
	DeclareSpellcard(target spellcard.Actor, card *spellcard.Spellcard, first bool) (*spellcard.Carrier, bool)
	Sink() shape.Sink
}

// Loot is an item dropped when a mob dies during a phase. Meta carries the
// numeric registry id of the item's subject.
type Loot struct {
	Item string
	Meta int
}

const ItemSpellcard = "spellcard"

// Dropper is implemented by phases that drop loot on death.
type Dropper interface {
	DropLoot() []Loot
}

// Types is the lookup context shared by every manager of a server.
type Types struct {
	Phases     *registry.Registry[Type]
	Spellcards *registry.Registry[*spellcard.Spellcard]
	Templates  *registry.Registry[*danmaku.Template]
	Fallback   Type

	Spellcard *SpellcardType
	Shape     *ShapeType
}

// NewTypes registers the built-in phase types. templates may be nil.
func NewTypes(cards *registry.Registry[*spellcard.Spellcard], templates *registry.Registry[*danmaku.Template]) (*Types, error) {
	t := &Types{
		Phases:     registry.New[Type]("phase"),
		Spellcards: cards,
		Templates:  templates,
		Spellcard:  &SpellcardType{},
		Shape:      &ShapeType{},
	}
	fallback := &FallbackType{}
	t.Fallback = fallback
	for _, r := range []struct {
		name string
		typ  Type
	}{
		{NameSpellcard, t.Spellcard},
		{NameShape, t.Shape},
		{NameFallback, fallback},
	} {
		if err := t.Phases.Register(r.name, r.typ); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// template resolves a danmaku template by name, falling back to the default.
func (t *Types) template(name string) danmaku.Template {
	if t.Templates != nil {
		if tmpl, ok := t.Templates.Get(name); ok {
			return *tmpl
		}
	}
	return danmaku.DefaultTemplate
}
