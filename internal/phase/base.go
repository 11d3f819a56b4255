package phase

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/nbt"
)

const (
	stateIdle          = "idle"
	stateActive        = "active"
	stateDeconstructed = "deconstructed"

	eventInit        = "init"
	eventDeconstruct = "deconstruct"
)

// Persisted keys shared by every phase.
const (
	KeyName     = "name"
	keyCounter  = "counter"
	keyInterval = "interval"
	keyFrozen   = "frozen"
	keyActive   = "active"
	keyLevel    = "level"
)

func newLifecycle() *fsm.FSM {
	return fsm.NewFSM(stateIdle,
		fsm.Events{
			{Name: eventInit, Src: []string{stateIdle, stateDeconstructed}, Dst: stateActive},
			{Name: eventDeconstruct, Src: []string{stateIdle, stateActive}, Dst: stateDeconstructed},
		},
		fsm.Callbacks{},
	)
}

// Base carries the state every phase has. Concrete phases embed it and
// call through to its methods from their overrides.
type Base struct {
	manager   *Manager
	typ       Type
	lifecycle *fsm.FSM

	Counter  int
	Interval int
	Frozen   bool
	Level    danmaku.Level
}

func NewBase(m *Manager, t Type) Base {
	return Base{manager: m, typ: t, lifecycle: newLifecycle(), Level: danmaku.LevelNormal}
}

func (b *Base) transition(event string) {
	if b.lifecycle.Can(event) {
		// Can guarantees a registered transition from the current state.
		_ = b.lifecycle.Event(context.Background(), event)
	}
}

// Init restarts the counter and marks the phase active.
func (b *Base) Init() {
	b.Counter = 0
	b.transition(eventInit)
}

// ServerUpdate advances the counter, wrapping at Interval.
func (b *Base) ServerUpdate() {
	if b.Frozen {
		return
	}
	b.Counter++
	if b.Counter >= b.Interval {
		b.Counter = 0
	}
}

func (b *Base) ClientUpdate() {}

func (b *Base) Deconstruct() {
	b.transition(eventDeconstruct)
}

func (b *Base) Active() bool      { return b.lifecycle.Is(stateActive) }
func (b *Base) State() string     { return b.lifecycle.Current() }
func (b *Base) Type() Type        { return b.typ }
func (b *Base) Manager() *Manager { return b.manager }
func (b *Base) Entity() Entity    { return b.manager.entity }

// CounterStart reports whether the counter just wrapped.
func (b *Base) CounterStart() bool {
	return b.Counter == 0
}

func (b *Base) Serialize() *nbt.Compound {
	c := nbt.NewCompound()
	name, _ := b.manager.types.Phases.Name(b.typ)
	c.SetString(KeyName, name)
	c.SetInt(keyCounter, b.Counter)
	c.SetInt(keyInterval, b.Interval)
	c.SetBool(keyFrozen, b.Frozen)
	c.SetBool(keyActive, b.Active())
	c.SetInt(keyLevel, int(b.Level))
	return c
}

func (b *Base) Deserialize(c *nbt.Compound) {
	b.Counter = c.Int(keyCounter)
	b.Interval = c.Int(keyInterval)
	b.Frozen = c.Bool(keyFrozen)
	b.Level = danmaku.Level(c.Int(keyLevel))
	if c.Bool(keyActive) {
		b.lifecycle.SetState(stateActive)
	} else {
		b.lifecycle.SetState(stateIdle)
	}
}

// FallbackType stands in for phase types missing from the registry. Its
// phases only run the base counter.
type FallbackType struct{}

func (t *FallbackType) Instantiate(m *Manager) Phase {
	return &FallbackPhase{Base: NewBase(m, t)}
}

type FallbackPhase struct {
	Base
}
