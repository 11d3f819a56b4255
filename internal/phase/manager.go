package phase

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/nbt"
)

const (
	keyIndex  = "index"
	keyPhases = "phases"
)

// Manager owns the ordered phases of one mob and the index of the current
// one. Only the current phase is ticked.
type Manager struct {
	entity  Entity
	types   *Types
	side    Side
	log     *zap.Logger
	phases  []Phase
	current int
}

func NewManager(e Entity, types *Types, side Side, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{entity: e, types: types, side: side, log: log}
}

func (m *Manager) Entity() Entity { return m.entity }
func (m *Manager) Types() *Types  { return m.types }

// Tick runs the current phase for this side. Inactive phases are skipped.
func (m *Manager) Tick() {
	p := m.Current()
	if p == nil || !p.Active() {
		return
	}
	if m.side == SideServer {
		p.ServerUpdate()
	} else {
		p.ClientUpdate()
	}
}

// Start initialises the current phase of a freshly built manager.
func (m *Manager) Start() {
	if p := m.Current(); p != nil && !p.Active() {
		p.Init()
	}
}

// Current returns nil when the manager holds no phases.
func (m *Manager) Current() Phase {
	if m.current < 0 || m.current >= len(m.phases) {
		return nil
	}
	return m.phases[m.current]
}

func (m *Manager) CurrentIndex() int { return m.current }

// SetCurrent replaces the current phase with p, deconstructing the old one
// and initialising p.
func (m *Manager) SetCurrent(p Phase) {
	if old := m.Current(); old != nil {
		old.Deconstruct()
		m.phases[m.current] = p
	} else {
		m.phases = append(m.phases, p)
		m.current = len(m.phases) - 1
	}
	p.Init()
}

// Next moves to the following phase. At the last phase it returns
// ErrNoNextPhase and changes nothing.
func (m *Manager) Next() error {
	if !m.HasNext() {
		return ErrNoNextPhase
	}
	m.phases[m.current].Deconstruct()
	m.current++
	m.phases[m.current].Init()
	m.log.Debug("phase advanced", zap.Int("index", m.current), zap.Uint64("entity", uint64(m.entity.ID())))
	return nil
}

// Previous moves back one phase. At the first phase it returns
// ErrNoPreviousPhase and changes nothing.
func (m *Manager) Previous() error {
	if m.current <= 0 || m.current >= len(m.phases) {
		return ErrNoPreviousPhase
	}
	m.phases[m.current].Deconstruct()
	m.current--
	m.phases[m.current].Init()
	return nil
}

func (m *Manager) HasNext() bool {
	return m.current < len(m.phases)-1
}

// Change points the manager at index i without calling Deconstruct or
// Init on either phase. Callers own the lifecycle of both.
func (m *Manager) Change(i int) error {
	if i < 0 || i >= len(m.phases) {
		return fmt.Errorf("change to %d of %d: %w", i, len(m.phases), ErrIndexRange)
	}
	m.current = i
	return nil
}

func (m *Manager) Add(ps ...Phase) {
	m.phases = append(m.phases, ps...)
}

// Insert places p at index i, shifting later phases. The current phase
// stays current.
func (m *Manager) Insert(i int, p Phase) error {
	if i < 0 || i > len(m.phases) {
		return fmt.Errorf("insert at %d of %d: %w", i, len(m.phases), ErrIndexRange)
	}
	m.phases = append(m.phases, nil)
	copy(m.phases[i+1:], m.phases[i:])
	m.phases[i] = p
	if i <= m.current && len(m.phases) > 1 {
		m.current++
	}
	return nil
}

// Set overwrites the slot at i without lifecycle calls.
func (m *Manager) Set(i int, p Phase) error {
	if i < 0 || i >= len(m.phases) {
		return fmt.Errorf("set at %d of %d: %w", i, len(m.phases), ErrIndexRange)
	}
	m.phases[i] = p
	return nil
}

// Remove drops the first occurrence of p and reports whether it was held.
func (m *Manager) Remove(p Phase) bool {
	i := m.Index(p)
	if i < 0 {
		return false
	}
	return m.RemoveAt(i) == nil
}

// RemoveAt drops the phase at i. The current index follows the phase it
// pointed at, or stays in range when that phase is the one removed.
func (m *Manager) RemoveAt(i int) error {
	if i < 0 || i >= len(m.phases) {
		return fmt.Errorf("remove at %d of %d: %w", i, len(m.phases), ErrIndexRange)
	}
	m.phases = append(m.phases[:i], m.phases[i+1:]...)
	if i < m.current || m.current >= len(m.phases) {
		m.current = max(m.current-1, 0)
	}
	return nil
}

func (m *Manager) Index(p Phase) int {
	for i, e := range m.phases {
		if e == p {
			return i
		}
	}
	return -1
}

func (m *Manager) Len() int { return len(m.phases) }

// Phases returns a copy of the phase list.
func (m *Manager) Phases() []Phase {
	out := make([]Phase, len(m.phases))
	copy(out, m.phases)
	return out
}

func (m *Manager) Serialize() *nbt.Compound {
	c := nbt.NewCompound()
	c.SetInt(keyIndex, m.current)
	list := make([]*nbt.Compound, 0, len(m.phases))
	for _, p := range m.phases {
		list = append(list, p.Serialize())
	}
	c.SetList(keyPhases, list)
	return c
}

// Deserialize restores the phase list from c. Phases already held are
// reused, in order, for entries of the same type so that state injected
// outside the saved data survives. Unknown type names restore as the
// fallback type. The restored current phase is always initialised.
func (m *Manager) Deserialize(c *nbt.Compound) {
	pool := make(map[Type][]Phase)
	for _, p := range m.phases {
		pool[p.Type()] = append(pool[p.Type()], p)
	}

	entries := c.List(keyPhases)
	restored := make([]Phase, 0, len(entries))
	for _, e := range entries {
		name := e.String(KeyName)
		typ, ok := m.types.Phases.Get(name)
		if !ok {
			m.log.Warn("unknown phase type, using fallback", zap.String("name", name))
			typ = m.types.Fallback
		}

		var p Phase
		if free := pool[typ]; len(free) > 0 {
			p, pool[typ] = free[0], free[1:]
		} else {
			p = typ.Instantiate(m)
		}
		p.Deserialize(e)
		restored = append(restored, p)
	}
	m.phases = restored

	index := c.Int(keyIndex)
	if len(m.phases) == 0 {
		m.current = 0
		return
	}
	if index < 0 || index >= len(m.phases) {
		m.log.Warn("restored phase index out of range",
			zap.Int("index", index), zap.Int("phases", len(m.phases)))
		index = 0
	}
	m.current = index

	if m.current != 0 && m.phases[0].Active() {
		m.phases[0].Deconstruct()
	}
	m.phases[m.current].Init()
}
