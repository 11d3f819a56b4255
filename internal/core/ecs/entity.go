package ecs

// EntityID packs a 32-bit slot index (low half) and a 32-bit generation
// (high half). The zero id is never allocated and means "nobody".
type EntityID uint64

func makeID(slot, gen uint32) EntityID {
	return EntityID(uint64(gen)<<32 | uint64(slot))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// Kind tags what an entity is so id lookups can go straight to one store.
type Kind uint8

const (
	KindNone Kind = iota
	KindPlayer
	KindMob
	KindDanmaku
	KindCarrier
	KindPickup
	kindCount
)

var kindNames = [kindCount]string{"none", "player", "mob", "danmaku", "carrier", "pickup"}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

type slot struct {
	gen  uint32
	kind Kind
	live bool
}

// Pool hands out generational ids. Freed slots are reused LIFO and bump
// their generation so stale ids stop resolving.
type Pool struct {
	slots []slot
	free  []uint32
	live  [kindCount]int
}

func NewPool() *Pool {
	return &Pool{
		slots: make([]slot, 1, 1024), // slot 0 reserved
		free:  make([]uint32, 0, 256),
	}
}

// Create allocates an id of the given kind.
func (p *Pool) Create(kind Kind) EntityID {
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, slot{})
	}
	s := &p.slots[idx]
	s.kind, s.live = kind, true
	p.live[kind]++
	return makeID(idx, s.gen)
}

func (p *Pool) lookup(id EntityID) (*slot, bool) {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[idx]
	if !s.live || s.gen != id.Generation() {
		return nil, false
	}
	return s, true
}

func (p *Pool) Alive(id EntityID) bool {
	_, ok := p.lookup(id)
	return ok
}

// KindOf reports the kind of a live id.
func (p *Pool) KindOf(id EntityID) (Kind, bool) {
	s, ok := p.lookup(id)
	if !ok {
		return KindNone, false
	}
	return s.kind, true
}

// Count returns how many ids of kind are live.
func (p *Pool) Count(kind Kind) int { return p.live[kind] }

// Destroy frees id. Stale or unknown ids are ignored.
func (p *Pool) Destroy(id EntityID) bool {
	s, ok := p.lookup(id)
	if !ok {
		return false
	}
	p.live[s.kind]--
	s.gen++
	s.live = false
	s.kind = KindNone
	p.free = append(p.free, id.Index())
	return true
}
