package world

import (
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/core/event"
	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/phase"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/vector"
)

// Announcer tells a connected player that a spellcard started or ended.
type Announcer interface {
	SpellcardInfo(to *Player, card *spellcard.Spellcard, add bool)
}

type nopChannel struct{}

func (nopChannel) SendTo(ecs.EntityID, ecs.EntityID, playerdata.Snapshot) {}
func (nopChannel) SendAround(vector.Vector3, float64, ecs.EntityID, playerdata.Snapshot) {
}

type nopAnnouncer struct{}

func (nopAnnouncer) SpellcardInfo(*Player, *spellcard.Spellcard, bool) {}

// State holds everything in the world: players, mobs, danmaku, spellcard
// carriers and falling data, all keyed by ecs entity id.
// Single-goroutine access only (game loop).
type State struct {
	ecs *ecs.World
	bus *event.Bus
	log *zap.Logger
	rng *rand.Rand

	players  *ecs.Store[Player]
	mobs     *ecs.Store[Mob]
	danmaku  *ecs.Store[Danmaku]
	carriers *ecs.Store[spellcard.Carrier]
	falling  *ecs.Store[FallingData]

	bySession map[uint64]*Player
	byUUID    map[uuid.UUID]*Player
	aoi       *AOIGrid

	channel  playerdata.Channel
	announce Announcer

	// Level is the difficulty new carriers fire at.
	Level danmaku.Level
	// FloorY is the height falling data is removed at.
	FloorY float64

	// 可重用 AOI 查詢 buffer（遊戲迴圈單線程，無需鎖）
	aoiBuf []ecs.EntityID
}

// NewState creates an empty world. bus may be nil when nothing listens.
func NewState(bus *event.Bus, seed int64, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	w := ecs.NewWorld()
	s := &State{
		ecs:       w,
		bus:       bus,
		log:       log,
		rng:       rand.New(rand.NewSource(seed)),
		players:   ecs.NewStore[Player](),
		mobs:      ecs.NewStore[Mob](),
		danmaku:   ecs.NewStore[Danmaku](),
		carriers:  ecs.NewStore[spellcard.Carrier](),
		falling:   ecs.NewStore[FallingData](),
		bySession: make(map[uint64]*Player),
		byUUID:    make(map[uuid.UUID]*Player),
		aoi:       NewAOIGrid(),
		channel:   nopChannel{},
		announce:  nopAnnouncer{},
		Level:     danmaku.LevelNormal,
		FloorY:    -64,
	}
	w.Attach(s.players, s.mobs, s.danmaku, s.carriers, s.falling)
	return s
}

// ECS exposes the entity world for the cleanup system.
func (s *State) ECS() *ecs.World { return s.ecs }

// Log returns the world logger.
func (s *State) Log() *zap.Logger { return s.log }

// SetChannel installs the player data sync channel.
func (s *State) SetChannel(ch playerdata.Channel) { s.channel = ch }

// Channel is the sync channel resource changes go through.
func (s *State) Channel() playerdata.Channel { return s.channel }

// SetAnnouncer installs what delivers spellcard info to clients.
func (s *State) SetAnnouncer(a Announcer) { s.announce = a }

// Rand is the world's random source.
func (s *State) Rand() vector.Source { return s.rng }

// Rng is the world's random source with the full math/rand API.
func (s *State) Rng() *rand.Rand { return s.rng }

// Emit queues ev on the world's bus. A world built without a bus drops it.
func Emit[T any](s *State, ev T) {
	if s.bus != nil {
		event.Emit(s.bus, ev)
	}
}

// Subscribe registers fn on the world's bus. Without a bus nothing is ever
// emitted, so fn is not registered.
func Subscribe[T any](s *State, fn func(T)) {
	if s.bus != nil {
		event.Subscribe(s.bus, fn)
	}
}

// --- players ---

// AddPlayer registers a player and gives it an entity id.
func (s *State) AddPlayer(p *Player) ecs.EntityID {
	p.id = s.ecs.Spawn(ecs.KindPlayer)
	s.players.Put(p.id, p)
	s.bySession[p.SessionID] = p
	if p.UUID != uuid.Nil {
		s.byUUID[p.UUID] = p
	}
	s.aoi.Add(p.id, p.Pos)
	return p.id
}

// RemovePlayer takes a player out of the world. The entity id is freed at
// the next cleanup.
func (s *State) RemovePlayer(sessionID uint64) *Player {
	p := s.bySession[sessionID]
	if p == nil {
		return nil
	}
	s.detachPlayer(p)
	return p
}

func (s *State) detachPlayer(p *Player) {
	delete(s.bySession, p.SessionID)
	if cur := s.byUUID[p.UUID]; cur == p {
		delete(s.byUUID, p.UUID)
	}
	s.aoi.Remove(p.id, p.Pos)
	s.players.Delete(p.id)
	s.ecs.Release(p.id)
}

// ReplacePlayer swaps old for a clone with a fresh entity id, keeping the
// session binding. Used for respawns.
func (s *State) ReplacePlayer(old, clone *Player) ecs.EntityID {
	s.detachPlayer(old)
	clone.SessionID = old.SessionID
	clone.Session = old.Session
	clone.UUID = old.UUID
	clone.Name = old.Name
	return s.AddPlayer(clone)
}

func (s *State) GetBySession(sessionID uint64) *Player { return s.bySession[sessionID] }
func (s *State) GetByUUID(id uuid.UUID) *Player        { return s.byUUID[id] }

func (s *State) Player(id ecs.EntityID) (*Player, bool) { return s.players.Get(id) }

// MovePlayer updates position and look, keeping the AOI grid current.
func (s *State) MovePlayer(p *Player, pos, look vector.Vector3) {
	s.aoi.Move(p.id, p.Pos, pos)
	p.Pos = pos
	p.LookDir = look
}

func (s *State) PlayerCount() int { return len(s.bySession) }

// AllPlayers iterates all in-world players.
func (s *State) AllPlayers(fn func(*Player)) {
	for _, p := range s.bySession {
		fn(p)
	}
}

// PlayersAround returns the players within radius of center.
func (s *State) PlayersAround(center vector.Vector3, radius float64) []*Player {
	s.aoiBuf = s.aoi.NearbyInto(center, radius, s.aoiBuf)
	result := make([]*Player, 0, len(s.aoiBuf))
	for _, id := range s.aoiBuf {
		p, ok := s.players.Get(id)
		if !ok {
			continue
		}
		if p.Pos.DistanceSquared(center) <= radius*radius {
			result = append(result, p)
		}
	}
	return result
}

func (s *State) nearestPlayer(pos vector.Vector3, radius float64) (*Player, bool) {
	var best *Player
	bestD := radius * radius
	for _, p := range s.PlayersAround(pos, radius) {
		if !p.Alive() {
			continue
		}
		if d := p.Pos.DistanceSquared(pos); best == nil || d < bestD {
			best, bestD = p, d
		}
	}
	return best, best != nil
}

// --- mobs ---

// AddMob registers a mob. Its phase manager is built by the caller after
// the mob has an id, since phases may look at the entity on init.
func (s *State) AddMob(m *Mob) ecs.EntityID {
	m.id = s.ecs.Spawn(ecs.KindMob)
	m.state = s
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(s.rng.Int63()))
	}
	if m.LookDir == vector.Zero {
		m.LookDir = vector.Forward
	}
	s.mobs.Put(m.id, m)
	return m.id
}

// NewMobManager builds the phase manager for m on the server side.
func (s *State) NewMobManager(m *Mob, types *phase.Types) *phase.Manager {
	m.Phases = phase.NewManager(m, types, phase.SideServer, s.log.With(zap.String("mob", m.Name)))
	return m.Phases
}

func (s *State) Mob(id ecs.EntityID) (*Mob, bool) { return s.mobs.Get(id) }

// RemoveMob drops the mob now and frees its id at cleanup.
func (s *State) RemoveMob(id ecs.EntityID) {
	if _, ok := s.mobs.Take(id); ok {
		s.ecs.Release(id)
	}
}

// EachMob iterates all mobs.
func (s *State) EachMob(fn func(*Mob)) {
	s.mobs.Each(func(_ ecs.EntityID, m *Mob) { fn(m) })
}

func (s *State) MobCount() int { return s.mobs.Len() }

// --- spellcard world ---

// Actor resolves any living-capable entity by id.
func (s *State) Actor(id ecs.EntityID) (spellcard.Actor, bool) {
	kind, _ := s.ecs.KindOf(id)
	switch kind {
	case ecs.KindPlayer:
		if p, ok := s.players.Get(id); ok {
			return p, true
		}
	case ecs.KindMob:
		if m, ok := s.mobs.Get(id); ok {
			return m, true
		}
	}
	return nil, false
}

// EntitiesWithin implements vector.Spatial over players and mobs.
func (s *State) EntitiesWithin(box vector.AABB, pred func(spellcard.Actor) bool) []spellcard.Actor {
	var out []spellcard.Actor
	s.players.Each(func(_ ecs.EntityID, p *Player) {
		if box.Contains(p.Pos) && (pred == nil || pred(p)) {
			out = append(out, p)
		}
	})
	s.mobs.Each(func(_ ecs.EntityID, m *Mob) {
		if box.Contains(m.Pos) && (pred == nil || pred(m)) {
			out = append(out, m)
		}
	})
	return out
}

// LookedAtTarget finds the living entity other than viewer on its view ray.
func (s *State) LookedAtTarget(viewer spellcard.Actor, maxDist float64) (spellcard.Actor, bool) {
	self := viewer.ID()
	return vector.LookedAt[spellcard.Actor](s, viewer.Position(), viewer.Look(), maxDist, func(a spellcard.Actor) bool {
		return a.ID() != self && a.Alive()
	})
}

// AddCarrier registers a declared carrier at the world's difficulty.
func (s *State) AddCarrier(c *spellcard.Carrier) ecs.EntityID {
	c.SetLevel(s.Level)
	id := s.ecs.Spawn(ecs.KindCarrier)
	s.carriers.Put(id, c)
	return id
}

// HasCarrier reports a live carrier of user whose user stands within radius
// of around.
func (s *State) HasCarrier(user ecs.EntityID, around vector.Vector3, radius float64) bool {
	found := false
	s.carriers.Each(func(_ ecs.EntityID, c *spellcard.Carrier) {
		if !found && c.User.ID() == user && c.User.Position().DistanceSquared(around) <= radius*radius {
			found = true
		}
	})
	return found
}

// EachCarrier iterates all carriers.
func (s *State) EachCarrier(fn func(*spellcard.Carrier)) {
	s.carriers.Each(func(_ ecs.EntityID, c *spellcard.Carrier) { fn(c) })
}

func (s *State) CarrierCount() int { return s.carriers.Len() }

// RemoveCarrier drops the carrier now and frees its id at cleanup.
func (s *State) RemoveCarrier(id ecs.EntityID) {
	if _, ok := s.carriers.Take(id); ok {
		s.ecs.Release(id)
	}
}

func (s *State) Announce(to ecs.EntityID, card *spellcard.Spellcard) {
	if p, ok := s.players.Get(to); ok {
		s.announce.SpellcardInfo(p, card, true)
	}
}

// AnnounceEnd tells a player a spellcard it was shown has finished.
func (s *State) AnnounceEnd(to ecs.EntityID, card *spellcard.Spellcard) {
	if p, ok := s.players.Get(to); ok {
		s.announce.SpellcardInfo(p, card, false)
	}
}

func (s *State) Bombs(player ecs.EntityID) int {
	if p, ok := s.players.Get(player); ok && p.Data != nil {
		return p.Data.Bombs()
	}
	return 0
}

func (s *State) SpendBombs(player ecs.EntityID, n int) {
	p, ok := s.players.Get(player)
	if !ok {
		return
	}
	playerdata.ChangeAndSync(p, s.channel, func(d *playerdata.Data) { d.AddBombs(-n) })
}

// DeclareForPlayer runs a player declaration and reports it on the bus.
func (s *State) DeclareForPlayer(p *Player, card *spellcard.Spellcard, first bool) (*spellcard.Carrier, bool) {
	c, ok := spellcard.DeclarePlayer(s, p, card, first)
	if !ok {
		return nil, false
	}
	ev := event.SpellcardDeclared{User: p.id, Carrier: c.ID, Card: card.Name, First: first}
	if c.Target != nil {
		ev.Target = c.Target.ID()
	}
	Emit(s, ev)
	return c, true
}

var (
	_ spellcard.World                 = (*State)(nil)
	_ vector.Spatial[spellcard.Actor] = (*State)(nil)
)
