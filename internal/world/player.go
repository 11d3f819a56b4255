package world

import (
	"github.com/google/uuid"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/nbt"
	"github.com/danmakucore/server/internal/net"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/vector"
)

// Player is an in-world player. Game loop access only.
type Player struct {
	id        ecs.EntityID
	UUID      uuid.UUID
	Name      string
	SessionID uint64
	Session   *net.Session

	Pos     vector.Vector3
	LookDir vector.Vector3

	Health     float64
	MaxHealth  float64
	HurtResist int // ticks of invulnerability left
	Dead       bool
	Respawn    int // ticks until a dead player is cloned back in
	creative   bool

	Data *playerdata.Data
	// Cards counts held spellcard items by spellcard name.
	Cards map[string]int

	// Dirty marks unsaved resource changes.
	Dirty bool
}

func (p *Player) ID() ecs.EntityID         { return p.id }
func (p *Player) Position() vector.Vector3 { return p.Pos }
func (p *Player) Look() vector.Vector3     { return p.LookDir }
func (p *Player) Alive() bool              { return !p.Dead }
func (p *Player) Creative() bool           { return p.creative }
func (p *Player) SetCreative(v bool)       { p.creative = v }

// PlayerData reports false while the player carries no data.
func (p *Player) PlayerData() (*playerdata.Data, bool) {
	return p.Data, p.Data != nil
}

func (p *Player) Revive(invulnerableTicks int) {
	p.Health = p.MaxHealth
	p.Dead = false
	p.HurtResist = invulnerableTicks
}

// GiveCard adds n held copies of a spellcard item.
func (p *Player) GiveCard(name string, n int) {
	if p.Cards == nil {
		p.Cards = make(map[string]int)
	}
	p.Cards[name] += n
}

// HasCard reports whether the player holds at least one copy of name.
func (p *Player) HasCard(name string) bool {
	return p.Cards[name] > 0
}

// Save packs what persists across sessions: the resource counters and the
// held spellcards.
func (p *Player) Save() *nbt.Compound {
	c := nbt.NewCompound()
	if p.Data != nil {
		c.SetCompound("resources", p.Data.Serialize())
	}
	cards := nbt.NewCompound()
	for name, n := range p.Cards {
		if n > 0 {
			cards.SetInt(name, n)
		}
	}
	c.SetCompound("cards", cards)
	return c
}

// Restore is the inverse of Save. Missing sections keep current values.
func (p *Player) Restore(c *nbt.Compound) {
	if c.Has("resources") && p.Data != nil {
		p.Data.Deserialize(c.Compound("resources"))
	}
	if c.Has("cards") {
		cards := c.Compound("cards")
		p.Cards = make(map[string]int, cards.Len())
		for _, name := range cards.Keys() {
			p.Cards[name] = cards.Int(name)
		}
	}
}
