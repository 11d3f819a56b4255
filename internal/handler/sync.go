package handler

import (
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/core/event"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/vector"
	"github.com/danmakucore/server/internal/world"
)

// SyncChannel delivers S_CORE_DATA for player data changes. Packets only
// go into session buffers; a slow client is dropped at flush time and the
// change itself always stands.
type SyncChannel struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewSyncChannel(ws *world.State, bus *event.Bus, log *zap.Logger) *SyncChannel {
	return &SyncChannel{world: ws, bus: bus, log: log}
}

var _ playerdata.Channel = (*SyncChannel)(nil)

func (c *SyncChannel) SendTo(player, subject ecs.EntityID, s playerdata.Snapshot) {
	p, ok := c.world.Player(player)
	if ok && p.Session != nil {
		p.Session.Send(BuildCoreData(subject, s))
	} else {
		c.log.Debug("同步目標不在線上", zap.Uint64("player", uint64(player)))
	}
	c.changed(subject, s)
}

func (c *SyncChannel) SendAround(center vector.Vector3, radius float64, subject ecs.EntityID, s playerdata.Snapshot) {
	data := BuildCoreData(subject, s)
	for _, p := range c.world.PlayersAround(center, radius) {
		if p.Session != nil {
			p.Session.Send(data)
		}
	}
	c.changed(subject, s)
}

func (c *SyncChannel) changed(subject ecs.EntityID, s playerdata.Snapshot) {
	if c.bus != nil {
		event.Emit(c.bus, event.PlayerDataChanged{EntityID: subject, Snapshot: s})
	}
}

// Announcer sends S_SPELLCARD_INFO to a player's session.
type Announcer struct{}

func (Announcer) SpellcardInfo(to *world.Player, card *spellcard.Spellcard, add bool) {
	if to.Session != nil {
		to.Session.Send(BuildSpellcardInfo(card, add))
	}
}
