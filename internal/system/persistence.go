package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/event"
	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/nbt"
	"github.com/danmakucore/server/internal/persist"
	"github.com/danmakucore/server/internal/world"
)

// PlayerStore writes player rows. Implemented by persist.PlayerRepo.
type PlayerStore interface {
	SaveBatch(ctx context.Context, rows []persist.PlayerRow) error
}

// PhaseStore keeps the phase state of living bosses. Implemented by
// persist.PhaseRepo.
type PhaseStore interface {
	Save(ctx context.Context, boss string, state *nbt.Compound) error
	Delete(ctx context.Context, boss string) error
}

// PersistenceSystem periodically saves dirty players and the phase state of
// every boss. A boss that dies loses its saved state so it respawns from
// its first phase. Phase 5 (Persist).
type PersistenceSystem struct {
	world     *world.State
	players   PlayerStore
	phases    PhaseStore
	log       *zap.Logger
	tickCount int
	interval  int // ticks between saves
}

// NewPersistenceSystem subscribes to PlayerDataChanged and MobRemoved.
// Either store may be nil to skip that kind of save.
func NewPersistenceSystem(ws *world.State, players PlayerStore, phases PhaseStore, interval int, log *zap.Logger) *PersistenceSystem {
	s := &PersistenceSystem{
		world:    ws,
		players:  players,
		phases:   phases,
		log:      log,
		interval: max(interval, 1),
	}
	world.Subscribe(ws, func(e event.PlayerDataChanged) {
		if p, ok := ws.Player(e.EntityID); ok {
			p.Dirty = true
		}
	})
	world.Subscribe(ws, func(e event.MobRemoved) {
		s.deletePhases(e.Name)
	})
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.savePlayers(true)
	s.saveMobPhases()
}

// SavePlayer writes one player right away, as on disconnect.
func (s *PersistenceSystem) SavePlayer(p *world.Player) {
	if s.players == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.players.SaveBatch(ctx, []persist.PlayerRow{playerRow(p)}); err != nil {
		s.log.Error("斷線存檔玩家失敗", zap.String("name", p.Name), zap.Error(err))
		return
	}
	p.Dirty = false
}

// SaveAll writes every online player and boss. Called on shutdown.
func (s *PersistenceSystem) SaveAll() {
	s.savePlayers(false)
	s.saveMobPhases()
}

func (s *PersistenceSystem) savePlayers(dirtyOnly bool) {
	if s.players == nil {
		return
	}
	var rows []persist.PlayerRow
	var saved []*world.Player
	s.world.AllPlayers(func(p *world.Player) {
		if dirtyOnly && !p.Dirty {
			return
		}
		rows = append(rows, playerRow(p))
		saved = append(saved, p)
	})
	if len(rows) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.players.SaveBatch(ctx, rows); err != nil {
		s.log.Error("自動存檔玩家失敗", zap.Int("count", len(rows)), zap.Error(err))
		return
	}
	for _, p := range saved {
		p.Dirty = false
	}
	s.log.Debug("自動存檔完成", zap.Int("players", len(rows)))
}

func (s *PersistenceSystem) saveMobPhases() {
	if s.phases == nil {
		return
	}
	s.world.EachMob(func(m *world.Mob) {
		if m.Dead || m.Phases == nil || m.Name == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.phases.Save(ctx, m.Name, m.Phases.Serialize()); err != nil {
			s.log.Error("存檔首領階段失敗", zap.String("boss", m.Name), zap.Error(err))
		}
	})
}

func (s *PersistenceSystem) deletePhases(boss string) {
	if s.phases == nil || boss == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.phases.Delete(ctx, boss); err != nil {
		s.log.Error("刪除首領階段失敗", zap.String("boss", boss), zap.Error(err))
	}
}

func playerRow(p *world.Player) persist.PlayerRow {
	row := persist.PlayerRow{UUID: p.UUID, Name: p.Name, Data: p.Save()}
	if p.Data != nil {
		row.Score = int64(p.Data.Score())
	}
	return row
}
